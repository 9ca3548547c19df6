package normalize

import (
	"strings"

	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/naming"
	"github.com/mark3labs/swagger2sdk/internal/tables"
)

// DefaultResourceName is used when neither the configuration nor the
// document yields a collection.
const DefaultResourceName = "Resource"

// DetermineCollection derives the resource group of an operation:
// the path-prefix table entry for the first segment, else the tag, else the
// capitalized first segment. A path without segments uses the tag; when all
// of these are empty the fallback is returned.
func DetermineCollection(path, tag string, t *tables.Tables, fallback string) string {
	tag = strings.TrimSpace(tag)
	var name string
	if first := firstSegment(path); first == "" {
		name = tag
	} else if mapped, ok := t.Collection(first); ok {
		name = mapped
	} else if tag != "" {
		name = tag
	} else {
		name = naming.UpperFirst(first)
	}
	if strings.TrimSpace(name) == "" {
		name = strings.TrimSpace(fallback)
	}
	if name == "" {
		name = DefaultResourceName
	}
	return name
}

func firstSegment(path string) string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return ""
	}
	first, _, _ := strings.Cut(trimmed, "/")
	return first
}

// pathSegments splits a path template into literals and {placeholders}.
func pathSegments(path string) []ir.PathSegment {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	parts := strings.Split(trimmed, "/")
	out := make([]ir.PathSegment, 0, len(parts))
	for _, p := range parts {
		if strings.HasPrefix(p, "{") && strings.HasSuffix(p, "}") && len(p) > 2 {
			out = append(out, ir.PathSegment{Param: p[1 : len(p)-1]})
			continue
		}
		out = append(out, ir.PathSegment{Literal: p})
	}
	return out
}
