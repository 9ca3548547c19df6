package spec

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	openapi2 "github.com/getkin/kin-openapi/openapi2"
	"github.com/getkin/kin-openapi/openapi2conv"
)

var v2Verbs = map[string]bool{
	"get": true, "post": true, "put": true, "delete": true,
	"patch": true, "options": true, "head": true,
}

// fixV2Operations rewrites Swagger 2.0 operations that openapi2conv
// cannot convert, in place:
//   - several body parameters are merged into one object body whose
//     properties are the original parameters;
//   - body parameters mixed with formData become formData parameters and
//     the operation consumes multipart/form-data.
//
// It reports whether anything changed.
func fixV2Operations(root map[string]any) bool {
	paths, ok := root["paths"].(map[string]any)
	if !ok {
		return false
	}
	changed := false
	for _, p := range sortedMapKeys(paths) {
		item, ok := paths[p].(map[string]any)
		if !ok {
			continue
		}
		for _, verb := range sortedMapKeys(item) {
			if !v2Verbs[strings.ToLower(verb)] {
				continue
			}
			op, ok := item[verb].(map[string]any)
			if !ok {
				continue
			}
			if fixV2Operation(op) {
				changed = true
			}
		}
	}
	return changed
}

func fixV2Operation(op map[string]any) bool {
	params, _ := op["parameters"].([]any)
	bodies, form := 0, false
	for _, p := range params {
		switch in := paramIn(p); {
		case strings.EqualFold(in, "body"):
			bodies++
		case strings.EqualFold(in, "formData"):
			form = true
		}
	}
	switch {
	case bodies > 0 && form:
		out := make([]any, 0, len(params))
		for _, p := range params {
			if pm, ok := p.(map[string]any); ok && strings.EqualFold(paramIn(pm), "body") {
				out = append(out, bodyToFormData(pm))
				continue
			}
			out = append(out, p)
		}
		op["parameters"] = out
		consumes, _ := op["consumes"].([]any)
		for _, c := range consumes {
			if c == "multipart/form-data" {
				return true
			}
		}
		op["consumes"] = append(consumes, "multipart/form-data")
		return true
	case bodies > 1:
		props := map[string]any{}
		var required []any
		rest := make([]any, 0, len(params))
		for _, p := range params {
			pm, ok := p.(map[string]any)
			if !ok || !strings.EqualFold(paramIn(pm), "body") {
				rest = append(rest, p)
				continue
			}
			name := stringOr(pm["name"], "field")
			schema := paramSchema(pm)
			if schema == nil {
				schema = map[string]any{"type": "string"}
			}
			props[name] = schema
			if req, _ := pm["required"].(bool); req {
				required = append(required, name)
			}
		}
		body := map[string]any{"type": "object", "properties": props}
		if len(required) > 0 {
			body["required"] = required
		}
		merged := map[string]any{"in": "body", "name": "body", "schema": body}
		op["parameters"] = append([]any{merged}, rest...)
		return true
	}
	return false
}

func paramIn(p any) string {
	pm, _ := p.(map[string]any)
	return stringOr(pm["in"], "")
}

func stringOr(v any, def string) string {
	if s, ok := v.(string); ok && s != "" {
		return s
	}
	return def
}

// paramSchema returns the schema of a body parameter, synthesizing one from
// type/items/format for non-body style declarations.
func paramSchema(pm map[string]any) map[string]any {
	if sch, ok := pm["schema"].(map[string]any); ok {
		return sch
	}
	t, _ := pm["type"].(string)
	if t == "" {
		return nil
	}
	m := map[string]any{"type": t}
	if it, ok := pm["items"].(map[string]any); ok {
		m["items"] = it
	}
	if f, ok := pm["format"].(string); ok && f != "" {
		m["format"] = f
	}
	return m
}

func bodyToFormData(pm map[string]any) map[string]any {
	out := map[string]any{"in": "formData", "name": stringOr(pm["name"], "field")}
	if desc, ok := pm["description"].(string); ok && desc != "" {
		out["description"] = desc
	}
	if req, ok := pm["required"].(bool); ok {
		out["required"] = req
	}
	src := pm
	if sch, ok := pm["schema"].(map[string]any); ok {
		src = sch
	}
	typ := stringOr(src["type"], "")
	if typ == "" || typ == "object" {
		// formData cannot carry objects or references.
		typ = "string"
	}
	out["type"] = typ
	if it, ok := src["items"].(map[string]any); ok && typ == "array" {
		out["items"] = it
	}
	if f := stringOr(src["format"], ""); f != "" {
		out["format"] = f
	}
	return out
}

// convertV2 converts a Swagger 2.0 tree into an OpenAPI 3 tree.
func convertV2(root map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(root)
	if err != nil {
		return nil, err
	}
	var v2 openapi2.T
	if err := json.Unmarshal(raw, &v2); err != nil {
		return nil, err
	}
	v3, err := openapi2conv.ToV3(&v2)
	if err != nil {
		return nil, err
	}
	out, err := json.Marshal(v3)
	if err != nil {
		return nil, fmt.Errorf("encode converted document: %w", err)
	}
	return decodeTree(out, FormatJSON)
}

func sortedMapKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
