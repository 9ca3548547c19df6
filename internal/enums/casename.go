package enums

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
)

var nonAlnumRun = regexp.MustCompile(`[^A-Z0-9]+`)

// CaseName derives the member identifier for an enum literal: uppercased,
// each run of other characters replaced by one underscore. A literal with
// no letters or digits left gets a hash placeholder. The result contains
// only [A-Z0-9_], never starts with a digit and is a fixed point:
// CaseName(CaseName(v)) == CaseName(v).
func CaseName(value string) string {
	if value == "" {
		return "EMPTY"
	}
	name := nonAlnumRun.ReplaceAllString(strings.ToUpper(value), "_")
	if strings.Trim(name, "_") == "" {
		sum := sha1.Sum([]byte(value))
		name = "VALUE_" + strings.ToUpper(hex.EncodeToString(sum[:])[:8])
	}
	if name[0] >= '0' && name[0] <= '9' {
		name = "_" + name
	}
	return name
}

// Literal renders an enum value the way it is compared and emitted.
func Literal(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	}
	return fmt.Sprint(v)
}

// MemberNames returns one unique case name per value, in order. Values
// that map to the same name get _2, _3 ... suffixes.
func MemberNames(values []any) []string {
	used := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		base := CaseName(Literal(v))
		name := base
		for n := 2; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s_%d", base, n)
		}
		used[name] = struct{}{}
		out = append(out, name)
	}
	return out
}
