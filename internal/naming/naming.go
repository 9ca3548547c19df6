// Package naming converts API names into identifiers and resolves
// collision-free request and resource names.
package naming

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var nonIdent = regexp.MustCompile(`[^a-zA-Z0-9_]`)

// words splits s on every rune that is not a letter or digit.
func words(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Studly upper-cases the first letter of every word and joins the words.
// The rest of each word keeps its case: "list_userIDs" -> "ListUserIDs".
func Studly(s string) string {
	// Casers are stateful, so each call gets its own.
	titleCaser := cases.Title(language.English, cases.NoLower)
	var b strings.Builder
	for _, w := range words(s) {
		b.WriteString(titleCaser.String(w))
	}
	return b.String()
}

// Camel is Studly with a lower-case first letter.
func Camel(s string) string {
	st := Studly(s)
	if st == "" {
		return ""
	}
	r := []rune(st)
	r[0] = unicode.ToLower(r[0])
	return string(r)
}

// UpperFirst upper-cases only the first rune.
func UpperFirst(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// Sanitize drops every character outside [a-zA-Z0-9_]. An empty or
// digit-leading result gets prefix in front.
func Sanitize(s, prefix string) string {
	out := nonIdent.ReplaceAllString(s, "")
	if out == "" || (out[0] >= '0' && out[0] <= '9') {
		out = prefix + out
	}
	return out
}

// ClassName is the sanitized Studly form of s.
func ClassName(s, prefix string) string {
	return Sanitize(Studly(s), prefix)
}

// Snake converts an identifier to snake_case for file names. Acronym runs
// stay together: "ResellerIDList" -> "reseller_id_list".
func Snake(s string) string {
	r := []rune(s)
	var b strings.Builder
	for i, c := range r {
		if !unicode.IsLetter(c) && !unicode.IsDigit(c) {
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			continue
		}
		if unicode.IsUpper(c) && i > 0 {
			prev := r[i-1]
			nextLower := i+1 < len(r) && unicode.IsLower(r[i+1])
			if (unicode.IsLower(prev) || unicode.IsDigit(prev)) || (unicode.IsUpper(prev) && nextLower) {
				if !strings.HasSuffix(b.String(), "_") {
					b.WriteByte('_')
				}
			}
		}
		b.WriteRune(unicode.ToLower(c))
	}
	return strings.Trim(b.String(), "_")
}

// Package returns a lower-case Go package name for s.
func Package(s string) string {
	p := strings.ToLower(Sanitize(strings.ReplaceAll(Snake(s), "_", ""), "p"))
	if goReserved[p] {
		p += "pkg"
	}
	return p
}

var goReserved = map[string]bool{
	"break": true, "case": true, "chan": true, "const": true, "continue": true,
	"default": true, "defer": true, "else": true, "fallthrough": true, "for": true,
	"func": true, "go": true, "goto": true, "if": true, "import": true,
	"interface": true, "map": true, "package": true, "range": true, "return": true,
	"select": true, "struct": true, "switch": true, "type": true, "var": true,
}

// Field returns an exported Go identifier for an API name.
func Field(s string) string {
	return Sanitize(Studly(s), "X")
}

// Var returns an unexported Go identifier for an API name, escaping
// reserved words with a trailing underscore.
func Var(s string) string {
	v := Camel(Sanitize(Studly(s), "p"))
	if v == "" {
		v = "param"
	}
	if goReserved[v] {
		v += "_"
	}
	return v
}
