package sdkemitter

import (
	"bytes"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"text/template"

	"golang.org/x/tools/imports"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templates = template.Must(template.New("").
	Funcs(template.FuncMap{
		"quote":   strconv.Quote,
		"comment": comment,
		"join":    strings.Join,
	}).
	ParseFS(templateFS, "templates/*.tmpl"))

// render executes a template and runs the result through goimports, which
// also drops the imports a unit ends up not using. Output that does not
// parse as Go is an error.
func render(name, filename string, data any) ([]byte, error) {
	return renderWith(templates, name, filename, data)
}

func renderWith(set *template.Template, name, filename string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, name, data); err != nil {
		return nil, err
	}
	formatted, err := imports.Process(filename, buf.Bytes(), &imports.Options{Comments: true, TabIndent: true, TabWidth: 8})
	if err != nil {
		return nil, fmt.Errorf("format %s: %w", filename, err)
	}
	return formatted, nil
}

// comment turns free text into // lines with the given indent. Empty text
// renders nothing.
func comment(indent, text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, " \t\r")
		b.WriteString(indent)
		if line == "" {
			b.WriteString("//\n")
			continue
		}
		b.WriteString("// ")
		b.WriteString(line)
		b.WriteByte('\n')
	}
	return b.String()
}
