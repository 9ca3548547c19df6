// Package spec loads OpenAPI 3.x and Swagger 2.0 documents into a fully
// resolved kin-openapi tree.
package spec

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
	semver "github.com/hashicorp/go-version"
)

// Format selects the decoder for a document. It is chosen by the caller and
// never sniffed from the content.
type Format int

const (
	FormatYAML Format = iota
	FormatJSON
)

func (f Format) String() string {
	if f == FormatJSON {
		return "json"
	}
	return "yaml"
}

// FormatFromPath picks JSON for a .json extension and YAML otherwise.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

// Document is a loaded specification.
type Document struct {
	T *openapi3.T
	// Version is the declared openapi or swagger version.
	Version string
	// Converted is set when the input was Swagger 2.0.
	Converted bool
	// Warnings collects non-fatal problems: degraded references and
	// validation findings.
	Warnings []string
}

// Settings configures loader behavior.
type Settings struct {
	Logger *slog.Logger
	// Validate runs kin-openapi validation and records its findings as
	// warnings.
	Validate bool
	// Location names the input in errors.
	Location string
}

// DefaultSettings returns recommended defaults.
func DefaultSettings() Settings {
	return Settings{Validate: true}
}

// Option mutates Settings.
type Option func(*Settings)

func WithLogger(l *slog.Logger) Option { return func(s *Settings) { s.Logger = l } }
func WithValidation(on bool) Option { return func(s *Settings) { s.Validate = on } }
func WithLocation(loc string) Option { return func(s *Settings) { s.Location = loc } }

var (
	openapi3Range = mustConstraint(">= 3.0, < 4.0")
	swagger2Range = mustConstraint(">= 2.0, < 3.0")
)

func mustConstraint(c string) semver.Constraints {
	cs, err := semver.NewConstraint(c)
	if err != nil {
		panic(err)
	}
	return cs
}

// LoadFile reads path and loads it with the format implied by its extension.
func LoadFile(ctx context.Context, path string, opts ...Option) (*Document, error) {
	if strings.TrimSpace(path) == "" {
		return nil, &SpecError{Code: InputError, Message: "spec: input is empty"}
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("resolve path: %v", err), Location: path, Cause: err}
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, &SpecError{Code: InputError, Message: fmt.Sprintf("read file %s: %v", abs, err), Location: abs, Cause: err}
	}
	return Load(ctx, data, FormatFromPath(abs), append([]Option{WithLocation(abs)}, opts...)...)
}

// Load parses data, converts Swagger 2.0 to OpenAPI 3, checks every
// reference and resolves them in place.
func Load(ctx context.Context, data []byte, format Format, opts ...Option) (*Document, error) {
	settings := DefaultSettings()
	for _, opt := range opts {
		opt(&settings)
	}
	logger := settings.Logger
	if logger == nil {
		logger = slog.Default()
	}
	located := func(err error) error {
		var se *SpecError
		if errors.As(err, &se) && se.Location == "" {
			se.Location = settings.Location
		}
		return err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil, located(newError(InputError, "", "spec: document is empty"))
	}

	root, err := decodeTree(data, format)
	if err != nil {
		return nil, &SpecError{Code: ParseError, Message: fmt.Sprintf("spec: %v", err), Location: settings.Location, Cause: err}
	}

	doc := &Document{}
	version, swagger, err := checkStructure(root)
	if err != nil {
		return nil, located(err)
	}
	doc.Version = version

	if swagger {
		fixV2Operations(root)
		converted, cerr := convertV2(root)
		if cerr != nil {
			return nil, &SpecError{Code: ConversionError, Message: fmt.Sprintf("convert v2 to v3: %v", cerr), Location: settings.Location, Cause: cerr}
		}
		root = converted
		doc.Converted = true
		logger.Debug("converted swagger 2.0 document", "version", version)
	}

	warnings, err := checkRefs(root)
	if err != nil {
		return nil, located(err)
	}
	for _, w := range warnings {
		logger.Warn("spec: " + w)
	}
	doc.Warnings = append(doc.Warnings, warnings...)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	raw, err := json.Marshal(root)
	if err != nil {
		return nil, fmt.Errorf("spec: encode document: %w", err)
	}
	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = false
	t, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, mapLoaderErr(err, settings.Location)
	}
	doc.T = t

	if settings.Validate {
		if verr := t.Validate(ctx); verr != nil {
			msg := "validation: " + verr.Error()
			logger.Warn("spec: "+msg, "pointer", extractJSONPointer(verr))
			doc.Warnings = append(doc.Warnings, msg)
		}
	}
	return doc, nil
}

// checkStructure enforces the minimal top-level shape and returns the
// declared version and whether the document is Swagger 2.0.
func checkStructure(root map[string]any) (string, bool, error) {
	var (
		raw     any
		field   string
		swagger bool
	)
	if v, ok := root["openapi"]; ok {
		raw, field = v, "openapi"
	} else if v, ok := root["swagger"]; ok {
		raw, field, swagger = v, "swagger", true
	} else {
		return "", false, newError(ParseError, "#", "spec: missing version (expected 'openapi: 3.x' or 'swagger: 2.0')")
	}
	version, ok := scalarString(raw)
	if !ok {
		return "", false, newError(ParseError, "#/"+field, "spec: %s must be a string", field)
	}
	root[field] = version
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return "", false, newError(ParseError, "#/"+field, "spec: invalid %s version %q", field, version)
	}
	if (swagger && !swagger2Range.Check(v)) || (!swagger && !openapi3Range.Check(v)) {
		return "", false, newError(ParseError, "#/"+field, "spec: unsupported %s version %q", field, version)
	}

	info, ok := root["info"].(map[string]any)
	if !ok {
		return "", false, newError(ParseError, "#/info", "spec: missing info object")
	}
	title, _ := scalarString(info["title"])
	if strings.TrimSpace(title) == "" {
		return "", false, newError(ParseError, "#/info/title", "spec: missing info.title")
	}
	info["title"] = title
	if iv, ok := scalarString(info["version"]); ok {
		info["version"] = iv
	}

	if _, ok := root["paths"].(map[string]any); !ok {
		if root["paths"] == nil {
			return "", false, newError(ParseError, "#/paths", "spec: missing paths object")
		}
		return "", false, newError(ParseError, "#/paths", "spec: paths must be a mapping")
	}
	return version, swagger, nil
}
