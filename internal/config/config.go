// Package config holds the generator record shared by the pipeline and the
// emitters. It is built once per run and treated as read-only.
package config

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Config is the generator configuration.
type Config struct {
	// Namespace is the import path of the generated SDK module. When empty
	// it is derived from the document title.
	Namespace string `yaml:"namespace" validate:"omitempty,importpath"`

	// Package path segments below Namespace for each kind of unit.
	RequestSuffix   string `yaml:"requestSuffix" validate:"required,pkgpath"`
	ResourceSuffix  string `yaml:"resourceSuffix" validate:"required,pkgpath"`
	DTOSuffix       string `yaml:"dtoSuffix" validate:"required,pkgpath"`
	EnumSuffix      string `yaml:"enumSuffix" validate:"required,pkgpath"`
	ConnectorSuffix string `yaml:"connectorSuffix" validate:"required,pkgpath"`

	FallbackResourceName string `yaml:"fallbackResourceName" validate:"required"`

	// Parameters left out of the generated request defaults. The connector
	// is expected to supply them.
	IgnoredBodyParams   []string `yaml:"ignoredBodyParams" validate:"dive,required"`
	IgnoredQueryParams  []string `yaml:"ignoredQueryParams" validate:"dive,required"`
	IgnoredHeaderParams []string `yaml:"ignoredHeaderParams" validate:"dive,required"`

	// Tables is an optional lookup-table file merged over the defaults.
	Tables string `yaml:"tables"`
}

// Default returns the configuration used when nothing is overridden.
func Default() Config {
	return Config{
		RequestSuffix:        "requests",
		ResourceSuffix:       "resources",
		DTOSuffix:            "dto",
		EnumSuffix:           "enums",
		ConnectorSuffix:      "connector",
		FallbackResourceName: "Resource",
	}
}

// Normalize trims every field and drops empty and repeated list entries.
func (c *Config) Normalize() {
	c.Namespace = strings.Trim(strings.TrimSpace(c.Namespace), "/")
	for _, s := range []*string{&c.RequestSuffix, &c.ResourceSuffix, &c.DTOSuffix, &c.EnumSuffix, &c.ConnectorSuffix} {
		*s = strings.Trim(strings.TrimSpace(*s), "/")
	}
	c.FallbackResourceName = strings.TrimSpace(c.FallbackResourceName)
	c.Tables = strings.TrimSpace(c.Tables)
	c.IgnoredBodyParams = dedupe(c.IgnoredBodyParams)
	c.IgnoredQueryParams = dedupe(c.IgnoredQueryParams)
	c.IgnoredHeaderParams = dedupe(c.IgnoredHeaderParams)
}

// Validate checks the record against its struct tags and requires the
// unit suffixes to be pairwise distinct.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("config: %s fails %q", fe.Namespace(), fe.Tag())
		}
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Suffixes returns the unit suffixes keyed by unit kind.
func (c *Config) Suffixes() map[string]string {
	return map[string]string{
		"request":   c.RequestSuffix,
		"resource":  c.ResourceSuffix,
		"dto":       c.DTOSuffix,
		"enum":      c.EnumSuffix,
		"connector": c.ConnectorSuffix,
	}
}

// Ignored reports whether name is on the ignore-list for a parameter
// location ("body", "query" or "header").
func (c *Config) Ignored(location, name string) bool {
	var list []string
	switch location {
	case "body":
		list = c.IgnoredBodyParams
	case "query":
		list = c.IgnoredQueryParams
	case "header":
		list = c.IgnoredHeaderParams
	}
	for _, n := range list {
		if n == name {
			return true
		}
	}
	return false
}

var (
	pkgPathRe    = regexp.MustCompile(`^[a-z][a-z0-9_]*(/[a-z][a-z0-9_]*)*$`)
	importPathRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._~-]*(/[A-Za-z0-9._~-]+)*$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("pkgpath", func(fl validator.FieldLevel) bool {
		return pkgPathRe.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("importpath", func(fl validator.FieldLevel) bool {
		return importPathRe.MatchString(fl.Field().String())
	})
	v.RegisterStructValidation(func(sl validator.StructLevel) {
		c := sl.Current().Interface().(Config)
		seen := map[string]string{}
		for _, kind := range []string{"request", "resource", "dto", "enum", "connector"} {
			s := c.Suffixes()[kind]
			if s == "" {
				continue
			}
			if prev, dup := seen[s]; dup {
				sl.ReportError(s, kind+"Suffix", kind+"Suffix", "distinct", prev)
				continue
			}
			seen[s] = kind
		}
	}, Config{})
	return v
}

func dedupe(items []string) []string {
	if len(items) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
