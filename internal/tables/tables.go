// Package tables holds the versioned lookup data behind the naming and
// classification heuristics. The defaults are embedded; a user file with the
// same layout is merged in front of them.
package tables

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Version is the table layout this build understands.
const Version = 1

//go:embed defaults.yaml
var defaultsYAML []byte

type CollectionEntry struct {
	Prefix string `yaml:"prefix" validate:"required"`
	Name   string `yaml:"name" validate:"required"`
}

type ResponseEntry struct {
	Property string `yaml:"property" validate:"required"`
	DTO      string `yaml:"dto" validate:"required"`
	Array    bool   `yaml:"array"`
}

type EnumNameEntry struct {
	Param string `yaml:"param" validate:"required"`
	Name  string `yaml:"name" validate:"required"`
}

// Tables is the full set of lookup data. Use Default, Parse or Load to get
// one; the index maps are built on construction.
type Tables struct {
	Version            int               `yaml:"version" validate:"gte=0"`
	Collections        []CollectionEntry `yaml:"collections" validate:"dive"`
	Responses          []ResponseEntry   `yaml:"responses" validate:"dive"`
	EnumNames          []EnumNameEntry   `yaml:"enumNames" validate:"dive"`
	SharedConcepts     []string          `yaml:"sharedConcepts" validate:"dive,required"`
	VerbPrefixes       []string          `yaml:"verbPrefixes" validate:"dive,required"`
	EnumFallbackPrefix string            `yaml:"enumFallbackPrefix"`
	DTOFallbackPrefix  string            `yaml:"dtoFallbackPrefix"`

	collections map[string]string
	enumNames   map[string]string
	shared      map[string]struct{}
}

var validate = validator.New()

// Default returns a fresh copy of the embedded tables.
func Default() *Tables {
	t, err := Parse(defaultsYAML)
	if err != nil {
		panic(fmt.Sprintf("tables: embedded defaults: %v", err))
	}
	return t
}

// Parse decodes and validates a table document.
func Parse(data []byte) (*Tables, error) {
	var t Tables
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("tables: parse: %w", err)
	}
	if t.Version > Version {
		return nil, fmt.Errorf("tables: unsupported version %d (max %d)", t.Version, Version)
	}
	if err := validate.Struct(&t); err != nil {
		return nil, fmt.Errorf("tables: %w", err)
	}
	t.index()
	return &t, nil
}

// Load reads the table file at path and merges it over the defaults.
func Load(path string) (*Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("tables: read %s: %w", path, err)
	}
	over, err := Parse(data)
	if err != nil {
		return nil, err
	}
	return Merge(Default(), over), nil
}

// Merge returns base with the entries of over placed in front, so over wins
// every first-match lookup. Scalars are taken from over when set.
func Merge(base, over *Tables) *Tables {
	if over == nil {
		return base
	}
	out := &Tables{
		Version:            Version,
		Collections:        append(append([]CollectionEntry{}, over.Collections...), base.Collections...),
		Responses:          append(append([]ResponseEntry{}, over.Responses...), base.Responses...),
		EnumNames:          append(append([]EnumNameEntry{}, over.EnumNames...), base.EnumNames...),
		SharedConcepts:     append(append([]string{}, over.SharedConcepts...), base.SharedConcepts...),
		VerbPrefixes:       append(append([]string{}, over.VerbPrefixes...), base.VerbPrefixes...),
		EnumFallbackPrefix: base.EnumFallbackPrefix,
		DTOFallbackPrefix:  base.DTOFallbackPrefix,
	}
	if over.EnumFallbackPrefix != "" {
		out.EnumFallbackPrefix = over.EnumFallbackPrefix
	}
	if over.DTOFallbackPrefix != "" {
		out.DTOFallbackPrefix = over.DTOFallbackPrefix
	}
	out.index()
	return out
}

func (t *Tables) index() {
	t.collections = make(map[string]string, len(t.Collections))
	for _, e := range t.Collections {
		if _, ok := t.collections[e.Prefix]; !ok {
			t.collections[e.Prefix] = e.Name
		}
	}
	t.enumNames = make(map[string]string, len(t.EnumNames))
	for _, e := range t.EnumNames {
		if _, ok := t.enumNames[e.Param]; !ok {
			t.enumNames[e.Param] = e.Name
		}
	}
	t.shared = make(map[string]struct{}, len(t.SharedConcepts))
	for _, s := range t.SharedConcepts {
		t.shared[s] = struct{}{}
	}
	if t.EnumFallbackPrefix == "" {
		t.EnumFallbackPrefix = "Enum"
	}
	if t.DTOFallbackPrefix == "" {
		t.DTOFallbackPrefix = "Dto"
	}
}

// Collection returns the override for a first path segment.
func (t *Tables) Collection(segment string) (string, bool) {
	name, ok := t.collections[segment]
	return name, ok
}

// EnumName returns the shared enum name for a parameter name.
func (t *Tables) EnumName(param string) (string, bool) {
	name, ok := t.enumNames[param]
	return name, ok
}

func (t *Tables) IsSharedConcept(name string) bool {
	_, ok := t.shared[name]
	return ok
}

// StripVerbPrefix drops the first matching verb prefix, compared case
// insensitively.
func (t *Tables) StripVerbPrefix(name string) string {
	for _, p := range t.VerbPrefixes {
		if len(name) >= len(p) && strings.EqualFold(name[:len(p)], p) {
			return name[len(p):]
		}
	}
	return name
}
