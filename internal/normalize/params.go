package normalize

import (
	"fmt"
	"sort"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/spec"
)

// mergeParameters combines path-level and operation-level parameters. On
// an (in, name) collision the path-level declaration wins. Declaration
// order is kept: path-level first, then new operation-level ones.
func (b *builder) mergeParameters(pathLevel, opLevel openapi3.Parameters, where string) ([]*openapi3.Parameter, error) {
	seen := map[string]struct{}{}
	var out []*openapi3.Parameter
	for _, list := range []openapi3.Parameters{pathLevel, opLevel} {
		for _, pref := range list {
			if pref == nil {
				continue
			}
			if pref.Value == nil {
				return nil, &spec.SpecError{
					Code:        spec.ReferenceError,
					Message:     fmt.Sprintf("%s: unresolved parameter reference %q", where, pref.Ref),
					JSONPointer: pref.Ref,
				}
			}
			key := pref.Value.In + ":" + pref.Value.Name
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			out = append(out, pref.Value)
		}
	}
	return out, nil
}

// parametersIn maps the merged parameters located in `in` to IR parameters.
func (b *builder) parametersIn(params []*openapi3.Parameter, in string, where string) []*ir.Parameter {
	var out []*ir.Parameter
	for _, p := range params {
		if p.In != in {
			continue
		}
		var schema *openapi3.Schema
		if p.Schema != nil {
			schema = p.Schema.Value
		}
		if unsupported(schema) {
			b.degrade(where+" "+in+" parameter "+p.Name, "unsupported schema shape, using dynamic type")
		}
		param := &ir.Parameter{
			Name:        p.Name,
			Type:        b.typeOf(p.Schema, false),
			Nullable:    !p.Required || (schema != nil && schema.Nullable),
			Required:    p.Required,
			Description: p.Description,
			Enum:        enumValues(schema),
		}
		if schema != nil && p.Schema.Ref == "" && isObject(schema) {
			param.Properties = b.nestedProperties(schema)
		}
		out = append(out, param)
	}
	return out
}

// nestedProperties maps the properties of an inline object schema.
// References stay opaque; inline objects recurse.
func (b *builder) nestedProperties(s *openapi3.Schema) []*ir.Parameter {
	props, required := objectProperties(s)
	if len(props) == 0 {
		return nil
	}
	out := make([]*ir.Parameter, 0, len(props))
	for _, name := range sortedSchemaNames(props) {
		ref := props[name]
		p := &ir.Parameter{
			Name:     name,
			Type:     b.typeOf(ref, false),
			Required: required[name],
			Nullable: !required[name],
		}
		if ref != nil && ref.Value != nil && ref.Ref == "" {
			p.Description = ref.Value.Description
			p.Enum = enumValues(ref.Value)
			if ref.Value.Nullable {
				p.Nullable = true
			}
			if isObject(ref.Value) {
				p.Properties = b.nestedProperties(ref.Value)
			}
		}
		out = append(out, p)
	}
	return out
}

// objectProperties returns the properties of s, including those of its
// allOf members, and the set of required names.
func objectProperties(s *openapi3.Schema) (openapi3.Schemas, map[string]bool) {
	props := openapi3.Schemas{}
	required := map[string]bool{}
	var collect func(*openapi3.Schema, int)
	collect = func(s *openapi3.Schema, depth int) {
		if s == nil || depth > 8 {
			return
		}
		for _, member := range s.AllOf {
			if member != nil {
				collect(member.Value, depth+1)
			}
		}
		for name, ref := range s.Properties {
			props[name] = ref
		}
		for _, r := range s.Required {
			required[r] = true
		}
	}
	collect(s, 0)
	return props, required
}

// enumValues returns the literal values of an enum with nulls removed.
func enumValues(s *openapi3.Schema) []any {
	if s == nil || len(s.Enum) == 0 {
		return nil
	}
	out := make([]any, 0, len(s.Enum))
	for _, v := range s.Enum {
		if v != nil {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func sortedSchemaNames(m openapi3.Schemas) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
