package normalize

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/naming"
)

const componentPrefix = "#/components/schemas/"

// MapType maps a schema primitive kind to a semantic type. It is total:
// anything it does not know is dynamic.
func MapType(kind string) ir.Type {
	switch kind {
	case openapi3.TypeInteger:
		return ir.Type{Kind: ir.KindInteger}
	case openapi3.TypeNumber:
		return ir.Type{Kind: ir.KindNumber}
	case openapi3.TypeString:
		return ir.Type{Kind: ir.KindString}
	case openapi3.TypeBoolean:
		return ir.Type{Kind: ir.KindBoolean}
	case openapi3.TypeArray:
		return ir.Type{Kind: ir.KindList}
	case openapi3.TypeObject:
		return ir.Type{Kind: ir.KindMap}
	}
	return ir.Type{Kind: ir.KindDynamic}
}

// componentName returns the component schema name behind a reference.
func componentName(ref *openapi3.SchemaRef) (string, bool) {
	if ref == nil || !strings.HasPrefix(ref.Ref, componentPrefix) {
		return "", false
	}
	name := strings.TrimPrefix(ref.Ref, componentPrefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

// shapeKind infers the primitive kind of a schema, filling in "object"
// and "array" when only properties or items are declared.
func shapeKind(s *openapi3.Schema) string {
	if s == nil {
		return ""
	}
	switch {
	case s.Type != "":
		return s.Type
	case len(s.Properties) > 0 || len(s.AllOf) > 0:
		return openapi3.TypeObject
	case s.Items != nil:
		return openapi3.TypeArray
	}
	return ""
}

// unsupported reports whether a schema has a shape MapType cannot name.
func unsupported(s *openapi3.Schema) bool {
	if s == nil {
		return false
	}
	k := shapeKind(s)
	if k == "" {
		return len(s.OneOf) > 0 || len(s.AnyOf) > 0
	}
	return MapType(k).Kind == ir.KindDynamic
}

// typeOf maps a schema to a semantic type. Lists remember their element
// type; references to component objects become DTO types when dtoRefs is
// set, and opaque maps otherwise. A list that contains itself stops at the
// second visit with untyped items.
func (b *builder) typeOf(ref *openapi3.SchemaRef, dtoRefs bool) ir.Type {
	return b.typeOfSeen(ref, dtoRefs, nil)
}

func (b *builder) typeOfSeen(ref *openapi3.SchemaRef, dtoRefs bool, seen map[*openapi3.Schema]bool) ir.Type {
	if ref == nil || ref.Value == nil {
		return ir.Type{Kind: ir.KindDynamic}
	}
	if name, ok := componentName(ref); ok && isObject(ref.Value) {
		if dtoRefs {
			return ir.Type{Kind: ir.KindDTO, DTO: b.dtoName(name)}
		}
		return ir.Type{Kind: ir.KindMap}
	}
	t := MapType(shapeKind(ref.Value))
	if t.Kind != ir.KindList || ref.Value.Items == nil {
		return t
	}
	if seen[ref.Value] {
		where := ref.Ref
		if where == "" {
			where = "array schema"
		}
		b.degrade(where, "array contains itself, items left untyped")
		return ir.Type{Kind: ir.KindDynamic}
	}
	if seen == nil {
		seen = make(map[*openapi3.Schema]bool)
	}
	seen[ref.Value] = true
	defer delete(seen, ref.Value)
	items := b.typeOfSeen(ref.Value.Items, dtoRefs, seen)
	if items.Kind != ir.KindDynamic {
		t.Items = &items
	}
	return t
}

func isObject(s *openapi3.Schema) bool {
	return s != nil && shapeKind(s) == openapi3.TypeObject
}

// dtoName sanitizes a component name into a DTO type name.
func (b *builder) dtoName(component string) string {
	return naming.Sanitize(component, b.tables.DTOFallbackPrefix)
}
