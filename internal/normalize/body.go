package normalize

import (
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2sdk/internal/ir"
)

// bodyContentTypes is the order in which request media types are tried.
var bodyContentTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

// selectContent picks the request media type by priority. Parameters on
// the media type (charset and so on) are ignored when matching.
func selectContent(content openapi3.Content) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	keys := make([]string, 0, len(content))
	for k := range content {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, want := range bodyContentTypes {
		if mt, ok := content[want]; ok {
			return want, mt
		}
		for _, k := range keys {
			base, _, _ := strings.Cut(k, ";")
			if strings.EqualFold(strings.TrimSpace(base), want) {
				return want, content[k]
			}
		}
	}
	return "", nil
}

// bodyParameters expands a request body schema into parameters. A property
// that references a component object is flattened one level into
// <property>_<child> parameters, all nullable, and the property itself is
// dropped. References found inside the referenced schema stay opaque.
func (b *builder) bodyParameters(body *openapi3.SchemaRef, where string) []*ir.Parameter {
	if body == nil || body.Value == nil {
		return nil
	}
	props, required := objectProperties(body.Value)
	if len(props) == 0 {
		if k := shapeKind(body.Value); k != "" && k != openapi3.TypeObject {
			b.degrade(where+" request body", "non-object body of type "+k+" has no named parameters")
		}
		return nil
	}

	var out []*ir.Parameter
	for _, name := range sortedSchemaNames(props) {
		ref := props[name]
		if ref == nil {
			continue
		}
		if component, ok := componentName(ref); ok {
			if flat := b.flatten(name, ref.Value); flat != nil {
				out = append(out, flat...)
				continue
			}
			// A referenced schema without properties cannot be expanded.
			t := ir.Type{Kind: ir.KindDTO, DTO: b.dtoName(component)}
			if !isObject(ref.Value) {
				t = b.typeOf(ref, false)
			}
			out = append(out, &ir.Parameter{
				Name:     name,
				Type:     t,
				Nullable: !required[name],
				Required: required[name],
				Enum:     enumValues(ref.Value),
			})
			continue
		}

		p := &ir.Parameter{
			Name:     name,
			Type:     b.typeOf(ref, false),
			Nullable: !required[name],
			Required: required[name],
		}
		if ref.Value != nil {
			if unsupported(ref.Value) {
				b.degrade(where+" body property "+name, "unsupported schema shape, using dynamic type")
			}
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
	return b.uniqueBodyNames(out, where)
}

// uniqueBodyNames keeps body parameter names unique. Properties declared
// on the body keep their names; a flattened name that repeats one gets the
// next free numeric suffix.
func (b *builder) uniqueBodyNames(params []*ir.Parameter, where string) []*ir.Parameter {
	taken := make(map[string]bool, len(params))
	for _, p := range params {
		if p.ParentProperty == "" {
			taken[p.Name] = true
		}
	}
	for _, p := range params {
		if p.ParentProperty == "" {
			continue
		}
		if !taken[p.Name] {
			taken[p.Name] = true
			continue
		}
		n := 2
		for taken[fmt.Sprintf("%s_%d", p.Name, n)] {
			n++
		}
		renamed := fmt.Sprintf("%s_%d", p.Name, n)
		b.degrade(where+" body property "+p.ParentProperty, fmt.Sprintf("flattened %s clashes with another body property, renamed to %s", p.Name, renamed))
		p.Name = renamed
		taken[renamed] = true
	}
	return params
}

// flatten expands the properties of a referenced schema. It returns nil
// when the schema declares no properties.
func (b *builder) flatten(parent string, target *openapi3.Schema) []*ir.Parameter {
	props, _ := objectProperties(target)
	if len(props) == 0 {
		return nil
	}
	out := make([]*ir.Parameter, 0, len(props))
	for _, child := range sortedSchemaNames(props) {
		ref := props[child]
		p := &ir.Parameter{
			Name:           parent + "_" + child,
			Type:           ir.Type{Kind: ir.KindDynamic},
			Nullable:       true,
			ParentProperty: parent,
			Child:          child,
		}
		switch {
		case ref == nil || ref.Value == nil:
		case ref.Ref != "":
			// No second level of expansion.
			p.Type = ir.Type{Kind: ir.KindMap}
		default:
			p.Type = MapType(shapeKind(ref.Value))
			p.Description = ref.Value.Description
			p.Enum = enumValues(ref.Value)
		}
		out = append(out, p)
	}
	return out
}
