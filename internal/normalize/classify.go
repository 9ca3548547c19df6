package normalize

import (
	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/naming"
	"github.com/mark3labs/swagger2sdk/internal/tables"
)

// ClassifyResponse decides how a success response maps to a DTO.
//
//   - a direct component reference is a DTO reference;
//   - an array of component references is an array of DTOs;
//   - an inline object is checked against the well-known envelope
//     properties in table order; the first hit names the DTO, plural
//     entries meaning an array;
//   - an array of inline objects whose items carry a plural envelope
//     property is an array of that DTO;
//   - any other inline object is inline; everything else is none.
//
// It never fails: shapes it cannot read classify as none.
func ClassifyResponse(ref *openapi3.SchemaRef, t *tables.Tables) ir.Response {
	if ref == nil {
		return ir.Response{Kind: ir.ResponseNone}
	}
	if name, ok := componentName(ref); ok {
		return ir.Response{Kind: ir.ResponseDTO, DTO: naming.Sanitize(name, t.DTOFallbackPrefix)}
	}
	s := ref.Value
	if s == nil {
		return ir.Response{Kind: ir.ResponseNone}
	}

	if props, _ := objectProperties(s); len(props) > 0 {
		for _, e := range t.Responses {
			prop, ok := props[e.Property]
			if !ok {
				continue
			}
			r := ir.Response{Kind: ir.ResponseDTO, DTO: e.DTO, Property: e.Property}
			if e.Array {
				r.Kind = ir.ResponseArrayOfDTO
			}
			if prop != nil {
				r.Schema = prop.Value
			}
			return r
		}
		return ir.Response{Kind: ir.ResponseInline, Schema: s}
	}

	if shapeKind(s) == openapi3.TypeArray && s.Items != nil {
		if name, ok := componentName(s.Items); ok {
			return ir.Response{Kind: ir.ResponseArrayOfDTO, DTO: naming.Sanitize(name, t.DTOFallbackPrefix)}
		}
		if s.Items.Value != nil {
			if props, _ := objectProperties(s.Items.Value); len(props) > 0 {
				for _, e := range t.Responses {
					if _, ok := props[e.Property]; ok && e.Array {
						return ir.Response{Kind: ir.ResponseArrayOfDTO, DTO: e.DTO}
					}
				}
			}
		}
		return ir.Response{Kind: ir.ResponseNone}
	}

	if shapeKind(s) == openapi3.TypeObject {
		return ir.Response{Kind: ir.ResponseInline, Schema: s}
	}
	return ir.Response{Kind: ir.ResponseNone}
}

// successSchema returns the application/json schema of the 200 response.
func successSchema(op *openapi3.Operation) *openapi3.SchemaRef {
	if op == nil || op.Responses == nil {
		return nil
	}
	resp := op.Responses["200"]
	if resp == nil || resp.Value == nil {
		return nil
	}
	mt := resp.Value.Content.Get("application/json")
	if mt == nil {
		return nil
	}
	return mt.Schema
}
