package sdkemitter

import (
	"github.com/mark3labs/swagger2sdk/internal/ir"
)

// typeRenderer renders IR types as Go type expressions for one package.
type typeRenderer struct {
	enums *ir.EnumTable
	// dtos holds the names of the DTOs that are emitted.
	dtos map[string]bool
	// dtoQual and enumQual are the package qualifiers ("dto.", "") seen
	// from the package being rendered.
	dtoQual  string
	enumQual string
}

// goType renders t. Enum-bearing parameters use their canonical enum type.
func (r *typeRenderer) goType(ref ir.ParamRef, p *ir.Parameter) string {
	if p.HasEnum() {
		if name, ok := r.enums.Lookup(ref); ok {
			return r.enumQual + name
		}
	}
	return r.plain(p.Type)
}

func (r *typeRenderer) plain(t ir.Type) string {
	switch t.Kind {
	case ir.KindInteger:
		return "int64"
	case ir.KindNumber:
		return "float64"
	case ir.KindString:
		return "string"
	case ir.KindBoolean:
		return "bool"
	case ir.KindList:
		if t.Items != nil {
			return "[]" + r.plain(*t.Items)
		}
		return "[]any"
	case ir.KindMap:
		return "map[string]any"
	case ir.KindDTO:
		if r.dtos[t.DTO] {
			return r.dtoQual + t.DTO
		}
		return "map[string]any"
	}
	return "any"
}

// nilable reports whether the zero value of a rendered type is nil.
func nilable(goType string) bool {
	switch {
	case goType == "any", len(goType) > 2 && goType[:2] == "[]", len(goType) > 4 && goType[:4] == "map[":
		return true
	}
	return false
}

// fieldType renders the declared type of a parameter field. Nullable
// values that are not already nilable become pointers; DTO values are
// always pointers so recursive shapes stay finite.
func (r *typeRenderer) fieldType(ref ir.ParamRef, p *ir.Parameter, forceValue bool) (goType string, pointer bool) {
	goType = r.goType(ref, p)
	if forceValue || nilable(goType) {
		return goType, false
	}
	isDTO := p.Type.Kind == ir.KindDTO && r.dtos[p.Type.DTO] && !p.HasEnum()
	if p.Nullable || isDTO {
		return "*" + goType, true
	}
	return goType, false
}
