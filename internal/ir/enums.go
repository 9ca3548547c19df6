package ir

import (
	"sort"
	"strings"
)

// ParamRef is a stable address of a parameter inside a specification:
// the owning endpoint, its slot, and the property path below the top level.
type ParamRef struct {
	Owner string
	Slot  Slot
	Path  []string
}

// EndpointRef addresses a top-level parameter of an endpoint.
func EndpointRef(endpointID string, slot Slot, name string) ParamRef {
	return ParamRef{Owner: endpointID, Slot: slot, Path: []string{name}}
}

// ComponentRef addresses a property of a component schema.
func ComponentRef(schema, property string) ParamRef {
	return (&DTO{Component: schema}).FieldRef(property)
}

// Child returns the ref of a nested property.
func (r ParamRef) Child(name string) ParamRef {
	path := make([]string, len(r.Path), len(r.Path)+1)
	copy(path, r.Path)
	return ParamRef{Owner: r.Owner, Slot: r.Slot, Path: append(path, name)}
}

// Key is the map key used by side tables.
func (r ParamRef) Key() string {
	return r.Owner + "|" + string(r.Slot) + "|" + strings.Join(r.Path, "/")
}

func (r ParamRef) String() string { return r.Key() }

// EnumDefinition is one deduplicated enumeration.
type EnumDefinition struct {
	Name string
	// Signature is the sorted JSON encoding of Values.
	Signature   string
	Values      []any
	Description string
}

// EnumTable maps enum-bearing parameters to canonical enum names. It is
// built once by the enum collector and never modified afterwards.
type EnumTable struct {
	bySignature map[string]EnumDefinition
	byRef       map[string]string
	names       []string
}

// NewEnumTable copies defs and refs into a new table. refs maps
// ParamRef.Key values to a signature present in defs.
func NewEnumTable(defs []EnumDefinition, refs map[string]string) *EnumTable {
	t := &EnumTable{
		bySignature: make(map[string]EnumDefinition, len(defs)),
		byRef:       make(map[string]string, len(refs)),
	}
	for _, d := range defs {
		vals := make([]any, len(d.Values))
		copy(vals, d.Values)
		d.Values = vals
		t.bySignature[d.Signature] = d
		t.names = append(t.names, d.Name)
	}
	for k, sig := range refs {
		t.byRef[k] = sig
	}
	sort.Strings(t.names)
	return t
}

// Lookup returns the canonical enum name for a parameter.
func (t *EnumTable) Lookup(ref ParamRef) (string, bool) {
	if t == nil {
		return "", false
	}
	sig, ok := t.byRef[ref.Key()]
	if !ok {
		return "", false
	}
	def, ok := t.bySignature[sig]
	return def.Name, ok
}

// BySignature returns the definition for a signature.
func (t *EnumTable) BySignature(sig string) (EnumDefinition, bool) {
	if t == nil {
		return EnumDefinition{}, false
	}
	d, ok := t.bySignature[sig]
	return d, ok
}

// Definitions returns all definitions sorted by name.
func (t *EnumTable) Definitions() []EnumDefinition {
	if t == nil {
		return nil
	}
	out := make([]EnumDefinition, 0, len(t.bySignature))
	for _, d := range t.bySignature {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of distinct enums.
func (t *EnumTable) Len() int {
	if t == nil {
		return 0
	}
	return len(t.bySignature)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
