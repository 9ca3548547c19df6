package spec

import (
	"fmt"
	"strconv"
	"strings"
)

// nestedSchemaKeys are the keywords under which a schema is nested inside
// another schema. An unresolved reference in one of these positions is
// degraded to an empty (dynamic) schema instead of failing the load.
var nestedSchemaKeys = map[string]bool{
	"items":                true,
	"additionalProperties": true,
	"not":                  true,
}

var nestedSchemaCollections = map[string]bool{
	"properties":        true,
	"patternProperties": true,
	"allOf":             true,
	"anyOf":             true,
	"oneOf":             true,
}

// checkRefs walks the tree and verifies every $ref. Local references that
// cannot be resolved are replaced by {} when they sit in a nested schema
// position and reported as warnings; anywhere else they fail with a
// ReferenceError. External references always fail: the loader does no I/O.
func checkRefs(root map[string]any) ([]string, error) {
	w := refWalker{root: root}
	if err := w.walk(root, nil); err != nil {
		return nil, err
	}
	return w.warnings, nil
}

type refWalker struct {
	root     map[string]any
	warnings []string
}

func (w *refWalker) walk(node any, path []string) error {
	switch t := node.(type) {
	case map[string]any:
		if ref, ok := t["$ref"].(string); ok {
			return w.check(ref, path)
		}
		for _, k := range sortedMapKeys(t) {
			child := append(path[:len(path):len(path)], k)
			if w.degrade(t[k], child) {
				t[k] = map[string]any{}
				continue
			}
			if err := w.walk(t[k], child); err != nil {
				return err
			}
		}
	case []any:
		for i, e := range t {
			child := append(path[:len(path):len(path)], strconv.Itoa(i))
			if w.degrade(e, child) {
				t[i] = map[string]any{}
				continue
			}
			if err := w.walk(e, child); err != nil {
				return err
			}
		}
	}
	return nil
}

// degrade reports whether node is a dangling local reference in a nested
// schema position, recording a warning when it is.
func (w *refWalker) degrade(node any, path []string) bool {
	m, ok := node.(map[string]any)
	if !ok {
		return false
	}
	ref, ok := m["$ref"].(string)
	if !ok || !strings.HasPrefix(ref, "#") || !w.degradable(path) || w.resolves(ref) {
		return false
	}
	w.warnings = append(w.warnings, fmt.Sprintf("unresolved reference %s at %s degraded to a dynamic schema", ref, pointer(path)))
	return true
}

func (w *refWalker) resolves(ref string) bool {
	_, ok := lookup(w.root, ref)
	return ok
}

func (w *refWalker) check(ref string, path []string) error {
	if !strings.HasPrefix(ref, "#") {
		return newError(ReferenceError, pointer(path), "external reference %q at %s is not supported", ref, pointer(path))
	}
	if !w.resolves(ref) {
		return newError(ReferenceError, pointer(path), "unresolved reference %q at %s", ref, pointer(path))
	}
	return nil
}

// degradable reports whether path addresses a schema nested in another
// schema: .../items, .../properties/<name>, .../allOf/<i> and so on. The
// path is read from the root so that schema keywords only count inside a
// schema; a component schema named "items" is not a nested position.
func (w *refWalker) degradable(path []string) bool {
	const (
		outside = iota
		inSchema
		opaque
	)
	state, nested := outside, false
	for i := 0; i < len(path); i++ {
		k := path[i]
		nested = false
		switch state {
		case outside:
			switch {
			case i == 2 && path[0] == "components" && path[1] == "schemas",
				i == 1 && path[0] == "definitions",
				k == "schema":
				state = inSchema
			}
		case inSchema:
			switch {
			case nestedSchemaKeys[k]:
				nested = true
			case nestedSchemaCollections[k] && i+1 < len(path):
				i++
				nested = true
			default:
				// example, default, discriminator and extensions hold data.
				state = opaque
			}
		}
	}
	return nested
}
