// Package enums finds literal value sets across a specification,
// deduplicates them by signature and assigns each one canonical name.
package enums

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/naming"
	"github.com/mark3labs/swagger2sdk/internal/tables"
)

// Rule priorities; lower wins.
const (
	ruleTable = iota + 1
	ruleShared
	ruleContext
)

type candidate struct {
	name string
	rule int
}

func (c candidate) better(o candidate) bool {
	if c.rule != o.rule {
		return c.rule < o.rule
	}
	return c.name < o.name
}

type collector struct {
	tables *tables.Tables
	best   map[string]candidate
	values map[string][]any
	refs   map[string]string
}

// Option configures Collect.
type Option func(*collectConfig)

type collectConfig struct {
	logger *slog.Logger
}

func WithLogger(l *slog.Logger) Option {
	return func(c *collectConfig) { c.logger = l }
}

// Collect scans component schema properties and every endpoint parameter,
// nested ones included, and returns the enum side table. The signature to
// name mapping does not depend on traversal order: each signature keeps the
// candidate with the best rule priority, ties going to the smallest name.
func Collect(spec *ir.Specification, t *tables.Tables, opts ...Option) *ir.EnumTable {
	cfg := &collectConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}
	if t == nil {
		t = tables.Default()
	}
	c := &collector{
		tables: t,
		best:   map[string]candidate{},
		values: map[string][]any{},
		refs:   map[string]string{},
	}
	if spec == nil {
		return ir.NewEnumTable(nil, nil)
	}

	for _, d := range spec.DTOs {
		context := d.Component
		if context == "" {
			context = d.Name
		}
		for _, f := range d.Fields {
			c.visit(d.FieldRef(f.Name), f, context)
		}
	}
	for _, ep := range spec.Endpoints {
		context := endpointContext(ep, t)
		for _, slot := range ir.Slots {
			for _, p := range ep.Parameters(slot) {
				c.visit(ir.EndpointRef(ep.ID, slot, p.Name), p, context)
			}
		}
	}

	defs := c.definitions()
	for _, d := range defs {
		cfg.logger.Debug("enum", "name", d.Name, "signature", d.Signature)
	}
	return ir.NewEnumTable(defs, c.refs)
}

func (c *collector) visit(ref ir.ParamRef, p *ir.Parameter, context string) {
	if p == nil {
		return
	}
	if p.HasEnum() {
		sig, vals := Signature(p.Enum)
		c.refs[ref.Key()] = sig
		if _, ok := c.values[sig]; !ok {
			c.values[sig] = vals
		}
		cand := c.candidate(p, context)
		if cur, ok := c.best[sig]; !ok || cand.better(cur) {
			c.best[sig] = cand
		}
	}
	for _, child := range p.Properties {
		c.visit(ref.Child(child.Name), child, context)
	}
}

// candidate applies the naming rules in priority order.
func (c *collector) candidate(p *ir.Parameter, context string) candidate {
	for _, key := range []string{p.Name, p.ChildName()} {
		if name, ok := c.tables.EnumName(key); ok {
			return candidate{name: c.sanitize(name), rule: ruleTable}
		}
	}
	if studly := naming.Studly(p.Name); c.tables.IsSharedConcept(studly) {
		return candidate{name: c.sanitize(studly), rule: ruleShared}
	}
	return candidate{name: c.sanitize(naming.Studly(context) + naming.Studly(p.Name)), rule: ruleContext}
}

func (c *collector) sanitize(name string) string {
	return naming.Sanitize(name, c.tables.EnumFallbackPrefix)
}

// definitions turns the winners into definitions. Signatures are visited
// in sorted order so a name won by two signatures is suffixed the same
// way on every run.
func (c *collector) definitions() []ir.EnumDefinition {
	sigs := make([]string, 0, len(c.best))
	for sig := range c.best {
		sigs = append(sigs, sig)
	}
	sort.Strings(sigs)

	used := map[string]struct{}{}
	defs := make([]ir.EnumDefinition, 0, len(sigs))
	for _, sig := range sigs {
		base := c.best[sig].name
		name := base
		for n := 2; ; n++ {
			if _, taken := used[name]; !taken {
				break
			}
			name = fmt.Sprintf("%s%d", base, n)
		}
		used[name] = struct{}{}
		defs = append(defs, ir.EnumDefinition{Name: name, Signature: sig, Values: c.values[sig]})
	}
	return defs
}

// Signature returns the deduplication key of a value set together with
// the distinct values in key order.
func Signature(values []any) (string, []any) {
	type enc struct {
		key string
		val any
	}
	seen := map[string]struct{}{}
	var encs []enc
	for _, v := range values {
		if v == nil {
			continue
		}
		b, err := json.Marshal(v)
		if err != nil {
			b = []byte(fmt.Sprintf("%q", fmt.Sprint(v)))
		}
		k := string(b)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		encs = append(encs, enc{key: k, val: v})
	}
	sort.Slice(encs, func(i, j int) bool { return encs[i].key < encs[j].key })
	keys := make([]string, len(encs))
	vals := make([]any, len(encs))
	for i, e := range encs {
		keys[i] = e.key
		vals[i] = e.val
	}
	return "[" + strings.Join(keys, ",") + "]", vals
}

// endpointContext is the primary tag, or the endpoint name without its
// leading verb token.
func endpointContext(ep *ir.Endpoint, t *tables.Tables) string {
	if tag := ep.PrimaryTag(); tag != "" {
		return tag
	}
	return t.StripVerbPrefix(ep.Name)
}
