package naming

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mark3labs/swagger2sdk/internal/ir"
)

// Binding holds the final identifiers of one endpoint.
type Binding struct {
	// Resource is the resource class name shared by the endpoint's group.
	Resource string
	// Package is the Go package the request type lives in.
	Package string
	// Request is the request type name.
	Request string
	// Method is the forwarding method identifier on the resource.
	Method string
	// Original is the identifier before collision handling; equal to
	// Method unless the endpoint was renamed.
	Original string
}

func (b Binding) Renamed() bool { return b.Method != b.Original }

// Group is one resource and its endpoints in specification order.
type Group struct {
	Resource  string
	Package   string
	Endpoints []*ir.Endpoint
}

// CollisionWarning records a method identifier or a request package that
// had to be renamed. Endpoint is empty for package renames.
type CollisionWarning struct {
	Collection string
	Endpoint   string
	Original   string
	Renamed    string
}

func (w CollisionWarning) String() string {
	if w.Endpoint == "" {
		return fmt.Sprintf("%s: package %s renamed to %s", w.Collection, w.Original, w.Renamed)
	}
	return fmt.Sprintf("%s: %s (%s) renamed to %s", w.Collection, w.Original, w.Endpoint, w.Renamed)
}

// Resolution is the immutable result of Resolve.
type Resolution struct {
	bindings map[string]Binding
	groups   []Group
	warnings []CollisionWarning
}

// Binding returns the identifiers for an endpoint ID.
func (r *Resolution) Binding(endpointID string) (Binding, bool) {
	b, ok := r.bindings[endpointID]
	return b, ok
}

// Groups returns the resource groups sorted by resource name.
func (r *Resolution) Groups() []Group { return r.groups }

// Warnings returns the collision renames in resolution order.
func (r *Resolution) Warnings() []CollisionWarning { return r.warnings }

// Resolve assigns collision-free identifiers to every endpoint. Endpoints
// are grouped by resource class name; inside a group the first endpoint
// keeps its identifier and later clashes become <name>Duplicate<N>, with N
// counted per group.
func Resolve(spec *ir.Specification, fallback string) *Resolution {
	res := &Resolution{bindings: make(map[string]Binding)}
	if spec == nil {
		return res
	}

	index := map[string]int{}
	for _, ep := range spec.Endpoints {
		collection := ep.Collection
		if strings.TrimSpace(collection) == "" {
			collection = fallback
		}
		resource := ClassName(collection, "Resource")
		i, ok := index[resource]
		if !ok {
			i = len(res.groups)
			index[resource] = i
			res.groups = append(res.groups, Group{Resource: resource})
		}
		res.groups[i].Endpoints = append(res.groups[i].Endpoints, ep)
	}
	sort.SliceStable(res.groups, func(i, j int) bool { return res.groups[i].Resource < res.groups[j].Resource })

	// Distinct resources can share a package name ("ABTest", "AbTest").
	packages := map[string]struct{}{}
	for i := range res.groups {
		g := &res.groups[i]
		base := Package(g.Resource)
		g.Package = base
		for n := 2; ; n++ {
			if _, clash := packages[g.Package]; !clash {
				break
			}
			g.Package = fmt.Sprintf("%s%d", base, n)
		}
		packages[g.Package] = struct{}{}
		if g.Package != base {
			res.warnings = append(res.warnings, CollisionWarning{Collection: g.Resource, Original: base, Renamed: g.Package})
		}
	}

	for _, g := range res.groups {
		taken := map[string]struct{}{}
		counter := 1
		for _, ep := range g.Endpoints {
			original := Camel(ClassName(ep.Name, "Op"))
			method := original
			if _, clash := taken[method]; clash {
				for {
					method = fmt.Sprintf("%sDuplicate%d", original, counter)
					counter++
					if _, again := taken[method]; !again {
						break
					}
				}
				res.warnings = append(res.warnings, CollisionWarning{
					Collection: g.Resource,
					Endpoint:   ep.ID,
					Original:   original,
					Renamed:    method,
				})
			}
			taken[method] = struct{}{}
			res.bindings[ep.ID] = Binding{
				Resource: g.Resource,
				Package:  g.Package,
				Request:  requestName(method),
				Method:   method,
				Original: original,
			}
		}
	}
	return res
}

// requestName always appends the suffix so that distinct methods keep
// distinct request types ("list" and "listRequest" included).
func requestName(method string) string {
	return UpperFirst(method) + "Request"
}
