// Package normalize builds the IR from a loaded OpenAPI document.
package normalize

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/tables"
)

// Degradation records a schema shape that was mapped to the most generic
// applicable output instead of failing.
type Degradation struct {
	Location string
	Reason   string
}

func (d Degradation) String() string { return d.Location + ": " + d.Reason }

// Result is the output of Build.
type Result struct {
	Spec         *ir.Specification
	Degradations []Degradation
}

// BuildOption configures how the IR is built from an OpenAPI doc.
type BuildOption func(*buildConfig)

type buildConfig struct {
	tables      *tables.Tables
	fallback    string
	logger      *slog.Logger
	includeTags map[string]struct{}
	excludeTags map[string]struct{}
	methods     map[ir.Method]struct{}
	pathRes     []*regexp.Regexp
}

// WithTables sets the lookup tables; the embedded defaults are used
// otherwise.
func WithTables(t *tables.Tables) BuildOption {
	return func(c *buildConfig) { c.tables = t }
}

// WithFallbackResource sets the collection used when none can be derived.
func WithFallbackResource(name string) BuildOption {
	return func(c *buildConfig) { c.fallback = strings.TrimSpace(name) }
}

func WithLogger(l *slog.Logger) BuildOption {
	return func(c *buildConfig) { c.logger = l }
}

// WithIncludeTags keeps only endpoints that have at least one of the given tags.
func WithIncludeTags(tags []string) BuildOption {
	return func(c *buildConfig) { c.includeTags = addSet(c.includeTags, tags) }
}

// WithExcludeTags removes endpoints that have any of the given tags.
func WithExcludeTags(tags []string) BuildOption {
	return func(c *buildConfig) { c.excludeTags = addSet(c.excludeTags, tags) }
}

// WithMethods keeps only endpoints using one of the provided HTTP methods.
func WithMethods(methods []ir.Method) BuildOption {
	return func(c *buildConfig) {
		if len(methods) == 0 {
			return
		}
		if c.methods == nil {
			c.methods = make(map[ir.Method]struct{}, len(methods))
		}
		for _, m := range methods {
			c.methods[m] = struct{}{}
		}
	}
}

// WithPathPatterns keeps only endpoints whose path matches at least one of
// the regular expressions. Invalid patterns match nothing.
func WithPathPatterns(patterns []string) BuildOption {
	return func(c *buildConfig) {
		for _, p := range patterns {
			p = strings.TrimSpace(p)
			if p == "" {
				continue
			}
			re, err := regexp.Compile(p)
			if err != nil {
				re = regexp.MustCompile("a^$")
			}
			c.pathRes = append(c.pathRes, re)
		}
	}
}

func addSet(set map[string]struct{}, items []string) map[string]struct{} {
	for _, it := range items {
		it = strings.TrimSpace(it)
		if it == "" {
			continue
		}
		if set == nil {
			set = map[string]struct{}{}
		}
		set[it] = struct{}{}
	}
	return set
}

type builder struct {
	doc          *openapi3.T
	tables       *tables.Tables
	cfg          *buildConfig
	logger       *slog.Logger
	degradations []Degradation
}

func (b *builder) degrade(location, reason string) {
	b.degradations = append(b.degradations, Degradation{Location: location, Reason: reason})
	b.logger.Warn("degraded schema", "location", location, "reason", reason)
}

// Build converts an OpenAPI v3 document into the IR. Paths are visited in
// sorted order and verbs in the fixed order of ir.Methods, so the result
// does not depend on map iteration.
func Build(ctx context.Context, doc *openapi3.T, opts ...BuildOption) (*Result, error) {
	if doc == nil {
		return nil, errors.New("normalize: nil document")
	}
	cfg := &buildConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.tables == nil {
		cfg.tables = tables.Default()
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}
	b := &builder{doc: doc, tables: cfg.tables, cfg: cfg, logger: cfg.logger}

	s := &ir.Specification{}
	if doc.Info != nil {
		s.Name = strings.TrimSpace(doc.Info.Title)
		s.Description = strings.TrimSpace(doc.Info.Description)
		s.Version = strings.TrimSpace(doc.Info.Version)
	}
	s.BaseURL = baseURL(doc.Servers)
	s.Security = securityRequirements(doc.Security)
	if doc.Components != nil {
		s.Components.Schemas = doc.Components.Schemas
		s.Components.SecuritySchemes = securitySchemes(doc.Components.SecuritySchemes)
	}

	for _, path := range sortedPaths(doc.Paths) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		item := doc.Paths[path]
		if item == nil || !b.allowPath(path) {
			continue
		}
		for _, m := range ir.Methods {
			op := item.GetOperation(string(m))
			if op == nil || !b.allowMethod(m) || !b.allowTags(op.Tags) {
				continue
			}
			ep, err := b.endpoint(path, m, item, op)
			if err != nil {
				return nil, err
			}
			s.Endpoints = append(s.Endpoints, ep)
		}
	}

	s.DTOs = b.dtos(s)
	return &Result{Spec: s, Degradations: b.degradations}, nil
}

func (b *builder) endpoint(path string, m ir.Method, item *openapi3.PathItem, op *openapi3.Operation) (*ir.Endpoint, error) {
	id := string(m) + " " + path
	tags := make([]string, 0, len(op.Tags))
	for _, t := range op.Tags {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	ep := &ir.Endpoint{
		ID:          id,
		Name:        endpointName(op, m, path),
		Method:      m,
		Path:        path,
		Segments:    pathSegments(path),
		Tags:        tags,
		Summary:     strings.TrimSpace(op.Summary),
		Description: strings.TrimSpace(op.Description),
	}
	ep.Collection = DetermineCollection(path, ep.PrimaryTag(), b.tables, b.cfg.fallback)

	params, err := b.mergeParameters(item.Parameters, op.Parameters, id)
	if err != nil {
		return nil, err
	}
	ep.PathParameters = b.parametersIn(params, openapi3.ParameterInPath, id)
	ep.QueryParameters = b.parametersIn(params, openapi3.ParameterInQuery, id)
	ep.HeaderParameters = b.parametersIn(params, openapi3.ParameterInHeader, id)

	if op.RequestBody != nil && op.RequestBody.Value != nil {
		ct, mt := selectContent(op.RequestBody.Value.Content)
		ep.ContentType = ct
		if mt != nil {
			ep.BodyParameters = b.bodyParameters(mt.Schema, id)
		} else if len(op.RequestBody.Value.Content) > 0 {
			b.degrade(id+" request body", "no supported media type")
		}
	}

	if schema := successSchema(op); schema != nil {
		if r := ClassifyResponse(schema, b.tables); r.Kind != ir.ResponseNone {
			ep.Response = &r
		}
	}
	return ep, nil
}

// endpointName prefers the operationId, then the summary, then a name
// built from the verb and the literal path segments.
func endpointName(op *openapi3.Operation, m ir.Method, path string) string {
	if id := strings.TrimSpace(op.OperationID); id != "" {
		return id
	}
	if sum := strings.TrimSpace(op.Summary); sum != "" {
		return sum
	}
	parts := []string{strings.ToLower(string(m))}
	for _, seg := range pathSegments(path) {
		if seg.IsParam() {
			parts = append(parts, "by", seg.Param)
			continue
		}
		parts = append(parts, seg.Literal)
	}
	return strings.Join(parts, "_")
}

func (b *builder) allowPath(path string) bool {
	if len(b.cfg.pathRes) == 0 {
		return true
	}
	for _, re := range b.cfg.pathRes {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

func (b *builder) allowMethod(m ir.Method) bool {
	if len(b.cfg.methods) == 0 {
		return true
	}
	_, ok := b.cfg.methods[m]
	return ok
}

func (b *builder) allowTags(tags []string) bool {
	if len(b.cfg.excludeTags) > 0 {
		for _, t := range tags {
			if _, ok := b.cfg.excludeTags[strings.TrimSpace(t)]; ok {
				return false
			}
		}
	}
	if len(b.cfg.includeTags) == 0 {
		return true
	}
	for _, t := range tags {
		if _, ok := b.cfg.includeTags[strings.TrimSpace(t)]; ok {
			return true
		}
	}
	return false
}

func sortedPaths(paths openapi3.Paths) []string {
	keys := make([]string, 0, len(paths))
	for p := range paths {
		keys = append(keys, p)
	}
	sort.Strings(keys)
	return keys
}

func baseURL(servers openapi3.Servers) ir.BaseURL {
	if len(servers) == 0 || servers[0] == nil {
		return ir.BaseURL{}
	}
	srv := servers[0]
	out := ir.BaseURL{URL: strings.TrimSpace(srv.URL)}
	names := make([]string, 0, len(srv.Variables))
	for n := range srv.Variables {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		v := srv.Variables[n]
		if v == nil {
			continue
		}
		out.Variables = append(out.Variables, ir.ServerVariable{
			Name:        n,
			Default:     v.Default,
			Description: v.Description,
			Enum:        append([]string(nil), v.Enum...),
		})
	}
	return out
}

// securityRequirements flattens the requirement objects, keeping their
// order and sorting scheme names inside each object.
func securityRequirements(reqs openapi3.SecurityRequirements) []ir.SecurityRequirement {
	var out []ir.SecurityRequirement
	for _, req := range reqs {
		names := make([]string, 0, len(req))
		for n := range req {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			out = append(out, ir.SecurityRequirement{Scheme: n, Scopes: append([]string(nil), req[n]...)})
		}
	}
	return out
}

func securitySchemes(schemes openapi3.SecuritySchemes) []ir.SecurityScheme {
	names := make([]string, 0, len(schemes))
	for n := range schemes {
		names = append(names, n)
	}
	sort.Strings(names)
	var out []ir.SecurityScheme
	for _, n := range names {
		ref := schemes[n]
		if ref == nil || ref.Value == nil {
			continue
		}
		v := ref.Value
		sc := ir.SecurityScheme{
			Name:             n,
			Type:             ir.SecuritySchemeType(v.Type),
			Description:      v.Description,
			In:               v.In,
			ParamName:        v.Name,
			Scheme:           strings.ToLower(v.Scheme),
			BearerFormat:     v.BearerFormat,
			OpenIDConnectURL: v.OpenIdConnectUrl,
		}
		if v.Flows != nil {
			sc.Flows = oauthFlows(v.Flows)
		}
		out = append(out, sc)
	}
	return out
}

func oauthFlows(f *openapi3.OAuthFlows) []ir.OAuthFlow {
	var out []ir.OAuthFlow
	add := func(name string, fl *openapi3.OAuthFlow) {
		if fl == nil {
			return
		}
		scopes := make([]string, 0, len(fl.Scopes))
		for s := range fl.Scopes {
			scopes = append(scopes, s)
		}
		sort.Strings(scopes)
		out = append(out, ir.OAuthFlow{
			Name:             name,
			AuthorizationURL: fl.AuthorizationURL,
			TokenURL:         fl.TokenURL,
			RefreshURL:       fl.RefreshURL,
			Scopes:           scopes,
		})
	}
	add("authorizationCode", f.AuthorizationCode)
	add("clientCredentials", f.ClientCredentials)
	add("implicit", f.Implicit)
	add("password", f.Password)
	return out
}

// dtos collects a DTO for every component object schema and for every
// DTO name implied by a response envelope that no component provides.
func (b *builder) dtos(s *ir.Specification) []*ir.DTO {
	byName := map[string]*ir.DTO{}
	for _, name := range s.Components.SchemaNames() {
		ref := s.Components.Schemas[name]
		if ref == nil || !isObject(ref.Value) {
			continue
		}
		d := &ir.DTO{
			Name:        b.dtoName(name),
			Component:   name,
			Description: strings.TrimSpace(ref.Value.Description),
			Fields:      b.fields(ref.Value),
		}
		if prev, clash := byName[d.Name]; clash {
			b.degrade("#/components/schemas/"+name, fmt.Sprintf("DTO name %s already used by %s", d.Name, prev.Component))
			continue
		}
		byName[d.Name] = d
	}
	for _, ep := range s.Endpoints {
		r := ep.Response
		if r == nil || r.Property == "" || r.DTO == "" {
			continue
		}
		if _, ok := byName[r.DTO]; ok {
			continue
		}
		shape := r.Schema
		if shape != nil && shapeKind(shape) == openapi3.TypeArray && shape.Items != nil {
			shape = shape.Items.Value
		}
		d := &ir.DTO{Name: r.DTO, Description: "Implied by the " + r.Property + " property of " + ep.ID + "."}
		if shape != nil {
			d.Fields = b.fields(shape)
		}
		byName[r.DTO] = d
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*ir.DTO, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out
}

// fields maps the properties of an object schema to DTO fields.
// References to component objects become DTO-typed fields.
func (b *builder) fields(s *openapi3.Schema) []*ir.Parameter {
	props, required := objectProperties(s)
	out := make([]*ir.Parameter, 0, len(props))
	for _, name := range sortedSchemaNames(props) {
		ref := props[name]
		f := &ir.Parameter{
			Name:     name,
			Type:     b.typeOf(ref, true),
			Required: required[name],
			Nullable: !required[name],
		}
		if ref != nil && ref.Value != nil {
			f.Description = strings.TrimSpace(ref.Value.Description)
			f.Enum = enumValues(ref.Value)
			if ref.Value.Nullable {
				f.Nullable = true
			}
		}
		out = append(out, f)
	}
	return out
}
