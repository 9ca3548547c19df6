// Package sdkemitter renders the Go source units of a generated SDK: one
// request type per endpoint, one resource facade per collection, the enums,
// the data-transfer objects and a connector that sends requests over
// net/http. Emitters read the IR and its side tables and never modify them.
package sdkemitter

import (
	"context"
	"errors"
	"fmt"
	"math"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/mark3labs/swagger2sdk/internal/config"
	"github.com/mark3labs/swagger2sdk/internal/enums"
	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/naming"
)

// Input is everything the emitters read.
type Input struct {
	Spec  *ir.Specification
	Enums *ir.EnumTable
	// Names is computed from Spec and Config.FallbackResourceName when nil.
	Names  *naming.Resolution
	Config config.Config
}

// Unit is one emitted source file. Path is slash separated and relative
// to the output root.
type Unit struct {
	Path    string
	Content []byte
}

// Emit renders every unit of the SDK, sorted by path.
func Emit(ctx context.Context, in Input) ([]Unit, error) {
	if in.Spec == nil {
		return nil, errors.New("sdkemitter: no specification")
	}
	e := newEmitter(in)

	var units []Unit
	seen := map[string]bool{}
	add := func(u Unit) {
		u.Path = uniquePath(u.Path, seen)
		units = append(units, u)
	}

	add(e.module())
	u, err := e.connector()
	if err != nil {
		return nil, err
	}
	add(u)

	for _, d := range in.Spec.DTOs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u, err := e.dto(d)
		if err != nil {
			return nil, err
		}
		add(u)
	}

	for _, def := range in.Enums.Definitions() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(def.Values) == 0 {
			continue
		}
		u, err := e.enum(def)
		if err != nil {
			return nil, err
		}
		add(u)
	}

	for _, g := range e.in.Names.Groups() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		u, err := e.resource(g)
		if err != nil {
			return nil, err
		}
		add(u)
		for _, ep := range g.Endpoints {
			u, err := e.request(ep)
			if err != nil {
				return nil, err
			}
			add(u)
		}
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Path < units[j].Path })
	return units, nil
}

// EmitRequest renders the request unit of one endpoint.
func EmitRequest(in Input, ep *ir.Endpoint) (Unit, error) {
	return newEmitter(in).request(ep)
}

// EmitResource renders the facade of the named resource group.
func EmitResource(in Input, collection string) (Unit, error) {
	e := newEmitter(in)
	for _, g := range e.in.Names.Groups() {
		if g.Resource == collection {
			return e.resource(g)
		}
	}
	return Unit{}, fmt.Errorf("sdkemitter: unknown resource %q", collection)
}

// EmitEnum renders one enum definition.
func EmitEnum(in Input, def ir.EnumDefinition) (Unit, error) {
	if len(def.Values) == 0 {
		return Unit{}, fmt.Errorf("sdkemitter: enum %s has no values", def.Name)
	}
	return newEmitter(in).enum(def)
}

// EmitDTO renders one data-transfer object.
func EmitDTO(in Input, d *ir.DTO) (Unit, error) {
	return newEmitter(in).dto(d)
}

// EmitModule renders the go.mod of the SDK. The generated code only
// imports the standard library, so the module has no requirements.
func EmitModule(in Input) Unit {
	return newEmitter(in).module()
}

// EmitConnector renders the connector unit.
func EmitConnector(in Input) (Unit, error) {
	return newEmitter(in).connector()
}

type emitter struct {
	in   Input
	root string
	dtos map[string]bool
}

func newEmitter(in Input) *emitter {
	if in.Spec == nil {
		in.Spec = &ir.Specification{}
	}
	if in.Names == nil {
		in.Names = naming.Resolve(in.Spec, in.Config.FallbackResourceName)
	}
	e := &emitter{in: in, root: in.Config.Namespace, dtos: map[string]bool{}}
	if e.root == "" {
		e.root = "sdk"
		if strings.TrimSpace(in.Spec.Name) != "" {
			e.root = naming.Package(in.Spec.Name)
		}
	}
	for _, d := range in.Spec.DTOs {
		e.dtos[d.Name] = true
	}
	return e
}

func (e *emitter) importPath(suffix string) string { return e.root + "/" + suffix }

type importSpec struct {
	Alias string
	Path  string
}

// importSet collects the imports of one file. Aliases are chosen so that
// no import shadows the file's own package name or another import.
type importSet struct {
	list []importSpec
	used map[string]bool
}

func newImportSet(self string, std ...string) *importSet {
	s := &importSet{used: map[string]bool{self: true}}
	for _, p := range std {
		s.list = append(s.list, importSpec{Path: p})
		s.used[path.Base(p)] = true
	}
	return s
}

// add imports p under alias, or under its base name when alias is empty,
// and returns the qualifier to use.
func (s *importSet) add(p, alias string) string {
	name := path.Base(p)
	if alias == "" {
		alias = name
	}
	for s.used[alias] {
		alias = "sdk" + alias
	}
	s.used[alias] = true
	spec := importSpec{Path: p}
	if alias != name {
		spec.Alias = alias
	}
	s.list = append(s.list, spec)
	return alias + "."
}

// request methods a parameter field must not shadow
var reservedMethods = map[string]bool{
	"Method":                true,
	"ResolveEndpoint":       true,
	"ContentType":           true,
	"DefaultBody":           true,
	"DefaultQuery":          true,
	"DefaultHeaders":        true,
	"CreateDtoFromResponse": true,
}

type fieldDecl struct {
	Name string
	Type string
	Doc  string
}

type taggedField struct {
	Name string
	Type string
	Doc  string
	Key  string
	Omit bool
}

type structDecl struct {
	Name   string
	Doc    string
	Fields []taggedField
}

type ctorArg struct {
	Name string
	Arg  string
	Type string
}

type assignment struct {
	Name      string
	Key       string
	Parent    string
	Conn      string
	Check     bool
	Pointer   bool
	Stringify bool
}

type responseDecoder struct {
	Return   string
	Decl     string
	Property string
	Expr     string
}

type requestData struct {
	Package     string
	Imports     []importSpec
	Doc         string
	Type        string
	Fields      []fieldDecl
	Structs     []structDecl
	Ctor        []ctorArg
	Method      string
	PathExpr    string
	ContentType string
	Body        []assignment
	Query       []assignment
	Header      []assignment
	Response    *responseDecoder
	Conn        string
}

type pathField struct {
	name   string
	goType string
}

func (e *emitter) request(ep *ir.Endpoint) (Unit, error) {
	b, ok := e.in.Names.Binding(ep.ID)
	if !ok {
		return Unit{}, fmt.Errorf("sdkemitter: no binding for %s", ep.ID)
	}
	cfg := e.in.Config
	imports := newImportSet(b.Package, "fmt", "net/url")
	conn := imports.add(e.importPath(cfg.ConnectorSuffix), "")
	types := &typeRenderer{
		enums:    e.in.Enums,
		dtos:     e.dtos,
		dtoQual:  imports.add(e.importPath(cfg.DTOSuffix), ""),
		enumQual: imports.add(e.importPath(cfg.EnumSuffix), ""),
	}

	data := requestData{
		Package: b.Package,
		Type:    b.Request,
		Doc:     requestDoc(b.Request, ep),
		Method:  string(ep.Method),
		Conn:    conn,
	}

	taken := map[string]bool{}
	args := map[string]bool{}
	pathFields := map[string]pathField{}
	hasBody := false
	for _, slot := range ir.Slots {
		for _, p := range ep.Parameters(slot) {
			if slot != ir.SlotPath && cfg.Ignored(string(slot), p.Name) {
				continue
			}
			ref := ir.EndpointRef(ep.ID, slot, p.Name)
			name := fieldName(p.Name, slot, taken)

			var goType string
			var pointer bool
			if len(p.Properties) > 0 && !p.HasEnum() && slot != ir.SlotPath {
				structName := b.Request + name
				data.Structs = append(data.Structs, e.nested(structName, ref, p, types)...)
				goType, pointer = "*"+structName, true
			} else {
				goType, pointer = types.fieldType(ref, p, slot == ir.SlotPath)
			}
			data.Fields = append(data.Fields, fieldDecl{Name: name, Type: goType, Doc: p.Description})

			if slot == ir.SlotPath || p.Required {
				data.Ctor = append(data.Ctor, ctorArg{Name: name, Arg: argName(p.Name, args), Type: goType})
			}

			a := assignment{
				Name:    name,
				Key:     p.Name,
				Conn:    conn,
				Check:   pointer || nilable(goType),
				Pointer: pointer,
			}
			switch slot {
			case ir.SlotPath:
				pathFields[p.Name] = pathField{name: name, goType: goType}
			case ir.SlotBody:
				hasBody = true
				if p.ParentProperty != "" {
					a.Parent, a.Key = p.ParentProperty, p.ChildName()
				}
				data.Body = append(data.Body, a)
			case ir.SlotQuery:
				data.Query = append(data.Query, a)
			case ir.SlotHeader:
				a.Stringify = strings.TrimPrefix(goType, "*") != "string"
				data.Header = append(data.Header, a)
			}
		}
	}
	data.PathExpr = pathExpr(ep, pathFields)
	if hasBody {
		data.ContentType = ep.ContentType
		if data.ContentType == "" {
			data.ContentType = "application/json"
		}
	}
	data.Response = e.decoder(ep.Response, types.dtoQual)
	data.Imports = imports.list

	file := path.Join(cfg.RequestSuffix, b.Package, goFile(naming.Snake(b.Method)))
	content, err := render("request", file, data)
	if err != nil {
		return Unit{}, fmt.Errorf("sdkemitter: render %s: %w", ep.ID, err)
	}
	return Unit{Path: file, Content: content}, nil
}

func requestDoc(typeName string, ep *ir.Endpoint) string {
	doc := fmt.Sprintf("%s is the request for %s %s.", typeName, ep.Method, ep.Path)
	if ep.Summary != "" && ep.Summary != ep.Name {
		doc += "\n\n" + ep.Summary
	}
	if ep.Description != "" {
		doc += "\n\n" + ep.Description
	}
	return doc
}

// nested renders the struct types of an inline object parameter, the
// outermost first.
func (e *emitter) nested(name string, ref ir.ParamRef, p *ir.Parameter, types *typeRenderer) []structDecl {
	decl := structDecl{Name: name, Doc: fmt.Sprintf("%s is the %s object.", name, p.Name)}
	var inner []structDecl
	taken := map[string]bool{}
	for _, prop := range p.Properties {
		childRef := ref.Child(prop.Name)
		field := uniqueIdent(naming.Field(prop.Name), taken)
		var goType string
		if len(prop.Properties) > 0 && !prop.HasEnum() {
			childName := name + field
			inner = append(inner, e.nested(childName, childRef, prop, types)...)
			goType = "*" + childName
		} else {
			goType, _ = types.fieldType(childRef, prop, false)
		}
		decl.Fields = append(decl.Fields, taggedField{
			Name: field,
			Type: goType,
			Doc:  prop.Description,
			Key:  prop.Name,
			Omit: !prop.Required,
		})
	}
	return append([]structDecl{decl}, inner...)
}

// fieldName picks the struct field for a parameter. Names that clash with
// a request method or an earlier field get the slot name appended, then a
// counter.
func fieldName(param string, slot ir.Slot, taken map[string]bool) string {
	name := naming.Field(param)
	if taken[name] || reservedMethods[name] {
		name += naming.Studly(string(slot))
	}
	base := name
	for i := 2; taken[name] || reservedMethods[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}

func argName(param string, taken map[string]bool) string {
	return uniqueIdent(naming.Var(param), taken)
}

func uniqueIdent(name string, taken map[string]bool) string {
	base := name
	for i := 2; taken[name]; i++ {
		name = base + strconv.Itoa(i)
	}
	taken[name] = true
	return name
}

// pathExpr renders the Go expression of ResolveEndpoint. Placeholders
// without a declared parameter stay literal.
func pathExpr(ep *ir.Endpoint, fields map[string]pathField) string {
	var parts []string
	lit := ""
	for _, seg := range ep.Segments {
		lit += "/"
		if !seg.IsParam() {
			lit += seg.Literal
			continue
		}
		f, ok := fields[seg.Param]
		if !ok {
			lit += "{" + seg.Param + "}"
			continue
		}
		parts = append(parts, strconv.Quote(lit))
		lit = ""
		v := "r." + f.name
		if f.goType != "string" {
			v = "fmt.Sprint(" + v + ")"
		}
		parts = append(parts, "url.PathEscape("+v+")")
	}
	if lit != "" || len(parts) == 0 {
		if lit == "" {
			lit = "/"
		}
		parts = append(parts, strconv.Quote(lit))
	}
	return strings.Join(parts, " + ")
}

// decoder picks the CreateDtoFromResponse shape. Envelope properties that
// cannot be written in a struct tag decode the raw body instead.
func (e *emitter) decoder(r *ir.Response, dtoQual string) *responseDecoder {
	if r == nil || r.Kind == ir.ResponseNone {
		return nil
	}
	raw := &responseDecoder{Return: "any", Decl: "any", Expr: "out"}
	if strings.ContainsAny(r.Property, "\"`,") {
		return raw
	}
	value := "out"
	if r.Property != "" {
		value = "envelope.Value"
	}
	switch r.Kind {
	case ir.ResponseDTO:
		if !e.dtos[r.DTO] {
			return &responseDecoder{Return: "any", Decl: "any", Property: r.Property, Expr: value}
		}
		return &responseDecoder{Return: "*" + dtoQual + r.DTO, Decl: dtoQual + r.DTO, Property: r.Property, Expr: "&" + value}
	case ir.ResponseArrayOfDTO:
		elem := "map[string]any"
		if e.dtos[r.DTO] {
			elem = dtoQual + r.DTO
		}
		return &responseDecoder{Return: "[]" + elem, Decl: "[]" + elem, Property: r.Property, Expr: value}
	}
	return raw
}

type resourceMethod struct {
	Name    string
	Doc     string
	Request string
}

type resourceData struct {
	Package string
	Imports []importSpec
	Type    string
	Conn    string
	Req     string
	Methods []resourceMethod
}

func (e *emitter) resource(g naming.Group) (Unit, error) {
	cfg := e.in.Config
	pkg := path.Base(cfg.ResourceSuffix)
	imports := newImportSet(pkg, "context")
	data := resourceData{
		Package: pkg,
		Type:    g.Resource,
		Conn:    imports.add(e.importPath(cfg.ConnectorSuffix), ""),
		Req:     imports.add(e.importPath(path.Join(cfg.RequestSuffix, g.Package)), g.Package+"req"),
	}
	for _, ep := range g.Endpoints {
		b, ok := e.in.Names.Binding(ep.ID)
		if !ok {
			return Unit{}, fmt.Errorf("sdkemitter: no binding for %s", ep.ID)
		}
		name := naming.UpperFirst(b.Method)
		doc := fmt.Sprintf("%s sends %s %s.", name, ep.Method, ep.Path)
		if b.Renamed() {
			doc += fmt.Sprintf("\n\nRenamed from %s: another endpoint of %s already uses that name.", naming.UpperFirst(b.Original), g.Resource)
		}
		if ep.Summary != "" && ep.Summary != ep.Name {
			doc += "\n\n" + ep.Summary
		}
		data.Methods = append(data.Methods, resourceMethod{Name: name, Doc: doc, Request: b.Request})
	}
	data.Imports = imports.list

	file := path.Join(cfg.ResourceSuffix, goFile(naming.Snake(g.Resource)))
	content, err := render("resource", file, data)
	if err != nil {
		return Unit{}, fmt.Errorf("sdkemitter: render resource %s: %w", g.Resource, err)
	}
	return Unit{Path: file, Content: content}, nil
}

type enumMember struct {
	Const string
	Value string
}

type enumData struct {
	Package string
	Doc     string
	Name    string
	Base    string
	Members []enumMember
}

func (e *emitter) enum(def ir.EnumDefinition) (Unit, error) {
	cfg := e.in.Config
	data := enumData{
		Package: path.Base(cfg.EnumSuffix),
		Name:    def.Name,
		Base:    enumBase(def.Values),
		Doc:     def.Description,
	}
	if data.Doc == "" {
		data.Doc = fmt.Sprintf("%s is a closed set of API values.", def.Name)
	}
	seen := map[string]bool{}
	names := enums.MemberNames(def.Values)
	for i, v := range def.Values {
		lit := enumLiteral(data.Base, v)
		if seen[lit] {
			continue
		}
		seen[lit] = true
		data.Members = append(data.Members, enumMember{Const: def.Name + "_" + names[i], Value: lit})
	}

	file := path.Join(cfg.EnumSuffix, goFile(naming.Snake(def.Name)))
	content, err := render("enum", file, data)
	if err != nil {
		return Unit{}, fmt.Errorf("sdkemitter: render enum %s: %w", def.Name, err)
	}
	return Unit{Path: file, Content: content}, nil
}

// enumBase picks the underlying type shared by every value. Mixed sets
// fall back to string.
func enumBase(values []any) string {
	allString, allBool, allNumber, allInteger := true, true, true, true
	for _, v := range values {
		switch x := v.(type) {
		case string:
			allBool, allNumber, allInteger = false, false, false
		case bool:
			allString, allNumber, allInteger = false, false, false
		case float64:
			allString, allBool = false, false
			if x != math.Trunc(x) || math.IsInf(x, 0) {
				allInteger = false
			}
		case int, int32, int64:
			allString, allBool = false, false
		default:
			allString, allBool, allNumber, allInteger = false, false, false, false
		}
	}
	switch {
	case allString:
		return "string"
	case allInteger:
		return "int64"
	case allNumber:
		return "float64"
	case allBool:
		return "bool"
	}
	return "string"
}

func enumLiteral(base string, v any) string {
	switch base {
	case "int64", "float64":
		return enums.Literal(v)
	case "bool":
		return fmt.Sprint(v)
	}
	return strconv.Quote(enums.Literal(v))
}

type dtoData struct {
	Package string
	Imports []importSpec
	Doc     string
	Name    string
	Fields  []taggedField
}

func (e *emitter) dto(d *ir.DTO) (Unit, error) {
	cfg := e.in.Config
	pkg := path.Base(cfg.DTOSuffix)
	imports := newImportSet(pkg)
	types := &typeRenderer{
		enums:    e.in.Enums,
		dtos:     e.dtos,
		enumQual: imports.add(e.importPath(cfg.EnumSuffix), ""),
	}
	data := dtoData{Package: pkg, Name: d.Name, Doc: d.Description}
	if data.Doc == "" {
		data.Doc = fmt.Sprintf("%s mirrors the %s schema.", d.Name, d.Component)
		if d.Component == "" {
			data.Doc = fmt.Sprintf("%s is a response object.", d.Name)
		}
	}
	taken := map[string]bool{}
	for _, f := range d.Fields {
		goType, _ := types.fieldType(d.FieldRef(f.Name), f, false)
		data.Fields = append(data.Fields, taggedField{
			Name: uniqueIdent(naming.Field(f.Name), taken),
			Type: goType,
			Doc:  f.Description,
			Key:  f.Name,
			Omit: !f.Required,
		})
	}
	data.Imports = imports.list

	file := path.Join(cfg.DTOSuffix, goFile(naming.Snake(d.Name)))
	content, err := render("dto", file, data)
	if err != nil {
		return Unit{}, fmt.Errorf("sdkemitter: render dto %s: %w", d.Name, err)
	}
	return Unit{Path: file, Content: content}, nil
}

type serverVariable struct {
	Name    string
	Default string
	Doc     string
}

type authHelper struct {
	Doc    string
	Func   string
	Params string
	Body   string
}

type connectorData struct {
	Package   string
	Doc       string
	BaseURL   string
	Variables []serverVariable
	Schemes   []authHelper
}

// connector-level names an auth helper must not take
var connectorReserved = map[string]bool{
	"New": true, "NewBearerAuth": true, "NewBasicAuth": true, "NewAPIKeyAuth": true,
	"ResolveBaseURL": true, "Nested": true, "WithBaseURL": true, "WithServerVariables": true,
	"WithHTTPClient": true, "WithAuthenticator": true, "WithHeader": true, "WithQuery": true,
}

func (e *emitter) connector() (Unit, error) {
	cfg := e.in.Config
	s := e.in.Spec
	data := connectorData{
		Package: path.Base(cfg.ConnectorSuffix),
		BaseURL: s.BaseURL.URL,
	}
	title := s.Name
	if title == "" {
		title = "the API"
	}
	data.Doc = fmt.Sprintf("Package %s sends requests to %s.", data.Package, title)
	if s.Version != "" {
		data.Doc += fmt.Sprintf("\n\nGenerated for version %s.", s.Version)
	}
	if reqs := securitySummary(s.Security); reqs != "" {
		data.Doc += "\n\nThe API expects " + reqs + "."
	}

	for _, v := range s.BaseURL.Variables {
		doc := v.Description
		if len(v.Enum) > 0 {
			if doc != "" {
				doc += "\n"
			}
			doc += "One of: " + strings.Join(v.Enum, ", ") + "."
		}
		data.Variables = append(data.Variables, serverVariable{Name: v.Name, Default: v.Default, Doc: doc})
	}

	taken := map[string]bool{}
	for k := range connectorReserved {
		taken[k] = true
	}
	for _, sc := range s.Components.SecuritySchemes {
		h, ok := authFor(sc)
		if !ok {
			continue
		}
		h.Func = uniqueIdent(naming.ClassName(sc.Name, "Scheme")+"Auth", taken)
		data.Schemes = append(data.Schemes, h)
	}

	file := path.Join(cfg.ConnectorSuffix, "connector.go")
	content, err := render("connector", file, data)
	if err != nil {
		return Unit{}, fmt.Errorf("sdkemitter: render connector: %w", err)
	}
	return Unit{Path: file, Content: content}, nil
}

func (e *emitter) module() Unit {
	return Unit{Path: "go.mod", Content: []byte(fmt.Sprintf("module %s\n\ngo %s\n", e.root, goDirective))}
}

// goDirective is the language version the emitted code needs.
const goDirective = "1.22"

func securitySummary(reqs []ir.SecurityRequirement) string {
	var out []string
	for _, r := range reqs {
		s := r.Scheme
		if len(r.Scopes) > 0 {
			s += " (" + strings.Join(r.Scopes, ", ") + ")"
		}
		out = append(out, s)
	}
	return strings.Join(out, " or ")
}

// authFor maps a security scheme to a helper constructor. OAuth2 and
// OpenID Connect send an already obtained access token.
func authFor(sc ir.SecurityScheme) (authHelper, bool) {
	doc := sc.Description
	add := func(line string) {
		if doc != "" {
			doc += "\n\n"
		}
		doc += line
	}
	switch sc.Type {
	case ir.SecurityHTTP:
		switch strings.ToLower(sc.Scheme) {
		case "bearer":
			add(fmt.Sprintf("Bearer token for the %s scheme.", sc.Name))
			return authHelper{Doc: doc, Params: "token string", Body: "NewBearerAuth(token)"}, true
		case "basic":
			add(fmt.Sprintf("HTTP basic credentials for the %s scheme.", sc.Name))
			return authHelper{Doc: doc, Params: "username, password string", Body: "NewBasicAuth(username, password)"}, true
		case "":
			return authHelper{}, false
		}
		add(fmt.Sprintf("Authorization header for the %s scheme.", sc.Name))
		return authHelper{
			Doc:    doc,
			Params: "credentials string",
			Body: fmt.Sprintf("AuthenticatorFunc(func(req *http.Request) {\n\t\treq.Header.Set(\"Authorization\", %s+credentials)\n\t})",
				strconv.Quote(naming.UpperFirst(sc.Scheme)+" ")),
		}, true
	case ir.SecurityAPIKey:
		in := sc.In
		if in == "" {
			in = "header"
		}
		add(fmt.Sprintf("API key sent as the %s %s.", sc.ParamName, in))
		return authHelper{
			Doc:    doc,
			Params: "key string",
			Body:   fmt.Sprintf("NewAPIKeyAuth(%s, %s, key)", strconv.Quote(in), strconv.Quote(sc.ParamName)),
		}, true
	case ir.SecurityOAuth2:
		for _, f := range sc.Flows {
			if f.TokenURL != "" {
				add(fmt.Sprintf("Access token from %s (%s flow).", f.TokenURL, f.Name))
				break
			}
		}
		if doc == "" {
			add(fmt.Sprintf("OAuth2 access token for the %s scheme.", sc.Name))
		}
		return authHelper{Doc: doc, Params: "token string", Body: "NewBearerAuth(token)"}, true
	case ir.SecurityOpenIDConnect:
		add(fmt.Sprintf("Access token issued by %s.", sc.OpenIDConnectURL))
		return authHelper{Doc: doc, Params: "token string", Body: "NewBearerAuth(token)"}, true
	}
	return authHelper{}, false
}

// uniquePath suffixes a path that is already taken.
func uniquePath(p string, seen map[string]bool) string {
	if !seen[p] {
		seen[p] = true
		return p
	}
	stem := strings.TrimSuffix(p, ".go")
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s_%d.go", stem, i)
		if !seen[candidate] {
			seen[candidate] = true
			return candidate
		}
	}
}

// goFile turns a snake_case stem into a file name the go tool compiles on
// every platform: stems ending in _test or a GOOS/GOARCH word get a suffix.
func goFile(stem string) string {
	if stem == "" {
		stem = "unit"
	}
	if i := strings.LastIndex(stem, "_"); i >= 0 {
		last := stem[i+1:]
		if last == "test" || knownOS[last] || knownArch[last] {
			stem += "_gen"
		}
	}
	return stem + ".go"
}

var knownOS = map[string]bool{
	"aix": true, "android": true, "darwin": true, "dragonfly": true, "freebsd": true,
	"hurd": true, "illumos": true, "ios": true, "js": true, "linux": true, "nacl": true,
	"netbsd": true, "openbsd": true, "plan9": true, "solaris": true, "wasip1": true,
	"windows": true, "zos": true,
}

var knownArch = map[string]bool{
	"386": true, "amd64": true, "amd64p32": true, "arm": true, "armbe": true, "arm64": true,
	"arm64be": true, "loong64": true, "mips": true, "mipsle": true, "mips64": true,
	"mips64le": true, "mips64p32": true, "mips64p32le": true, "ppc": true, "ppc64": true,
	"ppc64le": true, "riscv": true, "riscv64": true, "s390": true, "s390x": true,
	"sparc": true, "sparc64": true, "wasm": true,
}
