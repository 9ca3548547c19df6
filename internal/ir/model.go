// Package ir holds the normalized, format-independent representation of an
// API that the generator works on. Nodes are built once by the normalizer and
// treated as read-only afterwards; later passes publish their results through
// side tables (see EnumTable) instead of writing into the nodes.
package ir

import (
	"strings"

	"github.com/getkin/kin-openapi/openapi3"
)

// Method is an HTTP verb in upper case.
type Method string

const (
	GET     Method = "GET"
	POST    Method = "POST"
	PUT     Method = "PUT"
	DELETE  Method = "DELETE"
	PATCH   Method = "PATCH"
	HEAD    Method = "HEAD"
	OPTIONS Method = "OPTIONS"
	TRACE   Method = "TRACE"
)

// Methods lists the supported verbs in the order endpoints are visited.
var Methods = []Method{GET, POST, PUT, DELETE, PATCH, HEAD, OPTIONS, TRACE}

// ParseMethod maps a verb in any case to a Method.
func ParseMethod(s string) (Method, bool) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Methods {
		if m == known {
			return m, true
		}
	}
	return "", false
}

// HasBody reports whether requests with this verb carry a body.
func (m Method) HasBody() bool {
	return m == POST || m == PUT || m == PATCH
}

// Kind is the semantic category of a value.
type Kind string

const (
	KindDynamic Kind = "dynamic"
	KindInteger Kind = "integer"
	// KindNumber is a float-or-integer value.
	KindNumber  Kind = "number"
	KindString  Kind = "string"
	KindBoolean Kind = "boolean"
	KindList    Kind = "list"
	KindMap     Kind = "map"
	// KindDTO refers to a named component schema that could not be expanded.
	KindDTO Kind = "dto"
)

// Type describes the semantic type of a parameter or property.
type Type struct {
	Kind Kind
	// DTO is the sanitized component name when Kind is KindDTO.
	DTO string
	// Items is the element type of a list when it is known.
	Items *Type
}

func (t Type) String() string {
	switch {
	case t.Kind == KindDTO:
		return "dto(" + t.DTO + ")"
	case t.Kind == KindList && t.Items != nil:
		return "list(" + t.Items.String() + ")"
	}
	return string(t.Kind)
}

// Specification is the root of the IR.
type Specification struct {
	Name        string
	Description string
	Version     string
	BaseURL     BaseURL
	Security    []SecurityRequirement
	Components  Components
	Endpoints   []*Endpoint
	// DTOs are the data-transfer objects to emit, sorted by name.
	DTOs []*DTO
}

// DTO is a named object shape taken from a component schema or implied by
// a response envelope.
type DTO struct {
	Name string
	// Component is the raw component schema name; empty for DTOs implied by
	// response classification.
	Component   string
	Description string
	Fields      []*Parameter
}

// Owner is the ParamRef owner used for the DTO's fields.
func (d *DTO) Owner() string {
	if d.Component != "" {
		return "#/components/schemas/" + d.Component
	}
	return "#/dto/" + d.Name
}

// FieldRef addresses one field of the DTO.
func (d *DTO) FieldRef(field string) ParamRef {
	return ParamRef{Owner: d.Owner(), Slot: SlotComponent, Path: []string{field}}
}

// BaseURL is a server URL template with its named variables.
type BaseURL struct {
	URL       string
	Variables []ServerVariable
}

type ServerVariable struct {
	Name        string
	Default     string
	Description string
	Enum        []string
}

// SecurityRequirement names a security scheme and the scopes it needs.
type SecurityRequirement struct {
	Scheme string
	Scopes []string
}

type Components struct {
	// Schemas is kept opaque; the DTO emitter and the enum collector read it.
	Schemas         openapi3.Schemas
	SecuritySchemes []SecurityScheme
}

// SchemaNames returns the component schema names in sorted order.
func (c Components) SchemaNames() []string {
	return sortedKeys(c.Schemas)
}

type SecuritySchemeType string

const (
	SecurityAPIKey        SecuritySchemeType = "apiKey"
	SecurityHTTP          SecuritySchemeType = "http"
	SecurityOAuth2        SecuritySchemeType = "oauth2"
	SecurityOpenIDConnect SecuritySchemeType = "openIdConnect"
)

// SecurityScheme is a security scheme declaration from the components.
type SecurityScheme struct {
	Name             string
	Type             SecuritySchemeType
	Description      string
	In               string // header|query|cookie for api keys
	ParamName        string // header or query parameter name for api keys
	Scheme           string // basic|bearer|... for http
	BearerFormat     string
	Flows            []OAuthFlow
	OpenIDConnectURL string
}

type OAuthFlow struct {
	Name             string // implicit|password|clientCredentials|authorizationCode
	AuthorizationURL string
	TokenURL         string
	RefreshURL       string
	Scopes           []string
}

// PathSegment is either a literal or a parameter placeholder.
type PathSegment struct {
	Literal string
	Param   string
}

func (s PathSegment) IsParam() bool { return s.Param != "" }

// Endpoint is one operation of the API.
type Endpoint struct {
	// ID is "<METHOD> <path>"; unique within a specification.
	ID          string
	Name        string
	Method      Method
	Path        string
	Segments    []PathSegment
	Collection  string
	Tags        []string
	Summary     string
	Description string
	ContentType string
	Response    *Response

	PathParameters   []*Parameter
	QueryParameters  []*Parameter
	BodyParameters   []*Parameter
	HeaderParameters []*Parameter
}

// PrimaryTag returns the first tag or "".
func (e *Endpoint) PrimaryTag() string {
	if len(e.Tags) == 0 {
		return ""
	}
	return e.Tags[0]
}

// Parameters returns the parameter list for a slot.
func (e *Endpoint) Parameters(slot Slot) []*Parameter {
	switch slot {
	case SlotPath:
		return e.PathParameters
	case SlotQuery:
		return e.QueryParameters
	case SlotBody:
		return e.BodyParameters
	case SlotHeader:
		return e.HeaderParameters
	}
	return nil
}

// Slot is the parameter list a parameter belongs to.
type Slot string

const (
	SlotPath   Slot = "path"
	SlotQuery  Slot = "query"
	SlotBody   Slot = "body"
	SlotHeader Slot = "header"
	// SlotComponent marks a property of a component schema.
	SlotComponent Slot = "component"
)

// Slots lists the endpoint parameter slots in emission order.
var Slots = []Slot{SlotPath, SlotBody, SlotQuery, SlotHeader}

// Parameter is a request input or an expanded schema property.
type Parameter struct {
	Name        string
	Type        Type
	Nullable    bool
	Required    bool
	Description string
	// Enum holds the literal value set; nil when the parameter is not an enum.
	Enum []any
	// Properties are nested properties of an inline object schema.
	Properties []*Parameter
	// ParentProperty is set on parameters produced by flattening a
	// referenced object; it names the dropped compound property.
	ParentProperty string
	// Child is the property name inside ParentProperty. It differs from
	// the Name suffix when the flattened name had to be made unique.
	Child string
}

func (p *Parameter) HasEnum() bool { return len(p.Enum) > 0 }

// ChildName returns the property name inside the parent for a flattened
// parameter, or the name itself.
func (p *Parameter) ChildName() string {
	if p.ParentProperty == "" {
		return p.Name
	}
	if p.Child != "" {
		return p.Child
	}
	return strings.TrimPrefix(p.Name, p.ParentProperty+"_")
}

// ResponseKind is the outcome of response classification.
type ResponseKind int

const (
	ResponseNone ResponseKind = iota
	ResponseDTO
	ResponseArrayOfDTO
	ResponseInline
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseDTO:
		return "dto-reference"
	case ResponseArrayOfDTO:
		return "array-of-dto"
	case ResponseInline:
		return "inline"
	}
	return "none"
}

// Response is the classification of an endpoint's success response.
type Response struct {
	Kind ResponseKind
	DTO  string
	// Property is the envelope property matched by the name heuristic.
	Property string
	// Schema is the inline schema, or the envelope property schema when
	// Property is set.
	Schema *openapi3.Schema
}
