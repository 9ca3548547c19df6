package enums

import (
	"math/rand"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/tables"
)

func enumParam(name string, values ...any) *ir.Parameter {
	return &ir.Parameter{Name: name, Type: ir.Type{Kind: ir.KindString}, Enum: values}
}

func TestCollectSharesStatusAcrossEndpoints(t *testing.T) {
	t.Parallel()

	spec := &ir.Specification{Endpoints: []*ir.Endpoint{
		{
			ID: "GET /users/{id}", Name: "getUser", Method: ir.GET, Path: "/users/{id}",
			QueryParameters: []*ir.Parameter{enumParam("status", "active", "inactive")},
		},
		{
			ID: "POST /orders", Name: "createOrder", Method: ir.POST, Path: "/orders",
			QueryParameters: []*ir.Parameter{enumParam("status", "inactive", "active")},
		},
	}}

	table := Collect(spec, tables.Default())
	require.Equal(t, 1, table.Len())

	a, ok := table.Lookup(ir.EndpointRef("GET /users/{id}", ir.SlotQuery, "status"))
	require.True(t, ok)
	b, ok := table.Lookup(ir.EndpointRef("POST /orders", ir.SlotQuery, "status"))
	require.True(t, ok)
	assert.Equal(t, "Status", a)
	assert.Equal(t, a, b)

	defs := table.Definitions()
	require.Len(t, defs, 1)
	assert.Equal(t, []any{"active", "inactive"}, defs[0].Values)
}

func TestCollectRulePriority(t *testing.T) {
	t.Parallel()

	vals := []any{"a", "b"}
	spec := &ir.Specification{Endpoints: []*ir.Endpoint{
		{
			ID: "GET /x", Name: "get_x", Tags: []string{"things"},
			QueryParameters: []*ir.Parameter{enumParam("flavour", vals...)},
		},
		{
			ID: "GET /y", Name: "get_y",
			QueryParameters: []*ir.Parameter{enumParam("section", vals...)},
		},
	}}
	table := Collect(spec, tables.Default())
	name, ok := table.Lookup(ir.EndpointRef("GET /x", ir.SlotQuery, "flavour"))
	require.True(t, ok)
	assert.Equal(t, "Section", name, "table name beats the context name")
}

func TestCollectContextNames(t *testing.T) {
	t.Parallel()

	spec := &ir.Specification{Endpoints: []*ir.Endpoint{
		{
			ID: "GET /a", Name: "get_domain_list",
			QueryParameters: []*ir.Parameter{enumParam("sort_order", "asc", "desc")},
		},
		{
			ID: "GET /b", Name: "listThings", Tags: []string{"billing info"},
			QueryParameters: []*ir.Parameter{enumParam("currency", "EUR", "USD")},
		},
	}}
	table := Collect(spec, tables.Default())

	name, _ := table.Lookup(ir.EndpointRef("GET /a", ir.SlotQuery, "sort_order"))
	assert.Equal(t, "DomainListSortOrder", name)
	name, _ = table.Lookup(ir.EndpointRef("GET /b", ir.SlotQuery, "currency"))
	assert.Equal(t, "BillingInfoCurrency", name)
}

func TestCollectNestedAndComponentEnums(t *testing.T) {
	t.Parallel()

	filter := &ir.Parameter{
		Name: "filter",
		Type: ir.Type{Kind: ir.KindMap},
		Properties: []*ir.Parameter{
			enumParam("state", "on", "off"),
		},
	}
	dto := &ir.DTO{Name: "Device", Component: "Device", Fields: []*ir.Parameter{enumParam("power", "off", "on")}}
	spec := &ir.Specification{
		DTOs: []*ir.DTO{dto},
		Endpoints: []*ir.Endpoint{{
			ID: "POST /devices", Name: "createDevice",
			BodyParameters: []*ir.Parameter{filter},
		}},
	}
	table := Collect(spec, tables.Default())
	require.Equal(t, 1, table.Len())

	nested, ok := table.Lookup(ir.EndpointRef("POST /devices", ir.SlotBody, "filter").Child("state"))
	require.True(t, ok)
	component, ok := table.Lookup(ir.ComponentRef("Device", "power"))
	require.True(t, ok)
	assert.Equal(t, "State", nested)
	assert.Equal(t, nested, component)
}

func TestCollectSuffixesClashingNames(t *testing.T) {
	t.Parallel()

	spec := &ir.Specification{Endpoints: []*ir.Endpoint{
		{ID: "GET /a", Name: "a", QueryParameters: []*ir.Parameter{enumParam("status", "x", "y")}},
		{ID: "GET /b", Name: "b", QueryParameters: []*ir.Parameter{enumParam("status", "p", "q")}},
	}}
	table := Collect(spec, tables.Default())
	require.Equal(t, 2, table.Len())

	a, _ := table.Lookup(ir.EndpointRef("GET /a", ir.SlotQuery, "status"))
	b, _ := table.Lookup(ir.EndpointRef("GET /b", ir.SlotQuery, "status"))
	assert.ElementsMatch(t, []string{"Status", "Status2"}, []string{a, b})
	// ["p","q"] sorts before ["x","y"] and keeps the bare name.
	assert.Equal(t, "Status", b)
}

func TestCollectOrderIndependent(t *testing.T) {
	t.Parallel()

	build := func(order []int) *ir.Specification {
		all := []*ir.Endpoint{
			{ID: "GET /a", Name: "get_alpha", QueryParameters: []*ir.Parameter{enumParam("kind", 1.0, 2.0)}},
			{ID: "GET /b", Name: "get_beta", QueryParameters: []*ir.Parameter{enumParam("kind", 2.0, 1.0)}},
			{ID: "GET /c", Name: "get_gamma", Tags: []string{"zeta"}, QueryParameters: []*ir.Parameter{enumParam("mode", "x", "y")}},
			{ID: "GET /d", Name: "get_delta", QueryParameters: []*ir.Parameter{enumParam("level", "y", "x")}},
		}
		s := &ir.Specification{}
		for _, i := range order {
			s.Endpoints = append(s.Endpoints, all[i])
		}
		return s
	}

	want := Collect(build([]int{0, 1, 2, 3}), tables.Default()).Definitions()
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		got := Collect(build(rng.Perm(4)), tables.Default()).Definitions()
		require.Equal(t, want, got)
	}

	names := map[string]bool{}
	for _, d := range want {
		names[d.Name] = true
	}
	assert.True(t, names["AlphaKind"])
	assert.True(t, names["Mode"])
}

func TestSignatureIgnoresOrderAndDuplicates(t *testing.T) {
	t.Parallel()

	a, va := Signature([]any{"b", "a", "b", nil})
	b, _ := Signature([]any{"a", "b"})
	assert.Equal(t, a, b)
	assert.Equal(t, `["a","b"]`, a)
	assert.Equal(t, []any{"a", "b"}, va)
}

var identRe = regexp.MustCompile(`^[A-Z_][A-Z0-9_]*$`)

func TestCaseName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"active":           "ACTIVE",
		"in-progress":      "IN_PROGRESS",
		"a  b--c":          "A_B_C",
		"2fa":              "_2FA",
		"":                 "EMPTY",
		"--x--":            "_X_",
		"a-":               "A_",
		"a":                "A",
		"application/json": "APPLICATION_JSON",
	}
	for in, want := range cases {
		assert.Equal(t, want, CaseName(in), in)
	}

	placeholder := CaseName("@@")
	assert.Regexp(t, `^VALUE_[0-9A-F]{8}$`, placeholder)
	assert.Equal(t, placeholder, CaseName("@@"))
	assert.NotEqual(t, placeholder, CaseName("##"))
}

func TestCaseNameTotalAndIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{"x", "1", "_", "ümlaut", "a.b.c", "  ", "ALREADY_OK", "_9", "VALUE_DEADBEEF", "日本", "-1.5"}
	for _, in := range inputs {
		got := CaseName(in)
		require.NotEmpty(t, got, in)
		assert.Regexp(t, identRe, got, in)
		assert.Equal(t, got, CaseName(got), in)
	}
}

func TestMemberNamesUnique(t *testing.T) {
	t.Parallel()

	got := MemberNames([]any{"a-b", "a_b", "A B", 1.0, 1.5})
	assert.Equal(t, []string{"A_B", "A_B_2", "A_B_3", "_1", "_1_5"}, got)
}

func TestCollectFlattenedAndLiteralBodyEnums(t *testing.T) {
	t.Parallel()

	flat := enumParam("owner_kind_2", "x", "y")
	flat.ParentProperty, flat.Child = "owner", "kind"
	spec := &ir.Specification{Endpoints: []*ir.Endpoint{{
		ID: "POST /orders", Name: "createOrder", Method: ir.POST, Path: "/orders",
		BodyParameters: []*ir.Parameter{flat, enumParam("owner_kind", "a", "b")},
	}}}

	table := Collect(spec, tables.Default())
	require.Equal(t, 2, table.Len())

	valuesOf := func(name string) []any {
		for _, d := range table.Definitions() {
			if d.Name == name {
				return d.Values
			}
		}
		return nil
	}
	flatName, ok := table.Lookup(ir.EndpointRef("POST /orders", ir.SlotBody, "owner_kind_2"))
	require.True(t, ok)
	literalName, ok := table.Lookup(ir.EndpointRef("POST /orders", ir.SlotBody, "owner_kind"))
	require.True(t, ok)
	assert.NotEqual(t, flatName, literalName)
	assert.Equal(t, []any{"x", "y"}, valuesOf(flatName))
	assert.Equal(t, []any{"a", "b"}, valuesOf(literalName))
}
