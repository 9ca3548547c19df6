package tables

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	t.Parallel()
	tb := Default()

	name, ok := tb.Collection("dns")
	require.True(t, ok)
	assert.Equal(t, "Dns", name)

	_, ok = tb.Collection("widgets")
	assert.False(t, ok)

	name, ok = tb.EnumName("status")
	require.True(t, ok)
	assert.Equal(t, "Status", name)

	assert.True(t, tb.IsSharedConcept("Section"))
	assert.False(t, tb.IsSharedConcept("section"))
	assert.Equal(t, "domain_list", tb.StripVerbPrefix("GET_domain_list"))
	assert.Equal(t, "getter", tb.StripVerbPrefix("getter"))
	assert.Equal(t, "Enum", tb.EnumFallbackPrefix)
	assert.Equal(t, "Dto", tb.DTOFallbackPrefix)

	require.NotEmpty(t, tb.Responses)
	assert.Equal(t, ResponseEntry{Property: "domain", DTO: "Domain"}, tb.Responses[0])
	assert.Equal(t, ResponseEntry{Property: "domains", DTO: "Domain", Array: true}, tb.Responses[1])
}

func TestLoadMergesOverDefaults(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "tables.yaml")
	content := `version: 1
collections:
  - { prefix: dns, name: Zones }
  - { prefix: widgets, name: Gadgets }
enumNames:
  - { param: status, name: Lifecycle }
enumFallbackPrefix: E
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	tb, err := Load(path)
	require.NoError(t, err)

	name, _ := tb.Collection("dns")
	assert.Equal(t, "Zones", name)
	name, _ = tb.Collection("widgets")
	assert.Equal(t, "Gadgets", name)
	name, _ = tb.Collection("mail")
	assert.Equal(t, "Emails", name, "defaults stay behind overrides")
	name, _ = tb.EnumName("status")
	assert.Equal(t, "Lifecycle", name)
	assert.Equal(t, "E", tb.EnumFallbackPrefix)
	assert.Equal(t, "Dto", tb.DTOFallbackPrefix)
}

func TestParseRejectsBadTables(t *testing.T) {
	t.Parallel()

	_, err := Parse([]byte("version: 99\n"))
	assert.ErrorContains(t, err, "unsupported version")

	_, err = Parse([]byte("collections:\n  - { prefix: dns }\n"))
	assert.Error(t, err, "name is required")

	_, err = Parse([]byte("collections: [\n"))
	assert.ErrorContains(t, err, "tables: parse")

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
