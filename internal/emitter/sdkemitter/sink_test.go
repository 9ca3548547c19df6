package sdkemitter

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePath(t *testing.T) {
	t.Parallel()

	for _, ok := range []string{"go.mod", "requests/users/get_user.go"} {
		assert.NoError(t, ValidatePath(ok), ok)
	}
	for _, bad := range []string{"", "/etc/passwd", "C:/x.go", "../x.go", "a/../../x.go", "a//b.go", "./a.go"} {
		assert.Error(t, ValidatePath(bad), bad)
	}
}

func TestMemorySink(t *testing.T) {
	t.Parallel()

	sink := NewMemorySink()
	units := []Unit{{Path: "a.go", Content: []byte("package a\n")}, {Path: "b/b.go", Content: []byte("package b\n")}}
	require.NoError(t, WriteAll(context.Background(), sink, units))

	files := sink.Files()
	assert.Len(t, files, 2)
	assert.Equal(t, "package b\n", string(sink.Get("b/b.go")))
	assert.Nil(t, sink.Get("missing.go"))

	// Returned slices are copies.
	files["a.go"][0] = 'X'
	assert.Equal(t, "package a\n", string(sink.Get("a.go")))

	assert.Error(t, sink.WriteFile(context.Background(), "../escape.go", nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sink.WriteFile(ctx, "c.go", nil), context.Canceled)
}

func TestFilesystemSink(t *testing.T) {
	t.Parallel()

	root := filepath.Join(t.TempDir(), "out")
	units := []Unit{{Path: "connector/connector.go", Content: []byte("package connector\n")}}

	require.NoError(t, WriteAll(context.Background(), NewFilesystemSink(root, false), units))
	data, err := os.ReadFile(filepath.Join(root, "connector", "connector.go"))
	require.NoError(t, err)
	assert.Equal(t, "package connector\n", string(data))

	entries, err := os.ReadDir(filepath.Join(root, "connector"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	err = WriteAll(context.Background(), NewFilesystemSink(root, false), units)
	assert.ErrorIs(t, err, ErrNotEmpty)

	units[0].Content = []byte("package connector // v2\n")
	require.NoError(t, WriteAll(context.Background(), NewFilesystemSink(root, true), units))
	data, err = os.ReadFile(filepath.Join(root, "connector", "connector.go"))
	require.NoError(t, err)
	assert.Equal(t, "package connector // v2\n", string(data))
}

func TestPlan(t *testing.T) {
	t.Parallel()

	plan := Plan([]Unit{{Path: "go.mod", Content: []byte("module x\n")}})
	require.Len(t, plan, 1)
	assert.Equal(t, PlannedFile{RelPath: "go.mod", Size: 9, Mode: 0o644}, plan[0])
}
