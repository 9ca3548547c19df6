package cli

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const minimalSpecYAML = "" +
	"openapi: 3.0.0\n" +
	"info:\n" +
	"  title: Test API\n" +
	"  version: '1.0.0'\n" +
	"paths:\n" +
	"  /hello:\n" +
	"    get:\n" +
	"      operationId: sayHello\n" +
	"      summary: Hello\n" +
	"      responses:\n" +
	"        '200':\n" +
	"          description: ok\n"

func captureStdout(fn func()) string {
	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w
	defer func() { os.Stdout = old }()
	fn()
	_ = w.Close()
	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

func writeSpec(t *testing.T, dir, content string) string {
	t.Helper()
	specPath := filepath.Join(dir, "spec.yaml")
	if err := os.WriteFile(specPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write spec: %v", err)
	}
	return specPath
}

func TestGeneratePipeline_DryRun(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpec(t, dir, minimalSpecYAML)
	outDir := filepath.Join(dir, "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--out", outDir, "--dry-run"})

	out := captureStdout(func() {
		if err := root.Execute(); err != nil {
			t.Fatalf("execute: %v", err)
		}
	})
	if !strings.Contains(out, "Planned writes to") {
		t.Fatalf("expected dry-run plan output, got: %s", out)
	}
	for _, want := range []string{"- go.mod", "- connector/connector.go", "- resources/hello.go"} {
		if !strings.Contains(out, want) {
			t.Errorf("plan is missing %q:\n%s", want, out)
		}
	}
	// Dry-run should not create the directory
	if _, err := os.Stat(outDir); err == nil {
		t.Fatalf("expected no writes on dry-run")
	}
}

func TestGeneratePipeline_WritesAndRefusesNonEmpty(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpec(t, dir, minimalSpecYAML)
	outDir := filepath.Join(dir, "out")

	run := func(args ...string) error {
		root := NewRootCmd()
		root.SetOut(io.Discard)
		root.SetErr(io.Discard)
		root.SetArgs(append([]string{"generate", "--input", specPath, "--out", outDir, "--namespace", "example.com/hello"}, args...))
		return root.Execute()
	}

	if err := run(); err != nil {
		t.Fatalf("first run: %v", err)
	}
	mod, err := os.ReadFile(filepath.Join(outDir, "go.mod"))
	if err != nil {
		t.Fatalf("read go.mod: %v", err)
	}
	if !strings.HasPrefix(string(mod), "module example.com/hello\n") {
		t.Fatalf("unexpected go.mod: %s", mod)
	}

	err = run()
	if err == nil {
		t.Fatalf("expected error for non-empty output without --force")
	}
	if !errors.Is(err, ErrUsage) || !strings.Contains(err.Error(), "--force") {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := run("--force"); err != nil {
		t.Fatalf("forced run: %v", err)
	}
}

func TestGeneratePipeline_SpecErrorIsUsageError(t *testing.T) {
	dir := t.TempDir()
	specPath := writeSpec(t, dir, "openapi: [broken\n")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", specPath, "--dry-run"})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected parse error")
	}
	if !errors.Is(err, ErrUsage) || !strings.HasPrefix(err.Error(), "spec: ") {
		t.Fatalf("expected spec usage error, got %T: %v", err, err)
	}
	if !strings.Contains(err.Error(), "Location: "+specPath) {
		t.Fatalf("expected location in error, got %v", err)
	}
}
