package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit_WritesSampleConfig(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	s := string(data)
	if !strings.Contains(s, "swagger2sdk configuration") {
		t.Fatalf("unexpected config contents: %s", s)
	}
	// Every documented key must be one generate accepts.
	for _, f := range generateFields {
		found := false
		for _, line := range strings.Split(s, "\n") {
			line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "#"))
			key, _, ok := strings.Cut(line, ":")
			if ok && normalizeKey(key) == f.key {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("sample config does not document %q", f.key)
		}
	}
}

func TestInit_ExistingWithoutForce(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected error for existing file without --force")
	}
	if _, ok := err.(usageError); !ok {
		t.Fatalf("expected usage error, got %T: %v", err, err)
	}
}

func TestInit_ForceOverwrites(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("x"), 0o600); err != nil {
		t.Fatalf("prewrite: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"init", "--out", path, "--force"})

	if err := root.Execute(); err != nil {
		t.Fatalf("init execute: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if string(data) == "x" {
		t.Fatalf("expected file to be replaced")
	}
}

func TestInit_SampleConfigLoads(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte(sampleConfigYAML), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg := defaultGenerateConfig()
	if err := applyGenerateConfigFromFile(&cfg, path); err != nil {
		t.Fatalf("sample config should load: %v", err)
	}
	if cfg.SDK.RequestSuffix != "requests" {
		t.Fatalf("commented keys must not change defaults, got %q", cfg.SDK.RequestSuffix)
	}
}
