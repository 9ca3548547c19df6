package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestGenerateConfigFromFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--verbose",
		"generate",
		"--input", "spec.yaml",
		"--out", "./build",
		"--include-tags", "foo,bar",
		"--exclude-tags", "baz",
		"--methods", "get,post",
		"--paths", "^/users",
		"--paths", "^/pets/{id,name}",
		"--namespace", "example.com/acme/sdk",
		"--request-suffix", "api/requests",
		"--fallback-resource", "Misc",
		"--ignore-query", "api_key",
		"--dry-run",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if captured.Out != "./build" {
		t.Errorf("out mismatch: got %q", captured.Out)
	}
	if want := []string{"foo", "bar"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags mismatch: got %v", captured.IncludeTags)
	}
	if want := []string{"baz"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags mismatch: got %v", captured.ExcludeTags)
	}
	if want := []string{"get", "post"}; !equalStringSlices(captured.Methods, want) {
		t.Errorf("methods mismatch: got %v", captured.Methods)
	}
	// Array flags keep commas inside a pattern.
	if want := []string{"^/users", "^/pets/{id,name}"}; !equalStringSlices(captured.Paths, want) {
		t.Errorf("paths mismatch: got %v", captured.Paths)
	}
	if captured.SDK.Namespace != "example.com/acme/sdk" {
		t.Errorf("namespace mismatch: got %q", captured.SDK.Namespace)
	}
	if captured.SDK.RequestSuffix != "api/requests" {
		t.Errorf("request suffix mismatch: got %q", captured.SDK.RequestSuffix)
	}
	if captured.SDK.ResourceSuffix != "resources" {
		t.Errorf("resource suffix should keep its default, got %q", captured.SDK.ResourceSuffix)
	}
	if captured.SDK.FallbackResourceName != "Misc" {
		t.Errorf("fallback resource mismatch: got %q", captured.SDK.FallbackResourceName)
	}
	if want := []string{"api_key"}; !equalStringSlices(captured.SDK.IgnoredQueryParams, want) {
		t.Errorf("ignored query params mismatch: got %v", captured.SDK.IgnoredQueryParams)
	}
	if !captured.DryRun {
		t.Errorf("expected dry-run true")
	}
	if !captured.Force {
		t.Errorf("expected force true")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true")
	}
}

func TestGenerateConfigPrecedence(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")
	configContent := strings.TrimSpace(`input: config-spec.yaml
out: from-config
includeTags:
  - cfgFoo
excludeTags: cfgBar
namespace: example.com/cfg
dto_suffix: models
connector-suffix: client
ignoredHeaderParams: [Authorization]
dryRun: true
force: false
verbose: true
`) + "\n"

	if err := os.WriteFile(configPath, []byte(configContent), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "flag-spec.yaml",
		"--include-tags", "flagTag",
		"--namespace", "example.com/flag",
		"--dry-run=false",
		"--force",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}

	if captured == nil {
		t.Fatalf("expected config to be captured")
	}

	if captured.Input != "flag-spec.yaml" {
		t.Errorf("input: want %q got %q", "flag-spec.yaml", captured.Input)
	}
	if captured.Out != "from-config" {
		t.Errorf("out: want from-config got %q", captured.Out)
	}
	if want := []string{"flagTag"}; !equalStringSlices(captured.IncludeTags, want) {
		t.Errorf("include tags: want %v got %v", want, captured.IncludeTags)
	}
	if want := []string{"cfgBar"}; !equalStringSlices(captured.ExcludeTags, want) {
		t.Errorf("exclude tags: want %v got %v", want, captured.ExcludeTags)
	}
	if captured.SDK.Namespace != "example.com/flag" {
		t.Errorf("namespace: want flag value, got %q", captured.SDK.Namespace)
	}
	if captured.SDK.DTOSuffix != "models" {
		t.Errorf("dto suffix: want models got %q", captured.SDK.DTOSuffix)
	}
	if captured.SDK.ConnectorSuffix != "client" {
		t.Errorf("connector suffix: want client got %q", captured.SDK.ConnectorSuffix)
	}
	if want := []string{"Authorization"}; !equalStringSlices(captured.SDK.IgnoredHeaderParams, want) {
		t.Errorf("ignored headers: want %v got %v", want, captured.SDK.IgnoredHeaderParams)
	}
	if captured.DryRun {
		t.Errorf("expected dry-run false after flag override")
	}
	if !captured.Force {
		t.Errorf("expected force true after flag override")
	}
	if !captured.Verbose {
		t.Errorf("expected verbose true from config file")
	}
	if captured.ConfigPath != configPath {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
}

func TestGenerateConfigUnknownKey(t *testing.T) {
	t.Parallel()

	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(configPath, []byte("lang: go\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	root.SetArgs([]string{
		"--config", configPath,
		"generate",
		"--input", "spec.yaml",
	})

	err := root.Execute()
	if err == nil {
		t.Fatalf("expected an error")
	}
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
	if !strings.Contains(err.Error(), "unknown field") {
		t.Fatalf("unexpected error message: %v", err)
	}
}

func TestGenerateConfigValidation(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		args []string
		want string
	}{
		{name: "missing input", args: []string{"generate"}, want: "--input is required"},
		{name: "remote input", args: []string{"generate", "--input", "https://example.com/openapi.yaml"}, want: "remote inputs"},
		{name: "tag overlap", args: []string{"generate", "--input", "s.yaml", "--include-tags", "a,b", "--exclude-tags", "b"}, want: "overlap: b"},
		{name: "bad method", args: []string{"generate", "--input", "s.yaml", "--methods", "fetch"}, want: `unsupported --methods value "fetch"`},
		{name: "duplicate suffix", args: []string{"generate", "--input", "s.yaml", "--dto-suffix", "requests"}, want: "config:"},
		{name: "bad namespace", args: []string{"generate", "--input", "s.yaml", "--namespace", "not a path"}, want: "config:"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			root := NewRootCmd()
			root.SetOut(io.Discard)
			root.SetErr(io.Discard)
			root.SetArgs(tc.args)

			err := root.Execute()
			if err == nil {
				t.Fatalf("expected an error")
			}
			if !errors.Is(err, ErrUsage) {
				t.Fatalf("expected usage error, got %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestDeriveOutDir(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"Pets API":          "pets-api-sdk",
		"  Acme / Billing ": "acme-billing-sdk",
		"v2.Orders":         "v2-orders-sdk",
		"":                  "sdk",
		"***":               "sdk",
	}
	for in, want := range cases {
		if got := deriveOutDir(in); got != want {
			t.Errorf("deriveOutDir(%q) = %q, want %q", in, got, want)
		}
	}
}

func equalStringSlices(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
