package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"github.com/mark3labs/swagger2sdk/internal/config"
	"github.com/mark3labs/swagger2sdk/internal/emitter/sdkemitter"
	"github.com/mark3labs/swagger2sdk/internal/generate"
	"github.com/mark3labs/swagger2sdk/internal/ir"
	genspec "github.com/mark3labs/swagger2sdk/internal/spec"
)

// GenerateConfig captures all inputs that influence the generate command after
// merging defaults, config file values, and CLI overrides.
type GenerateConfig struct {
	Input       string
	Out         string
	IncludeTags []string
	ExcludeTags []string
	Methods     []string
	Paths       []string
	ConfigPath  string
	DryRun      bool
	Force       bool
	Verbose     bool
	NoValidate  bool

	// SDK is the generator record handed to the pipeline.
	SDK config.Config
}

func defaultGenerateConfig() GenerateConfig {
	return GenerateConfig{SDK: config.Default()}
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a Go client SDK from an OpenAPI/Swagger document",
		Long: "Generate a Go client SDK (requests, resources, enums, DTOs and a connector) " +
			"from an OpenAPI 3 or Swagger 2 document. Options can be provided via flags, config files, or defaults.",
		Example: strings.TrimSpace(`  swagger2sdk generate --input spec.yaml --out ./sdk --namespace example.com/acme/sdk
  swagger2sdk --config swagger2sdk.yaml generate --force --dry-run`),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cfg)
		},
	}

	flags := cmd.Flags()
	flags.String("input", "", "Path to the Swagger/OpenAPI document (.json, .yaml or .yml)")
	flags.String("out", "", "Output directory (derived from the spec title when omitted)")
	flags.StringSlice("include-tags", nil, "Only include operations with these tags")
	flags.StringSlice("exclude-tags", nil, "Exclude operations with these tags")
	flags.StringSlice("methods", nil, "Only include operations with these HTTP methods")
	flags.StringArray("paths", nil, "Only include paths matching this regular expression (repeatable)")
	flags.String("namespace", "", "Import path of the generated SDK module")
	flags.String("request-suffix", "", "Package path of request types below the namespace")
	flags.String("resource-suffix", "", "Package path of resource facades below the namespace")
	flags.String("dto-suffix", "", "Package path of DTOs below the namespace")
	flags.String("enum-suffix", "", "Package path of enums below the namespace")
	flags.String("connector-suffix", "", "Package path of the connector below the namespace")
	flags.String("fallback-resource", "", "Resource name for operations without a collection")
	flags.StringSlice("ignore-body", nil, "Body parameters left to the connector")
	flags.StringSlice("ignore-query", nil, "Query parameters left to the connector")
	flags.StringSlice("ignore-header", nil, "Header parameters left to the connector")
	flags.String("tables", "", "Lookup-table file merged over the built-in naming tables")
	flags.Bool("no-validate", false, "Skip OpenAPI validation of the input document")
	flags.Bool("dry-run", false, "Preview planned outputs without writing files")
	flags.Bool("force", false, "Overwrite existing output when set")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := defaultGenerateConfig()

	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}
	configPath = strings.TrimSpace(configPath)
	if configPath != "" {
		cfg.ConfigPath = configPath
		if err := applyGenerateConfigFromFile(&cfg, configPath); err != nil {
			return nil, err
		}
	}

	if err := applyGenerateFlagOverrides(cmd.Flags(), &cfg); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// generateField binds one config-file key and one flag to a GenerateConfig
// field. Keys are compared after normalizeKey.
type generateField struct {
	key  string
	flag string
	str  func(*GenerateConfig) *string
	list func(*GenerateConfig) *[]string
	flg  func(*GenerateConfig) *bool
}

var generateFields = []generateField{
	{key: "input", flag: "input", str: func(c *GenerateConfig) *string { return &c.Input }},
	{key: "out", flag: "out", str: func(c *GenerateConfig) *string { return &c.Out }},
	{key: "includetags", flag: "include-tags", list: func(c *GenerateConfig) *[]string { return &c.IncludeTags }},
	{key: "excludetags", flag: "exclude-tags", list: func(c *GenerateConfig) *[]string { return &c.ExcludeTags }},
	{key: "methods", flag: "methods", list: func(c *GenerateConfig) *[]string { return &c.Methods }},
	{key: "paths", flag: "paths", list: func(c *GenerateConfig) *[]string { return &c.Paths }},
	{key: "namespace", flag: "namespace", str: func(c *GenerateConfig) *string { return &c.SDK.Namespace }},
	{key: "requestsuffix", flag: "request-suffix", str: func(c *GenerateConfig) *string { return &c.SDK.RequestSuffix }},
	{key: "resourcesuffix", flag: "resource-suffix", str: func(c *GenerateConfig) *string { return &c.SDK.ResourceSuffix }},
	{key: "dtosuffix", flag: "dto-suffix", str: func(c *GenerateConfig) *string { return &c.SDK.DTOSuffix }},
	{key: "enumsuffix", flag: "enum-suffix", str: func(c *GenerateConfig) *string { return &c.SDK.EnumSuffix }},
	{key: "connectorsuffix", flag: "connector-suffix", str: func(c *GenerateConfig) *string { return &c.SDK.ConnectorSuffix }},
	{key: "fallbackresourcename", flag: "fallback-resource", str: func(c *GenerateConfig) *string { return &c.SDK.FallbackResourceName }},
	{key: "ignoredbodyparams", flag: "ignore-body", list: func(c *GenerateConfig) *[]string { return &c.SDK.IgnoredBodyParams }},
	{key: "ignoredqueryparams", flag: "ignore-query", list: func(c *GenerateConfig) *[]string { return &c.SDK.IgnoredQueryParams }},
	{key: "ignoredheaderparams", flag: "ignore-header", list: func(c *GenerateConfig) *[]string { return &c.SDK.IgnoredHeaderParams }},
	{key: "tables", flag: "tables", str: func(c *GenerateConfig) *string { return &c.SDK.Tables }},
	{key: "novalidate", flag: "no-validate", flg: func(c *GenerateConfig) *bool { return &c.NoValidate }},
	{key: "dryrun", flag: "dry-run", flg: func(c *GenerateConfig) *bool { return &c.DryRun }},
	{key: "force", flag: "force", flg: func(c *GenerateConfig) *bool { return &c.Force }},
	{key: "verbose", flag: "verbose", flg: func(c *GenerateConfig) *bool { return &c.Verbose }},
}

func applyGenerateFlagOverrides(flags *pflag.FlagSet, cfg *GenerateConfig) error {
	for _, f := range generateFields {
		if flags.Lookup(f.flag) == nil || !flags.Changed(f.flag) {
			continue
		}
		switch {
		case f.str != nil:
			value, err := flags.GetString(f.flag)
			if err != nil {
				return err
			}
			*f.str(cfg) = strings.TrimSpace(value)
		case f.list != nil:
			get := flags.GetStringSlice
			if flags.Lookup(f.flag).Value.Type() == "stringArray" {
				get = flags.GetStringArray
			}
			value, err := get(f.flag)
			if err != nil {
				return err
			}
			*f.list(cfg) = value
		case f.flg != nil:
			value, err := flags.GetBool(f.flag)
			if err != nil {
				return err
			}
			*f.flg(cfg) = value
		}
	}
	return nil
}

func (c *GenerateConfig) normalize() {
	c.Input = strings.TrimSpace(c.Input)
	c.Out = strings.TrimSpace(c.Out)
	c.IncludeTags = sanitizeTags(c.IncludeTags)
	c.ExcludeTags = sanitizeTags(c.ExcludeTags)
	c.Methods = sanitizeTags(c.Methods)
	c.Paths = sanitizeTags(c.Paths)
	c.SDK.Normalize()
}

func (c *GenerateConfig) validate() error {
	if c.Input == "" {
		return newUsageError("generate: --input is required (set via flag or config file)")
	}
	lower := strings.ToLower(c.Input)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return newUsageError("generate: remote inputs are not supported; download the document and pass its path")
	}

	overlap := intersect(c.IncludeTags, c.ExcludeTags)
	if len(overlap) > 0 {
		return newUsageError(fmt.Sprintf("generate: include/exclude tags overlap: %s", strings.Join(overlap, ", ")))
	}

	if _, err := c.parsedMethods(); err != nil {
		return err
	}

	if err := c.SDK.Validate(); err != nil {
		return newUsageError(fmt.Sprintf("generate: %v", err))
	}
	return nil
}

func (c *GenerateConfig) parsedMethods() ([]ir.Method, error) {
	out := make([]ir.Method, 0, len(c.Methods))
	for _, raw := range c.Methods {
		m, ok := ir.ParseMethod(raw)
		if !ok {
			return nil, newUsageError(fmt.Sprintf("generate: unsupported --methods value %q", raw))
		}
		out = append(out, m)
	}
	return out, nil
}

func newLogger(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func runGenerate(ctx context.Context, cfg *GenerateConfig) error {
	logger := newLogger(cfg.Verbose)
	methods, err := cfg.parsedMethods()
	if err != nil {
		return err
	}

	// 1) Load, normalize, collect enums, resolve names and render units
	out, err := generate.Run(ctx, generate.Input{Path: cfg.Input}, cfg.SDK,
		generate.WithLogger(logger),
		generate.WithIncludeTags(cfg.IncludeTags),
		generate.WithExcludeTags(cfg.ExcludeTags),
		generate.WithMethods(methods),
		generate.WithPathPatterns(cfg.Paths),
		generate.WithValidation(!cfg.NoValidate),
	)
	if err != nil {
		// Map structured spec errors into friendly messages
		var se *genspec.SpecError
		if errors.As(err, &se) {
			msg := fmt.Sprintf("spec: %s", se.Message)
			if se.Location != "" {
				msg = fmt.Sprintf("%s\nLocation: %s", msg, se.Location)
			}
			if se.JSONPointer != "" {
				msg = fmt.Sprintf("%s\nPointer: %s", msg, se.JSONPointer)
			}
			return newUsageError(msg)
		}
		return err
	}

	// 2) Derive the output directory from the title when omitted
	outDir := cfg.Out
	if outDir == "" {
		outDir = deriveOutDir(out.Spec.Name)
	}
	absOut := outDir
	if ap, err := filepath.Abs(outDir); err == nil {
		absOut = ap
	}

	if cfg.DryRun {
		paths := make([]string, 0, len(out.Plan))
		for _, p := range out.Plan {
			paths = append(paths, p.RelPath)
		}
		printPlan(absOut, len(out.Plan), paths)
		return nil
	}

	// 3) Write through the filesystem sink
	if err := out.Write(ctx, sdkemitter.NewFilesystemSink(outDir, cfg.Force)); err != nil {
		return wrapOutputError(err, absOut)
	}
	logger.Info("sdk written", "dir", absOut, "files", len(out.Plan), "warnings", len(out.Warnings))
	return nil
}

func printPlan(outDir string, count int, relPaths []string) {
	fmt.Fprintf(os.Stdout, "Planned writes to %s (%d files):\n", outDir, count)
	for _, p := range relPaths {
		fmt.Fprintf(os.Stdout, "- %s\n", p)
	}
}

func wrapOutputError(err error, outDir string) error {
	// Provide clearer guidance for common FS failures.
	msg := err.Error()
	lower := strings.ToLower(msg)
	if errors.Is(err, sdkemitter.ErrNotEmpty) || strings.Contains(lower, "permission") || strings.Contains(lower, "read-only") || strings.Contains(lower, "mkdir") || strings.Contains(lower, "rename") {
		return newUsageError(fmt.Sprintf("output error for %s: %s\nHint: choose a different --out or use --force when appropriate.", outDir, msg))
	}
	return err
}

// deriveOutDir turns a document title into a directory name.
func deriveOutDir(title string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(title)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
		case b.Len() > 0 && !strings.HasSuffix(b.String(), "-"):
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if name == "" {
		return "sdk"
	}
	return name + "-sdk"
}

func sanitizeTags(tags []string) []string {
	if len(tags) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(tags))
	result := make([]string, 0, len(tags))
	for _, tag := range tags {
		trimmed := strings.TrimSpace(tag)
		if trimmed == "" {
			continue
		}
		if _, exists := seen[trimmed]; exists {
			continue
		}
		seen[trimmed] = struct{}{}
		result = append(result, trimmed)
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

func intersect(a, b []string) []string {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(a))
	for _, item := range a {
		set[item] = struct{}{}
	}
	var result []string
	for _, item := range b {
		if _, ok := set[item]; ok {
			result = append(result, item)
		}
	}
	return result
}

func applyGenerateConfigFromFile(cfg *GenerateConfig, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return newUsageError(fmt.Sprintf("read config file %q: %v", path, err))
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return newUsageError(fmt.Sprintf("parse config file %q: %v", path, err))
	}

	byKey := make(map[string]generateField, len(generateFields))
	for _, f := range generateFields {
		byKey[f.key] = f
	}
	for key, value := range raw {
		f, ok := byKey[normalizeKey(key)]
		if !ok {
			return newUsageError(fmt.Sprintf("config file %q: unknown field %q", path, key))
		}
		switch {
		case f.str != nil:
			str, err := valueAsString(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.str(cfg) = str
		case f.list != nil:
			list, err := valueAsStringSlice(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.list(cfg) = list
		case f.flg != nil:
			val, err := valueAsBool(value)
			if err != nil {
				return newUsageError(fmt.Sprintf("config field %q: %v", key, err))
			}
			*f.flg(cfg) = val
		}
	}

	return nil
}

func normalizeKey(raw string) string {
	lowered := strings.ToLower(strings.TrimSpace(raw))
	lowered = strings.ReplaceAll(lowered, "-", "")
	lowered = strings.ReplaceAll(lowered, "_", "")
	return lowered
}

func valueAsString(v any) (string, error) {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val), nil
	case nil:
		return "", nil
	default:
		return "", fmt.Errorf("expected string, got %T", v)
	}
}

func valueAsStringSlice(v any) ([]string, error) {
	switch val := v.(type) {
	case nil:
		return nil, nil
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		return splitAndTrim(val), nil
	case []any:
		items := make([]string, 0, len(val))
		for idx, elem := range val {
			str, err := valueAsString(elem)
			if err != nil {
				return nil, fmt.Errorf("element %d: %w", idx, err)
			}
			if str != "" {
				items = append(items, str)
			}
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected string or list, got %T", v)
	}
}

func valueAsBool(v any) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case string:
		trimmed := strings.ToLower(strings.TrimSpace(val))
		switch trimmed {
		case "true", "t", "1", "yes", "y":
			return true, nil
		case "false", "f", "0", "no", "n":
			return false, nil
		case "":
			return false, nil
		default:
			return false, fmt.Errorf("invalid boolean value %q", val)
		}
	case nil:
		return false, nil
	default:
		return false, fmt.Errorf("expected boolean, got %T", v)
	}
}

func splitAndTrim(csv string) []string {
	parts := strings.Split(csv, ",")
	cleaned := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
