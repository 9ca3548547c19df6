package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mark3labs/swagger2sdk/internal/emitter/sdkemitter"
)

// InitConfig captures the options for the init command.
type InitConfig struct {
	OutputPath string
	Force      bool
	Verbose    bool
}

var initRunner = runInit

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Scaffold a sample swagger2sdk configuration file",
		Long:  "Scaffold a commented swagger2sdk configuration file that documents available options.",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := cmd.Flags().GetString("out")
			if err != nil {
				return err
			}
			force, err := cmd.Flags().GetBool("force")
			if err != nil {
				return err
			}
			verbose, err := cmd.Flags().GetBool("verbose")
			if err != nil {
				return err
			}
			cfg := &InitConfig{
				OutputPath: out,
				Force:      force,
				Verbose:    verbose,
			}
			return initRunner(cmd.Context(), cfg)
		},
	}

	cmd.Flags().String("out", "swagger2sdk.yaml", "Where to write the sample config file")
	cmd.Flags().Bool("force", false, "Overwrite the target file if it already exists")

	return cmd
}

func runInit(ctx context.Context, cfg *InitConfig) error {
	out := strings.TrimSpace(cfg.OutputPath)
	if out == "" {
		out = "swagger2sdk.yaml"
	}
	absPath, err := filepath.Abs(out)
	if err != nil {
		return fmt.Errorf("init: resolve output path: %w", err)
	}

	if st, err := os.Stat(absPath); err == nil && !cfg.Force {
		if st.Mode().IsRegular() {
			return newUsageError(fmt.Sprintf("init: %q already exists (use --force to overwrite)", absPath))
		}
	}

	content := strings.TrimSpace(sampleConfigYAML) + "\n"
	sink := sdkemitter.NewFilesystemSink(filepath.Dir(absPath), true)
	if err := sink.WriteFile(ctx, filepath.Base(absPath), []byte(content)); err != nil {
		return newUsageError(fmt.Sprintf("init: cannot write %s: %v\nHint: choose a different --out or check directory permissions.", absPath, err))
	}
	newLogger(cfg.Verbose).Debug("sample config written", "path", absPath)
	fmt.Fprintf(os.Stdout, "Wrote sample config to %s\n", absPath)
	return nil
}

// sampleConfigYAML is a commented example config documenting available options.
const sampleConfigYAML = `# swagger2sdk configuration (YAML)
# All fields are optional. Command-line flags override config values.
# Keys are matched case-insensitively; dashes and underscores are ignored.

# Path to the Swagger/OpenAPI document (.json, .yaml or .yml).
# input: ./openapi.yaml

# Output directory. When omitted, derived from the spec title.
# out: ./sdk

# Only include operations with these tags (comma-separated or list).
# includeTags: [public,read]

# Exclude operations with these tags (comma-separated or list).
# excludeTags: [internal]

# Only include operations with these HTTP methods.
# methods: [GET, POST]

# Only include paths matching one of these regular expressions.
# paths: ['^/users']

# Import path of the generated SDK module. Derived from the title when omitted.
# namespace: example.com/acme/sdk

# Package paths below the namespace for each kind of unit.
# requestSuffix: requests
# resourceSuffix: resources
# dtoSuffix: dto
# enumSuffix: enums
# connectorSuffix: connector

# Resource name for operations that have neither a path prefix nor a tag.
# fallbackResourceName: Resource

# Parameters left out of generated requests; the connector supplies them
# through WithQuery and WithHeader.
# ignoredBodyParams: []
# ignoredQueryParams: [api_key]
# ignoredHeaderParams: [Authorization]

# Lookup-table file merged over the built-in collection and enum names.
# tables: ./tables.yaml

# Skip OpenAPI validation of the input document.
# noValidate: false

# Preview planned outputs without writing files.
# dryRun: false

# Overwrite non-empty output directory.
# force: false

# Enable verbose logging.
# verbose: false
`
