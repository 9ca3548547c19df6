// Package generate runs the generator pipeline: load the document, build
// the IR, collect enums, resolve names and emit the SDK units.
package generate

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/mark3labs/swagger2sdk/internal/config"
	"github.com/mark3labs/swagger2sdk/internal/emitter/sdkemitter"
	"github.com/mark3labs/swagger2sdk/internal/enums"
	"github.com/mark3labs/swagger2sdk/internal/ir"
	"github.com/mark3labs/swagger2sdk/internal/naming"
	"github.com/mark3labs/swagger2sdk/internal/normalize"
	"github.com/mark3labs/swagger2sdk/internal/spec"
	"github.com/mark3labs/swagger2sdk/internal/tables"
)

// Input names the document to generate from: a file path, or raw data in
// an explicit format.
type Input struct {
	Path   string
	Data   []byte
	Format spec.Format
}

// Output is the result of one run.
type Output struct {
	// Units maps relative paths to file contents.
	Units map[string][]byte
	// Plan lists the units in path order.
	Plan []sdkemitter.PlannedFile
	// Warnings are the non-fatal findings of every phase.
	Warnings []string
	Spec     *ir.Specification
}

// Write sends the units to sink in plan order.
func (o *Output) Write(ctx context.Context, sink sdkemitter.OutputSink) error {
	units := make([]sdkemitter.Unit, 0, len(o.Plan))
	for _, p := range o.Plan {
		units = append(units, sdkemitter.Unit{Path: p.RelPath, Content: o.Units[p.RelPath]})
	}
	return sdkemitter.WriteAll(ctx, sink, units)
}

type options struct {
	logger      *slog.Logger
	includeTags []string
	excludeTags []string
	methods     []ir.Method
	paths       []string
	validate    bool
}

// Option configures Run.
type Option func(*options)

func WithLogger(l *slog.Logger) Option { return func(o *options) { o.logger = l } }

// WithIncludeTags keeps only operations carrying one of tags.
func WithIncludeTags(tags []string) Option { return func(o *options) { o.includeTags = tags } }

// WithExcludeTags drops operations carrying one of tags.
func WithExcludeTags(tags []string) Option { return func(o *options) { o.excludeTags = tags } }

// WithMethods keeps only operations with one of the verbs.
func WithMethods(methods []ir.Method) Option { return func(o *options) { o.methods = methods } }

// WithPathPatterns keeps only paths matching one of the regular expressions.
func WithPathPatterns(patterns []string) Option { return func(o *options) { o.paths = patterns } }

// WithValidation toggles the kin-openapi validation pass of the loader.
func WithValidation(on bool) Option { return func(o *options) { o.validate = on } }

// Run generates the SDK units for in. Nothing is written; see Output.Write.
func Run(ctx context.Context, in Input, cfg config.Config, opts ...Option) (*Output, error) {
	o := options{validate: true}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger
	if logger == nil {
		logger = slog.Default()
	}

	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	tbl := tables.Default()
	if cfg.Tables != "" {
		loaded, err := tables.Load(cfg.Tables)
		if err != nil {
			return nil, err
		}
		tbl = loaded
	}

	doc, err := load(ctx, in, spec.WithLogger(logger), spec.WithValidation(o.validate))
	if err != nil {
		return nil, err
	}
	out := &Output{Warnings: append([]string(nil), doc.Warnings...)}
	logger.Debug("spec loaded", "version", doc.Version, "converted", doc.Converted)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	built, err := normalize.Build(ctx, doc.T,
		normalize.WithTables(tbl),
		normalize.WithFallbackResource(cfg.FallbackResourceName),
		normalize.WithLogger(logger),
		normalize.WithIncludeTags(o.includeTags),
		normalize.WithExcludeTags(o.excludeTags),
		normalize.WithMethods(o.methods),
		normalize.WithPathPatterns(o.paths),
	)
	if err != nil {
		return nil, fmt.Errorf("build model: %w", err)
	}
	for _, d := range built.Degradations {
		out.Warnings = append(out.Warnings, d.String())
	}
	out.Spec = built.Spec
	logger.Debug("model built", "endpoints", len(built.Spec.Endpoints), "dtos", len(built.Spec.DTOs))

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	enumTable := enums.Collect(built.Spec, tbl, enums.WithLogger(logger))
	names := naming.Resolve(built.Spec, cfg.FallbackResourceName)
	for _, w := range names.Warnings() {
		msg := "method renamed"
		if w.Endpoint == "" {
			msg = "package renamed"
		}
		logger.Warn(msg, "collection", w.Collection, "endpoint", w.Endpoint, "from", w.Original, "to", w.Renamed)
		out.Warnings = append(out.Warnings, w.String())
	}
	logger.Debug("names resolved", "enums", enumTable.Len(), "resources", len(names.Groups()))

	units, err := sdkemitter.Emit(ctx, sdkemitter.Input{
		Spec:   built.Spec,
		Enums:  enumTable,
		Names:  names,
		Config: cfg,
	})
	if err != nil {
		return nil, err
	}
	out.Units = make(map[string][]byte, len(units))
	for _, u := range units {
		out.Units[u.Path] = u.Content
	}
	out.Plan = sdkemitter.Plan(units)
	return out, nil
}

func load(ctx context.Context, in Input, opts ...spec.Option) (*spec.Document, error) {
	switch {
	case in.Path != "":
		return spec.LoadFile(ctx, in.Path, opts...)
	case len(in.Data) > 0:
		return spec.Load(ctx, in.Data, in.Format, opts...)
	}
	return nil, &spec.SpecError{Code: spec.InputError, Message: "spec: input is empty"}
}
