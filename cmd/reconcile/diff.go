package main

import (
	"context"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reconcile"
	"github.com/goliatone/go-reconcile/config"
	"github.com/goliatone/go-reconcile/internal/hydrate"
	"github.com/goliatone/go-reconcile/validator/jsonschema"
)

type diffOptions struct {
	original string
	target   string
	config   string
	schema   string
}

func newDiffCmd() *cobra.Command {
	var opts diffOptions
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Print the change events between two documents",
		Long: `diff assigns the target document against the original one and runs every
configured handler. Each change event is printed as one JSON line,
followed by a summary line.

Examples:
  reconcile diff --original before.json --target after.json --config reconcile.yaml
  reconcile diff --original before.yaml --target after.yaml --config reconcile.yaml --schema order.schema.json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runDiff(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.original, "original", "", "original document (JSON or YAML)")
	cmd.Flags().StringVar(&opts.target, "target", "", "target document (JSON or YAML)")
	cmd.Flags().StringVar(&opts.config, "config", "", "handler configuration file")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "JSON Schema, overrides schema.path of the configuration")
	_ = cmd.MarkFlagRequired("original")
	_ = cmd.MarkFlagRequired("target")
	return cmd
}

type diffSummary struct {
	RunID    string                      `json:"run_id"`
	Counts   map[reconcile.EventKind]int `json:"counts"`
	Skipped  []string                    `json:"skipped,omitempty"`
	Errors   []reconcile.ValidationError `json:"errors,omitempty"`
	Duration string                      `json:"duration"`
}

func runDiff(ctx context.Context, out io.Writer, opts diffOptions) error {
	cfg, err := config.Load(opts.config)
	if err != nil {
		return err
	}
	logger, err := config.NewLogger(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	schemaPath := opts.schema
	if schemaPath == "" {
		schemaPath = resolvePath(opts.config, cfg.Schema.Path)
	}

	docs, err := loadDocuments(ctx, hydrate.NewDecoder(), opts.original, opts.target, schemaPath)
	if err != nil {
		return err
	}
	original, target, schema := docs[0], docs[1], docs[2]

	printer := &eventPrinter{w: out}
	compiler := reconcile.NewPatternCompiler(reconcile.PatternWithCache(reconcile.NewMemoryPatternCache()))
	sessionOpts, err := config.Build(cfg, printerRegistry(cfg, printer), compiler)
	if err != nil {
		return err
	}
	sessionOpts = append(sessionOpts, reconcile.WithLogger(reconcile.NewZapLogger(logger)))
	if schema != nil {
		sessionOpts = append(sessionOpts,
			reconcile.WithValidator(jsonschema.New()),
			reconcile.WithSchema(schema),
		)
	}

	session := reconcile.NewSession(sessionOpts...)
	if _, err := session.AssignWithBaseline(ctx, target, original); err != nil {
		return err
	}
	report, err := session.Persist(ctx)
	if err != nil {
		return err
	}

	return writeJSONLine(out, map[string]diffSummary{"summary": {
		RunID:    report.RunID,
		Counts:   report.Counts(),
		Skipped:  report.Skipped,
		Errors:   report.Errors,
		Duration: report.Duration.String(),
	}})
}

// printerRegistry maps every callback name used by cfg to printer.
func printerRegistry(cfg *config.Config, printer reconcile.Callback) config.CallbackRegistry {
	registry := config.CallbackRegistry{config.DefaultCallback: printer}
	for _, h := range cfg.Sort {
		if h.Callback != "" {
			registry[h.Callback] = printer
		}
	}
	for _, h := range cfg.Merge {
		if h.Callback != "" {
			registry[h.Callback] = printer
		}
	}
	return registry
}

// eventPrinter writes every event it receives as a JSON line.
type eventPrinter struct {
	w io.Writer
}

func (p *eventPrinter) Handle(_ context.Context, event reconcile.ChangeEvent) error {
	return writeJSONLine(p.w, event)
}

func writeJSONLine(w io.Writer, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s\n", payload)
	return err
}
