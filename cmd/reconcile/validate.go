package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-reconcile"
	"github.com/goliatone/go-reconcile/internal/hydrate"
	"github.com/goliatone/go-reconcile/validator/jsonschema"
)

var errInvalidDocument = errors.New("document is invalid")

type validateOptions struct {
	target string
	schema string
}

func newValidateCmd() *cobra.Command {
	var opts validateOptions
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Print the validation annotations of a document",
		Long: `validate checks the target document against a JSON Schema and prints the
annotation of the root and of every object, keyed by lookup. The command
fails when the document has validation errors.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runValidate(cmd.Context(), cmd.OutOrStdout(), opts)
		},
	}
	cmd.Flags().StringVar(&opts.target, "target", "", "document to validate (JSON or YAML)")
	cmd.Flags().StringVar(&opts.schema, "schema", "", "JSON Schema")
	_ = cmd.MarkFlagRequired("target")
	_ = cmd.MarkFlagRequired("schema")
	return cmd
}

func runValidate(ctx context.Context, out io.Writer, opts validateOptions) error {
	docs, err := loadDocuments(ctx, hydrate.NewDecoder(), opts.target, opts.schema)
	if err != nil {
		return err
	}

	session := reconcile.NewSession(
		reconcile.WithValidator(jsonschema.New()),
		reconcile.WithSchema(docs[1]),
	)
	annotations, err := session.Assign(ctx, docs[0])
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(annotations, "", "  ")
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(out, "%s\n", payload); err != nil {
		return err
	}

	if errs := session.Errors(); len(errs) > 0 {
		return fmt.Errorf("%w: %d validation errors", errInvalidDocument, len(errs))
	}
	return nil
}
