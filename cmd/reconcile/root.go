package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-reconcile/internal/hydrate"
	"github.com/goliatone/go-reconcile/tree"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "reconcile",
		Short: "Reconcile two document snapshots",
		Long: `reconcile compares an original and a target document and reports
list additions, removals, moves and object updates to the handlers
declared in a configuration file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newDiffCmd(), newValidateCmd())
	return root
}

// loadDocuments decodes every path concurrently. Empty paths yield nil.
func loadDocuments(ctx context.Context, decoder *hydrate.Decoder, paths ...string) ([]tree.Node, error) {
	docs := make([]tree.Node, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		if path == "" {
			continue
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			payload, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			doc, err := decoder.Decode(hydrate.Context{
				Name:   filepath.Base(path),
				Format: hydrate.FormatFromPath(path),
			}, payload)
			if err != nil {
				return err
			}
			docs[i] = doc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

// resolvePath makes path relative to the directory of base.
func resolvePath(base, path string) string {
	if path == "" || filepath.IsAbs(path) || base == "" {
		return path
	}
	return filepath.Join(filepath.Dir(base), path)
}
