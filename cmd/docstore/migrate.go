package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/docstore/v1/docstore"
)

func newMigrateCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the document table",
		Long: "Enable the vector extension, migrate the configured model and optionally " +
			"pin the embedding dimensions and build an HNSW index.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dimensions, _ := cmd.Flags().GetInt("dimensions")
			withIndex, _ := cmd.Flags().GetBool("hnsw")
			function, _ := cmd.Flags().GetString("function")

			fn, err := docstore.ParseVectorFunction(function)
			if err != nil {
				return err
			}

			return c.run(cmd.Context(), func(ctx context.Context, s session) error {
				return runMigrate(ctx, cmd, s, dimensions, withIndex, fn)
			})
		},
	}

	cmd.Flags().Int("dimensions", 0, "embedding dimensions, overrides index.dimensions")
	cmd.Flags().Bool("hnsw", false, "create an HNSW index for the vector function")
	cmd.Flags().String("function", "", "vector function the index serves, defaults to the store's")

	return cmd
}

type migrateResult struct {
	Table      string `json:"table"`
	Dimensions int    `json:"dimensions,omitempty"`
	Index      string `json:"index,omitempty"`
}

func runMigrate(ctx context.Context, cmd *cobra.Command, s session, dimensions int, withIndex bool, fn docstore.VectorFunction) error {
	if err := s.postgres.EnsureVectorExtension(ctx); err != nil {
		return err
	}
	if err := s.postgres.Migrate(ctx, s.store.NewModel()); err != nil {
		return err
	}

	opts := s.cfg.Index
	if dimensions > 0 {
		opts.Dimensions = dimensions
	}
	result := migrateResult{Table: s.store.Mapping().Table()}

	if opts.Dimensions > 0 && s.store.Mapping().Has(docstore.FieldEmbedding) {
		if err := s.store.EnsureEmbeddingDimensions(ctx, opts.Dimensions); err != nil {
			return err
		}
		result.Dimensions = opts.Dimensions
	}

	if withIndex {
		if fn == "" {
			fn = s.store.VectorFunction()
		}
		if fn == "" {
			return fmt.Errorf("--hnsw: %w", docstore.ErrVectorFunctionRequired)
		}
		if err := s.store.EnsureHNSWIndex(ctx, fn, opts); err != nil {
			return err
		}
		result.Index = s.store.IndexName(fn)
	}

	s.log.Info("migration finished", nil, map[string]interface{}{
		"table":      result.Table,
		"dimensions": result.Dimensions,
		"index":      result.Index,
	})
	return printJSON(cmd, result)
}
