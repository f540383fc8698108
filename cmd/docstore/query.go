package main

import (
	"context"

	"github.com/spf13/cobra"
)

func newDeleteCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID...",
		Short: "Delete documents by ID",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.run(cmd.Context(), func(ctx context.Context, s session) error {
				if err := s.store.DeleteDocuments(ctx, args); err != nil {
					return err
				}
				return printJSON(cmd, map[string][]string{"deleted": args})
			})
		},
	}
}

func newCountCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "count",
		Short: "Count documents, optionally matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFilterFlag(cmd)
			if err != nil {
				return err
			}

			return c.run(cmd.Context(), func(ctx context.Context, s session) error {
				var n int64
				if f == nil {
					n, err = s.store.CountDocuments(ctx)
				} else {
					n, err = s.store.CountDocumentsFiltered(ctx, f)
				}
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]int64{"count": n})
			})
		},
	}

	cmd.Flags().String("filter", "", "filter as JSON")

	return cmd
}

func newFilterCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "List documents matching a filter",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := parseFilterFlag(cmd)
			if err != nil {
				return err
			}
			limit, _ := cmd.Flags().GetInt("limit")

			return c.run(cmd.Context(), func(ctx context.Context, s session) error {
				qs, err := s.store.FilterQuery(f)
				if err != nil {
					return err
				}
				docs, err := qs.Limit(limit).Documents(ctx)
				if err != nil {
					return err
				}
				return printJSON(cmd, docs)
			})
		},
	}

	cmd.Flags().String("filter", "", "filter as JSON, all documents when empty")
	cmd.Flags().Int("limit", 0, "maximum number of documents, 0 for no limit")

	return cmd
}
