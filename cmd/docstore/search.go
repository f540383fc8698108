package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Aleph-Alpha/docstore/v1/docstore"
	"github.com/Aleph-Alpha/docstore/v1/retriever"
)

func newSearchCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search",
		Short: "Retrieve documents by embedding or keyword",
	}

	cmd.PersistentFlags().String("filter", "", "runtime filter as JSON")
	cmd.PersistentFlags().Int("top-k", 0, "number of documents, defaults to retriever.top_k")

	cmd.AddCommand(newSearchEmbeddingCmd(c), newSearchKeywordCmd(c))
	return cmd
}

func newSearchEmbeddingCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "embedding",
		Short: "Rank documents by similarity to a query embedding",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			vector, _ := cmd.Flags().GetFloat32Slice("vector")
			text, _ := cmd.Flags().GetString("text")
			topK, _ := cmd.Flags().GetInt("top-k")
			function, _ := cmd.Flags().GetString("function")

			fn, err := docstore.ParseVectorFunction(function)
			if err != nil {
				return err
			}
			f, err := parseFilterFlag(cmd)
			if err != nil {
				return err
			}
			if len(vector) == 0 && text == "" {
				return fmt.Errorf("%w: one of --vector or --text is required", docstore.ErrInvalidQuery)
			}

			return c.run(cmd.Context(), func(ctx context.Context, s session) error {
				if len(vector) == 0 {
					embedder, err := s.requireEmbedder()
					if err != nil {
						return err
					}
					vectors, err := embedder.Embed(ctx, text)
					if err != nil {
						return err
					}
					vector = vectors[0]
				}

				r, err := retriever.NewEmbeddingRetriever(s.store, retriever.EmbeddingConfig{
					TopK:         s.cfg.Retriever.TopK,
					FilterPolicy: s.cfg.Retriever.FilterPolicy,
				})
				if err != nil {
					return err
				}
				result, err := r.Run(ctx, retriever.EmbeddingRequest{
					QueryEmbedding: vector,
					Filters:        f,
					TopK:           topK,
					VectorFunction: fn,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}

	cmd.Flags().Float32Slice("vector", nil, "query embedding, e.g. 0.1,0.2,0.3")
	cmd.Flags().String("text", "", "query text, embedded through the configured embedding endpoint")
	cmd.MarkFlagsMutuallyExclusive("vector", "text")
	cmd.Flags().String("function", "", "vector function, defaults to the store's")

	return cmd
}

func newSearchKeywordCmd(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "keyword QUERY...",
		Short: "Rank documents by full text match against a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			topK, _ := cmd.Flags().GetInt("top-k")
			f, err := parseFilterFlag(cmd)
			if err != nil {
				return err
			}

			return c.run(cmd.Context(), func(ctx context.Context, s session) error {
				r, err := retriever.NewKeywordRetriever(s.store, retriever.KeywordConfig{
					TopK:         s.cfg.Retriever.TopK,
					FilterPolicy: s.cfg.Retriever.FilterPolicy,
				})
				if err != nil {
					return err
				}
				result, err := r.Run(ctx, retriever.KeywordRequest{
					Query:   strings.Join(args, " "),
					Filters: f,
					TopK:    topK,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd, result)
			})
		},
	}
}
