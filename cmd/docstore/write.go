package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/embedding"
)

// maxParallelReads bounds how many input files are read at once.
const maxParallelReads = 8

func newWriteCmd(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "write FILE...",
		Short: "Write documents from JSON files",
		Long: "Each file holds a single document object or an array of documents. " +
			"All files are written in one batch.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, _ := cmd.Flags().GetString("policy")
			policy, err := document.ParseDuplicatePolicy(raw)
			if err != nil {
				return err
			}

			docs, err := loadDocuments(cmd.Context(), args)
			if err != nil {
				return err
			}

			embed, _ := cmd.Flags().GetBool("embed")

			return c.run(cmd.Context(), func(ctx context.Context, s session) error {
				if embed {
					embedder, err := s.requireEmbedder()
					if err != nil {
						return err
					}
					if docs, err = embedding.EmbedDocuments(ctx, embedder, docs); err != nil {
						return err
					}
				}

				written, err := s.store.WriteDocuments(ctx, docs, policy)
				if err != nil {
					return err
				}
				return printJSON(cmd, map[string]int{"written": written})
			})
		},
	}

	cmd.Flags().String("policy", string(document.PolicyFail), "duplicate policy (none, fail, skip, overwrite)")
	cmd.Flags().Bool("embed", false, "embed the content of documents that have no embedding")

	return cmd
}

// loadDocuments reads paths concurrently and returns their documents in
// argument order.
func loadDocuments(ctx context.Context, paths []string) ([]document.Document, error) {
	perFile := make([][]document.Document, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelReads)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			docs, err := readDocumentFile(path)
			if err != nil {
				return err
			}
			perFile[i] = docs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var docs []document.Document
	for _, fileDocs := range perFile {
		docs = append(docs, fileDocs...)
	}
	return docs, nil
}

func readDocumentFile(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)

	if bytes.HasPrefix(data, []byte("[")) {
		var docs []document.Document
		if err := json.Unmarshal(data, &docs); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return docs, nil
	}

	var doc document.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return []document.Document{doc}, nil
}
