package retriever

import (
	"context"
	"fmt"

	"github.com/Aleph-Alpha/docstore/v1/docstore"
	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/filters"
)

// DefaultTopK is the number of documents returned when neither the
// retriever nor the request sets one.
const DefaultTopK = 10

// EmbeddingStore is the part of *docstore.Store the embedding retriever
// needs.
type EmbeddingStore interface {
	SearchEmbedding(ctx context.Context, q docstore.EmbeddingQuery) ([]document.Document, error)
}

// KeywordStore is the part of *docstore.Store the keyword retriever needs.
type KeywordStore interface {
	SearchKeyword(ctx context.Context, q docstore.KeywordQuery) ([]document.Document, error)
}

// Result is the output of a retriever run.
type Result struct {
	Documents []document.Document `json:"documents"`
}

// settings shared by both retrievers.
type settings struct {
	filters filters.Filter
	topK    int
	policy  FilterPolicy
}

func newSettings(f filters.Filter, topK int, policy string) (settings, error) {
	if topK < 0 {
		return settings{}, fmt.Errorf("%w: %d", ErrInvalidTopK, topK)
	}
	if topK == 0 {
		topK = DefaultTopK
	}
	p, err := ParseFilterPolicy(policy)
	if err != nil {
		return settings{}, err
	}
	if f != nil {
		if err := f.Validate(); err != nil {
			return settings{}, err
		}
	}
	return settings{filters: f, topK: topK, policy: p}, nil
}

func (s settings) resolve(runtime filters.Filter, topK int) (filters.Filter, int, error) {
	if topK < 0 {
		return nil, 0, fmt.Errorf("%w: %d", ErrInvalidTopK, topK)
	}
	if topK == 0 {
		topK = s.topK
	}
	return s.policy.apply(s.filters, runtime), topK, nil
}

func storeConfig(store any) docstore.Config {
	if c, ok := store.(interface{ Config() docstore.Config }); ok {
		return c.Config()
	}
	return docstore.Config{}
}
