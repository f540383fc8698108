package retriever

import (
	"context"

	"github.com/Aleph-Alpha/docstore/v1/docstore"
	"github.com/Aleph-Alpha/docstore/v1/filters"
)

// EmbeddingConfig is the serializable form of an EmbeddingRetriever.
type EmbeddingConfig struct {
	DocumentStore  docstore.Config    `yaml:"document_store" json:"document_store"`
	Filters        filters.Expression `yaml:"filters,omitempty" json:"filters,omitempty"`
	TopK           int                `yaml:"top_k" json:"top_k"`
	FilterPolicy   string             `yaml:"filter_policy" json:"filter_policy"`
	VectorFunction string             `yaml:"vector_function,omitempty" json:"vector_function,omitempty"`
}

// EmbeddingRequest is one retrieval. Zero fields fall back to the
// retriever settings.
type EmbeddingRequest struct {
	QueryEmbedding []float32              `json:"query_embedding"`
	Filters        filters.Filter         `json:"-"`
	TopK           int                    `json:"top_k,omitempty"`
	VectorFunction docstore.VectorFunction `json:"vector_function,omitempty"`
}

// EmbeddingRetriever returns the documents closest to a query embedding.
// It keeps no state between runs.
type EmbeddingRetriever struct {
	store          EmbeddingStore
	settings       settings
	vectorFunction docstore.VectorFunction
}

// NewEmbeddingRetriever builds a retriever over store. A zero TopK means
// DefaultTopK, an empty FilterPolicy means replace and an empty
// VectorFunction defers to the store. cfg.DocumentStore is ignored.
func NewEmbeddingRetriever(store EmbeddingStore, cfg EmbeddingConfig) (*EmbeddingRetriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	s, err := newSettings(cfg.Filters.Filter, cfg.TopK, cfg.FilterPolicy)
	if err != nil {
		return nil, err
	}
	fn, err := docstore.ParseVectorFunction(cfg.VectorFunction)
	if err != nil {
		return nil, err
	}
	return &EmbeddingRetriever{store: store, settings: s, vectorFunction: fn}, nil
}

// Run retrieves documents for req, ranked by the request's vector
// function, else the retriever's, else the store default.
func (r *EmbeddingRetriever) Run(ctx context.Context, req EmbeddingRequest) (Result, error) {
	f, topK, err := r.settings.resolve(req.Filters, req.TopK)
	if err != nil {
		return Result{}, err
	}
	fn := req.VectorFunction
	if fn == "" {
		fn = r.vectorFunction
	}

	docs, err := r.store.SearchEmbedding(ctx, docstore.EmbeddingQuery{
		Embedding:      req.QueryEmbedding,
		Filters:        f,
		TopK:           topK,
		VectorFunction: fn,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Documents: docs}, nil
}

// ToConfig returns the retriever configuration, including the store's
// when it can describe itself.
func (r *EmbeddingRetriever) ToConfig() EmbeddingConfig {
	return EmbeddingConfig{
		DocumentStore:  storeConfig(r.store),
		Filters:        filters.Expression{Filter: r.settings.filters},
		TopK:           r.settings.topK,
		FilterPolicy:   string(r.settings.policy),
		VectorFunction: string(r.vectorFunction),
	}
}

// EmbeddingRetrieverFromConfig rebuilds the store from cfg.DocumentStore
// over conn, then the retriever.
func EmbeddingRetrieverFromConfig(conn docstore.Conn, cfg EmbeddingConfig, opts ...docstore.Option) (*EmbeddingRetriever, error) {
	store, err := docstore.NewFromConfig(conn, cfg.DocumentStore, opts...)
	if err != nil {
		return nil, err
	}
	return NewEmbeddingRetriever(store, cfg)
}
