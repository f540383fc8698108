package retriever

import (
	"context"

	"github.com/Aleph-Alpha/docstore/v1/docstore"
	"github.com/Aleph-Alpha/docstore/v1/filters"
)

// KeywordConfig is the serializable form of a KeywordRetriever.
type KeywordConfig struct {
	DocumentStore docstore.Config    `yaml:"document_store" json:"document_store"`
	Filters       filters.Expression `yaml:"filters,omitempty" json:"filters,omitempty"`
	TopK          int                `yaml:"top_k" json:"top_k"`
	FilterPolicy  string             `yaml:"filter_policy" json:"filter_policy"`
}

// KeywordRequest is one retrieval. Zero fields fall back to the retriever
// settings.
type KeywordRequest struct {
	Query   string         `json:"query"`
	Filters filters.Filter `json:"-"`
	TopK    int            `json:"top_k,omitempty"`
}

// KeywordRetriever ranks documents by full text rank against a query.
type KeywordRetriever struct {
	store    KeywordStore
	settings settings
}

// NewKeywordRetriever validates cfg and binds it to store.
func NewKeywordRetriever(store KeywordStore, cfg KeywordConfig) (*KeywordRetriever, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	s, err := newSettings(cfg.Filters.Filter, cfg.TopK, cfg.FilterPolicy)
	if err != nil {
		return nil, err
	}
	return &KeywordRetriever{store: store, settings: s}, nil
}

// Run resolves filters and top k against the retriever settings and
// searches the store.
func (r *KeywordRetriever) Run(ctx context.Context, req KeywordRequest) (Result, error) {
	f, topK, err := r.settings.resolve(req.Filters, req.TopK)
	if err != nil {
		return Result{}, err
	}

	docs, err := r.store.SearchKeyword(ctx, docstore.KeywordQuery{
		Query:   req.Query,
		Filters: f,
		TopK:    topK,
	})
	if err != nil {
		return Result{}, err
	}
	return Result{Documents: docs}, nil
}

// ToConfig returns the serializable form of r.
func (r *KeywordRetriever) ToConfig() KeywordConfig {
	return KeywordConfig{
		DocumentStore: storeConfig(r.store),
		Filters:       filters.Expression{Filter: r.settings.filters},
		TopK:          r.settings.topK,
		FilterPolicy:  string(r.settings.policy),
	}
}

// KeywordRetrieverFromConfig rebuilds the store from cfg.DocumentStore
// over conn, then the retriever.
func KeywordRetrieverFromConfig(conn docstore.Conn, cfg KeywordConfig, opts ...docstore.Option) (*KeywordRetriever, error) {
	store, err := docstore.NewFromConfig(conn, cfg.DocumentStore, opts...)
	if err != nil {
		return nil, err
	}
	return NewKeywordRetriever(store, cfg)
}
