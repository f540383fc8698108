package docstore

import (
	"context"
	"fmt"

	"gorm.io/gorm/clause"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/filters"
)

// EmbeddingQuery ranks documents by the distance between their embedding
// and Embedding.
type EmbeddingQuery struct {
	Embedding []float32
	Filters   filters.Filter
	// TopK limits the result; zero returns every match.
	TopK int
	// VectorFunction overrides the store default.
	VectorFunction VectorFunction
	// Field names the attribute or column holding the embedding. Defaults
	// to the mapped embedding column.
	Field string
	// Base narrows the candidates before ranking. Defaults to Query(). It
	// must come from the same store and carry no limit; TopK bounds the
	// ranked result. A score or score order on Base is replaced.
	Base *QuerySet
}

// KeywordQuery ranks documents by full text rank of their content
// against Query.
type KeywordQuery struct {
	Query   string
	Filters filters.Filter
	TopK    int
	// Base follows the same rules as EmbeddingQuery.Base.
	Base *QuerySet
}

// EmbeddingRetrieval returns a QuerySet ranked by the vector function,
// with Score set on every document. Distances (L2, L1) sort ascending,
// similarities descending.
func (s *Store) EmbeddingRetrieval(q EmbeddingQuery) (*QuerySet, error) {
	fn := q.VectorFunction
	if fn == "" {
		fn = s.opts.vectorFunction
	}
	if fn == "" {
		return nil, ErrVectorFunctionRequired
	}
	if !fn.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownVectorFunction, string(fn))
	}

	column, err := s.embeddingColumn(q.Field)
	if err != nil {
		return nil, err
	}
	score, err := fn.scoreExpr(column, q.Embedding)
	if err != nil {
		return nil, err
	}

	base, err := s.base(q.Base, "embedding_retrieval")
	if err != nil {
		return nil, err
	}
	qs := base.withScore(score, !fn.Ascending()).
		withMeta("vector_function", string(fn)).
		withMeta("top_k", q.TopK).
		Where(q.Filters)
	if q.TopK > 0 {
		qs = qs.Limit(q.TopK)
	}
	if err := qs.Err(); err != nil {
		return nil, err
	}
	return qs, nil
}

// KeywordRetrieval returns a QuerySet ranked by ts_rank of the content
// column against the plain text query, using the store language. Score
// is set on every document; documents without a match rank 0.
func (s *Store) KeywordRetrieval(q KeywordQuery) (*QuerySet, error) {
	contentColumn, ok := s.mapping.Column(FieldContent)
	if !ok {
		return nil, fmt.Errorf("%w: model %s has no column for %q", ErrFieldRequired, s.mapping.schema.Name, FieldContent)
	}

	score := clause.Expr{
		SQL: "ts_rank(to_tsvector(?::regconfig, coalesce(?, '')), plainto_tsquery(?::regconfig, ?))",
		Vars: []interface{}{
			s.opts.language,
			clause.Column{Name: contentColumn},
			s.opts.language,
			q.Query,
		},
	}

	base, err := s.base(q.Base, "keyword_retrieval")
	if err != nil {
		return nil, err
	}
	qs := base.withScore(score, true).
		withMeta("language", s.opts.language).
		withMeta("top_k", q.TopK).
		Where(q.Filters)
	if q.TopK > 0 {
		qs = qs.Limit(q.TopK)
	}
	if err := qs.Err(); err != nil {
		return nil, err
	}
	return qs, nil
}

// SearchEmbedding runs EmbeddingRetrieval and returns the documents.
func (s *Store) SearchEmbedding(ctx context.Context, q EmbeddingQuery) ([]document.Document, error) {
	qs, err := s.EmbeddingRetrieval(q)
	if err != nil {
		return nil, err
	}
	return qs.Documents(ctx)
}

// SearchKeyword runs KeywordRetrieval and returns the documents.
func (s *Store) SearchKeyword(ctx context.Context, q KeywordQuery) ([]document.Document, error) {
	qs, err := s.KeywordRetrieval(q)
	if err != nil {
		return nil, err
	}
	return qs.Documents(ctx)
}

func (s *Store) base(qs *QuerySet, operation string) (*QuerySet, error) {
	switch {
	case qs == nil:
		return newQuerySet(s, operation), nil
	case qs.store != s:
		return nil, fmt.Errorf("%w: base queryset belongs to another store", ErrInvalidQuery)
	case qs.limit > 0:
		return nil, fmt.Errorf("%w: base queryset has a limit, use TopK instead", ErrInvalidQuery)
	case qs.err != nil:
		return nil, qs.err
	}
	c := qs.clone()
	c.operation = operation
	return c, nil
}

func (s *Store) embeddingColumn(field string) (clause.Column, error) {
	if field == "" {
		column, ok := s.mapping.Column(FieldEmbedding)
		if !ok {
			return clause.Column{}, fmt.Errorf("%w: model %s has no column for %q", ErrFieldRequired, s.mapping.schema.Name, FieldEmbedding)
		}
		return clause.Column{Name: column}, nil
	}

	t, err := s.mapping.resolveField(field)
	if err != nil {
		return clause.Column{}, err
	}
	if t.json {
		return clause.Column{}, fmt.Errorf("%w: %q is not a vector column", ErrInvalidQuery, field)
	}
	return t.column, nil
}
