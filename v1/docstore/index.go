package docstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"gorm.io/gorm/clause"

	"github.com/Aleph-Alpha/docstore/v1/postgres"
)

// HNSWOptions tunes an HNSW index. Zero values use the pgvector defaults.
type HNSWOptions struct {
	M              int `yaml:"m" json:"m,omitempty"`
	EfConstruction int `yaml:"ef_construction" json:"ef_construction,omitempty"`
	// Dimensions is required for the binary functions, whose index is
	// built over binary_quantize(embedding)::bit(Dimensions).
	Dimensions int `yaml:"dimensions" json:"dimensions,omitempty"`
}

// IndexName is the name EnsureHNSWIndex gives the index for fn.
func (s *Store) IndexName(fn VectorFunction) string {
	column, _ := s.mapping.Column(FieldEmbedding)
	return s.mapping.Table() + "_" + column + "_" + fn.OpClass() + "_idx"
}

// EnsureHNSWIndex creates an HNSW index on the embedding column serving
// fn, unless one with the same name exists. The column needs a fixed
// dimension, see EnsureEmbeddingDimensions.
func (s *Store) EnsureHNSWIndex(ctx context.Context, fn VectorFunction, opts HNSWOptions) error {
	if fn == "" {
		fn = s.opts.vectorFunction
	}
	if fn == "" {
		return ErrVectorFunctionRequired
	}
	if !fn.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownVectorFunction, string(fn))
	}
	column, ok := s.mapping.Column(FieldEmbedding)
	if !ok {
		return fmt.Errorf("%w: model %s has no column for %q", ErrFieldRequired, s.mapping.schema.Name, FieldEmbedding)
	}

	target := "? " + fn.OpClass()
	if fn.Binary() {
		if opts.Dimensions <= 0 {
			return fmt.Errorf("%w: binary index on %s needs dimensions", ErrInvalidQuery, column)
		}
		target = "(binary_quantize(?)::bit(" + strconv.Itoa(opts.Dimensions) + ")) " + fn.OpClass()
	}

	sql := "CREATE INDEX IF NOT EXISTS ? ON ? USING hnsw (" + target + ")"
	var with []string
	if opts.M > 0 {
		with = append(with, "m = "+strconv.Itoa(opts.M))
	}
	if opts.EfConstruction > 0 {
		with = append(with, "ef_construction = "+strconv.Itoa(opts.EfConstruction))
	}
	if len(with) > 0 {
		sql += " WITH (" + strings.Join(with, ", ") + ")"
	}

	meta := map[string]interface{}{"vector_function": string(fn)}
	return s.instrument(ctx, "ensure_index", meta, func(ctx context.Context) (int64, error) {
		err := s.conn.DB().WithContext(ctx).Exec(sql,
			clause.Column{Name: s.IndexName(fn)},
			clause.Table{Name: s.mapping.Table()},
			clause.Column{Name: column},
		).Error
		if err != nil {
			return 0, fmt.Errorf("failed to create hnsw index: %w", postgres.TranslateError(err))
		}
		return 0, nil
	})
}

// EnsureEmbeddingDimensions fixes the embedding column to vector(n).
// Existing embeddings must already have n dimensions.
func (s *Store) EnsureEmbeddingDimensions(ctx context.Context, n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: dimensions must be positive, got %d", ErrInvalidQuery, n)
	}
	column, ok := s.mapping.Column(FieldEmbedding)
	if !ok {
		return fmt.Errorf("%w: model %s has no column for %q", ErrFieldRequired, s.mapping.schema.Name, FieldEmbedding)
	}

	meta := map[string]interface{}{"dimensions": n}
	return s.instrument(ctx, "ensure_dimensions", meta, func(ctx context.Context) (int64, error) {
		err := s.conn.DB().WithContext(ctx).Exec(
			"ALTER TABLE ? ALTER COLUMN ? TYPE vector("+strconv.Itoa(n)+")",
			clause.Table{Name: s.mapping.Table()},
			clause.Column{Name: column},
		).Error
		if err != nil {
			return 0, fmt.Errorf("failed to set embedding dimensions: %w", postgres.TranslateError(err))
		}
		return 0, nil
	})
}
