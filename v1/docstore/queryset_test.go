package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/filters"
)

const fullSelect = "SELECT `id` AS `id`, `content` AS `content`, `meta` AS `meta`, `embedding` AS `embedding`, " +
	"`sparse_embedding` AS `sparse_embedding`, `dataframe` AS `dataframe`, `blob_data` AS `blob_data`, " +
	"`blob_meta` AS `blob_meta`, `blob_mime_type` AS `blob_mime_type`"

func TestQuerySet_SQL(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	sql, err := s.Query().SQL()
	require.NoError(t, err)
	assert.Equal(t, fullSelect+" FROM `documents` ORDER BY `id`", sql)

	qs, err := s.FilterQuery(filters.Eq("content", "hello"))
	require.NoError(t, err)
	sql, err = qs.Order("content", true).Limit(2).SQL()
	require.NoError(t, err)
	assert.Equal(t, fullSelect+" FROM `documents` WHERE `content` = \"hello\" ORDER BY `content` DESC,`id` LIMIT 2", sql)
}

func TestQuerySet_Immutable(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	base := s.Query()
	limited := base.Limit(3)
	filtered := base.Where(filters.Eq("id", "x"))

	sql, err := base.SQL()
	require.NoError(t, err)
	assert.NotContains(t, sql, "LIMIT")
	assert.NotContains(t, sql, "WHERE")

	sql, err = limited.SQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "LIMIT 3")
	assert.NotContains(t, sql, "WHERE")

	sql, err = filtered.SQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE `id` = \"x\"")
	assert.NotContains(t, sql, "LIMIT")
}

func TestQuerySet_DeferredErrors(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})
	ctx := context.Background()

	qs := s.Query().Where(filters.Eq("nope", 1)).Limit(3)
	assert.ErrorIs(t, qs.Err(), filters.ErrInvalidFilter)

	_, err := qs.Documents(ctx)
	assert.ErrorIs(t, err, filters.ErrInvalidFilter)
	_, err = qs.Count(ctx)
	assert.ErrorIs(t, err, filters.ErrInvalidFilter)
	_, err = qs.First(ctx)
	assert.ErrorIs(t, err, filters.ErrInvalidFilter)
	_, err = qs.SQL()
	assert.ErrorIs(t, err, filters.ErrInvalidFilter)

	_, err = s.FilterQuery(filters.Gt("meta.name", "abc"))
	assert.ErrorIs(t, err, filters.ErrInvalidFilter)

	assert.ErrorIs(t, s.Query().Order("meta.year", false).Err(), filters.ErrInvalidFilter)
	assert.ErrorIs(t, s.Query().Order("score", false).Err(), filters.ErrInvalidFilter)
}

func TestEmbeddingRetrieval_SQL(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	qs, err := s.EmbeddingRetrieval(EmbeddingQuery{
		Embedding: []float32{1, 2, 3},
		Filters:   filters.Eq("content", "hello"),
		TopK:      5,
	})
	require.NoError(t, err)

	sql, err := qs.SQL()
	require.NoError(t, err)
	assert.Equal(t, fullSelect+", (1 - (`embedding` <=> \"[1,2,3]\"::vector)) AS `score` FROM `documents` "+
		"WHERE `content` = \"hello\" ORDER BY `score` DESC,`id` LIMIT 5", sql)

	qs, err = s.EmbeddingRetrieval(EmbeddingQuery{
		Embedding:      []float32{1, 2, 3},
		VectorFunction: L2Distance,
	})
	require.NoError(t, err)
	sql, err = qs.SQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "(`embedding` <-> \"[1,2,3]\"::vector) AS `score`")
	assert.Contains(t, sql, "ORDER BY `score`,`id`")
	assert.NotContains(t, sql, "LIMIT")
}

func TestEmbeddingRetrieval_OrderDirection(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	for _, fn := range []VectorFunction{L2Distance, L1Distance, CosineDistance, MaxInnerProduct, HammingDistance, JaccardDistance} {
		t.Run(string(fn), func(t *testing.T) {
			qs, err := s.EmbeddingRetrieval(EmbeddingQuery{Embedding: []float32{1, 0}, VectorFunction: fn})
			require.NoError(t, err)
			sql, err := qs.SQL()
			require.NoError(t, err)
			if fn.Ascending() {
				assert.Contains(t, sql, "ORDER BY `score`,`id`")
			} else {
				assert.Contains(t, sql, "ORDER BY `score` DESC,`id`")
			}
		})
	}
}

func TestEmbeddingRetrieval_Errors(t *testing.T) {
	plain := newDryRunStore(t, &document.Model{})

	_, err := plain.EmbeddingRetrieval(EmbeddingQuery{Embedding: []float32{1}})
	assert.ErrorIs(t, err, ErrVectorFunctionRequired)

	_, err = plain.EmbeddingRetrieval(EmbeddingQuery{Embedding: []float32{1}, VectorFunction: CosineDistance})
	assert.ErrorIs(t, err, ErrFieldRequired)

	full := newDryRunStore(t, &document.FullModel{})

	_, err = full.EmbeddingRetrieval(EmbeddingQuery{})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = full.EmbeddingRetrieval(EmbeddingQuery{Embedding: []float32{1}, Field: "meta"})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = full.EmbeddingRetrieval(EmbeddingQuery{Embedding: []float32{1}, Filters: filters.Eq("nope", 1)})
	assert.ErrorIs(t, err, filters.ErrInvalidFilter)
}

func TestEmbeddingRetrieval_Base(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	base := s.Query().Where(filters.Eq("id", "a"))
	qs, err := s.EmbeddingRetrieval(EmbeddingQuery{
		Embedding: []float32{1},
		Filters:   filters.Eq("content", "b"),
		Base:      base,
	})
	require.NoError(t, err)

	sql, err := qs.SQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "WHERE `id` = \"a\" AND `content` = \"b\"")
}

func TestRetrieval_BaseFromAnotherStore(t *testing.T) {
	a := newDryRunStore(t, &document.FullModel{})
	b := newDryRunStore(t, &document.FullModel{})
	base := b.Query().Where(filters.Eq("id", "only-this"))

	_, err := a.EmbeddingRetrieval(EmbeddingQuery{Embedding: []float32{1}, Base: base})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = a.KeywordRetrieval(KeywordQuery{Query: "x", Base: base})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestRetrieval_BaseWithLimit(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	_, err := s.EmbeddingRetrieval(EmbeddingQuery{Embedding: []float32{1}, Base: s.Query().Limit(5)})
	assert.ErrorIs(t, err, ErrInvalidQuery)

	_, err = s.KeywordRetrieval(KeywordQuery{Query: "x", Base: s.Query().Limit(5)})
	assert.ErrorIs(t, err, ErrInvalidQuery)
}

func TestRetrieval_BaseErrorPropagates(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	_, err := s.KeywordRetrieval(KeywordQuery{Query: "x", Base: s.Query().Where(filters.Eq("", 1))})
	assert.ErrorIs(t, err, filters.ErrInvalidFilter)
}

func TestRetrieval_RerankReplacesScoreOrder(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	ranked, err := s.EmbeddingRetrieval(EmbeddingQuery{
		Embedding:      []float32{1},
		VectorFunction: L2Distance,
	})
	require.NoError(t, err)

	qs, err := s.KeywordRetrieval(KeywordQuery{Query: "x", TopK: 2, Base: ranked.Order("content", false)})
	require.NoError(t, err)

	sql, err := qs.SQL()
	require.NoError(t, err)
	assert.Contains(t, sql, "ts_rank(")
	assert.NotContains(t, sql, "<->")
	assert.Contains(t, sql, "ORDER BY `score` DESC,`content`,`id` LIMIT 2")
}

func TestKeywordRetrieval_SQL(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{}, WithLanguage("german"))

	qs, err := s.KeywordRetrieval(KeywordQuery{Query: "hallo welt", TopK: 3})
	require.NoError(t, err)

	sql, err := qs.SQL()
	require.NoError(t, err)
	assert.Equal(t, fullSelect+", (ts_rank(to_tsvector(\"german\"::regconfig, coalesce(`content`, '')), "+
		"plainto_tsquery(\"german\"::regconfig, \"hallo welt\"))) AS `score` FROM `documents` "+
		"ORDER BY `score` DESC,`id` LIMIT 3", sql)

	renamed := newDryRunStore(t, &renamedModel{}, WithFieldMap(FieldMap{ID: "key", Meta: "attributes"}))
	_, err = renamed.KeywordRetrieval(KeywordQuery{Query: "x"})
	assert.ErrorIs(t, err, ErrFieldRequired)
}

func TestPrepareRows(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})
	docs := []document.Document{
		{ID: "a", Content: "first"},
		{ID: "b", Content: "other"},
		{ID: "a", Content: "second"},
	}

	_, _, err := s.prepareRows(docs, document.PolicyFail)
	assert.ErrorIs(t, err, ErrDuplicateDocument)

	rows, ids, err := s.prepareRows(docs, document.PolicySkip)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, "first", rows[0]["content"])

	rows, ids, err = s.prepareRows(docs, document.PolicyOverwrite)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, ids)
	assert.Equal(t, "second", rows[0]["content"])

	rows, ids, err = s.prepareRows([]document.Document{{Content: "no id"}}, document.PolicyFail)
	require.NoError(t, err)
	require.Len(t, ids, 1)
	assert.Equal(t, document.GenerateID(document.Document{Content: "no id"}), ids[0])
	assert.Equal(t, ids[0], rows[0]["id"])
}

func TestWriteDocuments_InvalidPolicy(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	_, err := s.WriteDocuments(context.Background(), []document.Document{{ID: "a"}}, "replace")
	assert.Error(t, err)

	n, err := s.WriteDocuments(context.Background(), nil, document.PolicyFail)
	require.NoError(t, err)
	assert.Zero(t, n)
}
