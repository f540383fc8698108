package docstore

import (
	"database/sql"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/logger"
)

type renamedModel struct {
	Key        string           `gorm:"primaryKey"`
	Body       string           `gorm:"type:text"`
	Attributes document.JSONMap `gorm:"type:jsonb"`
}

type noMetaModel struct {
	ID      string `gorm:"primaryKey"`
	Content string
}

type cosineModel struct {
	document.Model
	Embedding *pgvector.Vector `gorm:"type:vector(3)"`
}

func (cosineModel) DocumentStoreOptions() []Option {
	return []Option{WithVectorFunction(L2Distance), WithLanguage("german")}
}

func TestNew_RequiredFields(t *testing.T) {
	_, err := New(GormConn(newDryRunDB(t)), &noMetaModel{})
	assert.ErrorIs(t, err, ErrFieldRequired)

	_, err = New(GormConn(newDryRunDB(t)), &renamedModel{})
	assert.ErrorIs(t, err, ErrFieldRequired, "id and meta are not mapped without a field map")

	s, err := New(GormConn(newDryRunDB(t)), &renamedModel{}, WithFieldMap(FieldMap{ID: "Key", Meta: "attributes"}))
	require.NoError(t, err)
	column, ok := s.Mapping().Column(FieldID)
	assert.True(t, ok)
	assert.Equal(t, "key", column)
	assert.False(t, s.Mapping().Has(FieldContent))
	assert.Equal(t, "renamed_models", s.Mapping().Table())
}

func TestNew_Options(t *testing.T) {
	full := newDryRunStore(t, &document.FullModel{})
	assert.Equal(t, CosineDistance, full.VectorFunction(), "registered default")
	assert.Equal(t, DefaultLanguage, full.Language())
	assert.Equal(t, "documents", full.Mapping().Table())

	plain := newDryRunStore(t, &document.Model{})
	assert.Equal(t, VectorFunction(""), plain.VectorFunction())

	declared := newDryRunStore(t, &cosineModel{})
	assert.Equal(t, L2Distance, declared.VectorFunction())
	assert.Equal(t, "german", declared.Language())

	overridden := newDryRunStore(t, &cosineModel{}, WithVectorFunction(MaxInnerProduct))
	assert.Equal(t, MaxInnerProduct, overridden.VectorFunction())

	_, err := New(GormConn(newDryRunDB(t)), &cosineModel{}, WithVectorFunction("manhattan"))
	assert.ErrorIs(t, err, ErrUnknownVectorFunction)

	_, err = New(nil, &document.FullModel{})
	assert.Error(t, err)
}

func TestMapping_FromDocument(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	doc := document.Document{
		ID:              "1",
		Content:         "hello",
		Embedding:       []float32{1, 2, 3},
		SparseEmbedding: &document.SparseEmbedding{Indices: []int{0, 4}, Values: []float32{0.5, 1}},
		Meta:            map[string]any{"lang": "en"},
		DataFrame:       &document.DataFrame{Columns: []string{"a"}, Data: [][]any{{1}}},
		Blob:            &document.ByteStream{Data: []byte("raw"), MimeType: "text/plain", Meta: map[string]any{"k": "v"}},
	}

	row, err := s.Mapping().FromDocument(doc)
	require.NoError(t, err)

	assert.Equal(t, "1", row["id"])
	assert.Equal(t, "hello", row["content"])
	assert.JSONEq(t, `{"lang":"en"}`, row["meta"].(string))
	assert.Equal(t, pgvector.NewVector([]float32{1, 2, 3}), row["embedding"])
	assert.JSONEq(t, `{"indices":[0,4],"values":[0.5,1]}`, row["sparse_embedding"].(string))
	assert.JSONEq(t, `{"columns":["a"],"data":[[1]]}`, row["dataframe"].(string))
	assert.Equal(t, []byte("raw"), row["blob_data"])
	assert.JSONEq(t, `{"k":"v"}`, row["blob_meta"].(string))
	assert.Equal(t, "text/plain", row["blob_mime_type"])
}

func TestMapping_FromDocument_NilMeta(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	row, err := s.Mapping().FromDocument(document.Document{ID: "1"})
	require.NoError(t, err)
	assert.Equal(t, "{}", row["meta"])
	assert.NotContains(t, row, "content")
	assert.NotContains(t, row, "embedding")

	_, err = s.Mapping().FromDocument(document.Document{})
	assert.ErrorIs(t, err, ErrFieldRequired)
}

func TestMapping_FromDocument_WarnsForUnmappedValues(t *testing.T) {
	ctrl := gomock.NewController(t)
	mockLogger := logger.NewMockLogger(ctrl)
	mockLogger.EXPECT().
		Warn("cannot store value for document field as it is not defined in model", nil, gomock.Any()).
		Times(1)

	s := newDryRunStore(t, &document.Model{}, WithLogger(mockLogger))

	row, err := s.Mapping().FromDocument(document.Document{
		ID:        "1",
		Content:   "text",
		Embedding: []float32{1},
	})
	require.NoError(t, err)
	assert.NotContains(t, row, "embedding")
	assert.Equal(t, "text", row["content"])
}

func TestMapping_ToDocument(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	doc, err := s.Mapping().ToDocument(record{
		ID:              sql.NullString{String: "1", Valid: true},
		Content:         sql.NullString{String: "hello", Valid: true},
		Meta:            []byte(`{"lang":"en","year":2020}`),
		Embedding:       sql.NullString{String: "[1,2.5,3]", Valid: true},
		SparseEmbedding: []byte(`{"indices":[1],"values":[0.5]}`),
		DataFrame:       []byte("null"),
		BlobData:        []byte("raw"),
		BlobMeta:        []byte(`{"k":"v"}`),
		BlobMimeType:    sql.NullString{String: "text/plain", Valid: true},
		Score:           sql.NullFloat64{Float64: 0.75, Valid: true},
	})
	require.NoError(t, err)

	assert.Equal(t, "1", doc.ID)
	assert.Equal(t, "hello", doc.Content)
	assert.Equal(t, map[string]any{"lang": "en", "year": float64(2020)}, doc.Meta)
	assert.Equal(t, []float32{1, 2.5, 3}, doc.Embedding)
	require.NotNil(t, doc.SparseEmbedding)
	assert.Equal(t, []int{1}, doc.SparseEmbedding.Indices)
	assert.Nil(t, doc.DataFrame)
	require.NotNil(t, doc.Blob)
	assert.Equal(t, "text/plain", doc.Blob.MimeType)
	assert.Equal(t, map[string]any{"k": "v"}, doc.Blob.Meta)
	require.NotNil(t, doc.Score)
	assert.InDelta(t, 0.75, *doc.Score, 1e-9)
}

func TestMapping_ToDocument_Minimal(t *testing.T) {
	s := newDryRunStore(t, &document.FullModel{})

	doc, err := s.Mapping().ToDocument(record{ID: sql.NullString{String: "1", Valid: true}})
	require.NoError(t, err)
	assert.Equal(t, document.Document{ID: "1", Meta: map[string]any{}}, doc)
}
