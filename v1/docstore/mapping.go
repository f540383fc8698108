package docstore

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/pgvector/pgvector-go"
	"gorm.io/gorm/schema"

	"github.com/Aleph-Alpha/docstore/v1/document"
	"github.com/Aleph-Alpha/docstore/v1/logger"
)

// Document attribute names. They double as the default column names and
// as the aliases columns are selected under.
const (
	FieldID              = "id"
	FieldContent         = "content"
	FieldMeta            = "meta"
	FieldEmbedding       = "embedding"
	FieldSparseEmbedding = "sparse_embedding"
	FieldDataFrame       = "dataframe"
	FieldBlobData        = "blob_data"
	FieldBlobMeta        = "blob_meta"
	FieldBlobMimeType    = "blob_mime_type"

	scoreAlias = "score"
)

var documentFields = []string{
	FieldID,
	FieldContent,
	FieldMeta,
	FieldEmbedding,
	FieldSparseEmbedding,
	FieldDataFrame,
	FieldBlobData,
	FieldBlobMeta,
	FieldBlobMimeType,
}

var jsonFields = map[string]bool{
	FieldMeta:            true,
	FieldSparseEmbedding: true,
	FieldDataFrame:       true,
	FieldBlobMeta:        true,
}

// FieldMap names the model column (or Go field) that stores each document
// attribute.
type FieldMap struct {
	ID              string `yaml:"id" json:"id,omitempty"`
	Content         string `yaml:"content" json:"content,omitempty"`
	Meta            string `yaml:"meta" json:"meta,omitempty"`
	Embedding       string `yaml:"embedding" json:"embedding,omitempty"`
	SparseEmbedding string `yaml:"sparse_embedding" json:"sparse_embedding,omitempty"`
	DataFrame       string `yaml:"dataframe" json:"dataframe,omitempty"`
	BlobData        string `yaml:"blob_data" json:"blob_data,omitempty"`
	BlobMeta        string `yaml:"blob_meta" json:"blob_meta,omitempty"`
	BlobMimeType    string `yaml:"blob_mime_type" json:"blob_mime_type,omitempty"`
}

// DefaultFieldMap maps every attribute to the column of the same name.
func DefaultFieldMap() FieldMap {
	return FieldMap{
		ID:              FieldID,
		Content:         FieldContent,
		Meta:            FieldMeta,
		Embedding:       FieldEmbedding,
		SparseEmbedding: FieldSparseEmbedding,
		DataFrame:       FieldDataFrame,
		BlobData:        FieldBlobData,
		BlobMeta:        FieldBlobMeta,
		BlobMimeType:    FieldBlobMimeType,
	}
}

func (fm FieldMap) get(field string) string {
	switch field {
	case FieldID:
		return fm.ID
	case FieldContent:
		return fm.Content
	case FieldMeta:
		return fm.Meta
	case FieldEmbedding:
		return fm.Embedding
	case FieldSparseEmbedding:
		return fm.SparseEmbedding
	case FieldDataFrame:
		return fm.DataFrame
	case FieldBlobData:
		return fm.BlobData
	case FieldBlobMeta:
		return fm.BlobMeta
	case FieldBlobMimeType:
		return fm.BlobMimeType
	default:
		return ""
	}
}

func (fm FieldMap) merge(override FieldMap) FieldMap {
	pick := func(base, o string) string {
		if o != "" {
			return o
		}
		return base
	}
	return FieldMap{
		ID:              pick(fm.ID, override.ID),
		Content:         pick(fm.Content, override.Content),
		Meta:            pick(fm.Meta, override.Meta),
		Embedding:       pick(fm.Embedding, override.Embedding),
		SparseEmbedding: pick(fm.SparseEmbedding, override.SparseEmbedding),
		DataFrame:       pick(fm.DataFrame, override.DataFrame),
		BlobData:        pick(fm.BlobData, override.BlobData),
		BlobMeta:        pick(fm.BlobMeta, override.BlobMeta),
		BlobMimeType:    pick(fm.BlobMimeType, override.BlobMimeType),
	}
}

// Mapping is a FieldMap resolved against a parsed model schema.
type Mapping struct {
	schema  *schema.Schema
	columns map[string]*schema.Field
	logger  logger.Logger
}

// NewMapping resolves fm against sch. Attributes without a column are
// absent; id and meta must resolve or ErrFieldRequired is returned.
func NewMapping(sch *schema.Schema, fm FieldMap, log logger.Logger) (*Mapping, error) {
	if log == nil {
		log = logger.NewNopLogger()
	}
	m := &Mapping{
		schema:  sch,
		columns: make(map[string]*schema.Field, len(documentFields)),
		logger:  log,
	}
	for _, field := range documentFields {
		name := fm.get(field)
		if name == "" {
			continue
		}
		if f := sch.LookUpField(name); f != nil && f.DBName != "" {
			m.columns[field] = f
		}
	}
	for _, required := range []string{FieldID, FieldMeta} {
		if _, ok := m.columns[required]; !ok {
			return nil, fmt.Errorf("%w: model %s has no column for %q (mapped to %q)",
				ErrFieldRequired, sch.Name, required, fm.get(required))
		}
	}
	return m, nil
}

// Table is the model's table name.
func (m *Mapping) Table() string {
	return m.schema.Table
}

// Column returns the column storing a document attribute.
func (m *Mapping) Column(field string) (string, bool) {
	f, ok := m.columns[field]
	if !ok {
		return "", false
	}
	return f.DBName, true
}

// Has reports whether the model stores the attribute.
func (m *Mapping) Has(field string) bool {
	_, ok := m.columns[field]
	return ok
}

// present returns the stored attributes in declaration order.
func (m *Mapping) present() []string {
	out := make([]string, 0, len(m.columns))
	for _, field := range documentFields {
		if m.Has(field) {
			out = append(out, field)
		}
	}
	return out
}

// record is the scan target of every read. Columns are selected under the
// attribute names, so one struct serves any mapping.
type record struct {
	ID              sql.NullString  `gorm:"column:id"`
	Content         sql.NullString  `gorm:"column:content"`
	Meta            []byte          `gorm:"column:meta"`
	Embedding       sql.NullString  `gorm:"column:embedding"`
	SparseEmbedding []byte          `gorm:"column:sparse_embedding"`
	DataFrame       []byte          `gorm:"column:dataframe"`
	BlobData        []byte          `gorm:"column:blob_data"`
	BlobMeta        []byte          `gorm:"column:blob_meta"`
	BlobMimeType    sql.NullString  `gorm:"column:blob_mime_type"`
	Score           sql.NullFloat64 `gorm:"column:score"`
}

// ToDocument converts a scanned row. The blob is only set when blob data
// is non-empty.
func (m *Mapping) ToDocument(r record) (document.Document, error) {
	doc := document.Document{
		ID:      r.ID.String,
		Content: r.Content.String,
		Meta:    map[string]any{},
	}

	if len(r.Meta) > 0 {
		if err := json.Unmarshal(r.Meta, &doc.Meta); err != nil {
			return document.Document{}, fmt.Errorf("failed to decode meta of document %s: %w", doc.ID, err)
		}
		if doc.Meta == nil {
			doc.Meta = map[string]any{}
		}
	}

	if r.Embedding.Valid && r.Embedding.String != "" {
		var v pgvector.Vector
		if err := v.Scan(r.Embedding.String); err != nil {
			return document.Document{}, fmt.Errorf("failed to decode embedding of document %s: %w", doc.ID, err)
		}
		doc.Embedding = v.Slice()
	}

	if isJSONPresent(r.SparseEmbedding) {
		var sparse document.SparseEmbedding
		if err := json.Unmarshal(r.SparseEmbedding, &sparse); err != nil {
			return document.Document{}, fmt.Errorf("failed to decode sparse embedding of document %s: %w", doc.ID, err)
		}
		doc.SparseEmbedding = &sparse
	}

	if isJSONPresent(r.DataFrame) {
		var df document.DataFrame
		if err := json.Unmarshal(r.DataFrame, &df); err != nil {
			return document.Document{}, fmt.Errorf("failed to decode dataframe of document %s: %w", doc.ID, err)
		}
		doc.DataFrame = &df
	}

	if len(r.BlobData) > 0 {
		blob := &document.ByteStream{
			Data:     r.BlobData,
			MimeType: r.BlobMimeType.String,
		}
		if isJSONPresent(r.BlobMeta) {
			if err := json.Unmarshal(r.BlobMeta, &blob.Meta); err != nil {
				return document.Document{}, fmt.Errorf("failed to decode blob meta of document %s: %w", doc.ID, err)
			}
		}
		doc.Blob = blob
	}

	if r.Score.Valid {
		doc = doc.WithScore(r.Score.Float64)
	}
	return doc, nil
}

// FromDocument returns the column values persisting doc. Attributes that
// carry a value but have no column are logged and skipped. The document
// must already have an ID.
func (m *Mapping) FromDocument(doc document.Document) (map[string]any, error) {
	if doc.ID == "" {
		return nil, fmt.Errorf("%w: document has no id", ErrFieldRequired)
	}

	meta, err := metaJSON(doc.Meta)
	if err != nil {
		return nil, fmt.Errorf("failed to encode meta of document %s: %w", doc.ID, err)
	}
	values := map[string]any{
		FieldID:   doc.ID,
		FieldMeta: meta,
	}
	if doc.Content != "" {
		values[FieldContent] = doc.Content
	}
	if len(doc.Embedding) > 0 {
		values[FieldEmbedding] = pgvector.NewVector(doc.Embedding)
	}
	if doc.SparseEmbedding != nil {
		raw, err := json.Marshal(doc.SparseEmbedding)
		if err != nil {
			return nil, fmt.Errorf("failed to encode sparse embedding of document %s: %w", doc.ID, err)
		}
		values[FieldSparseEmbedding] = string(raw)
	}
	if doc.DataFrame != nil {
		raw, err := json.Marshal(doc.DataFrame)
		if err != nil {
			return nil, fmt.Errorf("failed to encode dataframe of document %s: %w", doc.ID, err)
		}
		values[FieldDataFrame] = string(raw)
	}
	if doc.Blob != nil {
		values[FieldBlobData] = doc.Blob.Data
		if doc.Blob.Meta != nil {
			raw, err := json.Marshal(doc.Blob.Meta)
			if err != nil {
				return nil, fmt.Errorf("failed to encode blob meta of document %s: %w", doc.ID, err)
			}
			values[FieldBlobMeta] = string(raw)
		}
		if doc.Blob.MimeType != "" {
			values[FieldBlobMimeType] = doc.Blob.MimeType
		}
	}

	row := make(map[string]any, len(values))
	for field, value := range values {
		column, ok := m.Column(field)
		if !ok {
			m.logger.Warn("cannot store value for document field as it is not defined in model", nil, map[string]interface{}{
				"field": field,
				"model": m.schema.Name,
			})
			continue
		}
		row[column] = value
	}
	return row, nil
}

func metaJSON(meta map[string]any) (string, error) {
	if meta == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}

func isJSONPresent(raw []byte) bool {
	return len(raw) > 0 && string(raw) != "null"
}
