package document

import (
	"github.com/pgvector/pgvector-go"
)

// Model carries the columns every document table needs. Embed it in your
// own gorm model and add the optional columns the store should use:
//
//	type Article struct {
//		document.Model
//		Embedding *pgvector.Vector `gorm:"type:vector(768)"`
//	}
type Model struct {
	ID      string  `gorm:"primaryKey;size:128"`
	Content string  `gorm:"type:text"`
	Meta    JSONMap `gorm:"type:jsonb;not null;default:'{}'"`
}

// FullModel stores every document attribute. The embedding column has no
// fixed dimension; use a model with "type:vector(N)" to build an HNSW index.
type FullModel struct {
	Model
	Embedding       *pgvector.Vector `gorm:"type:vector"`
	SparseEmbedding JSONValue        `gorm:"type:jsonb"`
	DataFrame       JSONValue        `gorm:"column:dataframe;type:jsonb"`
	BlobData        []byte           `gorm:"type:bytea"`
	BlobMeta        JSONValue        `gorm:"type:jsonb"`
	BlobMimeType    *string          `gorm:"size:100"`
}

func (FullModel) TableName() string {
	return "documents"
}
