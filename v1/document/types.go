package document

// Document is the unit stored and returned by the document store.
type Document struct {
	// ID identifies the document. When empty on write it is derived from
	// the content with GenerateID.
	ID string `json:"id"`

	// Content is the text payload. Empty means no content.
	Content string `json:"content,omitempty"`

	// Embedding is the optional dense vector.
	Embedding []float32 `json:"embedding,omitempty"`

	// SparseEmbedding is the optional sparse vector.
	SparseEmbedding *SparseEmbedding `json:"sparse_embedding,omitempty"`

	// Meta holds arbitrary metadata. Filters address it as "meta.<key>".
	Meta map[string]any `json:"meta"`

	// DataFrame is an optional table stored as JSON.
	DataFrame *DataFrame `json:"dataframe,omitempty"`

	// Blob is optional binary content with its own mime type and metadata.
	Blob *ByteStream `json:"blob,omitempty"`

	// Score is only set on retrieval results.
	Score *float64 `json:"score,omitempty"`
}

// SparseEmbedding is a sparse vector given as parallel index and value lists.
type SparseEmbedding struct {
	Indices []int     `json:"indices"`
	Values  []float32 `json:"values"`
}

// DataFrame is a column-oriented table in "split" layout.
type DataFrame struct {
	Columns []string `json:"columns"`
	Data    [][]any  `json:"data"`
}

// ByteStream is binary content plus its mime type and metadata.
type ByteStream struct {
	Data     []byte         `json:"data"`
	MimeType string         `json:"mime_type,omitempty"`
	Meta     map[string]any `json:"meta,omitempty"`
}

// WithScore returns a copy of d carrying score.
func (d Document) WithScore(score float64) Document {
	d.Score = &score
	return d
}
