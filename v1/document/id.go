package document

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// GenerateID derives a stable identifier from everything but the ID and
// score: the hex SHA-256 of content, dataframe, blob, meta, embedding and
// sparse embedding. Equal documents always get equal IDs.
func GenerateID(d Document) string {
	var blobData []byte
	var blobMime string
	if d.Blob != nil {
		blobData = d.Blob.Data
		blobMime = d.Blob.MimeType
	}

	// json.Marshal sorts map keys, so Meta hashes deterministically.
	metaJSON, _ := json.Marshal(d.Meta)
	dataframeJSON, _ := json.Marshal(d.DataFrame)
	sparseJSON, _ := json.Marshal(d.SparseEmbedding)

	h := sha256.New()
	fmt.Fprintf(h, "%s:%s:%x:%s:%s:%v:%s",
		d.Content, dataframeJSON, blobData, blobMime, metaJSON, d.Embedding, sparseJSON)
	return hex.EncodeToString(h.Sum(nil))
}

// EnsureID returns d with ID set, deriving it with GenerateID when empty.
func EnsureID(d Document) Document {
	if d.ID == "" {
		d.ID = GenerateID(d)
	}
	return d
}
