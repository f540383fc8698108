// Package document defines the Document value exchanged with the document
// store and the gorm building blocks for tables that hold documents.
//
// Embed Model in a gorm struct to get the required id, content and meta
// columns. Optional attributes are picked up when the model declares a
// column for them (embedding, sparse_embedding, dataframe, blob_data,
// blob_meta, blob_mime_type); FullModel declares them all.
package document
