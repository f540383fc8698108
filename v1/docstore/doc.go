// Package docstore stores documents in a table described by a gorm model
// and retrieves them by metadata filter, embedding distance or keyword
// rank.
//
// Any gorm model can back a store as long as it has columns for the id and
// meta attributes, usually by embedding document.Model:
//
//	type Article struct {
//		document.Model
//		Embedding *pgvector.Vector `gorm:"type:vector(3)"`
//	}
//
//	store, err := docstore.New(pg, &Article{}, docstore.WithVectorFunction(docstore.CosineDistance))
//	n, err := store.WriteDocuments(ctx, docs, document.PolicyOverwrite)
//
// Columns named differently are mapped with WithFieldMap. Attributes the
// model has no column for are skipped on write with a warning.
//
// Reads return a QuerySet, which is only executed by Documents, Count or
// First:
//
//	qs, err := store.EmbeddingRetrieval(docstore.EmbeddingQuery{
//		Embedding: []float32{0.1, 0.2, 0.3},
//		Filters:   filters.Eq("meta.lang", "en"),
//		TopK:      5,
//	})
//	docs, err := qs.Documents(ctx)
//
// Scores follow the vector function: L2 and L1 are distances and sort
// ascending; cosine (1 - distance), inner product (negated distance),
// hamming (negated distance) and jaccard (1 - distance) sort descending.
// Keyword retrieval ranks with ts_rank over the store language.
package docstore
