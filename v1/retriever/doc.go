// Package retriever exposes the document store's embedding and keyword
// retrieval as pipeline components with named inputs and a documents
// output.
//
// A retriever fixes defaults at construction: filters, top k (default
// DefaultTopK) and, for embeddings, the vector function. Each Run may
// override them. Runtime filters replace the init filters under
// FilterPolicyReplace and are combined with them by filters.Merge under
// FilterPolicyMerge.
//
//	r, err := retriever.NewEmbeddingRetriever(store, retriever.EmbeddingConfig{
//		TopK:         5,
//		FilterPolicy: "merge",
//		Filters:      filters.Expression{Filter: filters.Eq("meta.lang", "en")},
//	})
//	res, err := r.Run(ctx, retriever.EmbeddingRequest{QueryEmbedding: vec})
//
// Configurations carry yaml and json tags so a retriever, including its
// store, can be saved with ToConfig and rebuilt with
// EmbeddingRetrieverFromConfig or KeywordRetrieverFromConfig.
package retriever
