// Package embedding computes dense text embeddings through an
// OpenAI-compatible inference service.
//
// The client is what fills in Document.Embedding before a write and turns
// a text query into the vector an EmbeddingRetriever ranks by:
//
//	client, err := embedding.NewClient(embedding.Config{
//	    Endpoint: "https://inference.example.com/v1",
//	    Model:    "bge-small-en",
//	})
//	if err != nil {
//	    return err
//	}
//	vectors, err := client.Embed(ctx, "what is pgvector?")
//
// EmbedDocuments leaves documents that already carry an embedding, or have
// no content, untouched:
//
//	docs, err = embedding.EmbedDocuments(ctx, client, docs)
package embedding
