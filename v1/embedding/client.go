package embedding

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Aleph-Alpha/docstore/v1/document"
)

// Embedder turns texts into dense vectors, one per text and in order.
type Embedder interface {
	Embed(ctx context.Context, texts ...string) ([][]float32, error)
}

// Client computes embeddings through the /embeddings endpoint of an
// OpenAI-compatible inference service.
type Client struct {
	url        string
	token      string
	model      string
	batchSize  int
	httpClient *http.Client
}

// NewClient validates cfg and builds a client for it.
func NewClient(cfg Config) (*Client, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	timeout := cfg.HTTPTimeout
	if timeout <= 0 {
		timeout = defaultHTTPTimeout
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}

	return &Client{
		url:        strings.TrimRight(cfg.Endpoint, "/") + "/embeddings",
		token:      cfg.ServiceToken,
		model:      cfg.Model,
		batchSize:  batchSize,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// Embed returns one embedding per text. Texts are sent in batches of the
// configured size.
func (c *Client) Embed(ctx context.Context, texts ...string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += c.batchSize {
		end := min(start+c.batchSize, len(texts))
		vectors, err := c.create(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vectors...)
	}
	return out, nil
}

// EmbedDocuments fills in the embedding of every document that has content
// but no embedding yet. The input slice is not modified.
func EmbedDocuments(ctx context.Context, e Embedder, docs []document.Document) ([]document.Document, error) {
	out := make([]document.Document, len(docs))
	copy(out, docs)

	var (
		positions []int
		texts     []string
	)
	for i, d := range out {
		if len(d.Embedding) == 0 && d.Content != "" {
			positions = append(positions, i)
			texts = append(texts, d.Content)
		}
	}
	if len(texts) == 0 {
		return out, nil
	}

	vectors, err := e.Embed(ctx, texts...)
	if err != nil {
		return nil, err
	}
	if len(vectors) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", ErrUnexpectedReply, len(vectors), len(texts))
	}
	for j, i := range positions {
		out[i].Embedding = vectors[j]
	}
	return out, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}
