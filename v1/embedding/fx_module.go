package embedding

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *Client and the Embedder interface from an
// embedding.Config in the graph and closes the client on stop.
var FXModule = fx.Module("embedding",
	fx.Provide(
		NewClient,
		ProvideEmbedder,
	),
	fx.Invoke(RegisterEmbeddingLifecycle),
)

// ProvideEmbedder exposes the client as an Embedder.
func ProvideEmbedder(c *Client) Embedder {
	return c
}

// RegisterEmbeddingLifecycle closes the client when the application stops.
func RegisterEmbeddingLifecycle(lc fx.Lifecycle, client *Client) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return client.Close()
		},
	})
}
