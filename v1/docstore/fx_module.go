package docstore

import (
	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docstore/v1/logger"
	"github.com/Aleph-Alpha/docstore/v1/observability"
	"github.com/Aleph-Alpha/docstore/v1/postgres"
	"github.com/Aleph-Alpha/docstore/v1/tracer"
)

// FXModule provides a *Store built from docstore.Config over the
// *postgres.Postgres connection. Logger, observer and tracer are used when
// present in the graph.
var FXModule = fx.Module("docstore",
	fx.Provide(
		NewStoreWithDI,
	),
)

// StoreParams groups the dependencies of NewStoreWithDI.
type StoreParams struct {
	fx.In

	Postgres *postgres.Postgres
	Config   Config
	Logger   logger.Logger          `optional:"true"`
	Observer observability.Observer `optional:"true"`
	Tracer   *tracer.Tracer         `optional:"true"`
}

// NewStoreWithDI is the fx constructor for *Store. An empty model name
// selects document.FullModel.
func NewStoreWithDI(params StoreParams) (*Store, error) {
	cfg := params.Config
	if cfg.Model == "" {
		cfg.Model = FullModelName
	}

	opts := []Option{WithLogger(params.Logger), WithObserver(params.Observer)}
	if params.Tracer != nil {
		opts = append(opts, WithTracer(params.Tracer))
	}
	return NewFromConfig(params.Postgres, cfg, opts...)
}
