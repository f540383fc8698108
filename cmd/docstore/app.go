package main

import (
	"context"
	"errors"
	"time"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docstore/v1/docstore"
	"github.com/Aleph-Alpha/docstore/v1/embedding"
	"github.com/Aleph-Alpha/docstore/v1/logger"
	"github.com/Aleph-Alpha/docstore/v1/metrics"
	"github.com/Aleph-Alpha/docstore/v1/postgres"
	"github.com/Aleph-Alpha/docstore/v1/tracer"
)

const stopTimeout = 10 * time.Second

var errEmbeddingNotConfigured = errors.New("embedding endpoint is not configured, set embedding.endpoint and embedding.model")

// session is what a command runs against once the application has started.
type session struct {
	cfg      appConfig
	store    *docstore.Store
	postgres *postgres.Postgres
	log      logger.Logger
	// embedder is nil unless an embedding endpoint is configured.
	embedder embedding.Embedder
}

// run starts the fx application for cfg, hands the wired store to fn and
// stops the application afterwards.
func run(ctx context.Context, cfg appConfig, fn func(ctx context.Context, s session) error) (err error) {
	s := session{cfg: cfg}

	options := []fx.Option{
		fx.NopLogger,
		fx.Supply(cfg.Logger, cfg.Postgres, cfg.Metrics, cfg.Tracer, cfg.DocumentStore),
		logger.FXModule,
		postgres.FXModule,
		metrics.FXModule,
		tracer.FXModule,
		docstore.FXModule,
		fx.Populate(&s.store, &s.postgres, &s.log),
	}
	if cfg.Embedding.Enabled() {
		options = append(options,
			fx.Supply(cfg.Embedding),
			embedding.FXModule,
			fx.Populate(&s.embedder),
		)
	}

	app := fx.New(options...)

	if err := app.Start(ctx); err != nil {
		return err
	}
	defer func() {
		stopCtx, cancel := context.WithTimeout(context.Background(), stopTimeout)
		defer cancel()
		err = errors.Join(err, app.Stop(stopCtx))
	}()

	return fn(ctx, s)
}

func (s session) requireEmbedder() (embedding.Embedder, error) {
	if s.embedder == nil {
		return nil, errEmbeddingNotConfigured
	}
	return s.embedder, nil
}

func (c *cli) run(ctx context.Context, fn func(ctx context.Context, s session) error) error {
	cfg, err := loadConfig(c.v)
	if err != nil {
		return err
	}
	return run(ctx, cfg, fn)
}
