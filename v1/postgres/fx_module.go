package postgres

import (
	"context"
	"sync"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docstore/v1/logger"
)

// FXModule provides *Postgres and runs its connection monitoring for the
// lifetime of the application.
var FXModule = fx.Module("postgres",
	fx.Provide(
		NewPostgresClientWithDI,
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams groups the dependencies of NewPostgresClientWithDI.
type PostgresParams struct {
	fx.In

	Config Config
	Logger logger.Logger `optional:"true"`
}

// NewPostgresClientWithDI is the fx constructor for *Postgres.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	return NewPostgres(params.Config, params.Logger)
}

// PostgresLifeCycleParams groups the dependencies of RegisterPostgresLifecycle.
type PostgresLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Postgres  *Postgres
}

// RegisterPostgresLifecycle starts MonitorConnection and RetryConnection on
// start and closes the pool after both loops have returned on stop.
func RegisterPostgresLifecycle(params PostgresLifeCycleParams) {
	wg := &sync.WaitGroup{}
	loopCtx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			wg.Add(2)
			go func() {
				defer wg.Done()
				params.Postgres.MonitorConnection(loopCtx)
			}()
			go func() {
				defer wg.Done()
				params.Postgres.RetryConnection(loopCtx)
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			params.Postgres.closeShutdownOnce.Do(func() {
				close(params.Postgres.shutdownSignal)
			})
			cancel()
			wg.Wait()
			return params.Postgres.GracefulShutdown()
		},
	})
}
