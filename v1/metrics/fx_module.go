package metrics

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"

	"github.com/Aleph-Alpha/docstore/v1/logger"
	"github.com/Aleph-Alpha/docstore/v1/observability"
)

// FXModule provides *Metrics, exposes it as an observability.Observer and
// runs the /metrics server for the lifetime of the application.
var FXModule = fx.Module("metrics",
	fx.Provide(
		NewMetrics,
		ProvideObserver,
	),
	fx.Invoke(RegisterMetricsLifecycle),
)

// ProvideObserver exposes *Metrics as an observability.Observer.
func ProvideObserver(m *Metrics) observability.Observer {
	return m
}

// RegisterMetricsLifecycle starts and stops the metrics server. Nothing is
// started when no address is configured.
func RegisterMetricsLifecycle(lc fx.Lifecycle, m *Metrics, log logger.Logger) {
	if m.Server == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			go func() {
				log.Info("starting Prometheus metrics server", nil, map[string]interface{}{
					"address": m.Server.Addr,
				})
				if err := m.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					log.Error("error starting Prometheus metrics server", err, nil)
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Info("shutting down Prometheus metrics server", nil)
			return m.Server.Shutdown(ctx)
		},
	})
}
