package logger

import (
	"context"

	"go.uber.org/fx"
)

// FXModule provides *LoggerClient and the Logger interface and flushes the
// logger when the application stops. A logger.Config must be supplied.
//
//	app := fx.New(
//	    fx.Supply(logger.Config{Level: logger.Info}),
//	    logger.FXModule,
//	)
var FXModule = fx.Module("logger",
	fx.Provide(
		NewLoggerClient,
		ProvideLogger,
	),
	fx.Invoke(RegisterLoggerLifecycle),
)

// ProvideLogger exposes the concrete client as the Logger interface.
func ProvideLogger(l *LoggerClient) Logger {
	return l
}

// RegisterLoggerLifecycle syncs the zap logger on shutdown so buffered
// entries are not lost.
func RegisterLoggerLifecycle(lc fx.Lifecycle, client *LoggerClient) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			// stderr sync returns EINVAL on some platforms; nothing to flush there.
			_ = client.Zap.Sync()
			return nil
		},
	})
}
