// Package logger provides the zap based structured logger used across the
// docstore packages.
//
// Components depend on the Logger interface; LoggerClient is the concrete
// implementation returned by NewLoggerClient. Every log call takes a message,
// an optional error and optional field maps:
//
//	log := logger.NewLoggerClient(logger.Config{Level: logger.Debug, ServiceName: "docstore"})
//	log.Warn("cannot store value", nil, map[string]interface{}{"field": "blob"})
//
// With Config.EnableTracing set, the *WithContext variants add the trace_id
// and span_id of the active OpenTelemetry span.
//
// For fx applications use FXModule, which provides both *LoggerClient and
// Logger and syncs the logger on shutdown.
package logger
