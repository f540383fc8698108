package docstore

import (
	"context"

	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/Aleph-Alpha/docstore/v1/logger"
	"github.com/Aleph-Alpha/docstore/v1/observability"
)

// DefaultLanguage is the text search configuration used for keyword
// retrieval when none is configured.
const DefaultLanguage = "english"

// Tracer is the subset of *tracer.Tracer the store uses.
type Tracer interface {
	StartSpan(ctx context.Context, name string) (context.Context, trace.Span)
	RecordErrorOnSpan(span trace.Span, err error)
	SetAttributes(span trace.Span, attrs map[string]interface{})
}

// Option configures a Store.
type Option func(*options)

type options struct {
	fieldMap       FieldMap
	language       string
	vectorFunction VectorFunction
	logger         logger.Logger
	observer       observability.Observer
	tracer         Tracer
}

// ModelOptions can be implemented by a model to declare store defaults,
// such as its vector function or a renamed column. Options passed to New
// take precedence.
type ModelOptions interface {
	DocumentStoreOptions() []Option
}

func defaultOptions() options {
	return options{
		fieldMap: DefaultFieldMap(),
		language: DefaultLanguage,
		logger:   logger.NewNopLogger(),
		tracer:   noopTracer{tracer: noop.NewTracerProvider().Tracer("docstore")},
	}
}

// WithFieldMap renames document attributes to model columns. Empty entries
// keep their default.
func WithFieldMap(fm FieldMap) Option {
	return func(o *options) {
		o.fieldMap = o.fieldMap.merge(fm)
	}
}

// WithLanguage sets the text search configuration for keyword retrieval.
func WithLanguage(language string) Option {
	return func(o *options) {
		if language != "" {
			o.language = language
		}
	}
}

// WithVectorFunction sets the default ranking function for embedding
// retrieval.
func WithVectorFunction(fn VectorFunction) Option {
	return func(o *options) {
		o.vectorFunction = fn
	}
}

// WithLogger sets the logger for store operations. Nil keeps the default.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithObserver reports every store operation to obs.
func WithObserver(obs observability.Observer) Option {
	return func(o *options) {
		o.observer = obs
	}
}

// WithTracer creates one span per store operation.
func WithTracer(t Tracer) Option {
	return func(o *options) {
		if t != nil {
			o.tracer = t
		}
	}
}

type noopTracer struct {
	tracer trace.Tracer
}

func (n noopTracer) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return n.tracer.Start(ctx, name)
}

func (noopTracer) RecordErrorOnSpan(trace.Span, error) {}

func (noopTracer) SetAttributes(trace.Span, map[string]interface{}) {}
