package docstore

import (
	"context"
	"time"

	"github.com/Aleph-Alpha/docstore/v1/observability"
)

const component = "docstore"

// instrument runs fn inside a span, then reports the outcome to the
// observer and logs failures. fn returns the number of documents affected.
func (s *Store) instrument(ctx context.Context, operation string, meta map[string]interface{}, fn func(ctx context.Context) (int64, error)) error {
	ctx, span := s.opts.tracer.StartSpan(ctx, component+"."+operation)
	defer span.End()

	attrs := map[string]interface{}{
		"db.table":           s.mapping.Table(),
		"docstore.operation": operation,
	}
	for k, v := range meta {
		attrs["docstore."+k] = v
	}
	s.opts.tracer.SetAttributes(span, attrs)

	start := time.Now()
	size, err := fn(ctx)
	elapsed := time.Since(start)

	if err != nil {
		s.opts.tracer.RecordErrorOnSpan(span, err)
		s.opts.logger.Error("document store operation failed", err, map[string]interface{}{
			"operation": operation,
			"table":     s.mapping.Table(),
		})
	} else {
		s.opts.logger.Debug("document store operation completed", nil, map[string]interface{}{
			"operation": operation,
			"table":     s.mapping.Table(),
			"documents": size,
			"duration":  elapsed.String(),
		})
	}

	if s.opts.observer != nil {
		subResource := ""
		if fn, ok := meta["vector_function"].(string); ok {
			subResource = fn
		}
		s.opts.observer.ObserveOperation(observability.OperationContext{
			Component:   component,
			Operation:   operation,
			Resource:    s.mapping.Table(),
			SubResource: subResource,
			Duration:    elapsed,
			Error:       err,
			Size:        size,
			Metadata:    meta,
		})
	}
	return err
}
