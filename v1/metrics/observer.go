package metrics

import "github.com/Aleph-Alpha/docstore/v1/observability"

// ObserveOperation records a completed store operation. It makes *Metrics
// usable as an observability.Observer.
func (m *Metrics) ObserveOperation(ctx observability.OperationContext) {
	if m == nil {
		return
	}
	m.operationsTotal.WithLabelValues(ctx.Operation, ctx.Status()).Inc()
	m.operationDuration.WithLabelValues(ctx.Operation).Observe(ctx.Duration.Seconds())
	if ctx.Error == nil && ctx.Size > 0 {
		m.documentsTotal.WithLabelValues(ctx.Operation).Add(float64(ctx.Size))
	}
}

var _ observability.Observer = (*Metrics)(nil)
