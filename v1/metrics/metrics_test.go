package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Aleph-Alpha/docstore/v1/observability"
)

func TestObserveOperation(t *testing.T) {
	m := NewMetrics(Config{ServiceName: "docstore-test"})

	m.ObserveOperation(observability.OperationContext{
		Component: "docstore",
		Operation: "write_documents",
		Duration:  20 * time.Millisecond,
		Size:      3,
	})
	m.ObserveOperation(observability.OperationContext{
		Component: "docstore",
		Operation: "write_documents",
		Duration:  5 * time.Millisecond,
		Error:     errors.New("duplicate"),
		Size:      2,
	})

	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("write_documents", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.operationsTotal.WithLabelValues("write_documents", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.documentsTotal.WithLabelValues("write_documents")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.operationDuration))
}

func TestObserveOperation_NilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveOperation(observability.OperationContext{Operation: "count_documents"})
	})
}

func TestNewMetrics_ServerOnlyWithAddress(t *testing.T) {
	assert.Nil(t, NewMetrics(Config{}).Server)

	m := NewMetrics(Config{Address: ":0", Namespace: "pharia", EnableDefaultCollectors: true})
	require.NotNil(t, m.Server)
	assert.Equal(t, ":0", m.Server.Addr)

	families, err := m.Registry.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}
