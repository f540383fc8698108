package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics owns an isolated Prometheus registry, the /metrics server and the
// document store operation metrics.
type Metrics struct {
	// Server serves the registry on /metrics. Nil when Config.Address is empty.
	Server *http.Server

	// Registry holds every metric registered through this instance.
	Registry *prometheus.Registry

	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	documentsTotal    *prometheus.CounterVec
}

// NewMetrics creates the registry and the built-in docstore metrics:
//
//	docstore_operations_total{operation,status}
//	docstore_operation_duration_seconds{operation}
//	docstore_documents_total{operation}
//
// All metrics carry a constant service label.
func NewMetrics(cfg Config) *Metrics {
	registry := prometheus.NewRegistry()
	wrapped := prometheus.WrapRegistererWith(
		prometheus.Labels{"service": cfg.ServiceName},
		registry,
	)

	m := &Metrics{
		Registry: registry,
	}

	m.operationsTotal = createCounterVec(cfg.Namespace, "docstore_operations_total",
		"Total number of document store operations", []string{"operation", "status"})
	m.operationDuration = createHistogramVec(cfg.Namespace, "docstore_operation_duration_seconds",
		"Duration of document store operations in seconds", []string{"operation"}, prometheus.DefBuckets)
	m.documentsTotal = createCounterVec(cfg.Namespace, "docstore_documents_total",
		"Number of documents written, deleted or returned", []string{"operation"})

	wrapped.MustRegister(m.operationsTotal, m.operationDuration, m.documentsTotal)

	if cfg.EnableDefaultCollectors {
		wrapped.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
			collectors.NewBuildInfoCollector(),
		)
	}

	if cfg.Address != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		m.Server = &http.Server{
			Addr:    cfg.Address,
			Handler: mux,
		}
	}

	return m
}

func createCounterVec(namespace, name, help string, labels []string) *prometheus.CounterVec {
	return prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
		},
		labels,
	)
}

func createHistogramVec(namespace, name, help string, labels []string, buckets []float64) *prometheus.HistogramVec {
	return prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      name,
			Help:      help,
			Buckets:   buckets,
		},
		labels,
	)
}
