package metrics

// DefaultMetricsAddress is used when Config.Address is empty and the server
// is explicitly enabled.
const DefaultMetricsAddress = ":9090"

// Config controls the Prometheus registry and the /metrics server.
type Config struct {
	// Address is where the /metrics HTTP server listens, e.g. ":9090".
	// An empty address disables the server; metrics are still collected.
	Address string `yaml:"address" envconfig:"METRICS_ADDRESS"`

	// EnableDefaultCollectors registers the Go runtime, process and build
	// info collectors.
	EnableDefaultCollectors bool `yaml:"enable_default_collectors" envconfig:"METRICS_ENABLE_DEFAULT_COLLECTORS"`

	// Namespace prefixes every metric name, e.g. "pharia" gives
	// "pharia_docstore_operations_total".
	Namespace string `yaml:"namespace" envconfig:"METRICS_NAMESPACE"`

	// ServiceName is attached to every metric as the "service" label.
	ServiceName string `yaml:"service_name" envconfig:"METRICS_SERVICE_NAME"`
}
