package embedding

import "time"

const (
	defaultHTTPTimeout = 30 * time.Second
	defaultBatchSize   = 32
)

// Config points the client at an OpenAI-compatible inference service.
type Config struct {
	// Endpoint is the base URL of the service. The client appends
	// /embeddings, so "https://inference.example.com/v1" is expected.
	Endpoint string `yaml:"endpoint" envconfig:"EMBEDDING_ENDPOINT"`

	// ServiceToken is sent as a bearer token when set.
	ServiceToken string `yaml:"service_token" envconfig:"EMBEDDING_SERVICE_TOKEN"`

	// Model is the embedding model name passed with every request.
	Model string `yaml:"model" envconfig:"EMBEDDING_MODEL"`

	// HTTPTimeout bounds a single request. Zero means 30s.
	HTTPTimeout time.Duration `yaml:"http_timeout" envconfig:"EMBEDDING_HTTP_TIMEOUT"`

	// BatchSize is the number of texts sent per request. Zero means 32.
	BatchSize int `yaml:"batch_size" envconfig:"EMBEDDING_BATCH_SIZE"`
}

// Enabled reports whether an endpoint is configured.
func (c Config) Enabled() bool {
	return c.Endpoint != ""
}

func (c Config) validate() error {
	if c.Endpoint == "" {
		return ErrMissingEndpoint
	}
	if c.Model == "" {
		return ErrMissingModel
	}
	return nil
}
