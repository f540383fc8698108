package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"

	"github.com/Aleph-Alpha/docstore/v1/docstore"
	"github.com/Aleph-Alpha/docstore/v1/embedding"
	"github.com/Aleph-Alpha/docstore/v1/logger"
	"github.com/Aleph-Alpha/docstore/v1/metrics"
	"github.com/Aleph-Alpha/docstore/v1/postgres"
	"github.com/Aleph-Alpha/docstore/v1/tracer"
)

const envPrefix = "DOCSTORE"

// appConfig is the full CLI configuration. Every key can be set in the
// config file or through DOCSTORE_<SECTION>_<KEY> environment variables.
type appConfig struct {
	Logger        logger.Config        `yaml:"logger"`
	Postgres      postgres.Config      `yaml:"postgres"`
	Metrics       metrics.Config       `yaml:"metrics"`
	Tracer        tracer.Config        `yaml:"tracer"`
	DocumentStore docstore.Config      `yaml:"document_store"`
	Index         docstore.HNSWOptions `yaml:"index"`
	Retriever     retrieverConfig      `yaml:"retriever"`
	Embedding     embedding.Config     `yaml:"embedding"`
}

type retrieverConfig struct {
	TopK         int    `yaml:"top_k"`
	FilterPolicy string `yaml:"filter_policy"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", logger.Info)
	v.SetDefault("logger.service_name", "docstore")
	v.SetDefault("logger.enable_tracing", false)

	v.SetDefault("postgres.connection.host", "localhost")
	v.SetDefault("postgres.connection.port", "5432")
	v.SetDefault("postgres.connection.user", "postgres")
	v.SetDefault("postgres.connection.password", "")
	v.SetDefault("postgres.connection.db_name", "postgres")
	v.SetDefault("postgres.connection.ssl_mode", "disable")
	v.SetDefault("postgres.connection_details.max_open_conns", 0)
	v.SetDefault("postgres.connection_details.max_idle_conns", 0)
	v.SetDefault("postgres.connection_details.conn_max_lifetime", "0s")
	v.SetDefault("postgres.enable_vector_extension", true)

	v.SetDefault("metrics.address", "")
	v.SetDefault("metrics.enable_default_collectors", false)
	v.SetDefault("metrics.namespace", "")
	v.SetDefault("metrics.service_name", "docstore")

	v.SetDefault("tracer.service_name", "docstore")
	v.SetDefault("tracer.app_env", "")
	v.SetDefault("tracer.enable_export", false)

	v.SetDefault("document_store.model", docstore.FullModelName)
	v.SetDefault("document_store.language", docstore.DefaultLanguage)
	v.SetDefault("document_store.vector_function", "")

	v.SetDefault("index.m", 0)
	v.SetDefault("index.ef_construction", 0)
	v.SetDefault("index.dimensions", 0)

	v.SetDefault("retriever.top_k", 10)
	v.SetDefault("retriever.filter_policy", "replace")

	v.SetDefault("embedding.endpoint", "")
	v.SetDefault("embedding.service_token", "")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.http_timeout", "30s")
	v.SetDefault("embedding.batch_size", 32)
}

// initConfig applies defaults and the environment to v and reads cfgFile.
// Without cfgFile a docstore.yaml in the working directory or
// $HOME/.config/docstore is used when one exists.
func initConfig(v *viper.Viper, cfgFile string) error {
	setDefaults(v)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return fmt.Errorf("reading config file: %w", err)
		}
		return nil
	}

	v.SetConfigName("docstore")
	v.AddConfigPath(".")
	v.AddConfigPath("$HOME/.config/docstore")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

func loadConfig(v *viper.Viper) (appConfig, error) {
	var cfg appConfig
	err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "yaml"
	})
	if err != nil {
		return appConfig{}, fmt.Errorf("decoding config: %w", err)
	}
	return cfg, nil
}
