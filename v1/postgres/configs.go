package postgres

import "time"

// Config holds everything needed to open and tune the connection pool.
type Config struct {
	Connection        Connection        `yaml:"connection"`
	ConnectionDetails ConnectionDetails `yaml:"connection_details"`

	// EnableVectorExtension runs CREATE EXTENSION IF NOT EXISTS vector
	// right after the first successful connection.
	EnableVectorExtension bool `yaml:"enable_vector_extension" envconfig:"POSTGRES_ENABLE_VECTOR_EXTENSION"`
}

type Connection struct {
	Host     string `yaml:"host" envconfig:"POSTGRES_HOST"`
	Port     string `yaml:"port" envconfig:"POSTGRES_PORT"`
	User     string `yaml:"user" envconfig:"POSTGRES_USER"`
	Password string `yaml:"password" envconfig:"POSTGRES_PASSWORD"`
	DbName   string `yaml:"db_name" envconfig:"POSTGRES_DB"`
	SSLMode  string `yaml:"ssl_mode" envconfig:"POSTGRES_SSLMODE"`
}

// ConnectionDetails tunes database/sql pooling. Zero values fall back to
// package defaults.
type ConnectionDetails struct {
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

const (
	defaultMaxOpenConns    = 50
	defaultMaxIdleConns    = 25
	defaultConnMaxLifetime = time.Minute
	healthCheckInterval    = 10 * time.Second
	healthCheckTimeout     = 5 * time.Second
)

// DSN renders the connection settings as a libpq keyword/value string.
func (c Connection) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.DbName +
		" sslmode=" + sslMode
}
