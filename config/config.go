// Package config loads querykit's process configuration: the query
// parameter names, the database backend, logging and the HTTP server.
//
// Configuration is read from a YAML file, completed with defaults and then
// overlaid with QUERYKIT_* environment variables:
//
//	cfg, err := config.Load("querykit.yaml", config.EnvPrefix)
package config

import (
	"time"

	"github.com/leandroluk/querykit/composer"
)

// EnvPrefix is the prefix of the environment variables read by ApplyEnv.
const EnvPrefix = "QUERYKIT"

// Config is the root configuration.
type Config struct {
	Query    composer.FieldNames `yaml:"query" mapstructure:"query"`
	Database DatabaseConfig      `yaml:"database" mapstructure:"database"`
	Logging  LoggingConfig       `yaml:"logging" mapstructure:"logging"`
	Server   ServerConfig        `yaml:"server" mapstructure:"server"`
}

// DatabaseConfig selects the backend searches run against.
type DatabaseConfig struct {
	// Driver is one of "postgres", "sqlite" or "mongo".
	Driver string `yaml:"driver" mapstructure:"driver"`
	// DSN is the connection string, or the file path for sqlite.
	DSN string `yaml:"dsn" mapstructure:"dsn"`
	// Name is the database name; required for mongo.
	Name string `yaml:"name" mapstructure:"name"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP search API.
type ServerConfig struct {
	Address         string        `yaml:"address" mapstructure:"address"`
	ReadTimeout     time.Duration `yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout" mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" mapstructure:"shutdown_timeout"`
	// RateLimitPerMinute throttles each client IP; 0 disables throttling.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute" mapstructure:"rate_limit_per_minute"`
	RateLimitBurst     int `yaml:"rate_limit_burst" mapstructure:"rate_limit_burst"`
}

// Defaults returns a configuration with every default applied.
func Defaults() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
