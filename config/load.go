package config

import (
	"fmt"
	"os"
	"strings"

	"dario.cat/mergo"
	"github.com/leandroluk/querykit/composer"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// envKeys lists the dotted keys ApplyEnv looks up. A key maps to an
// environment variable by upper-casing it and replacing dots with
// underscores: server.read_timeout is QUERYKIT_SERVER_READ_TIMEOUT.
var envKeys = []string{
	"query.sort_by",
	"query.sort_direction",
	"query.page_from",
	"query.page_size",
	"query.details",
	"query.props",
	"query.filter",
	"query.filter_exclude_id",
	"query.bypass",
	"query.sort_by_delimiter",
	"query.attributes_delimiter",
	"query.association_delimiter",
	"query.default_sort_direction",
	"query.default_page_size",
	"database.driver",
	"database.dsn",
	"database.name",
	"logging.level",
	"logging.format",
	"server.address",
	"server.read_timeout",
	"server.write_timeout",
	"server.shutdown_timeout",
	"server.rate_limit_per_minute",
	"server.rate_limit_burst",
}

// Load reads the YAML file at path, applies defaults and environment
// overrides, then validates. An empty path starts from defaults.
func Load(path, envPrefix string) (*Config, error) {
	cfg := Defaults()
	if path != "" {
		loaded, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := ApplyEnv(cfg, envPrefix); err != nil {
		return nil, err
	}
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// LoadFile loads configuration from a YAML file, applies defaults and
// validates it. Environment variables are not consulted.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// ApplyDefaults fills every unset field.
func ApplyDefaults(cfg *Config) {
	// mergo only fails on mismatched types
	_ = mergo.Merge(&cfg.Query, composer.DefaultFieldNames())
	_ = mergo.Merge(cfg, Config{
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "querykit.db",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Address:         ":8080",
			ReadTimeout:     defaultReadTimeout,
			WriteTimeout:    defaultWriteTimeout,
			ShutdownTimeout: defaultShutdownTimeout,
		},
	})
}

// ApplyEnv overlays environment variables named PREFIX_SECTION_FIELD onto
// cfg. Variables that are unset leave the current value alone.
func ApplyEnv(cfg *Config, prefix string) error {
	v := viper.New()
	v.SetEnvPrefix(strings.TrimSuffix(prefix, "_"))
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("failed to bind environment key %q: %w", key, err)
		}
	}
	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}
	return nil
}
