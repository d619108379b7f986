package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	defaultReadTimeout     = 15 * time.Second
	defaultWriteTimeout    = 30 * time.Second
	defaultShutdownTimeout = 10 * time.Second
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "database.driver").
	Field   string
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError collects every FieldError found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d errors:\n", len(e.Errors)))
	for _, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  - %s\n", err.Error()))
	}
	return sb.String()
}

// Validate returns a ValidationError listing every invalid field, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	if err := cfg.Query.Validate(); err != nil {
		errs = append(errs, FieldError{Field: "query", Message: err.Error()})
	}

	switch cfg.Database.Driver {
	case "postgres", "sqlite":
	case "mongo":
		if cfg.Database.Name == "" {
			errs = append(errs, FieldError{Field: "database.name", Message: "required for the mongo driver"})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "database.driver",
			Message: fmt.Sprintf("unknown driver %q (want postgres, sqlite or mongo)", cfg.Database.Driver),
		})
	}
	if cfg.Database.DSN == "" {
		errs = append(errs, FieldError{Field: "database.dsn", Message: "must not be empty"})
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{Field: "logging.level", Message: fmt.Sprintf("unknown level %q", cfg.Logging.Level)})
	}
	switch cfg.Logging.Format {
	case "json", "text":
	default:
		errs = append(errs, FieldError{Field: "logging.format", Message: fmt.Sprintf("unknown format %q", cfg.Logging.Format)})
	}

	if cfg.Server.Address == "" {
		errs = append(errs, FieldError{Field: "server.address", Message: "must not be empty"})
	}
	if cfg.Server.ReadTimeout < 0 || cfg.Server.WriteTimeout < 0 || cfg.Server.ShutdownTimeout < 0 {
		errs = append(errs, FieldError{Field: "server", Message: "timeouts must not be negative"})
	}
	if cfg.Server.RateLimitPerMinute < 0 || cfg.Server.RateLimitBurst < 0 {
		errs = append(errs, FieldError{Field: "server", Message: "rate limits must not be negative"})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// IsValidationError reports whether err carries a ValidationError.
func IsValidationError(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}
