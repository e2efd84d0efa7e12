package config

import (
	"fmt"
	"net/url"
	"strings"
)

// FieldError is a validation error for a single configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "providers.groq.base_url").
	Field string

	// Message is a human-readable error message.
	Message string
}

// Error returns the error message for this field error.
func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates all field errors found in a configuration.
type ValidationError struct {
	Errors []FieldError
}

// Error returns a formatted string containing all validation errors.
func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError collecting
// every failure, or nil when the configuration is valid.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateServer(&cfg.Server)...)
	errs = append(errs, validateProviders(cfg.Providers)...)
	errs = append(errs, validateRouting(&cfg.Routing, cfg.Providers)...)
	errs = append(errs, validateCache(&cfg.Cache)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateServer(cfg *ServerConfig) []FieldError {
	var errs []FieldError

	if cfg.Port < 1 || cfg.Port > 65535 {
		errs = append(errs, FieldError{
			Field:   "server.port",
			Message: fmt.Sprintf("port %d outside valid range 1-65535", cfg.Port),
		})
	}
	if cfg.ReadTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.read_timeout",
			Message: "read timeout must not be negative",
		})
	}
	if cfg.WriteTimeout < 0 {
		errs = append(errs, FieldError{
			Field:   "server.write_timeout",
			Message: "write timeout must not be negative",
		})
	}

	return errs
}

func validateProviders(providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	for name, p := range providers {
		if !p.IsEnabled() {
			continue
		}
		field := func(f string) string { return fmt.Sprintf("providers.%s.%s", name, f) }

		if p.BaseURL == "" {
			errs = append(errs, FieldError{Field: field("base_url"), Message: "base URL is required"})
		} else if u, err := url.Parse(p.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, FieldError{
				Field:   field("base_url"),
				Message: fmt.Sprintf("invalid base URL %q", p.BaseURL),
			})
		}
		if len(p.Models) == 0 {
			errs = append(errs, FieldError{
				Field:   field("models"),
				Message: "at least one model is required for an enabled provider",
			})
		}
		for i, m := range p.Models {
			if m == "" {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("providers.%s.models[%d]", name, i),
					Message: "model id must not be empty",
				})
			}
		}
		if p.Timeout < 0 {
			errs = append(errs, FieldError{Field: field("timeout"), Message: "timeout must not be negative"})
		}
		if p.MaxRetries < 0 {
			errs = append(errs, FieldError{Field: field("max_retries"), Message: "max retries must not be negative"})
		}
	}

	return errs
}

func validateRouting(cfg *RoutingConfig, providers map[string]ProviderConfig) []FieldError {
	var errs []FieldError

	switch cfg.DefaultStrategy {
	case StrategyRoundRobin, StrategyRandom, StrategyFirstAvailable, StrategyLatency:
	default:
		errs = append(errs, FieldError{
			Field: "routing.default_strategy",
			Message: fmt.Sprintf("unknown strategy %q (valid: %s, %s, %s, %s)",
				cfg.DefaultStrategy, StrategyRoundRobin, StrategyRandom,
				StrategyFirstAvailable, StrategyLatency),
		})
	}

	for i, name := range cfg.FallbackChain {
		if _, ok := providers[name]; !ok {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("routing.fallback_chain[%d]", i),
				Message: fmt.Sprintf("provider %q is not configured", name),
			})
		}
	}

	for alias, targets := range cfg.ModelAliases {
		for provider := range targets {
			if _, ok := providers[provider]; !ok {
				errs = append(errs, FieldError{
					Field:   fmt.Sprintf("routing.model_aliases.%s.%s", alias, provider),
					Message: fmt.Sprintf("provider %q is not configured", provider),
				})
			}
		}
	}

	return errs
}

func validateCache(cfg *CacheConfig) []FieldError {
	var errs []FieldError

	switch cfg.Backend {
	case BackendMemory, BackendRedis, BackendSQLite:
	default:
		errs = append(errs, FieldError{
			Field: "cache.backend",
			Message: fmt.Sprintf("unknown backend %q (valid: %s, %s, %s)",
				cfg.Backend, BackendMemory, BackendRedis, BackendSQLite),
		})
	}

	if cfg.Enabled && cfg.Backend == BackendRedis && cfg.Redis.URL == "" {
		errs = append(errs, FieldError{
			Field:   "cache.redis.url",
			Message: "redis URL is required when the redis backend is enabled",
		})
	}
	if cfg.Memory.MaxItems < 0 {
		errs = append(errs, FieldError{
			Field:   "cache.memory.max_items",
			Message: "max items must not be negative",
		})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	switch strings.ToLower(cfg.Level) {
	case "debug", "info", "warn", "error":
		return nil
	}
	return []FieldError{{
		Field:   "logging.level",
		Message: fmt.Sprintf("unknown level %q (valid: debug, info, warn, error)", cfg.Level),
	}}
}
