package config

import (
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the llmux gateway.
type Config struct {
	// Server contains HTTP server settings.
	Server ServerConfig `yaml:"server"`

	// Auth contains gateway API key settings. When no keys are configured,
	// authentication is disabled and all requests are accepted.
	Auth AuthConfig `yaml:"auth"`

	// Providers maps provider names to their upstream configuration.
	Providers map[string]ProviderConfig `yaml:"providers"`

	// Routing contains strategy, fallback, and model alias settings.
	Routing RoutingConfig `yaml:"routing"`

	// Cache contains response cache settings.
	Cache CacheConfig `yaml:"cache"`

	// Logging contains log level and format settings.
	Logging LoggingConfig `yaml:"logging"`

	// ProviderOrder preserves the order in which providers appear in the
	// YAML document. Go maps are unordered, and routing candidate order is
	// defined as "config order", so the order is captured at decode time.
	ProviderOrder []string `yaml:"-"`
}

// rawConfig avoids UnmarshalYAML recursion.
type rawConfig Config

// UnmarshalYAML decodes the document and records the provider key order.
func (c *Config) UnmarshalYAML(value *yaml.Node) error {
	if err := value.Decode((*rawConfig)(c)); err != nil {
		return err
	}
	c.ProviderOrder = providerKeyOrder(value)
	return nil
}

// providerKeyOrder walks the top-level mapping and returns the keys of the
// "providers" mapping in document order.
func providerKeyOrder(root *yaml.Node) []string {
	if root.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(root.Content); i += 2 {
		if root.Content[i].Value != "providers" {
			continue
		}
		section := root.Content[i+1]
		if section.Kind != yaml.MappingNode {
			return nil
		}
		order := make([]string, 0, len(section.Content)/2)
		for j := 0; j+1 < len(section.Content); j += 2 {
			order = append(order, section.Content[j].Value)
		}
		return order
	}
	return nil
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind. Default: "0.0.0.0".
	Host string `yaml:"host"`

	// Port is the TCP port to listen on. Default: 8080.
	Port int `yaml:"port"`

	// ReadTimeout bounds reading the request headers and body.
	// Default: 30s.
	ReadTimeout time.Duration `yaml:"read_timeout"`

	// WriteTimeout bounds writing the response. Zero disables it, which
	// streaming responses require. Default: 0.
	WriteTimeout time.Duration `yaml:"write_timeout"`

	// IdleTimeout bounds keep-alive connections. Default: 120s.
	IdleTimeout time.Duration `yaml:"idle_timeout"`

	// ShutdownTimeout bounds graceful shutdown. Default: 30s.
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// MetricsEnabled exposes Prometheus metrics at GET /metrics.
	// Default: true.
	MetricsEnabled *bool `yaml:"metrics_enabled"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	host := s.Host
	if host == "" {
		host = DefaultHost
	}
	port := s.Port
	if port == 0 {
		port = DefaultPort
	}
	return joinHostPort(host, port)
}

// AuthConfig contains gateway API key settings.
//
// Keys are labeled so logs can attribute traffic without exposing the key
// itself. APIKey is shorthand for a single key under the label "default".
type AuthConfig struct {
	// APIKey is a single gateway key, labeled "default".
	APIKey string `yaml:"api_key"`

	// APIKeys maps labels to gateway keys.
	APIKeys map[string]string `yaml:"api_keys"`
}

// Enabled reports whether any gateway key is configured.
func (a AuthConfig) Enabled() bool {
	return a.APIKey != "" || len(a.APIKeys) > 0
}

// ProviderConfig describes one upstream OpenAI-compatible provider.
type ProviderConfig struct {
	// Enabled controls whether the provider participates in routing.
	// Absent means enabled.
	Enabled *bool `yaml:"enabled"`

	// APIKey is the upstream bearer token.
	APIKey string `yaml:"api_key"`

	// BaseURL is the upstream API root, e.g. "https://api.groq.com/openai/v1".
	// A single trailing slash is stripped at load time.
	BaseURL string `yaml:"base_url"`

	// Models lists the native model identifiers the provider serves, in
	// preference order.
	Models []string `yaml:"models"`

	// Timeout bounds each upstream call, headers and body both.
	// Default: 60s.
	Timeout time.Duration `yaml:"timeout"`

	// ExtraHeaders are added to every upstream request, after the standard
	// headers, so they can deliberately override them (OpenRouter
	// attribution headers, for example).
	ExtraHeaders map[string]string `yaml:"extra_headers"`

	// MaxRetries is parsed for compatibility but routing never re-invokes a
	// failed provider; retries happen across providers instead.
	MaxRetries int `yaml:"max_retries"`
}

// IsEnabled reports whether the provider participates in routing.
func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// RoutingConfig contains strategy, fallback, and alias settings.
type RoutingConfig struct {
	// DefaultStrategy selects candidate ordering: "round-robin", "random",
	// "first-available", or "latency" (reserved; behaves as
	// first-available). Default: "first-available".
	DefaultStrategy string `yaml:"default_strategy"`

	// FallbackChain, when non-empty, replaces config order as the candidate
	// list for requests without an explicit provider.
	FallbackChain []string `yaml:"fallback_chain"`

	// ModelAliases maps friendly model names to per-provider native names:
	// alias -> provider -> native model id.
	ModelAliases map[string]map[string]string `yaml:"model_aliases"`
}

// CacheConfig contains response cache settings.
type CacheConfig struct {
	// Enabled turns the response cache on. Default: false.
	Enabled bool `yaml:"enabled"`

	// Backend selects the storage backend: "memory", "redis", or "sqlite".
	// Default: "memory".
	Backend string `yaml:"backend"`

	// Memory configures the in-process LRU backend.
	Memory MemoryCacheConfig `yaml:"memory"`

	// Redis configures the remote Redis backend.
	Redis RedisCacheConfig `yaml:"redis"`

	// SQLite configures the persistent single-node backend.
	SQLite SQLiteCacheConfig `yaml:"sqlite"`
}

// MemoryCacheConfig configures the in-process LRU cache backend.
type MemoryCacheConfig struct {
	// MaxItems caps the number of cached responses. Default: 1000.
	MaxItems int `yaml:"max_items"`

	// TTL is the per-entry lifetime. Default: 1h.
	TTL time.Duration `yaml:"ttl"`
}

// RedisCacheConfig configures the Redis cache backend.
type RedisCacheConfig struct {
	// URL is a redis connection URL, e.g. "redis://localhost:6379/0".
	URL string `yaml:"url"`

	// TTL is the per-entry lifetime. Default: 1h.
	TTL time.Duration `yaml:"ttl"`

	// KeyPrefix namespaces llmux keys in a shared Redis.
	// Default: "llmux:cache:".
	KeyPrefix string `yaml:"key_prefix"`
}

// SQLiteCacheConfig configures the SQLite cache backend.
type SQLiteCacheConfig struct {
	// Path is the database file path. Default: "data/llmux-cache.db".
	Path string `yaml:"path"`

	// TTL is the per-entry lifetime. Default: 1h.
	TTL time.Duration `yaml:"ttl"`
}

// LoggingConfig contains log settings.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error". Default: "info".
	Level string `yaml:"level"`

	// Pretty switches from JSON to human-readable text output.
	Pretty bool `yaml:"pretty"`
}

// MetricsOn reports whether the metrics endpoint is enabled.
func (s ServerConfig) MetricsOn() bool {
	return s.MetricsEnabled == nil || *s.MetricsEnabled
}
