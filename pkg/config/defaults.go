package config

import (
	"fmt"
	"strings"
	"time"
)

// Default values for configuration fields.
const (
	// Server defaults
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 8080
	DefaultReadTimeout     = 30 * time.Second
	DefaultWriteTimeout    = 0 // streaming responses must not be cut off
	DefaultIdleTimeout     = 120 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	// Provider defaults
	DefaultProviderTimeout = 60 * time.Second

	// Routing defaults
	DefaultStrategy = StrategyFirstAvailable

	// Cache defaults
	DefaultCacheBackend   = BackendMemory
	DefaultCacheMaxItems  = 1000
	DefaultCacheTTL       = time.Hour
	DefaultRedisKeyPrefix = "llmux:cache:"
	DefaultSQLitePath     = "data/llmux-cache.db"

	// Logging defaults
	DefaultLogLevel = "info"
)

// Routing strategy names accepted in routing.default_strategy.
const (
	StrategyRoundRobin     = "round-robin"
	StrategyRandom         = "random"
	StrategyFirstAvailable = "first-available"
	StrategyLatency        = "latency" // reserved, resolves to first-available
)

// Cache backend names accepted in cache.backend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
	BackendSQLite = "sqlite"
)

// ApplyDefaults fills zero-valued fields with defaults. It is idempotent.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = DefaultHost
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = DefaultPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.IdleTimeout == 0 {
		cfg.Server.IdleTimeout = DefaultIdleTimeout
	}
	if cfg.Server.ShutdownTimeout == 0 {
		cfg.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	for name, provider := range cfg.Providers {
		if provider.Timeout == 0 {
			provider.Timeout = DefaultProviderTimeout
		}
		provider.BaseURL = strings.TrimSuffix(provider.BaseURL, "/")
		cfg.Providers[name] = provider
	}

	if cfg.Routing.DefaultStrategy == "" {
		cfg.Routing.DefaultStrategy = DefaultStrategy
	}

	if cfg.Cache.Backend == "" {
		cfg.Cache.Backend = DefaultCacheBackend
	}
	if cfg.Cache.Memory.MaxItems == 0 {
		cfg.Cache.Memory.MaxItems = DefaultCacheMaxItems
	}
	if cfg.Cache.Memory.TTL == 0 {
		cfg.Cache.Memory.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Redis.TTL == 0 {
		cfg.Cache.Redis.TTL = DefaultCacheTTL
	}
	if cfg.Cache.Redis.KeyPrefix == "" {
		cfg.Cache.Redis.KeyPrefix = DefaultRedisKeyPrefix
	}
	if cfg.Cache.SQLite.Path == "" {
		cfg.Cache.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Cache.SQLite.TTL == 0 {
		cfg.Cache.SQLite.TTL = DefaultCacheTTL
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
}

// joinHostPort formats a listen address, bracketing IPv6 hosts.
func joinHostPort(host string, port int) string {
	if strings.Contains(host, ":") {
		return fmt.Sprintf("[%s]:%d", host, port)
	}
	return fmt.Sprintf("%s:%d", host, port)
}
