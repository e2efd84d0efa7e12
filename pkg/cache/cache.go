package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/blueberrycongee/llmux/pkg/config"
	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/telemetry/metrics"
)

// Backend is the key/value contract a cache store must satisfy. Values are
// opaque bytes; the backend owns expiry. Implementations must tolerate
// concurrent Get and Set on the same key.
type Backend interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores value under key for ttl.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Clear removes every entry this backend owns.
	Clear(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// NewBackend constructs the configured cache backend.
func NewBackend(cfg *config.CacheConfig) (Backend, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return NewMemoryBackend(cfg.Memory.MaxItems), nil
	case config.BackendRedis:
		return NewRedisBackend(cfg.Redis.URL, cfg.Redis.KeyPrefix)
	case config.BackendSQLite:
		return NewSQLiteBackend(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown cache backend %q", cfg.Backend)
	}
}

// ResponseCache applies the gateway's caching policy in front of a Backend.
// It decides when a request may be cached at all, computes the fingerprint,
// and serializes responses. Backend failures are logged and swallowed: a
// cache problem must never fail a request.
type ResponseCache struct {
	backend Backend
	enabled bool
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Collector
}

// NewResponseCache creates the policy wrapper. The ttl is the configured
// per-entry lifetime for the active backend.
func NewResponseCache(cfg *config.CacheConfig, backend Backend, logger *slog.Logger, collector *metrics.Collector) *ResponseCache {
	if logger == nil {
		logger = slog.Default()
	}

	ttl := config.DefaultCacheTTL
	switch cfg.Backend {
	case config.BackendMemory:
		ttl = cfg.Memory.TTL
	case config.BackendRedis:
		ttl = cfg.Redis.TTL
	case config.BackendSQLite:
		ttl = cfg.SQLite.TTL
	}

	return &ResponseCache{
		backend: backend,
		enabled: cfg.Enabled,
		ttl:     ttl,
		logger:  logger,
		metrics: collector,
	}
}

// cacheable reports whether the request may use the cache at all. Streaming
// requests are never cached: a cached stream would have to be replayed as a
// fake stream, and the entry would race with the live one.
func (c *ResponseCache) cacheable(req *providers.ChatRequest) bool {
	return c.enabled && c.backend != nil && !req.Stream && req.CacheAllowed()
}

// Get looks the request up in the cache. A hit returns a response stamped
// cached=true; everything else about the stored response is returned
// verbatim.
func (c *ResponseCache) Get(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, bool) {
	if !c.cacheable(req) {
		return nil, false
	}

	key := Key(req)
	data, ok, err := c.backend.Get(ctx, key)
	if err != nil {
		c.logger.WarnContext(ctx, "cache get failed", "key", key, "error", err)
		c.metrics.RecordCacheOperation("get", "error")
		return nil, false
	}
	if !ok {
		c.metrics.RecordCacheOperation("get", "miss")
		return nil, false
	}

	var resp providers.ChatResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		c.logger.WarnContext(ctx, "cache entry corrupt, dropping", "key", key, "error", err)
		_ = c.backend.Delete(ctx, key)
		c.metrics.RecordCacheOperation("get", "error")
		return nil, false
	}

	resp.Cached = true
	c.metrics.RecordCacheOperation("get", "hit")
	return &resp, true
}

// Set stores the response under the request's fingerprint with the
// configured TTL. No-op for requests the policy excludes.
func (c *ResponseCache) Set(ctx context.Context, req *providers.ChatRequest, resp *providers.ChatResponse) {
	if !c.cacheable(req) {
		return
	}

	data, err := json.Marshal(resp)
	if err != nil {
		c.logger.WarnContext(ctx, "cache encode failed", "error", err)
		return
	}

	key := Key(req)
	if err := c.backend.Set(ctx, key, data, c.ttl); err != nil {
		c.logger.WarnContext(ctx, "cache set failed", "key", key, "error", err)
		c.metrics.RecordCacheOperation("set", "error")
		return
	}
	c.metrics.RecordCacheOperation("set", "stored")
}

// Close releases the underlying backend.
func (c *ResponseCache) Close() error {
	if c.backend == nil {
		return nil
	}
	return c.backend.Close()
}
