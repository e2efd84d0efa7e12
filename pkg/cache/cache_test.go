package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/blueberrycongee/llmux/pkg/config"
	"github.com/blueberrycongee/llmux/pkg/providers"
)

// spyBackend records operations and can be scripted to fail.
type spyBackend struct {
	inner      *MemoryBackend
	gets, sets int
	getErr     error
	setErr     error
}

func (s *spyBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.gets++
	if s.getErr != nil {
		return nil, false, s.getErr
	}
	return s.inner.Get(ctx, key)
}

func (s *spyBackend) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	s.sets++
	if s.setErr != nil {
		return s.setErr
	}
	return s.inner.Set(ctx, key, value, ttl)
}

func (s *spyBackend) Delete(ctx context.Context, key string) error { return s.inner.Delete(ctx, key) }
func (s *spyBackend) Clear(ctx context.Context) error              { return s.inner.Clear(ctx) }
func (s *spyBackend) Close() error                                 { return s.inner.Close() }

func newSpyBackend() *spyBackend {
	return &spyBackend{inner: NewMemoryBackend(100)}
}

func enabledCacheConfig() *config.CacheConfig {
	return &config.CacheConfig{
		Enabled: true,
		Backend: config.BackendMemory,
		Memory:  config.MemoryCacheConfig{MaxItems: 100, TTL: time.Hour},
	}
}

func cachedResponse() *providers.ChatResponse {
	return &providers.ChatResponse{
		ID:       "chatcmpl-1",
		Object:   "chat.completion",
		Model:    "llama-70b",
		Provider: "groq",
		Choices: []providers.Choice{{
			Message:      providers.Message{Role: "assistant", Content: "cached answer"},
			FinishReason: "stop",
		}},
	}
}

func TestResponseCacheHitStampsCached(t *testing.T) {
	backend := newSpyBackend()
	rc := NewResponseCache(enabledCacheConfig(), backend, nil, nil)
	ctx := context.Background()
	req := keyRequest()

	if _, ok := rc.Get(ctx, req); ok {
		t.Fatal("expected a miss on an empty cache")
	}

	rc.Set(ctx, req, cachedResponse())

	got, ok := rc.Get(ctx, req)
	if !ok {
		t.Fatal("expected a hit after Set")
	}
	if !got.Cached {
		t.Error("hit must be stamped cached=true")
	}
	if got.Provider != "groq" {
		t.Errorf("stored provider must survive: %q", got.Provider)
	}
	if got.Choices[0].Message.Content != "cached answer" {
		t.Errorf("unexpected content: %q", got.Choices[0].Message.Content)
	}
}

func TestResponseCacheDisabled(t *testing.T) {
	backend := newSpyBackend()
	cfg := enabledCacheConfig()
	cfg.Enabled = false
	rc := NewResponseCache(cfg, backend, nil, nil)
	ctx := context.Background()
	req := keyRequest()

	rc.Set(ctx, req, cachedResponse())
	if _, ok := rc.Get(ctx, req); ok {
		t.Error("disabled cache must never hit")
	}
	if backend.gets != 0 || backend.sets != 0 {
		t.Error("disabled cache must not touch the backend")
	}
}

func TestResponseCacheStreamingNeverCached(t *testing.T) {
	backend := newSpyBackend()
	rc := NewResponseCache(enabledCacheConfig(), backend, nil, nil)
	ctx := context.Background()

	req := keyRequest()
	req.Stream = true

	rc.Set(ctx, req, cachedResponse())
	if _, ok := rc.Get(ctx, req); ok {
		t.Error("streaming requests must bypass the cache")
	}
	if backend.gets != 0 || backend.sets != 0 {
		t.Error("streaming requests must not touch the backend")
	}
}

func TestResponseCacheOptOut(t *testing.T) {
	backend := newSpyBackend()
	rc := NewResponseCache(enabledCacheConfig(), backend, nil, nil)
	ctx := context.Background()

	req := keyRequest()
	no := false
	req.Cache = &no

	rc.Set(ctx, req, cachedResponse())
	if backend.sets != 0 {
		t.Error("cache:false must skip the backend entirely")
	}
}

func TestResponseCacheBackendErrorsSwallowed(t *testing.T) {
	backend := newSpyBackend()
	backend.getErr = errors.New("redis gone")
	backend.setErr = errors.New("redis gone")
	rc := NewResponseCache(enabledCacheConfig(), backend, nil, nil)
	ctx := context.Background()
	req := keyRequest()

	// Neither call may panic or surface the backend error.
	rc.Set(ctx, req, cachedResponse())
	if _, ok := rc.Get(ctx, req); ok {
		t.Error("backend failure must read as a miss")
	}
}

func TestResponseCacheCorruptEntryDropped(t *testing.T) {
	backend := newSpyBackend()
	rc := NewResponseCache(enabledCacheConfig(), backend, nil, nil)
	ctx := context.Background()
	req := keyRequest()

	if err := backend.inner.Set(ctx, Key(req), []byte("{corrupt"), time.Hour); err != nil {
		t.Fatalf("seeding corrupt entry failed: %v", err)
	}

	if _, ok := rc.Get(ctx, req); ok {
		t.Error("corrupt entry must read as a miss")
	}
	if _, ok, _ := backend.inner.Get(ctx, Key(req)); ok {
		t.Error("corrupt entry should be deleted")
	}
}

func TestNewBackendSelection(t *testing.T) {
	memory, err := NewBackend(&config.CacheConfig{Backend: config.BackendMemory})
	if err != nil {
		t.Fatalf("memory backend failed: %v", err)
	}
	_ = memory.Close()
	if _, ok := memory.(*MemoryBackend); !ok {
		t.Errorf("expected *MemoryBackend, got %T", memory)
	}

	if _, err := NewBackend(&config.CacheConfig{Backend: "bogus"}); err == nil {
		t.Error("unknown backend name should error")
	}
}
