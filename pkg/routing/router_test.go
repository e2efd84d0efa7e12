package routing_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/blueberrycongee/llmux/pkg/config"
	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/routing"
)

// scriptedInvoker is a test double for the provider client. Providers named
// in fail return their scripted error; everything else succeeds.
type scriptedInvoker struct {
	mu    sync.Mutex
	calls []string // "provider:model" per attempt, in order
	fail  map[string]error
}

func (s *scriptedInvoker) record(d *providers.Descriptor, req *providers.ChatRequest) error {
	s.mu.Lock()
	s.calls = append(s.calls, d.Name+":"+req.Model)
	s.mu.Unlock()
	return s.fail[d.Name]
}

func (s *scriptedInvoker) Complete(_ context.Context, d *providers.Descriptor, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	if err := s.record(d, req); err != nil {
		return nil, err
	}
	return &providers.ChatResponse{
		ID:       "chatcmpl-test",
		Object:   "chat.completion",
		Model:    req.Model,
		Provider: d.Name,
		Choices: []providers.Choice{{
			Message:      providers.Message{Role: providers.RoleAssistant, Content: "ok"},
			FinishReason: providers.FinishReasonStop,
		}},
	}, nil
}

func (s *scriptedInvoker) Stream(_ context.Context, d *providers.Descriptor, req *providers.ChatRequest) (*providers.StreamReader, error) {
	if err := s.record(d, req); err != nil {
		return nil, err
	}
	return nil, nil
}

func boolp(b bool) *bool { return &b }

func testConfig() *config.Config {
	return &config.Config{
		Providers: map[string]config.ProviderConfig{
			"groq": {
				APIKey:  "gsk-test",
				BaseURL: "https://groq.test/v1",
				Models:  []string{"llama-groq"},
				Timeout: 10 * time.Second,
			},
			"together": {
				APIKey:  "tk-test",
				BaseURL: "https://together.test/v1",
				Models:  []string{"llama-together"},
				Timeout: 10 * time.Second,
			},
			"cerebras": {
				Enabled: boolp(false),
				APIKey:  "csk-test",
				BaseURL: "https://cerebras.test/v1",
				Models:  []string{"llama-cerebras"},
				Timeout: 10 * time.Second,
			},
		},
		ProviderOrder: []string{"groq", "together", "cerebras"},
		Routing: config.RoutingConfig{
			DefaultStrategy: config.StrategyFirstAvailable,
			ModelAliases: map[string]map[string]string{
				"llama": {
					"groq":     "llama-groq",
					"together": "llama-together",
				},
			},
		},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, invoker routing.Invoker) *routing.Router {
	t.Helper()
	registry := providers.NewRegistry(cfg)
	aliases := routing.NewAliasTable(cfg.Routing.ModelAliases)
	return routing.New(registry, aliases, invoker, &cfg.Routing, nil, nil)
}

func TestRouteFirstAvailable(t *testing.T) {
	invoker := &scriptedInvoker{}
	router := newTestRouter(t, testConfig(), invoker)

	resp, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama"})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if resp.Provider != "groq" {
		t.Errorf("expected first provider groq, got %q", resp.Provider)
	}
	if len(invoker.calls) != 1 || invoker.calls[0] != "groq:llama-groq" {
		t.Errorf("unexpected attempts: %v", invoker.calls)
	}
}

func TestRouteFallsBackOnFailure(t *testing.T) {
	invoker := &scriptedInvoker{fail: map[string]error{
		"groq": &providers.ProviderError{Provider: "groq", StatusCode: 500, Message: "boom"},
	}}
	router := newTestRouter(t, testConfig(), invoker)

	resp, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama"})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if resp.Provider != "together" {
		t.Errorf("expected fallback to together, got %q", resp.Provider)
	}
	want := []string{"groq:llama-groq", "together:llama-together"}
	if len(invoker.calls) != 2 || invoker.calls[0] != want[0] || invoker.calls[1] != want[1] {
		t.Errorf("unexpected attempts: %v", invoker.calls)
	}
}

func TestRouteAllProvidersFail(t *testing.T) {
	invoker := &scriptedInvoker{fail: map[string]error{
		"groq":     &providers.ProviderError{Provider: "groq", StatusCode: 500, Message: "boom"},
		"together": &providers.RateLimitError{Provider: "together", Message: "slow down"},
	}}
	router := newTestRouter(t, testConfig(), invoker)

	_, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama"})
	if err == nil {
		t.Fatal("expected an error")
	}

	var allFailed *routing.AllProvidersFailedError
	if !errors.As(err, &allFailed) {
		t.Fatalf("expected AllProvidersFailedError, got %T: %v", err, err)
	}
	if !errors.Is(err, routing.ErrAllProvidersFailed) {
		t.Error("errors.Is(ErrAllProvidersFailed) should hold")
	}
	if len(allFailed.Attempted) != 2 {
		t.Errorf("expected 2 attempted providers, got %v", allFailed.Attempted)
	}
	if !strings.Contains(err.Error(), "Last error:") {
		t.Errorf("error message should carry the last error: %q", err.Error())
	}
	if !strings.Contains(err.Error(), "slow down") {
		t.Errorf("error message should name the final failure: %q", err.Error())
	}

	// The last attempted provider's error is unwrappable.
	var rlErr *providers.RateLimitError
	if !errors.As(err, &rlErr) {
		t.Error("last provider error should be reachable via errors.As")
	}
}

func TestRouteExplicitProviderPin(t *testing.T) {
	invoker := &scriptedInvoker{}
	router := newTestRouter(t, testConfig(), invoker)

	resp, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama", Provider: "together"})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if resp.Provider != "together" {
		t.Errorf("expected pinned provider together, got %q", resp.Provider)
	}
	if len(invoker.calls) != 1 {
		t.Errorf("pin should produce exactly one attempt, got %v", invoker.calls)
	}
}

func TestRoutePinNoFallback(t *testing.T) {
	invoker := &scriptedInvoker{fail: map[string]error{
		"groq": &providers.ProviderError{Provider: "groq", StatusCode: 500, Message: "boom"},
	}}
	router := newTestRouter(t, testConfig(), invoker)

	_, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama", Provider: "groq"})
	if err == nil {
		t.Fatal("expected an error: a pinned request never falls back")
	}
	if len(invoker.calls) != 1 {
		t.Errorf("pinned request should attempt only its provider, got %v", invoker.calls)
	}
}

func TestRoutePinDisabledProvider(t *testing.T) {
	invoker := &scriptedInvoker{}
	router := newTestRouter(t, testConfig(), invoker)

	_, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama", Provider: "cerebras"})

	var noProviders *routing.NoProvidersError
	if !errors.As(err, &noProviders) {
		t.Fatalf("expected NoProvidersError, got %T: %v", err, err)
	}
	if !errors.Is(err, routing.ErrNoProvidersAvailable) {
		t.Error("errors.Is(ErrNoProvidersAvailable) should hold")
	}
	if !strings.Contains(err.Error(), "cerebras") {
		t.Errorf("error should name the pinned provider: %q", err.Error())
	}
	if len(invoker.calls) != 0 {
		t.Errorf("no attempts expected, got %v", invoker.calls)
	}
}

func TestRouteSkipsProvidersWithoutModel(t *testing.T) {
	invoker := &scriptedInvoker{}
	router := newTestRouter(t, testConfig(), invoker)

	// Native together model: groq does not serve it and must be skipped.
	resp, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama-together"})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if resp.Provider != "together" {
		t.Errorf("expected together, got %q", resp.Provider)
	}
	if len(invoker.calls) != 1 {
		t.Errorf("groq should have been skipped without an attempt, got %v", invoker.calls)
	}
}

func TestRouteUnknownModel(t *testing.T) {
	invoker := &scriptedInvoker{}
	router := newTestRouter(t, testConfig(), invoker)

	_, err := router.Route(context.Background(), &providers.ChatRequest{Model: "gpt-oss-unknown"})

	var noProviders *routing.NoProvidersError
	if !errors.As(err, &noProviders) {
		t.Fatalf("expected NoProvidersError, got %T: %v", err, err)
	}
	if len(invoker.calls) != 0 {
		t.Errorf("no attempts expected for an unserved model, got %v", invoker.calls)
	}
}

func TestRouteFallbackChainOrder(t *testing.T) {
	cfg := testConfig()
	cfg.Routing.FallbackChain = []string{"together", "groq"}

	invoker := &scriptedInvoker{}
	router := newTestRouter(t, cfg, invoker)

	resp, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama"})
	if err != nil {
		t.Fatalf("Route failed: %v", err)
	}
	if resp.Provider != "together" {
		t.Errorf("fallback chain should put together first, got %q", resp.Provider)
	}
}

func TestRoundRobinRotation(t *testing.T) {
	cfg := testConfig()
	cfg.Routing.DefaultStrategy = config.StrategyRoundRobin

	invoker := &scriptedInvoker{}
	router := newTestRouter(t, cfg, invoker)

	var served []string
	for i := 0; i < 4; i++ {
		resp, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama"})
		if err != nil {
			t.Fatalf("Route %d failed: %v", i, err)
		}
		served = append(served, resp.Provider)
	}

	want := []string{"groq", "together", "groq", "together"}
	for i := range want {
		if served[i] != want[i] {
			t.Fatalf("rotation broken: got %v, want %v", served, want)
		}
	}
}

func TestRandomStrategyPreservesMembership(t *testing.T) {
	cfg := testConfig()
	cfg.Routing.DefaultStrategy = config.StrategyRandom

	router := newTestRouter(t, cfg, &scriptedInvoker{})

	for i := 0; i < 10; i++ {
		got := router.Candidates(&providers.ChatRequest{Model: "llama"})
		sort.Strings(got)
		if len(got) != 2 || got[0] != "groq" || got[1] != "together" {
			t.Fatalf("random strategy changed candidate membership: %v", got)
		}
	}
}

func TestLatencyStrategyResolvesToFirstAvailable(t *testing.T) {
	cfg := testConfig()
	cfg.Routing.DefaultStrategy = config.StrategyLatency

	invoker := &scriptedInvoker{}
	router := newTestRouter(t, cfg, invoker)

	for i := 0; i < 3; i++ {
		resp, err := router.Route(context.Background(), &providers.ChatRequest{Model: "llama"})
		if err != nil {
			t.Fatalf("Route failed: %v", err)
		}
		if resp.Provider != "groq" {
			t.Fatalf("latency strategy should behave as first-available, got %q", resp.Provider)
		}
	}
}

func TestRouteStreamFallsBackBeforeCommit(t *testing.T) {
	invoker := &scriptedInvoker{fail: map[string]error{
		"groq": &providers.ProviderError{Provider: "groq", StatusCode: 503, Message: "unavailable"},
	}}
	router := newTestRouter(t, testConfig(), invoker)

	_, err := router.RouteStream(context.Background(), &providers.ChatRequest{Model: "llama", Stream: true})
	if err != nil {
		t.Fatalf("RouteStream failed: %v", err)
	}
	want := []string{"groq:llama-groq", "together:llama-together"}
	if len(invoker.calls) != 2 || invoker.calls[0] != want[0] || invoker.calls[1] != want[1] {
		t.Errorf("unexpected attempts: %v", invoker.calls)
	}
}

func TestResolveModel(t *testing.T) {
	router := newTestRouter(t, testConfig(), &scriptedInvoker{})

	if got := router.ResolveModel("llama", "groq"); got != "llama-groq" {
		t.Errorf("alias resolution failed: %q", got)
	}
	if got := router.ResolveModel("llama-groq", "groq"); got != "llama-groq" {
		t.Errorf("native name should pass through: %q", got)
	}
	if got := router.ResolveModel("llama", "openrouter"); got != "llama" {
		t.Errorf("unmapped provider should pass through: %q", got)
	}
}
