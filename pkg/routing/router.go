package routing

import (
	"context"
	"log/slog"
	"math/rand"

	"github.com/blueberrycongee/llmux/pkg/config"
	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/telemetry/metrics"
)

// Invoker issues chat-completion calls against one provider descriptor.
// *providers.Client satisfies it; tests substitute scripted fakes.
type Invoker interface {
	Complete(ctx context.Context, d *providers.Descriptor, req *providers.ChatRequest) (*providers.ChatResponse, error)
	Stream(ctx context.Context, d *providers.Descriptor, req *providers.ChatRequest) (*providers.StreamReader, error)
}

// Router orders candidate providers per request and attempts them until one
// succeeds. It is safe for concurrent use; all mutable state lives in the
// counter table, which tolerates relaxed update semantics.
type Router struct {
	registry      *providers.Registry
	aliases       *AliasTable
	client        Invoker
	strategy      string
	fallbackChain []string
	counters      *CounterTable
	logger        *slog.Logger
	metrics       *metrics.Collector
}

// New creates a router from configuration. The reserved "latency" strategy
// resolves to first-available at construction.
func New(registry *providers.Registry, aliases *AliasTable, client Invoker, cfg *config.RoutingConfig, logger *slog.Logger, collector *metrics.Collector) *Router {
	if logger == nil {
		logger = slog.Default()
	}

	strategy := cfg.DefaultStrategy
	if strategy == "" || strategy == config.StrategyLatency {
		strategy = config.StrategyFirstAvailable
	}

	return &Router{
		registry:      registry,
		aliases:       aliases,
		client:        client,
		strategy:      strategy,
		fallbackChain: append([]string(nil), cfg.FallbackChain...),
		counters:      NewCounterTable(),
		logger:        logger,
		metrics:       collector,
	}
}

// ResolveModel returns the provider-native model for a friendly model name.
func (r *Router) ResolveModel(model, provider string) string {
	return r.aliases.Resolve(model, provider)
}

// Candidates returns the ordered provider names that will be attempted for
// the request. An explicit request.provider pins the list to that single
// provider when it is enabled, and to nothing when it is not; there is no
// silent fallback past an explicit pin.
func (r *Router) Candidates(req *providers.ChatRequest) []string {
	if req.Provider != "" {
		if _, ok := r.registry.Get(req.Provider); ok {
			return []string{req.Provider}
		}
		return nil
	}

	var base []string
	if len(r.fallbackChain) > 0 {
		for _, name := range r.fallbackChain {
			if _, ok := r.registry.Get(name); ok {
				base = append(base, name)
			}
		}
	} else {
		base = r.registry.Names()
	}

	return r.applyStrategy(base, req.Model)
}

// applyStrategy permutes the candidate list per the configured strategy.
// It never adds or removes members.
func (r *Router) applyStrategy(candidates []string, model string) []string {
	if len(candidates) < 2 {
		return candidates
	}

	switch r.strategy {
	case config.StrategyRandom:
		shuffled := append([]string(nil), candidates...)
		rand.Shuffle(len(shuffled), func(i, j int) {
			shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
		})
		return shuffled

	case config.StrategyRoundRobin:
		// The counter is per-model, so rotation is stable for one model even
		// when several models share the gateway.
		offset := r.counters.Next(model, len(candidates))
		rotated := make([]string, 0, len(candidates))
		rotated = append(rotated, candidates[offset:]...)
		rotated = append(rotated, candidates[:offset]...)
		return rotated

	default: // first-available
		return candidates
	}
}

// Route performs a unary chat completion, attempting candidates in order
// until one succeeds. A provider failure records the error and moves on to
// the next candidate.
func (r *Router) Route(ctx context.Context, req *providers.ChatRequest) (*providers.ChatResponse, error) {
	candidates := r.Candidates(req)
	if len(candidates) == 0 {
		return nil, &NoProvidersError{Model: req.Model, Provider: req.Provider}
	}

	var attempted []string
	var lastErr error

	for _, name := range candidates {
		d, ok := r.registry.Get(name)
		if !ok {
			continue
		}

		native := r.aliases.Resolve(req.Model, name)
		if !d.Supports(native) {
			r.logger.DebugContext(ctx, "skipping provider without model",
				"provider", name,
				"model", req.Model,
				"native_model", native,
			)
			continue
		}

		attempted = append(attempted, name)
		attempt := req.Clone()
		attempt.Model = native

		resp, err := r.client.Complete(ctx, d, attempt)
		if err != nil {
			r.logger.WarnContext(ctx, "provider attempt failed",
				"provider", name,
				"model", req.Model,
				"native_model", native,
				"error", err,
			)
			r.metrics.RecordProviderRequest(name, native, "error")
			lastErr = err
			continue
		}

		r.metrics.RecordProviderRequest(name, native, "success")
		return resp, nil
	}

	if lastErr == nil {
		// Candidates existed but none supported the model.
		return nil, &NoProvidersError{Model: req.Model}
	}
	return nil, &AllProvidersFailedError{Model: req.Model, Attempted: attempted, LastError: lastErr}
}

// RouteStream performs a streaming chat completion. A candidate commits as
// soon as its response header arrives; the returned reader then belongs to
// the caller and no further fallback happens, even if the stream fails
// mid-flight. Failures before the header phase move on to the next
// candidate.
func (r *Router) RouteStream(ctx context.Context, req *providers.ChatRequest) (*providers.StreamReader, error) {
	candidates := r.Candidates(req)
	if len(candidates) == 0 {
		return nil, &NoProvidersError{Model: req.Model, Provider: req.Provider}
	}

	var attempted []string
	var lastErr error

	for _, name := range candidates {
		d, ok := r.registry.Get(name)
		if !ok {
			continue
		}

		native := r.aliases.Resolve(req.Model, name)
		if !d.Supports(native) {
			r.logger.DebugContext(ctx, "skipping provider without model",
				"provider", name,
				"model", req.Model,
				"native_model", native,
			)
			continue
		}

		attempted = append(attempted, name)
		attempt := req.Clone()
		attempt.Model = native

		reader, err := r.client.Stream(ctx, d, attempt)
		if err != nil {
			r.logger.WarnContext(ctx, "provider stream attempt failed",
				"provider", name,
				"model", req.Model,
				"native_model", native,
				"error", err,
			)
			r.metrics.RecordProviderRequest(name, native, "error")
			lastErr = err
			continue
		}

		r.metrics.RecordProviderRequest(name, native, "success")
		return reader, nil
	}

	if lastErr == nil {
		return nil, &NoProvidersError{Model: req.Model}
	}
	return nil, &AllProvidersFailedError{Model: req.Model, Attempted: attempted, LastError: lastErr}
}
