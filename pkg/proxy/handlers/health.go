package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/proxy"
	"github.com/blueberrycongee/llmux/pkg/proxy/types"
)

// providerProbeTimeout bounds each upstream health probe.
const providerProbeTimeout = 10 * time.Second

// HealthHandler serves GET /health for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a liveness handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, types.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyHandler serves GET /ready: 200 once at least one provider is
// registered, 503 before that.
type ReadyHandler struct {
	registry *providers.Registry
}

// NewReadyHandler creates a readiness handler.
func NewReadyHandler(registry *providers.Registry) *ReadyHandler {
	return &ReadyHandler{registry: registry}
}

// ServeHTTP implements http.Handler.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	status := "ready"
	statusCode := http.StatusOK
	if h.registry.Len() == 0 {
		status = "not_ready"
		statusCode = http.StatusServiceUnavailable
	}

	_ = proxy.WriteJSONResponse(w, statusCode, map[string]any{
		"status":    status,
		"providers": h.registry.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ProviderHealthHandler serves GET /health/providers: a live probe of every
// enabled provider's /models endpoint, fanned out concurrently.
type ProviderHealthHandler struct {
	registry *providers.Registry
	client   *providers.Client
	logger   *slog.Logger
}

// NewProviderHealthHandler creates a provider health handler.
func NewProviderHealthHandler(registry *providers.Registry, client *providers.Client, logger *slog.Logger) *ProviderHealthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProviderHealthHandler{registry: registry, client: client, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *ProviderHealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	names := h.registry.Names()
	results := make([]types.ProviderHealth, len(names))

	ctx, cancel := context.WithTimeout(r.Context(), providerProbeTimeout)
	defer cancel()

	var wg sync.WaitGroup
	for i, name := range names {
		d, ok := h.registry.Get(name)
		if !ok {
			continue
		}

		wg.Add(1)
		go func(i int, d *providers.Descriptor) {
			defer wg.Done()
			results[i] = h.probe(ctx, d)
		}(i, d)
	}
	wg.Wait()

	status := "ok"
	for _, result := range results {
		if !result.Healthy {
			status = "degraded"
			break
		}
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, types.ProviderHealthResponse{
		Status:    status,
		Providers: results,
	})
}

// probe checks one provider by listing its models.
func (h *ProviderHealthHandler) probe(ctx context.Context, d *providers.Descriptor) types.ProviderHealth {
	start := time.Now()
	models, err := h.client.ListModels(ctx, d)
	latency := time.Since(start).Milliseconds()

	if err != nil {
		h.logger.WarnContext(ctx, "provider health probe failed",
			"provider", d.Name,
			"error", err,
		)
		return types.ProviderHealth{
			Name:      d.Name,
			Healthy:   false,
			LatencyMS: latency,
			Error:     err.Error(),
		}
	}

	return types.ProviderHealth{
		Name:      d.Name,
		Healthy:   true,
		LatencyMS: latency,
		Models:    models,
	}
}
