package types

// ModelList is the OpenAI-compatible GET /v1/models payload.
type ModelList struct {
	// Object is always "list".
	Object string `json:"object"`

	// Data lists the models available through the gateway.
	Data []Model `json:"data"`
}

// Model is one entry of the model list: a friendly alias or a native
// upstream model identifier.
type Model struct {
	// ID is the model identifier clients put in requests.
	ID string `json:"id"`

	// Object is always "model".
	Object string `json:"object"`

	// Created is a Unix timestamp. The gateway stamps process start time;
	// upstream creation dates are not exposed.
	Created int64 `json:"created"`

	// OwnedBy names the provider serving the model, or "llmux" for an
	// alias served by several.
	OwnedBy string `json:"owned_by"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
}

// ProviderHealth is one provider's probe result in GET /health/providers.
type ProviderHealth struct {
	// Name is the configured provider name.
	Name string `json:"name"`

	// Healthy is true when the probe returned a usable model list.
	Healthy bool `json:"healthy"`

	// LatencyMS is the probe round-trip in milliseconds.
	LatencyMS int64 `json:"latency_ms"`

	// Models is the upstream model list, when the probe succeeded.
	Models []string `json:"models,omitempty"`

	// Error describes the probe failure, when it failed.
	Error string `json:"error,omitempty"`
}

// ProviderHealthResponse is the GET /health/providers payload.
type ProviderHealthResponse struct {
	// Status is "ok" when every provider is healthy, "degraded" otherwise.
	Status string `json:"status"`

	// Providers lists the per-provider probe results in config order.
	Providers []ProviderHealth `json:"providers"`
}
