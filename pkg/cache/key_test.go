package cache

import (
	"testing"

	"github.com/blueberrycongee/llmux/pkg/providers"
)

func keyRequest() *providers.ChatRequest {
	temp := 0.7
	return &providers.ChatRequest{
		Model: "llama-70b",
		Messages: []providers.Message{
			{Role: "system", Content: "be brief"},
			{Role: "user", Content: "hello"},
		},
		Temperature: &temp,
	}
}

func TestKeyDeterministic(t *testing.T) {
	a := Key(keyRequest())
	b := Key(keyRequest())

	if a == "" {
		t.Fatal("key must not be empty")
	}
	if len(a) != 64 {
		t.Errorf("expected a sha-256 hex digest (64 chars), got %d", len(a))
	}
	if a != b {
		t.Errorf("identical requests must hash identically: %s != %s", a, b)
	}
}

func TestKeyIgnoresNonSemanticFields(t *testing.T) {
	base := Key(keyRequest())

	// provider, cache, stream, and user never influence the fingerprint: a
	// cached answer is valid regardless of which upstream would have served
	// the miss.
	mutations := map[string]func(*providers.ChatRequest){
		"provider": func(r *providers.ChatRequest) { r.Provider = "groq" },
		"cache":    func(r *providers.ChatRequest) { v := true; r.Cache = &v },
		"stream":   func(r *providers.ChatRequest) { r.Stream = true },
		"user":     func(r *providers.ChatRequest) { r.User = "tenant-1" },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			req := keyRequest()
			mutate(req)
			if got := Key(req); got != base {
				t.Errorf("%s changed the cache key", name)
			}
		})
	}
}

func TestKeySensitiveFields(t *testing.T) {
	base := Key(keyRequest())

	mutations := map[string]func(*providers.ChatRequest){
		"model":       func(r *providers.ChatRequest) { r.Model = "other-model" },
		"message":     func(r *providers.ChatRequest) { r.Messages[1].Content = "goodbye" },
		"temperature": func(r *providers.ChatRequest) { v := 0.2; r.Temperature = &v },
		"max_tokens":  func(r *providers.ChatRequest) { v := 128; r.MaxTokens = &v },
		"stop":        func(r *providers.ChatRequest) { r.Stop = providers.StopList{"END"} },
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			req := keyRequest()
			mutate(req)
			if got := Key(req); got == base {
				t.Errorf("%s should change the cache key", name)
			}
		})
	}
}

func TestKeyAbsentVersusZero(t *testing.T) {
	absent := keyRequest()
	absent.Temperature = nil

	zero := keyRequest()
	z := 0.0
	zero.Temperature = &z

	if Key(absent) == Key(zero) {
		t.Error("absent temperature and temperature 0 must hash differently")
	}
}
