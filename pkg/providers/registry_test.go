package providers_test

import (
	"reflect"
	"testing"
	"time"

	"github.com/blueberrycongee/llmux/pkg/config"
	"github.com/blueberrycongee/llmux/pkg/providers"
)

func boolp(b bool) *bool { return &b }

func registryConfig() *config.Config {
	return &config.Config{
		Providers: map[string]config.ProviderConfig{
			"groq": {
				APIKey:  "gsk-test",
				BaseURL: "https://api.groq.com/openai/v1",
				Models:  []string{"llama-3.3-70b-versatile", "llama-3.1-8b-instant"},
				Timeout: 30 * time.Second,
			},
			"together": {
				APIKey:  "tk-test",
				BaseURL: "https://api.together.xyz/v1",
				Models:  []string{"meta-llama/Llama-3.3-70B-Instruct-Turbo", "llama-3.1-8b-instant"},
				Timeout: 30 * time.Second,
			},
			"cerebras": {
				Enabled: boolp(false),
				APIKey:  "csk-test",
				BaseURL: "https://api.cerebras.ai/v1",
				Models:  []string{"llama-3.3-70b"},
				Timeout: 30 * time.Second,
			},
		},
		ProviderOrder: []string{"groq", "together", "cerebras"},
	}
}

func TestRegistryOrderAndDisabled(t *testing.T) {
	r := providers.NewRegistry(registryConfig())

	if r.Len() != 2 {
		t.Fatalf("expected 2 enabled providers, got %d", r.Len())
	}
	if got := r.Names(); !reflect.DeepEqual(got, []string{"groq", "together"}) {
		t.Errorf("unexpected order: %v", got)
	}

	if _, ok := r.Get("cerebras"); ok {
		t.Error("disabled provider should not be registered")
	}

	d, ok := r.Get("groq")
	if !ok {
		t.Fatal("groq not registered")
	}
	if d.BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("unexpected base URL: %q", d.BaseURL)
	}
}

func TestRegistrySortsWhenOrderMissing(t *testing.T) {
	cfg := registryConfig()
	cfg.ProviderOrder = nil

	r := providers.NewRegistry(cfg)
	if got := r.Names(); !reflect.DeepEqual(got, []string{"groq", "together"}) {
		t.Errorf("expected sorted names, got %v", got)
	}
}

func TestRegistryModelsDeduplicated(t *testing.T) {
	r := providers.NewRegistry(registryConfig())

	want := []string{
		"llama-3.3-70b-versatile",
		"llama-3.1-8b-instant",
		"meta-llama/Llama-3.3-70B-Instruct-Turbo",
	}
	if got := r.Models(); !reflect.DeepEqual(got, want) {
		t.Errorf("unexpected model union:\n got %v\nwant %v", got, want)
	}
}

func TestDescriptorSupports(t *testing.T) {
	d := &providers.Descriptor{Models: []string{"a", "b"}}

	if !d.Supports("a") || !d.Supports("b") {
		t.Error("descriptor should support its own models")
	}
	if d.Supports("c") {
		t.Error("descriptor should not support an unknown model")
	}
}
