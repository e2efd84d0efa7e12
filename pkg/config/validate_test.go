package config

import (
	"strings"
	"testing"
)

func validBaseConfig() *Config {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"groq": {
				BaseURL: "https://api.groq.com/openai/v1",
				Models:  []string{"llama-3.1-8b-instant"},
			},
		},
	}
	ApplyDefaults(cfg)
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantField string
	}{
		{
			name:      "valid config",
			mutate:    func(c *Config) {},
			wantField: "",
		},
		{
			name:      "port out of range",
			mutate:    func(c *Config) { c.Server.Port = 70000 },
			wantField: "server.port",
		},
		{
			name: "enabled provider without base url",
			mutate: func(c *Config) {
				p := c.Providers["groq"]
				p.BaseURL = ""
				c.Providers["groq"] = p
			},
			wantField: "providers.groq.base_url",
		},
		{
			name: "enabled provider with malformed base url",
			mutate: func(c *Config) {
				p := c.Providers["groq"]
				p.BaseURL = "not a url"
				c.Providers["groq"] = p
			},
			wantField: "providers.groq.base_url",
		},
		{
			name: "enabled provider without models",
			mutate: func(c *Config) {
				p := c.Providers["groq"]
				p.Models = nil
				c.Providers["groq"] = p
			},
			wantField: "providers.groq.models",
		},
		{
			name:      "unknown strategy",
			mutate:    func(c *Config) { c.Routing.DefaultStrategy = "weighted" },
			wantField: "routing.default_strategy",
		},
		{
			name:      "latency strategy accepted as reserved",
			mutate:    func(c *Config) { c.Routing.DefaultStrategy = StrategyLatency },
			wantField: "",
		},
		{
			name:      "fallback chain names unknown provider",
			mutate:    func(c *Config) { c.Routing.FallbackChain = []string{"groq", "missing"} },
			wantField: "routing.fallback_chain[1]",
		},
		{
			name: "alias targets unknown provider",
			mutate: func(c *Config) {
				c.Routing.ModelAliases = map[string]map[string]string{
					"llama": {"missing": "llama-x"},
				}
			},
			wantField: "routing.model_aliases.llama.missing",
		},
		{
			name:      "unknown cache backend",
			mutate:    func(c *Config) { c.Cache.Backend = "memcached" },
			wantField: "cache.backend",
		},
		{
			name: "redis backend enabled without url",
			mutate: func(c *Config) {
				c.Cache.Enabled = true
				c.Cache.Backend = BackendRedis
			},
			wantField: "cache.redis.url",
		},
		{
			name:      "unknown log level",
			mutate:    func(c *Config) { c.Logging.Level = "verbose" },
			wantField: "logging.level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validBaseConfig()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantField == "" {
				if err != nil {
					t.Fatalf("expected valid config, got: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("expected error for field %q, got nil", tt.wantField)
			}
			if !strings.Contains(err.Error(), tt.wantField) {
				t.Errorf("expected error to mention %q, got: %v", tt.wantField, err)
			}
		})
	}
}

func TestValidateCollectsAllErrors(t *testing.T) {
	cfg := validBaseConfig()
	cfg.Server.Port = 0
	cfg.Routing.DefaultStrategy = "weighted"
	cfg.Logging.Level = "verbose"

	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	verr, ok := err.(ValidationError)
	if !ok {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if len(verr.Errors) != 3 {
		t.Errorf("expected 3 errors collected, got %d: %v", len(verr.Errors), verr)
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := &Config{
		Providers: map[string]ProviderConfig{
			"groq": {BaseURL: "https://api.groq.com/openai/v1/", Models: []string{"m"}},
		},
	}
	ApplyDefaults(cfg)

	if cfg.Server.Host != DefaultHost {
		t.Errorf("expected default host, got %q", cfg.Server.Host)
	}
	if cfg.Server.Port != DefaultPort {
		t.Errorf("expected default port, got %d", cfg.Server.Port)
	}
	if cfg.Routing.DefaultStrategy != StrategyFirstAvailable {
		t.Errorf("expected first-available default, got %q", cfg.Routing.DefaultStrategy)
	}
	if cfg.Cache.Backend != BackendMemory {
		t.Errorf("expected memory backend default, got %q", cfg.Cache.Backend)
	}
	if cfg.Cache.Memory.MaxItems != DefaultCacheMaxItems {
		t.Errorf("expected default max items, got %d", cfg.Cache.Memory.MaxItems)
	}
	if cfg.Cache.Redis.KeyPrefix != DefaultRedisKeyPrefix {
		t.Errorf("expected default key prefix, got %q", cfg.Cache.Redis.KeyPrefix)
	}
	if cfg.Providers["groq"].Timeout != DefaultProviderTimeout {
		t.Errorf("expected default provider timeout, got %v", cfg.Providers["groq"].Timeout)
	}
	if cfg.Providers["groq"].BaseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("expected trailing slash stripped, got %q", cfg.Providers["groq"].BaseURL)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("expected default log level, got %q", cfg.Logging.Level)
	}

	// Idempotent.
	before := *cfg
	ApplyDefaults(cfg)
	if cfg.Server.Port != before.Server.Port || cfg.Cache.Memory.TTL != before.Cache.Memory.TTL {
		t.Error("ApplyDefaults is not idempotent")
	}
}
