package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file at the specified path.
// Environment references in the document are expanded before parsing, then
// defaults are applied and the result is validated.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	data = ExpandEnv(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and applies
// environment variable overrides for operational knobs. Overrides use the
// LLMUX_ prefix (e.g. LLMUX_PORT) and take precedence over file values.
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration invalid after environment overrides: %w", err)
	}

	return cfg, nil
}

// envRef matches ${VAR} and ${VAR:-default} references.
var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-[^}]*)?\}`)

// ExpandEnv expands ${VAR} and ${VAR:-default} references in raw YAML bytes
// against the process environment. A set variable wins over a default. An
// unset variable with a default expands to the default. An unset variable
// without a default is left as-is so the validation error names the literal
// reference instead of silently producing an empty string.
func ExpandEnv(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		groups := envRef.FindSubmatch(ref)
		name := string(groups[1])
		if val, ok := os.LookupEnv(name); ok {
			return []byte(val)
		}
		if len(groups[2]) > 0 {
			return groups[2][2:] // strip the ":-"
		}
		return ref
	})
}

// applyEnvOverrides applies LLMUX_* environment variable overrides.
func applyEnvOverrides(cfg *Config) {
	if val := os.Getenv("LLMUX_HOST"); val != "" {
		cfg.Server.Host = val
	}
	if val := os.Getenv("LLMUX_PORT"); val != "" {
		if p, err := strconv.Atoi(val); err == nil {
			cfg.Server.Port = p
		}
	}
	if val := os.Getenv("LLMUX_LISTEN"); val != "" {
		if host, port, ok := SplitListen(val); ok {
			cfg.Server.Host = host
			cfg.Server.Port = port
		}
	}
	if val := os.Getenv("LLMUX_LOG_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("LLMUX_CACHE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Cache.Enabled = b
		}
	}
	if val := os.Getenv("LLMUX_REDIS_URL"); val != "" {
		cfg.Cache.Redis.URL = val
	}
}

// SplitListen parses a "host:port" listen address into its parts. An empty
// host (":8080") falls back to the default bind host.
func SplitListen(addr string) (string, int, bool) {
	idx := strings.LastIndex(addr, ":")
	if idx < 0 {
		return "", 0, false
	}
	port, err := strconv.Atoi(addr[idx+1:])
	if err != nil {
		return "", 0, false
	}
	host := strings.Trim(addr[:idx], "[]")
	if host == "" {
		host = DefaultHost
	}
	return host, port, true
}
