package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/blueberrycongee/llmux/pkg/config"
)

// redacted replaces secret values in log output.
const redacted = "[REDACTED]"

// New creates a structured logger from configuration. Output is JSON by
// default and human-readable text when logging.pretty is set. Attributes
// that look like credentials are redacted before they reach the sink.
func New(cfg config.LoggingConfig) *slog.Logger {
	return NewWithWriter(cfg, os.Stdout)
}

// NewWithWriter is New with an explicit output writer. Used by tests.
func NewWithWriter(cfg config.LoggingConfig, w io.Writer) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:       ParseLevel(cfg.Level),
		ReplaceAttr: redactSecrets,
	}

	var handler slog.Handler
	if cfg.Pretty {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

// ParseLevel parses a log level string. Unknown levels fall back to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// redactSecrets is a ReplaceAttr hook that masks credential-bearing
// attributes. Provider API keys must never reach the log sink, even at
// debug level.
func redactSecrets(groups []string, a slog.Attr) slog.Attr {
	key := strings.ToLower(a.Key)
	if key == "api_key" || key == "authorization" || strings.HasSuffix(key, "_api_key") {
		a.Value = slog.StringValue(redacted)
	}
	return a
}
