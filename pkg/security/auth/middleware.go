package auth

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/blueberrycongee/llmux/pkg/proxy"
	"github.com/blueberrycongee/llmux/pkg/proxy/types"
)

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// keyLabelKey stores the label of the authenticated gateway key.
const keyLabelKey contextKey = "key_label"

// Middleware wraps a handler with gateway API key authentication. It is
// attached to the /v1 endpoints only; health and metrics stay open.
func Middleware(validator *Validator, logger *slog.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = slog.Default()
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			label, err := validator.Authenticate(r)
			if err != nil {
				logger.WarnContext(r.Context(), "authentication failed",
					"error", err,
					"remote_addr", r.RemoteAddr,
					"path", r.URL.Path,
				)

				var errResp *types.ErrorResponse
				if errors.Is(err, ErrMissingKey) {
					errResp = types.NewAuthenticationError(
						"Missing API key. Pass it in the Authorization header.",
						types.CodeMissingAPIKey,
					)
				} else {
					errResp = types.NewAuthenticationError(
						"Invalid API key.",
						types.CodeInvalidAPIKey,
					)
				}
				_ = proxy.WriteErrorResponse(w, errResp)
				return
			}

			ctx := context.WithValue(r.Context(), keyLabelKey, label)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// KeyLabel retrieves the authenticated key label from the context. Returns
// empty string if the request never passed the auth middleware.
func KeyLabel(ctx context.Context) string {
	if label, ok := ctx.Value(keyLabelKey).(string); ok {
		return label
	}
	return ""
}
