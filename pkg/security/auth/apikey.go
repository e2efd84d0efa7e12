package auth

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/blueberrycongee/llmux/pkg/config"
)

// AnonymousLabel is the key label reported when authentication is disabled.
const AnonymousLabel = "anonymous"

// Authentication errors.
var (
	// ErrMissingKey means the request carried no Authorization header.
	ErrMissingKey = errors.New("missing API key")

	// ErrInvalidKey means the presented key matched no configured key.
	ErrInvalidKey = errors.New("invalid API key")
)

// Validator checks inbound requests against the configured gateway keys.
//
// Keys are labeled so logs can attribute traffic without ever logging the
// key itself. With no keys configured the validator is disabled and every
// request authenticates as "anonymous".
type Validator struct {
	keys map[string]string // label -> key
}

// NewValidator builds a validator from configuration. The single api_key
// shorthand gets the label "default".
func NewValidator(cfg config.AuthConfig) *Validator {
	keys := make(map[string]string, len(cfg.APIKeys)+1)
	if cfg.APIKey != "" {
		keys["default"] = cfg.APIKey
	}
	for label, key := range cfg.APIKeys {
		keys[label] = key
	}
	return &Validator{keys: keys}
}

// Enabled reports whether any gateway key is configured.
func (v *Validator) Enabled() bool {
	return len(v.keys) > 0
}

// Authenticate checks the request's credentials and returns the label of
// the matching key. Both "Authorization: Bearer <key>" and a bare
// "Authorization: <key>" are accepted.
func (v *Validator) Authenticate(r *http.Request) (string, error) {
	if !v.Enabled() {
		return AnonymousLabel, nil
	}

	header := r.Header.Get("Authorization")
	if header == "" {
		return "", ErrMissingKey
	}

	presented := header
	if len(header) >= 7 && strings.EqualFold(header[:7], "Bearer ") {
		presented = strings.TrimSpace(header[7:])
	}
	if presented == "" {
		return "", ErrMissingKey
	}

	// Every configured key is compared so timing does not reveal which
	// label, if any, matched.
	matched := ""
	for label, key := range v.keys {
		if subtle.ConstantTimeCompare([]byte(presented), []byte(key)) == 1 {
			matched = label
		}
	}
	if matched == "" {
		return "", ErrInvalidKey
	}

	return matched, nil
}
