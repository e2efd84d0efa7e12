package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/blueberrycongee/llmux/pkg/providers"
)

// keyFields is the canonical subset of a request that contributes to the
// cache key. Field order is fixed so json.Marshal produces deterministic
// bytes. provider, cache, stream, and user deliberately have no field here:
// two requests that differ only in those must hash identically.
type keyFields struct {
	Model            string              `json:"model"`
	Messages         []providers.Message `json:"messages"`
	Temperature      *float64            `json:"temperature,omitempty"`
	TopP             *float64            `json:"top_p,omitempty"`
	MaxTokens        *int                `json:"max_tokens,omitempty"`
	Stop             providers.StopList  `json:"stop,omitempty"`
	PresencePenalty  *float64            `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64            `json:"frequency_penalty,omitempty"`
}

// Key returns the content-addressed fingerprint for a request as a SHA-256
// hex digest. A cryptographic digest keeps the collision rate negligible for
// a response cache; a folded 32-bit hash would not.
func Key(req *providers.ChatRequest) string {
	data, err := json.Marshal(keyFields{
		Model:            req.Model,
		Messages:         req.Messages,
		Temperature:      req.Temperature,
		TopP:             req.TopP,
		MaxTokens:        req.MaxTokens,
		Stop:             req.Stop,
		PresencePenalty:  req.PresencePenalty,
		FrequencyPenalty: req.FrequencyPenalty,
	})
	if err != nil {
		// Marshaling a value built from decoded JSON cannot fail; guard
		// against it anyway with a key that will simply never hit.
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
