// Package auth implements gateway API key authentication.
//
// The gateway's own keys are separate from the upstream provider keys: a
// client authenticates to llmux with a gateway key, and llmux authenticates
// to each provider with that provider's key. Keys are labeled in
// configuration so logs can attribute traffic by label without logging key
// material.
//
// When no keys are configured, authentication is disabled and requests pass
// through with the label "anonymous". Key comparison is constant-time.
package auth
