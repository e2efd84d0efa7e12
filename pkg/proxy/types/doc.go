// Package types defines the gateway's own wire types: the OpenAI-compatible
// error envelope and the payloads of the model-list and health endpoints.
//
// Chat-completion request and response bodies are not defined here; the
// gateway forwards them in the shapes declared by pkg/providers.
package types
