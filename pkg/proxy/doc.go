// Package proxy implements the HTTP surface of the gateway: request parsing
// and validation, OpenAI-compatible error mapping, and the JSON and
// Server-Sent-Events response writers the handlers share.
//
// The package splits into:
//
//   - proxy (this package): parse, validate, write
//   - proxy/types: error envelope and endpoint payload types
//   - proxy/handlers: one handler per endpoint
//   - proxy/middleware: recovery, request ID, logging, CORS, metrics
//
// Handlers are wired together by pkg/server.
package proxy
