// Package handlers implements one http.Handler per gateway endpoint.
//
//	GET  /health            liveness
//	GET  /ready             readiness (at least one provider registered)
//	GET  /health/providers  live upstream probes, concurrent fan-out
//	GET  /v1/models         aliases + native models of enabled providers
//	POST /v1/chat/completions
//	POST /v1/responses
//
// Handlers take their collaborators (router, cache, store, registry) as
// constructor arguments; pkg/server wires them and attaches middleware.
package handlers
