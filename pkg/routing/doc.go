// Package routing selects and orders upstream providers for each request and
// drives the fallback loop.
//
// Candidate selection has three stages: an explicit per-request provider pin
// wins outright; otherwise the configured fallback chain (or all enabled
// providers in configuration order) is filtered to registered providers and
// permuted by the configured strategy. The router then attempts candidates in
// order. For unary calls, any provider failure moves on to the next
// candidate. For streams, the first successful response header is the commit
// point: once the upstream has committed, bytes flow to the caller and a
// mid-stream failure is surfaced rather than retried, because retrying after
// the first byte would duplicate content the client already received.
package routing
