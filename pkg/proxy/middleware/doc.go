// Package middleware provides HTTP middleware for cross-cutting concerns.
//
// Middleware is chained outermost first:
//
//	Recovery → RequestID → Logging → Metrics → CORS → handler
//
// Authentication sits inside the chain but only wraps the /v1 endpoints;
// the health and metrics endpoints stay open. See pkg/security/auth.
//
// RequestIDMiddleware assigns every request a UUID (or adopts the client's
// X-Request-ID), LoggingMiddleware writes one structured line per completed
// request, MetricsMiddleware feeds the Prometheus collector, and
// RecoveryMiddleware turns panics into OpenAI-format 500s with the stack
// trace kept server-side.
package middleware
