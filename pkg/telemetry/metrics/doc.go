// Package metrics exposes the gateway's Prometheus instrumentation: inbound
// request counters and latency, per-provider attempt outcomes, cache
// operations, and the prior-response store size. All recording methods are
// nil-safe so a disabled metrics endpoint costs nothing at call sites.
package metrics
