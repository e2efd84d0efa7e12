// Package cache implements the content-addressed response cache.
//
// The cache key is a SHA-256 fingerprint over exactly the request fields
// that can affect a completion (model, messages, sampling parameters, stop
// sequences). Gateway extension fields, the stream flag, and the user tag
// never contribute, so requests that differ only in those fields share one
// entry.
//
// Storage is pluggable behind the Backend contract. Three backends ship: an
// in-process LRU with per-entry TTL, a Redis client for shared deployments,
// and a SQLite file for single-node persistence across restarts. The
// ResponseCache policy wrapper enforces when caching applies at all:
// streaming requests and requests that opt out never touch a backend, and
// backend failures are logged and swallowed so a broken cache can never fail
// a request.
package cache
