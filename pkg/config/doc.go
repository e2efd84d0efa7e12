// Package config defines the llmux gateway configuration model and its
// loading pipeline.
//
// Configuration is a single YAML document covering the HTTP server, gateway
// authentication keys, upstream provider descriptors, routing behavior,
// response caching, and logging. Loading follows a fixed sequence:
//
//  1. Read the file from disk.
//  2. Expand ${VAR} and ${VAR:-default} references against the process
//     environment (every string value in the document supports this).
//  3. Unmarshal the YAML.
//  4. Apply defaults for unset fields.
//  5. Validate, collecting every field error before failing.
//
// The resulting Config is immutable for the lifetime of the process; there
// is no reload mechanism.
package config
