// Package logging constructs the gateway's slog handlers: JSON output by
// default, text when configured pretty, with credential attributes redacted
// before they reach the sink.
package logging
