package routing

import (
	"errors"
	"fmt"
	"strings"
)

// Common routing errors that can be checked with errors.Is().
var (
	// ErrNoProvidersAvailable is returned when candidate selection produces
	// an empty list.
	ErrNoProvidersAvailable = errors.New("no providers available")

	// ErrAllProvidersFailed is returned when every candidate was attempted
	// and none succeeded.
	ErrAllProvidersFailed = errors.New("all providers failed")
)

// NoProvidersError is returned when no provider can serve a request: the
// explicitly requested provider is not enabled, the fallback chain filtered
// down to nothing, or no candidate supports the resolved model.
type NoProvidersError struct {
	// Model is the requested (friendly) model.
	Model string

	// Provider is the explicitly requested provider, when the request pinned
	// one.
	Provider string
}

// Error implements the error interface.
func (e *NoProvidersError) Error() string {
	if e.Provider != "" {
		return fmt.Sprintf("no providers available: provider %q is not enabled", e.Provider)
	}
	return fmt.Sprintf("no providers available for model %q", e.Model)
}

// Is implements error matching for errors.Is().
func (e *NoProvidersError) Is(target error) bool {
	return target == ErrNoProvidersAvailable
}

// AllProvidersFailedError is returned when every candidate was attempted and
// none succeeded. It carries the error from the last attempt.
type AllProvidersFailedError struct {
	// Model is the requested (friendly) model.
	Model string

	// Attempted contains the names of providers that were tried.
	Attempted []string

	// LastError is the error from the last attempted provider.
	LastError error
}

// Error implements the error interface.
func (e *AllProvidersFailedError) Error() string {
	return fmt.Sprintf("all providers failed for model %q (attempted: %s). Last error: %v",
		e.Model, strings.Join(e.Attempted, ", "), e.LastError)
}

// Is implements error matching for errors.Is().
func (e *AllProvidersFailedError) Is(target error) bool {
	return target == ErrAllProvidersFailed
}

// Unwrap returns the wrapped error for error chain traversal.
func (e *AllProvidersFailedError) Unwrap() error {
	return e.LastError
}
