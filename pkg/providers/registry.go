package providers

import (
	"sort"
	"time"

	"github.com/blueberrycongee/llmux/pkg/config"
)

// Descriptor describes one upstream provider. It is the only provider
// representation in the gateway; all upstreams share the same shape and the
// same invocation path.
type Descriptor struct {
	// Name is the provider's configured name (e.g. "groq").
	Name string

	// BaseURL is the API root without a trailing slash.
	BaseURL string

	// APIKey is the upstream bearer token.
	APIKey string

	// Models lists native model identifiers in preference order.
	Models []string

	// Timeout bounds each call against this provider.
	Timeout time.Duration

	// ExtraHeaders are set on every request after the standard headers.
	ExtraHeaders map[string]string
}

// Supports reports whether the descriptor serves the native model id.
func (d *Descriptor) Supports(model string) bool {
	for _, m := range d.Models {
		if m == model {
			return true
		}
	}
	return false
}

// Registry holds the enabled provider descriptors in configuration order.
// It is built once at startup and never mutated afterwards, so reads need
// no locking.
type Registry struct {
	order  []string
	byName map[string]*Descriptor
}

// NewRegistry builds a registry from configuration. Disabled providers are
// omitted. Order follows the YAML document; when the order was not captured
// (configs assembled in code), names are sorted for determinism.
func NewRegistry(cfg *config.Config) *Registry {
	order := cfg.ProviderOrder
	if len(order) == 0 {
		order = make([]string, 0, len(cfg.Providers))
		for name := range cfg.Providers {
			order = append(order, name)
		}
		sort.Strings(order)
	}

	r := &Registry{byName: make(map[string]*Descriptor, len(cfg.Providers))}
	for _, name := range order {
		pc, ok := cfg.Providers[name]
		if !ok || !pc.IsEnabled() {
			continue
		}
		r.order = append(r.order, name)
		r.byName[name] = &Descriptor{
			Name:         name,
			BaseURL:      pc.BaseURL,
			APIKey:       pc.APIKey,
			Models:       append([]string(nil), pc.Models...),
			Timeout:      pc.Timeout,
			ExtraHeaders: pc.ExtraHeaders,
		}
	}
	return r
}

// Get returns the descriptor for name.
func (r *Registry) Get(name string) (*Descriptor, bool) {
	d, ok := r.byName[name]
	return d, ok
}

// Names returns the provider names in configuration order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.order...)
}

// Len returns the number of registered providers.
func (r *Registry) Len() int {
	return len(r.order)
}

// Models returns the union of all native model ids, in registry order,
// de-duplicated.
func (r *Registry) Models() []string {
	seen := make(map[string]struct{})
	var models []string
	for _, name := range r.order {
		for _, m := range r.byName[name].Models {
			if _, dup := seen[m]; dup {
				continue
			}
			seen[m] = struct{}{}
			models = append(models, m)
		}
	}
	return models
}
