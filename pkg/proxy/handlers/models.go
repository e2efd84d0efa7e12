package handlers

import (
	"net/http"
	"time"

	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/proxy"
	"github.com/blueberrycongee/llmux/pkg/proxy/types"
	"github.com/blueberrycongee/llmux/pkg/routing"
)

// ModelsHandler serves GET /v1/models: the distinct union of friendly
// aliases and every enabled provider's native models.
type ModelsHandler struct {
	registry *providers.Registry
	aliases  *routing.AliasTable
	started  int64
}

// NewModelsHandler creates a model list handler.
func NewModelsHandler(registry *providers.Registry, aliases *routing.AliasTable) *ModelsHandler {
	return &ModelsHandler{
		registry: registry,
		aliases:  aliases,
		started:  time.Now().Unix(),
	}
}

// ServeHTTP implements http.Handler.
func (h *ModelsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	list := types.ModelList{Object: "list", Data: []types.Model{}}
	seen := make(map[string]struct{})

	// Aliases first: they are the names the gateway advertises.
	for _, alias := range h.aliases.Friendly() {
		seen[alias] = struct{}{}
		list.Data = append(list.Data, types.Model{
			ID:      alias,
			Object:  "model",
			Created: h.started,
			OwnedBy: "llmux",
		})
	}

	for _, name := range h.registry.Names() {
		d, ok := h.registry.Get(name)
		if !ok {
			continue
		}
		for _, model := range d.Models {
			if _, dup := seen[model]; dup {
				continue
			}
			seen[model] = struct{}{}
			list.Data = append(list.Data, types.Model{
				ID:      model,
				Object:  "model",
				Created: h.started,
				OwnedBy: name,
			})
		}
	}

	_ = proxy.WriteJSONResponse(w, http.StatusOK, list)
}
