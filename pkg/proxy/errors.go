package proxy

import (
	"errors"

	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/proxy/types"
	"github.com/blueberrycongee/llmux/pkg/routing"
)

// HandleError converts routing and provider errors into the OpenAI error
// envelope. Routing failures dominate: a request that exhausted its
// candidates reports the aggregate, not the last provider's raw error.
func HandleError(err error) *types.ErrorResponse {
	var reqErr *RequestError
	if errors.As(err, &reqErr) {
		return reqErr.ToErrorResponse()
	}

	var noProviders *routing.NoProvidersError
	if errors.As(err, &noProviders) {
		// A pinned provider that is unavailable is an upstream availability
		// failure; an unknown model is a client error.
		if noProviders.Provider != "" {
			return types.NewProviderError(noProviders.Error())
		}
		return types.NewInvalidRequestError(noProviders.Error(), "model", types.CodeModelNotFound)
	}

	var allFailed *routing.AllProvidersFailedError
	if errors.As(err, &allFailed) {
		return types.NewProviderError(allFailed.Error())
	}

	var modelErr *providers.ModelNotFoundError
	if errors.As(err, &modelErr) {
		return types.NewInvalidRequestError(modelErr.Error(), "model", types.CodeModelNotFound)
	}

	var provErr *providers.ProviderError
	if errors.As(err, &provErr) {
		return types.NewProviderError(provErr.Error())
	}

	return types.NewServerError("An internal error occurred. Please try again later.")
}
