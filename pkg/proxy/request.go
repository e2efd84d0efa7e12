package proxy

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/proxy/types"
	"github.com/blueberrycongee/llmux/pkg/responses"
)

// MaxRequestBodySize is the maximum allowed request body size (10MB).
const MaxRequestBodySize = 10 * 1024 * 1024

// RequestError represents a request parsing or validation error.
type RequestError struct {
	Message string
	Code    string
	Param   string
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return e.Message
}

// ToErrorResponse converts a RequestError to an OpenAI-compatible error
// response.
func (e *RequestError) ToErrorResponse() *types.ErrorResponse {
	return types.NewInvalidRequestError(e.Message, e.Param, e.Code)
}

// readBody reads at most MaxRequestBodySize bytes of the request body.
func readBody(r *http.Request) ([]byte, *RequestError) {
	body, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("failed to read request body: %v", err),
			Code:    types.CodeInvalidValue,
			Param:   "body",
		}
	}
	if len(body) > MaxRequestBodySize {
		return nil, &RequestError{
			Message: fmt.Sprintf("request body exceeds maximum size of %d bytes", MaxRequestBodySize),
			Code:    types.CodeRequestTooLarge,
			Param:   "body",
		}
	}
	return body, nil
}

// ParseChatRequest parses and validates a POST /v1/chat/completions body.
func ParseChatRequest(r *http.Request) (*providers.ChatRequest, *RequestError) {
	body, reqErr := readBody(r)
	if reqErr != nil {
		return nil, reqErr
	}

	var req providers.ChatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if req.Model == "" {
		return nil, &RequestError{
			Message: "model is required",
			Code:    types.CodeMissingField,
			Param:   "model",
		}
	}
	if len(req.Messages) == 0 {
		return nil, &RequestError{
			Message: "messages must be a non-empty array",
			Code:    types.CodeMissingField,
			Param:   "messages",
		}
	}
	for i, msg := range req.Messages {
		if msg.Role == "" {
			return nil, &RequestError{
				Message: fmt.Sprintf("messages[%d].role is required", i),
				Code:    types.CodeMissingField,
				Param:   fmt.Sprintf("messages[%d].role", i),
			}
		}
	}

	return &req, nil
}

// ParseResponsesRequest parses and validates a POST /v1/responses body.
func ParseResponsesRequest(r *http.Request) (*responses.Request, *RequestError) {
	body, reqErr := readBody(r)
	if reqErr != nil {
		return nil, reqErr
	}

	var req responses.Request
	if err := json.Unmarshal(body, &req); err != nil {
		return nil, &RequestError{
			Message: fmt.Sprintf("invalid JSON: %v", err),
			Code:    types.CodeInvalidJSON,
			Param:   "body",
		}
	}

	if req.Model == "" {
		return nil, &RequestError{
			Message: "model is required",
			Code:    types.CodeMissingField,
			Param:   "model",
		}
	}
	if len(req.Input) == 0 && req.PreviousResponseID == "" {
		return nil, &RequestError{
			Message: "input is required",
			Code:    types.CodeMissingField,
			Param:   "input",
		}
	}

	return &req, nil
}
