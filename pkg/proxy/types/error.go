package types

// ErrorResponse is the OpenAI-compatible error envelope. Every error the
// gateway returns, on every endpoint, uses this shape so OpenAI SDKs can
// surface it without special cases.
type ErrorResponse struct {
	// Error contains the error details.
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains detailed error information.
type ErrorDetail struct {
	// Message is a human-readable error message.
	Message string `json:"message"`

	// Type categorizes the error: "invalid_request_error",
	// "authentication_error", "api_error", or "server_error".
	Type string `json:"type"`

	// Param is the name of the parameter that caused the error, when one
	// applies.
	Param string `json:"param,omitempty"`

	// Code is a machine-readable error code.
	Code string `json:"code,omitempty"`
}

// Error type constants matching the OpenAI error vocabulary.
const (
	// ErrorTypeInvalidRequest indicates a client-side error (400, or 404
	// for an unknown previous_response_id).
	ErrorTypeInvalidRequest = "invalid_request_error"

	// ErrorTypeAuthentication indicates a gateway authentication failure (401).
	ErrorTypeAuthentication = "authentication_error"

	// ErrorTypeAPI indicates an upstream provider failure (502).
	ErrorTypeAPI = "api_error"

	// ErrorTypeServerError indicates an internal gateway error (500).
	ErrorTypeServerError = "server_error"
)

// Error code constants for common error scenarios.
const (
	// CodeInvalidJSON indicates the request body is not valid JSON.
	CodeInvalidJSON = "invalid_json"

	// CodeMissingField indicates a required field is missing.
	CodeMissingField = "missing_field"

	// CodeInvalidValue indicates a field has an invalid value.
	CodeInvalidValue = "invalid_value"

	// CodeRequestTooLarge indicates the request body exceeds the size limit.
	CodeRequestTooLarge = "request_too_large"

	// CodeMissingAPIKey indicates the Authorization header is absent.
	CodeMissingAPIKey = "missing_api_key"

	// CodeInvalidAPIKey indicates the presented key matches no configured key.
	CodeInvalidAPIKey = "invalid_api_key"

	// CodeModelNotFound indicates no enabled provider serves the model.
	CodeModelNotFound = "model_not_found"

	// CodeProviderError indicates every candidate provider failed.
	CodeProviderError = "provider_error"

	// CodePreviousResponseNotFound indicates an unknown or expired
	// previous_response_id.
	CodePreviousResponseNotFound = "previous_response_not_found"

	// CodeInternalError indicates an internal gateway error.
	CodeInternalError = "internal_error"
)

// NewErrorResponse creates an error response with the given details.
func NewErrorResponse(message, errorType, param, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: ErrorDetail{
			Message: message,
			Type:    errorType,
			Param:   param,
			Code:    code,
		},
	}
}

// NewInvalidRequestError creates an error response for invalid requests (400).
func NewInvalidRequestError(message, param, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, param, code)
}

// NewAuthenticationError creates an error response for auth failures (401).
func NewAuthenticationError(message, code string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeAuthentication, "", code)
}

// NewProviderError creates an error response for upstream failures (502).
func NewProviderError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeAPI, "", CodeProviderError)
}

// NewServerError creates an error response for internal errors (500).
func NewServerError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeServerError, "", CodeInternalError)
}

// NewNotFoundError creates the 404 envelope for an unknown
// previous_response_id.
func NewNotFoundError(message string) *ErrorResponse {
	return NewErrorResponse(message, ErrorTypeInvalidRequest, "previous_response_id", CodePreviousResponseNotFound)
}

// HTTPStatusCode returns the HTTP status for the error. The type decides,
// except that previous_response_not_found is a 404 despite carrying the
// invalid_request_error type.
func (e *ErrorDetail) HTTPStatusCode() int {
	if e.Code == CodePreviousResponseNotFound {
		return 404
	}
	switch e.Type {
	case ErrorTypeInvalidRequest:
		return 400
	case ErrorTypeAuthentication:
		return 401
	case ErrorTypeAPI:
		return 502
	case ErrorTypeServerError:
		return 500
	default:
		return 500
	}
}
