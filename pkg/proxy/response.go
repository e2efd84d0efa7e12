package proxy

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/blueberrycongee/llmux/pkg/proxy/types"
	"github.com/blueberrycongee/llmux/pkg/responses"
)

// WriteJSONResponse writes data as a JSON response with the given status.
func WriteJSONResponse(w http.ResponseWriter, statusCode int, data any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON response: %w", err)
	}

	return nil
}

// WriteErrorResponse writes an OpenAI-compatible error response, deriving
// the HTTP status from the error type.
func WriteErrorResponse(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteJSONResponse(w, errResp.Error.HTTPStatusCode(), errResp)
}

// SetSSEHeaders sets the headers for a Server-Sent-Events stream.
// X-Accel-Buffering disables proxy buffering so chunks reach the client as
// they are written.
func SetSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}

// flush pushes buffered bytes to the client when the writer supports it.
func flush(w http.ResponseWriter) {
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}
}

// WriteSSEData writes one data frame ("data: <json>\n\n") and flushes.
func WriteSSEData(w http.ResponseWriter, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE frame: %w", err)
	}

	if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("failed to write SSE frame: %w", err)
	}

	flush(w)
	return nil
}

// WriteSSEEvent writes one typed Responses frame
// ("event: <type>\ndata: <json>\n\n") and flushes.
func WriteSSEEvent(w http.ResponseWriter, event responses.StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal SSE event: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
		return fmt.Errorf("failed to write SSE event: %w", err)
	}

	flush(w)
	return nil
}

// WriteSSEDone writes the final "[DONE]" marker and flushes.
func WriteSSEDone(w http.ResponseWriter) error {
	if _, err := fmt.Fprint(w, "data: [DONE]\n\n"); err != nil {
		return fmt.Errorf("failed to write SSE done marker: %w", err)
	}

	flush(w)
	return nil
}

// WriteSSEError writes an error envelope as a data frame, for failures after
// the stream has already started.
func WriteSSEError(w http.ResponseWriter, errResp *types.ErrorResponse) error {
	return WriteSSEData(w, errResp)
}
