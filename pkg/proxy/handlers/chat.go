package handlers

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/blueberrycongee/llmux/pkg/cache"
	"github.com/blueberrycongee/llmux/pkg/providers"
	"github.com/blueberrycongee/llmux/pkg/proxy"
	"github.com/blueberrycongee/llmux/pkg/proxy/middleware"
	"github.com/blueberrycongee/llmux/pkg/proxy/types"
	"github.com/blueberrycongee/llmux/pkg/routing"
)

// ChatHandler serves POST /v1/chat/completions.
type ChatHandler struct {
	router *routing.Router
	cache  *cache.ResponseCache
	logger *slog.Logger
}

// NewChatHandler creates a chat completions handler.
func NewChatHandler(router *routing.Router, responseCache *cache.ResponseCache, logger *slog.Logger) *ChatHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatHandler{router: router, cache: responseCache, logger: logger}
}

// ServeHTTP implements http.Handler.
func (h *ChatHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		errResp := types.NewInvalidRequestError("Method not allowed. Use POST.", "method", types.CodeInvalidValue)
		_ = proxy.WriteJSONResponse(w, http.StatusMethodNotAllowed, errResp)
		return
	}

	req, reqErr := proxy.ParseChatRequest(r)
	if reqErr != nil {
		h.logger.WarnContext(ctx, "rejected chat request",
			"request_id", requestID,
			"error", reqErr,
		)
		_ = proxy.WriteErrorResponse(w, reqErr.ToErrorResponse())
		return
	}

	if req.Stream {
		h.serveStream(w, r, req, requestID)
		return
	}

	if resp, ok := h.cache.Get(ctx, req); ok {
		h.logger.InfoContext(ctx, "chat completion served from cache",
			"request_id", requestID,
			"model", req.Model,
			"provider", resp.Provider,
		)
		_ = proxy.WriteJSONResponse(w, http.StatusOK, resp)
		return
	}

	start := time.Now()
	resp, err := h.router.Route(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "chat completion failed",
			"request_id", requestID,
			"model", req.Model,
			"error", err,
		)
		_ = proxy.WriteErrorResponse(w, proxy.HandleError(err))
		return
	}

	h.cache.Set(ctx, req, resp)

	h.logger.InfoContext(ctx, "chat completion succeeded",
		"request_id", requestID,
		"model", req.Model,
		"provider", resp.Provider,
		"total_tokens", resp.Usage.TotalTokens,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	_ = proxy.WriteJSONResponse(w, http.StatusOK, resp)
}

// serveStream relays upstream SSE chunks to the client. Fallback only
// happens before the upstream commits; once chunks flow, a failure ends the
// stream with an error frame.
func (h *ChatHandler) serveStream(w http.ResponseWriter, r *http.Request, req *providers.ChatRequest, requestID string) {
	ctx := r.Context()

	reader, err := h.router.RouteStream(ctx, req)
	if err != nil {
		h.logger.ErrorContext(ctx, "chat stream failed to start",
			"request_id", requestID,
			"model", req.Model,
			"error", err,
		)
		_ = proxy.WriteErrorResponse(w, proxy.HandleError(err))
		return
	}
	defer reader.Close()

	proxy.SetSSEHeaders(w)
	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	chunkCount := 0
	for {
		chunk, err := reader.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				h.logger.WarnContext(ctx, "client disconnected during chat stream",
					"request_id", requestID,
					"provider", reader.Provider(),
					"chunks_sent", chunkCount,
				)
				return
			}
			h.logger.ErrorContext(ctx, "chat stream failed mid-flight",
				"request_id", requestID,
				"provider", reader.Provider(),
				"chunks_sent", chunkCount,
				"error", err,
			)
			_ = proxy.WriteSSEError(w, proxy.HandleError(err))
			return
		}

		if err := proxy.WriteSSEData(w, chunk); err != nil {
			h.logger.WarnContext(ctx, "failed to write chat stream chunk",
				"request_id", requestID,
				"error", err,
			)
			return
		}
		chunkCount++
	}

	_ = proxy.WriteSSEDone(w)

	h.logger.InfoContext(ctx, "chat stream completed",
		"request_id", requestID,
		"model", req.Model,
		"provider", reader.Provider(),
		"chunks_sent", chunkCount,
	)
}
