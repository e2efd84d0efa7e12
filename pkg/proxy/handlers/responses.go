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
	"github.com/blueberrycongee/llmux/pkg/responses"
	"github.com/blueberrycongee/llmux/pkg/routing"
	"github.com/blueberrycongee/llmux/pkg/telemetry/metrics"
)

// ResponsesHandler serves POST /v1/responses: the OpenResponses protocol
// translated onto the chat-completions routing path.
type ResponsesHandler struct {
	router    *routing.Router
	cache     *cache.ResponseCache
	store     *responses.Store
	collector *metrics.Collector
	logger    *slog.Logger
}

// NewResponsesHandler creates a responses handler.
func NewResponsesHandler(router *routing.Router, responseCache *cache.ResponseCache, store *responses.Store, collector *metrics.Collector, logger *slog.Logger) *ResponsesHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ResponsesHandler{
		router:    router,
		cache:     responseCache,
		store:     store,
		collector: collector,
		logger:    logger,
	}
}

// ServeHTTP implements http.Handler.
func (h *ResponsesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetRequestID(ctx)

	if r.Method != http.MethodPost {
		errResp := types.NewInvalidRequestError("Method not allowed. Use POST.", "method", types.CodeInvalidValue)
		_ = proxy.WriteJSONResponse(w, http.StatusMethodNotAllowed, errResp)
		return
	}

	req, reqErr := proxy.ParseResponsesRequest(r)
	if reqErr != nil {
		h.logger.WarnContext(ctx, "rejected responses request",
			"request_id", requestID,
			"error", reqErr,
		)
		_ = proxy.WriteErrorResponse(w, reqErr.ToErrorResponse())
		return
	}

	input := []responses.InputItem(req.Input)
	if req.PreviousResponseID != "" {
		prev, ok := h.store.Get(req.PreviousResponseID)
		if !ok {
			h.logger.WarnContext(ctx, "unknown previous_response_id",
				"request_id", requestID,
				"previous_response_id", req.PreviousResponseID,
			)
			errResp := types.NewNotFoundError("Previous response not found: " + req.PreviousResponseID)
			_ = proxy.WriteErrorResponse(w, errResp)
			return
		}
		input = responses.ExpandInput(prev, input)
		req.Input = input
	}

	chatReq, err := responses.ToChatRequest(req)
	if err != nil {
		h.logger.WarnContext(ctx, "untranslatable responses request",
			"request_id", requestID,
			"error", err,
		)
		errResp := types.NewInvalidRequestError(err.Error(), "input", types.CodeInvalidValue)
		_ = proxy.WriteErrorResponse(w, errResp)
		return
	}

	if req.Stream {
		h.serveStream(w, r, req, chatReq, requestID)
		return
	}

	start := time.Now()

	var resp *responses.Response
	if cached, ok := h.cache.Get(ctx, chatReq); ok {
		resp = responses.FromChatResponse(cached)
	} else {
		chatResp, err := h.router.Route(ctx, chatReq)
		if err != nil {
			h.logger.ErrorContext(ctx, "responses request failed",
				"request_id", requestID,
				"model", req.Model,
				"error", err,
			)
			_ = proxy.WriteErrorResponse(w, proxy.HandleError(err))
			return
		}
		h.cache.Set(ctx, chatReq, chatResp)
		resp = responses.FromChatResponse(chatResp)
	}

	resp.Model = req.Model

	h.save(req, resp, input)

	h.logger.InfoContext(ctx, "responses request succeeded",
		"request_id", requestID,
		"model", req.Model,
		"provider", resp.Provider,
		"response_id", resp.ID,
		"cached", resp.Cached,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	_ = proxy.WriteJSONResponse(w, http.StatusOK, resp)
}

// serveStream drives the chunk-to-event emitter over an SSE connection.
func (h *ResponsesHandler) serveStream(w http.ResponseWriter, r *http.Request, req *responses.Request, chatReq *providers.ChatRequest, requestID string) {
	ctx := r.Context()

	reader, err := h.router.RouteStream(ctx, chatReq)
	if err != nil {
		h.logger.ErrorContext(ctx, "responses stream failed to start",
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

	emitter := responses.NewEmitter(req.Model, reader.Provider())

	if err := h.writeEvents(w, emitter.Start()); err != nil {
		return
	}

	for {
		chunk, err := reader.Recv()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if ctx.Err() != nil {
				h.logger.WarnContext(ctx, "client disconnected during responses stream",
					"request_id", requestID,
					"provider", reader.Provider(),
				)
				return
			}
			h.logger.ErrorContext(ctx, "responses stream failed mid-flight",
				"request_id", requestID,
				"provider", reader.Provider(),
				"error", err,
			)
			_ = proxy.WriteSSEEvent(w, emitter.Fail(err))
			_ = proxy.WriteSSEDone(w)
			return
		}

		if err := h.writeEvents(w, emitter.OnChunk(chunk)); err != nil {
			return
		}
	}

	if err := h.writeEvents(w, emitter.Complete()); err != nil {
		return
	}
	_ = proxy.WriteSSEDone(w)

	h.save(req, emitter.Final(), req.Input)

	h.logger.InfoContext(ctx, "responses stream completed",
		"request_id", requestID,
		"model", req.Model,
		"provider", reader.Provider(),
		"response_id", emitter.ResponseID(),
	)
}

// writeEvents writes the events in order, stopping at the first write error.
func (h *ResponsesHandler) writeEvents(w http.ResponseWriter, events []responses.StreamEvent) error {
	for _, ev := range events {
		if err := proxy.WriteSSEEvent(w, ev); err != nil {
			return err
		}
	}
	return nil
}

// save records the response for continuation unless the request opted out.
func (h *ResponsesHandler) save(req *responses.Request, resp *responses.Response, input []responses.InputItem) {
	if resp == nil || !req.StoreAllowed() {
		return
	}
	h.store.Save(resp, input)
	h.collector.SetStoreEntries(h.store.Len())
}
