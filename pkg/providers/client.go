package providers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const (
	completionsPath = "/chat/completions"
	modelsPath      = "/models"

	// maxErrorBody caps how much of an upstream error body is read for the
	// error message.
	maxErrorBody = 8 * 1024
)

// Client is the shared HTTP client for all providers. Per-call deadlines
// come from the descriptor, so the http.Client itself carries no timeout
// (a client-level timeout would cut long streams short).
type Client struct {
	http   *http.Client
	logger *slog.Logger
}

// NewClient creates a client with pooled connections.
func NewClient(logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		ForceAttemptHTTP2:   true,
	}
	return &Client{
		http:   &http.Client{Transport: transport},
		logger: logger,
	}
}

// Complete performs a unary chat completion against the descriptor.
// The gateway extension fields are stripped and stream is forced off before
// the request goes upstream. On success the response is stamped with the
// provider name.
func (c *Client) Complete(ctx context.Context, d *Descriptor, req *ChatRequest) (*ChatResponse, error) {
	upstream := req.Upstream(req.Model, false)

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	resp, err := c.post(ctx, d, completionsPath, upstream)
	if err != nil {
		return nil, c.wrapTransportError(d, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.errorFromStatus(d, resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, c.wrapTransportError(d, err)
	}

	var completion ChatResponse
	if err := json.Unmarshal(body, &completion); err != nil {
		return nil, &ParseError{Provider: d.Name, RawResponse: excerpt(body), Cause: err}
	}
	if len(completion.Choices) == 0 {
		return nil, &ParseError{
			Provider:    d.Name,
			RawResponse: excerpt(body),
			Cause:       fmt.Errorf("no choices in response"),
		}
	}

	completion.Provider = d.Name
	return &completion, nil
}

// Stream performs a streaming chat completion against the descriptor.
// It returns once the upstream responds with a 200 header; that header is
// the commit point, after which the caller owns the stream and no fallback
// happens. The descriptor timeout bounds the whole stream, headers and body.
func (c *Client) Stream(ctx context.Context, d *Descriptor, req *ChatRequest) (*StreamReader, error) {
	upstream := req.Upstream(req.Model, true)

	ctx, cancel := context.WithTimeout(ctx, d.Timeout)

	resp, err := c.post(ctx, d, completionsPath, upstream)
	if err != nil {
		cancel()
		return nil, c.wrapTransportError(d, err)
	}

	if resp.StatusCode != http.StatusOK {
		err := c.errorFromStatus(d, resp)
		resp.Body.Close()
		cancel()
		return nil, err
	}

	return newStreamReader(ctx, cancel, d.Name, resp.Body, c.logger), nil
}

// post marshals body and issues a POST to the descriptor path.
func (c *Client) post(ctx context.Context, d *Descriptor, path string, body any) (*http.Response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	c.setHeaders(req, d)

	return c.http.Do(req)
}

// setHeaders applies the standard and descriptor headers. Extra headers are
// set last so a descriptor can deliberately override the standard ones.
func (c *Client) setHeaders(req *http.Request, d *Descriptor) {
	req.Header.Set("Content-Type", "application/json")
	if d.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+d.APIKey)
	}
	for k, v := range d.ExtraHeaders {
		req.Header.Set(k, v)
	}
}

// wrapTransportError classifies transport-level failures.
func (c *Client) wrapTransportError(d *Descriptor, err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &TimeoutError{Provider: d.Name, Timeout: d.Timeout}
	}
	return &ProviderError{Provider: d.Name, Message: "request failed", Cause: err}
}

// errorFromStatus maps a non-200 upstream response to a typed error.
func (c *Client) errorFromStatus(d *Descriptor, resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	msg := upstreamErrorMessage(body)

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{Provider: d.Name, Message: msg}
	case http.StatusTooManyRequests:
		return &RateLimitError{
			Provider:   d.Name,
			RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
			Message:    msg,
		}
	default:
		return &ProviderError{Provider: d.Name, StatusCode: resp.StatusCode, Message: msg}
	}
}

// upstreamErrorMessage extracts the message from an OpenAI-style error body,
// falling back to a body excerpt.
func upstreamErrorMessage(body []byte) string {
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	if len(body) == 0 {
		return "upstream returned an error with an empty body"
	}
	return excerpt(body)
}

// parseRetryAfter parses a Retry-After header value in seconds.
func parseRetryAfter(value string) time.Duration {
	if value == "" {
		return 0
	}
	if secs, err := strconv.Atoi(value); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// excerpt truncates a body for inclusion in error messages.
func excerpt(body []byte) string {
	const max = 200
	if len(body) > max {
		return string(body[:max]) + "..."
	}
	return string(body)
}
