package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"strings"
)

const (
	// ssePrefix marks a data line in a text/event-stream body.
	ssePrefix = "data: "

	// sseDone is the terminal data payload of a chat-completions stream.
	sseDone = "[DONE]"

	// maxStreamLine bounds a single SSE line. Provider chunks are small, but
	// tool-call argument deltas can carry large JSON payloads.
	maxStreamLine = 1024 * 1024
)

// StreamReader is a pull-based reader over an upstream SSE stream. Each call
// to Recv returns the next parsed chunk; the consumer drives the pace, so
// downstream backpressure propagates to the upstream socket naturally.
type StreamReader struct {
	provider string
	body     io.ReadCloser
	scanner  *bufio.Scanner
	ctx      context.Context
	cancel   context.CancelFunc
	logger   *slog.Logger
	closed   bool
}

// newStreamReader wraps a committed upstream response body. The cancel func
// releases the per-call timeout context when the stream is closed.
func newStreamReader(ctx context.Context, cancel context.CancelFunc, provider string, body io.ReadCloser, logger *slog.Logger) *StreamReader {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), maxStreamLine)

	return &StreamReader{
		provider: provider,
		body:     body,
		scanner:  scanner,
		ctx:      ctx,
		cancel:   cancel,
		logger:   logger,
	}
}

// Provider returns the name of the upstream serving this stream.
func (s *StreamReader) Provider() string {
	return s.provider
}

// Recv returns the next chunk from the stream.
//
// It returns io.EOF when the upstream sends the [DONE] marker or closes the
// body. Blank lines, SSE comments (lines starting with ":"), and non-data
// lines are skipped. A data line that fails to parse as JSON is logged and
// skipped rather than terminating the stream; providers occasionally emit
// keepalives or non-JSON frames mid-stream.
func (s *StreamReader) Recv() (*ChatChunk, error) {
	if s.closed {
		return nil, io.EOF
	}

	for {
		select {
		case <-s.ctx.Done():
			return nil, &StreamError{Provider: s.provider, Message: "stream cancelled", Cause: s.ctx.Err()}
		default:
		}

		if !s.scanner.Scan() {
			if err := s.scanner.Err(); err != nil {
				return nil, &StreamError{Provider: s.provider, Message: "failed to read stream", Cause: err}
			}
			return nil, io.EOF
		}

		line := s.scanner.Text()

		if line == "" || strings.HasPrefix(line, ":") {
			continue
		}
		if !strings.HasPrefix(line, ssePrefix) {
			continue
		}

		data := strings.TrimPrefix(line, ssePrefix)
		if data == sseDone {
			return nil, io.EOF
		}

		var chunk ChatChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			s.logger.Warn("skipping malformed stream chunk",
				"provider", s.provider,
				"error", err,
			)
			continue
		}

		return &chunk, nil
	}
}

// Close releases the stream. Safe to call more than once.
func (s *StreamReader) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	if s.cancel != nil {
		s.cancel()
	}
	return s.body.Close()
}
