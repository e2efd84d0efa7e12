package providers

import (
	"time"

	"github.com/blueberrycongee/llmux/pkg/providers"
)

// TestDescriptor returns a descriptor pointing at a test base URL.
func TestDescriptor(name, baseURL string, models ...string) *providers.Descriptor {
	return &providers.Descriptor{
		Name:    name,
		BaseURL: baseURL,
		APIKey:  "test-key",
		Models:  models,
		Timeout: 5 * time.Second,
	}
}

// TestMessage creates a test message.
func TestMessage(role, content string) providers.Message {
	return providers.Message{
		Role:    role,
		Content: content,
	}
}

// TestChatRequest creates a test chat request.
func TestChatRequest(model string, messages ...providers.Message) *providers.ChatRequest {
	return &providers.ChatRequest{
		Model:    model,
		Messages: messages,
	}
}

// TestStreamRequest creates a test streaming chat request.
func TestStreamRequest(model string, messages ...providers.Message) *providers.ChatRequest {
	req := TestChatRequest(model, messages...)
	req.Stream = true
	return req
}
