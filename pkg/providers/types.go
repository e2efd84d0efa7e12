package providers

import (
	"encoding/json"
	"fmt"
)

// Message roles in the chat-completions protocol.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Finish reasons returned by providers.
const (
	FinishReasonStop          = "stop"
	FinishReasonLength        = "length"
	FinishReasonToolCalls     = "tool_calls"
	FinishReasonContentFilter = "content_filter"
)

// ToolTypeFunction is the only tool type in the protocol today.
const ToolTypeFunction = "function"

// Message is a single chat message.
type Message struct {
	// Role is one of "system", "user", "assistant", or "tool".
	Role string `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Name optionally identifies the message author.
	Name string `json:"name,omitempty"`

	// ToolCalls carries assistant tool invocations.
	ToolCalls []ToolCall `json:"tool_calls,omitempty"`

	// ToolCallID links a tool result message to the call it answers.
	ToolCallID string `json:"tool_call_id,omitempty"`
}

// ToolCall is an assistant request to invoke a tool.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall names a function and carries its raw JSON arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// Tool is a tool definition offered to the model.
type Tool struct {
	Type     string             `json:"type"`
	Function FunctionDefinition `json:"function"`
}

// FunctionDefinition describes a callable function.
type FunctionDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// StopList is the stop field, which clients may send as a single string or
// a list of strings. It always marshals as a list.
type StopList []string

// UnmarshalJSON accepts both the scalar and list forms.
func (s *StopList) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*s = StopList{single}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("stop must be a string or a list of strings")
	}
	*s = list
	return nil
}

// ChatRequest is an OpenAI-compatible chat completion request plus the
// gateway extension fields. Optional sampling parameters are pointers so
// that absent and zero are distinguishable.
type ChatRequest struct {
	Model            string         `json:"model"`
	Messages         []Message      `json:"messages"`
	Temperature      *float64       `json:"temperature,omitempty"`
	TopP             *float64       `json:"top_p,omitempty"`
	MaxTokens        *int           `json:"max_tokens,omitempty"`
	Stream           bool           `json:"stream,omitempty"`
	Stop             StopList       `json:"stop,omitempty"`
	PresencePenalty  *float64       `json:"presence_penalty,omitempty"`
	FrequencyPenalty *float64       `json:"frequency_penalty,omitempty"`
	Tools            []Tool         `json:"tools,omitempty"`
	ToolChoice       any            `json:"tool_choice,omitempty"`
	User             string         `json:"user,omitempty"`
	N                int            `json:"n,omitempty"`
	ResponseFormat   map[string]any `json:"response_format,omitempty"`

	// Provider pins the request to one upstream, bypassing strategy and
	// fallback. Stripped before the request goes upstream.
	Provider string `json:"provider,omitempty"`

	// Cache opts this request out of the response cache when false.
	// Stripped before the request goes upstream.
	Cache *bool `json:"cache,omitempty"`
}

// CacheAllowed reports whether the request may use the response cache.
func (r *ChatRequest) CacheAllowed() bool {
	return r.Cache == nil || *r.Cache
}

// Clone returns a shallow copy. Routing mutates the copy per candidate
// (model rewrite, extension stripping) without touching the original.
func (r *ChatRequest) Clone() *ChatRequest {
	cp := *r
	return &cp
}

// Upstream returns the request as it goes over the wire: gateway extension
// fields stripped and the stream flag forced to the invocation mode.
func (r *ChatRequest) Upstream(model string, stream bool) *ChatRequest {
	cp := r.Clone()
	cp.Model = model
	cp.Stream = stream
	cp.Provider = ""
	cp.Cache = nil
	return cp
}

// ChatResponse is an OpenAI-compatible chat completion response plus the
// gateway fields provider and cached.
type ChatResponse struct {
	ID                string   `json:"id"`
	Object            string   `json:"object"`
	Created           int64    `json:"created"`
	Model             string   `json:"model"`
	Choices           []Choice `json:"choices"`
	Usage             Usage    `json:"usage"`
	SystemFingerprint string   `json:"system_fingerprint,omitempty"`

	// Provider names the upstream that served the response.
	Provider string `json:"provider,omitempty"`

	// Cached is true when the response was served from the cache.
	Cached bool `json:"cached,omitempty"`
}

// Choice is a single completion choice.
type Choice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

// Usage contains token accounting for a completion.
type Usage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ChatChunk is one frame of a streaming completion.
type ChatChunk struct {
	ID      string        `json:"id"`
	Object  string        `json:"object"`
	Created int64         `json:"created"`
	Model   string        `json:"model"`
	Choices []ChunkChoice `json:"choices"`
	Usage   *Usage        `json:"usage,omitempty"`
}

// ChunkChoice is a single choice inside a stream frame.
type ChunkChoice struct {
	Index        int     `json:"index"`
	Delta        Delta   `json:"delta"`
	FinishReason *string `json:"finish_reason"`
}

// Delta is the incremental payload of a stream frame.
type Delta struct {
	Role      string          `json:"role,omitempty"`
	Content   string          `json:"content,omitempty"`
	ToolCalls []ToolCallDelta `json:"tool_calls,omitempty"`
}

// ToolCallDelta is an incremental tool call fragment. The name and id arrive
// on the first fragment for an index; later fragments append argument text.
type ToolCallDelta struct {
	Index    int               `json:"index"`
	ID       string            `json:"id,omitempty"`
	Type     string            `json:"type,omitempty"`
	Function FunctionCallDelta `json:"function"`
}

// FunctionCallDelta carries incremental function call fields.
type FunctionCallDelta struct {
	Name      string `json:"name,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}
