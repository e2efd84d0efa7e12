package responses

import (
	"encoding/json"
	"fmt"
)

// Response statuses.
const (
	StatusInProgress = "in_progress"
	StatusIncomplete = "incomplete"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Item types.
const (
	ItemTypeMessage            = "message"
	ItemTypeFunctionCall       = "function_call"
	ItemTypeFunctionCallOutput = "function_call_output"
)

// Content part types.
const (
	PartInputText  = "input_text"
	PartInputImage = "input_image"
	PartOutputText = "output_text"
	PartRefusal    = "refusal"
)

// Stream event types, in the order a typical stream emits them.
const (
	EventResponseCreated            = "response.created"
	EventResponseInProgress         = "response.in_progress"
	EventOutputItemAdded            = "response.output_item.added"
	EventOutputItemDone             = "response.output_item.done"
	EventContentPartAdded           = "response.content_part.added"
	EventContentPartDone            = "response.content_part.done"
	EventOutputTextDelta            = "response.output_text.delta"
	EventOutputTextDone             = "response.output_text.done"
	EventFunctionCallArgumentsDelta = "response.function_call_arguments.delta"
	EventFunctionCallArgumentsDone  = "response.function_call_arguments.done"
	EventResponseCompleted          = "response.completed"
	EventResponseFailed             = "response.failed"
)

// Request is an inbound OpenResponses request. Input accepts both the bare
// string shorthand and the item array form.
type Request struct {
	Model              string    `json:"model"`
	Input              InputList `json:"input,omitempty"`
	Instructions       string    `json:"instructions,omitempty"`
	MaxOutputTokens    *int      `json:"max_output_tokens,omitempty"`
	Temperature        *float64  `json:"temperature,omitempty"`
	TopP               *float64  `json:"top_p,omitempty"`
	Tools              []ToolDef `json:"tools,omitempty"`
	ToolChoice         any       `json:"tool_choice,omitempty"`
	PreviousResponseID string    `json:"previous_response_id,omitempty"`
	Stream             bool      `json:"stream,omitempty"`

	// Store controls whether the response is kept for conversation
	// continuation. Absent means store.
	Store *bool `json:"store,omitempty"`

	// Provider and Cache are the same gateway extensions the chat endpoint
	// accepts; they are forwarded into the translated chat request.
	Provider string `json:"provider,omitempty"`
	Cache    *bool  `json:"cache,omitempty"`
}

// StoreAllowed reports whether the response may be saved for continuation.
func (r *Request) StoreAllowed() bool {
	return r.Store == nil || *r.Store
}

// ToolDef is the flat OpenResponses tool definition.
type ToolDef struct {
	Type        string         `json:"type"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	Parameters  map[string]any `json:"parameters,omitempty"`
}

// InputList is the input field: either a bare string (shorthand for a single
// user message) or an array of input items.
type InputList []InputItem

// UnmarshalJSON accepts both the string shorthand and the array form.
func (l *InputList) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*l = InputList{{
			Type:    ItemTypeMessage,
			Role:    "user",
			Content: ContentList{{Type: PartInputText, Text: text}},
		}}
		return nil
	}

	var items []InputItem
	if err := json.Unmarshal(data, &items); err != nil {
		return fmt.Errorf("input must be a string or an array of input items")
	}
	*l = items
	return nil
}

// InputItem is one element of a request's input: a message or the output of
// a previously requested function call. An absent type means message.
type InputItem struct {
	Type    string      `json:"type,omitempty"`
	Role    string      `json:"role,omitempty"`
	Content ContentList `json:"content,omitempty"`

	// CallID and Output carry a function_call_output item.
	CallID string `json:"call_id,omitempty"`
	Output string `json:"output,omitempty"`
}

// IsMessage reports whether the item is a message (explicitly or by the
// absent-type default).
func (it *InputItem) IsMessage() bool {
	return it.Type == "" || it.Type == ItemTypeMessage
}

// ContentList is a message's content: either a bare string (shorthand for
// one input_text part) or an array of typed parts.
type ContentList []ContentPart

// UnmarshalJSON accepts both the string shorthand and the array form.
func (l *ContentList) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*l = ContentList{{Type: PartInputText, Text: text}}
		return nil
	}

	var parts []ContentPart
	if err := json.Unmarshal(data, &parts); err != nil {
		return fmt.Errorf("content must be a string or an array of content parts")
	}
	*l = parts
	return nil
}

// ContentPart is one typed piece of input content.
type ContentPart struct {
	Type     string `json:"type"`
	Text     string `json:"text,omitempty"`
	ImageURL string `json:"image_url,omitempty"`
}

// OutputItem is one element of a response's output: an assistant message or
// a function call the model wants executed.
type OutputItem struct {
	Type   string `json:"type"`
	ID     string `json:"id,omitempty"`
	Status string `json:"status,omitempty"`

	// Role and Content carry a message item.
	Role    string          `json:"role,omitempty"`
	Content []OutputContent `json:"content,omitempty"`

	// Name, CallID, and Arguments carry a function_call item. Arguments is
	// the raw JSON string exactly as the provider produced it.
	Name      string `json:"name,omitempty"`
	CallID    string `json:"call_id,omitempty"`
	Arguments string `json:"arguments,omitempty"`
}

// OutputContent is one part of a message output item.
type OutputContent struct {
	Type string `json:"type"`

	// Text and Annotations carry an output_text part. Annotations is always
	// present (possibly empty) on the wire.
	Text        string `json:"text,omitempty"`
	Annotations []any  `json:"annotations"`

	// Refusal carries a refusal part.
	Refusal string `json:"refusal,omitempty"`
}

// ResponseError describes a failed response.
type ResponseError struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Usage is token accounting in OpenResponses naming.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
	TotalTokens  int `json:"total_tokens"`
}

// Response is an OpenResponses response plus the gateway fields provider
// and cached.
type Response struct {
	ID        string         `json:"id"`
	Object    string         `json:"object"`
	Status    string         `json:"status"`
	Output    []OutputItem   `json:"output"`
	Error     *ResponseError `json:"error,omitempty"`
	Usage     *Usage         `json:"usage,omitempty"`
	Model     string         `json:"model"`
	CreatedAt int64          `json:"created_at"`

	// Provider names the upstream that served the response.
	Provider string `json:"provider,omitempty"`

	// Cached is true when the response was served from the cache.
	Cached bool `json:"cached,omitempty"`
}

// StreamEvent is one typed frame of a Responses stream. Every event carries
// the per-stream sequence number; the remaining fields depend on Type.
// Index fields are pointers so index zero survives omitempty.
type StreamEvent struct {
	Type           string `json:"type"`
	SequenceNumber int    `json:"sequence_number"`

	Response     *Response      `json:"response,omitempty"`
	Item         *OutputItem    `json:"item,omitempty"`
	OutputIndex  *int           `json:"output_index,omitempty"`
	ContentIndex *int           `json:"content_index,omitempty"`
	ItemID       string         `json:"item_id,omitempty"`
	Delta        string         `json:"delta,omitempty"`
	Text         string         `json:"text,omitempty"`
	Arguments    string         `json:"arguments,omitempty"`
	Part         *OutputContent `json:"part,omitempty"`
}
