package responses

import (
	"strings"
	"time"

	"github.com/blueberrycongee/llmux/pkg/providers"
)

// Emitter translates a raw chat-completion chunk stream into the typed
// OpenResponses event sequence. It is a single-producer state machine: one
// emitter per request, driven by the consumer (Start, then OnChunk per
// upstream chunk, then Complete or Fail), so downstream backpressure
// propagates naturally.
//
// Guarantees, which the handler relies on for wire correctness:
//   - sequence numbers start at 0 and increase by 1 across all events;
//   - response.created precedes everything, response.completed (or
//     response.failed) ends the stream;
//   - every item's delta events fall strictly between its .added and .done;
//   - each item keeps one fixed output_index across .added/.delta/.done,
//     and the index advances exactly once per finished item.
type Emitter struct {
	seq        int
	responseID string
	model      string
	provider   string
	createdAt  int64

	outputIndex int

	messageOpen    bool
	messageEmitted bool
	messageIndex   int
	messageID      string
	textBuf        strings.Builder

	fnOpen    bool
	fnEmitted bool
	fnIndex   int
	fnItemID  string
	fnCallID  string
	fnName    string
	argsBuf   strings.Builder

	usage *Usage
	final *Response
}

// NewEmitter creates an emitter for one streaming request. The provider is
// the committed upstream, stamped on the terminal response snapshot.
func NewEmitter(model, provider string) *Emitter {
	return &Emitter{
		responseID: newID("resp"),
		model:      model,
		provider:   provider,
		createdAt:  time.Now().Unix(),
	}
}

// ResponseID returns the minted response identifier.
func (e *Emitter) ResponseID() string {
	return e.responseID
}

// Final returns the terminal response snapshot. Valid after Complete.
func (e *Emitter) Final() *Response {
	return e.final
}

// next allocates the next event in sequence.
func (e *Emitter) next(eventType string) StreamEvent {
	ev := StreamEvent{Type: eventType, SequenceNumber: e.seq}
	e.seq++
	return ev
}

// Start emits the opening pair: response.created then response.in_progress,
// both carrying the same placeholder response with empty output.
func (e *Emitter) Start() []StreamEvent {
	created := e.next(EventResponseCreated)
	created.Response = e.snapshot(StatusInProgress)

	inProgress := e.next(EventResponseInProgress)
	inProgress.Response = e.snapshot(StatusInProgress)

	return []StreamEvent{created, inProgress}
}

// OnChunk consumes one upstream chunk and returns the events it produces,
// possibly none (role-only deltas) or several (an item opening plus its
// first delta, or a finish closing every open item).
func (e *Emitter) OnChunk(chunk *providers.ChatChunk) []StreamEvent {
	if chunk.Usage != nil {
		e.usage = &Usage{
			InputTokens:  chunk.Usage.PromptTokens,
			OutputTokens: chunk.Usage.CompletionTokens,
			TotalTokens:  chunk.Usage.TotalTokens,
		}
	}

	var events []StreamEvent

	for _, choice := range chunk.Choices {
		for _, tc := range choice.Delta.ToolCalls {
			if tc.Function.Name != "" && !e.fnOpen && !e.fnEmitted {
				events = append(events, e.openFunctionCall(tc)...)
			}
			if tc.Function.Arguments != "" && e.fnOpen {
				e.argsBuf.WriteString(tc.Function.Arguments)
				ev := e.next(EventFunctionCallArgumentsDelta)
				ev.ItemID = e.fnItemID
				ev.OutputIndex = intp(e.fnIndex)
				ev.Delta = tc.Function.Arguments
				events = append(events, ev)
			}
		}

		if choice.Delta.Content != "" {
			if !e.messageOpen && !e.messageEmitted {
				// Text starting while a function call is still open closes
				// the call first: its arguments are complete once the model
				// moves on to prose, and interleaving two open items would
				// break the added/done pairing.
				if e.fnOpen {
					events = append(events, e.closeFunctionCall()...)
				}
				events = append(events, e.openMessage()...)
			}
			if e.messageOpen {
				e.textBuf.WriteString(choice.Delta.Content)
				ev := e.next(EventOutputTextDelta)
				ev.ItemID = e.messageID
				ev.OutputIndex = intp(e.messageIndex)
				ev.ContentIndex = intp(0)
				ev.Delta = choice.Delta.Content
				events = append(events, ev)
			}
		}

		if choice.FinishReason != nil && *choice.FinishReason != "" {
			if e.fnOpen {
				events = append(events, e.closeFunctionCall()...)
			}
			if e.messageOpen {
				events = append(events, e.closeMessage()...)
			}
		}
	}

	return events
}

// Complete closes any items still open (an upstream that never sent a
// finish_reason) and emits the terminal response.completed event carrying
// the assembled output.
func (e *Emitter) Complete() []StreamEvent {
	var events []StreamEvent

	if e.fnOpen {
		events = append(events, e.closeFunctionCall()...)
	}
	if e.messageOpen {
		events = append(events, e.closeMessage()...)
	}

	e.final = e.snapshot(StatusCompleted)

	ev := e.next(EventResponseCompleted)
	ev.Response = e.final
	return append(events, ev)
}

// Fail emits the terminal response.failed event for a mid-stream error.
func (e *Emitter) Fail(err error) StreamEvent {
	failed := e.snapshot(StatusFailed)
	failed.Error = &ResponseError{
		Code:    "upstream_error",
		Message: err.Error(),
	}

	ev := e.next(EventResponseFailed)
	ev.Response = failed
	return ev
}

// openFunctionCall mints the function-call item and emits its added event.
func (e *Emitter) openFunctionCall(tc providers.ToolCallDelta) []StreamEvent {
	e.fnItemID = newID("fc")
	e.fnCallID = tc.ID
	if e.fnCallID == "" {
		e.fnCallID = newID("call")
	}
	e.fnName = tc.Function.Name
	e.fnIndex = e.outputIndex
	e.fnOpen = true
	e.fnEmitted = true

	item := e.functionCallItem(StatusInProgress)
	ev := e.next(EventOutputItemAdded)
	ev.OutputIndex = intp(e.fnIndex)
	ev.Item = &item
	return []StreamEvent{ev}
}

// closeFunctionCall emits arguments.done and the item's done event, then
// advances the output index past the finished item.
func (e *Emitter) closeFunctionCall() []StreamEvent {
	argsDone := e.next(EventFunctionCallArgumentsDone)
	argsDone.ItemID = e.fnItemID
	argsDone.OutputIndex = intp(e.fnIndex)
	argsDone.Arguments = e.argsBuf.String()

	item := e.functionCallItem(StatusCompleted)
	itemDone := e.next(EventOutputItemDone)
	itemDone.OutputIndex = intp(e.fnIndex)
	itemDone.Item = &item

	e.fnOpen = false
	e.outputIndex = e.fnIndex + 1

	return []StreamEvent{argsDone, itemDone}
}

// openMessage mints the message item and emits its added event plus the
// empty output_text part opening at content index 0.
func (e *Emitter) openMessage() []StreamEvent {
	e.messageID = newID("msg")
	e.messageIndex = e.outputIndex
	e.messageOpen = true
	e.messageEmitted = true

	item := OutputItem{
		Type:    ItemTypeMessage,
		ID:      e.messageID,
		Status:  StatusInProgress,
		Role:    providers.RoleAssistant,
		Content: []OutputContent{},
	}
	added := e.next(EventOutputItemAdded)
	added.OutputIndex = intp(e.messageIndex)
	added.Item = &item

	partAdded := e.next(EventContentPartAdded)
	partAdded.ItemID = e.messageID
	partAdded.OutputIndex = intp(e.messageIndex)
	partAdded.ContentIndex = intp(0)
	partAdded.Part = &OutputContent{Type: PartOutputText, Annotations: []any{}}

	return []StreamEvent{added, partAdded}
}

// closeMessage emits text.done, part.done, and the item's done event, then
// advances the output index past the finished item.
func (e *Emitter) closeMessage() []StreamEvent {
	text := e.textBuf.String()

	textDone := e.next(EventOutputTextDone)
	textDone.ItemID = e.messageID
	textDone.OutputIndex = intp(e.messageIndex)
	textDone.ContentIndex = intp(0)
	textDone.Text = text

	partDone := e.next(EventContentPartDone)
	partDone.ItemID = e.messageID
	partDone.OutputIndex = intp(e.messageIndex)
	partDone.ContentIndex = intp(0)
	partDone.Part = &OutputContent{Type: PartOutputText, Text: text, Annotations: []any{}}

	item := e.messageItem(StatusCompleted)
	itemDone := e.next(EventOutputItemDone)
	itemDone.OutputIndex = intp(e.messageIndex)
	itemDone.Item = &item

	e.messageOpen = false
	e.outputIndex = e.messageIndex + 1

	return []StreamEvent{textDone, partDone, itemDone}
}

// functionCallItem builds the function-call item with the accumulated
// arguments.
func (e *Emitter) functionCallItem(status string) OutputItem {
	return OutputItem{
		Type:      ItemTypeFunctionCall,
		ID:        e.fnItemID,
		Status:    status,
		Name:      e.fnName,
		CallID:    e.fnCallID,
		Arguments: e.argsBuf.String(),
	}
}

// messageItem builds the message item with the accumulated text.
func (e *Emitter) messageItem(status string) OutputItem {
	return OutputItem{
		Type:   ItemTypeMessage,
		ID:     e.messageID,
		Status: status,
		Role:   providers.RoleAssistant,
		Content: []OutputContent{{
			Type:        PartOutputText,
			Text:        e.textBuf.String(),
			Annotations: []any{},
		}},
	}
}

// snapshot builds a response in the given status with the output assembled
// from whatever items have been emitted so far.
func (e *Emitter) snapshot(status string) *Response {
	output := []OutputItem{}
	if e.fnEmitted {
		output = append(output, e.functionCallItem(StatusCompleted))
	}
	if e.messageEmitted {
		output = append(output, e.messageItem(StatusCompleted))
	}

	return &Response{
		ID:        e.responseID,
		Object:    "response",
		Status:    status,
		Output:    output,
		Usage:     e.usage,
		Model:     e.model,
		CreatedAt: e.createdAt,
		Provider:  e.provider,
	}
}

// intp returns a pointer to i for the omitempty index fields.
func intp(i int) *int {
	return &i
}
