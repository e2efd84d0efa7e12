package responses

import (
	"fmt"
	"testing"
	"time"
)

func storedResponse(id string) *Response {
	return &Response{
		ID:     id,
		Object: "response",
		Status: StatusCompleted,
		Output: []OutputItem{{
			Type:   ItemTypeMessage,
			Role:   "assistant",
			Status: StatusCompleted,
			Content: []OutputContent{{
				Type:        PartOutputText,
				Text:        "answer for " + id,
				Annotations: []any{},
			}},
		}},
		Model: "llama-70b",
	}
}

func userInput(text string) []InputItem {
	return []InputItem{{
		Type:    ItemTypeMessage,
		Role:    "user",
		Content: ContentList{{Type: PartInputText, Text: text}},
	}}
}

func TestStoreSaveAndGet(t *testing.T) {
	s := NewStore(10, time.Minute)
	defer s.Close()

	s.Save(storedResponse("resp_1"), userInput("hello"))

	rec, ok := s.Get("resp_1")
	if !ok {
		t.Fatal("expected a hit")
	}
	if rec.Response.ID != "resp_1" {
		t.Errorf("unexpected response: %q", rec.Response.ID)
	}
	if len(rec.Input) != 1 || rec.Input[0].Content[0].Text != "hello" {
		t.Errorf("input not preserved: %+v", rec.Input)
	}

	if _, ok := s.Get("resp_unknown"); ok {
		t.Error("unknown id should miss")
	}
}

func TestStoreIgnoresUnsaveable(t *testing.T) {
	s := NewStore(10, time.Minute)
	defer s.Close()

	s.Save(nil, nil)
	s.Save(&Response{}, nil) // empty id

	if s.Len() != 0 {
		t.Errorf("nothing should have been stored, len=%d", s.Len())
	}
}

func TestStoreExpiry(t *testing.T) {
	s := NewStore(10, 10*time.Millisecond)
	defer s.Close()

	s.Save(storedResponse("resp_1"), nil)
	time.Sleep(20 * time.Millisecond)

	if _, ok := s.Get("resp_1"); ok {
		t.Error("expired record should miss")
	}
	if s.Len() != 0 {
		t.Errorf("expired record should be removed lazily, len=%d", s.Len())
	}
}

func TestStoreLRUEviction(t *testing.T) {
	s := NewStore(3, time.Minute)
	defer s.Close()

	for i := 1; i <= 3; i++ {
		s.Save(storedResponse(fmt.Sprintf("resp_%d", i)), nil)
	}

	// Touch resp_1 so resp_2 is the eviction candidate.
	if _, ok := s.Get("resp_1"); !ok {
		t.Fatal("resp_1 should be present")
	}

	s.Save(storedResponse("resp_4"), nil)

	if _, ok := s.Get("resp_2"); ok {
		t.Error("least recently used record should have been evicted")
	}
	if _, ok := s.Get("resp_1"); !ok {
		t.Error("recently used record should survive")
	}
	if s.Len() != 3 {
		t.Errorf("store should stay at its cap, len=%d", s.Len())
	}
}

func TestStoreOverwriteSameID(t *testing.T) {
	s := NewStore(10, time.Minute)
	defer s.Close()

	s.Save(storedResponse("resp_1"), userInput("first"))
	s.Save(storedResponse("resp_1"), userInput("second"))

	if s.Len() != 1 {
		t.Errorf("overwrite should not grow the store, len=%d", s.Len())
	}
	rec, _ := s.Get("resp_1")
	if rec.Input[0].Content[0].Text != "second" {
		t.Error("overwrite should replace the record")
	}
}

func TestStoreDelete(t *testing.T) {
	s := NewStore(10, time.Minute)
	defer s.Close()

	s.Save(storedResponse("resp_1"), nil)
	s.Delete("resp_1")
	s.Delete("resp_1") // deleting twice is fine

	if _, ok := s.Get("resp_1"); ok {
		t.Error("deleted record should miss")
	}
}

func TestStoreDefaults(t *testing.T) {
	s := NewStore(0, 0)
	defer s.Close()

	// Defaults must be usable immediately.
	s.Save(storedResponse("resp_1"), nil)
	if _, ok := s.Get("resp_1"); !ok {
		t.Error("store with default limits should work")
	}
}

func TestExpandInputProjectsOutputs(t *testing.T) {
	prev := &StoredRecord{
		Input: userInput("What's the weather in Paris?"),
		Response: &Response{
			ID:     "resp_1",
			Status: StatusCompleted,
			Output: []OutputItem{
				{
					Type:      ItemTypeFunctionCall,
					CallID:    "call_1",
					Name:      "get_weather",
					Arguments: `{"city":"Paris"}`,
				},
				{
					Type: ItemTypeMessage,
					Role: "assistant",
					Content: []OutputContent{{
						Type:        PartOutputText,
						Text:        "It is sunny.",
						Annotations: []any{},
					}},
				},
			},
		},
	}

	next := userInput("And tomorrow?")
	expanded := ExpandInput(prev, next)

	if len(expanded) != 4 {
		t.Fatalf("expected 4 items, got %d", len(expanded))
	}

	// Prior input leads.
	if expanded[0].Content[0].Text != "What's the weather in Paris?" {
		t.Errorf("prior input should lead: %+v", expanded[0])
	}

	// The function call is projected to a placeholder output.
	fnOut := expanded[1]
	if fnOut.Type != ItemTypeFunctionCallOutput || fnOut.CallID != "call_1" {
		t.Errorf("function call not projected: %+v", fnOut)
	}
	if fnOut.Output != "" {
		t.Errorf("placeholder output should be empty: %q", fnOut.Output)
	}

	// The assistant message is projected with output_text turned to input_text.
	msg := expanded[2]
	if msg.Type != ItemTypeMessage || msg.Role != "assistant" {
		t.Errorf("message not projected: %+v", msg)
	}
	if len(msg.Content) != 1 || msg.Content[0].Type != PartInputText || msg.Content[0].Text != "It is sunny." {
		t.Errorf("message content not retyped: %+v", msg.Content)
	}

	// The new input closes the transcript.
	if expanded[3].Content[0].Text != "And tomorrow?" {
		t.Errorf("new input should come last: %+v", expanded[3])
	}
}
