package responses

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/blueberrycongee/llmux/pkg/providers"
)

// UnsupportedContentError is returned when a request carries an input part
// the adapter cannot translate to chat-completions text.
type UnsupportedContentError struct {
	// PartType is the content part type that cannot be translated.
	PartType string
}

// Error implements the error interface.
func (e *UnsupportedContentError) Error() string {
	return fmt.Sprintf("unsupported input content type %q", e.PartType)
}

// newID mints an identifier with the given prefix, e.g. "resp_a1b2...".
func newID(prefix string) string {
	return prefix + "_" + strings.ReplaceAll(uuid.New().String(), "-", "")
}

// ToChatRequest translates an OpenResponses request into a chat-completions
// request.
//
// Instructions become a leading system message. Each message input item
// becomes one chat message whose content is the concatenation of its
// input_text parts in order; a function_call_output item becomes a tool
// message answering the original call. Image parts are rejected: the
// gateway forwards text only.
func ToChatRequest(req *Request) (*providers.ChatRequest, error) {
	chat := &providers.ChatRequest{
		Model:       req.Model,
		Temperature: req.Temperature,
		TopP:        req.TopP,
		MaxTokens:   req.MaxOutputTokens,
		Stream:      req.Stream,
		Provider:    req.Provider,
		Cache:       req.Cache,
	}

	if req.Instructions != "" {
		chat.Messages = append(chat.Messages, providers.Message{
			Role:    providers.RoleSystem,
			Content: req.Instructions,
		})
	}

	for _, item := range req.Input {
		switch {
		case item.IsMessage():
			text, err := concatText(item.Content)
			if err != nil {
				return nil, err
			}
			role := item.Role
			if role == "" {
				role = providers.RoleUser
			}
			chat.Messages = append(chat.Messages, providers.Message{
				Role:    role,
				Content: text,
			})

		case item.Type == ItemTypeFunctionCallOutput:
			chat.Messages = append(chat.Messages, providers.Message{
				Role:       providers.RoleTool,
				Content:    item.Output,
				ToolCallID: item.CallID,
			})

		default:
			return nil, fmt.Errorf("unsupported input item type %q", item.Type)
		}
	}

	for _, tool := range req.Tools {
		chat.Tools = append(chat.Tools, providers.Tool{
			Type: providers.ToolTypeFunction,
			Function: providers.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}

	if req.ToolChoice != nil {
		chat.ToolChoice = translateToolChoice(req.ToolChoice)
	}

	return chat, nil
}

// concatText joins the input_text parts of a message in order. An image
// part is an error; any other part type is an error too, so a future part
// kind fails loudly instead of being dropped.
func concatText(content ContentList) (string, error) {
	var sb strings.Builder
	for _, part := range content {
		switch part.Type {
		case PartInputText:
			sb.WriteString(part.Text)
		default:
			return "", &UnsupportedContentError{PartType: part.Type}
		}
	}
	return sb.String(), nil
}

// translateToolChoice maps the OpenResponses tool_choice to chat form.
// The string values pass through; the flat {type: function, name} object
// becomes the nested {type: function, function: {name}} form.
func translateToolChoice(choice any) any {
	obj, ok := choice.(map[string]any)
	if !ok {
		return choice
	}
	if obj["type"] != "function" {
		return choice
	}
	name, ok := obj["name"].(string)
	if !ok {
		return choice
	}
	return map[string]any{
		"type":     "function",
		"function": map[string]any{"name": name},
	}
}

// FromChatResponse translates an upstream chat response into an
// OpenResponses response.
//
// For each choice, tool calls become function_call output items first (in
// call order, with the call_id and raw arguments preserved byte for byte),
// then non-empty message content becomes one message item with a single
// output_text part. Usage is renamed to the input/output token vocabulary.
func FromChatResponse(chat *providers.ChatResponse) *Response {
	resp := &Response{
		ID:        newID("resp"),
		Object:    "response",
		Status:    StatusCompleted,
		Output:    []OutputItem{},
		Model:     chat.Model,
		CreatedAt: time.Now().Unix(),
		Provider:  chat.Provider,
		Cached:    chat.Cached,
	}

	for _, choice := range chat.Choices {
		for _, call := range choice.Message.ToolCalls {
			callID := call.ID
			if callID == "" {
				callID = newID("call")
			}
			resp.Output = append(resp.Output, OutputItem{
				Type:      ItemTypeFunctionCall,
				ID:        newID("fc"),
				Status:    StatusCompleted,
				Name:      call.Function.Name,
				CallID:    callID,
				Arguments: call.Function.Arguments,
			})
		}

		if choice.Message.Content != "" {
			resp.Output = append(resp.Output, OutputItem{
				Type:   ItemTypeMessage,
				ID:     newID("msg"),
				Status: StatusCompleted,
				Role:   providers.RoleAssistant,
				Content: []OutputContent{{
					Type:        PartOutputText,
					Text:        choice.Message.Content,
					Annotations: []any{},
				}},
			})
		}
	}

	if chat.Usage != (providers.Usage{}) {
		resp.Usage = &Usage{
			InputTokens:  chat.Usage.PromptTokens,
			OutputTokens: chat.Usage.CompletionTokens,
			TotalTokens:  chat.Usage.TotalTokens,
		}
	}

	return resp
}
