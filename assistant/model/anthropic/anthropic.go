// Package anthropic adapts Anthropic's Claude models to the model.ChatModel interface.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/dshills/assistant-go/assistant/model"
)

// DefaultModel is used when no model name is provided.
const DefaultModel = "claude-3-5-sonnet-20241022"

// defaultMaxTokens bounds the response size; Claude requires an explicit limit.
const defaultMaxTokens = 4096

// ChatModel implements model.ChatModel using Anthropic's Claude API.
//
// It wraps the official anthropic-sdk-go client and converts between the
// standard message format and Claude's content-block format, including
// tool_use and tool_result blocks for tool round-trips.
//
// Safe for concurrent use after creation.
//
// Example usage:
//
//	m := anthropic.NewChatModel(apiKey, "claude-3-5-sonnet-20241022")
//	out, err := m.Chat(ctx, messages, tools)
type ChatModel struct {
	client    *anthropic.Client
	modelName string
	maxTokens int64
}

// NewChatModel creates a new Anthropic ChatModel.
//
// The modelName should be one of Claude's available models
// (e.g. "claude-3-5-sonnet-20241022", "claude-3-haiku-20240307").
// Empty string uses DefaultModel. The API key can be obtained from
// https://console.anthropic.com/; an empty apiKey falls back to the
// ANTHROPIC_API_KEY environment variable.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = DefaultModel
	}

	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := anthropic.NewClient(opts...)
	return &ChatModel{
		client:    &client,
		modelName: modelName,
		maxTokens: defaultMaxTokens,
	}
}

// Chat implements the model.ChatModel interface.
//
// System messages are lifted into Claude's dedicated system field. Tool-role
// messages become tool_result blocks on a user turn, and assistant messages
// that carried tool calls are replayed as tool_use blocks so the provider
// sees a consistent conversation.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, tools []model.ToolSpec) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	params, err := m.buildParams(messages, tools)
	if err != nil {
		return model.ChatOut{}, err
	}

	message, err := m.client.Messages.New(ctx, params)
	if err != nil {
		return model.ChatOut{}, mapError(err)
	}

	return parseMessage(message)
}

// ModelName returns the configured model identifier.
func (m *ChatModel) ModelName() string {
	return m.modelName
}

// buildParams converts standard messages and tool specs into SDK params.
func (m *ChatModel) buildParams(messages []model.Message, tools []model.ToolSpec) (anthropic.MessageNewParams, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(m.modelName),
		MaxTokens: m.maxTokens,
	}

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: msg.Content})

		case model.RoleUser:
			params.Messages = append(params.Messages,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))

		case model.RoleAssistant:
			blocks := make([]anthropic.ContentBlockParamUnion, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, call.Input, call.Name))
			}
			if len(blocks) == 0 {
				blocks = append(blocks, anthropic.NewTextBlock(""))
			}
			params.Messages = append(params.Messages, anthropic.NewAssistantMessage(blocks...))

		case model.RoleTool:
			params.Messages = append(params.Messages,
				anthropic.NewUserMessage(anthropic.NewToolResultBlock(msg.ToolCallID, msg.Content, false)))

		default:
			return anthropic.MessageNewParams{}, fmt.Errorf("unsupported message role: %q", msg.Role)
		}
	}

	for _, spec := range tools {
		toolParam := anthropic.ToolParam{
			Name:        spec.Name,
			Description: anthropic.String(spec.Description),
			InputSchema: toInputSchema(spec.Schema),
		}
		params.Tools = append(params.Tools, anthropic.ToolUnionParam{OfTool: &toolParam})
	}

	return params, nil
}

// toInputSchema extracts the properties/required fields from a JSON schema map.
func toInputSchema(schema map[string]interface{}) anthropic.ToolInputSchemaParam {
	out := anthropic.ToolInputSchemaParam{}
	if schema == nil {
		return out
	}
	if props, ok := schema["properties"]; ok {
		out.Properties = props
	}
	if required, ok := schema["required"]; ok {
		out.Required = toStringSlice(required)
	}
	return out
}

func toStringSlice(v interface{}) []string {
	switch vals := v.(type) {
	case []string:
		return vals
	case []interface{}:
		out := make([]string, 0, len(vals))
		for _, item := range vals {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// parseMessage converts a Claude message into the standard ChatOut.
func parseMessage(message *anthropic.Message) (model.ChatOut, error) {
	if message == nil {
		return model.ChatOut{}, errors.New("no response from Anthropic API")
	}

	out := model.ChatOut{
		Usage: model.Usage{
			InputTokens:  int(message.Usage.InputTokens),
			OutputTokens: int(message.Usage.OutputTokens),
		},
	}

	var text strings.Builder
	for _, block := range message.Content {
		switch block.Type {
		case "text":
			text.WriteString(block.Text)
		case "tool_use":
			var input map[string]interface{}
			if len(block.Input) > 0 {
				if err := json.Unmarshal(block.Input, &input); err != nil {
					return model.ChatOut{}, fmt.Errorf("failed to decode tool_use input: %w", err)
				}
			}
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				ID:    block.ID,
				Name:  block.Name,
				Input: input,
			})
		}
	}
	out.Text = text.String()

	return out, nil
}

// mapError annotates provider failures while preserving context errors.
func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return fmt.Errorf("Anthropic API error: %w", err)
}
