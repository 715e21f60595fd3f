// Package openai adapts OpenAI chat models to the model.ChatModel interface.
package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"

	"github.com/dshills/assistant-go/assistant/model"
)

// DefaultModel is used when no model name is provided.
const DefaultModel = "gpt-4o"

// ChatModel implements model.ChatModel for OpenAI's API.
//
// Provides access to OpenAI models (GPT-4o, GPT-4, etc.) with:
//   - Automatic retry logic for transient errors
//   - Rate limit handling
//   - Tool/function calling support
//   - Streaming responses
//   - Context cancellation
//
// Safe for concurrent use; the underlying SDK client handles
// thread-safety internally.
//
// Example usage:
//
//	m := openai.NewChatModel(os.Getenv("OPENAI_API_KEY"), "gpt-4o")
//	out, err := m.Chat(ctx, []model.Message{
//	    {Role: model.RoleUser, Content: "What is the capital of France?"},
//	}, nil)
type ChatModel struct {
	client     *openai.Client
	modelName  string
	maxRetries int
	retryDelay time.Duration
}

// NewChatModel creates a new OpenAI ChatModel.
//
// Parameters:
//   - apiKey: OpenAI API key (get from https://platform.openai.com/api-keys).
//     Empty string falls back to the OPENAI_API_KEY environment variable.
//   - modelName: Model to use (e.g., "gpt-4o", "gpt-4o-mini"). Empty string uses DefaultModel.
//
// The model is configured with 3 retry attempts for transient errors and a
// 1 second base delay that scales up for rate limit errors.
func NewChatModel(apiKey, modelName string) *ChatModel {
	if modelName == "" {
		modelName = DefaultModel
	}

	// Empty apiKey leaves the SDK's OPENAI_API_KEY env lookup in place.
	var opts []option.RequestOption
	if apiKey != "" {
		opts = append(opts, option.WithAPIKey(apiKey))
	}
	client := openai.NewClient(opts...)

	return &ChatModel{
		client:     &client,
		modelName:  modelName,
		maxRetries: 3,
		retryDelay: time.Second,
	}
}

// Chat implements the model.ChatModel interface.
//
// Sends messages to OpenAI's API and returns the response.
// Automatically retries on transient errors (network issues, rate limits).
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, tools []model.ToolSpec) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	params, err := m.buildParams(messages, tools)
	if err != nil {
		return model.ChatOut{}, err
	}

	var lastErr error
	for attempt := 0; attempt <= m.maxRetries; attempt++ {
		completion, err := m.client.Chat.Completions.New(ctx, params)
		if err == nil {
			return parseCompletion(completion)
		}

		lastErr = err

		// Don't retry on non-transient errors
		if !isTransientError(err) {
			return model.ChatOut{}, err
		}

		if attempt >= m.maxRetries {
			break
		}

		// Wait before retry, backing off further for rate limits
		delay := m.retryDelay
		if isRateLimitError(err) {
			delay = m.retryDelay * time.Duration(attempt+1)
		}

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return model.ChatOut{}, ctx.Err()
		}
	}

	return model.ChatOut{}, fmt.Errorf("OpenAI API failed after %d retries: %w", m.maxRetries, lastErr)
}

// ChatStream implements model.StreamingChatModel.
//
// Text deltas are delivered to fn as they arrive. The returned ChatOut
// contains the accumulated text, tool calls, and usage. Streaming requests
// are not retried; transient failures surface to the caller.
func (m *ChatModel) ChatStream(ctx context.Context, messages []model.Message, tools []model.ToolSpec, fn func(delta string) error) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}

	params, err := m.buildParams(messages, tools)
	if err != nil {
		return model.ChatOut{}, err
	}

	stream := m.client.Chat.Completions.NewStreaming(ctx, params)
	acc := openai.ChatCompletionAccumulator{}

	for stream.Next() {
		chunk := stream.Current()
		acc.AddChunk(chunk)

		if fn != nil && len(chunk.Choices) > 0 {
			if delta := chunk.Choices[0].Delta.Content; delta != "" {
				if err := fn(delta); err != nil {
					return model.ChatOut{}, err
				}
			}
		}
	}
	if err := stream.Err(); err != nil {
		return model.ChatOut{}, fmt.Errorf("OpenAI stream failed: %w", err)
	}

	return parseAccumulated(acc)
}

// ModelName returns the configured model identifier.
func (m *ChatModel) ModelName() string {
	return m.modelName
}

// buildParams converts standard messages and tool specs into SDK params.
func (m *ChatModel) buildParams(messages []model.Message, tools []model.ToolSpec) (openai.ChatCompletionNewParams, error) {
	params := openai.ChatCompletionNewParams{
		Model:    shared.ChatModel(m.modelName),
		Messages: make([]openai.ChatCompletionMessageParamUnion, 0, len(messages)),
	}

	for _, msg := range messages {
		converted, err := convertMessage(msg)
		if err != nil {
			return openai.ChatCompletionNewParams{}, err
		}
		params.Messages = append(params.Messages, converted)
	}

	for _, spec := range tools {
		params.Tools = append(params.Tools, openai.ChatCompletionToolParam{
			Function: shared.FunctionDefinitionParam{
				Name:        spec.Name,
				Description: openai.String(spec.Description),
				Parameters:  shared.FunctionParameters(spec.Schema),
			},
		})
	}

	return params, nil
}

// convertMessage maps a standard message onto the SDK's role unions.
func convertMessage(msg model.Message) (openai.ChatCompletionMessageParamUnion, error) {
	switch msg.Role {
	case model.RoleSystem:
		return openai.SystemMessage(msg.Content), nil
	case model.RoleUser:
		return openai.UserMessage(msg.Content), nil
	case model.RoleAssistant:
		if len(msg.ToolCalls) == 0 {
			return openai.AssistantMessage(msg.Content), nil
		}
		assistant := openai.ChatCompletionAssistantMessageParam{}
		if msg.Content != "" {
			assistant.Content.OfString = openai.String(msg.Content)
		}
		for _, call := range msg.ToolCalls {
			args, err := json.Marshal(call.Input)
			if err != nil {
				return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("failed to marshal tool call input: %w", err)
			}
			assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageToolCallFunctionParam{
					Name:      call.Name,
					Arguments: string(args),
				},
			})
		}
		return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}, nil
	case model.RoleTool:
		return openai.ToolMessage(msg.Content, msg.ToolCallID), nil
	default:
		return openai.ChatCompletionMessageParamUnion{}, fmt.Errorf("unsupported message role: %q", msg.Role)
	}
}

// parseCompletion converts an SDK completion into the standard ChatOut.
func parseCompletion(completion *openai.ChatCompletion) (model.ChatOut, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return model.ChatOut{}, errors.New("no response from OpenAI API")
	}

	choice := completion.Choices[0].Message
	out := model.ChatOut{
		Text: choice.Content,
		Usage: model.Usage{
			InputTokens:  int(completion.Usage.PromptTokens),
			OutputTokens: int(completion.Usage.CompletionTokens),
		},
	}

	for _, call := range choice.ToolCalls {
		input, err := decodeArguments(call.Function.Arguments)
		if err != nil {
			return model.ChatOut{}, fmt.Errorf("failed to decode tool call arguments: %w", err)
		}
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}

	return out, nil
}

// parseAccumulated converts an accumulated streaming completion.
func parseAccumulated(acc openai.ChatCompletionAccumulator) (model.ChatOut, error) {
	if len(acc.Choices) == 0 {
		return model.ChatOut{}, errors.New("no response from OpenAI stream")
	}

	out := model.ChatOut{
		Text: acc.Choices[0].Message.Content,
		Usage: model.Usage{
			InputTokens:  int(acc.Usage.PromptTokens),
			OutputTokens: int(acc.Usage.CompletionTokens),
		},
	}

	for _, call := range acc.Choices[0].Message.ToolCalls {
		input, err := decodeArguments(call.Function.Arguments)
		if err != nil {
			return model.ChatOut{}, fmt.Errorf("failed to decode tool call arguments: %w", err)
		}
		out.ToolCalls = append(out.ToolCalls, model.ToolCall{
			ID:    call.ID,
			Name:  call.Function.Name,
			Input: input,
		})
	}

	return out, nil
}

func decodeArguments(raw string) (map[string]interface{}, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var input map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &input); err != nil {
		return nil, err
	}
	return input, nil
}

// isTransientError determines if an error should trigger a retry.
func isTransientError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	msgLower := strings.ToLower(err.Error())
	transientPatterns := []string{
		"rate limit",
		"429",
		"timeout",
		"network",
		"connection",
		"temporary",
		"503",
		"502",
		"500",
	}

	for _, pattern := range transientPatterns {
		if strings.Contains(msgLower, pattern) {
			return true
		}
	}

	return false
}

// isRateLimitError checks if error is a rate limit error.
func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	msgLower := strings.ToLower(err.Error())
	return strings.Contains(msgLower, "rate limit") ||
		strings.Contains(msgLower, "429") ||
		strings.Contains(msgLower, "too many requests")
}
