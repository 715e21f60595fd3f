// Package google adapts Google's Gemini models to the model.ChatModel interface.
package google

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/dshills/assistant-go/assistant/model"
)

// DefaultModel is the default Gemini model.
const DefaultModel = "gemini-1.5-flash"

// ChatModel implements model.ChatModel using Google's Gemini API.
//
// It wraps the official generative-ai-go client. System messages map to
// Gemini's system instruction, conversation history maps to chat history,
// and tool specs map to function declarations.
//
// Example usage:
//
//	m, err := google.NewChatModel("", "gemini-1.5-flash") // key from GOOGLE_API_KEY
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer m.Close()
type ChatModel struct {
	client    *genai.Client
	modelName string
}

// NewChatModel creates a new Gemini ChatModel.
//
// If apiKey is empty, it is read from the GOOGLE_API_KEY environment
// variable. Empty modelName uses DefaultModel.
func NewChatModel(apiKey, modelName string) (*ChatModel, error) {
	if apiKey == "" {
		apiKey = os.Getenv("GOOGLE_API_KEY")
		if apiKey == "" {
			return nil, errors.New("Google API key not provided and GOOGLE_API_KEY environment variable not set")
		}
	}
	if modelName == "" {
		modelName = DefaultModel
	}

	client, err := genai.NewClient(context.Background(), option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google client: %w", err)
	}

	return &ChatModel{
		client:    client,
		modelName: modelName,
	}, nil
}

// Close releases the underlying client resources.
func (m *ChatModel) Close() error {
	if m.client != nil {
		return m.client.Close()
	}
	return nil
}

// ModelName returns the configured model identifier.
func (m *ChatModel) ModelName() string {
	return m.modelName
}

// Chat implements the model.ChatModel interface.
func (m *ChatModel) Chat(ctx context.Context, messages []model.Message, tools []model.ToolSpec) (model.ChatOut, error) {
	if ctx.Err() != nil {
		return model.ChatOut{}, ctx.Err()
	}
	if len(messages) == 0 {
		return model.ChatOut{}, errors.New("no messages to send")
	}

	gm := m.client.GenerativeModel(m.modelName)

	// System messages become the system instruction.
	var system strings.Builder
	for _, msg := range messages {
		if msg.Role == model.RoleSystem {
			if system.Len() > 0 {
				system.WriteString("\n")
			}
			system.WriteString(msg.Content)
		}
	}
	if system.Len() > 0 {
		gm.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(system.String())},
		}
	}

	for _, spec := range tools {
		gm.Tools = append(gm.Tools, &genai.Tool{
			FunctionDeclarations: []*genai.FunctionDeclaration{{
				Name:        spec.Name,
				Description: spec.Description,
				Parameters:  toSchema(spec.Schema),
			}},
		})
	}

	history, last, err := splitConversation(messages)
	if err != nil {
		return model.ChatOut{}, err
	}

	session := gm.StartChat()
	session.History = history

	resp, err := session.SendMessage(ctx, last...)
	if err != nil {
		return model.ChatOut{}, mapError(err)
	}

	return parseResponse(resp)
}

// splitConversation converts non-system messages into chat history plus the
// final turn's parts. Gemini requires the final turn to be sent separately.
func splitConversation(messages []model.Message) ([]*genai.Content, []genai.Part, error) {
	var contents []*genai.Content
	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			continue
		case model.RoleUser:
			contents = append(contents, &genai.Content{
				Role:  "user",
				Parts: []genai.Part{genai.Text(msg.Content)},
			})
		case model.RoleAssistant:
			parts := make([]genai.Part, 0, 1+len(msg.ToolCalls))
			if msg.Content != "" {
				parts = append(parts, genai.Text(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				parts = append(parts, genai.FunctionCall{Name: call.Name, Args: call.Input})
			}
			contents = append(contents, &genai.Content{Role: "model", Parts: parts})
		case model.RoleTool:
			contents = append(contents, &genai.Content{
				Role: "user",
				Parts: []genai.Part{genai.FunctionResponse{
					Name:     msg.Name,
					Response: map[string]interface{}{"result": msg.Content},
				}},
			})
		default:
			return nil, nil, fmt.Errorf("unsupported message role: %q", msg.Role)
		}
	}

	if len(contents) == 0 {
		return nil, nil, errors.New("no sendable messages")
	}

	last := contents[len(contents)-1]
	return contents[:len(contents)-1], last.Parts, nil
}

// toSchema converts a JSON Schema map into the genai schema type.
// Only the subset used by tool specs is mapped (type, description,
// properties, items, required, enum).
func toSchema(schema map[string]interface{}) *genai.Schema {
	if schema == nil {
		return nil
	}

	out := &genai.Schema{}
	if t, ok := schema["type"].(string); ok {
		out.Type = schemaType(t)
	}
	if d, ok := schema["description"].(string); ok {
		out.Description = d
	}
	if props, ok := schema["properties"].(map[string]interface{}); ok {
		out.Properties = make(map[string]*genai.Schema, len(props))
		for name, raw := range props {
			if sub, ok := raw.(map[string]interface{}); ok {
				out.Properties[name] = toSchema(sub)
			}
		}
	}
	if items, ok := schema["items"].(map[string]interface{}); ok {
		out.Items = toSchema(items)
	}
	if required, ok := schema["required"]; ok {
		out.Required = toStringSlice(required)
	}
	if enum, ok := schema["enum"]; ok {
		out.Enum = toStringSlice(enum)
	}
	return out
}

func schemaType(t string) genai.Type {
	switch t {
	case "string":
		return genai.TypeString
	case "number":
		return genai.TypeNumber
	case "integer":
		return genai.TypeInteger
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	case "object":
		return genai.TypeObject
	default:
		return genai.TypeUnspecified
	}
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

// parseResponse converts a Gemini response into the standard ChatOut.
func parseResponse(resp *genai.GenerateContentResponse) (model.ChatOut, error) {
	if resp == nil {
		return model.ChatOut{}, errors.New("nil response from Google API")
	}

	out := model.ChatOut{}
	if resp.UsageMetadata != nil {
		out.Usage = model.Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}

	if len(resp.Candidates) == 0 {
		return out, nil
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return out, nil
	}

	var text strings.Builder
	for _, part := range candidate.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			text.WriteString(string(p))
		case genai.FunctionCall:
			out.ToolCalls = append(out.ToolCalls, model.ToolCall{
				Name:  p.Name,
				Input: p.Args,
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
	return fmt.Errorf("Google API error: %w", err)
}
