// Package model provides LLM integration adapters.
package model

import "context"

// ChatModel defines the interface for LLM chat providers.
//
// This interface abstracts the differences between various LLM providers
// (OpenAI, Anthropic, Google, local models) providing a unified API for
// chat-based interactions.
//
// Implementations should:
//   - Handle provider-specific authentication
//   - Convert standard Message format to provider-specific format
//   - Parse provider responses back to standard ChatOut format
//   - Respect context cancellation and timeouts
//   - Handle retries and rate limiting appropriately
//
// Example usage:
//
//	m := openai.NewChatModel(apiKey, "gpt-4o")
//	messages := []model.Message{
//	    {Role: model.RoleUser, Content: "What is the capital of France?"},
//	}
//	out, err := m.Chat(ctx, messages, nil)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(out.Text) // "The capital of France is Paris."
type ChatModel interface {
	// Chat sends messages to the LLM and returns the response.
	//
	// Parameters:
	//   - ctx: Context for cancellation and timeout control
	//   - messages: Conversation history (system, user, assistant, tool messages)
	//   - tools: Optional tool specifications the LLM can use (nil if no tools)
	//
	// The LLM may respond with text, tool calls, or both.
	Chat(ctx context.Context, messages []Message, tools []ToolSpec) (ChatOut, error)
}

// StreamingChatModel is implemented by providers that can deliver the
// response incrementally. The callback receives each text delta in order;
// returning an error from the callback aborts the stream.
//
// The final ChatOut contains the full accumulated text, tool calls, and
// token usage, so callers that need the complete response do not have to
// reassemble it from deltas.
type StreamingChatModel interface {
	ChatModel

	ChatStream(ctx context.Context, messages []Message, tools []ToolSpec, fn func(delta string) error) (ChatOut, error)
}

// Message represents a single message in an LLM conversation.
//
// Messages follow the common chat format used by OpenAI, Anthropic, Google,
// and other providers. A typical conversation is a system message followed
// by alternating user and assistant messages; tool-role messages carry tool
// execution results back to the model.
type Message struct {
	// Role identifies the message sender.
	// Standard roles: "system", "user", "assistant", "tool".
	// Use the Role* constants for consistency.
	Role string

	// Content contains the message text.
	// May be empty for assistant messages that only contain tool calls.
	Content string

	// Name optionally identifies the tool that produced a tool-role message.
	Name string

	// ToolCallID links a tool-role message to the assistant tool call it
	// answers. Required by providers when Role is RoleTool.
	ToolCallID string

	// ToolCalls holds the tool invocations requested by an assistant
	// message. Populated when replaying a tool round-trip to the provider.
	ToolCalls []ToolCall
}

// Standard role constants for LLM conversations.
// These align with the conventions used by major LLM providers.
const (
	// RoleSystem indicates a system message that sets context or instructions.
	RoleSystem = "system"

	// RoleUser indicates a message from the human user.
	RoleUser = "user"

	// RoleAssistant indicates a response from the LLM.
	RoleAssistant = "assistant"

	// RoleTool indicates a tool execution result sent back to the LLM.
	RoleTool = "tool"
)

// ToolSpec describes a tool that an LLM can call.
//
// The Schema field follows JSON Schema format and describes the expected
// input parameters.
//
// Example:
//
//	searchTool := model.ToolSpec{
//	    Name:        "search_knowledge_base",
//	    Description: "Search the knowledge base for information about a query",
//	    Schema: map[string]interface{}{
//	        "type": "object",
//	        "properties": map[string]interface{}{
//	            "query": map[string]interface{}{
//	                "type":        "string",
//	                "description": "The query to search for",
//	            },
//	        },
//	        "required": []string{"query"},
//	    },
//	}
type ToolSpec struct {
	// Name uniquely identifies the tool.
	// Must be a valid function name (alphanumeric + underscores).
	Name string

	// Description explains what the tool does.
	// The LLM uses this to decide when to call the tool.
	Description string

	// Schema defines the tool's input parameters using JSON Schema format.
	// Optional for tools with no parameters.
	Schema map[string]interface{}
}

// Usage records token consumption for a single chat completion.
type Usage struct {
	// InputTokens is the number of prompt tokens consumed.
	InputTokens int

	// OutputTokens is the number of completion tokens generated.
	OutputTokens int
}

// Total returns the combined input and output token count.
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// ChatOut represents the output from an LLM chat completion.
//
// LLMs can respond with text only, tool calls only, or both.
type ChatOut struct {
	// Text contains the LLM's generated response.
	// May be empty if the LLM only wants to call tools.
	Text string

	// ToolCalls contains tools the LLM wants to invoke.
	// Empty if the LLM provided a direct text response.
	ToolCalls []ToolCall

	// Usage reports token consumption for this completion.
	// Zero values when the provider does not report usage.
	Usage Usage
}

// ToolCall represents a request from the LLM to invoke a specific tool.
//
// After the LLM requests tool calls, the application should execute each
// tool with the provided Input, collect the results, and send them back to
// the LLM as tool-role messages carrying the matching ID.
type ToolCall struct {
	// ID is the provider-assigned identifier for this call.
	// Echoed back on the tool-role result message.
	ID string

	// Name identifies which tool to call.
	// Must match a ToolSpec.Name from the available tools.
	Name string

	// Input contains the parameters for the tool call.
	// Structure matches the ToolSpec.Schema for this tool.
	// May be nil for tools that take no parameters.
	Input map[string]interface{}
}
