// Package emit provides pluggable observability for assistant runs.
//
// Assistants emit an Event at each stage of a run: run start, knowledge
// retrieval, each model call, each tool call, and run completion or
// failure. Emitters forward events to a backend.
package emit

// Standard event messages emitted by an assistant run.
const (
	MsgRunStart    = "run_start"
	MsgRetrieval   = "retrieval"
	MsgLLMCall     = "llm_call"
	MsgToolCall    = "tool_call"
	MsgRunEnd      = "run_end"
	MsgRunError    = "run_error"
	MsgMemorySaved = "memory_saved"
)

// Event is one observability event from an assistant run.
type Event struct {
	// RunID identifies the run that emitted this event.
	RunID string

	// Seq is the sequential event number within the run (1-indexed).
	Seq int

	// Msg names the event, one of the Msg constants above.
	Msg string

	// Meta contains additional structured data specific to this event.
	// Common keys:
	//   - "duration_ms": Stage duration in milliseconds
	//   - "error": Error details
	//   - "tokens_in", "tokens_out": LLM token usage
	//   - "model": Model identifier for llm_call events
	//   - "tool": Tool name for tool_call events
	//   - "references": Number of retrieved documents
	Meta map[string]interface{}
}

// Emitter receives and processes events from assistant runs.
//
// Implementations should be:
//   - Non-blocking: avoid slowing down the run
//   - Thread-safe: may be called concurrently
//   - Resilient: Emit must not panic; errors are handled internally
type Emitter interface {
	// Emit sends an event to the configured backend.
	Emit(event Event)
}
