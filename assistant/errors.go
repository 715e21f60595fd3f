package assistant

import "errors"

// Sentinel errors returned by assistant operations.
var (
	// ErrNoModel indicates the assistant was constructed without a
	// chat model.
	ErrNoModel = errors.New("assistant has no chat model")

	// ErrEmptyMessage indicates Run was called with an empty message.
	ErrEmptyMessage = errors.New("message is empty")

	// ErrEmptySystemPrompt indicates a system prompt function returned
	// an empty string.
	ErrEmptySystemPrompt = errors.New("system prompt function returned empty prompt")

	// ErrToolRounds indicates the tool-calling loop exceeded its
	// round limit without the model producing a final answer.
	ErrToolRounds = errors.New("tool call round limit exceeded")

	// ErrEnded indicates an operation was attempted on an ended run.
	ErrEnded = errors.New("run has ended")
)
