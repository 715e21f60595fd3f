package tool

import (
	"context"
	"sync"
)

// MockTool is a test implementation of Tool.
//
// Use MockTool in tests to verify assistant behavior without executing
// actual tool logic. It provides:
//   - Configurable tool name, description, and schema
//   - Configurable response sequences
//   - Call history tracking
//   - Error injection
//   - Thread-safe operation
//
// Example usage:
//
//	mock := &MockTool{
//	    ToolName: "search_web",
//	    Responses: []map[string]interface{}{
//	        {"results": []string{"result1", "result2"}},
//	    },
//	}
//	output, err := mock.Call(ctx, map[string]interface{}{"query": "test"})
type MockTool struct {
	// ToolName is the identifier returned by Name(). Must be set.
	ToolName string

	// ToolDescription is returned by Description().
	ToolDescription string

	// ToolSchema is returned by Schema(). Nil returns an empty object
	// schema.
	ToolSchema map[string]interface{}

	// Responses contains the sequence of outputs to return. Each call
	// returns the next response; the last response repeats when
	// consumed.
	Responses []map[string]interface{}

	// Err, if set, is returned by Call() instead of a response.
	Err error

	// Calls tracks the history of all Call() invocations.
	Calls []MockToolCall

	mu        sync.Mutex
	callIndex int
}

// MockToolCall records a single invocation of Call().
type MockToolCall struct {
	Input map[string]interface{}
}

// Name implements the Tool interface.
func (m *MockTool) Name() string {
	return m.ToolName
}

// Description implements the Tool interface.
func (m *MockTool) Description() string {
	return m.ToolDescription
}

// Schema implements the Tool interface.
func (m *MockTool) Schema() map[string]interface{} {
	if m.ToolSchema != nil {
		return m.ToolSchema
	}
	return map[string]interface{}{"type": "object"}
}

// Call implements the Tool interface.
//
// Always records the call in Calls history, then returns Err if
// configured, otherwise the next response in sequence.
func (m *MockTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockToolCall{Input: input})

	if m.Err != nil {
		return nil, m.Err
	}
	if len(m.Responses) == 0 {
		return map[string]interface{}{}, nil
	}

	idx := m.callIndex
	if idx >= len(m.Responses) {
		idx = len(m.Responses) - 1
	} else {
		m.callIndex++
	}
	return m.Responses[idx], nil
}

// Reset clears the call history and resets the response index.
func (m *MockTool) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.callIndex = 0
}

// CallCount returns the number of times Call() has been invoked.
func (m *MockTool) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
