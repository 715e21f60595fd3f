// Package tool defines executable tools the assistant can expose to the
// model, plus a registry and a few ready-made tools.
package tool

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/dshills/assistant-go/assistant/model"
)

// Tool is an action the model can invoke during a run.
//
// Implementations should:
//   - Validate input parameters
//   - Respect context cancellation and timeouts
//   - Return structured output as map[string]interface{}
//   - Handle errors gracefully with clear error messages
//
// Example implementation:
//
//	type WeatherTool struct{}
//
//	func (w *WeatherTool) Name() string        { return "get_weather" }
//	func (w *WeatherTool) Description() string { return "Get current weather for a location." }
//
//	func (w *WeatherTool) Schema() map[string]interface{} {
//	    return map[string]interface{}{
//	        "type": "object",
//	        "properties": map[string]interface{}{
//	            "location": map[string]interface{}{"type": "string"},
//	        },
//	        "required": []string{"location"},
//	    }
//	}
//
//	func (w *WeatherTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
//	    location, ok := input["location"].(string)
//	    if !ok {
//	        return nil, errors.New("location parameter required")
//	    }
//	    return map[string]interface{}{"temperature": 72.5, "location": location}, nil
//	}
type Tool interface {
	// Name returns the unique identifier for this tool.
	//
	// Names should be lowercase with underscores, e.g. "search_web".
	Name() string

	// Description tells the model what the tool does and when to use it.
	Description() string

	// Schema returns the JSON Schema for the tool's input parameters.
	Schema() map[string]interface{}

	// Call executes the tool. Input keys match the Schema properties;
	// input may be nil for parameterless tools.
	Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error)
}

// Spec converts a tool to the spec format sent to the model.
func Spec(t Tool) model.ToolSpec {
	return model.ToolSpec{
		Name:        t.Name(),
		Description: t.Description(),
		Schema:      t.Schema(),
	}
}

// Registry holds the tools available to an assistant, keyed by name.
// Safe for concurrent use.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewRegistry creates a registry containing the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool)}
	for _, t := range tools {
		r.tools[t.Name()] = t
	}
	return r
}

// Register adds a tool, replacing any existing tool with the same name.
func (r *Registry) Register(t Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[t.Name()] = t
}

// Get returns the named tool.
func (r *Registry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// Len returns the number of registered tools.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tools)
}

// Specs returns the specs of all registered tools, sorted by name.
func (r *Registry) Specs() []model.ToolSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)

	specs := make([]model.ToolSpec, 0, len(names))
	for _, name := range names {
		specs = append(specs, Spec(r.tools[name]))
	}
	return specs
}

// Call executes the named tool.
func (r *Registry) Call(ctx context.Context, name string, input map[string]interface{}) (map[string]interface{}, error) {
	t, ok := r.Get(name)
	if !ok {
		return nil, fmt.Errorf("unknown tool: %s", name)
	}
	return t.Call(ctx, input)
}
