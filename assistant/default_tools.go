package assistant

import (
	"context"
	"fmt"
	"strings"
)

// searchKnowledgeTool lets the model query the knowledge base on demand
// instead of receiving references up front.
type searchKnowledgeTool struct {
	a *Assistant
}

func (t *searchKnowledgeTool) Name() string {
	return "search_knowledge_base"
}

func (t *searchKnowledgeTool) Description() string {
	return "Search the knowledge base for information relevant to a query."
}

func (t *searchKnowledgeTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"query": map[string]interface{}{
				"type":        "string",
				"description": "The search query",
			},
		},
		"required": []string{"query"},
	}
}

func (t *searchKnowledgeTool) Call(ctx context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	query, _ := input["query"].(string)
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("query is required")
	}
	if t.a.knowledge == nil {
		return nil, fmt.Errorf("no knowledge base configured")
	}

	docs, err := t.a.knowledge.Search(ctx, query)
	if err != nil {
		return nil, err
	}
	return map[string]interface{}{
		"references": renderReferences(docs),
	}, nil
}

// chatHistoryTool lets the model read back earlier turns of the
// conversation.
type chatHistoryTool struct {
	a *Assistant
}

func (t *chatHistoryTool) Name() string {
	return "get_chat_history"
}

func (t *chatHistoryTool) Description() string {
	return "Return the most recent messages from the chat history."
}

func (t *chatHistoryTool) Schema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"num_chats": map[string]interface{}{
				"type":        "integer",
				"description": "Number of recent exchanges to return",
			},
		},
	}
}

func (t *chatHistoryTool) Call(_ context.Context, input map[string]interface{}) (map[string]interface{}, error) {
	n := t.a.numHistoryResponses
	if v, ok := input["num_chats"]; ok {
		switch num := v.(type) {
		case float64:
			n = int(num)
		case int:
			n = num
		}
	}
	// Each exchange is a user and an assistant message.
	return map[string]interface{}{
		"history": t.a.memory.FormattedHistory(n * 2),
	}, nil
}
