package assistant

import (
	"github.com/dshills/assistant-go/assistant/emit"
	"github.com/dshills/assistant-go/assistant/knowledge"
	"github.com/dshills/assistant-go/assistant/store"
	"github.com/dshills/assistant-go/assistant/tool"
)

// Option is a functional option for configuring an Assistant.
//
// Example:
//
//	a := assistant.New(
//	    m,
//	    assistant.WithName("support-bot"),
//	    assistant.WithKnowledge(kb),
//	    assistant.WithStorage(st),
//	)
type Option func(*Assistant)

// WithName sets the assistant's display name.
func WithName(name string) Option {
	return func(a *Assistant) {
		a.name = name
	}
}

// WithUserID associates runs with a user identity.
func WithUserID(userID string) Option {
	return func(a *Assistant) {
		a.userID = userID
	}
}

// WithRunID fixes the run ID instead of generating one. Use this to
// resume a stored run.
func WithRunID(runID string) Option {
	return func(a *Assistant) {
		a.runID = runID
	}
}

// WithIntroduction sets an opening assistant message. When the chat
// history is empty at Start, the introduction is recorded as the first
// assistant turn.
func WithIntroduction(intro string) Option {
	return func(a *Assistant) {
		a.introduction = intro
	}
}

// WithSystemPrompt sets a fixed system prompt, overriding the
// synthesized one.
func WithSystemPrompt(prompt string) Option {
	return func(a *Assistant) {
		a.systemPrompt = prompt
	}
}

// WithSystemPromptFunc sets a function that builds the system prompt
// for each run. Takes precedence over the synthesized prompt; a fixed
// WithSystemPrompt takes precedence over the function.
func WithSystemPromptFunc(fn func(a *Assistant) string) Option {
	return func(a *Assistant) {
		a.systemPromptFunc = fn
	}
}

// WithUserPromptFunc sets a function that builds the user prompt from
// the message, the rendered references block, and the formatted chat
// history. Overrides the default prompt assembly.
func WithUserPromptFunc(fn func(message, references, history string) string) Option {
	return func(a *Assistant) {
		a.userPromptFunc = fn
	}
}

// WithDescription sets a description of the assistant used in the
// synthesized system prompt.
func WithDescription(desc string) Option {
	return func(a *Assistant) {
		a.description = desc
	}
}

// WithInstructions sets the instruction list for the synthesized
// system prompt.
func WithInstructions(instructions ...string) Option {
	return func(a *Assistant) {
		a.instructions = instructions
	}
}

// WithExtraInstructions appends instructions after the main list.
func WithExtraInstructions(instructions ...string) Option {
	return func(a *Assistant) {
		a.extraInstructions = append(a.extraInstructions, instructions...)
	}
}

// WithExpectedOutput describes the expected response format in the
// synthesized system prompt.
func WithExpectedOutput(expected string) Option {
	return func(a *Assistant) {
		a.expectedOutput = expected
	}
}

// WithKnowledge attaches a knowledge base. Retrieved references are
// injected into the user prompt on each run.
func WithKnowledge(kb *knowledge.Base) Option {
	return func(a *Assistant) {
		a.knowledge = kb
		a.addReferences = true
	}
}

// WithSearchKnowledge attaches a knowledge base exposed to the model as
// a search_knowledge_base tool instead of automatic prompt injection.
func WithSearchKnowledge(kb *knowledge.Base) Option {
	return func(a *Assistant) {
		a.knowledge = kb
		a.searchKnowledge = true
	}
}

// WithStorage attaches a run store. Start loads or creates the run;
// every Run persists the updated memory.
func WithStorage(st store.Store) Option {
	return func(a *Assistant) {
		a.storage = st
	}
}

// WithTools registers tools the model may call during a run.
func WithTools(tools ...tool.Tool) Option {
	return func(a *Assistant) {
		if a.tools == nil {
			a.tools = tool.NewRegistry()
		}
		for _, t := range tools {
			a.tools.Register(t)
		}
	}
}

// WithHistoryInPrompt includes the last n chat messages as a formatted
// block inside the user prompt.
func WithHistoryInPrompt(n int) Option {
	return func(a *Assistant) {
		a.historyInPrompt = true
		a.historyCount = n
	}
}

// WithHistoryInMessages includes the last n chat messages as separate
// messages before the user prompt.
func WithHistoryInMessages(n int) Option {
	return func(a *Assistant) {
		a.historyInMessages = true
		a.historyCount = n
	}
}

// WithMarkdown asks the model to format responses in markdown.
func WithMarkdown() Option {
	return func(a *Assistant) {
		a.markdown = true
	}
}

// WithDatetimeInInstructions adds the current date and time to the
// system prompt.
func WithDatetimeInInstructions() Option {
	return func(a *Assistant) {
		a.datetimeInInstructions = true
	}
}

// WithEmitter sets the observability emitter. Default is NullEmitter.
func WithEmitter(e emit.Emitter) Option {
	return func(a *Assistant) {
		a.emitter = e
	}
}

// WithMetrics sets the Prometheus metrics collector.
func WithMetrics(m *PrometheusMetrics) Option {
	return func(a *Assistant) {
		a.metrics = m
	}
}

// WithMeta attaches arbitrary metadata persisted with the run.
func WithMeta(meta map[string]interface{}) Option {
	return func(a *Assistant) {
		a.meta = meta
	}
}

// WithToolRounds sets the maximum number of tool-calling rounds per
// run. Default is 10.
func WithToolRounds(n int) Option {
	return func(a *Assistant) {
		if n > 0 {
			a.maxToolRounds = n
		}
	}
}

// WithNumHistoryResponses sets how many chats the get_chat_history
// default tool returns when the model does not specify. Default is 3.
func WithNumHistoryResponses(n int) Option {
	return func(a *Assistant) {
		if n > 0 {
			a.numHistoryResponses = n
		}
	}
}
