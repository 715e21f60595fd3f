package assistant

import (
	"errors"
	"strings"
	"testing"

	"github.com/dshills/assistant-go/assistant/model"
)

func TestBuildSystemPrompt_Precedence(t *testing.T) {
	t.Run("fixed prompt wins", func(t *testing.T) {
		a := New(&model.MockChatModel{},
			WithSystemPrompt("fixed"),
			WithSystemPromptFunc(func(*Assistant) string { return "from func" }),
			WithDescription("ignored"),
		)
		got, err := a.buildSystemPrompt()
		if err != nil {
			t.Fatalf("buildSystemPrompt failed: %v", err)
		}
		if got != "fixed" {
			t.Errorf("expected fixed prompt, got %q", got)
		}
	})

	t.Run("prompt func beats synthesis", func(t *testing.T) {
		a := New(&model.MockChatModel{},
			WithSystemPromptFunc(func(*Assistant) string { return "from func" }),
			WithDescription("ignored"),
		)
		got, err := a.buildSystemPrompt()
		if err != nil {
			t.Fatalf("buildSystemPrompt failed: %v", err)
		}
		if got != "from func" {
			t.Errorf("expected func prompt, got %q", got)
		}
	})

	t.Run("empty prompt func errors", func(t *testing.T) {
		a := New(&model.MockChatModel{},
			WithSystemPromptFunc(func(*Assistant) string { return "  " }),
		)
		_, err := a.buildSystemPrompt()
		if !errors.Is(err, ErrEmptySystemPrompt) {
			t.Errorf("expected ErrEmptySystemPrompt, got: %v", err)
		}
	})
}

func TestSynthesizeSystemPrompt(t *testing.T) {
	a := New(&model.MockChatModel{},
		WithDescription("You are a helpful travel agent."),
		WithInstructions("Be concise.", "Cite sources."),
		WithExtraInstructions("Answer in French."),
		WithMarkdown(),
		WithExpectedOutput("A bulleted list."),
	)

	got, err := a.buildSystemPrompt()
	if err != nil {
		t.Fatalf("buildSystemPrompt failed: %v", err)
	}

	if !strings.HasPrefix(got, "You are a helpful travel agent.") {
		t.Errorf("expected description first, got:\n%s", got)
	}
	if !strings.Contains(got, "You must follow these instructions carefully:") {
		t.Errorf("expected instructions header, got:\n%s", got)
	}
	if !strings.Contains(got, "1. Be concise.") {
		t.Errorf("expected numbered instruction, got:\n%s", got)
	}
	if !strings.Contains(got, "2. Cite sources.") {
		t.Errorf("expected second instruction, got:\n%s", got)
	}
	if !strings.Contains(got, "Use markdown to format your answers.") {
		t.Errorf("expected markdown instruction, got:\n%s", got)
	}
	// Extra instructions come after the generated ones.
	if strings.Index(got, "Answer in French.") < strings.Index(got, "Use markdown") {
		t.Errorf("expected extra instructions last, got:\n%s", got)
	}
	if !strings.Contains(got, "Your output should follow this format:\nA bulleted list.") {
		t.Errorf("expected expected-output block, got:\n%s", got)
	}
}

func TestSynthesizeSystemPrompt_KnowledgeInstructions(t *testing.T) {
	withRefs := New(&model.MockChatModel{})
	withRefs.addReferences = true
	got, _ := withRefs.buildSystemPrompt()
	if !strings.Contains(got, "Use the information from the knowledge base") {
		t.Errorf("expected knowledge instruction, got:\n%s", got)
	}

	withSearch := New(&model.MockChatModel{})
	withSearch.searchKnowledge = true
	got, _ = withSearch.buildSystemPrompt()
	if !strings.Contains(got, "Search the knowledge base") {
		t.Errorf("expected search instruction, got:\n%s", got)
	}
}

func TestSynthesizeSystemPrompt_Empty(t *testing.T) {
	a := New(&model.MockChatModel{})
	got, err := a.buildSystemPrompt()
	if err != nil {
		t.Fatalf("buildSystemPrompt failed: %v", err)
	}
	if got != "" {
		t.Errorf("expected empty prompt for unconfigured assistant, got %q", got)
	}
}

func TestSynthesizeSystemPrompt_Datetime(t *testing.T) {
	a := New(&model.MockChatModel{}, WithDatetimeInInstructions())
	got, _ := a.buildSystemPrompt()

	if !strings.Contains(got, "The current time is ") {
		t.Errorf("expected datetime line, got:\n%s", got)
	}
}

func TestBuildUserPrompt(t *testing.T) {
	a := New(&model.MockChatModel{})

	t.Run("bare message without injections", func(t *testing.T) {
		got := a.buildUserPrompt("hello", "", "")
		if got != "hello" {
			t.Errorf("expected bare message, got %q", got)
		}
	})

	t.Run("references block", func(t *testing.T) {
		got := a.buildUserPrompt("what is X?", `[{"content":"X is Y"}]`, "")
		if !strings.Contains(got, "START OF KNOWLEDGE BASE INFORMATION\n[{\"content\":\"X is Y\"}]\nEND OF KNOWLEDGE BASE INFORMATION") {
			t.Errorf("expected delimited references block, got:\n%s", got)
		}
		if !strings.Contains(got, "USER: what is X?") {
			t.Errorf("expected user message, got:\n%s", got)
		}
		if strings.Count(got, "USER: what is X?") != 2 {
			t.Errorf("expected message repeated at start and end, got:\n%s", got)
		}
		if strings.Contains(got, "START OF CHAT HISTORY") {
			t.Errorf("unexpected history block, got:\n%s", got)
		}
	})

	t.Run("history block", func(t *testing.T) {
		got := a.buildUserPrompt("next question", "", "USER: hi\nASSISTANT: hello")
		if !strings.Contains(got, "START OF CHAT HISTORY\nUSER: hi\nASSISTANT: hello\nEND OF CHAT HISTORY") {
			t.Errorf("expected delimited history block, got:\n%s", got)
		}
		if strings.Contains(got, "KNOWLEDGE BASE") {
			t.Errorf("unexpected references block, got:\n%s", got)
		}
	})

	t.Run("custom prompt func overrides", func(t *testing.T) {
		custom := New(&model.MockChatModel{},
			WithUserPromptFunc(func(message, references, history string) string {
				return "CUSTOM: " + message
			}),
		)
		got := custom.buildUserPrompt("msg", "refs", "hist")
		if got != "CUSTOM: msg" {
			t.Errorf("expected custom prompt, got %q", got)
		}
	})
}
