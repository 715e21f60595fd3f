package assistant

import (
	"fmt"
	"strings"
	"time"
)

// buildSystemPrompt returns the system prompt for a run, or "" when the
// assistant has nothing to say at the system level.
//
// Precedence: explicit WithSystemPrompt, then WithSystemPromptFunc,
// then a prompt synthesized from the assistant's description,
// instructions, and capabilities.
func (a *Assistant) buildSystemPrompt() (string, error) {
	if a.systemPrompt != "" {
		return a.systemPrompt, nil
	}
	if a.systemPromptFunc != nil {
		prompt := a.systemPromptFunc(a)
		if strings.TrimSpace(prompt) == "" {
			return "", ErrEmptySystemPrompt
		}
		return prompt, nil
	}
	return a.synthesizeSystemPrompt(), nil
}

func (a *Assistant) synthesizeSystemPrompt() string {
	var b strings.Builder

	if a.description != "" {
		b.WriteString(a.description)
		b.WriteString("\n")
	}

	instructions := make([]string, 0, len(a.instructions)+4)
	instructions = append(instructions, a.instructions...)
	if a.addReferences {
		instructions = append(instructions,
			"Use the information from the knowledge base to help respond to the message.")
	}
	if a.searchKnowledge {
		instructions = append(instructions,
			"Search the knowledge base for information to help respond to the message.")
	}
	if a.markdown {
		instructions = append(instructions, "Use markdown to format your answers.")
	}
	instructions = append(instructions, a.extraInstructions...)

	if len(instructions) > 0 {
		b.WriteString("You must follow these instructions carefully:\n")
		for i, inst := range instructions {
			fmt.Fprintf(&b, "%d. %s\n", i+1, inst)
		}
	}

	if a.datetimeInInstructions {
		fmt.Fprintf(&b, "The current time is %s.\n", time.Now().Format("2006-01-02 15:04:05 MST"))
	}

	if a.expectedOutput != "" {
		b.WriteString("\nYour output should follow this format:\n")
		b.WriteString(a.expectedOutput)
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

// buildUserPrompt assembles the prompt for one user message, injecting
// the references block and the formatted chat history when present.
func (a *Assistant) buildUserPrompt(message, references, history string) string {
	if a.userPromptFunc != nil {
		return a.userPromptFunc(message, references, history)
	}

	// Bare message when there is nothing to inject.
	if references == "" && history == "" {
		return message
	}

	var b strings.Builder
	b.WriteString("Your task is to respond to the following message from a user:\n")
	b.WriteString("USER: ")
	b.WriteString(message)
	b.WriteString("\n")

	if references != "" {
		b.WriteString("\nYou can use the following information from the knowledge base if it helps respond to the message:\n")
		b.WriteString("START OF KNOWLEDGE BASE INFORMATION\n")
		b.WriteString(references)
		b.WriteString("\nEND OF KNOWLEDGE BASE INFORMATION\n")
	}

	if history != "" {
		b.WriteString("\nYou can use the following chat history to reference past messages:\n")
		b.WriteString("START OF CHAT HISTORY\n")
		b.WriteString(history)
		b.WriteString("\nEND OF CHAT HISTORY\n")
	}

	b.WriteString("\nRemember, your task is to respond to the following message:\n")
	b.WriteString("USER: ")
	b.WriteString(message)
	return b.String()
}
