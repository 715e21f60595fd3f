package assistant

import (
	"context"
	"fmt"
	"strings"

	"github.com/dshills/assistant-go/assistant/model"
)

// Memory holds the conversational state of one assistant run.
//
// It tracks two parallel message logs: ChatHistory is the user-visible
// conversation (user and assistant turns), while LLMMessages is the raw
// sequence sent to the model (including system prompts, tool calls, and
// tool results). References records what the knowledge base returned
// for each query, and Keypoints holds LLM-extracted summary points.
//
// Memory is JSON-serializable and is persisted through the run store.
type Memory struct {
	ChatHistory []model.Message `json:"chat_history,omitempty"`
	LLMMessages []model.Message `json:"llm_messages,omitempty"`
	References  []References    `json:"references,omitempty"`
	Keypoints   []Keypoint      `json:"keypoints,omitempty"`
}

// References records one knowledge base retrieval: the query, the
// references delivered to the prompt, and how long the search took in
// seconds.
type References struct {
	Query       string  `json:"query"`
	References  string  `json:"references"`
	TimeSeconds float64 `json:"time,omitempty"`
}

// Keypoint is one extracted summary point.
type Keypoint struct {
	Content    string  `json:"content"`
	Importance float64 `json:"importance"`
}

// Chat is one (user, assistant) exchange. Assistant is the zero Message
// when the user turn has no reply yet.
type Chat struct {
	User      model.Message
	Assistant model.Message
}

// AddChatMessage appends one message to the chat history.
func (m *Memory) AddChatMessage(msg model.Message) {
	m.ChatHistory = append(m.ChatHistory, msg)
}

// AddChatMessages appends messages to the chat history.
func (m *Memory) AddChatMessages(msgs []model.Message) {
	m.ChatHistory = append(m.ChatHistory, msgs...)
}

// AddLLMMessage appends one message to the raw model log.
func (m *Memory) AddLLMMessage(msg model.Message) {
	m.LLMMessages = append(m.LLMMessages, msg)
}

// AddLLMMessages appends messages to the raw model log.
func (m *Memory) AddLLMMessages(msgs []model.Message) {
	m.LLMMessages = append(m.LLMMessages, msgs...)
}

// AddReferences records one retrieval.
func (m *Memory) AddReferences(ref References) {
	m.References = append(m.References, ref)
}

// AddKeypoint records one extracted keypoint.
func (m *Memory) AddKeypoint(kp Keypoint) {
	m.Keypoints = append(m.Keypoints, kp)
}

// LastN returns the last n chat messages. n <= 0 returns the full
// history.
func (m *Memory) LastN(n int) []model.Message {
	if n <= 0 || n >= len(m.ChatHistory) {
		return m.ChatHistory
	}
	return m.ChatHistory[len(m.ChatHistory)-n:]
}

// FormattedHistory renders the last n chat messages as "ROLE: content"
// lines with a "---" separator before each user turn. Returns "" for an
// empty history.
func (m *Memory) FormattedHistory(n int) string {
	messages := m.LastN(n)
	if len(messages) == 0 {
		return ""
	}

	var b strings.Builder
	for _, msg := range messages {
		if msg.Role == model.RoleUser && b.Len() > 0 {
			b.WriteString("---\n")
		}
		b.WriteString(strings.ToUpper(msg.Role))
		b.WriteString(": ")
		b.WriteString(msg.Content)
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Chats pairs the chat history into (user, assistant) exchanges.
// Messages before the first user turn are skipped; a trailing user turn
// without a reply forms a final pair with a zero assistant message.
func (m *Memory) Chats() []Chat {
	var chats []Chat
	var current *Chat
	for _, msg := range m.ChatHistory {
		switch msg.Role {
		case model.RoleUser:
			if current != nil {
				chats = append(chats, *current)
			}
			current = &Chat{User: msg}
		case model.RoleAssistant:
			if current == nil {
				continue
			}
			current.Assistant = msg
			chats = append(chats, *current)
			current = nil
		}
	}
	if current != nil {
		chats = append(chats, *current)
	}
	return chats
}

// ToolCalls returns up to n tool calls from the model log, newest
// first. n <= 0 returns all of them.
func (m *Memory) ToolCalls(n int) []model.ToolCall {
	var calls []model.ToolCall
	for i := len(m.LLMMessages) - 1; i >= 0; i-- {
		for j := len(m.LLMMessages[i].ToolCalls) - 1; j >= 0; j-- {
			calls = append(calls, m.LLMMessages[i].ToolCalls[j])
			if n > 0 && len(calls) == n {
				return calls
			}
		}
	}
	return calls
}

// ExtractKeypoints asks the model to summarize the user side of the
// conversation into keypoints, one per line, and stores each with
// importance 1.0. An empty history is a no-op.
func (m *Memory) ExtractKeypoints(ctx context.Context, chat model.ChatModel) error {
	var userText strings.Builder
	for _, msg := range m.ChatHistory {
		if msg.Role != model.RoleUser {
			continue
		}
		if userText.Len() > 0 {
			userText.WriteString("\n")
		}
		userText.WriteString(msg.Content)
	}
	if userText.Len() == 0 {
		return nil
	}

	prompt := fmt.Sprintf(
		"List the key points from the following conversation, one per line, with no numbering or bullets:\n\n%s",
		userText.String(),
	)
	out, err := chat.Chat(ctx, []model.Message{
		{Role: model.RoleUser, Content: prompt},
	}, nil)
	if err != nil {
		return fmt.Errorf("failed to extract keypoints: %w", err)
	}

	for _, line := range strings.Split(out.Text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		m.AddKeypoint(Keypoint{Content: line, Importance: 1.0})
	}
	return nil
}
