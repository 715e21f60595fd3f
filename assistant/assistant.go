// Package assistant provides a retrieval-augmented LLM assistant: a
// chat model plus optional knowledge base, tools, persistent run
// storage, metrics, and observability events.
//
// Minimal usage:
//
//	m := openai.NewChatModel("", "gpt-4o")
//	a := assistant.New(m)
//	reply, err := a.Run(ctx, "What is the capital of France?")
//
// With knowledge and storage:
//
//	a := assistant.New(m,
//	    assistant.WithKnowledge(kb),
//	    assistant.WithStorage(st),
//	    assistant.WithHistoryInMessages(6),
//	)
//	a.Start(ctx)
//	reply, err := a.Run(ctx, "Summarize the onboarding doc.")
package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dshills/assistant-go/assistant/document"
	"github.com/dshills/assistant-go/assistant/emit"
	"github.com/dshills/assistant-go/assistant/knowledge"
	"github.com/dshills/assistant-go/assistant/model"
	"github.com/dshills/assistant-go/assistant/store"
	"github.com/dshills/assistant-go/assistant/tool"
)

// DefaultToolRounds bounds the tool-calling loop within one run.
const DefaultToolRounds = 10

// Assistant orchestrates one conversation: it assembles prompts from
// configuration, memory, and knowledge retrieval, calls the chat model,
// executes requested tools, and records everything in Memory.
//
// An Assistant is bound to a single run (identified by RunID). It is
// safe for concurrent reads, but Run calls must not overlap.
type Assistant struct {
	chat model.ChatModel

	name         string
	userID       string
	runID        string
	introduction string

	systemPrompt     string
	systemPromptFunc func(a *Assistant) string
	userPromptFunc   func(message, references, history string) string

	description       string
	instructions      []string
	extraInstructions []string
	expectedOutput    string

	knowledge       *knowledge.Base
	addReferences   bool
	searchKnowledge bool

	storage store.Store
	tools   *tool.Registry

	historyInPrompt     bool
	historyInMessages   bool
	historyCount        int
	numHistoryResponses int

	markdown               bool
	datetimeInInstructions bool

	emitter emit.Emitter
	metrics *PrometheusMetrics
	meta    map[string]interface{}

	maxToolRounds int

	mu             sync.Mutex
	memory         Memory
	active         bool
	started        bool
	systemRecorded bool
	seq            int
}

// New creates an Assistant for the given chat model.
func New(m model.ChatModel, opts ...Option) *Assistant {
	a := &Assistant{
		chat:                m,
		emitter:             emit.NewNullEmitter(),
		maxToolRounds:       DefaultToolRounds,
		numHistoryResponses: 3,
		active:              true,
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.runID == "" {
		a.runID = uuid.NewString()
	}
	if a.searchKnowledge && a.knowledge != nil {
		if a.tools == nil {
			a.tools = tool.NewRegistry()
		}
		a.tools.Register(&searchKnowledgeTool{a: a})
		a.tools.Register(&chatHistoryTool{a: a})
	}
	if a.metrics != nil && a.knowledge != nil && a.knowledge.Metrics == nil {
		a.knowledge.Metrics = a.metrics
	}
	return a
}

// RunID returns the run identifier.
func (a *Assistant) RunID() string {
	return a.runID
}

// Name returns the run's display name.
func (a *Assistant) Name() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.name
}

// Memory returns a snapshot of the run's memory.
func (a *Assistant) Memory() Memory {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.memory
}

// Start prepares the run and returns its ID.
//
// With storage attached, an existing run is loaded (stored memory, name,
// and metadata fill unset local fields) and a new run is created. The
// introduction, when configured and the history is empty, becomes the
// first assistant message.
func (a *Assistant) Start(ctx context.Context) (string, error) {
	if a.chat == nil {
		return "", ErrNoModel
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.started {
		return a.runID, nil
	}

	if a.storage != nil {
		rec, err := a.storage.Read(ctx, a.runID)
		switch {
		case err == nil:
			if err := a.mergeRecordLocked(rec); err != nil {
				return "", err
			}
		case err == store.ErrNotFound:
			a.recordIntroductionLocked()
			if err := a.persistLocked(ctx, true); err != nil {
				return "", fmt.Errorf("failed to create run: %w", err)
			}
		default:
			return "", fmt.Errorf("failed to read run: %w", err)
		}
	} else {
		a.recordIntroductionLocked()
	}

	a.started = true
	return a.runID, nil
}

// End marks the run inactive. With storage attached the stored record
// is ended too; without storage only the in-memory flag flips.
func (a *Assistant) End(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.active = false
	if a.storage == nil {
		return nil
	}
	if err := a.storage.End(ctx, a.runID); err != nil && err != store.ErrNotFound {
		return fmt.Errorf("failed to end run: %w", err)
	}
	return nil
}

// Run sends one user message through the assistant and returns the
// model's reply.
func (a *Assistant) Run(ctx context.Context, message string) (string, error) {
	return a.run(ctx, message, nil)
}

// RunStream is like Run but delivers text deltas to fn as they arrive.
// Models without streaming support deliver the reply as one chunk. A
// non-nil error from fn cancels the run.
func (a *Assistant) RunStream(ctx context.Context, message string, fn func(delta string) error) (string, error) {
	if fn == nil {
		return a.run(ctx, message, nil)
	}
	return a.run(ctx, message, fn)
}

func (a *Assistant) run(ctx context.Context, message string, stream func(delta string) error) (string, error) {
	if a.chat == nil {
		return "", ErrNoModel
	}
	if strings.TrimSpace(message) == "" {
		return "", ErrEmptyMessage
	}
	if _, err := a.Start(ctx); err != nil {
		return "", err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	// Re-read the stored record each run so writes by another process
	// (rename, end, appended turns) are merged instead of clobbered by
	// the persist below.
	if a.storage != nil {
		rec, err := a.storage.Read(ctx, a.runID)
		switch {
		case err == nil:
			if err := a.mergeRecordLocked(rec); err != nil {
				return "", err
			}
		case err == store.ErrNotFound:
		default:
			return "", fmt.Errorf("failed to read run: %w", err)
		}
	}
	if !a.active {
		return "", ErrEnded
	}

	runStart := time.Now()
	a.emitLocked(emit.MsgRunStart, map[string]interface{}{"message_len": len(message)})

	text, usageMeta, err := a.exchangeLocked(ctx, message, stream)
	if err != nil {
		a.emitLocked(emit.MsgRunError, map[string]interface{}{"error": err.Error()})
		if a.metrics != nil {
			a.metrics.RecordRun("error")
		}
		return "", err
	}

	if err := a.persistLocked(ctx, false); err != nil {
		return "", fmt.Errorf("failed to persist run: %w", err)
	}
	if a.storage != nil {
		a.emitLocked(emit.MsgMemorySaved, nil)
	}

	meta := map[string]interface{}{
		"duration_ms": time.Since(runStart).Milliseconds(),
	}
	for k, v := range usageMeta {
		meta[k] = v
	}
	a.emitLocked(emit.MsgRunEnd, meta)
	if a.metrics != nil {
		a.metrics.RecordRun("success")
	}
	return text, nil
}

// exchangeLocked performs the prompt assembly, retrieval, model calls,
// and tool loop for one message, and records the turn in memory.
func (a *Assistant) exchangeLocked(ctx context.Context, message string, stream func(delta string) error) (string, map[string]interface{}, error) {
	// A failed exchange rolls memory back so the next successful run
	// does not persist a phantom turn.
	saved := a.memory
	savedSystem := a.systemRecorded
	fail := func(err error) (string, map[string]interface{}, error) {
		a.memory = saved
		a.systemRecorded = savedSystem
		return "", nil, err
	}

	systemPrompt, err := a.buildSystemPrompt()
	if err != nil {
		return fail(err)
	}

	references := ""
	if a.addReferences && a.knowledge != nil {
		references, err = a.retrieveLocked(ctx, message)
		if err != nil {
			return fail(err)
		}
	}

	history := ""
	if a.historyInPrompt {
		history = a.memory.FormattedHistory(a.historyCount)
	}

	userPrompt := a.buildUserPrompt(message, references, history)

	messages := make([]model.Message, 0, 4)
	if systemPrompt != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: systemPrompt})
	}
	if a.historyInMessages {
		messages = append(messages, a.memory.LastN(a.historyCount)...)
	}
	userMsg := model.Message{Role: model.RoleUser, Content: userPrompt}
	messages = append(messages, userMsg)

	var specs []model.ToolSpec
	if a.tools != nil && a.tools.Len() > 0 {
		specs = a.tools.Specs()
	}

	if systemPrompt != "" && !a.systemRecorded {
		a.memory.AddLLMMessage(model.Message{Role: model.RoleSystem, Content: systemPrompt})
		a.systemRecorded = true
	}
	a.memory.AddChatMessage(model.Message{Role: model.RoleUser, Content: message})
	a.memory.AddLLMMessage(userMsg)

	var totalIn, totalOut int
	for round := 0; ; round++ {
		if round >= a.maxToolRounds {
			return fail(ErrToolRounds)
		}

		out, err := a.callModelLocked(ctx, messages, specs, stream)
		if err != nil {
			return fail(err)
		}
		totalIn += out.Usage.InputTokens
		totalOut += out.Usage.OutputTokens

		if len(out.ToolCalls) == 0 || a.tools == nil {
			reply := model.Message{Role: model.RoleAssistant, Content: out.Text}
			a.memory.AddChatMessage(reply)
			a.memory.AddLLMMessage(reply)
			meta := map[string]interface{}{
				"tokens_in":  totalIn,
				"tokens_out": totalOut,
			}
			return out.Text, meta, nil
		}

		assistantMsg := model.Message{
			Role:      model.RoleAssistant,
			Content:   out.Text,
			ToolCalls: out.ToolCalls,
		}
		messages = append(messages, assistantMsg)
		a.memory.AddLLMMessage(assistantMsg)

		for _, call := range out.ToolCalls {
			result := a.executeToolLocked(ctx, call)
			toolMsg := model.Message{
				Role:       model.RoleTool,
				Content:    result,
				Name:       call.Name,
				ToolCallID: call.ID,
			}
			messages = append(messages, toolMsg)
			a.memory.AddLLMMessage(toolMsg)
		}
	}
}

func (a *Assistant) callModelLocked(ctx context.Context, messages []model.Message, specs []model.ToolSpec, stream func(delta string) error) (model.ChatOut, error) {
	start := time.Now()

	var out model.ChatOut
	var err error
	if stream != nil {
		if sm, ok := a.chat.(model.StreamingChatModel); ok {
			out, err = sm.ChatStream(ctx, messages, specs, stream)
		} else {
			out, err = a.chat.Chat(ctx, messages, specs)
			if err == nil && out.Text != "" {
				if cbErr := stream(out.Text); cbErr != nil {
					err = cbErr
				}
			}
		}
	} else {
		out, err = a.chat.Chat(ctx, messages, specs)
	}

	status := "success"
	if err != nil {
		status = "error"
	}
	provider := a.providerName()
	if a.metrics != nil {
		a.metrics.RecordLLMLatency(provider, time.Since(start), status)
		a.metrics.RecordTokens(provider, out.Usage.InputTokens, out.Usage.OutputTokens)
	}

	meta := map[string]interface{}{
		"provider":    provider,
		"duration_ms": time.Since(start).Milliseconds(),
		"tokens_in":   out.Usage.InputTokens,
		"tokens_out":  out.Usage.OutputTokens,
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	a.emitLocked(emit.MsgLLMCall, meta)

	if err != nil {
		return model.ChatOut{}, fmt.Errorf("model call failed: %w", err)
	}
	return out, nil
}

// retrieveLocked performs a timed knowledge search and renders the
// results as a JSON references block. Empty results return "".
func (a *Assistant) retrieveLocked(ctx context.Context, query string) (string, error) {
	start := time.Now()
	docs, err := a.knowledge.Search(ctx, query)
	elapsed := time.Since(start)

	if a.metrics != nil {
		a.metrics.RecordRetrievalLatency(elapsed)
	}
	meta := map[string]interface{}{
		"duration_ms": elapsed.Milliseconds(),
		"references":  len(docs),
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	a.emitLocked(emit.MsgRetrieval, meta)

	if err != nil {
		return "", fmt.Errorf("knowledge search failed: %w", err)
	}
	if len(docs) == 0 {
		return "", nil
	}

	references := renderReferences(docs)
	a.memory.AddReferences(References{
		Query:       query,
		References:  references,
		TimeSeconds: roundSeconds(elapsed),
	})
	return references, nil
}

func (a *Assistant) executeToolLocked(ctx context.Context, call model.ToolCall) string {
	start := time.Now()
	output, err := a.tools.Call(ctx, call.Name, call.Input)

	status := "success"
	if err != nil {
		status = "error"
	}
	if a.metrics != nil {
		a.metrics.RecordToolCall(call.Name, status)
	}
	meta := map[string]interface{}{
		"tool":        call.Name,
		"duration_ms": time.Since(start).Milliseconds(),
	}
	if err != nil {
		meta["error"] = err.Error()
	}
	a.emitLocked(emit.MsgToolCall, meta)

	if err != nil {
		return fmt.Sprintf("error: %v", err)
	}
	data, merr := json.Marshal(output)
	if merr != nil {
		return fmt.Sprintf("%v", output)
	}
	return string(data)
}

// GenerateName asks the model for a short title for the conversation.
// The title is at most 5 words; if the model returns more than 15
// words, the request is retried once.
func (a *Assistant) GenerateName(ctx context.Context) (string, error) {
	if a.chat == nil {
		return "", ErrNoModel
	}

	a.mu.Lock()
	history := a.memory.FormattedHistory(6)
	a.mu.Unlock()

	prompt := "Provide a name for this conversation in 5 words or fewer. " +
		"Respond with only the name, no quotes or explanation.\n\n" + history

	for attempt := 0; attempt < 2; attempt++ {
		out, err := a.chat.Chat(ctx, []model.Message{
			{Role: model.RoleUser, Content: prompt},
		}, nil)
		if err != nil {
			return "", fmt.Errorf("failed to generate name: %w", err)
		}

		name := cleanName(out.Text)
		if name != "" && len(strings.Fields(name)) <= 15 {
			return name, nil
		}
	}
	return "", fmt.Errorf("model did not produce a usable name")
}

// AutoRename generates a name for the run and persists it.
func (a *Assistant) AutoRename(ctx context.Context) (string, error) {
	name, err := a.GenerateName(ctx)
	if err != nil {
		return "", err
	}
	if err := a.Rename(ctx, name); err != nil {
		return "", err
	}
	return name, nil
}

// Rename sets the run's display name and persists it when storage is
// attached.
func (a *Assistant) Rename(ctx context.Context, name string) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.name = name
	if a.storage == nil {
		return nil
	}
	return a.persistLocked(ctx, false)
}

func (a *Assistant) recordIntroductionLocked() {
	if a.introduction == "" || len(a.memory.ChatHistory) > 0 {
		return
	}
	a.memory.AddChatMessage(model.Message{
		Role:    model.RoleAssistant,
		Content: a.introduction,
	})
}

// mergeRecordLocked fills unset local fields from a stored record.
// Local name and metadata win when both sides are set.
func (a *Assistant) mergeRecordLocked(rec store.RunRecord) error {
	if len(rec.Memory) > 0 {
		var mem Memory
		if err := json.Unmarshal(rec.Memory, &mem); err != nil {
			return fmt.Errorf("failed to decode stored memory: %w", err)
		}
		a.memory = mem
	}
	if a.name == "" {
		a.name = rec.Name
	}
	if a.userID == "" {
		a.userID = rec.UserID
	}
	if a.meta == nil && len(rec.Meta) > 0 {
		var meta map[string]interface{}
		if err := json.Unmarshal(rec.Meta, &meta); err != nil {
			return fmt.Errorf("failed to decode stored metadata: %w", err)
		}
		a.meta = meta
	}
	a.active = rec.Active
	a.recordIntroductionLocked()
	return nil
}

func (a *Assistant) persistLocked(ctx context.Context, create bool) error {
	if a.storage == nil {
		return nil
	}

	memJSON, err := json.Marshal(a.memory)
	if err != nil {
		return fmt.Errorf("failed to encode memory: %w", err)
	}
	var metaJSON []byte
	if a.meta != nil {
		metaJSON, err = json.Marshal(a.meta)
		if err != nil {
			return fmt.Errorf("failed to encode metadata: %w", err)
		}
	}

	rec := store.RunRecord{
		RunID:  a.runID,
		Name:   a.name,
		UserID: a.userID,
		Memory: memJSON,
		Meta:   metaJSON,
		Active: a.active,
	}
	if create {
		return a.storage.Create(ctx, rec)
	}
	return a.storage.Upsert(ctx, rec)
}

func (a *Assistant) emitLocked(msg string, meta map[string]interface{}) {
	a.seq++
	a.emitter.Emit(emit.Event{
		RunID: a.runID,
		Seq:   a.seq,
		Msg:   msg,
		Meta:  meta,
	})
}

func (a *Assistant) providerName() string {
	type named interface{ ModelName() string }
	if m, ok := a.chat.(named); ok {
		return m.ModelName()
	}
	return "unknown"
}

// renderReferences converts retrieved documents to a JSON block for the
// prompt.
func renderReferences(docs []document.Document) string {
	type ref struct {
		Name    string `json:"name,omitempty"`
		Content string `json:"content"`
	}
	refs := make([]ref, 0, len(docs))
	for _, doc := range docs {
		refs = append(refs, ref{Name: doc.Name, Content: doc.Content})
	}
	data, err := json.MarshalIndent(refs, "", "  ")
	if err != nil {
		return ""
	}
	return string(data)
}

func cleanName(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "\"'`")
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func roundSeconds(d time.Duration) float64 {
	return float64(d.Microseconds()/100) / 10000
}
