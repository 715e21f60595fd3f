package emit

import "sync"

// BufferedEmitter implements Emitter by storing events in memory.
//
// Events are organized by runID for retrieval and filtering. Intended
// for development, testing, and post-run analysis.
//
// Warning: all events stay in memory. For long-lived assistants with
// many runs, clear old runs periodically.
//
// Example usage:
//
//	emitter := emit.NewBufferedEmitter()
//	a := assistant.New(m, assistant.WithEmitter(emitter))
//	a.Run(ctx, "hello")
//
//	llmEvents := emitter.HistoryWithFilter(a.RunID(), emit.HistoryFilter{Msg: emit.MsgLLMCall})
type BufferedEmitter struct {
	mu     sync.RWMutex
	events map[string][]Event // runID -> events
}

// HistoryFilter specifies criteria for filtering run history.
//
// All fields are optional; set fields combine with AND logic.
type HistoryFilter struct {
	Msg    string // filter by message (empty = no filter)
	MinSeq *int   // minimum sequence number (nil = no filter)
	MaxSeq *int   // maximum sequence number (nil = no filter)
}

// NewBufferedEmitter creates an empty BufferedEmitter.
func NewBufferedEmitter() *BufferedEmitter {
	return &BufferedEmitter{
		events: make(map[string][]Event),
	}
}

// Emit stores the event. Safe for concurrent use.
func (b *BufferedEmitter) Emit(event Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events[event.RunID] = append(b.events[event.RunID], event)
}

// History returns all events for a run in emission order. Returns an
// empty slice when the run has no events.
func (b *BufferedEmitter) History(runID string) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	if events == nil {
		return []Event{}
	}
	result := make([]Event, len(events))
	copy(result, events)
	return result
}

// HistoryWithFilter returns events for a run matching the filter.
func (b *BufferedEmitter) HistoryWithFilter(runID string, filter HistoryFilter) []Event {
	b.mu.RLock()
	defer b.mu.RUnlock()

	events := b.events[runID]
	if events == nil {
		return []Event{}
	}

	var result []Event
	for _, event := range events {
		if !matchesFilter(event, filter) {
			continue
		}
		result = append(result, event)
	}
	if result == nil {
		return []Event{}
	}
	return result
}

// Clear removes stored events. A non-empty runID clears only that run;
// an empty runID clears everything.
func (b *BufferedEmitter) Clear(runID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if runID == "" {
		b.events = make(map[string][]Event)
	} else {
		delete(b.events, runID)
	}
}

func matchesFilter(event Event, filter HistoryFilter) bool {
	if filter.Msg != "" && event.Msg != filter.Msg {
		return false
	}
	if filter.MinSeq != nil && event.Seq < *filter.MinSeq {
		return false
	}
	if filter.MaxSeq != nil && event.Seq > *filter.MaxSeq {
		return false
	}
	return true
}
