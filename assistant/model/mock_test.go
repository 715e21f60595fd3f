package model

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
)

func TestMockChatModel_ResponseSequence(t *testing.T) {
	mock := &MockChatModel{
		Responses: []ChatOut{
			{Text: "first"},
			{Text: "second"},
		},
	}
	ctx := context.Background()
	msgs := []Message{{Role: RoleUser, Content: "hi"}}

	// Test 1: responses come back in order.
	out, err := mock.Chat(ctx, msgs, nil)
	if err != nil {
		t.Fatalf("Chat failed: %v", err)
	}
	if out.Text != "first" {
		t.Errorf("Expected 'first', got %q", out.Text)
	}

	out, _ = mock.Chat(ctx, msgs, nil)
	if out.Text != "second" {
		t.Errorf("Expected 'second', got %q", out.Text)
	}

	// Test 2: the last response repeats once consumed.
	out, _ = mock.Chat(ctx, msgs, nil)
	if out.Text != "second" {
		t.Errorf("Expected repeated 'second', got %q", out.Text)
	}

	// Test 3: every call was recorded.
	if mock.CallCount() != 3 {
		t.Errorf("Expected 3 calls, got %d", mock.CallCount())
	}
}

func TestMockChatModel_CallRecording(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "ok"}}}
	ctx := context.Background()

	specs := []ToolSpec{{Name: "calculator", Description: "does math"}}
	msgs := []Message{
		{Role: RoleSystem, Content: "You are terse."},
		{Role: RoleUser, Content: "2+2?"},
	}
	if _, err := mock.Chat(ctx, msgs, specs); err != nil {
		t.Fatalf("Chat failed: %v", err)
	}

	// Test 1: LastCall holds the messages and tool specs.
	last := mock.LastCall()
	if last == nil {
		t.Fatal("Expected a recorded call")
	}
	if len(last.Messages) != 2 || last.Messages[1].Content != "2+2?" {
		t.Errorf("Unexpected recorded messages: %+v", last.Messages)
	}
	if len(last.Tools) != 1 || last.Tools[0].Name != "calculator" {
		t.Errorf("Unexpected recorded tools: %+v", last.Tools)
	}

	// Test 2: Reset clears history and restarts the sequence.
	mock.Reset()
	if mock.CallCount() != 0 {
		t.Errorf("Expected 0 calls after Reset, got %d", mock.CallCount())
	}
	if mock.LastCall() != nil {
		t.Error("Expected nil LastCall after Reset")
	}
}

func TestMockChatModel_ErrorInjection(t *testing.T) {
	wantErr := errors.New("rate limited")
	mock := &MockChatModel{
		Responses: []ChatOut{{Text: "never"}},
		Err:       wantErr,
	}

	_, err := mock.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, wantErr) {
		t.Errorf("Expected injected error, got %v", err)
	}

	// The failed call is still recorded.
	if mock.CallCount() != 1 {
		t.Errorf("Expected 1 recorded call, got %d", mock.CallCount())
	}
}

func TestMockChatModel_ContextCancellation(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "ok"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mock.Chat(ctx, []Message{{Role: RoleUser, Content: "hi"}}, nil)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
	if mock.CallCount() != 0 {
		t.Errorf("Cancelled call should not be recorded, got %d", mock.CallCount())
	}
}

func TestMockChatModel_ChatStream(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "streamed reply"}}}
	ctx := context.Background()
	msgs := []Message{{Role: RoleUser, Content: "hi"}}

	// Test 1: the full text arrives as one delta.
	var got strings.Builder
	out, err := mock.ChatStream(ctx, msgs, nil, func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	if err != nil {
		t.Fatalf("ChatStream failed: %v", err)
	}
	if got.String() != "streamed reply" || out.Text != "streamed reply" {
		t.Errorf("Expected 'streamed reply', got delta %q out %q", got.String(), out.Text)
	}

	// Test 2: a callback error aborts the stream.
	mock.Reset()
	cbErr := errors.New("stop")
	_, err = mock.ChatStream(ctx, msgs, nil, func(string) error { return cbErr })
	if !errors.Is(err, cbErr) {
		t.Errorf("Expected callback error, got %v", err)
	}
}

func TestMockChatModel_ConcurrentAccess(t *testing.T) {
	mock := &MockChatModel{Responses: []ChatOut{{Text: "ok"}}}
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_, _ = mock.Chat(ctx, []Message{{Role: RoleUser, Content: "hi"}}, nil)
			}
		}()
	}
	wg.Wait()

	if mock.CallCount() != 1000 {
		t.Errorf("Expected 1000 calls, got %d", mock.CallCount())
	}
}

func TestInterfaceCompliance(t *testing.T) {
	var _ ChatModel = (*MockChatModel)(nil)
	var _ StreamingChatModel = (*MockChatModel)(nil)
}
