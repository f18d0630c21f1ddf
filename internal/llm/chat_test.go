package llm

import (
	"context"
	"errors"
	"testing"
)

type completerFunc func(ctx context.Context, messages []Message) (string, error)

func (f completerFunc) Complete(ctx context.Context, messages []Message) (string, error) {
	return f(ctx, messages)
}

func TestChatAskAppendsHistory(t *testing.T) {
	var seen []Message
	chat := NewChat(completerFunc(func(ctx context.Context, messages []Message) (string, error) {
		seen = messages
		return "hi there", nil
	}), "be helpful")

	reply, err := chat.Ask(context.Background(), "hello")
	if err != nil {
		t.Fatalf("ask: %v", err)
	}
	if reply != "hi there" {
		t.Fatalf("reply = %q", reply)
	}

	if len(seen) != 2 || seen[0].Role != RoleSystem || seen[0].Content != "be helpful" {
		t.Fatalf("submitted messages = %+v", seen)
	}
	if seen[1].Role != RoleUser || seen[1].Content != "hello" {
		t.Fatalf("user turn = %+v", seen[1])
	}

	history := chat.History()
	if len(history) != 3 {
		t.Fatalf("history len = %d, want 3", len(history))
	}
	if history[2].Role != RoleAssistant || history[2].Content != "hi there" {
		t.Fatalf("assistant turn = %+v", history[2])
	}
}

func TestChatAskErrorLeavesHistory(t *testing.T) {
	chat := NewChat(completerFunc(func(ctx context.Context, messages []Message) (string, error) {
		return "", errors.New("down")
	}), "sys")

	if _, err := chat.Ask(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
	history := chat.History()
	if len(history) != 1 || history[0].Role != RoleSystem {
		t.Fatalf("history = %+v, want only the system prompt", history)
	}
}

func TestChatClearKeepsSystemPrompt(t *testing.T) {
	chat := NewChat(completerFunc(func(ctx context.Context, messages []Message) (string, error) {
		return "ok", nil
	}), "sys")
	if _, err := chat.Ask(context.Background(), "one"); err != nil {
		t.Fatal(err)
	}
	chat.Clear()

	history := chat.History()
	if len(history) != 1 || history[0].Content != "sys" {
		t.Fatalf("history after clear = %+v", history)
	}
}

func TestChatHistoryGrowsAcrossTurns(t *testing.T) {
	turn := 0
	chat := NewChat(completerFunc(func(ctx context.Context, messages []Message) (string, error) {
		turn++
		// Each ask must see everything said so far.
		want := 2*turn - 1 + 1
		if len(messages) != want {
			t.Fatalf("turn %d saw %d messages, want %d", turn, len(messages), want)
		}
		return "reply", nil
	}), "sys")

	for i := 0; i < 3; i++ {
		if _, err := chat.Ask(context.Background(), "again"); err != nil {
			t.Fatal(err)
		}
	}
}
