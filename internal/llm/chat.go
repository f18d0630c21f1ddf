package llm

import (
	"context"
	"sync"
)

// Completer produces an assistant reply for a full message history.
type Completer interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// Chat is a message history bound to one system prompt. The first message
// is always the system prompt; Ask restores it if the history was pruned.
type Chat struct {
	completer Completer
	system    string

	mu      sync.Mutex
	history []Message
}

func NewChat(completer Completer, systemPrompt string) *Chat {
	return &Chat{
		completer: completer,
		system:    systemPrompt,
		history:   []Message{{Role: RoleSystem, Content: systemPrompt}},
	}
}

// Ask appends the user message, submits the full history and records the
// assistant reply. On error the history is left unchanged.
func (c *Chat) Ask(ctx context.Context, user string) (string, error) {
	c.mu.Lock()
	c.ensureSystemLocked()
	messages := make([]Message, len(c.history), len(c.history)+2)
	copy(messages, c.history)
	messages = append(messages, Message{Role: RoleUser, Content: user})
	c.mu.Unlock()

	reply, err := c.completer.Complete(ctx, messages)
	if err != nil {
		return "", err
	}

	c.mu.Lock()
	c.history = append(c.history, Message{Role: RoleUser, Content: user}, Message{Role: RoleAssistant, Content: reply})
	c.mu.Unlock()
	return reply, nil
}

// Clear drops all turns, retaining only the system prompt.
func (c *Chat) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.history = []Message{{Role: RoleSystem, Content: c.system}}
}

// History returns a snapshot copy of the message history.
func (c *Chat) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.history))
	copy(out, c.history)
	return out
}

func (c *Chat) ensureSystemLocked() {
	if len(c.history) == 0 || c.history[0].Role != RoleSystem {
		c.history = append([]Message{{Role: RoleSystem, Content: c.system}}, c.history...)
	}
}
