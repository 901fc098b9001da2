package report

import "context"

// Message is a single chat message sent to a backend.
type Message struct {
	Role    string // "system", "user" or "assistant"
	Content string
}

// Backend is a text-generation service.
type Backend interface {
	Complete(ctx context.Context, messages []Message) (string, error)
	Name() string
}
