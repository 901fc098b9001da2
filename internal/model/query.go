package model

import (
	"time"

	"github.com/google/uuid"
)

// Query is a single user request. Immutable once received.
type Query struct {
	ID         string
	Text       string
	ReceivedAt time.Time
}

// NewQuery stamps the text with an ID and the receive time.
func NewQuery(text string) Query {
	return Query{
		ID:         uuid.NewString(),
		Text:       text,
		ReceivedAt: time.Now(),
	}
}
