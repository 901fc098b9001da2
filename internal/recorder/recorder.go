package recorder

import (
	"time"

	"FinAnalyst/internal/model"
)

// Entry is one journaled report as read back from storage.
type Entry struct {
	SessionID string
	QueryID   string
	Query     string
	Kind      model.ReportKind
	Tickers   []string
	Text      string
	GenErr    string
	CreatedAt time.Time
}

// Recorder journals completed reports for later review. It is not session memory:
// nothing read from it is fed back into a conversation.
type Recorder interface {
	RecordReport(sessionID string, q model.Query, r *model.Report) error
	Recent(limit int) ([]Entry, error)
	Close() error
}
