package coordinator

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"FinAnalyst/internal/model"
)

// Session is the memory of one conversation: an append-only list of turns.
// A Session is owned by a single conversation and is not safe for concurrent use.
type Session struct {
	ID        string
	CreatedAt time.Time
	turns     []model.Turn
}

// NewSession starts an empty conversation.
func NewSession() *Session {
	return &Session{ID: uuid.NewString(), CreatedAt: time.Now()}
}

// Append records a completed exchange.
func (s *Session) Append(q model.Query, r *model.Report) {
	s.turns = append(s.turns, model.Turn{Query: q, Report: r})
}

// Turns returns a copy of the history, oldest first.
func (s *Session) Turns() []model.Turn {
	out := make([]model.Turn, len(s.turns))
	copy(out, s.turns)
	return out
}

// Len returns the number of completed turns.
func (s *Session) Len() int { return len(s.turns) }

// lastAnalysis returns the most recent report that covered at least one ticker.
func (s *Session) lastAnalysis() *model.Report {
	for i := len(s.turns) - 1; i >= 0; i-- {
		if r := s.turns[i].Report; r != nil && r.Kind == model.ReportAnalysis && len(r.Tickers) > 0 {
			return r
		}
	}
	return nil
}

// SessionStore keeps one session per conversation key, such as a chat ID or a watch job name.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// Get returns the session for key, starting one on first use.
func (s *SessionStore) Get(key string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[key]
	if !ok {
		session = NewSession()
		s.sessions[key] = session
	}
	return session
}

// Reset drops the session for key; the next Get starts a fresh one.
func (s *SessionStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
