// Package report renders analysis prompts, calls the text-generation backend and
// assembles the final report text.
package report

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"FinAnalyst/internal/model"
)

// ErrGenerationUnavailable wraps every failure of the text-generation step.
var ErrGenerationUnavailable = errors.New("generation unavailable")

// Generator turns ticker contexts into a narrative using a Backend.
type Generator struct {
	Backend      Backend
	HistoryTurns int
	Timeout      time.Duration
}

// NewGenerator creates a generator that replays up to historyTurns previous turns.
func NewGenerator(backend Backend, historyTurns int, timeout time.Duration) *Generator {
	return &Generator{Backend: backend, HistoryTurns: historyTurns, Timeout: timeout}
}

// Generate renders the prompt for contexts and returns the backend output verbatim
// (surrounding whitespace trimmed). Failures wrap ErrGenerationUnavailable.
func (g *Generator) Generate(ctx context.Context, query string, contexts []model.AnalysisContext, history []model.Turn) (string, error) {
	prompt, err := BuildPrompt(query, contexts)
	if err != nil {
		return "", err
	}
	if g.Backend == nil {
		return "", fmt.Errorf("%w: no backend configured", ErrGenerationUnavailable)
	}

	if g.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.Timeout)
		defer cancel()
	}

	out, err := g.Backend.Complete(ctx, g.messages(prompt, history))
	if err != nil {
		return "", fmt.Errorf("%w: %s: %v", ErrGenerationUnavailable, g.Backend.Name(), err)
	}
	out = strings.TrimSpace(out)
	if out == "" {
		return "", fmt.Errorf("%w: %s: empty response", ErrGenerationUnavailable, g.Backend.Name())
	}
	return out, nil
}

func (g *Generator) messages(prompt string, history []model.Turn) []Message {
	msgs := []Message{{Role: "system", Content: systemPrompt}}
	if n := g.HistoryTurns; n > 0 && len(history) > 0 {
		if len(history) > n {
			history = history[len(history)-n:]
		}
		for _, turn := range history {
			if turn.Report == nil {
				continue
			}
			reply := turn.Report.Narrative
			if reply == "" {
				reply = turn.Report.Text
			}
			msgs = append(msgs,
				Message{Role: "user", Content: turn.Query.Text},
				Message{Role: "assistant", Content: reply},
			)
		}
	}
	return append(msgs, Message{Role: "user", Content: prompt})
}
