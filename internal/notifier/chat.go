package notifier

import (
	"context"
	"log"
	"strings"

	"FinAnalyst/internal/coordinator"
	"FinAnalyst/internal/model"
)

const chatHelp = `Send a question about one or more stocks, e.g. "Analyze AAPL and NVDA this week".
Follow-up questions without a ticker reuse the previous ones.
/history  list this chat's queries
/reset    forget this chat's history`

// ChatBot answers chat messages, keeping one session per chat.
type ChatBot struct {
	Handler  coordinator.QueryHandler
	Sessions *coordinator.SessionStore
}

// NewChatBot creates a bot over h.
func NewChatBot(h coordinator.QueryHandler) *ChatBot {
	return &ChatBot{Handler: h, Sessions: coordinator.NewSessionStore()}
}

// HandleMessage implements MessageHandler.
func (b *ChatBot) HandleMessage(ctx context.Context, chatID, text string) string {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return ""
	}
	switch strings.ToLower(fields[0]) {
	case "/start", "/help":
		return chatHelp
	case "/history":
		return FormatHistory(b.Sessions.Get(chatID).Turns())
	case "/reset":
		b.Sessions.Reset(chatID)
		return "History cleared."
	}

	rep, err := b.Handler.Handle(ctx, model.NewQuery(text), b.Sessions.Get(chatID))
	if err != nil {
		log.Printf("[ERROR] chat %s: %v", chatID, err)
		return ""
	}
	return FormatReport("FinAnalyst", rep)
}
