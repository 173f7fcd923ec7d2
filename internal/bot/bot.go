// Package bot answers Telegram commands about the stored competitions.
package bot

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

const (
	helpText = "✅ Welcome to the opening alert bot!\n\n" +
		"Available commands:\n" +
		"- /test : check that the bot answers\n" +
		"- /competitions : list the stored competitions"
	testText    = "🔔 The bot is working!"
	emptyText   = "⚠️ No competition available yet."
	deniedText  = "Access denied. You are not authorized to use this bot."
	unknownText = "Unknown command. Use /start to see available commands."
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot polls Telegram updates and replies to commands.
type Bot struct {
	api     *tgbotapi.BotAPI
	send    sender
	store   storage.Store
	cfg     config.BotConfig
	timeout time.Duration
}

func New(api *tgbotapi.BotAPI, store storage.Store, cfg config.BotConfig) *Bot {
	if cfg.ListLimit <= 0 {
		cfg.ListLimit = 30
	}
	if cfg.UpdateTimeout <= 0 {
		cfg.UpdateTimeout = 60
	}
	b := &Bot{api: api, store: store, cfg: cfg, timeout: 10 * time.Second}
	if api != nil {
		b.send = api
	}
	return b
}

// Run handles updates until ctx is done.
func (b *Bot) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.UpdateTimeout
	updates := b.api.GetUpdatesChan(u)

	slog.Info("Telegram bot started", "account", b.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			slog.Info("Telegram bot stopped")
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil {
				continue
			}
			b.handle(ctx, update.Message)
		}
	}
}

func (b *Bot) allowed(userID int64) bool {
	if len(b.cfg.AllowedUserIDs) == 0 {
		return true
	}
	for _, id := range b.cfg.AllowedUserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func (b *Bot) handle(ctx context.Context, m *tgbotapi.Message) {
	var reply string
	if m.From != nil && !b.allowed(m.From.ID) {
		reply = deniedText
	} else {
		var ok bool
		reply, ok = b.Reply(ctx, m.Text)
		if !ok {
			return
		}
	}

	msg := tgbotapi.NewMessage(m.Chat.ID, reply)
	if _, err := b.send.Send(msg); err != nil {
		slog.Error("Failed to send reply", "chat_id", m.Chat.ID, "error", err)
	}
}

// Reply returns the answer to a message text. ok is false for non-commands.
func (b *Bot) Reply(ctx context.Context, text string) (reply string, ok bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", false
	}
	// "/cmd@botname" in groups
	command, _, _ := strings.Cut(strings.ToLower(fields[0]), "@")

	switch command {
	case "/start", "/help":
		return helpText, true
	case "/test":
		return testText, true
	case "/competitions":
		ctx, cancel := context.WithTimeout(ctx, b.timeout)
		defer cancel()
		c, err := b.store.Load(ctx)
		if err != nil {
			slog.Error("Failed to load competitions", "error", err)
			return "⚠️ Could not read the stored competitions.", true
		}
		return FormatCompetitions(c.Identities(), b.cfg.ListLimit), true
	default:
		return unknownText, true
	}
}

// FormatCompetitions lists the first limit identities and counts the rest.
func FormatCompetitions(ids []models.Identity, limit int) string {
	if len(ids) == 0 {
		return emptyText
	}
	shown := ids
	if limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	var b strings.Builder
	b.WriteString("🏆 Available competitions:")
	for _, id := range shown {
		b.WriteString("\n- ")
		b.WriteString(id.String())
	}
	if rest := len(ids) - len(shown); rest > 0 {
		fmt.Fprintf(&b, "\n... and %d others", rest)
	}
	return b.String()
}
