package notify

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

var telegramEndpoint = tgbotapi.APIEndpoint

// Telegram posts plain-text alerts with sendMessage. Consecutive messages are
// spaced by at least interval to stay under the chat rate limit.
type Telegram struct {
	bot      *tgbotapi.BotAPI
	chatID   int64
	channel  string
	interval time.Duration

	mu       sync.Mutex
	lastSend time.Time
}

// NewTelegram connects to the Bot API. chatID is a numeric id or an @channel
// username. timeout bounds each API call.
func NewTelegram(token, chatID string, timeout, interval time.Duration) (*Telegram, error) {
	return newTelegram(token, chatID, telegramEndpoint, timeout, interval)
}

func newTelegram(token, chatID, endpoint string, timeout, interval time.Duration) (*Telegram, error) {
	if token == "" || chatID == "" {
		return nil, fmt.Errorf("telegram token and chat id are required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, &http.Client{Timeout: timeout})
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	bot.Debug = false

	t := &Telegram{bot: bot, interval: interval}
	if id, err := strconv.ParseInt(chatID, 10, 64); err == nil {
		t.chatID = id
	} else {
		t.channel = "@" + strings.TrimPrefix(chatID, "@")
	}

	slog.Info("Telegram notifier initialized", "bot", bot.Self.UserName, "chat_id", chatID)
	return t, nil
}

func (t *Telegram) Name() string { return "telegram" }

// Bot exposes the underlying client for the command loop.
func (t *Telegram) Bot() *tgbotapi.BotAPI { return t.bot }

func (t *Telegram) Notify(ctx context.Context, a Alert) error {
	return t.Send(ctx, a.Text)
}

// Send posts text to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if wait := t.interval - time.Since(t.lastSend); wait > 0 && !t.lastSend.IsZero() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	var msg tgbotapi.MessageConfig
	if t.channel != "" {
		msg = tgbotapi.NewMessageToChannel(t.channel, text)
	} else {
		msg = tgbotapi.NewMessage(t.chatID, text)
	}
	msg.DisableWebPagePreview = true

	_, err := t.bot.Send(msg)
	t.lastSend = time.Now()
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	return nil
}

// lazyTelegram connects on first use. It stands in for a Telegram notifier
// whose Bot API was unreachable at startup; every alert sent while it still
// cannot connect fails.
type lazyTelegram struct {
	connect func() (*Telegram, error)

	mu sync.Mutex
	tg *Telegram
}

func (l *lazyTelegram) Name() string { return "telegram" }

func (l *lazyTelegram) Notify(ctx context.Context, a Alert) error {
	l.mu.Lock()
	if l.tg == nil {
		tg, err := l.connect()
		if err != nil {
			l.mu.Unlock()
			return fmt.Errorf("telegram unavailable: %w", err)
		}
		l.tg = tg
	}
	tg := l.tg
	l.mu.Unlock()
	return tg.Notify(ctx, a)
}
