package notify

import (
	"io"
	"log/slog"

	"github.com/Vodeneev/openingalert/internal/pkg/config"
)

// FromConfig builds the notifiers configured in cfg. A Telegram bot that cannot
// be reached yet is retried on each alert; other channels that fail to
// initialize are logged and skipped. Without any channel alerts go to the log.
// The returned closer releases the Kafka writer when one was created.
func FromConfig(cfg *config.Config) (Notifier, io.Closer) {
	var (
		out     Multi
		closers multiCloser
	)

	if cfg.Telegram.Token != "" && cfg.Telegram.ChatID != "" {
		tc := cfg.Telegram
		connect := func() (*Telegram, error) {
			return NewTelegram(tc.Token, tc.ChatID, tc.Timeout, tc.SendInterval)
		}
		if tg, err := connect(); err != nil {
			slog.Error("Telegram not reachable, will retry on the next alert", "error", err)
			out = append(out, &lazyTelegram{connect: connect})
		} else {
			out = append(out, tg)
		}
	} else {
		slog.Warn("Telegram token or chat id not set, Telegram alerts disabled")
	}

	if cfg.Webhook.URL != "" {
		out = append(out, NewWebhook(cfg.Webhook.URL, cfg.Webhook.Timeout))
	}

	if len(cfg.Kafka.Brokers) > 0 {
		k, err := NewKafka(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			slog.Error("Kafka notifier disabled", "error", err)
		} else {
			out = append(out, k)
			closers = append(closers, k)
		}
	}

	if len(out) == 0 {
		return Log{}, closers
	}
	if len(out) == 1 {
		return out[0], closers
	}
	return out, closers
}

type multiCloser []io.Closer

func (m multiCloser) Close() error {
	var first error
	for _, c := range m {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
