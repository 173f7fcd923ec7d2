// Package notify delivers new-competition alerts to Telegram, a webhook or a
// Kafka topic.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
)

// Alert is one new competition ready to be delivered.
type Alert struct {
	Identity    models.Identity `json:"-"`
	Bookmaker   string          `json:"bookmaker"`
	Competition string          `json:"competition"`
	Text        string          `json:"text"`
	NbOdds      int             `json:"nb_odds"`
	// PayoutRate is nil when no event allowed computing it.
	PayoutRate *float64  `json:"avg_payout_rate"`
	Cutoff     string    `json:"cutoff"`
	DetectedAt time.Time `json:"detected_at"`
}

type Notifier interface {
	Name() string
	Notify(ctx context.Context, a Alert) error
}

// Multi sends every alert to all of its notifiers and joins their errors.
type Multi []Notifier

func (m Multi) Name() string { return "multi" }

func (m Multi) Notify(ctx context.Context, a Alert) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, a); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", n.Name(), err))
		}
	}
	return errors.Join(errs...)
}

// Log writes alerts to the logger. Used when no channel is configured.
type Log struct{}

func (Log) Name() string { return "log" }

func (Log) Notify(ctx context.Context, a Alert) error {
	slog.Info("New competition (no notification channel configured)",
		"bookmaker", a.Bookmaker, "competition", a.Competition, "nb_odds", a.NbOdds, "cutoff", a.Cutoff)
	return nil
}
