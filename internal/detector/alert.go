package detector

import (
	"fmt"
	"strings"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/notify"
)

// BuildAlert formats the message announcing id.
func BuildAlert(id models.Identity, s Summary) string {
	payout := "unavailable"
	if s.PayoutAvailable {
		payout = fmt.Sprintf("%.2f%%", s.AvgPayoutRate)
	}
	cutoff := s.CutoffDisplay
	if cutoff == "" {
		cutoff = noCutoff
	}

	var b strings.Builder
	b.WriteString("⚡ New H2H competition detected!\n")
	fmt.Fprintf(&b, "🎰 Bookmaker: %s\n", id.Bookmaker)
	fmt.Fprintf(&b, "🏆 Competition: %s\n", id.Competition)
	fmt.Fprintf(&b, "⏰ Cutoff: %s\n", cutoff)
	fmt.Fprintf(&b, "📊 Odds: %d\n", s.NbOdds)
	fmt.Fprintf(&b, "💰 Avg payout (TRJ): %s", payout)
	return b.String()
}

// NewAlert wraps the message of id with its structured fields.
func NewAlert(id models.Identity, s Summary, detectedAt time.Time) notify.Alert {
	a := notify.Alert{
		Identity:    id,
		Bookmaker:   id.Bookmaker,
		Competition: id.Competition,
		Text:        BuildAlert(id, s),
		NbOdds:      s.NbOdds,
		Cutoff:      s.CutoffDisplay,
		DetectedAt:  detectedAt,
	}
	if s.PayoutAvailable {
		rate := s.AvgPayoutRate
		a.PayoutRate = &rate
	}
	return a
}
