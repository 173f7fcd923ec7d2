package detector

import (
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/oddsmath"
)

// CutoffLayout renders cutoffs as day/month hour:minute.
const CutoffLayout = "02/01 15:04"

const noCutoff = "N/A"

// Summary describes the rows of one competition.
type Summary struct {
	NbOdds int
	// AvgPayoutRate is meaningful only when PayoutAvailable is true.
	AvgPayoutRate   float64
	PayoutAvailable bool
	CutoffDisplay   string
}

// Summarize computes the summary of id over table. The payout rate averages
// the events that have exactly two rows with valid odds. The cutoff is the
// first one found in row order, shown in loc.
func Summarize(id models.Identity, table models.Table, loc *time.Location) Summary {
	if loc == nil {
		loc = time.UTC
	}
	rows := table.Filter(id)
	s := Summary{NbOdds: len(rows), CutoffDisplay: noCutoff}

	var (
		order  []string
		events = make(map[string][]models.OddsRow)
	)
	for _, r := range rows {
		if r.Cutoff != nil && s.CutoffDisplay == noCutoff {
			s.CutoffDisplay = r.Cutoff.In(loc).Format(CutoffLayout)
		}
		if r.Event == nil {
			continue
		}
		if _, ok := events[*r.Event]; !ok {
			order = append(order, *r.Event)
		}
		events[*r.Event] = append(events[*r.Event], r)
	}

	var sum float64
	n := 0
	for _, ev := range order {
		group := events[ev]
		if len(group) != 2 || group[0].Odd == nil || group[1].Odd == nil {
			continue
		}
		rate, ok := oddsmath.PayoutRate(*group[0].Odd, *group[1].Odd)
		if !ok {
			continue
		}
		sum += rate
		n++
	}
	if n > 0 {
		s.AvgPayoutRate = sum / float64(n)
		s.PayoutAvailable = true
	}
	return s
}
