// Package report exports one bookmaker's odds as a spreadsheet with one sheet
// per competition, and prints a short summary of it.
package report

import (
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/oddsmath"
)

// CompetitionSummary describes the rows of one competition.
type CompetitionSummary struct {
	Competition  string
	LatestCutoff *time.Time
	NbOdds       int
	// BookPayout is the mean payout of the two-way events, as a fraction.
	BookPayout      float64
	PayoutAvailable bool
	Surebets        int
}

// Summarize groups t by competition, ordered by latest cutoff ascending.
// Competitions without any cutoff come last, by name.
func Summarize(t models.Table) []CompetitionSummary {
	byComp := make(map[string]*CompetitionSummary)
	var order []string
	events := make(map[string]map[string][]float64)

	for _, r := range t.Rows {
		if r.Competition == nil {
			continue
		}
		name := *r.Competition
		s, ok := byComp[name]
		if !ok {
			s = &CompetitionSummary{Competition: name}
			byComp[name] = s
			order = append(order, name)
			events[name] = make(map[string][]float64)
		}
		if r.Competitor != nil {
			s.NbOdds++
		}
		if r.Cutoff != nil && (s.LatestCutoff == nil || r.Cutoff.After(*s.LatestCutoff)) {
			c := *r.Cutoff
			s.LatestCutoff = &c
		}
		if r.Event != nil && r.Odd != nil {
			events[name][*r.Event] = append(events[name][*r.Event], *r.Odd)
		}
	}

	out := make([]CompetitionSummary, 0, len(order))
	for _, name := range order {
		s := byComp[name]
		var sum float64
		n := 0
		for _, odds := range events[name] {
			if len(odds) != 2 {
				continue
			}
			p, ok := oddsmath.CrossPayout(odds[0], odds[1])
			if !ok {
				continue
			}
			sum += p
			n++
			if p > 1 {
				s.Surebets++
			}
		}
		if n > 0 {
			s.BookPayout = sum / float64(n)
			s.PayoutAvailable = true
		}
		out = append(out, *s)
	}

	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].LatestCutoff, out[j].LatestCutoff
		switch {
		case a == nil && b == nil:
			return out[i].Competition < out[j].Competition
		case a == nil:
			return false
		case b == nil:
			return true
		}
		return a.Before(*b)
	})
	return out
}

// PrintSummary writes one line per competition.
func PrintSummary(w io.Writer, summaries []CompetitionSummary, loc *time.Location) {
	if loc == nil {
		loc = time.UTC
	}
	fmt.Fprintf(w, "=== Competitions (%d) ===\n", len(summaries))
	for _, s := range summaries {
		cutoff := "N/A"
		if s.LatestCutoff != nil {
			cutoff = s.LatestCutoff.In(loc).Format("2006-01-02 15:04")
		}
		payout := "n/a"
		if s.PayoutAvailable {
			payout = fmt.Sprintf("%.1f%%", s.BookPayout*100)
		}
		fmt.Fprintf(w, "- %s | Cutoff: %s | Odds: %d | TRJ: %s", s.Competition, cutoff, s.NbOdds, payout)
		if s.Surebets > 0 {
			fmt.Fprintf(w, " | Surebets: %d", s.Surebets)
		}
		fmt.Fprintln(w)
	}
}
