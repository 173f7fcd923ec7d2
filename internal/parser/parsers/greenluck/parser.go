package greenluck

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/oddsmath"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const (
	sourceName  = "greenluck"
	displayName = "Greenluck"
)

func init() {
	parsers.Register(sourceName, func(cfg *config.Config) parsers.Fetcher { return NewParser(cfg) })
}

type Parser struct {
	baseURL string
	now     func() time.Time
}

func NewParser(cfg *config.Config) *Parser {
	src, _ := cfg.Source(sourceName)
	return &Parser{baseURL: src.BaseURL, now: time.Now}
}

func (p *Parser) Name() string { return sourceName }

// Fetch queries every sport in turn. A sport that fails is skipped; the fetch
// fails only when every sport did.
func (p *Parser) Fetch(ctx context.Context, sportIDs []string, opts transport.Options) (models.Table, error) {
	client, err := NewClient(p.baseURL, opts)
	if err != nil {
		return models.Table{}, parsers.Wrap(sourceName, err)
	}

	var (
		rows    []models.OddsRow
		failed  int
		lastErr error
	)
	for _, sportID := range sportIDs {
		events, err := client.Popular(ctx, sportID)
		if err != nil {
			if ctx.Err() != nil {
				return models.Table{}, parsers.Wrap(sourceName, ctx.Err())
			}
			slog.Warn("Greenluck: sport failed, skipping", "sport_id", sportID, "error", err)
			failed++
			lastErr = err
			continue
		}
		rows = append(rows, buildRows(events, p.now())...)
	}
	if len(sportIDs) > 0 && failed == len(sportIDs) {
		return models.Table{}, parsers.Wrap(sourceName, fmt.Errorf("all %d sports failed: %w", failed, lastErr))
	}
	return models.NewTable(rows, models.RequiredColumns...), nil
}

func buildRows(events []Event, extractedAt time.Time) []models.OddsRow {
	var rows []models.OddsRow
	for _, ev := range events {
		if len(ev.MainOdds.Main) != 2 {
			continue
		}
		sides := make([]MainOdd, 0, 2)
		for _, o := range ev.MainOdds.Main {
			sides = append(sides, o)
		}
		sort.SliceStable(sides, func(i, j int) bool {
			return sideLess(sides[i].TeamSide.String(), sides[j].TeamSide.String())
		})

		var cutoff *time.Time
		if t, ok := parseDate(ev.DateStart); ok {
			cutoff = &t
		}
		event := sides[0].TeamName + " vs " + sides[1].TeamName

		for _, side := range sides {
			if isYesNo(side.TeamName) {
				continue
			}
			row := models.OddsRow{
				Bookmaker:   displayName,
				Competition: ev.TournamentName,
				ExtractedAt: extractedAt,
				Cutoff:      cutoff,
				Event:       models.StringPtr(event),
				Competitor:  models.StringPtr(side.TeamName),
			}
			if odd, err := oddsmath.ParseDecimal(side.OddValue.String()); err == nil {
				row.Odd = models.FloatPtr(odd)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

// sideLess orders team sides numerically when both are numbers.
func sideLess(a, b string) bool {
	ai, errA := strconv.Atoi(a)
	bi, errB := strconv.Atoi(b)
	if errA == nil && errB == nil {
		return ai < bi
	}
	return a < b
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func isYesNo(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "oui" || n == "non"
}
