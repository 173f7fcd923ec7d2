package pinnacle

import (
	"context"
	"log/slog"
	"time"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/oddsmath"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const (
	sourceName  = "pinnacle"
	displayName = "Pinnacle"
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

// Fetch lists the pre-match head-to-head matchups of each sport. Prices come
// from the full-game moneyline; a sport whose markets fail still yields its
// matchups without odds.
func (p *Parser) Fetch(ctx context.Context, sportIDs []string, opts transport.Options) (models.Table, error) {
	client, err := NewClient(p.baseURL, opts)
	if err != nil {
		return models.Table{}, parsers.Wrap(sourceName, err)
	}

	var rows []models.OddsRow
	for _, sportID := range sportIDs {
		matchups, err := client.GetSportMatchups(ctx, sportID)
		if err != nil {
			return models.Table{}, parsers.Wrap(sourceName, err)
		}
		markets, err := client.GetSportStraightMarkets(ctx, sportID)
		if err != nil {
			if ctx.Err() != nil {
				return models.Table{}, parsers.Wrap(sourceName, ctx.Err())
			}
			slog.Warn("Pinnacle: markets failed, keeping matchups without odds", "sport_id", sportID, "error", err)
		}
		rows = append(rows, buildRows(matchups, markets, p.now())...)
	}
	return models.NewTable(rows, models.RequiredColumns...), nil
}

func buildRows(matchups []Matchup, markets []Market, extractedAt time.Time) []models.OddsRow {
	moneylines := make(map[int64]map[string]float64)
	for _, m := range markets {
		if m.Type != "moneyline" || m.Period != 0 || m.IsAlternate || (m.Status != "" && m.Status != "open") {
			continue
		}
		prices := make(map[string]float64, len(m.Prices))
		for _, pr := range m.Prices {
			if odd, err := oddsmath.AmericanToDecimal(pr.Price); err == nil {
				prices[pr.Designation] = odd
			}
		}
		// two-way only
		if len(prices) == 2 && prices["home"] > 0 && prices["away"] > 0 {
			moneylines[m.MatchupID] = prices
		}
	}

	var rows []models.OddsRow
	for _, mu := range matchups {
		if mu.ParentID != nil || mu.IsLive || (mu.Type != "" && mu.Type != "matchup") {
			continue
		}
		home, away, ok := sides(mu.Participants)
		if !ok || mu.League.Name == "" {
			continue
		}

		var cutoff *time.Time
		if t, err := time.Parse(time.RFC3339, mu.StartTime); err == nil {
			cutoff = &t
		}
		event := home + " vs " + away
		prices := moneylines[mu.ID]

		for _, side := range []struct{ name, designation string }{{home, "home"}, {away, "away"}} {
			row := models.OddsRow{
				Bookmaker:   displayName,
				Competition: models.StringPtr(mu.League.Name),
				ExtractedAt: extractedAt,
				Cutoff:      cutoff,
				Event:       models.StringPtr(event),
				Competitor:  models.StringPtr(side.name),
			}
			if odd, ok := prices[side.designation]; ok {
				row.Odd = models.FloatPtr(odd)
			}
			rows = append(rows, row)
		}
	}
	return rows
}

func sides(ps []Participant) (home, away string, ok bool) {
	if len(ps) != 2 {
		return "", "", false
	}
	for _, p := range ps {
		switch p.Alignment {
		case "home":
			home = p.Name
		case "away":
			away = p.Name
		}
	}
	if home == "" || away == "" {
		// neutral venues list both sides without alignment
		home, away = ps[0].Name, ps[1].Name
	}
	return home, away, home != "" && away != ""
}
