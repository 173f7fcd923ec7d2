package sportaza

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const (
	sourceName  = "sportaza"
	displayName = "Sportaza"
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

func (p *Parser) Fetch(ctx context.Context, sportIDs []string, opts transport.Options) (models.Table, error) {
	if opts.UseBrowser {
		slog.Info("Sportaza: browser transport is not used for the widget API, fetching directly")
		opts.UseBrowser = false
	}
	client, err := NewClient(p.baseURL, opts)
	if err != nil {
		return models.Table{}, parsers.Wrap(sourceName, err)
	}

	extractedAt := p.now()
	var rows []models.OddsRow
	for _, endpoint := range endpoints {
		resp, err := client.Get(ctx, endpoint, sportIDs)
		if err != nil {
			return models.Table{}, parsers.Wrap(sourceName, err)
		}
		rows = append(rows, buildRows(resp, extractedAt)...)
	}
	slog.Debug("Sportaza: parsed", "rows", len(rows))
	return models.NewTable(rows, models.RequiredColumns...), nil
}

// buildRows emits both sides of every two-odd market whose event is a
// head-to-head, skipping yes/no propositions.
func buildRows(resp *widgetResponse, extractedAt time.Time) []models.OddsRow {
	odds := make(map[int64]Odd, len(resp.Odds))
	for _, o := range resp.Odds {
		odds[o.ID] = o
	}
	champs := make(map[int64]string, len(resp.Champs))
	for _, c := range resp.Champs {
		champs[c.ID] = c.Name
	}
	// first event listing a market owns it
	eventByMarket := make(map[int64]*Event)
	for i := range resp.Events {
		ev := &resp.Events[i]
		for _, mid := range ev.MarketIDs {
			if _, ok := eventByMarket[mid]; !ok {
				eventByMarket[mid] = ev
			}
		}
	}

	var rows []models.OddsRow
	for _, m := range resp.Markets {
		ev, ok := eventByMarket[m.ID]
		if !ok {
			continue
		}
		if len(ev.CompetitorIDs) != 2 && ev.SC != 2 {
			continue
		}
		pair := make([]Odd, 0, 2)
		for _, oid := range m.OddIDs {
			if o, ok := odds[oid]; ok {
				pair = append(pair, o)
			}
		}
		if len(pair) != 2 {
			continue
		}

		var competition *string
		if name, ok := champs[ev.ChampID]; ok {
			competition = models.StringPtr(name)
		}
		var cutoff *time.Time
		if ev.StartDate != "" {
			if t, err := time.Parse(time.RFC3339, ev.StartDate); err == nil {
				cutoff = models.TimePtr(t)
			}
		}

		for _, o := range pair {
			if isYesNo(o.Name) {
				continue
			}
			rows = append(rows, models.OddsRow{
				Bookmaker:   displayName,
				Competition: competition,
				ExtractedAt: extractedAt,
				Cutoff:      cutoff,
				Event:       models.StringPtr(ev.Name),
				Competitor:  models.StringPtr(o.Name),
				Odd:         o.Price,
			})
		}
	}
	return rows
}

func isYesNo(name string) bool {
	n := strings.ToLower(strings.TrimSpace(name))
	return n == "oui" || n == "non"
}
