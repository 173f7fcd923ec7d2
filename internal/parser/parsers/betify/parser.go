package betify

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/oddsmath"
	"github.com/Vodeneev/openingalert/internal/pkg/parserutil"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const (
	sourceName  = "betify"
	displayName = "Betify"
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
	client, err := NewClient(p.baseURL, opts)
	if err != nil {
		return models.Table{}, parsers.Wrap(sourceName, err)
	}
	versions, err := client.Versions(ctx)
	if err != nil {
		return models.Table{}, parsers.Wrap(sourceName, err)
	}
	page := client.Page(ctx, versions)
	if err := ctx.Err(); err != nil {
		return models.Table{}, parsers.Wrap(sourceName, err)
	}

	rows := buildRows(page, parserutil.StringSet(sportIDs), p.now())
	slog.Debug("Betify: parsed", "versions", len(versions), "events", len(page.Events), "rows", len(rows))
	return models.NewTable(rows, models.RequiredColumns...), nil
}

// buildRows keeps head-to-head events of the requested sports (all when sports
// is nil) and emits one row per outcome of their first two-outcome variant.
func buildRows(page versionPage, sports map[string]struct{}, extractedAt time.Time) []models.OddsRow {
	ids := make([]string, 0, len(page.Events))
	for id := range page.Events {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var rows []models.OddsRow
	for _, id := range ids {
		ev := page.Events[id]
		if sports != nil {
			if _, ok := sports[ev.Desc.Sport.String()]; !ok {
				continue
			}
		}
		if len(ev.Desc.Competitors) != 2 {
			continue
		}
		outcomes, ok := firstTwoWayVariant(ev.Markets)
		if !ok {
			continue
		}
		tournament, ok := page.Tournaments[ev.Desc.Tournament.String()]
		if ev.Desc.Tournament == "" || !ok || tournament.Name == "" {
			continue
		}

		var cutoff *time.Time
		if ev.Desc.Scheduled > 0 {
			cutoff = models.TimePtr(time.Unix(ev.Desc.Scheduled, 0))
		}
		home, away := ev.Desc.Competitors[0].Name, ev.Desc.Competitors[1].Name
		event := home + " vs " + away

		for i, o := range outcomes {
			row := models.OddsRow{
				Bookmaker:   displayName,
				Competition: models.StringPtr(tournament.Name),
				ExtractedAt: extractedAt,
				Cutoff:      cutoff,
				Event:       models.StringPtr(event),
				Competitor:  models.StringPtr(ev.Desc.Competitors[i].Name),
			}
			if odd, err := oddsmath.ParseDecimal(o.K.String()); err == nil {
				row.Odd = models.FloatPtr(odd)
			}
			rows = append(rows, row)
		}
	}

	sort.SliceStable(rows, func(i, j int) bool {
		return cutoffBefore(rows[i].Cutoff, rows[j].Cutoff)
	})
	return rows
}

// firstTwoWayVariant picks, in market then variant key order, the first
// variant with exactly two outcomes, returned in outcome id order.
func firstTwoWayVariant(markets map[string]map[string]map[string]Outcome) ([]Outcome, bool) {
	marketIDs := sortedKeys(markets)
	for _, mid := range marketIDs {
		variants := markets[mid]
		for _, vk := range sortedKeys(variants) {
			outcomes := variants[vk]
			if len(outcomes) != 2 {
				continue
			}
			out := make([]Outcome, 0, 2)
			for _, oid := range sortedKeys(outcomes) {
				out = append(out, outcomes[oid])
			}
			return out, true
		}
	}
	return nil, false
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// cutoffBefore orders rows by cutoff with unknown cutoffs last.
func cutoffBefore(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.Before(*b)
	}
}
