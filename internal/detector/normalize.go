// Package detector finds competitions that a bookmaker published since the
// previous run and alerts on them.
package detector

import (
	"errors"
	"log/slog"
	"time"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
)

// FetchResult is the outcome of one fetcher call.
type FetchResult struct {
	Source    string
	Table     models.Table
	Err       error
	FetchedAt time.Time
}

// Normalize turns a fetch result into a table carrying every required column.
// A failed, nil or empty fetch yields an empty table. Columns the producer did
// not declare are nulled in every row.
func Normalize(res FetchResult) models.Table {
	if res.Err != nil {
		var fe *parsers.FetchError
		if errors.As(res.Err, &fe) {
			slog.Warn("Source unavailable", "source", fe.Source, "error", fe.Err)
		} else {
			slog.Warn("Source unavailable", "source", res.Source, "error", res.Err)
		}
		return models.EmptyTable()
	}
	if res.Table.Rows == nil && res.Table.Columns == nil {
		slog.Warn("Source returned no table", "source", res.Source)
		return models.EmptyTable()
	}
	if res.Table.IsEmpty() {
		slog.Info("Source returned no rows", "source", res.Source)
		return models.EmptyTable()
	}

	fetchedAt := res.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	// A table without a schema declares every column it fills.
	declared := func(c models.Column) bool {
		return len(res.Table.Columns) == 0 || res.Table.HasColumn(c)
	}

	out := models.EmptyTable()
	out.Rows = make([]models.OddsRow, 0, len(res.Table.Rows))
	for _, r := range res.Table.Rows {
		row := models.OddsRow{ExtractedAt: r.ExtractedAt}
		if declared(models.ColBookmaker) {
			row.Bookmaker = r.Bookmaker
		}
		if declared(models.ColCompetition) {
			row.Competition = r.Competition
		}
		if !declared(models.ColExtraction) || row.ExtractedAt.IsZero() {
			row.ExtractedAt = fetchedAt
		}
		if declared(models.ColCutoff) {
			row.Cutoff = r.Cutoff
		}
		if declared(models.ColEvent) {
			row.Event = r.Event
		}
		if declared(models.ColCompetitor) {
			row.Competitor = r.Competitor
		}
		if declared(models.ColOdd) {
			row.Odd = r.Odd
		}
		out.Rows = append(out.Rows, row)
	}

	slog.Info("Source normalized", "source", res.Source, "rows", len(out.Rows))
	return out
}
