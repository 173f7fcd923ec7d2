package detector

import (
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
)

var (
	fixedNow = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	paris, _ = time.LoadLocation("Europe/Paris")
)

func row(bk, comp, event string, odd float64) models.OddsRow {
	r := models.OddsRow{
		Bookmaker:   bk,
		Competition: models.StringPtr(comp),
		ExtractedAt: fixedNow,
		Event:       models.StringPtr(event),
		Competitor:  models.StringPtr(event + " side"),
	}
	if odd != 0 {
		r.Odd = models.FloatPtr(odd)
	}
	return r
}

func table(rows ...models.OddsRow) models.Table {
	return models.NewTable(rows, models.RequiredColumns...)
}
