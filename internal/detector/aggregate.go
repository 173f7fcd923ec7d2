package detector

import "github.com/Vodeneev/openingalert/internal/pkg/models"

// Aggregate concatenates normalized tables in order.
func Aggregate(tables ...models.Table) models.Table {
	out := models.EmptyTable()
	n := 0
	for _, t := range tables {
		n += len(t.Rows)
	}
	out.Rows = make([]models.OddsRow, 0, n)
	for _, t := range tables {
		out.Rows = append(out.Rows, t.Rows...)
	}
	return out
}
