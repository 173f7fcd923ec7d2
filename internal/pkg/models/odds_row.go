package models

import "time"

// Column names one field of the canonical odds row.
type Column string

const (
	ColBookmaker   Column = "bookmaker"
	ColCompetition Column = "competition"
	ColExtraction  Column = "extraction_time"
	ColCutoff      Column = "cutoff_time"
	ColEvent       Column = "event_label"
	ColCompetitor  Column = "competitor_label"
	ColOdd         Column = "odd"
)

// RequiredColumns is the column contract every normalized table carries.
var RequiredColumns = []Column{
	ColBookmaker,
	ColCompetition,
	ColExtraction,
	ColCutoff,
	ColEvent,
	ColCompetitor,
	ColOdd,
}

// OddsRow is one observed price for one side of one two-way market.
// Nil pointers are null values.
type OddsRow struct {
	Bookmaker   string     `json:"bookmaker"`
	Competition *string    `json:"competition"`
	ExtractedAt time.Time  `json:"extraction_time"`
	Cutoff      *time.Time `json:"cutoff_time"`
	Event       *string    `json:"event_label"`
	Competitor  *string    `json:"competitor_label"`
	Odd         *float64   `json:"odd"`
}

// Identity returns the deduplication key of the row, or false when bookmaker
// or competition is null.
func (r OddsRow) Identity() (Identity, bool) {
	if r.Bookmaker == "" || r.Competition == nil {
		return Identity{}, false
	}
	return Identity{Bookmaker: r.Bookmaker, Competition: *r.Competition}, true
}

// Table is a set of odds rows with the columns the producer actually filled.
type Table struct {
	Columns []Column  `json:"columns"`
	Rows    []OddsRow `json:"rows"`
}

// EmptyTable returns a zero-row table with the required schema.
func EmptyTable() Table {
	cols := make([]Column, len(RequiredColumns))
	copy(cols, RequiredColumns)
	return Table{Columns: cols, Rows: []OddsRow{}}
}

// NewTable builds a table declaring the given columns.
func NewTable(rows []OddsRow, cols ...Column) Table {
	return Table{Columns: cols, Rows: rows}
}

func (t Table) Len() int { return len(t.Rows) }

func (t Table) IsEmpty() bool { return len(t.Rows) == 0 }

// HasColumn reports whether the producer declared column c.
func (t Table) HasColumn(c Column) bool {
	for _, col := range t.Columns {
		if col == c {
			return true
		}
	}
	return false
}

// Filter returns the rows belonging to id, in table order.
func (t Table) Filter(id Identity) []OddsRow {
	var out []OddsRow
	for _, r := range t.Rows {
		if rid, ok := r.Identity(); ok && rid == id {
			out = append(out, r)
		}
	}
	return out
}

// Helpers for building rows with nullable fields.

func StringPtr(s string) *string { return &s }

func FloatPtr(f float64) *float64 { return &f }

func TimePtr(t time.Time) *time.Time { return &t }
