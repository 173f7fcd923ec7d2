package report

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/models"
)

func row(comp, event, competitor string, odd float64, cutoff time.Time) models.OddsRow {
	return models.OddsRow{
		Bookmaker:   "Betify",
		Competition: models.StringPtr(comp),
		ExtractedAt: time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC),
		Cutoff:      models.TimePtr(cutoff),
		Event:       models.StringPtr(event),
		Competitor:  models.StringPtr(competitor),
		Odd:         models.FloatPtr(odd),
	}
}

func sampleTable() models.Table {
	day := time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC)
	return models.NewTable([]models.OddsRow{
		row("ATP Paris", "A vs B", "A", 2.1, day.Add(20*time.Hour)),
		row("ATP Paris", "A vs B", "B", 2.1, day.Add(20*time.Hour)),
		row("WTA Rome", "C vs D", "C", 1.5, day.Add(10*time.Hour)),
		row("WTA Rome", "C vs D", "D", 2.5, day.Add(10*time.Hour)),
		row("WTA Rome", "E vs F", "E", 1.9, day.Add(8*time.Hour)),
		row("WTA Rome", "E vs F", "F", 1.9, day.Add(8*time.Hour)),
	}, models.RequiredColumns...)
}

func TestSheetTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"ATP Paris", "ATP Paris"},
		{"Cup: Round 1/2 [A]?", "Cup_ Round 1_2 _A__"},
		{"A very long competition name indeed", "A very long competition n"},
	}
	for _, tt := range tests {
		if got := SheetTitle(tt.in); got != tt.want {
			t.Errorf("SheetTitle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFileName(t *testing.T) {
	got := FileName("Betify", time.Date(2026, 3, 1, 23, 0, 0, 0, time.UTC))
	if got != "Extract_Betify_2026-03-01.xlsx" {
		t.Errorf("FileName() = %q", got)
	}
}

func TestSummarize(t *testing.T) {
	got := Summarize(sampleTable())
	if len(got) != 2 {
		t.Fatalf("Summarize() = %d competitions, want 2", len(got))
	}
	if got[0].Competition != "WTA Rome" || got[1].Competition != "ATP Paris" {
		t.Errorf("order = %s, %s, want WTA Rome first", got[0].Competition, got[1].Competition)
	}
	if got[0].NbOdds != 4 {
		t.Errorf("WTA Rome odds = %d, want 4", got[0].NbOdds)
	}
	if !got[1].PayoutAvailable || math.Abs(got[1].BookPayout-1.05) > 1e-9 || got[1].Surebets != 1 {
		t.Errorf("ATP Paris = %+v, want payout 1.05 and one surebet", got[1])
	}
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer
	PrintSummary(&buf, Summarize(sampleTable()), time.UTC)
	out := buf.String()
	for _, want := range []string{"WTA Rome | Cutoff: 2026-03-12 10:00 | Odds: 4", "Surebets: 1"} {
		if !strings.Contains(out, want) {
			t.Errorf("PrintSummary() missing %q:\n%s", want, out)
		}
	}
}

func TestBuild(t *testing.T) {
	e := NewExporter(Options{Kelly: 4, Stake: 20})
	f, err := e.Build(sampleTable())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer f.Close()

	if got := f.GetSheetList(); !reflect.DeepEqual(got, []string{"WTA Rome", "ATP Paris"}) {
		t.Errorf("sheets = %v", got)
	}

	cells := []struct {
		cell, want string
	}{
		{"B1", "Cutoff_Betify"},
		{"M1", "Kelly_4"},
		{"N1", "Stake_20"},
		{"C2", "WTA Rome"},
		{"E3", "D"},
	}
	for _, c := range cells {
		got, err := f.GetCellValue("WTA Rome", c.cell)
		if err != nil || got != c.want {
			t.Errorf("WTA Rome!%s = %q (%v), want %q", c.cell, got, err, c.want)
		}
	}

	formula, err := f.GetCellFormula("WTA Rome", "Q2")
	if err != nil || formula != `IF(AND(F2<>"",F3<>""),1/((1/F2)+(1/F3)),"")` {
		t.Errorf("Q2 formula = %q (%v)", formula, err)
	}
	formula, _ = f.GetCellFormula("WTA Rome", "K3")
	if !strings.Contains(formula, "1/((1/F3)+(1/G2))") {
		t.Errorf("K3 formula = %q", formula)
	}
	formula, _ = f.GetCellFormula("ATP Paris", "I2")
	if formula != `IF(G2<>"",1/G2,"")` {
		t.Errorf("I2 formula = %q", formula)
	}
}

func TestBuildEmpty(t *testing.T) {
	if _, err := NewExporter(Options{}).Build(models.EmptyTable()); err == nil {
		t.Error("Build(empty) = nil error, want error")
	}
}

func TestWriteExcel(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(Options{ExportDir: filepath.Join(dir, "exports")})
	e.now = func() time.Time { return time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC) }

	path, err := e.WriteExcel(sampleTable())
	if err != nil {
		t.Fatalf("WriteExcel: %v", err)
	}
	if filepath.Base(path) != "Extract_Betify_2026-03-10.xlsx" {
		t.Errorf("path = %s", path)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("workbook not written: %v", err)
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewExporter(Options{}).WriteJSON(&buf, sampleTable()); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	var got Export
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if got.Bookmaker != "Betify" || got.TotalRows != 6 || len(got.Competitions) != 2 {
		t.Errorf("export = %+v", got)
	}
}
