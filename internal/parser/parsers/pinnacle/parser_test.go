package pinnacle

import (
	"context"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const matchupsJSON = `[
  {"id": 1, "startTime": "2026-01-05T18:00:00Z", "type": "matchup",
   "league": {"name": "NHL"},
   "participants": [{"alignment": "home", "name": "Bruins"}, {"alignment": "away", "name": "Rangers"}]},
  {"id": 2, "parentId": 1, "startTime": "2026-01-05T18:00:00Z", "type": "matchup",
   "league": {"name": "NHL"},
   "participants": [{"alignment": "home", "name": "Bruins"}, {"alignment": "away", "name": "Rangers"}]},
  {"id": 3, "startTime": "2026-01-05T20:00:00Z", "type": "special",
   "league": {"name": "NHL"}, "participants": []},
  {"id": 4, "startTime": "2026-01-06T18:00:00Z", "type": "matchup",
   "league": {"name": "KHL"},
   "participants": [{"alignment": "home", "name": "SKA"}, {"alignment": "away", "name": "CSKA"}]}
]`

const marketsJSON = `[
  {"matchupId": 1, "period": 0, "type": "moneyline", "status": "open",
   "prices": [{"designation": "home", "price": -150}, {"designation": "away", "price": 130}]},
  {"matchupId": 1, "period": 1, "type": "moneyline", "status": "open",
   "prices": [{"designation": "home", "price": 100}, {"designation": "away", "price": 100}]},
  {"matchupId": 4, "period": 0, "type": "moneyline", "status": "open",
   "prices": [{"designation": "home", "price": 120}, {"designation": "draw", "price": 250}, {"designation": "away", "price": 200}]}
]`

func TestParser_Fetch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Referer") != "https://www.pinnacle.com/" {
			t.Errorf("Referer = %q", r.Header.Get("Referer"))
		}
		switch r.URL.Path {
		case "/0.1/sports/19/matchups":
			w.Write([]byte(matchupsJSON))
		case "/0.1/sports/19/markets/straight":
			w.Write([]byte(marketsJSON))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Sources[sourceName] = config.SourceConfig{Enabled: true, BaseURL: srv.URL}
	p := NewParser(cfg)
	p.now = func() time.Time { return time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC) }

	table, err := p.Fetch(context.Background(), []string{"19"}, transport.Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("Fetch() rows = %d, want 4: %+v", table.Len(), table.Rows)
	}

	bruins := table.Rows[0]
	if *bruins.Competitor != "Bruins" || bruins.Odd == nil || math.Abs(*bruins.Odd-(1+100.0/150.0)) > 1e-9 {
		t.Errorf("Bruins row = %+v", bruins)
	}
	rangers := table.Rows[1]
	if rangers.Odd == nil || math.Abs(*rangers.Odd-2.3) > 1e-9 {
		t.Errorf("Rangers odd = %v, want 2.3", rangers.Odd)
	}
	// KHL moneyline is three-way, so no prices.
	ska := table.Rows[2]
	if *ska.Competition != "KHL" || ska.Odd != nil {
		t.Errorf("SKA row = %+v", ska)
	}
}

func TestParser_FetchMarketsDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/0.1/sports/19/matchups" {
			w.Write([]byte(matchupsJSON))
			return
		}
		http.Error(w, "blocked", http.StatusForbidden)
	}))
	defer srv.Close()

	cfg := config.Default()
	cfg.Sources[sourceName] = config.SourceConfig{Enabled: true, BaseURL: srv.URL}
	table, err := NewParser(cfg).Fetch(context.Background(), []string{"19"}, transport.Options{})
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if table.Len() != 4 {
		t.Fatalf("Fetch() rows = %d, want 4", table.Len())
	}
	for _, r := range table.Rows {
		if r.Odd != nil {
			t.Errorf("row %s has odd %v, want nil", *r.Competitor, *r.Odd)
		}
	}
}

func TestSides(t *testing.T) {
	home, away, ok := sides([]Participant{{"away", "B"}, {"home", "A"}})
	if !ok || home != "A" || away != "B" {
		t.Errorf("sides() = %q, %q, %v", home, away, ok)
	}
	home, away, ok = sides([]Participant{{"neutral", "X"}, {"neutral", "Y"}})
	if !ok || home != "X" || away != "Y" {
		t.Errorf("sides(neutral) = %q, %q, %v", home, away, ok)
	}
	if _, _, ok := sides(nil); ok {
		t.Errorf("sides(nil) ok = true")
	}
}
