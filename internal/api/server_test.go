package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Vodeneev/openingalert/internal/detector"
	"github.com/Vodeneev/openingalert/internal/pkg/metrics"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

type fakeStore struct {
	data storage.Competitions
	err  error
}

func (s *fakeStore) Load(ctx context.Context) (storage.Competitions, error) { return s.data, s.err }
func (s *fakeStore) Save(ctx context.Context, c storage.Competitions) error { return nil }
func (s *fakeStore) Close() error                                           { return nil }

type fakeRunner struct {
	res detector.RunResult
	err error
}

func (f *fakeRunner) Run(ctx context.Context) (detector.RunResult, error) { return f.res, f.err }

var seen = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func testStore() *fakeStore {
	return &fakeStore{data: storage.Competitions{
		{Bookmaker: "Sportaza", Competition: "WTA Rome"}: seen,
		{Bookmaker: "Betify", Competition: "ATP Paris"}:  seen,
		{Bookmaker: "Betify", Competition: "ITF Men"}:    seen,
	}}
}

func do(t *testing.T, h http.Handler, method, target string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(method, target, nil))
	return rec
}

func TestCompetitions(t *testing.T) {
	h := NewRouter(Options{Store: testStore(), ListLimit: 2})

	tests := []struct {
		target    string
		status    int
		wantCount int
		wantFirst string
	}{
		{"/competitions", http.StatusOK, 2, "ATP Paris"},
		{"/competitions?limit=0", http.StatusOK, 3, "ATP Paris"},
		{"/competitions?limit=1", http.StatusOK, 1, "ATP Paris"},
		{"/competitions?limit=abc", http.StatusBadRequest, 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			rec := do(t, h, http.MethodGet, tt.target)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d", rec.Code, tt.status)
			}
			if tt.status != http.StatusOK {
				return
			}
			var resp competitionsResponse
			if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Total != 3 || resp.Count != tt.wantCount {
				t.Errorf("total/count = %d/%d, want 3/%d", resp.Total, resp.Count, tt.wantCount)
			}
			if resp.Competitions[0].Competition != tt.wantFirst {
				t.Errorf("first = %q, want %q", resp.Competitions[0].Competition, tt.wantFirst)
			}
		})
	}
}

func TestHealth(t *testing.T) {
	rec := do(t, NewRouter(Options{Store: testStore()}), http.MethodGet, "/health")
	if rec.Code != http.StatusOK {
		t.Errorf("healthy store: status = %d", rec.Code)
	}

	rec = do(t, NewRouter(Options{Store: &fakeStore{err: storage.ErrCorruptState}}), http.MethodGet, "/health")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("broken store: status = %d, want 503", rec.Code)
	}
}

func TestRun(t *testing.T) {
	runner := &fakeRunner{res: detector.RunResult{
		Fresh: []models.Identity{{Bookmaker: "Betify", Competition: "ATP Paris"}},
	}}
	h := NewRouter(Options{Store: testStore(), Runner: runner})

	rec := do(t, h, http.MethodPost, "/run")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Betify | ATP Paris") {
		t.Errorf("body = %s", rec.Body)
	}

	runner.err = errors.New("store down")
	if rec := do(t, h, http.MethodPost, "/run"); rec.Code != http.StatusInternalServerError {
		t.Errorf("failed run: status = %d, want 500", rec.Code)
	}

	noRunner := NewRouter(Options{Store: testStore()})
	if rec := do(t, noRunner, http.MethodPost, "/run"); rec.Code == http.StatusOK {
		t.Error("POST /run without runner should not succeed")
	}
}

func TestMetricsAndCORS(t *testing.T) {
	m := metrics.New()
	m.StoreSize.Set(3)
	h := NewRouter(Options{Store: testStore(), Metrics: m})

	rec := do(t, h, http.MethodGet, "/metrics")
	if !strings.Contains(rec.Body.String(), "openingalert_store_size 3") {
		t.Errorf("/metrics body = %s", rec.Body)
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set("Origin", "http://dashboard.local")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if got := rec.Header().Get("Access-Control-Allow-Origin"); got == "" {
		t.Error("Access-Control-Allow-Origin not set")
	}
}
