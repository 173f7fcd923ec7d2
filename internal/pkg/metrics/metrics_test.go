package metrics

import (
	"io"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCounters(t *testing.T) {
	m := New()
	m.RowsFetched.WithLabelValues("Betify").Add(12)
	m.FetchErrors.WithLabelValues("Pinnacle").Inc()
	m.NewCompetitions.Add(3)
	m.StoreSize.Set(40)

	if got := testutil.ToFloat64(m.RowsFetched.WithLabelValues("Betify")); got != 12 {
		t.Errorf("rows_fetched_total{Betify} = %v, want 12", got)
	}
	if got := testutil.ToFloat64(m.FetchErrors.WithLabelValues("Pinnacle")); got != 1 {
		t.Errorf("fetch_errors_total{Pinnacle} = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.NewCompetitions); got != 3 {
		t.Errorf("new_competitions_total = %v, want 3", got)
	}
	if got := testutil.ToFloat64(m.StoreSize); got != 40 {
		t.Errorf("store_size = %v, want 40", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	m := New()
	m.NewCompetitions.Inc()

	path := filepath.Join(t.TempDir(), "node", "openingalert.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(data), "openingalert_new_competitions_total 1") {
		t.Errorf("textfile missing counter:\n%s", data)
	}

	if err := m.WriteTextfile(""); err != nil {
		t.Errorf("WriteTextfile(\"\") = %v, want nil", err)
	}
}

func TestHandler(t *testing.T) {
	m := New()
	m.StoreSize.Set(5)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), "openingalert_store_size 5") {
		t.Errorf("/metrics missing gauge:\n%s", body)
	}
}
