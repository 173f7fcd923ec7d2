// Package metrics holds the Prometheus collectors of a detection run.
package metrics

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "openingalert"

// Metrics is a private registry so that tests and the textfile writer do not
// see the process-wide default collectors.
type Metrics struct {
	Registry *prometheus.Registry

	RowsFetched     *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	NewCompetitions prometheus.Counter
	NotifyFailures  prometheus.Counter
	Pruned          prometheus.Counter
	StoreSize       prometheus.Gauge
	LastRun         prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		RowsFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rows_fetched_total",
			Help:      "Normalized odds rows fetched per bookmaker.",
		}, []string{"bookmaker"}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_errors_total",
			Help:      "Failed fetches per bookmaker.",
		}, []string{"bookmaker"}),
		NewCompetitions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "new_competitions_total",
			Help:      "Competitions seen for the first time.",
		}),
		NotifyFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "notify_failures_total",
			Help:      "Alerts that could not be delivered.",
		}),
		Pruned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pruned_total",
			Help:      "Stored competitions removed by retention.",
		}),
		StoreSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "store_size",
			Help:      "Competitions in the store after the last run.",
		}),
		LastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time of the last completed run.",
		}),
	}
	m.Registry.MustRegister(
		m.RowsFetched,
		m.FetchErrors,
		m.NewCompetitions,
		m.NotifyFailures,
		m.Pruned,
		m.StoreSize,
		m.LastRun,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{Registry: m.Registry})
}

// WriteTextfile writes the registry for the node-exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if path == "" {
		return nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics dir: %w", err)
		}
	}
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return fmt.Errorf("write metrics textfile: %w", err)
	}
	return nil
}
