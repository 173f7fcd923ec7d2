package detector

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/metrics"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/notify"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

// ErrStore marks a run aborted because state could not be loaded or saved.
var ErrStore = errors.New("retention store failure")

// RunResult reports what one run did.
type RunResult struct {
	Rows           int
	Current        []models.Identity
	Fresh          []models.Identity
	Pruned         int
	Added          int
	NotifyFailures int
	StoreSize      int
}

// Pipeline runs one detection pass over the enabled fetchers. Concurrent
// calls to Run are serialized.
type Pipeline struct {
	mu sync.Mutex

	cfg      *config.Config
	store    storage.Store
	fetchers []parsers.Fetcher
	notifier notify.Notifier
	metrics  *metrics.Metrics
	logger   *slog.Logger
	now      func() time.Time
}

// NewPipeline wires a pipeline. A nil notifier logs alerts, nil metrics are
// replaced by a fresh registry.
func NewPipeline(cfg *config.Config, store storage.Store, fetchers []parsers.Fetcher, n notify.Notifier, m *metrics.Metrics) *Pipeline {
	if n == nil {
		n = notify.Log{}
	}
	if m == nil {
		m = metrics.New()
	}
	return &Pipeline{
		cfg:      cfg,
		store:    store,
		fetchers: fetchers,
		notifier: n,
		metrics:  m,
		logger:   slog.Default(),
		now:      time.Now,
	}
}

// WithLogger sets the logger used for run-level messages.
func (p *Pipeline) WithLogger(l *slog.Logger) *Pipeline {
	p.logger = l
	return p
}

func (p *Pipeline) Metrics() *metrics.Metrics { return p.metrics }

// Run loads and prunes the store, fetches every source, records the new
// identities and then alerts on them. State is saved before any alert is
// sent; a store failure returns an error wrapping ErrStore and sends nothing.
func (p *Pipeline) Run(ctx context.Context) (RunResult, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	var res RunResult
	start := p.now()

	stored, err := p.store.Load(ctx)
	if err != nil {
		return res, fmt.Errorf("%w: load: %v", ErrStore, err)
	}
	p.logger.Info("Loaded stored competitions", "count", len(stored))

	retained, pruned := storage.Prune(stored, p.cfg.State.RetentionWindow(), start)
	res.Pruned = pruned
	p.metrics.Pruned.Add(float64(pruned))
	if pruned > 0 {
		p.logger.Info("Pruned expired competitions", "removed", pruned, "retention_days", p.cfg.State.RetentionDays)
	}

	tables := make([]models.Table, 0, len(p.fetchers))
	for _, f := range p.fetchers {
		t := Normalize(p.fetch(ctx, f))
		p.metrics.RowsFetched.WithLabelValues(f.Name()).Add(float64(t.Len()))
		tables = append(tables, t)
	}
	all := Aggregate(tables...)
	res.Rows = all.Len()
	p.logger.Info("Rows aggregated", "rows", res.Rows, "sources", len(p.fetchers))

	res.Current, res.Fresh = ComputeNovelty(all, retained)
	p.logger.Info("Novelty computed", "current", len(res.Current), "new", len(res.Fresh))

	now := p.now()
	updated, added := storage.Extend(retained, res.Fresh, now)
	res.Added = added
	res.StoreSize = len(updated)
	if err := p.store.Save(ctx, updated); err != nil {
		return res, fmt.Errorf("%w: save: %v", ErrStore, err)
	}
	p.metrics.StoreSize.Set(float64(len(updated)))
	p.metrics.NewCompetitions.Add(float64(added))
	p.logger.Info("Saved competitions", "count", len(updated), "added", added)

	loc := p.cfg.Location()
	for _, id := range res.Fresh {
		alert := NewAlert(id, Summarize(id, all, loc), now)
		if err := p.deliver(ctx, alert); err != nil {
			res.NotifyFailures++
			p.metrics.NotifyFailures.Inc()
			p.logger.Error("Alert not delivered", "bookmaker", id.Bookmaker, "competition", id.Competition, "error", err)
			continue
		}
		p.logger.Info("Alert sent", "bookmaker", id.Bookmaker, "competition", id.Competition, "nb_odds", alert.NbOdds)
	}

	p.metrics.LastRun.Set(float64(p.now().Unix()))
	if err := p.metrics.WriteTextfile(p.cfg.Metrics.Textfile); err != nil {
		p.logger.Warn("Metrics not written", "error", err)
	}

	p.logger.Info("Run completed",
		"new", len(res.Fresh),
		"notify_failures", res.NotifyFailures,
		"duration", p.now().Sub(start).Round(time.Millisecond))
	return res, nil
}

func (p *Pipeline) fetch(ctx context.Context, f parsers.Fetcher) FetchResult {
	name := f.Name()
	p.logger.Info("Fetching source", "source", name)
	started := p.now()

	t, err := p.callFetcher(ctx, f)
	if err != nil {
		p.metrics.FetchErrors.WithLabelValues(name).Inc()
	}
	p.logger.Debug("Source fetched", "source", name, "rows", t.Len(), "duration", p.now().Sub(started).Round(time.Millisecond))
	return FetchResult{Source: name, Table: t, Err: err, FetchedAt: started}
}

// callFetcher turns a panic inside a fetcher into a FetchError so one broken
// source cannot abort the run.
func (p *Pipeline) callFetcher(ctx context.Context, f parsers.Fetcher) (t models.Table, err error) {
	name := f.Name()
	defer func() {
		if r := recover(); r != nil {
			t = models.Table{}
			err = parsers.Wrap(name, fmt.Errorf("panic: %v", r))
		}
	}()
	return f.Fetch(ctx, parsers.SportIDs(p.cfg, name), parsers.Options(p.cfg, name))
}

func (p *Pipeline) deliver(ctx context.Context, a notify.Alert) error {
	ctx, cancel := context.WithTimeout(ctx, p.deliveryTimeout())
	defer cancel()
	return p.notifier.Notify(ctx, a)
}

// deliveryTimeout is the largest configured channel timeout. Each notifier
// still applies its own bound.
func (p *Pipeline) deliveryTimeout() time.Duration {
	timeout := max(p.cfg.Telegram.Timeout, p.cfg.Webhook.Timeout)
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return timeout
}
