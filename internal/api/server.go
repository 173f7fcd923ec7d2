// Package api serves the stored competitions and run controls over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Vodeneev/openingalert/internal/detector"
	"github.com/Vodeneev/openingalert/internal/pkg/metrics"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

// Runner triggers one detection run.
type Runner interface {
	Run(ctx context.Context) (detector.RunResult, error)
}

type Options struct {
	Store   storage.Store
	Runner  Runner // nil disables POST /run
	Metrics *metrics.Metrics
	// ListLimit caps /competitions when the request has no limit.
	ListLimit      int
	AllowedOrigins []string
	RunTimeout     time.Duration
}

// NewRouter builds the HTTP handler.
func NewRouter(opts Options) http.Handler {
	if opts.RunTimeout <= 0 {
		opts.RunTimeout = 5 * time.Minute
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	h := &handler{opts: opts, started: time.Now()}

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/ping", h.ping)
	r.Get("/health", h.health)
	r.Get("/competitions", h.competitions)
	if opts.Runner != nil {
		r.Post("/run", h.run)
	}
	if opts.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}
	return r
}

// Run serves h on addr until ctx is done.
func Run(ctx context.Context, addr string, h http.Handler) *http.Server {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	go func() {
		slog.Info("HTTP API listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP API error", "error", err)
		}
	}()
	return srv
}
