package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Vodeneev/openingalert/internal/detector"
	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/all"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/logging"
	"github.com/Vodeneev/openingalert/internal/pkg/metrics"
	"github.com/Vodeneev/openingalert/internal/pkg/notify"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

const (
	exitOK     = 0
	exitStore  = 1
	exitConfig = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	_ = godotenv.Load()

	var (
		configPath string
		dumpConfig bool
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (can be set via OPENING_CONFIG env var)")
	flag.BoolVar(&dumpConfig, "dump-config", false, "Print the effective configuration and exit")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		return exitConfig
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid config: %v\n", err)
		return exitConfig
	}
	if dumpConfig {
		if err := config.Dump(os.Stdout, cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to dump config: %v\n", err)
			return exitConfig
		}
		return exitOK
	}

	logger, logCloser, err := logging.SetupLogger(&cfg.Logging, "opening-alert")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to setup logging: %v\n", err)
		return exitConfig
	}
	defer logCloser.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fetchers, err := parsers.Enabled(cfg)
	if err != nil {
		slog.Error("Invalid sources", "error", err)
		return exitConfig
	}

	store, err := storage.Open(ctx, cfg.State)
	if err != nil {
		slog.Error("Failed to open store", "backend", cfg.State.Backend, "error", err)
		return exitStore
	}
	defer store.Close()

	notifier, notifyCloser := notify.FromConfig(cfg)
	defer notifyCloser.Close()

	slog.Info("Starting opening alert run", "sources", len(fetchers), "backend", cfg.State.Backend, "notifier", notifier.Name())

	p := detector.NewPipeline(cfg, store, fetchers, notifier, metrics.New()).WithLogger(logger)
	if _, err := p.Run(ctx); err != nil {
		// Run only fails on store errors.
		slog.Error("Run failed", "error", err)
		return exitStore
	}
	return exitOK
}
