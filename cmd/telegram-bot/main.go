package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-co-op/gocron"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/joho/godotenv"

	"github.com/Vodeneev/openingalert/internal/api"
	"github.com/Vodeneev/openingalert/internal/bot"
	"github.com/Vodeneev/openingalert/internal/detector"
	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/all"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/logging"
	"github.com/Vodeneev/openingalert/internal/pkg/metrics"
	"github.com/Vodeneev/openingalert/internal/pkg/notify"
	"github.com/Vodeneev/openingalert/internal/pkg/storage"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath string
		addr       string
		schedule   string
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (can be set via OPENING_CONFIG env var)")
	flag.StringVar(&addr, "addr", "", "HTTP API listen address, overrides bot.addr")
	flag.StringVar(&schedule, "schedule", "", "Cron spec for detection runs, overrides bot.schedule")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if addr != "" {
		cfg.Bot.Addr = addr
	}
	if schedule != "" {
		cfg.Bot.Schedule = schedule
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}
	if cfg.Telegram.Token == "" {
		log.Fatal("Telegram bot token is required. Set telegram.token or TELEGRAM_TOKEN env var")
	}

	logger, logCloser, err := logging.SetupLogger(&cfg.Logging, "telegram-bot")
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer logCloser.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping bot...")
		cancel()
	}()

	store, err := storage.Open(ctx, cfg.State)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer store.Close()

	tg, err := tgbotapi.NewBotAPIWithClient(cfg.Telegram.Token, tgbotapi.APIEndpoint, &http.Client{
		// long polling holds the request open for UpdateTimeout seconds
		Timeout: time.Duration(cfg.Bot.UpdateTimeout)*time.Second + cfg.Telegram.Timeout,
	})
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}
	tg.Debug = false

	m := metrics.New()
	var runner *detector.Pipeline
	if cfg.Bot.Schedule != "" {
		fetchers, err := parsers.Enabled(cfg)
		if err != nil {
			log.Fatalf("Invalid sources: %v", err)
		}
		notifier, notifyCloser := notify.FromConfig(cfg)
		defer notifyCloser.Close()
		runner = detector.NewPipeline(cfg, store, fetchers, notifier, m).WithLogger(logger)

		scheduler := gocron.NewScheduler(cfg.Location())
		scheduler.SingletonModeAll()
		if _, err := scheduler.Cron(cfg.Bot.Schedule).Do(func() {
			if _, err := runner.Run(ctx); err != nil {
				slog.Error("Scheduled run failed", "error", err)
			}
		}); err != nil {
			log.Fatalf("Invalid schedule %q: %v", cfg.Bot.Schedule, err)
		}
		scheduler.StartAsync()
		defer scheduler.Stop()
		slog.Info("Detection runs scheduled", "cron", cfg.Bot.Schedule, "timezone", cfg.Timezone)
	}

	opts := api.Options{Store: store, Metrics: m, ListLimit: cfg.Bot.ListLimit}
	if runner != nil {
		opts.Runner = runner
	}
	if cfg.Bot.Addr != "" {
		api.Run(ctx, cfg.Bot.Addr, api.NewRouter(opts))
	}

	bot.New(tg, store, cfg.Bot).Run(ctx)
	slog.Info("Telegram bot stopped")
}
