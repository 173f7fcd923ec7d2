package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Vodeneev/openingalert/internal/detector"
	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/all"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/logging"
	"github.com/Vodeneev/openingalert/internal/pkg/report"
)

func main() {
	_ = godotenv.Load()

	var (
		configPath string
		source     string
		exportDir  string
		format     string
		sports     string
	)
	flag.StringVar(&configPath, "config", "", "Path to config file (can be set via OPENING_CONFIG env var)")
	flag.StringVar(&source, "bookmaker", "", "Source to export, overrides report.bookmaker")
	flag.StringVar(&exportDir, "out", "", "Export directory, overrides report.export_dir")
	flag.StringVar(&format, "format", "xlsx", "Output format: xlsx or json")
	flag.StringVar(&sports, "sports", "", "Comma-separated sport ids, overrides the source config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if source != "" {
		cfg.Report.Bookmaker = source
	}
	if exportDir != "" {
		cfg.Report.ExportDir = exportDir
	}

	if _, _, err := logging.SetupLogger(&cfg.Logging, "export"); err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}

	factory, ok := parsers.FactoryByName(cfg.Report.Bookmaker)
	if !ok {
		log.Fatalf("Unknown bookmaker %q (available: %v)", cfg.Report.Bookmaker, parsers.AvailableNames())
	}
	fetcher := factory(cfg)

	sportIDs := parsers.SportIDs(cfg, fetcher.Name())
	if sports != "" {
		sportIDs = strings.Split(sports, ",")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("📥 Fetching %s (%d sports)...\n", fetcher.Name(), len(sportIDs))
	started := time.Now()
	t, err := fetcher.Fetch(ctx, sportIDs, parsers.Options(cfg, fetcher.Name()))
	table := detector.Normalize(detector.FetchResult{Source: fetcher.Name(), Table: t, Err: err, FetchedAt: started})
	if table.IsEmpty() {
		log.Fatalf("No rows fetched from %s", fetcher.Name())
	}
	slog.Info("Rows fetched", "bookmaker", fetcher.Name(), "rows", table.Len(), "duration", time.Since(started).Round(time.Millisecond))

	exporter := report.NewExporter(report.Options{
		ExportDir: cfg.Report.ExportDir,
		Kelly:     cfg.Report.Kelly,
		Stake:     cfg.Report.Stake,
		Location:  cfg.Location(),
	})

	report.PrintSummary(os.Stdout, report.Summarize(table), cfg.Location())

	switch format {
	case "xlsx":
		path, err := exporter.WriteExcel(table)
		if err != nil {
			log.Fatalf("Failed to export workbook: %v", err)
		}
		fmt.Printf("\n✅ Workbook written: %s\n", path)
	case "json":
		if err := exporter.WriteJSON(os.Stdout, table); err != nil {
			log.Fatalf("Failed to export JSON: %v", err)
		}
	default:
		log.Fatalf("Unknown format %q", format)
	}
}
