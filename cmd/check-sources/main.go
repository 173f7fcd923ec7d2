// check-sources probes every enabled bookmaker and, with -proxies, every
// configured proxy. Exits 1 when a source stays unreachable.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	_ "github.com/Vodeneev/openingalert/internal/parser/parsers/all"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/logging"
	"github.com/Vodeneev/openingalert/internal/probe"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "Path to config file (can be set via OPENING_CONFIG env var)")
	checkProxies := flag.Bool("proxies", false, "Also check every proxy_list entry")
	checkURL := flag.String("check-url", probe.DefaultCheckURL, "URL fetched through each proxy")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(2)
	}
	if _, _, err := logging.SetupLogger(&cfg.Logging, "check-sources"); err != nil {
		fmt.Fprintf(os.Stderr, "setup logging: %v\n", err)
		os.Exit(2)
	}

	fetchers, err := parsers.Enabled(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sources: %v\n", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	fmt.Printf("🕒 %s\n", time.Now().In(cfg.Location()).Format("2006-01-02 15:04:05 MST"))
	fmt.Printf("Checking %d sources (%d attempts, %s-%s pause)...\n\n",
		len(fetchers), cfg.Probe.Retries, cfg.Probe.MinPause, cfg.Probe.MaxPause)

	failed := 0
	for _, r := range probe.New(cfg).Sources(ctx, fetchers) {
		if r.OK() {
			fmt.Printf("[OK]   %-10s %d rows, %d attempt(s), %s\n", r.Source, r.Rows, r.Attempts, r.Duration.Round(time.Millisecond))
			continue
		}
		failed++
		fmt.Printf("[FAIL] %-10s %v (%d attempts)\n", r.Source, r.Err, r.Attempts)
	}

	if *checkProxies {
		list := probe.ProxyList(cfg)
		fmt.Printf("\nChecking %d proxies (test URL %s)...\n", len(list), *checkURL)
		okCount := 0
		for _, r := range probe.Proxies(ctx, list, *checkURL, cfg.Transport.Timeout) {
			if r.Err != nil {
				fmt.Printf("[FAIL] %s -> %v\n", r.Proxy, r.Err)
				continue
			}
			okCount++
			fmt.Printf("[OK]   %s -> IP: %s\n", r.Proxy, r.IP)
		}
		fmt.Printf("--- Proxies: %d OK, %d FAIL\n", okCount, len(list)-okCount)
	}

	fmt.Printf("\n--- Summary: %d OK, %d FAIL (total %d)\n", len(fetchers)-failed, failed, len(fetchers))
	if failed > 0 {
		os.Exit(1)
	}
}
