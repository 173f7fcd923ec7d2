// Package probe checks that the bookmaker sources and proxies answer.
package probe

import (
	"context"
	"fmt"
	"math/rand/v2"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/parserutil"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

// Result is the outcome of probing one source.
type Result struct {
	Source   string
	Rows     int
	Attempts int
	Duration time.Duration
	Err      error
}

func (r Result) OK() bool { return r.Err == nil }

// Prober retries each source with a random pause between attempts.
type Prober struct {
	cfg     *config.Config
	retries int
	pause   func() time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

func New(cfg *config.Config) *Prober {
	p := cfg.Probe
	retries := p.Retries
	if retries <= 0 {
		retries = 1
	}
	return &Prober{
		cfg:     cfg,
		retries: retries,
		pause:   func() time.Duration { return RandomPause(p.MinPause, p.MaxPause) },
		sleep:   sleepCtx,
	}
}

// RandomPause returns a duration in [min, max).
func RandomPause(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + rand.N(hi-lo)
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Sources probes every fetcher in parallel. A source is reachable when a
// fetch of its first configured sport succeeds.
func (p *Prober) Sources(ctx context.Context, fetchers []parsers.Fetcher) []Result {
	var (
		mu      sync.Mutex
		results = make(map[string]Result, len(fetchers))
	)
	parserutil.RunFetchers(ctx, fetchers, func(ctx context.Context, f parsers.Fetcher) error {
		r := p.source(ctx, f)
		mu.Lock()
		results[f.Name()] = r
		mu.Unlock()
		return r.Err
	}, parserutil.RunOptions{LogStart: true})

	out := make([]Result, 0, len(fetchers))
	for _, f := range fetchers {
		out = append(out, results[f.Name()])
	}
	return out
}

func (p *Prober) source(ctx context.Context, f parsers.Fetcher) Result {
	name := f.Name()
	sportIDs := parsers.SportIDs(p.cfg, name)
	if len(sportIDs) > 1 {
		sportIDs = sportIDs[:1]
	}
	opts := parsers.Options(p.cfg, name)

	res := Result{Source: name}
	start := time.Now()
	for attempt := 1; attempt <= p.retries; attempt++ {
		res.Attempts = attempt
		t, err := f.Fetch(ctx, sportIDs, opts)
		if err == nil {
			res.Rows = t.Len()
			res.Err = nil
			break
		}
		res.Err = err
		if attempt == p.retries {
			break
		}
		if serr := p.sleep(ctx, p.pause()); serr != nil {
			break
		}
	}
	res.Duration = time.Since(start)
	return res
}

// ProxyResult is the outcome of checking one proxy.
type ProxyResult struct {
	Proxy string // masked
	IP    string
	Err   error
}

// DefaultCheckURL answers with the caller's public IP.
const DefaultCheckURL = "https://api.ipify.org"

// Proxies checks every proxy by fetching checkURL through it.
func Proxies(ctx context.Context, list []string, checkURL string, timeout time.Duration) []ProxyResult {
	if checkURL == "" {
		checkURL = DefaultCheckURL
	}
	results := make([]ProxyResult, len(list))
	var wg sync.WaitGroup
	for i, proxyURL := range list {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ip, err := checkProxy(ctx, proxyURL, checkURL, timeout)
			results[i] = ProxyResult{Proxy: transport.MaskProxyURL(proxyURL), IP: ip, Err: err}
		}()
	}
	wg.Wait()
	return results
}

func checkProxy(ctx context.Context, proxyURL, checkURL string, timeout time.Duration) (string, error) {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	client := &http.Client{
		Timeout:   timeout,
		Transport: &http.Transport{Proxy: http.ProxyURL(parsed)},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, checkURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("HTTP %d", resp.StatusCode)
	}
	buf := make([]byte, 64)
	n, _ := resp.Body.Read(buf)
	ip := strings.TrimSpace(string(buf[:n]))
	if ip == "" {
		return "", fmt.Errorf("empty body")
	}
	return ip, nil
}

// ProxyList collects the distinct proxies of every configured source.
func ProxyList(cfg *config.Config) []string {
	seen := make(map[string]struct{})
	var list []string
	names := make([]string, 0, len(cfg.Sources))
	for name := range cfg.Sources {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		for _, p := range cfg.Sources[name].ProxyList {
			if _, ok := seen[p]; ok {
				continue
			}
			seen[p] = struct{}{}
			list = append(list, p)
		}
	}
	return list
}
