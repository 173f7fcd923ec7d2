package parserutil

import (
	"context"
	"log/slog"
	"sync"

	"github.com/Vodeneev/openingalert/internal/parser/parsers"
)

// FetcherFunc runs one step against a fetcher.
type FetcherFunc func(ctx context.Context, f parsers.Fetcher) error

// RunOptions configures RunFetchers.
type RunOptions struct {
	// LogStart logs when each fetcher starts.
	LogStart bool
	// OnError is called when fn returns an error. If nil, errors are logged.
	OnError func(f parsers.Fetcher, err error)
}

// RunFetchers runs fn for every fetcher in parallel, waits for all of them and
// returns the error of each fetcher by name (nil entries for successes).
func RunFetchers(ctx context.Context, fetchers []parsers.Fetcher, fn FetcherFunc, opts RunOptions) map[string]error {
	results := make(map[string]error, len(fetchers))
	if len(fetchers) == 0 {
		return results
	}

	onError := opts.OnError
	if onError == nil {
		onError = func(f parsers.Fetcher, err error) {
			slog.Error("Fetcher failed", "bookmaker", f.Name(), "error", err)
		}
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, f := range fetchers {
		wg.Add(1)
		go func() {
			defer wg.Done()

			if opts.LogStart {
				slog.Info("Starting fetcher", "bookmaker", f.Name())
			}

			err := fn(ctx, f)
			if err != nil && ctx.Err() == nil {
				onError(f, err)
			}

			mu.Lock()
			results[f.Name()] = err
			mu.Unlock()
		}()
	}
	wg.Wait()
	return results
}
