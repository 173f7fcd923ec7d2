package transport

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
)

// chromeMu serializes Chrome usage so only one instance runs at a time.
var chromeMu sync.Mutex

// Browser loads pages in headless Chrome and returns the rendered body text.
type Browser struct {
	timeout   time.Duration
	userAgent string
	proxy     string
	settle    time.Duration
}

func NewBrowser(timeout time.Duration, userAgent, torProxy string, useTor bool) *Browser {
	b := &Browser{timeout: timeout, userAgent: userAgent, settle: 3 * time.Second}
	if useTor {
		b.proxy = torProxy
	}
	return b
}

func (b *Browser) Get(ctx context.Context, rawURL string) ([]byte, error) {
	chromeMu.Lock()
	defer chromeMu.Unlock()

	chromeDir, err := os.MkdirTemp("", "openingalert_chrome_")
	if err != nil {
		return nil, fmt.Errorf("create chrome temp dir: %w", err)
	}
	defer os.RemoveAll(chromeDir)

	// Chrome needs longer than a plain request to boot and settle.
	ctx, cancel := context.WithTimeout(ctx, b.timeout+b.settle+30*time.Second)
	defer cancel()

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.UserDataDir(chromeDir),
		chromedp.UserAgent(b.userAgent),
	)
	if b.proxy != "" {
		opts = append(opts, chromedp.ProxyServer(b.proxy))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()

	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(format string, v ...interface{}) {
		slog.Debug("chromedp", "message", fmt.Sprintf(format, v...))
	}))
	defer cancelBrowser()

	var text string
	err = chromedp.Run(browserCtx,
		chromedp.Navigate(rawURL),
		chromedp.Sleep(b.settle),
		chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp navigation: %w", err)
	}
	return []byte(text), nil
}
