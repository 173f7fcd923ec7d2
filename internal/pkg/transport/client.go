// Package transport performs the outbound HTTP requests of the bookmaker
// fetchers: optional Tor SOCKS proxy, ordered proxy list with direct
// fallback, and an optional headless browser for JavaScript-guarded pages.
package transport

import (
	"bytes"
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

const (
	DefaultTorProxy  = "socks5://127.0.0.1:9050"
	DefaultTimeout   = 15 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0 Safari/537.36"
)

// Options selects how one source reaches its endpoint.
type Options struct {
	UseTor     bool
	TorProxy   string
	ProxyList  []string
	UseBrowser bool
	Timeout    time.Duration
	UserAgent  string
}

// StatusError reports a non-200 answer.
type StatusError struct {
	URL     string
	Code    int
	Preview string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d for %s: %s", e.Code, e.URL, e.Preview)
}

type Client struct {
	opts       Options
	httpClient *http.Client
	browser    *Browser

	proxyMu           sync.Mutex
	currentProxyIndex int
}

func NewClient(opts Options) (*Client, error) {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.UseTor && opts.TorProxy == "" {
		opts.TorProxy = DefaultTorProxy
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyFromEnvironment
	if opts.UseTor {
		torURL, err := url.Parse(opts.TorProxy)
		if err != nil {
			return nil, fmt.Errorf("parse tor proxy: %w", err)
		}
		transport.Proxy = http.ProxyURL(torURL)
	}

	c := &Client{
		opts:       opts,
		httpClient: &http.Client{Timeout: opts.Timeout, Transport: transport},
	}
	if opts.UseBrowser {
		c.browser = NewBrowser(opts.Timeout, opts.UserAgent, opts.TorProxy, opts.UseTor)
	}
	return c, nil
}

func (c *Client) Options() Options { return c.opts }

// GetJSON fetches rawURL with params and decodes the JSON answer into out.
func (c *Client) GetJSON(ctx context.Context, rawURL string, params url.Values, headers map[string]string, out any) error {
	body, err := c.Get(ctx, rawURL, params, headers)
	if err != nil {
		return err
	}
	if c.browser != nil && looksLikeHTML(body) {
		slog.Info("Got HTML instead of JSON, retrying in headless browser", "url", rawURL)
		if body, err = c.browser.Get(ctx, withParams(rawURL, params)); err != nil {
			return err
		}
	}
	if err := json.Unmarshal(body, out); err != nil {
		preview := previewOf(body)
		if looksLikeHTML(body) {
			return fmt.Errorf("unmarshal: received HTML instead of JSON: %s", preview)
		}
		return fmt.Errorf("unmarshal: %w (body preview: %s)", err, preview)
	}
	return nil
}

// Get returns the raw body of rawURL. With a proxy list each proxy is tried
// in order, starting from the last one that worked, before a direct request.
// A failed request is replayed in the headless browser when UseBrowser is set.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values, headers map[string]string) ([]byte, error) {
	rawURL = withParams(rawURL, params)

	var body []byte
	var err error
	if len(c.opts.ProxyList) > 0 && !c.opts.UseTor {
		body, err = c.doWithProxyRetry(ctx, rawURL, headers)
	} else {
		body, err = c.do(ctx, c.httpClient, rawURL, headers)
	}
	if err != nil && c.browser != nil && ctx.Err() == nil {
		slog.Info("Request failed, retrying in headless browser", "url", rawURL, "error", err)
		return c.browser.Get(ctx, rawURL)
	}
	return body, err
}

func withParams(rawURL string, params url.Values) string {
	if len(params) == 0 {
		return rawURL
	}
	sep := "?"
	if strings.Contains(rawURL, "?") {
		sep = "&"
	}
	return rawURL + sep + params.Encode()
}

func looksLikeHTML(b []byte) bool {
	b = bytes.TrimSpace(b)
	return len(b) > 0 && b[0] == '<'
}

func (c *Client) doWithProxyRetry(ctx context.Context, rawURL string, headers map[string]string) ([]byte, error) {
	c.proxyMu.Lock()
	start := c.currentProxyIndex
	c.proxyMu.Unlock()

	for attempt := 0; attempt < len(c.opts.ProxyList); attempt++ {
		idx := (start + attempt) % len(c.opts.ProxyList)
		proxyURL, err := url.Parse(c.opts.ProxyList[idx])
		if err != nil {
			slog.Warn("Skipping invalid proxy", "proxy_index", idx+1, "error", err)
			continue
		}

		transport := http.DefaultTransport.(*http.Transport).Clone()
		transport.Proxy = http.ProxyURL(proxyURL)
		client := &http.Client{Timeout: c.opts.Timeout, Transport: transport}

		body, err := c.do(ctx, client, rawURL, headers)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			slog.Debug("Proxy failed", "proxy", MaskProxyURL(c.opts.ProxyList[idx]), "error", err)
			continue
		}

		c.proxyMu.Lock()
		c.currentProxyIndex = idx
		c.proxyMu.Unlock()
		return body, nil
	}

	slog.Warn("All proxies failed, trying direct connection", "url", rawURL, "total_proxies_tried", len(c.opts.ProxyList))
	return c.do(ctx, c.httpClient, rawURL, headers)
}

func (c *Client) do(ctx context.Context, client *http.Client, rawURL string, headers map[string]string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/plain, */*")
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", c.opts.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	body, err := readBodyMaybeGzip(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{URL: rawURL, Code: resp.StatusCode, Preview: previewOf(body)}
	}
	return body, nil
}

func readBodyMaybeGzip(resp *http.Response) ([]byte, error) {
	var r io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip reader: %w", err)
		}
		defer gz.Close()
		r = gz
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return b, nil
}

func previewOf(b []byte) string {
	b = bytes.TrimSpace(b)
	if len(b) > 300 {
		return string(b[:300]) + "..."
	}
	return string(b)
}

// MaskProxyURL hides the password of a proxy URL for logging.
func MaskProxyURL(proxyURL string) string {
	parsed, err := url.Parse(proxyURL)
	if err != nil {
		return "***"
	}
	if parsed.User != nil {
		if _, ok := parsed.User.Password(); ok {
			parsed.User = url.UserPassword(parsed.User.Username(), "***")
		}
	}
	return parsed.String()
}
