// Package parsers defines the bookmaker fetcher contract and the registry the
// per-bookmaker packages register into.
package parsers

import (
	"context"
	"fmt"

	"github.com/Vodeneev/openingalert/internal/pkg/config"
	"github.com/Vodeneev/openingalert/internal/pkg/models"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

// Fetcher scrapes one bookmaker and returns its rows. Sources that cannot
// honor a transport option log it and fetch directly.
type Fetcher interface {
	Name() string
	Fetch(ctx context.Context, sportIDs []string, opts transport.Options) (models.Table, error)
}

// FetchError is a failed fetch of one source.
type FetchError struct {
	Source string
	Err    error
}

func (e *FetchError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.Source, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Wrap returns err as a *FetchError for source, nil when err is nil.
func Wrap(source string, err error) error {
	if err == nil {
		return nil
	}
	return &FetchError{Source: source, Err: err}
}

// Options builds the transport options of source from cfg.
func Options(cfg *config.Config, source string) transport.Options {
	src, _ := cfg.Source(source)
	return transport.Options{
		UseTor:     src.UseTor,
		TorProxy:   cfg.Transport.TorProxy,
		ProxyList:  src.ProxyList,
		UseBrowser: src.UseBrowser,
		Timeout:    cfg.SourceTimeout(source),
		UserAgent:  cfg.Transport.UserAgent,
	}
}

// SportIDs returns the configured sport ids of source.
func SportIDs(cfg *config.Config, source string) []string {
	src, _ := cfg.Source(source)
	return src.SportIDs
}
