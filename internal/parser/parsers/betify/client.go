package betify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Vodeneev/openingalert/internal/pkg/parserutil"
	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const (
	brandID        = "2491953325260546049"
	defaultBaseURL = "https://api-a-c7818b61-600.sptpub.com/api/v4/prematch/brand/" + brandID + "/en"
)

type Client struct {
	baseURL string
	http    *transport.Client
}

func NewClient(baseURL string, opts transport.Options) (*Client, error) {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	c, err := transport.NewClient(opts)
	if err != nil {
		return nil, err
	}
	return &Client{baseURL: baseURL, http: c}, nil
}

// Versions returns the top and rest event versions listed on /0, deduplicated.
func (c *Client) Versions(ctx context.Context) ([]string, error) {
	var idx indexResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/0", nil, nil, &idx); err != nil {
		return nil, fmt.Errorf("load index: %w", err)
	}
	top, err := parserutil.FlattenIDs(idx.TopEventsVersions)
	if err != nil {
		return nil, fmt.Errorf("top_events_versions: %w", err)
	}
	rest, err := parserutil.FlattenIDs(idx.RestEventsVersions)
	if err != nil {
		return nil, fmt.Errorf("rest_events_versions: %w", err)
	}
	return parserutil.Dedupe(append(top, rest...)), nil
}

// Page loads every version and merges their events and tournaments. A version
// that fails to load is skipped.
func (c *Client) Page(ctx context.Context, versions []string) versionPage {
	merged := versionPage{
		Events:      map[string]Event{},
		Tournaments: map[string]Tournament{},
	}
	for _, ver := range versions {
		var page versionPage
		if err := c.http.GetJSON(ctx, c.baseURL+"/"+ver, nil, nil, &page); err != nil {
			if ctx.Err() != nil {
				break
			}
			slog.Warn("Betify: version failed, skipping", "version", ver, "error", err)
			continue
		}
		for id, ev := range page.Events {
			merged.Events[id] = ev
		}
		for id, t := range page.Tournaments {
			merged.Tournaments[id] = t
		}
	}
	return merged
}
