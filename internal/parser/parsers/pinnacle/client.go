package pinnacle

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const defaultBaseURL = "https://guest.api.arcadia.pinnacle.com"

var guestHeaders = map[string]string{
	"Accept":  "application/json, text/plain, */*",
	"Origin":  "https://www.pinnacle.com",
	"Referer": "https://www.pinnacle.com/",
}

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
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: c}, nil
}

var listParams = url.Values{"withSpecials": {"false"}, "brandId": {"0"}}

func (c *Client) GetSportMatchups(ctx context.Context, sportID string) ([]Matchup, error) {
	var out []Matchup
	if err := c.http.GetJSON(ctx, fmt.Sprintf("%s/0.1/sports/%s/matchups", c.baseURL, sportID), listParams, guestHeaders, &out); err != nil {
		return nil, fmt.Errorf("matchups: %w", err)
	}
	return out, nil
}

func (c *Client) GetSportStraightMarkets(ctx context.Context, sportID string) ([]Market, error) {
	var out []Market
	if err := c.http.GetJSON(ctx, fmt.Sprintf("%s/0.1/sports/%s/markets/straight", c.baseURL, sportID), listParams, guestHeaders, &out); err != nil {
		return nil, fmt.Errorf("markets: %w", err)
	}
	return out, nil
}
