package sportaza

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const defaultBaseURL = "https://sb2frontend-altenar2.biahosted.com/api/widget"

// Widget endpoints queried on every fetch, outrights first.
var endpoints = []string{"GetOutrightEvents", "GetEvents"}

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

func (c *Client) Get(ctx context.Context, endpoint string, catIDs []string) (*widgetResponse, error) {
	params := url.Values{
		"culture":        {"fr-FR"},
		"timezoneOffset": {"-120"},
		"integration":    {"sportaza"},
		"deviceType":     {"1"},
		"numFormat":      {"en-GB"},
		"countryCode":    {"LI"},
		"eventCount":     {"0"},
		"sportId":        {"0"},
		"catIds":         {strings.Join(catIDs, ",")},
	}
	var out widgetResponse
	if err := c.http.GetJSON(ctx, c.baseURL+"/"+endpoint, params, nil, &out); err != nil {
		return nil, fmt.Errorf("%s: %w", endpoint, err)
	}
	return &out, nil
}
