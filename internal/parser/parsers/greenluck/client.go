package greenluck

import (
	"context"
	"fmt"
	"strings"

	"github.com/Vodeneev/openingalert/internal/pkg/transport"
)

const defaultBaseURL = "https://pre-161o-sp.sbx.bet/cache/161/fr/EE/Europe-Paris/init"

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

// Popular returns the welcome-popular events of one sport.
func (c *Client) Popular(ctx context.Context, sportID string) ([]Event, error) {
	u := fmt.Sprintf("%s/%s/welcome-popular.json?filters=", c.baseURL, sportID)
	var out popularResponse
	if err := c.http.GetJSON(ctx, u, nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}
