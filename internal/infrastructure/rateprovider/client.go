package rateprovider

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/jrkphani/pipeline-pulse-sub004/internal/application/rates"
	"github.com/jrkphani/pipeline-pulse-sub004/pkg/config"
)

// Compile-time check that Client implements the rates provider port.
var _ rates.RateProvider = (*Client)(nil)

// Client fetches the upstream rate feed over HTTP.
type Client struct {
	feedURL    string
	httpClient *http.Client
}

// NewClient builds the adapter from the rates configuration.
func NewClient(cfg config.RatesConfig) *Client {
	return &Client{
		feedURL: cfg.FeedURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Fetch downloads and parses the feed, returning inverted to-base rates.
func (c *Client) Fetch(ctx context.Context) ([]rates.ProviderRate, error) {
	if c.feedURL == "" {
		return nil, fmt.Errorf("rates: feed URL not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("rates: create HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/xml")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("rates: timeout or cancellation: %w", ctx.Err())
		}
		return nil, fmt.Errorf("rates: HTTP call failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return nil, fmt.Errorf("rates: read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("rates: feed HTTP %d", resp.StatusCode)
	}

	feed, err := ParseFeed(body)
	if err != nil {
		return nil, err
	}
	return feed.ProviderRates(), nil
}
