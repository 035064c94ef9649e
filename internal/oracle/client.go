package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client fetches oracle prices over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an oracle client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPrices returns the prices for the given oracle keys. Keys the oracle
// does not know are simply absent from the result.
func (c *Client) FetchPrices(ctx context.Context, keys []string) (map[string]decimal.Decimal, error) {
	endpoint := c.baseURL + "/prices?ids=" + url.QueryEscape(strings.Join(keys, ","))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch prices: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch prices: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Prices map[string]decimal.Decimal `json:"prices"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode prices: %w", err)
	}
	return payload.Prices, nil
}
