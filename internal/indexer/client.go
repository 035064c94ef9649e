package indexer

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"routeScope/internal/model"
)

// DefaultFee is applied to pools whose snapshot carries no fee at all.
var DefaultFee = decimal.RequireFromString("0.003")

// Client fetches the pool and token snapshot from the indexer API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a snapshot client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// FetchPools returns the current pool snapshot.
func (c *Client) FetchPools(ctx context.Context) ([]model.Pool, error) {
	var payload struct {
		Pools []model.Pool `json:"pools"`
	}
	if err := c.get(ctx, "/pools", &payload); err != nil {
		return nil, err
	}
	return payload.Pools, nil
}

// FetchTokens returns the current token config.
func (c *Client) FetchTokens(ctx context.Context) ([]model.Token, error) {
	var payload struct {
		Tokens []model.Token `json:"tokens"`
	}
	if err := c.get(ctx, "/tokens", &payload); err != nil {
		return nil, err
	}
	return payload.Tokens, nil
}

func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch %s: unexpected status %d", path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

// Normalize drops pools without liquidity on both sides and applies the
// default fee to fee-less pools. It returns the kept pools and the number
// dropped.
func Normalize(pools []model.Pool) ([]model.Pool, int) {
	kept := make([]model.Pool, 0, len(pools))
	dropped := 0
	for _, pool := range pools {
		if pool.Amount0.IsNil() || pool.Amount1.IsNil() ||
			!pool.Amount0.IsPositive() || !pool.Amount1.IsPositive() {
			dropped++
			continue
		}
		if pool.LPFee.IsZero() && pool.DaoFee.IsZero() {
			pool.LPFee = DefaultFee
		}
		kept = append(kept, pool)
	}
	return kept, dropped
}
