package chain

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Client wraps the Cosmos LCD REST API. The scanner only needs the latest
// block height, used to stamp scan results.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates an LCD client for the given base URL.
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// LatestBlockHeight returns the height of the latest committed block.
func (c *Client) LatestBlockHeight(ctx context.Context) (uint64, error) {
	endpoint := c.baseURL + "/cosmos/base/tendermint/v1beta1/blocks/latest"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("fetch latest block: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("fetch latest block: unexpected status %d", resp.StatusCode)
	}

	var payload struct {
		Block struct {
			Header struct {
				Height string `json:"height"`
			} `json:"header"`
		} `json:"block"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode latest block: %w", err)
	}

	height, err := strconv.ParseUint(payload.Block.Header.Height, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parse block height %q: %w", payload.Block.Header.Height, err)
	}
	return height, nil
}
