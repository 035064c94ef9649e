package chain

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLatestBlockHeight(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/cosmos/base/tendermint/v1beta1/blocks/latest", r.URL.Path)
		w.Write([]byte(`{"block": {"header": {"height": "123456", "chain_id": "secret-4"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	height, err := client.LatestBlockHeight(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(123456), height)
}

func TestLatestBlockHeightBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.LatestBlockHeight(context.Background())
	assert.ErrorContains(t, err, "unexpected status 500")
}

func TestLatestBlockHeightBadHeight(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"block": {"header": {"height": "not-a-number"}}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.LatestBlockHeight(context.Background())
	assert.ErrorContains(t, err, "parse block height")
}
