package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchPrices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/prices", r.URL.Path)
		require.Equal(t, "SILK,SHD", r.URL.Query().Get("ids"))
		w.Write([]byte(`{"prices": {"SILK": "1.05", "SHD": "3.2"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	prices, err := client.FetchPrices(context.Background(), []string{"SILK", "SHD"})
	require.NoError(t, err)
	require.Len(t, prices, 2)
	assert.True(t, prices["SILK"].Equal(decimal.RequireFromString("1.05")))
	assert.True(t, prices["SHD"].Equal(decimal.RequireFromString("3.2")))
}

func TestFetchPricesUnknownKeysAbsent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"prices": {"SILK": "1.05"}}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	prices, err := client.FetchPrices(context.Background(), []string{"SILK", "UNKNOWN"})
	require.NoError(t, err)

	_, ok := prices["UNKNOWN"]
	assert.False(t, ok)
}

func TestFetchPricesBadStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, time.Second)
	_, err := client.FetchPrices(context.Background(), []string{"SILK"})
	assert.ErrorContains(t, err, "unexpected status 503")
}
