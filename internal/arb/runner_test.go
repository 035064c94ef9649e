package arb

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeScope/internal/model"
)

type fakeSnapshotSource struct {
	snapshot  model.Snapshot
	poolFails int
}

func (s *fakeSnapshotSource) FetchPools(context.Context) ([]model.Pool, error) {
	if s.poolFails > 0 {
		s.poolFails--
		return nil, errors.New("indexer unavailable")
	}
	return s.snapshot.Pools, nil
}

func (s *fakeSnapshotSource) FetchTokens(context.Context) ([]model.Token, error) {
	return s.snapshot.Tokens, nil
}

type fakePriceSource struct {
	prices map[string]decimal.Decimal
	keys   []string
}

func (s *fakePriceSource) FetchPrices(_ context.Context, keys []string) (map[string]decimal.Decimal, error) {
	s.keys = keys
	return s.prices, nil
}

type fakeHeightSource struct {
	height uint64
	err    error
}

func (s *fakeHeightSource) LatestBlockHeight(context.Context) (uint64, error) {
	return s.height, s.err
}

type fakeStorage struct {
	records []model.OpportunityRecord
	puts    int
}

func (s *fakeStorage) PutOpportunities(records []model.OpportunityRecord) error {
	s.puts++
	s.records = append(s.records, records...)
	return nil
}

func testRunner(snapshots *fakeSnapshotSource, prices *fakePriceSource, height HeightSource, sink *fakeStorage, cfg RunConfig) *Runner {
	scanner := NewScanner(ScanConfig{MaxHops: 5, MinimumProfit: sdkmath.NewInt(5)}, nil)
	borrowables := []model.Borrowable{{Address: "a", OracleKey: "token-a", Decimals: 0}}
	return NewRunner(cfg, snapshots, prices, height, sink, nil, scanner, borrowables, nil)
}

func TestRunOnceWritesRecords(t *testing.T) {
	snapshots := &fakeSnapshotSource{snapshot: triangleSnapshot()}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{"token-a": decimal.NewFromInt(1)}}
	sink := &fakeStorage{}

	runner := testRunner(snapshots, prices, &fakeHeightSource{height: 42}, sink, RunConfig{
		Interval: time.Second,
		Notional: decimal.NewFromInt(1000),
	})

	require.NoError(t, runner.RunOnce(context.Background()))
	assert.Equal(t, []string{"token-a"}, prices.keys)

	require.Len(t, sink.records, 2)
	best := sink.records[0]
	assert.Equal(t, "a", best.BorrowToken)
	assert.Equal(t, []string{"pab", "pbc", "pca"}, best.Path)
	assert.Equal(t, "526", best.InputAmount)
	assert.Equal(t, "533", best.QuoteOutputAmount)
	assert.Equal(t, "7", best.Profit)
	assert.Equal(t, uint64(42), best.BlockHeight)

	ts, err := time.Parse(time.RFC3339, best.CycleTS)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), ts, time.Minute)
}

func TestRunOnceRetriesSnapshotFetch(t *testing.T) {
	snapshots := &fakeSnapshotSource{snapshot: triangleSnapshot(), poolFails: 1}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{"token-a": decimal.NewFromInt(1)}}
	sink := &fakeStorage{}

	runner := testRunner(snapshots, prices, nil, sink, RunConfig{
		Interval:     time.Second,
		Notional:     decimal.NewFromInt(1000),
		MaxRetries:   2,
		RetryBackoff: time.Millisecond,
	})

	require.NoError(t, runner.RunOnce(context.Background()))
	assert.Equal(t, 1, sink.puts)
	assert.Zero(t, sink.records[0].BlockHeight, "no height source, records carry height zero")
}

func TestRunOnceExhaustsRetries(t *testing.T) {
	snapshots := &fakeSnapshotSource{snapshot: triangleSnapshot(), poolFails: 3}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{"token-a": decimal.NewFromInt(1)}}
	sink := &fakeStorage{}

	runner := testRunner(snapshots, prices, nil, sink, RunConfig{
		Interval:     time.Second,
		Notional:     decimal.NewFromInt(1000),
		MaxRetries:   1,
		RetryBackoff: time.Millisecond,
	})

	err := runner.RunOnce(context.Background())
	assert.ErrorContains(t, err, "fetch pools")
	assert.Zero(t, sink.puts)
}

func TestRunOnceSurvivesHeightFailure(t *testing.T) {
	snapshots := &fakeSnapshotSource{snapshot: triangleSnapshot()}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{"token-a": decimal.NewFromInt(1)}}
	sink := &fakeStorage{}

	runner := testRunner(snapshots, prices, &fakeHeightSource{err: errors.New("lcd down")}, sink, RunConfig{
		Interval: time.Second,
		Notional: decimal.NewFromInt(1000),
	})

	require.NoError(t, runner.RunOnce(context.Background()))
	require.NotEmpty(t, sink.records)
	assert.Zero(t, sink.records[0].BlockHeight)
}

func TestRunValidatesDependencies(t *testing.T) {
	snapshots := &fakeSnapshotSource{snapshot: triangleSnapshot()}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{}}
	sink := &fakeStorage{}
	cfg := RunConfig{Interval: time.Second, Notional: decimal.NewFromInt(1000)}

	scanner := NewScanner(ScanConfig{}, nil)
	borrowables := []model.Borrowable{{Address: "a", OracleKey: "token-a", Decimals: 0}}

	err := NewRunner(cfg, snapshots, nil, nil, sink, nil, scanner, borrowables, nil).Run(context.Background())
	assert.ErrorContains(t, err, "price source")

	err = NewRunner(cfg, snapshots, prices, nil, sink, nil, scanner, nil, nil).Run(context.Background())
	assert.ErrorContains(t, err, "borrowable")

	badInterval := RunConfig{Interval: 0, Notional: decimal.NewFromInt(1000)}
	err = testRunner(snapshots, prices, nil, sink, badInterval).Run(context.Background())
	assert.ErrorContains(t, err, "interval")
}

func TestRunStopsOnContextCancel(t *testing.T) {
	snapshots := &fakeSnapshotSource{snapshot: triangleSnapshot()}
	prices := &fakePriceSource{prices: map[string]decimal.Decimal{"token-a": decimal.NewFromInt(1)}}
	sink := &fakeStorage{}

	runner := testRunner(snapshots, prices, nil, sink, RunConfig{
		Interval: 10 * time.Millisecond,
		Notional: decimal.NewFromInt(1000),
	})

	ctx, cancel := context.WithTimeout(context.Background(), 35*time.Millisecond)
	defer cancel()

	err := runner.Run(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.GreaterOrEqual(t, sink.puts, 2, "initial cycle plus at least one tick")
}
