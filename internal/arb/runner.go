package arb

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"routeScope/internal/indexer"
	"routeScope/internal/metrics"
	"routeScope/internal/model"
	"routeScope/internal/storage"
	"routeScope/internal/storage/postgres"
)

// SnapshotSource supplies the pools and token config for a cycle.
type SnapshotSource interface {
	FetchPools(ctx context.Context) ([]model.Pool, error)
	FetchTokens(ctx context.Context) ([]model.Token, error)
}

// PriceSource supplies oracle prices keyed by oracle identifier.
type PriceSource interface {
	FetchPrices(ctx context.Context, keys []string) (map[string]decimal.Decimal, error)
}

// HeightSource supplies the chain height used to stamp records.
type HeightSource interface {
	LatestBlockHeight(ctx context.Context) (uint64, error)
}

// RunConfig holds runtime settings for the poll loop.
type RunConfig struct {
	Interval     time.Duration
	Notional     decimal.Decimal
	MaxRetries   int
	RetryBackoff time.Duration
}

// Runner drives the scan loop: fetch a snapshot, price the borrowables,
// scan for arbitrage, persist what was found.
type Runner struct {
	cfg         RunConfig
	snapshots   SnapshotSource
	prices      PriceSource
	height      HeightSource
	storage     storage.Storage
	pg          *postgres.Store
	scanner     *Scanner
	borrowables []model.Borrowable
	logger      *zap.Logger
}

// NewRunner builds a Runner with its dependencies. The height source and
// the Postgres store are optional.
func NewRunner(cfg RunConfig, snapshots SnapshotSource, prices PriceSource, height HeightSource, storageSink storage.Storage, pg *postgres.Store, scanner *Scanner, borrowables []model.Borrowable, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:         cfg,
		snapshots:   snapshots,
		prices:      prices,
		height:      height,
		storage:     storageSink,
		pg:          pg,
		scanner:     scanner,
		borrowables: borrowables,
		logger:      logger,
	}
}

// Run executes one cycle immediately and then one per interval until the
// context is done. Cycle errors are logged and counted; the loop continues.
func (r *Runner) Run(ctx context.Context) error {
	if r.snapshots == nil {
		return fmt.Errorf("snapshot source is nil")
	}
	if r.prices == nil {
		return fmt.Errorf("price source is nil")
	}
	if r.storage == nil {
		return fmt.Errorf("storage is nil")
	}
	if r.scanner == nil {
		return fmt.Errorf("scanner is nil")
	}
	if len(r.borrowables) == 0 {
		return fmt.Errorf("at least one borrowable is required")
	}
	if r.cfg.Interval <= 0 {
		return fmt.Errorf("interval must be positive")
	}

	if err := r.runCycle(ctx); err != nil {
		r.logger.Error("cycle failed", zap.Error(err))
		metrics.ScanErrors.Inc()
	}

	ticker := time.NewTicker(r.cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.runCycle(ctx); err != nil {
				r.logger.Error("cycle failed", zap.Error(err))
				metrics.ScanErrors.Inc()
			}
		}
	}
}

// RunOnce executes a single cycle. The scan command uses it with file-backed
// sources.
func (r *Runner) RunOnce(ctx context.Context) error {
	return r.runCycle(ctx)
}

func (r *Runner) runCycle(ctx context.Context) error {
	started := time.Now()
	metrics.ScanCycles.Inc()

	pools, err := r.fetchPoolsWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("fetch pools: %w", err)
	}
	tokens, err := r.fetchTokensWithRetry(ctx)
	if err != nil {
		return fmt.Errorf("fetch tokens: %w", err)
	}

	pools, dropped := indexer.Normalize(pools)
	if dropped > 0 {
		r.logger.Warn("dropped empty pools", zap.Int("count", dropped))
	}
	metrics.SnapshotPools.Set(float64(len(pools)))
	metrics.SnapshotTokens.Set(float64(len(tokens)))

	keys := make([]string, 0, len(r.borrowables))
	for _, borrowable := range r.borrowables {
		keys = append(keys, borrowable.OracleKey)
	}
	prices, err := r.prices.FetchPrices(ctx, keys)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}

	height := r.latestHeight(ctx)
	sizes := BuildTradeSizes(r.borrowables, prices, r.cfg.Notional)

	result, err := r.scanner.Scan(model.Snapshot{Tokens: tokens, Pools: pools}, r.borrowables, sizes)
	if err != nil {
		return fmt.Errorf("scan: %w", err)
	}

	records := flattenOpportunities(result.Opportunities, started.UTC(), height)
	if err := r.storage.PutOpportunities(records); err != nil {
		return fmt.Errorf("store opportunities: %w", err)
	}
	if r.pg != nil {
		if err := r.pg.InsertOpportunities(ctx, records); err != nil {
			return fmt.Errorf("store opportunities in postgres: %w", err)
		}
	}

	metrics.OpportunitiesFound.Add(float64(len(result.Opportunities)))
	if len(result.Opportunities) > 0 {
		best := result.Opportunities[0]
		profit, _ := decimal.NewFromBigInt(best.Profit.BigInt(), 0).Float64()
		metrics.BestProfit.WithLabelValues(best.Borrowable.Address).Set(profit)

		r.logger.Info("arbitrage found",
			zap.String("borrow_token", best.Borrowable.Address),
			zap.String("input", best.Route.InputAmount.String()),
			zap.String("output", best.Route.QuoteOutputAmount.String()),
			zap.String("profit", best.Profit.String()),
			zap.Strings("path", best.Route.Path),
		)
		if result.Plan != nil {
			r.logger.Info("trade plan",
				zap.String("borrow_token", result.Plan.BorrowToken),
				zap.String("borrow_amount", result.Plan.BorrowAmount.String()),
				zap.String("expected_return", result.Plan.ExpectedReturn.String()),
				zap.Int("hops", len(result.Plan.RouterPath)),
			)
		}
	}
	metrics.ScanDuration.Observe(time.Since(started).Seconds())

	r.logger.Info("cycle complete",
		zap.Int("pools", len(pools)),
		zap.Int("tokens", len(tokens)),
		zap.Int("priced", len(sizes)),
		zap.Int("opportunities", len(result.Opportunities)),
		zap.Uint64("height", height),
		zap.Duration("elapsed", time.Since(started)),
	)
	return nil
}

func (r *Runner) fetchPoolsWithRetry(ctx context.Context) ([]model.Pool, error) {
	var pools []model.Pool
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		pools, err = r.snapshots.FetchPools(ctx)
		if err != nil {
			r.logger.Warn("fetch pools failed", zap.Error(err))
		}
		return err
	})
	return pools, err
}

func (r *Runner) fetchTokensWithRetry(ctx context.Context) ([]model.Token, error) {
	var tokens []model.Token
	err := withRetry(ctx, r.cfg.MaxRetries, r.cfg.RetryBackoff, func(ctx context.Context) error {
		var err error
		tokens, err = r.snapshots.FetchTokens(ctx)
		if err != nil {
			r.logger.Warn("fetch tokens failed", zap.Error(err))
		}
		return err
	})
	return tokens, err
}

// latestHeight is best effort: the height only stamps records, so failures
// downgrade to a warning.
func (r *Runner) latestHeight(ctx context.Context) uint64 {
	if r.height == nil {
		return 0
	}
	height, err := r.height.LatestBlockHeight(ctx)
	if err != nil {
		r.logger.Warn("fetch height failed", zap.Error(err))
		return 0
	}
	return height
}

func flattenOpportunities(opportunities []Opportunity, ts time.Time, height uint64) []model.OpportunityRecord {
	records := make([]model.OpportunityRecord, 0, len(opportunities))
	for _, opportunity := range opportunities {
		records = append(records, model.OpportunityRecord{
			CycleTS:           ts.Format(time.RFC3339),
			BlockHeight:       height,
			BorrowToken:       opportunity.Borrowable.Address,
			Path:              opportunity.Route.Path,
			InputAmount:       opportunity.Route.InputAmount.String(),
			QuoteOutputAmount: opportunity.Route.QuoteOutputAmount.String(),
			Profit:            opportunity.Profit.String(),
			QuoteLPFee:        opportunity.Route.QuoteLPFee.String(),
			QuoteShadeDaoFee:  opportunity.Route.QuoteShadeDaoFee.String(),
			PriceImpact:       opportunity.Route.PriceImpact.String(),
			GasMultiplier:     opportunity.Route.GasMultiplier.String(),
		})
	}
	return records
}
