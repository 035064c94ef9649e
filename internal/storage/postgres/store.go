package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"routeScope/internal/model"
)

// Store provides Postgres persistence for arbitrage opportunities.
type Store struct {
	pool *pgxpool.Pool
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// InsertOpportunities appends a batch of opportunity records.
func (s *Store) InsertOpportunities(ctx context.Context, records []model.OpportunityRecord) error {
	if len(records) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, record := range records {
		batch.Queue(`
			INSERT INTO arb_opportunities (
				cycle_ts, block_height, borrow_token, path,
				input_amount, quote_output_amount, profit,
				quote_lp_fee, quote_shade_dao_fee, price_impact, gas_multiplier,
				created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, now())
		`,
			record.CycleTS,
			int64(record.BlockHeight),
			record.BorrowToken,
			record.Path,
			record.InputAmount,
			record.QuoteOutputAmount,
			record.Profit,
			record.QuoteLPFee,
			record.QuoteShadeDaoFee,
			record.PriceImpact,
			record.GasMultiplier,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range records {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	return nil
}
