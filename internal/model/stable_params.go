package model

import "github.com/shopspring/decimal"

// StableParams are the stable-curve parameters attached to a stable pool.
// PriceRatio is the oracle price of token1 in units of token0; it is nil when
// the oracle had no quote for the pair at snapshot time.
type StableParams struct {
	PriceRatio        *decimal.Decimal `json:"price_ratio,omitempty"`
	Alpha             decimal.Decimal  `json:"alpha"`
	Gamma1            decimal.Decimal  `json:"gamma1"`
	Gamma2            decimal.Decimal  `json:"gamma2"`
	MinTradeSize0For1 decimal.Decimal  `json:"min_trade_size_0_for_1"`
	MinTradeSize1For0 decimal.Decimal  `json:"min_trade_size_1_for_0"`
	PriceImpactLimit  decimal.Decimal  `json:"price_impact_limit"`
}
