package model

import (
	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// PoolKind tags the curve a pool trades on.
type PoolKind string

const (
	KindConstantProduct PoolKind = "constant_product"
	KindStable          PoolKind = "stable"
)

// Pool is one liquidity pool from the snapshot. Stable pools carry the extra
// curve parameters; constant-product pools leave StableParams nil.
type Pool struct {
	Kind         PoolKind        `json:"kind"`
	Address      string          `json:"address"`
	Token0       Token           `json:"token0"`
	Token1       Token           `json:"token1"`
	Amount0      sdkmath.Int     `json:"amount0"`
	Amount1      sdkmath.Int     `json:"amount1"`
	LPFee        decimal.Decimal `json:"lp_fee"`
	DaoFee       decimal.Decimal `json:"dao_fee"`
	StableParams *StableParams   `json:"stable_params,omitempty"`
}

// Contains reports whether the pool trades the given token.
func (p Pool) Contains(tokenAddress string) bool {
	return p.Token0.Address == tokenAddress || p.Token1.Address == tokenAddress
}

// OtherToken returns the pool token opposite the given one.
func (p Pool) OtherToken(tokenAddress string) (Token, bool) {
	switch tokenAddress {
	case p.Token0.Address:
		return p.Token1, true
	case p.Token1.Address:
		return p.Token0, true
	default:
		return Token{}, false
	}
}
