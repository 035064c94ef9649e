package amm

import "errors"

var (
	// ErrTradeTooSmall is returned when a swap input does not exceed the
	// pool's minimum trade size.
	ErrTradeTooSmall = errors.New("amm: trade below minimum size")
	// ErrPriceImpactExceeded is returned when a simulated trade would move
	// the price outside the pool's configured impact window.
	ErrPriceImpactExceeded = errors.New("amm: price impact out of range")
	// ErrInsufficientLiquidity is returned when a requested output meets or
	// exceeds the pool's liquidity on that side.
	ErrInsufficientLiquidity = errors.New("amm: insufficient liquidity")
	// ErrOracleUnavailable is returned when a stable pool has no oracle
	// price ratio.
	ErrOracleUnavailable = errors.New("amm: oracle price ratio unavailable")
	// ErrNonconvergent wraps root-finder failures during stable-curve
	// solves; the underlying kinds never escape the engine unchanged.
	ErrNonconvergent = errors.New("amm: stable solve did not converge")
)
