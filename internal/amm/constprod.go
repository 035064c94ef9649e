package amm

import (
	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"routeScope/internal/decmath"
)

// ConstProdPool simulates swaps against an X*Y=k pool on raw amounts.
// Simulations never mutate the pool; they report the post-trade reserves
// instead.
type ConstProdPool struct {
	Reserve0 sdkmath.Int
	Reserve1 sdkmath.Int
	LPFee    decimal.Decimal
	DaoFee   decimal.Decimal
}

// ConstProdResult is the outcome of one constant-product simulation. Amount
// is the net output for forward swaps and the required input for reverse
// swaps. Fee amounts are in units of the output token; PriceImpact is a
// plain ratio, not a percentage.
type ConstProdResult struct {
	Amount       sdkmath.Int
	LPFeeAmount  decimal.Decimal
	DaoFeeAmount decimal.Decimal
	PriceImpact  decimal.Decimal
	NewReserve0  sdkmath.Int
	NewReserve1  sdkmath.Int
}

func (p ConstProdPool) totalFee() decimal.Decimal {
	return p.LPFee.Add(p.DaoFee)
}

// SimulateToken0ForToken1 swaps dx of token0 for token1.
func (p ConstProdPool) SimulateToken0ForToken1(dx sdkmath.Int) (ConstProdResult, error) {
	return p.simulateForward(dx, p.Reserve0, p.Reserve1, true)
}

// SimulateToken1ForToken0 swaps dx of token1 for token0.
func (p ConstProdPool) SimulateToken1ForToken0(dx sdkmath.Int) (ConstProdResult, error) {
	return p.simulateForward(dx, p.Reserve1, p.Reserve0, false)
}

// ReverseToken0ForToken1 reports the token0 input required to receive dy of
// token1 net of fees.
func (p ConstProdPool) ReverseToken0ForToken1(dy sdkmath.Int) (ConstProdResult, error) {
	return p.simulateReverse(dy, p.Reserve0, p.Reserve1, true)
}

// ReverseToken1ForToken0 reports the token1 input required to receive dy of
// token0 net of fees.
func (p ConstProdPool) ReverseToken1ForToken0(dy sdkmath.Int) (ConstProdResult, error) {
	return p.simulateReverse(dy, p.Reserve1, p.Reserve0, false)
}

func (p ConstProdPool) simulateForward(dxRaw sdkmath.Int, inReserve, outReserve sdkmath.Int, zeroForOne bool) (ConstProdResult, error) {
	if !dxRaw.IsPositive() {
		return ConstProdResult{}, ErrTradeTooSmall
	}
	if !inReserve.IsPositive() || !outReserve.IsPositive() {
		return ConstProdResult{}, ErrInsufficientLiquidity
	}

	x := decimal.NewFromBigInt(inReserve.BigInt(), 0)
	y := decimal.NewFromBigInt(outReserve.BigInt(), 0)
	dx := decimal.NewFromBigInt(dxRaw.BigInt(), 0)

	// grossOut = Y - X*Y/(X+dx) = Y*dx/(X+dx)
	gross, err := decmath.Div(x.Mul(y), x.Add(dx))
	if err != nil {
		return ConstProdResult{}, err
	}
	gross = y.Sub(gross)

	lpAmt := p.LPFee.Mul(gross)
	daoAmt := p.DaoFee.Mul(gross)
	net := decmath.ToRaw(gross.Sub(lpAmt).Sub(daoAmt), 0)

	impact, err := p.priceImpact(x, y, dx, gross)
	if err != nil {
		return ConstProdResult{}, err
	}

	res := ConstProdResult{
		Amount:       net,
		LPFeeAmount:  lpAmt,
		DaoFeeAmount: daoAmt,
		PriceImpact:  impact,
	}
	if zeroForOne {
		res.NewReserve0 = inReserve.Add(dxRaw)
		res.NewReserve1 = outReserve.Sub(net)
	} else {
		res.NewReserve1 = inReserve.Add(dxRaw)
		res.NewReserve0 = outReserve.Sub(net)
	}
	return res, nil
}

func (p ConstProdPool) simulateReverse(dyRaw sdkmath.Int, inReserve, outReserve sdkmath.Int, zeroForOne bool) (ConstProdResult, error) {
	if !dyRaw.IsPositive() {
		return ConstProdResult{}, ErrTradeTooSmall
	}
	if !inReserve.IsPositive() || !outReserve.IsPositive() {
		return ConstProdResult{}, ErrInsufficientLiquidity
	}

	x := decimal.NewFromBigInt(inReserve.BigInt(), 0)
	y := decimal.NewFromBigInt(outReserve.BigInt(), 0)
	dy := decimal.NewFromBigInt(dyRaw.BigInt(), 0)

	// Gross up the desired net output before inverting the curve.
	gross, err := decmath.Div(dy, decimal.NewFromInt(1).Sub(p.totalFee()))
	if err != nil {
		return ConstProdResult{}, err
	}
	if gross.GreaterThanOrEqual(y) {
		return ConstProdResult{}, ErrInsufficientLiquidity
	}

	dx, err := decmath.Div(x.Mul(gross), y.Sub(gross))
	if err != nil {
		return ConstProdResult{}, err
	}
	dxRaw := decmath.ToRaw(dx.Ceil(), 0)

	impact, err := p.priceImpact(x, y, dx, gross)
	if err != nil {
		return ConstProdResult{}, err
	}

	res := ConstProdResult{
		Amount:       dxRaw,
		LPFeeAmount:  p.LPFee.Mul(gross),
		DaoFeeAmount: p.DaoFee.Mul(gross),
		PriceImpact:  impact,
	}
	if zeroForOne {
		res.NewReserve0 = inReserve.Add(dxRaw)
		res.NewReserve1 = outReserve.Sub(dyRaw)
	} else {
		res.NewReserve1 = inReserve.Add(dxRaw)
		res.NewReserve0 = outReserve.Sub(dyRaw)
	}
	return res, nil
}

// priceImpact compares the marginal price X/Y with the realised price
// dx/grossOut and reports the divergence as paid/market - 1.
func (p ConstProdPool) priceImpact(x, y, dx, gross decimal.Decimal) (decimal.Decimal, error) {
	market, err := decmath.Div(x, y)
	if err != nil {
		return decimal.Decimal{}, err
	}
	paid, err := decmath.Div(dx, gross)
	if err != nil {
		return decimal.Decimal{}, err
	}
	ratio, err := decmath.Div(paid, market)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ratio.Sub(decimal.NewFromInt(1)), nil
}
