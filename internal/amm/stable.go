package amm

import (
	"fmt"

	"github.com/shopspring/decimal"

	"routeScope/internal/decmath"
	"routeScope/internal/rootfind"
)

var (
	one     = decimal.NewFromInt(1)
	two     = decimal.NewFromInt(2)
	four    = decimal.NewFromInt(4)
	quarter = decimal.RequireFromString("0.25")
	hundred = decimal.NewFromInt(100)
)

// StableConfig is the snapshot state a stable pool is built from. Pool sizes
// are human-readable amounts; PriceRatio is the oracle price of token1 in
// units of token0.
type StableConfig struct {
	Pool0Size         decimal.Decimal
	Pool1Size         decimal.Decimal
	PriceRatio        decimal.Decimal
	Alpha             decimal.Decimal
	Gamma1            decimal.Decimal
	Gamma2            decimal.Decimal
	LPFee             decimal.Decimal
	DaoFee            decimal.Decimal
	MinTradeSize0For1 decimal.Decimal
	MinTradeSize1For0 decimal.Decimal
	PriceImpactLimit  decimal.Decimal
}

// StablePool evaluates trades against the stable curve
//
//	F(x, py) = alpha*(4*x*py)^gamma * (x + py - 1) + x*py - 1/4
//
// where x and py are the pool sizes normalised by the invariant d, and
// gamma is gamma1 below equilibrium (x <= py) and gamma2 above it.
// Simulate* methods never mutate the pool; Swap* methods apply the
// post-trade state and recompute the invariant.
type StablePool struct {
	cfg       StableConfig
	invariant decimal.Decimal
}

// StableResult is the outcome of one stable simulation. Amount is the net
// output for forward swaps and the required input for reverse swaps, in
// human-readable units. PriceImpact is a percentage.
type StableResult struct {
	Amount       decimal.Decimal
	LPFeeAmount  decimal.Decimal
	DaoFeeAmount decimal.Decimal
	PriceImpact  decimal.Decimal
	NewPool0Size decimal.Decimal
	NewPool1Size decimal.Decimal
}

// NewStablePool validates the snapshot state and solves the invariant.
func NewStablePool(cfg StableConfig) (*StablePool, error) {
	if cfg.PriceRatio.Sign() <= 0 {
		return nil, ErrOracleUnavailable
	}
	if cfg.Pool0Size.Sign() <= 0 || cfg.Pool1Size.Sign() <= 0 {
		return nil, fmt.Errorf("stable pool sizes must be positive, got %s / %s", cfg.Pool0Size, cfg.Pool1Size)
	}
	if cfg.Alpha.Sign() <= 0 {
		return nil, fmt.Errorf("alpha must be positive, got %s", cfg.Alpha)
	}
	if cfg.Gamma1.IsNegative() || cfg.Gamma2.IsNegative() || !cfg.Gamma1.IsInteger() || !cfg.Gamma2.IsInteger() {
		return nil, fmt.Errorf("gammas must be whole and non-negative, got %s / %s", cfg.Gamma1, cfg.Gamma2)
	}
	if cfg.LPFee.IsNegative() || cfg.DaoFee.IsNegative() || cfg.LPFee.Add(cfg.DaoFee).GreaterThanOrEqual(one) {
		return nil, fmt.Errorf("fees must satisfy 0 <= lp+dao < 1, got %s / %s", cfg.LPFee, cfg.DaoFee)
	}

	p := &StablePool{cfg: cfg}
	d, err := p.solveInvariant()
	if err != nil {
		return nil, err
	}
	p.invariant = d
	return p, nil
}

// Pool0Size returns the current token0 pool size.
func (p *StablePool) Pool0Size() decimal.Decimal { return p.cfg.Pool0Size }

// Pool1Size returns the current token1 pool size.
func (p *StablePool) Pool1Size() decimal.Decimal { return p.cfg.Pool1Size }

// Invariant returns the current invariant d.
func (p *StablePool) Invariant() decimal.Decimal { return p.invariant }

func (p *StablePool) totalFee() decimal.Decimal {
	return p.cfg.LPFee.Add(p.cfg.DaoFee)
}

// gammaFor selects the curve steepness for the side of equilibrium the
// given state is on. The selection is scale-free, so absolute and
// d-normalised inputs pick the same gamma.
func (p *StablePool) gammaFor(x, py decimal.Decimal) decimal.Decimal {
	if x.LessThanOrEqual(py) {
		return p.cfg.Gamma1
	}
	return p.cfg.Gamma2
}

func (p *StablePool) coeff(xs, ps, gamma decimal.Decimal) decimal.Decimal {
	return p.cfg.Alpha.Mul(decmath.PowInt(four.Mul(xs).Mul(ps), gamma.IntPart()))
}

// invariantFn is F evaluated on d-normalised pool sizes.
func (p *StablePool) invariantFn(xs, ps decimal.Decimal) decimal.Decimal {
	gamma := p.gammaFor(xs, ps)
	c := p.coeff(xs, ps, gamma)
	return c.Mul(xs.Add(ps).Sub(one)).Add(xs.Mul(ps)).Sub(quarter)
}

// partialX is dF/dx on d-normalised inputs. A non-positive x reports a zero
// slope, which Newton rejects before any division can run.
func (p *StablePool) partialX(xs, ps decimal.Decimal) decimal.Decimal {
	if xs.Sign() <= 0 {
		return decimal.Zero
	}
	gamma := p.gammaFor(xs, ps)
	c := p.coeff(xs, ps, gamma)
	return c.Mul(gamma.Mul(xs.Add(ps).Sub(one)).Div(xs).Add(one)).Add(ps)
}

// partialPy is dF/d(py) on d-normalised inputs.
func (p *StablePool) partialPy(xs, ps decimal.Decimal) decimal.Decimal {
	if ps.Sign() <= 0 {
		return decimal.Zero
	}
	gamma := p.gammaFor(xs, ps)
	c := p.coeff(xs, ps, gamma)
	return c.Mul(gamma.Mul(xs.Add(ps).Sub(one)).Div(ps).Add(one)).Add(xs)
}

// solveInvariant locates the d with F(x/d, py/d) = 0. Newton starts from the
// TVL; the bisection fallback brackets with the geometric-mean lower bound,
// computed only if the fallback actually runs.
func (p *StablePool) solveInvariant() (decimal.Decimal, error) {
	x := p.cfg.Pool0Size
	py := p.cfg.PriceRatio.Mul(p.cfg.Pool1Size)
	tvl := x.Add(py)
	xpy := x.Mul(py)
	fourXPY := four.Mul(xpy)
	gamma := p.gammaFor(x, py)
	gammaInt := gamma.IntPart()
	oneMinusTwoGamma := one.Sub(two.Mul(gamma))

	g := func(d decimal.Decimal) decimal.Decimal {
		if d.Sign() <= 0 {
			// The curve term dominates toward +inf as d -> 0.
			return xpy
		}
		c := p.cfg.Alpha.Mul(decmath.PowInt(fourXPY.Div(d.Mul(d)), gammaInt))
		return d.Mul(c).Mul(tvl.Sub(d)).Add(xpy).Sub(d.Mul(d).Div(four))
	}
	dg := func(d decimal.Decimal) decimal.Decimal {
		if d.Sign() <= 0 {
			return decimal.Zero
		}
		c := p.cfg.Alpha.Mul(decmath.PowInt(fourXPY.Div(d.Mul(d)), gammaInt))
		return c.Mul(oneMinusTwoGamma.Mul(tvl.Sub(d)).Sub(d)).Sub(d.Div(two))
	}
	lazyLower := func() decimal.Decimal {
		if x.LessThanOrEqual(one) || py.LessThanOrEqual(one) {
			return decimal.Zero
		}
		root, err := decmath.Sqrt(xpy)
		if err != nil {
			return decimal.Zero
		}
		return two.Mul(root)
	}

	d, err := rootfind.CalcZero(g, dg, tvl, tvl, true, rootfind.LazyLower(lazyLower))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: invariant: %v", ErrNonconvergent, err)
	}
	return d, nil
}

// solveForPool1Size returns the token1 pool size balancing the curve for the
// given token0 pool size, at the current invariant.
func (p *StablePool) solveForPool1Size(x decimal.Decimal) (decimal.Decimal, error) {
	d := p.invariant
	xs, err := decmath.Div(x, d)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrNonconvergent, err)
	}
	guess, err := decmath.Div(p.cfg.PriceRatio.Mul(p.cfg.Pool1Size), d)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrNonconvergent, err)
	}

	f := func(ps decimal.Decimal) decimal.Decimal { return p.invariantFn(xs, ps) }
	df := func(ps decimal.Decimal) decimal.Decimal { return p.partialPy(xs, ps) }

	ps, err := rootfind.CalcZero(f, df, guess, guess, false, rootfind.Lower(decimal.Zero))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: pool1 solve: %v", ErrNonconvergent, err)
	}
	return decmath.Div(ps.Mul(d), p.cfg.PriceRatio)
}

// solveForPool0Size returns the token0 pool size balancing the curve for the
// given price-scaled token1 pool size, at the current invariant.
func (p *StablePool) solveForPool0Size(py decimal.Decimal) (decimal.Decimal, error) {
	d := p.invariant
	ps, err := decmath.Div(py, d)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrNonconvergent, err)
	}
	guess, err := decmath.Div(p.cfg.Pool0Size, d)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: %v", ErrNonconvergent, err)
	}

	f := func(xs decimal.Decimal) decimal.Decimal { return p.invariantFn(xs, ps) }
	df := func(xs decimal.Decimal) decimal.Decimal { return p.partialX(xs, ps) }

	xs, err := rootfind.CalcZero(f, df, guess, guess, false, rootfind.Lower(decimal.Zero))
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("%w: pool0 solve: %v", ErrNonconvergent, err)
	}
	return xs.Mul(d), nil
}

// negTangent is the negated slope of the invariant curve at the given
// absolute state, giving token0's price in units of token1.
func (p *StablePool) negTangent(x, py decimal.Decimal) (decimal.Decimal, error) {
	d := p.invariant
	xs, err := decmath.Div(x, d)
	if err != nil {
		return decimal.Decimal{}, err
	}
	ps, err := decmath.Div(py, d)
	if err != nil {
		return decimal.Decimal{}, err
	}
	slope, err := decmath.Div(p.partialX(xs, ps), p.partialPy(xs, ps))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decmath.Div(slope, p.cfg.PriceRatio)
}

// token1Impact is the percent change of token1's token0-denominated price
// between the current state and a hypothetical post-trade state.
func (p *StablePool) token1Impact(x0, py0, x1, py1 decimal.Decimal) (decimal.Decimal, error) {
	current, err := p.negTangent(x0, py0)
	if err != nil {
		return decimal.Decimal{}, err
	}
	final, err := p.negTangent(x1, py1)
	if err != nil {
		return decimal.Decimal{}, err
	}
	// Token1 prices are reciprocals of the tangent, so the ratio flips.
	ratio, err := decmath.Div(current, final)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ratio.Sub(one).Mul(hundred), nil
}

// token0Impact is the percent change of token0's price between states.
func (p *StablePool) token0Impact(x0, py0, x1, py1 decimal.Decimal) (decimal.Decimal, error) {
	current, err := p.negTangent(x0, py0)
	if err != nil {
		return decimal.Decimal{}, err
	}
	final, err := p.negTangent(x1, py1)
	if err != nil {
		return decimal.Decimal{}, err
	}
	ratio, err := decmath.Div(final, current)
	if err != nil {
		return decimal.Decimal{}, err
	}
	return ratio.Sub(one).Mul(hundred), nil
}

func (p *StablePool) checkImpact(impact decimal.Decimal) error {
	if impact.IsNegative() || impact.GreaterThan(p.cfg.PriceImpactLimit) {
		return fmt.Errorf("%w: %s outside [0, %s]", ErrPriceImpactExceeded, impact, p.cfg.PriceImpactLimit)
	}
	return nil
}

// SimulateToken0ForToken1 swaps dx of token0 for token1 without mutating the
// pool.
func (p *StablePool) SimulateToken0ForToken1(dx decimal.Decimal) (StableResult, error) {
	if dx.LessThanOrEqual(p.cfg.MinTradeSize0For1) {
		return StableResult{}, fmt.Errorf("%w: %s <= %s", ErrTradeTooSmall, dx, p.cfg.MinTradeSize0For1)
	}

	x := p.cfg.Pool0Size
	y := p.cfg.Pool1Size
	py := p.cfg.PriceRatio.Mul(y)

	xNew := x.Add(dx)
	yNew, err := p.solveForPool1Size(xNew)
	if err != nil {
		return StableResult{}, err
	}

	impact, err := p.token1Impact(x, py, xNew, p.cfg.PriceRatio.Mul(yNew))
	if err != nil {
		return StableResult{}, fmt.Errorf("%w: impact: %v", ErrNonconvergent, err)
	}
	if err := p.checkImpact(impact); err != nil {
		return StableResult{}, err
	}

	gross := y.Sub(yNew)
	if gross.Sign() <= 0 {
		return StableResult{}, ErrInsufficientLiquidity
	}
	lpAmt := p.cfg.LPFee.Mul(gross)
	daoAmt := p.cfg.DaoFee.Mul(gross)

	return StableResult{
		Amount:       gross.Sub(lpAmt).Sub(daoAmt),
		LPFeeAmount:  lpAmt,
		DaoFeeAmount: daoAmt,
		PriceImpact:  impact,
		NewPool0Size: xNew,
		NewPool1Size: yNew.Add(lpAmt),
	}, nil
}

// SimulateToken1ForToken0 swaps dy of token1 for token0 without mutating the
// pool.
func (p *StablePool) SimulateToken1ForToken0(dy decimal.Decimal) (StableResult, error) {
	if dy.LessThanOrEqual(p.cfg.MinTradeSize1For0) {
		return StableResult{}, fmt.Errorf("%w: %s <= %s", ErrTradeTooSmall, dy, p.cfg.MinTradeSize1For0)
	}

	x := p.cfg.Pool0Size
	y := p.cfg.Pool1Size
	py := p.cfg.PriceRatio.Mul(y)

	pyNew := p.cfg.PriceRatio.Mul(y.Add(dy))
	xNew, err := p.solveForPool0Size(pyNew)
	if err != nil {
		return StableResult{}, err
	}

	impact, err := p.token0Impact(x, py, xNew, pyNew)
	if err != nil {
		return StableResult{}, fmt.Errorf("%w: impact: %v", ErrNonconvergent, err)
	}
	if err := p.checkImpact(impact); err != nil {
		return StableResult{}, err
	}

	gross := x.Sub(xNew)
	if gross.Sign() <= 0 {
		return StableResult{}, ErrInsufficientLiquidity
	}
	lpAmt := p.cfg.LPFee.Mul(gross)
	daoAmt := p.cfg.DaoFee.Mul(gross)

	return StableResult{
		Amount:       gross.Sub(lpAmt).Sub(daoAmt),
		LPFeeAmount:  lpAmt,
		DaoFeeAmount: daoAmt,
		PriceImpact:  impact,
		NewPool0Size: xNew.Add(lpAmt),
		NewPool1Size: y.Add(dy),
	}, nil
}

// ReverseToken0ForToken1 reports the token0 input required to receive dy of
// token1 net of fees.
func (p *StablePool) ReverseToken0ForToken1(dy decimal.Decimal) (StableResult, error) {
	x := p.cfg.Pool0Size
	y := p.cfg.Pool1Size
	py := p.cfg.PriceRatio.Mul(y)

	gross, err := decmath.Div(dy, one.Sub(p.totalFee()))
	if err != nil {
		return StableResult{}, fmt.Errorf("%w: %v", ErrNonconvergent, err)
	}
	if gross.GreaterThanOrEqual(y) {
		return StableResult{}, ErrInsufficientLiquidity
	}

	yNew := y.Sub(gross)
	pyNew := p.cfg.PriceRatio.Mul(yNew)
	xNew, err := p.solveForPool0Size(pyNew)
	if err != nil {
		return StableResult{}, err
	}

	dx := xNew.Sub(x)
	if dx.LessThanOrEqual(p.cfg.MinTradeSize0For1) {
		return StableResult{}, fmt.Errorf("%w: %s <= %s", ErrTradeTooSmall, dx, p.cfg.MinTradeSize0For1)
	}

	impact, err := p.token1Impact(x, py, xNew, pyNew)
	if err != nil {
		return StableResult{}, fmt.Errorf("%w: impact: %v", ErrNonconvergent, err)
	}
	if err := p.checkImpact(impact); err != nil {
		return StableResult{}, err
	}

	lpAmt := p.cfg.LPFee.Mul(gross)
	return StableResult{
		Amount:       dx,
		LPFeeAmount:  lpAmt,
		DaoFeeAmount: p.cfg.DaoFee.Mul(gross),
		PriceImpact:  impact,
		NewPool0Size: xNew,
		NewPool1Size: yNew.Add(lpAmt),
	}, nil
}

// ReverseToken1ForToken0 reports the token1 input required to receive dx of
// token0 net of fees.
func (p *StablePool) ReverseToken1ForToken0(dx decimal.Decimal) (StableResult, error) {
	x := p.cfg.Pool0Size
	y := p.cfg.Pool1Size
	py := p.cfg.PriceRatio.Mul(y)

	gross, err := decmath.Div(dx, one.Sub(p.totalFee()))
	if err != nil {
		return StableResult{}, fmt.Errorf("%w: %v", ErrNonconvergent, err)
	}
	if gross.GreaterThanOrEqual(x) {
		return StableResult{}, ErrInsufficientLiquidity
	}

	xNew := x.Sub(gross)
	yNew, err := p.solveForPool1Size(xNew)
	if err != nil {
		return StableResult{}, err
	}

	dy := yNew.Sub(y)
	if dy.LessThanOrEqual(p.cfg.MinTradeSize1For0) {
		return StableResult{}, fmt.Errorf("%w: %s <= %s", ErrTradeTooSmall, dy, p.cfg.MinTradeSize1For0)
	}

	impact, err := p.token0Impact(x, py, xNew, p.cfg.PriceRatio.Mul(yNew))
	if err != nil {
		return StableResult{}, fmt.Errorf("%w: impact: %v", ErrNonconvergent, err)
	}
	if err := p.checkImpact(impact); err != nil {
		return StableResult{}, err
	}

	lpAmt := p.cfg.LPFee.Mul(gross)
	return StableResult{
		Amount:       dy,
		LPFeeAmount:  lpAmt,
		DaoFeeAmount: p.cfg.DaoFee.Mul(gross),
		PriceImpact:  impact,
		NewPool0Size: xNew.Add(lpAmt),
		NewPool1Size: yNew,
	}, nil
}

// SwapToken0ForToken1 simulates and then applies the trade, recomputing the
// invariant from the post-trade sizes.
func (p *StablePool) SwapToken0ForToken1(dx decimal.Decimal) (StableResult, error) {
	res, err := p.SimulateToken0ForToken1(dx)
	if err != nil {
		return StableResult{}, err
	}
	if err := p.apply(res); err != nil {
		return StableResult{}, err
	}
	return res, nil
}

// SwapToken1ForToken0 simulates and then applies the trade, recomputing the
// invariant from the post-trade sizes.
func (p *StablePool) SwapToken1ForToken0(dy decimal.Decimal) (StableResult, error) {
	res, err := p.SimulateToken1ForToken0(dy)
	if err != nil {
		return StableResult{}, err
	}
	if err := p.apply(res); err != nil {
		return StableResult{}, err
	}
	return res, nil
}

func (p *StablePool) apply(res StableResult) error {
	prev0, prev1 := p.cfg.Pool0Size, p.cfg.Pool1Size
	p.cfg.Pool0Size = res.NewPool0Size
	p.cfg.Pool1Size = res.NewPool1Size

	d, err := p.solveInvariant()
	if err != nil {
		p.cfg.Pool0Size, p.cfg.Pool1Size = prev0, prev1
		return err
	}
	p.invariant = d
	return nil
}
