package rootfind

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Func is a scalar function of one decimal variable.
type Func func(decimal.Decimal) decimal.Decimal

const (
	// DefaultNewtonIterations bounds the Newton stage of CalcZero.
	DefaultNewtonIterations = 80
	// DefaultBisectIterations bounds the bisection stage of CalcZero.
	DefaultBisectIterations = 150
)

// Epsilon is the convergence threshold used by CalcZero.
var Epsilon = decimal.New(1, -16)

var (
	ErrSlopeZero           = errors.New("newton: slope is zero")
	ErrNewtonMaxIterations = errors.New("newton: max iterations exceeded")
	ErrSameSignEndpoints   = errors.New("bisect: endpoints have the same sign")
	ErrBisectMaxIterations = errors.New("bisect: max iterations exceeded")
	ErrNoBisectBounds      = errors.New("calczero: no lower bound for bisection")
)

// Newton iterates x ← x − f(x)/df(x) from guess until two successive
// iterates are within eps of each other.
func Newton(f, df Func, guess, eps decimal.Decimal, maxIterations int) (decimal.Decimal, error) {
	x := guess
	for i := 0; i < maxIterations; i++ {
		slope := df(x)
		if slope.IsZero() {
			return decimal.Decimal{}, ErrSlopeZero
		}
		next := x.Sub(f(x).Div(slope))
		if next.Sub(x).Abs().LessThanOrEqual(eps) {
			return next, nil
		}
		x = next
	}
	return decimal.Decimal{}, ErrNewtonMaxIterations
}

// Bisect halves [a, b] toward a sign change of f. The endpoints must bracket
// a root; an endpoint that is already a root is returned as-is. The result
// is within eps of the root.
func Bisect(f Func, a, b, eps decimal.Decimal, maxIterations int) (decimal.Decimal, error) {
	fa := f(a)
	if fa.IsZero() {
		return a, nil
	}
	if fb := f(b); fb.IsZero() {
		return b, nil
	} else if fa.Mul(fb).IsPositive() {
		return decimal.Decimal{}, ErrSameSignEndpoints
	}

	two := decimal.NewFromInt(2)
	lower := a
	step := b.Sub(a)
	for i := 0; i < maxIterations; i++ {
		step = step.Div(two)
		mid := lower.Add(step)
		if fa.Mul(f(mid)).Sign() >= 0 {
			lower = mid
		}
		if step.Abs().LessThanOrEqual(eps) {
			return mid, nil
		}
	}
	return decimal.Decimal{}, ErrBisectMaxIterations
}

// LowerBound is the optional bisection floor for CalcZero, either eager or
// computed lazily when the fallback actually runs. The zero value means no
// bound.
type LowerBound struct {
	value decimal.Decimal
	thunk func() decimal.Decimal
	set   bool
}

// Lower wraps an eager lower bound.
func Lower(v decimal.Decimal) LowerBound {
	return LowerBound{value: v, set: true}
}

// LazyLower wraps a lower bound that is only evaluated if bisection runs.
func LazyLower(fn func() decimal.Decimal) LowerBound {
	return LowerBound{thunk: fn, set: true}
}

// CalcZero tries Newton from guess and falls back to bisection over
// [lower, upper] when Newton fails, or when it converges to a negative root
// and ignoreNegative is set.
func CalcZero(f, df Func, guess, upper decimal.Decimal, ignoreNegative bool, lower LowerBound) (decimal.Decimal, error) {
	root, err := Newton(f, df, guess, Epsilon, DefaultNewtonIterations)
	if err == nil && !(ignoreNegative && root.IsNegative()) {
		return root, nil
	}
	if !lower.set {
		return decimal.Decimal{}, ErrNoBisectBounds
	}
	a := lower.value
	if lower.thunk != nil {
		a = lower.thunk()
	}
	return Bisect(f, a, upper, Epsilon, DefaultBisectIterations)
}
