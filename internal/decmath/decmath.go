package decmath

import (
	"errors"
	"math/big"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
)

// FractionalDigits is the number of fractional digits divisions and square
// roots are carried to. Stable-curve math needs at least 30 to converge.
const FractionalDigits = 32

// sqrtPrec is the big.Float mantissa width backing Sqrt. 256 bits covers
// FractionalDigits plus the integer part of any pool-sized value.
const sqrtPrec = 256

var (
	ErrDivisionByZero = errors.New("decmath: division by zero")
	ErrNegativeSqrt   = errors.New("decmath: square root of negative value")
)

func init() {
	decimal.DivisionPrecision = FractionalDigits
}

// Div returns a/b carried to FractionalDigits fractional digits. Unlike the
// underlying Div it reports a zero divisor instead of panicking.
func Div(a, b decimal.Decimal) (decimal.Decimal, error) {
	if b.IsZero() {
		return decimal.Decimal{}, ErrDivisionByZero
	}
	return a.Div(b), nil
}

// Sqrt returns the square root of d truncated to FractionalDigits fractional
// digits. Negative inputs are rejected.
func Sqrt(d decimal.Decimal) (decimal.Decimal, error) {
	if d.IsNegative() {
		return decimal.Decimal{}, ErrNegativeSqrt
	}
	if d.IsZero() {
		return decimal.Decimal{}, nil
	}
	f, _, err := big.ParseFloat(d.String(), 10, sqrtPrec, big.ToNearestEven)
	if err != nil {
		return decimal.Decimal{}, err
	}
	f.Sqrt(f)
	root, err := decimal.NewFromString(f.Text('f', FractionalDigits+2))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return root.Truncate(FractionalDigits), nil
}

// PowInt raises d to an integer power by repeated squaring. Negative
// exponents invert the positive power.
func PowInt(d decimal.Decimal, n int64) decimal.Decimal {
	if n < 0 {
		return decimal.NewFromInt(1).Div(PowInt(d, -n))
	}
	result := decimal.NewFromInt(1)
	base := d
	for n > 0 {
		if n&1 == 1 {
			result = result.Mul(base)
		}
		base = base.Mul(base)
		n >>= 1
	}
	return result
}

// FromRaw converts a raw integer token amount to its human-readable form.
func FromRaw(amount sdkmath.Int, decimals uint8) decimal.Decimal {
	return decimal.NewFromBigInt(amount.BigInt(), -int32(decimals))
}

// ToRaw converts a human-readable amount to raw integer form, truncating
// anything below one raw unit.
func ToRaw(amount decimal.Decimal, decimals uint8) sdkmath.Int {
	return sdkmath.NewIntFromBigInt(amount.Shift(int32(decimals)).BigInt())
}
