package arb

import (
	"fmt"

	"github.com/shopspring/decimal"

	"routeScope/internal/decmath"
	"routeScope/internal/model"
)

// CycleReserves are the oriented reserves of a three-pool constant-product
// cycle: the first pool trades base in for x, the second x for y, the third
// y back to base. Fees are the combined lp+dao fee of each pool.
type CycleReserves struct {
	Base0, X0 decimal.Decimal
	X1, Y1    decimal.Decimal
	Y2, Base2 decimal.Decimal
	Fee0      decimal.Decimal
	Fee1      decimal.Decimal
	Fee2      decimal.Decimal
}

// OptimalBorrowSizes solves the closed form for the borrow size maximising
// profit over the cycle. Both quadratic roots are returned; the two roots
// correspond to the two arbitrage directions and the caller selects the
// positive one.
func OptimalBorrowSizes(c CycleReserves) (decimal.Decimal, decimal.Decimal, error) {
	one := decimal.NewFromInt(1)

	t1 := c.Base0.Mul(c.X1).Mul(c.Y2)
	f := c.Base0.Mul(c.Base2).Mul(c.Fee0.Sub(one)).Neg()
	f1 := f.Mul(c.Fee1)
	f2 := f.Sub(f1).Mul(c.Fee2)
	s := f.Sub(f1).Sub(f2).Mul(c.X0).Mul(c.X1).Mul(c.Y1).Mul(c.Y2)

	root, err := decmath.Sqrt(s)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("optimal borrow: %w", err)
	}

	d := c.Fee0.Sub(one).Mul(c.Fee1).Sub(c.Fee0).Add(one).Mul(c.X0).Mul(c.Y1).
		Sub(c.Fee0.Sub(one).Mul(c.X0).Sub(c.X1).Mul(c.Y2))

	baseIn1, err := decmath.Div(t1.Add(root).Neg(), d)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("optimal borrow: %w", err)
	}
	baseIn2, err := decmath.Div(t1.Sub(root).Neg(), d)
	if err != nil {
		return decimal.Decimal{}, decimal.Decimal{}, fmt.Errorf("optimal borrow: %w", err)
	}
	return baseIn1, baseIn2, nil
}

// cycleReservesFromPath orients the reserves of a three-pool path around the
// base token. All pools must be constant product; ok is false otherwise.
func cycleReservesFromPath(path []string, base string, poolsByAddress map[string]model.Pool) (CycleReserves, bool) {
	if len(path) != 3 {
		return CycleReserves{}, false
	}

	current := base
	sides := make([][2]decimal.Decimal, 0, 3)
	fees := make([]decimal.Decimal, 0, 3)
	for _, address := range path {
		pool, ok := poolsByAddress[address]
		if !ok || pool.Kind == model.KindStable {
			return CycleReserves{}, false
		}

		var inSide, outSide decimal.Decimal
		switch current {
		case pool.Token0.Address:
			inSide = decimal.NewFromBigInt(pool.Amount0.BigInt(), 0)
			outSide = decimal.NewFromBigInt(pool.Amount1.BigInt(), 0)
			current = pool.Token1.Address
		case pool.Token1.Address:
			inSide = decimal.NewFromBigInt(pool.Amount1.BigInt(), 0)
			outSide = decimal.NewFromBigInt(pool.Amount0.BigInt(), 0)
			current = pool.Token0.Address
		default:
			return CycleReserves{}, false
		}

		sides = append(sides, [2]decimal.Decimal{inSide, outSide})
		fees = append(fees, pool.LPFee.Add(pool.DaoFee))
	}
	if current != base {
		return CycleReserves{}, false
	}

	return CycleReserves{
		Base0: sides[0][0], X0: sides[0][1],
		X1: sides[1][0], Y1: sides[1][1],
		Y2: sides[2][0], Base2: sides[2][1],
		Fee0: fees[0], Fee1: fees[1], Fee2: fees[2],
	}, true
}
