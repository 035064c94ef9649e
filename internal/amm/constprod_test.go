package amm

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCPPool() ConstProdPool {
	return ConstProdPool{
		Reserve0: sdkmath.NewInt(1_000_000),
		Reserve1: sdkmath.NewInt(1_000_000),
		LPFee:    decimal.RequireFromString("0.003"),
	}
}

func TestConstProdForwardSwap(t *testing.T) {
	pool := newTestCPPool()

	res, err := pool.SimulateToken0ForToken1(sdkmath.NewInt(1000))
	require.NoError(t, err)

	// gross = 999.000999..., net = floor(gross * 0.997) = 996
	assert.Equal(t, "996", res.Amount.String())
	assert.Equal(t, "1001000", res.NewReserve0.String())
	assert.Equal(t, "999004", res.NewReserve1.String())
	assert.True(t, res.PriceImpact.IsPositive(), "impact %s", res.PriceImpact)
}

func TestConstProdFeesStayInPool(t *testing.T) {
	pool := newTestCPPool()
	k := pool.Reserve0.Mul(pool.Reserve1)

	for _, dx := range []int64{1, 500, 1000, 250_000} {
		res, err := pool.SimulateToken0ForToken1(sdkmath.NewInt(dx))
		require.NoError(t, err)

		kAfter := res.NewReserve0.Mul(res.NewReserve1)
		assert.True(t, kAfter.GTE(k), "dx=%d: k %s -> %s", dx, k, kAfter)
	}
}

func TestConstProdReverseRoundTrip(t *testing.T) {
	pool := newTestCPPool()

	fwd, err := pool.SimulateToken0ForToken1(sdkmath.NewInt(1000))
	require.NoError(t, err)

	rev, err := pool.ReverseToken0ForToken1(fwd.Amount)
	require.NoError(t, err)

	diff := rev.Amount.Sub(sdkmath.NewInt(1000)).Abs()
	assert.True(t, diff.LTE(sdkmath.NewInt(1)), "round trip input %s", rev.Amount)
}

func TestConstProdReverseInsufficientLiquidity(t *testing.T) {
	pool := newTestCPPool()

	_, err := pool.ReverseToken0ForToken1(sdkmath.NewInt(1_000_000))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)

	// 997000 / (1 - 0.003) grosses up to exactly the full reserve.
	_, err = pool.ReverseToken0ForToken1(sdkmath.NewInt(997_000))
	assert.ErrorIs(t, err, ErrInsufficientLiquidity)
}

func TestConstProdNonPositiveInput(t *testing.T) {
	pool := newTestCPPool()

	_, err := pool.SimulateToken0ForToken1(sdkmath.ZeroInt())
	assert.ErrorIs(t, err, ErrTradeTooSmall)

	_, err = pool.SimulateToken1ForToken0(sdkmath.NewInt(-5))
	assert.ErrorIs(t, err, ErrTradeTooSmall)
}

func TestConstProdBothDirections(t *testing.T) {
	pool := ConstProdPool{
		Reserve0: sdkmath.NewInt(2_000_000),
		Reserve1: sdkmath.NewInt(500_000),
		LPFee:    decimal.RequireFromString("0.002"),
		DaoFee:   decimal.RequireFromString("0.001"),
	}

	res01, err := pool.SimulateToken0ForToken1(sdkmath.NewInt(4000))
	require.NoError(t, err)
	res10, err := pool.SimulateToken1ForToken0(sdkmath.NewInt(1000))
	require.NoError(t, err)

	// Four token0 buy roughly one token1 at this ratio.
	assert.True(t, res01.Amount.LT(sdkmath.NewInt(1000)))
	assert.True(t, res10.Amount.LT(sdkmath.NewInt(4000)))
	assert.True(t, res10.Amount.GT(sdkmath.NewInt(3900)))

	assert.True(t, res01.LPFeeAmount.IsPositive())
	assert.True(t, res01.DaoFeeAmount.IsPositive())
}
