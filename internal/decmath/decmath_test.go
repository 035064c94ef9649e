package decmath

import (
	"strings"
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDivCarriesFullPrecision(t *testing.T) {
	q, err := Div(decimal.NewFromInt(1), decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.Equal(t, "0."+strings.Repeat("3", FractionalDigits), q.String())
}

func TestDivByZero(t *testing.T) {
	_, err := Div(decimal.NewFromInt(1), decimal.Zero)
	assert.ErrorIs(t, err, ErrDivisionByZero)
}

func TestSqrt(t *testing.T) {
	root, err := Sqrt(decimal.NewFromInt(2))
	require.NoError(t, err)
	assert.Equal(t, "1.41421356237309504880168872420969", root.String())

	root, err = Sqrt(decimal.NewFromInt(4))
	require.NoError(t, err)
	assert.True(t, root.Equal(decimal.NewFromInt(2)), "got %s", root)

	root, err = Sqrt(decimal.Zero)
	require.NoError(t, err)
	assert.True(t, root.IsZero())
}

func TestSqrtNegative(t *testing.T) {
	_, err := Sqrt(decimal.NewFromInt(-1))
	assert.ErrorIs(t, err, ErrNegativeSqrt)
}

func TestSqrtRoundTripsLargeValues(t *testing.T) {
	v := decimal.RequireFromString("1000000000000")
	root, err := Sqrt(v)
	require.NoError(t, err)
	assert.True(t, root.Equal(decimal.NewFromInt(1000000)), "got %s", root)
}

func TestPowInt(t *testing.T) {
	cases := []struct {
		base string
		exp  int64
		want string
	}{
		{"2", 0, "1"},
		{"2", 1, "2"},
		{"2", 10, "1024"},
		{"1.5", 2, "2.25"},
		{"0.5", 3, "0.125"},
		{"2", -2, "0.25"},
	}
	for _, tc := range cases {
		got := PowInt(decimal.RequireFromString(tc.base), tc.exp)
		assert.True(t, got.Equal(decimal.RequireFromString(tc.want)),
			"%s^%d: want %s, got %s", tc.base, tc.exp, tc.want, got)
	}
}

func TestFromRaw(t *testing.T) {
	human := FromRaw(sdkmath.NewInt(123456789), 6)
	assert.True(t, human.Equal(decimal.RequireFromString("123.456789")), "got %s", human)

	human = FromRaw(sdkmath.NewInt(42), 0)
	assert.True(t, human.Equal(decimal.NewFromInt(42)), "got %s", human)
}

func TestToRawTruncates(t *testing.T) {
	raw := ToRaw(decimal.RequireFromString("123.4567899"), 6)
	assert.Equal(t, "123456789", raw.String())
}

func TestRawRoundTrip(t *testing.T) {
	amount := sdkmath.NewInt(987654321012345)
	assert.Equal(t, amount.String(), ToRaw(FromRaw(amount, 18), 18).String())
}
