package router

import (
	"testing"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"routeScope/internal/model"
)

func testTokens() []model.Token {
	return []model.Token{
		{Address: "a", Decimals: 6},
		{Address: "b", Decimals: 6},
	}
}

func testGas() GasMultipliers {
	return GasMultipliers{
		Stable:          decimal.NewFromInt(3),
		ConstantProduct: decimal.NewFromInt(2),
	}
}

func TestCalculateRouteSingleConstProdHop(t *testing.T) {
	pools := []model.Pool{cpPool("pab", "a", "b", 1_000_000, 1_000_000)}

	route, err := CalculateRoute(sdkmath.NewInt(1000), "a", []string{"pab"}, pools, testTokens(), testGas())
	require.NoError(t, err)

	assert.Equal(t, "a", route.InputToken)
	assert.Equal(t, "b", route.OutputToken)
	assert.Equal(t, "996", route.QuoteOutputAmount.String())
	assert.True(t, route.GasMultiplier.Equal(decimal.NewFromInt(2)))
	assert.True(t, route.QuoteLPFee.IsPositive())
	assert.True(t, route.PriceImpact.IsPositive())
}

func TestCalculateRouteStableHop(t *testing.T) {
	ratio := decimal.NewFromInt(1)
	pool := model.Pool{
		Kind:    model.KindStable,
		Address: "sab",
		Token0:  model.Token{Address: "a", Decimals: 6},
		Token1:  model.Token{Address: "b", Decimals: 6},
		Amount0: sdkmath.NewInt(1_000_000_000_000),
		Amount1: sdkmath.NewInt(1_000_000_000_000),
		LPFee:   decimal.RequireFromString("0.0005"),
		DaoFee:  decimal.RequireFromString("0.0025"),
		StableParams: &model.StableParams{
			PriceRatio:        &ratio,
			Alpha:             decimal.NewFromInt(1),
			Gamma1:            decimal.NewFromInt(4),
			Gamma2:            decimal.NewFromInt(4),
			MinTradeSize0For1: decimal.RequireFromString("0.0001"),
			MinTradeSize1For0: decimal.RequireFromString("0.0001"),
			PriceImpactLimit:  decimal.NewFromInt(500),
		},
	}

	route, err := CalculateRoute(sdkmath.NewInt(1_000_000_000), "a", []string{"sab"}, []model.Pool{pool}, testTokens(), testGas())
	require.NoError(t, err)

	assert.Equal(t, "b", route.OutputToken)
	// 1000 human units in, roughly 1:1 out minus the 0.3% fee split.
	assert.True(t, route.QuoteOutputAmount.GT(sdkmath.NewInt(990_000_000)), "out %s", route.QuoteOutputAmount)
	assert.True(t, route.QuoteOutputAmount.LT(sdkmath.NewInt(1_000_000_000)))
	assert.True(t, route.GasMultiplier.Equal(decimal.NewFromInt(3)))
}

func TestCalculateRouteStableWithoutOracle(t *testing.T) {
	pool := model.Pool{
		Kind:    model.KindStable,
		Address: "sab",
		Token0:  model.Token{Address: "a", Decimals: 6},
		Token1:  model.Token{Address: "b", Decimals: 6},
		Amount0: sdkmath.NewInt(1_000_000),
		Amount1: sdkmath.NewInt(1_000_000),
		StableParams: &model.StableParams{
			Alpha:  decimal.NewFromInt(1),
			Gamma1: decimal.NewFromInt(4),
			Gamma2: decimal.NewFromInt(4),
		},
	}

	_, err := CalculateRoute(sdkmath.NewInt(1000), "a", []string{"sab"}, []model.Pool{pool}, testTokens(), testGas())
	assert.Error(t, err)
}

func TestCalculateRouteTokenMismatch(t *testing.T) {
	pools := []model.Pool{cpPool("pab", "a", "b", 1_000_000, 1_000_000)}
	tokens := append(testTokens(), model.Token{Address: "c", Decimals: 6})

	_, err := CalculateRoute(sdkmath.NewInt(1000), "c", []string{"pab"}, pools, tokens, testGas())
	assert.ErrorIs(t, err, ErrTokenMismatch)
}

func TestCalculateRouteUnknownPool(t *testing.T) {
	_, err := CalculateRoute(sdkmath.NewInt(1000), "a", []string{"missing"}, nil, testTokens(), testGas())
	assert.ErrorIs(t, err, ErrUnknownPool)
}

func TestGetRoutesSkipsUnknownTokenRoutes(t *testing.T) {
	// Token c is absent from the config, so the two-hop route through it
	// must be dropped while the direct route survives.
	pools := []model.Pool{
		cpPool("pab", "a", "b", 1_000_000, 1_000_000),
		cpPool("pac", "a", "c", 1_000_000, 1_000_000),
		cpPool("pcb", "c", "b", 1_000_000, 1_000_000),
	}

	routes, err := GetRoutes(sdkmath.NewInt(1000), "a", "b", 2, pools, testTokens(), testGas())
	require.NoError(t, err)
	require.Len(t, routes, 1)
	assert.Equal(t, []string{"pab"}, routes[0].Path)
}

func TestGetRoutesDuplicatePoolFatal(t *testing.T) {
	pools := []model.Pool{
		cpPool("pab", "a", "b", 1_000_000, 1_000_000),
		cpPool("pab", "a", "b", 2_000_000, 2_000_000),
	}

	_, err := GetRoutes(sdkmath.NewInt(1000), "a", "b", 1, pools, testTokens(), testGas())
	assert.ErrorIs(t, err, ErrDuplicatePool)
}

func TestGetRoutesDuplicateTokenFatal(t *testing.T) {
	pools := []model.Pool{cpPool("pab", "a", "b", 1_000_000, 1_000_000)}
	tokens := append(testTokens(), model.Token{Address: "a", Decimals: 8})

	_, err := GetRoutes(sdkmath.NewInt(1000), "a", "b", 1, pools, tokens, testGas())
	assert.ErrorIs(t, err, ErrDuplicateToken)
}

func TestGetRoutesSortedByOutput(t *testing.T) {
	// The deeper pool quotes a better output and must sort first even
	// though it is enumerated second.
	pools := []model.Pool{
		cpPool("shallow", "a", "b", 100_000, 100_000),
		cpPool("deep", "a", "b", 10_000_000, 10_000_000),
	}

	routes, err := GetRoutes(sdkmath.NewInt(1000), "a", "b", 1, pools, testTokens(), testGas())
	require.NoError(t, err)
	require.Len(t, routes, 2)

	assert.Equal(t, []string{"deep"}, routes[0].Path)
	assert.True(t, routes[0].QuoteOutputAmount.GTE(routes[1].QuoteOutputAmount))
}
