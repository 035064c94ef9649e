package router

import (
	"errors"
	"fmt"
	"sort"

	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"routeScope/internal/amm"
	"routeScope/internal/decmath"
	"routeScope/internal/model"
)

var (
	// ErrUnknownToken is returned when a pool references a token absent
	// from the token config.
	ErrUnknownToken = errors.New("router: token not in config")
	// ErrDuplicateToken is returned when the token config lists an address
	// twice. Duplicates are fatal for the whole call.
	ErrDuplicateToken = errors.New("router: duplicate token in config")
	// ErrUnknownPool is returned when a path references a pool absent from
	// the snapshot.
	ErrUnknownPool = errors.New("router: pool not in snapshot")
	// ErrDuplicatePool is returned when the snapshot lists a pool address
	// twice. Duplicates are fatal for the whole call.
	ErrDuplicatePool = errors.New("router: duplicate pool in snapshot")
	// ErrTokenMismatch is returned when a hop's input token is not traded
	// by the hop's pool.
	ErrTokenMismatch = errors.New("router: token not in pool")
)

// GasMultipliers are the opaque per-hop gas tags summed into a route. The
// evaluator only adds them; their meaning belongs to the caller.
type GasMultipliers struct {
	Stable          decimal.Decimal
	ConstantProduct decimal.Decimal
}

// Route is one evaluated trading path. Fee and impact fields are raw sums
// over the hops; amounts are raw integers of the respective tokens.
type Route struct {
	InputToken        string
	OutputToken       string
	Path              []string
	InputAmount       sdkmath.Int
	QuoteOutputAmount sdkmath.Int
	QuoteLPFee        decimal.Decimal
	QuoteShadeDaoFee  decimal.Decimal
	PriceImpact       decimal.Decimal
	GasMultiplier     decimal.Decimal
}

// CalculateRoute folds the input amount through every pool on the path,
// accumulating fees, price impact, and gas multipliers. Any hop failure
// aborts the route with that hop's error.
func CalculateRoute(amountIn sdkmath.Int, inputToken string, path []string, pools []model.Pool, tokens []model.Token, gas GasMultipliers) (Route, error) {
	route := Route{
		InputToken:  inputToken,
		Path:        path,
		InputAmount: amountIn,
	}

	currentToken := inputToken
	currentAmount := amountIn

	for _, poolAddress := range path {
		pool, err := findPool(poolAddress, pools)
		if err != nil {
			return Route{}, err
		}

		token0, err := findToken(pool.Token0.Address, tokens)
		if err != nil {
			return Route{}, err
		}
		token1, err := findToken(pool.Token1.Address, tokens)
		if err != nil {
			return Route{}, err
		}

		if !pool.Contains(currentToken) {
			return Route{}, fmt.Errorf("%w: %s not traded by %s", ErrTokenMismatch, currentToken, pool.Address)
		}
		zeroForOne := currentToken == token0.Address

		var (
			out    sdkmath.Int
			lpFee  decimal.Decimal
			daoFee decimal.Decimal
			impact decimal.Decimal
		)
		switch pool.Kind {
		case model.KindStable:
			out, lpFee, daoFee, impact, err = stableHop(pool, token0, token1, currentAmount, zeroForOne)
			if err != nil {
				return Route{}, err
			}
			route.GasMultiplier = route.GasMultiplier.Add(gas.Stable)
		default:
			out, lpFee, daoFee, impact, err = constProdHop(pool, currentAmount, zeroForOne)
			if err != nil {
				return Route{}, err
			}
			route.GasMultiplier = route.GasMultiplier.Add(gas.ConstantProduct)
		}

		route.QuoteLPFee = route.QuoteLPFee.Add(lpFee)
		route.QuoteShadeDaoFee = route.QuoteShadeDaoFee.Add(daoFee)
		route.PriceImpact = route.PriceImpact.Add(impact)

		if zeroForOne {
			currentToken = token1.Address
		} else {
			currentToken = token0.Address
		}
		currentAmount = out
	}

	route.OutputToken = currentToken
	route.QuoteOutputAmount = currentAmount
	return route, nil
}

// GetRoutes enumerates every path from inputToken to outputToken, evaluates
// each, and returns the survivors sorted by quote output descending. Per-route
// failures skip that route; duplicate config entries abort the whole call.
func GetRoutes(amountIn sdkmath.Int, inputToken, outputToken string, maxHops int, pools []model.Pool, tokens []model.Token, gas GasMultipliers) ([]Route, error) {
	paths := GetPossiblePaths(inputToken, outputToken, maxHops, pools)

	routes := make([]Route, 0, len(paths))
	for _, path := range paths {
		route, err := CalculateRoute(amountIn, inputToken, path, pools, tokens, gas)
		if err != nil {
			if errors.Is(err, ErrDuplicateToken) || errors.Is(err, ErrDuplicatePool) {
				return nil, err
			}
			continue
		}
		routes = append(routes, route)
	}

	sort.SliceStable(routes, func(i, j int) bool {
		return routes[i].QuoteOutputAmount.GT(routes[j].QuoteOutputAmount)
	})
	return routes, nil
}

func stableHop(pool model.Pool, token0, token1 model.Token, amountIn sdkmath.Int, zeroForOne bool) (sdkmath.Int, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	stable, err := stablePoolFromSnapshot(pool, token0.Decimals, token1.Decimals)
	if err != nil {
		return sdkmath.Int{}, decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, err
	}

	var (
		res         amm.StableResult
		inDecimals  uint8
		outDecimals uint8
	)
	if zeroForOne {
		inDecimals, outDecimals = token0.Decimals, token1.Decimals
		res, err = stable.SimulateToken0ForToken1(decmath.FromRaw(amountIn, inDecimals))
	} else {
		inDecimals, outDecimals = token1.Decimals, token0.Decimals
		res, err = stable.SimulateToken1ForToken0(decmath.FromRaw(amountIn, inDecimals))
	}
	if err != nil {
		return sdkmath.Int{}, decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, err
	}

	return decmath.ToRaw(res.Amount, outDecimals), res.LPFeeAmount, res.DaoFeeAmount, res.PriceImpact, nil
}

func constProdHop(pool model.Pool, amountIn sdkmath.Int, zeroForOne bool) (sdkmath.Int, decimal.Decimal, decimal.Decimal, decimal.Decimal, error) {
	cp := amm.ConstProdPool{
		Reserve0: pool.Amount0,
		Reserve1: pool.Amount1,
		LPFee:    pool.LPFee,
		DaoFee:   pool.DaoFee,
	}

	var (
		res amm.ConstProdResult
		err error
	)
	if zeroForOne {
		res, err = cp.SimulateToken0ForToken1(amountIn)
	} else {
		res, err = cp.SimulateToken1ForToken0(amountIn)
	}
	if err != nil {
		return sdkmath.Int{}, decimal.Decimal{}, decimal.Decimal{}, decimal.Decimal{}, err
	}

	return res.Amount, res.LPFeeAmount, res.DaoFeeAmount, res.PriceImpact, nil
}

// stablePoolFromSnapshot builds a fresh ephemeral stable pool for one hop.
// Route evaluation never mutates the snapshot, so every hop starts from the
// recorded reserves.
func stablePoolFromSnapshot(pool model.Pool, decimals0, decimals1 uint8) (*amm.StablePool, error) {
	params := pool.StableParams
	if params == nil || params.PriceRatio == nil {
		return nil, amm.ErrOracleUnavailable
	}

	return amm.NewStablePool(amm.StableConfig{
		Pool0Size:         decmath.FromRaw(pool.Amount0, decimals0),
		Pool1Size:         decmath.FromRaw(pool.Amount1, decimals1),
		PriceRatio:        *params.PriceRatio,
		Alpha:             params.Alpha,
		Gamma1:            params.Gamma1,
		Gamma2:            params.Gamma2,
		LPFee:             pool.LPFee,
		DaoFee:            pool.DaoFee,
		MinTradeSize0For1: params.MinTradeSize0For1,
		MinTradeSize1For0: params.MinTradeSize1For0,
		PriceImpactLimit:  params.PriceImpactLimit,
	})
}

func findPool(address string, pools []model.Pool) (model.Pool, error) {
	var (
		found model.Pool
		count int
	)
	for _, pool := range pools {
		if pool.Address == address {
			found = pool
			count++
		}
	}
	switch count {
	case 0:
		return model.Pool{}, fmt.Errorf("%w: %s", ErrUnknownPool, address)
	case 1:
		return found, nil
	default:
		return model.Pool{}, fmt.Errorf("%w: %s", ErrDuplicatePool, address)
	}
}

func findToken(address string, tokens []model.Token) (model.Token, error) {
	var (
		found model.Token
		count int
	)
	for _, token := range tokens {
		if token.Address == address {
			found = token
			count++
		}
	}
	switch count {
	case 0:
		return model.Token{}, fmt.Errorf("%w: %s", ErrUnknownToken, address)
	case 1:
		return found, nil
	default:
		return model.Token{}, fmt.Errorf("%w: %s", ErrDuplicateToken, address)
	}
}
