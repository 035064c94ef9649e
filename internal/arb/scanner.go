package arb

import (
	"fmt"
	"sort"
	"strings"

	sdkmath "cosmossdk.io/math"
	"go.uber.org/zap"

	"routeScope/internal/decmath"
	"routeScope/internal/model"
	"routeScope/internal/router"
)

// ScanConfig holds the knobs of one arbitrage scan.
type ScanConfig struct {
	MaxHops       int
	MinimumProfit sdkmath.Int
	Gas           router.GasMultipliers
}

// Opportunity is one retained profitable route.
type Opportunity struct {
	Borrowable model.Borrowable
	Route      router.Route
	Profit     sdkmath.Int
}

// ScanResult is the outcome of one scan cycle: every profitable route sorted
// by gross output, plus the trade plan for the best one.
type ScanResult struct {
	Opportunities []Opportunity
	Plan          *model.TradePlan
}

// Scanner iterates the borrowables, evaluates cyclic routes at two trade
// magnitudes per candidate, refines profitable constant-product triangles
// with the closed-form optimal borrow, and ranks what survives.
type Scanner struct {
	cfg    ScanConfig
	logger *zap.Logger
}

// NewScanner builds a Scanner. A nil logger disables logging.
func NewScanner(cfg ScanConfig, logger *zap.Logger) *Scanner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.MaxHops <= 0 {
		cfg.MaxHops = 5
	}
	if cfg.MinimumProfit.IsNil() {
		cfg.MinimumProfit = sdkmath.ZeroInt()
	}
	return &Scanner{cfg: cfg, logger: logger}
}

// Scan evaluates every borrowable against the snapshot and returns the
// profitable routes, best first.
func (s *Scanner) Scan(snapshot model.Snapshot, borrowables []model.Borrowable, sizes map[string]TradeSize) (ScanResult, error) {
	poolsByAddress := make(map[string]model.Pool, len(snapshot.Pools))
	for _, pool := range snapshot.Pools {
		poolsByAddress[pool.Address] = pool
	}

	var opportunities []Opportunity
	for _, borrowable := range borrowables {
		size, ok := sizes[borrowable.Address]
		if !ok {
			s.logger.Debug("no trade size for borrowable", zap.String("token", borrowable.Address))
			continue
		}

		retained, err := s.scanBorrowable(snapshot, borrowable, size.Size, poolsByAddress)
		if err != nil {
			return ScanResult{}, err
		}
		opportunities = append(opportunities, retained...)
	}

	sort.SliceStable(opportunities, func(i, j int) bool {
		return opportunities[i].Route.QuoteOutputAmount.GT(opportunities[j].Route.QuoteOutputAmount)
	})

	result := ScanResult{Opportunities: opportunities}
	if len(opportunities) > 0 {
		plan, err := s.planFromRoute(opportunities[0].Route, poolsByAddress)
		if err != nil {
			return ScanResult{}, err
		}
		result.Plan = &plan
	}
	return result, nil
}

func (s *Scanner) scanBorrowable(snapshot model.Snapshot, borrowable model.Borrowable, tradeSize sdkmath.Int, poolsByAddress map[string]model.Pool) ([]Opportunity, error) {
	magnitudes := []sdkmath.Int{tradeSize, tradeSize.QuoRaw(2)}

	var retained []Opportunity
	seen := make(map[string]struct{})
	var refine [][]string
	for _, magnitude := range magnitudes {
		if !magnitude.IsPositive() {
			continue
		}

		routes, err := router.GetRoutes(magnitude, borrowable.Address, borrowable.Address, s.cfg.MaxHops, snapshot.Pools, snapshot.Tokens, s.cfg.Gas)
		if err != nil {
			return nil, fmt.Errorf("routes for %s: %w", borrowable.Address, err)
		}

		for _, route := range routes {
			if !route.QuoteOutputAmount.GT(magnitude) {
				continue
			}
			retained = append(retained, Opportunity{
				Borrowable: borrowable,
				Route:      route,
				Profit:     route.QuoteOutputAmount.Sub(magnitude),
			})
			key := strings.Join(route.Path, "|")
			if _, dup := seen[key]; !dup {
				seen[key] = struct{}{}
				refine = append(refine, route.Path)
			}
		}
	}

	// The closed form only covers three-hop constant-product cycles; refine
	// each profitable one once, capped by the trade size.
	for _, path := range refine {
		reserves, ok := cycleReservesFromPath(path, borrowable.Address, poolsByAddress)
		if !ok {
			continue
		}

		_, positiveRoot, err := OptimalBorrowSizes(reserves)
		if err != nil {
			s.logger.Debug("optimal borrow solve failed", zap.Strings("path", path), zap.Error(err))
			continue
		}
		optimal := decmath.ToRaw(positiveRoot, 0)
		if !optimal.IsPositive() {
			continue
		}
		if optimal.GT(tradeSize) {
			optimal = tradeSize
		}

		route, err := router.CalculateRoute(optimal, borrowable.Address, path, snapshot.Pools, snapshot.Tokens, s.cfg.Gas)
		if err != nil {
			continue
		}
		if !route.QuoteOutputAmount.GT(optimal) {
			continue
		}
		retained = append(retained, Opportunity{
			Borrowable: borrowable,
			Route:      route,
			Profit:     route.QuoteOutputAmount.Sub(optimal),
		})
	}

	return retained, nil
}

// planFromRoute expands a route into the borrow / swap / repay plan handed
// to the transaction builder.
func (s *Scanner) planFromRoute(route router.Route, poolsByAddress map[string]model.Pool) (model.TradePlan, error) {
	hops := make([]model.TradeHop, 0, len(route.Path))
	current := route.InputToken
	for _, address := range route.Path {
		pool, ok := poolsByAddress[address]
		if !ok {
			return model.TradePlan{}, fmt.Errorf("plan references unknown pool %s", address)
		}
		other, ok := pool.OtherToken(current)
		if !ok {
			return model.TradePlan{}, fmt.Errorf("plan token %s not in pool %s", current, address)
		}
		hops = append(hops, model.TradeHop{
			PoolAddress: address,
			InputToken:  current,
			OutputToken: other.Address,
		})
		current = other.Address
	}

	return model.TradePlan{
		BorrowToken:    route.InputToken,
		BorrowAmount:   route.InputAmount,
		RouterPath:     hops,
		ExpectedReturn: route.InputAmount.Add(s.cfg.MinimumProfit),
	}, nil
}
