package arb

import (
	sdkmath "cosmossdk.io/math"
	"github.com/shopspring/decimal"

	"routeScope/internal/decmath"
	"routeScope/internal/model"
)

// TradeSize is the capped borrow size for one borrowable, together with the
// oracle price it was derived from.
type TradeSize struct {
	Size  sdkmath.Int
	Price decimal.Decimal
}

// BuildTradeSizes converts a target notional into per-borrowable raw trade
// sizes using the oracle prices. Borrowables without a positive price are
// omitted; the scanner skips them.
func BuildTradeSizes(borrowables []model.Borrowable, prices map[string]decimal.Decimal, notional decimal.Decimal) map[string]TradeSize {
	sizes := make(map[string]TradeSize, len(borrowables))
	for _, borrowable := range borrowables {
		price, ok := prices[borrowable.OracleKey]
		if !ok || price.Sign() <= 0 {
			continue
		}

		human, err := decmath.Div(notional, price)
		if err != nil {
			continue
		}
		size := decmath.ToRaw(human, borrowable.Decimals)
		if !size.IsPositive() {
			continue
		}

		sizes[borrowable.Address] = TradeSize{Size: size, Price: price}
	}
	return sizes
}
