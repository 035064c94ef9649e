package model

import sdkmath "cosmossdk.io/math"

// TradeHop is one router step of a trade plan.
type TradeHop struct {
	PoolAddress string `json:"pool_address"`
	InputToken  string `json:"input_token"`
	OutputToken string `json:"output_token"`
}

// TradePlan is the borrow / route-swap / repay plan handed to the
// transaction-building collaborator. ExpectedReturn is the borrow amount plus
// the configured minimum profit.
type TradePlan struct {
	BorrowToken    string      `json:"borrow_token"`
	BorrowAmount   sdkmath.Int `json:"borrow_amount"`
	RouterPath     []TradeHop  `json:"router_path"`
	ExpectedReturn sdkmath.Int `json:"expected_return"`
}
