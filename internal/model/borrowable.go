package model

// Borrowable is a token the arbitrage driver may borrow and repay within one
// transaction. OracleKey is the identifier the price oracle knows it by.
type Borrowable struct {
	Address   string `json:"address"`
	OracleKey string `json:"oracle_key"`
	Decimals  uint8  `json:"decimals"`
}
