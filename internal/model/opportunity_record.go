package model

// OpportunityRecord is the flattened JSON representation of one retained
// arbitrage route, as written to the JSONL and Postgres sinks. Numeric fields
// are decimal strings so records survive any JSON number precision limits.
type OpportunityRecord struct {
	CycleTS           string   `json:"cycle_ts"`
	BlockHeight       uint64   `json:"block_height,omitempty"`
	BorrowToken       string   `json:"borrow_token"`
	Path              []string `json:"path"`
	InputAmount       string   `json:"input_amount"`
	QuoteOutputAmount string   `json:"quote_output_amount"`
	Profit            string   `json:"profit"`
	QuoteLPFee        string   `json:"quote_lp_fee"`
	QuoteShadeDaoFee  string   `json:"quote_shade_dao_fee"`
	PriceImpact       string   `json:"price_impact"`
	GasMultiplier     string   `json:"gas_multiplier"`
}
