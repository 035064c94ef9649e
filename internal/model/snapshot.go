package model

// Snapshot is one cycle's view of the DEX: the token config and every pool.
// It is immutable for the duration of a scan cycle.
type Snapshot struct {
	Tokens []Token `json:"tokens"`
	Pools  []Pool  `json:"pools"`
}
