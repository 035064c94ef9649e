package model

// Token identifies a snapshot token. The address is an opaque unique
// identifier; decimals converts between raw and human-readable amounts.
type Token struct {
	Address  string `json:"address"`
	Decimals uint8  `json:"decimals"`
}
