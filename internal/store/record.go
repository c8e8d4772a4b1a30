package store

import "time"

// ValuationRecord is a point-in-time snapshot of one position's valuation,
// flattened to decimal strings for export and persistence.
type ValuationRecord struct {
	Wallet       string    `json:"wallet"`
	TokenID      string    `json:"token_id"`
	Pool         string    `json:"pool"`
	Token0Symbol string    `json:"token0_symbol"`
	Token1Symbol string    `json:"token1_symbol"`
	FeeTier      uint32    `json:"fee_tier"`
	TickLower    int32     `json:"tick_lower"`
	TickUpper    int32     `json:"tick_upper"`
	Liquidity    string    `json:"liquidity"`
	Amount0      string    `json:"amount0"`
	Amount1      string    `json:"amount1"`
	Fee0         string    `json:"fee0"`
	Fee1         string    `json:"fee1"`
	PriceLower   string    `json:"price_lower"`
	PriceUpper   string    `json:"price_upper"`
	Active       bool      `json:"active"`
	Closed       bool      `json:"closed"`
	ValueUSD     string    `json:"value_usd,omitempty"`
	FeesUSD      string    `json:"fees_usd,omitempty"`
	APYPercent   string    `json:"apy_percent,omitempty"`
	AgeDays      int       `json:"age_days"`
	CapturedAt   time.Time `json:"captured_at"`
}
