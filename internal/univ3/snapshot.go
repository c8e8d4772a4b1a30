package univ3

import (
	"math/big"
	"time"
)

// PoolSnapshot is a point-in-time read of a V3 pool. All integer fields use
// the on-chain encodings: sqrtPriceX96 is Q96, fee growth accumulators are
// Q128 and may wrap modulo 2^256 over the pool's lifetime.
type PoolSnapshot struct {
	SqrtPriceX96     *big.Int
	Tick             int32
	FeeGrowthGlobal0 *big.Int
	FeeGrowthGlobal1 *big.Int
	Token0Decimals   uint8
	Token1Decimals   uint8
}

// TickInfo holds the fee growth recorded outside a boundary tick at its last
// crossing.
type TickInfo struct {
	FeeGrowthOutside0 *big.Int
	FeeGrowthOutside1 *big.Int
}

// PositionSnapshot is an on-chain position record. CreatedAt is the zero
// time until the deposit transfer has been found in the logs.
type PositionSnapshot struct {
	Liquidity            *big.Int
	TickLower            int32
	TickUpper            int32
	FeeGrowthInside0Last *big.Int
	FeeGrowthInside1Last *big.Int
	CreatedAt            time.Time
}

// ValuationReport is the derived view of a position, recomputed per request.
type ValuationReport struct {
	Locked0 *big.Rat
	Locked1 *big.Rat

	UncollectedFee0 *big.Rat
	UncollectedFee1 *big.Rat

	// Price bounds in token1 per token0, decimal adjusted.
	PriceLower *big.Rat
	PriceUpper *big.Rat

	Active bool
	Closed bool

	// Totals are denominated in token1 (the quote token); the USD pair is
	// nil when no USD price was supplied.
	TotalValueQuote *big.Rat
	TotalFeesQuote  *big.Rat
	TotalValueUSD   *big.Rat
	TotalFeesUSD    *big.Rat

	// APYPercent stays zero both when the locked value is zero and when the
	// creation date is unknown; AgeKnown tells the two cases apart.
	APYPercent *big.Rat
	AgeDays    int
	AgeKnown   bool
}
