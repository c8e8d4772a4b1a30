package univ3

import "math/big"

// FeeGrowthInside computes the fee growth accrued inside [tickLower,
// tickUpper] for a single token accumulator, reproducing the pool's
// crossing-based bookkeeping. All subtractions wrap modulo 2^256; the result
// is therefore never negative even after the global accumulator has wrapped.
func FeeGrowthInside(
	feeGrowthGlobal *big.Int,
	lowerOutside *big.Int,
	upperOutside *big.Int,
	tickLower int32,
	tickUpper int32,
	tickCurrent int32,
) *big.Int {
	var below *big.Int
	if tickCurrent >= tickLower {
		below = new(big.Int).Set(lowerOutside)
	} else {
		below = SubIn256(feeGrowthGlobal, lowerOutside)
	}

	var above *big.Int
	if tickCurrent >= tickUpper {
		above = SubIn256(feeGrowthGlobal, upperOutside)
	} else {
		above = new(big.Int).Set(upperOutside)
	}

	inside := SubIn256(feeGrowthGlobal, below)
	return SubIn256(inside, above)
}
