package univ3

import "math/big"

// UncollectedFees converts the fee-growth-inside delta against the
// position's last recorded snapshot into an owed token amount, decimal
// adjusted. The delta wraps modulo 2^256 and the Q128 division keeps its
// fractional part, so sub-unit fee amounts survive.
func UncollectedFees(liquidity, feeGrowthInside, feeGrowthInsideLast *big.Int, decimals uint8) (*big.Rat, error) {
	if liquidity == nil || liquidity.Sign() < 0 {
		return nil, rangeErrorf("liquidity must be non-negative")
	}

	delta := SubIn256(feeGrowthInside, feeGrowthInsideLast)
	owed := new(big.Rat).SetFrac(new(big.Int).Mul(liquidity, delta), q128)
	return new(big.Rat).Quo(owed, pow10(int(decimals))), nil
}
