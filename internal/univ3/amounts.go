package univ3

import "math/big"

// AmountsForLiquidity converts liquidity and three sqrt prices (plain
// values, already divided out of Q96) into raw token amounts locked by the
// range. The three-region piecewise formula matches the pool contract: all
// token0 below the range, all token1 above it, a mix inside.
func AmountsForLiquidity(liquidity *big.Int, sqrtCurrent, sqrtLower, sqrtUpper *big.Rat) (*big.Rat, *big.Rat, error) {
	if liquidity == nil || liquidity.Sign() < 0 {
		return nil, nil, rangeErrorf("liquidity must be non-negative")
	}
	if sqrtLower.Cmp(sqrtUpper) > 0 {
		return nil, nil, rangeErrorf("sqrt price lower %s above upper %s", sqrtLower.FloatString(6), sqrtUpper.FloatString(6))
	}

	liq := new(big.Rat).SetInt(liquidity)
	width := new(big.Rat).Sub(sqrtUpper, sqrtLower)

	amount0 := new(big.Rat)
	amount1 := new(big.Rat)

	switch {
	case sqrtCurrent.Cmp(sqrtLower) <= 0:
		// Below the range, all token0.
		denom := new(big.Rat).Mul(sqrtUpper, sqrtLower)
		amount0.Mul(liq, width)
		amount0.Quo(amount0, denom)
	case sqrtCurrent.Cmp(sqrtUpper) >= 0:
		// Above the range, all token1.
		amount1.Mul(liq, width)
	default:
		upperGap := new(big.Rat).Sub(sqrtUpper, sqrtCurrent)
		denom := new(big.Rat).Mul(sqrtUpper, sqrtCurrent)
		amount0.Mul(liq, upperGap)
		amount0.Quo(amount0, denom)

		lowerGap := new(big.Rat).Sub(sqrtCurrent, sqrtLower)
		amount1.Mul(liq, lowerGap)
	}

	return amount0, amount1, nil
}
