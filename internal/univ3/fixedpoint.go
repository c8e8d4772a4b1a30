package univ3

import "math/big"

// Tick bounds of the V3 tick space.
const (
	MinTick int32 = -887272
	MaxTick int32 = 887272
)

var (
	q96  = new(big.Int).Lsh(big.NewInt(1), 96)
	q128 = new(big.Int).Lsh(big.NewInt(1), 128)
	q256 = new(big.Int).Lsh(big.NewInt(1), 256)

	// 1.0001 as an exact rational, the price ratio of one tick.
	tickBase = big.NewRat(10001, 10000)
)

// sqrtPrec is the big.Float working precision for tick square roots. The
// values fed into the amount formulas reach 2^160, so the mantissa has to be
// comfortably wider than that for products to keep their integer digits.
const sqrtPrec = 512

// SqrtPriceX96ToPrice converts a Q96 sqrt price into the exact pool price
// (token1 per token0, not decimal adjusted): (x / 2^96)^2.
func SqrtPriceX96ToPrice(sqrtPriceX96 *big.Int) *big.Rat {
	sq := new(big.Int).Mul(sqrtPriceX96, sqrtPriceX96)
	denom := new(big.Int).Mul(q96, q96)
	return new(big.Rat).SetFrac(sq, denom)
}

// TickToPrice returns 1.0001^tick. The exact rational power runs to millions
// of digits at the tick bounds, so the exponentiation is done on big.Float
// mantissas at sqrtPrec bits and rationalized once at the end; every caller
// sees the same deterministic value for a given tick.
func TickToPrice(tick int32) *big.Rat {
	out, _ := floatPow(tickBase, tick).Rat(nil)
	return out
}

// TickToSqrtPrice returns 1.0001^(tick/2), taken at sqrtPrec bits like
// TickToPrice.
func TickToSqrtPrice(tick int32) *big.Rat {
	f := floatPow(tickBase, tick)
	f.Sqrt(f)
	out, _ := f.Rat(nil)
	return out
}

// AdjustForDecimals rescales a raw pool price by the token decimal gap:
// price / 10^(decimals1 - decimals0).
func AdjustForDecimals(price *big.Rat, decimals0, decimals1 uint8) *big.Rat {
	diff := int(decimals1) - int(decimals0)
	if diff == 0 {
		return new(big.Rat).Set(price)
	}
	scale := pow10(diff)
	return new(big.Rat).Quo(price, scale)
}

// SubIn256 subtracts y from x modulo 2^256, matching the unchecked unsigned
// arithmetic the pool contract relies on when accumulators wrap.
func SubIn256(x, y *big.Int) *big.Int {
	diff := new(big.Int).Sub(x, y)
	if diff.Sign() < 0 {
		diff.Add(diff, q256)
	}
	return diff
}

// floatPow raises base to exp by square-and-multiply at sqrtPrec bits.
func floatPow(base *big.Rat, exp int32) *big.Float {
	n := uint64(exp)
	if exp < 0 {
		n = uint64(-int64(exp))
	}
	acc := new(big.Float).SetPrec(sqrtPrec).SetInt64(1)
	sq := new(big.Float).SetPrec(sqrtPrec).SetRat(base)
	for ; n > 0; n >>= 1 {
		if n&1 == 1 {
			acc.Mul(acc, sq)
		}
		sq.Mul(sq, sq)
	}
	if exp < 0 {
		acc.Quo(new(big.Float).SetPrec(sqrtPrec).SetInt64(1), acc)
	}
	return acc
}

func pow10(exp int) *big.Rat {
	neg := exp < 0
	if neg {
		exp = -exp
	}
	p := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(exp)), nil)
	if neg {
		return new(big.Rat).SetFrac(big.NewInt(1), p)
	}
	return new(big.Rat).SetInt(p)
}
