package univ3

import (
	"math/big"
	"testing"
)

func TestAmountsForLiquidityFullRangeSymmetric(t *testing.T) {
	liquidity := big.NewInt(1_000_000)
	sqrtCurrent := TickToSqrtPrice(0)
	sqrtLower := TickToSqrtPrice(-887220)
	sqrtUpper := TickToSqrtPrice(887220)

	amount0, amount1, err := AmountsForLiquidity(liquidity, sqrtCurrent, sqrtLower, sqrtUpper)
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		t.Fatalf("both amounts should be positive at price 1: %s / %s", amount0.FloatString(6), amount1.FloatString(6))
	}
	// Symmetric bounds around tick 0 give equal halves.
	if !ratClose(amount0, amount1, big.NewRat(1, 1e18)) {
		t.Fatalf("amounts should match around price 1: %s vs %s", amount0.FloatString(30), amount1.FloatString(30))
	}
}

func TestAmountsForLiquidityBelowRange(t *testing.T) {
	liquidity := big.NewInt(500_000)
	sqrtLower := TickToSqrtPrice(-60)
	sqrtUpper := TickToSqrtPrice(60)
	sqrtCurrent := TickToSqrtPrice(-120)

	amount0, amount1, err := AmountsForLiquidity(liquidity, sqrtCurrent, sqrtLower, sqrtUpper)
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if amount1.Sign() != 0 {
		t.Fatalf("below range amount1 must be exactly zero, got %s", amount1.FloatString(10))
	}
	if amount0.Sign() <= 0 {
		t.Fatalf("below range amount0 must be positive")
	}
}

func TestAmountsForLiquidityAboveRangeClosedForm(t *testing.T) {
	liquidity := big.NewInt(123_456)
	sqrtLower := TickToSqrtPrice(-600)
	sqrtUpper := TickToSqrtPrice(600)
	sqrtCurrent := TickToSqrtPrice(1200)

	amount0, amount1, err := AmountsForLiquidity(liquidity, sqrtCurrent, sqrtLower, sqrtUpper)
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if amount0.Sign() != 0 {
		t.Fatalf("above range amount0 must be exactly zero, got %s", amount0.FloatString(10))
	}

	want := new(big.Rat).Sub(sqrtUpper, sqrtLower)
	want.Mul(want, new(big.Rat).SetInt(liquidity))
	if amount1.Cmp(want) != 0 {
		t.Fatalf("above range amount1 should equal liquidity*(sqrtU-sqrtL) exactly")
	}
}

func TestAmountsForLiquidityMonotonicAcrossRange(t *testing.T) {
	liquidity := big.NewInt(1_000_000_000)
	sqrtLower := TickToSqrtPrice(-1200)
	sqrtUpper := TickToSqrtPrice(1200)

	var prev0, prev1 *big.Rat
	for _, tick := range []int32{-1200, -600, -60, 0, 60, 600, 1200} {
		sqrtCurrent := TickToSqrtPrice(tick)
		amount0, amount1, err := AmountsForLiquidity(liquidity, sqrtCurrent, sqrtLower, sqrtUpper)
		if err != nil {
			t.Fatalf("amounts at tick %d: %v", tick, err)
		}
		if prev0 != nil && amount0.Cmp(prev0) > 0 {
			t.Fatalf("amount0 must be non-increasing, rose at tick %d", tick)
		}
		if prev1 != nil && amount1.Cmp(prev1) < 0 {
			t.Fatalf("amount1 must be non-decreasing, fell at tick %d", tick)
		}
		prev0, prev1 = amount0, amount1
	}
}

func TestAmountsForLiquidityZeroLiquidity(t *testing.T) {
	amount0, amount1, err := AmountsForLiquidity(big.NewInt(0), TickToSqrtPrice(0), TickToSqrtPrice(-60), TickToSqrtPrice(60))
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if amount0.Sign() != 0 || amount1.Sign() != 0 {
		t.Fatalf("zero liquidity must lock zero amounts")
	}
}

func TestAmountsForLiquidityBadInputs(t *testing.T) {
	if _, _, err := AmountsForLiquidity(big.NewInt(-1), TickToSqrtPrice(0), TickToSqrtPrice(-60), TickToSqrtPrice(60)); err == nil {
		t.Fatalf("negative liquidity must be rejected")
	}
	if _, _, err := AmountsForLiquidity(big.NewInt(1), TickToSqrtPrice(0), TickToSqrtPrice(60), TickToSqrtPrice(-60)); err == nil {
		t.Fatalf("inverted sqrt bounds must be rejected")
	}
}

func TestAmountsForLiquidityIdempotent(t *testing.T) {
	liquidity := big.NewInt(42_000)
	sqrtCurrent := TickToSqrtPrice(30)
	sqrtLower := TickToSqrtPrice(-60)
	sqrtUpper := TickToSqrtPrice(60)

	a0, a1, err := AmountsForLiquidity(liquidity, sqrtCurrent, sqrtLower, sqrtUpper)
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	b0, b1, err := AmountsForLiquidity(liquidity, sqrtCurrent, sqrtLower, sqrtUpper)
	if err != nil {
		t.Fatalf("amounts: %v", err)
	}
	if a0.Cmp(b0) != 0 || a1.Cmp(b1) != 0 {
		t.Fatalf("identical inputs must produce identical outputs")
	}
}
