package univ3

import (
	"math/big"
	"testing"
)

func TestFeeGrowthInsideCurrentInRange(t *testing.T) {
	// Both boundary ticks in their in-range branch:
	// inside = 1000 - 100 - 200 = 700.
	inside := FeeGrowthInside(big.NewInt(1000), big.NewInt(100), big.NewInt(200), -60, 60, 0)
	if inside.Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("fee growth inside: got %s want 700", inside.String())
	}
}

func TestFeeGrowthInsideCurrentBelowRange(t *testing.T) {
	// current < lower: below = global - lowerOutside, above = upperOutside.
	inside := FeeGrowthInside(big.NewInt(1000), big.NewInt(900), big.NewInt(50), 60, 120, -10)
	// inside = 1000 - (1000-900) - 50 = 850
	if inside.Cmp(big.NewInt(850)) != 0 {
		t.Fatalf("fee growth inside below range: got %s want 850", inside.String())
	}
}

func TestFeeGrowthInsideCurrentAboveRange(t *testing.T) {
	// current >= upper: below = lowerOutside, above = global - upperOutside.
	inside := FeeGrowthInside(big.NewInt(1000), big.NewInt(100), big.NewInt(950), -120, -60, 0)
	// inside = 1000 - 100 - (1000-950) = 850
	if inside.Cmp(big.NewInt(850)) != 0 {
		t.Fatalf("fee growth inside above range: got %s want 850", inside.String())
	}
}

func TestFeeGrowthInsideWrapsNonNegative(t *testing.T) {
	// Outside snapshots larger than the (wrapped) global accumulator force
	// modular subtraction; the result has to stay in [0, 2^256).
	global := big.NewInt(10)
	lowerOutside := big.NewInt(500)
	upperOutside := big.NewInt(700)

	inside := FeeGrowthInside(global, lowerOutside, upperOutside, -60, 60, 0)
	if inside.Sign() < 0 {
		t.Fatalf("fee growth inside must never be negative")
	}
	if inside.Cmp(q256) >= 0 {
		t.Fatalf("fee growth inside out of 256-bit domain")
	}
}

func TestFeeGrowthInsideIdempotent(t *testing.T) {
	global := new(big.Int).Lsh(big.NewInt(123), 128)
	lower := new(big.Int).Lsh(big.NewInt(11), 128)
	upper := new(big.Int).Lsh(big.NewInt(7), 128)

	a := FeeGrowthInside(global, lower, upper, -120, 120, 30)
	b := FeeGrowthInside(global, lower, upper, -120, 120, 30)
	if a.Cmp(b) != 0 {
		t.Fatalf("identical inputs must produce identical fee growth")
	}
	// Inputs are not mutated.
	if global.Cmp(new(big.Int).Lsh(big.NewInt(123), 128)) != 0 {
		t.Fatalf("global accumulator was mutated")
	}
}
