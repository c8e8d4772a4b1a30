package univ3

import (
	"math/big"
	"testing"
)

func TestSqrtPriceX96ToPrice(t *testing.T) {
	one := new(big.Int).Lsh(big.NewInt(1), 96)
	price := SqrtPriceX96ToPrice(one)
	if price.Cmp(big.NewRat(1, 1)) != 0 {
		t.Fatalf("price at 2^96 should be exactly 1, got %s", price.FloatString(10))
	}

	double := new(big.Int).Lsh(big.NewInt(2), 96)
	price = SqrtPriceX96ToPrice(double)
	if price.Cmp(big.NewRat(4, 1)) != 0 {
		t.Fatalf("price at 2*2^96 should be exactly 4, got %s", price.FloatString(10))
	}
}

func TestTickToPrice(t *testing.T) {
	if TickToPrice(0).Cmp(big.NewRat(1, 1)) != 0 {
		t.Fatalf("tick 0 price should be 1")
	}
	eps := big.NewRat(1, 1e18)
	if !ratClose(TickToPrice(1), big.NewRat(10001, 10000), eps) {
		t.Fatalf("tick 1 price should be 1.0001, got %s", TickToPrice(1).FloatString(24))
	}

	up := TickToPrice(60)
	down := TickToPrice(-60)
	product := new(big.Rat).Mul(up, down)
	if !ratClose(product, big.NewRat(1, 1), eps) {
		t.Fatalf("1.0001^60 * 1.0001^-60 should be 1, got %s", product.FloatString(24))
	}
}

func TestTickToPriceFullRangeTicks(t *testing.T) {
	// The widest usable range on a 60-spacing pool. The powers here must
	// come back quickly and stay consistent in both directions.
	eps := big.NewRat(1, 1e18)

	up := TickToPrice(887220)
	down := TickToPrice(-887220)
	if up.Sign() <= 0 || down.Sign() <= 0 {
		t.Fatalf("full range prices must be positive")
	}
	if up.Cmp(big.NewRat(1, 1)) <= 0 || down.Cmp(big.NewRat(1, 1)) >= 0 {
		t.Fatalf("full range prices on the wrong side of 1")
	}

	product := new(big.Rat).Mul(up, down)
	if !ratClose(product, big.NewRat(1, 1), eps) {
		t.Fatalf("reciprocal full range product: got %s", product.FloatString(24))
	}

	// The sqrt agrees with the price it was taken from.
	sqrt := TickToSqrtPrice(887220)
	squared := new(big.Rat).Mul(sqrt, sqrt)
	diff := new(big.Rat).Sub(squared, up)
	rel := diff.Abs(diff).Quo(diff, up)
	if rel.Cmp(eps) >= 0 {
		t.Fatalf("sqrt squared drifts from the price: rel err %s", rel.FloatString(40))
	}
}

func TestTickToSqrtPrice(t *testing.T) {
	if TickToSqrtPrice(0).Cmp(big.NewRat(1, 1)) != 0 {
		t.Fatalf("tick 0 sqrt price should be 1")
	}

	// sqrt(1.0001^2) == 1.0001 up to the working precision.
	got := TickToSqrtPrice(2)
	want := big.NewRat(10001, 10000)
	if !ratClose(got, want, big.NewRat(1, 1e18)) {
		t.Fatalf("sqrt price at tick 2: got %s want %s", got.FloatString(24), want.FloatString(24))
	}

	// Determinism: two calls yield bit-identical rationals.
	a := TickToSqrtPrice(-887220)
	b := TickToSqrtPrice(-887220)
	if a.Cmp(b) != 0 {
		t.Fatalf("tick sqrt price is not deterministic")
	}
}

func TestAdjustForDecimals(t *testing.T) {
	price := big.NewRat(2000, 1)

	same := AdjustForDecimals(price, 18, 18)
	if same.Cmp(price) != 0 {
		t.Fatalf("equal decimals should not rescale")
	}

	// USDC/WETH style gap: divide by 10^12.
	adjusted := AdjustForDecimals(price, 6, 18)
	want := big.NewRat(2000, 1)
	want.Quo(want, new(big.Rat).SetInt(new(big.Int).Exp(big.NewInt(10), big.NewInt(12), nil)))
	if adjusted.Cmp(want) != 0 {
		t.Fatalf("decimal adjustment mismatch: got %s want %s", adjusted.FloatString(20), want.FloatString(20))
	}

	// Inverse gap multiplies.
	inflated := AdjustForDecimals(big.NewRat(1, 1), 18, 6)
	if inflated.Cmp(new(big.Rat).SetInt64(1_000_000_000_000)) != 0 {
		t.Fatalf("negative gap should multiply: got %s", inflated.FloatString(4))
	}
}

func TestSubIn256(t *testing.T) {
	if SubIn256(big.NewInt(1000), big.NewInt(300)).Cmp(big.NewInt(700)) != 0 {
		t.Fatalf("plain subtraction broken")
	}

	// Wraps instead of going negative.
	wrapped := SubIn256(big.NewInt(5), big.NewInt(6))
	want := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))
	if wrapped.Cmp(want) != 0 {
		t.Fatalf("wraparound mismatch: got %s", wrapped.String())
	}
	if wrapped.Sign() < 0 {
		t.Fatalf("wrapped value must be non-negative")
	}
}

func ratClose(a, b, eps *big.Rat) bool {
	diff := new(big.Rat).Sub(a, b)
	return diff.Abs(diff).Cmp(eps) < 0
}
