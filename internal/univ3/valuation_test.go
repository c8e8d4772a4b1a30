package univ3

import (
	"errors"
	"math/big"
	"testing"
	"time"
)

func testPool(tick int32) PoolSnapshot {
	sqrt := TickToSqrtPrice(tick)
	// Scale the plain sqrt price back into Q96 for the snapshot.
	x96 := new(big.Rat).Mul(sqrt, new(big.Rat).SetInt(q96))
	val := new(big.Int).Quo(x96.Num(), x96.Denom())
	return PoolSnapshot{
		SqrtPriceX96:     val,
		Tick:             tick,
		FeeGrowthGlobal0: big.NewInt(0),
		FeeGrowthGlobal1: big.NewInt(0),
		Token0Decimals:   18,
		Token1Decimals:   18,
	}
}

func TestLockedAmountsDecimalAdjusted(t *testing.T) {
	pool := testPool(0)
	pos := PositionSnapshot{
		Liquidity:            big.NewInt(1_000_000),
		TickLower:            -887220,
		TickUpper:            887220,
		FeeGrowthInside0Last: big.NewInt(0),
		FeeGrowthInside1Last: big.NewInt(0),
	}

	amount0, amount1, err := LockedAmounts(pos, pool)
	if err != nil {
		t.Fatalf("locked amounts: %v", err)
	}
	if amount0.Sign() <= 0 || amount1.Sign() <= 0 {
		t.Fatalf("full range position at price 1 should lock both tokens")
	}
	// Symmetric range at price 1: near-equal halves after the common
	// decimal adjustment.
	if !ratClose(amount0, amount1, big.NewRat(1, 1e18)) {
		t.Fatalf("expected symmetric amounts, got %s / %s", amount0.FloatString(30), amount1.FloatString(30))
	}
}

func TestLockedAmountsZeroLiquidity(t *testing.T) {
	pool := testPool(0)
	pos := PositionSnapshot{
		Liquidity:            big.NewInt(0),
		TickLower:            -60,
		TickUpper:            60,
		FeeGrowthInside0Last: big.NewInt(0),
		FeeGrowthInside1Last: big.NewInt(0),
	}
	amount0, amount1, err := LockedAmounts(pos, pool)
	if err != nil {
		t.Fatalf("locked amounts: %v", err)
	}
	if amount0.Sign() != 0 || amount1.Sign() != 0 {
		t.Fatalf("closed position must lock nothing")
	}
	if !IsClosed(pos) {
		t.Fatalf("zero liquidity must report closed")
	}
}

func TestIsActiveStrictAtBoundary(t *testing.T) {
	// Pool price sits exactly on the lower bound (tick 0, price 1).
	pool := PoolSnapshot{
		SqrtPriceX96:     new(big.Int).Lsh(big.NewInt(1), 96),
		Tick:             0,
		FeeGrowthGlobal0: big.NewInt(0),
		FeeGrowthGlobal1: big.NewInt(0),
		Token0Decimals:   18,
		Token1Decimals:   18,
	}
	pos := PositionSnapshot{
		Liquidity:            big.NewInt(1000),
		TickLower:            0,
		TickUpper:            600,
		FeeGrowthInside0Last: big.NewInt(0),
		FeeGrowthInside1Last: big.NewInt(0),
	}

	active, err := IsActive(pos, pool)
	if err != nil {
		t.Fatalf("is active: %v", err)
	}
	if active {
		t.Fatalf("position exactly at the boundary tick must not be active")
	}

	pos.TickLower = -600
	active, err = IsActive(pos, pool)
	if err != nil {
		t.Fatalf("is active: %v", err)
	}
	if !active {
		t.Fatalf("position straddling the price must be active")
	}
}

func TestAPYHalfYear(t *testing.T) {
	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	created := now.Add(-time.Duration(secondsPerYear/2) * time.Second)

	apy, ageDays := APY(big.NewRat(100, 1), big.NewRat(1, 1), created, now)
	if apy.Cmp(big.NewRat(2, 1)) != 0 {
		t.Fatalf("half-year apy: got %s want 2", apy.FloatString(6))
	}
	if ageDays != 182 {
		t.Fatalf("age days: got %d want 182", ageDays)
	}
}

func TestAPYDegradedOutputs(t *testing.T) {
	now := time.Now().UTC()

	// Zero locked value: no division, apy 0, but the age is still reported.
	apy, ageDays := APY(new(big.Rat), big.NewRat(5, 1), now.Add(-30*24*time.Hour), now)
	if apy.Sign() != 0 {
		t.Fatalf("zero locked value must yield zero apy")
	}
	if ageDays != 30 {
		t.Fatalf("zero locked value must keep the age: got %d want 30", ageDays)
	}

	// Unknown creation date: apy 0, age 0.
	apy, ageDays = APY(big.NewRat(100, 1), big.NewRat(5, 1), time.Time{}, now)
	if apy.Sign() != 0 || ageDays != 0 {
		t.Fatalf("unknown creation date must degrade to zero apy and age")
	}
}

func TestAPYSubSecondAge(t *testing.T) {
	created := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	now := created.Add(400 * time.Millisecond)

	// A position valued within the same second it was minted still gets a
	// finite annualization instead of dividing by a truncated zero age.
	apy, ageDays := APY(big.NewRat(100, 1), big.NewRat(1, 1), created, now)
	if apy.Sign() <= 0 {
		t.Fatalf("sub-second age must yield a positive apy, got %s", apy.FloatString(6))
	}
	if ageDays != 0 {
		t.Fatalf("sub-second age days: got %d want 0", ageDays)
	}

	// 0.4s of a year, 1% fee ratio: apy = (yearSec/0.4) * 1%.
	want := new(big.Rat).SetFrac64(secondsPerYear*int64(time.Second), (400 * time.Millisecond).Nanoseconds())
	if apy.Cmp(want) != 0 {
		t.Fatalf("sub-second apy: got %s want %s", apy.FloatString(6), want.FloatString(6))
	}
}

func TestValuationReport(t *testing.T) {
	pool := testPool(0)
	pool.FeeGrowthGlobal0 = big.NewInt(1000)
	pool.FeeGrowthGlobal1 = big.NewInt(2000)

	now := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	pos := PositionSnapshot{
		Liquidity:            big.NewInt(1_000_000),
		TickLower:            -600,
		TickUpper:            600,
		FeeGrowthInside0Last: big.NewInt(0),
		FeeGrowthInside1Last: big.NewInt(0),
		CreatedAt:            now.Add(-30 * 24 * time.Hour),
	}
	lower := TickInfo{FeeGrowthOutside0: big.NewInt(100), FeeGrowthOutside1: big.NewInt(100)}
	upper := TickInfo{FeeGrowthOutside0: big.NewInt(200), FeeGrowthOutside1: big.NewInt(200)}

	report, err := Valuation(pos, pool, lower, upper, big.NewRat(3000, 1), now)
	if err != nil {
		t.Fatalf("valuation: %v", err)
	}
	if !report.Active || report.Closed {
		t.Fatalf("in-range funded position should be active and open")
	}
	if report.PriceLower.Cmp(report.PriceUpper) >= 0 {
		t.Fatalf("price range inverted")
	}
	if report.TotalValueQuote.Sign() <= 0 {
		t.Fatalf("locked value should be positive")
	}
	if report.TotalValueUSD == nil || report.TotalFeesUSD == nil {
		t.Fatalf("usd totals expected when a quote price is supplied")
	}
	if !report.AgeKnown || report.AgeDays != 30 {
		t.Fatalf("age: known=%v days=%d", report.AgeKnown, report.AgeDays)
	}
	if report.APYPercent.Sign() < 0 {
		t.Fatalf("apy must be non-negative here")
	}

	// Identical inputs give identical reports.
	again, err := Valuation(pos, pool, lower, upper, big.NewRat(3000, 1), now)
	if err != nil {
		t.Fatalf("valuation: %v", err)
	}
	if report.TotalValueQuote.Cmp(again.TotalValueQuote) != 0 || report.APYPercent.Cmp(again.APYPercent) != 0 {
		t.Fatalf("valuation is not deterministic")
	}
}

func TestValuationRejectsMalformedRange(t *testing.T) {
	pool := testPool(0)
	pos := PositionSnapshot{
		Liquidity:            big.NewInt(1),
		TickLower:            60,
		TickUpper:            -60,
		FeeGrowthInside0Last: big.NewInt(0),
		FeeGrowthInside1Last: big.NewInt(0),
	}
	_, err := Valuation(pos, pool, TickInfo{big.NewInt(0), big.NewInt(0)}, TickInfo{big.NewInt(0), big.NewInt(0)}, nil, time.Now())
	if err == nil {
		t.Fatalf("inverted tick range must be rejected")
	}
	var rangeErr *RangeError
	if !errors.As(err, &rangeErr) {
		t.Fatalf("expected a RangeError, got %T", err)
	}
}

func TestValuationWithoutQuotePrice(t *testing.T) {
	pool := testPool(0)
	pos := PositionSnapshot{
		Liquidity:            big.NewInt(10),
		TickLower:            -60,
		TickUpper:            60,
		FeeGrowthInside0Last: big.NewInt(0),
		FeeGrowthInside1Last: big.NewInt(0),
	}
	report, err := Valuation(pos, pool, TickInfo{big.NewInt(0), big.NewInt(0)}, TickInfo{big.NewInt(0), big.NewInt(0)}, nil, time.Now())
	if err != nil {
		t.Fatalf("valuation: %v", err)
	}
	if report.TotalValueUSD != nil || report.TotalFeesUSD != nil {
		t.Fatalf("usd totals must be nil without a quote price")
	}
}
