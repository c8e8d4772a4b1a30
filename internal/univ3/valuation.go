package univ3

import (
	"math/big"
	"time"
)

const secondsPerYear = 365 * 24 * 60 * 60

// LockedAmounts returns the decimal-adjusted token amounts currently locked
// by the position.
func LockedAmounts(pos PositionSnapshot, pool PoolSnapshot) (*big.Rat, *big.Rat, error) {
	if err := validateRange(pos); err != nil {
		return nil, nil, err
	}

	sqrtCurrent := new(big.Rat).SetFrac(pool.SqrtPriceX96, q96)
	sqrtLower := TickToSqrtPrice(pos.TickLower)
	sqrtUpper := TickToSqrtPrice(pos.TickUpper)

	amount0, amount1, err := AmountsForLiquidity(pos.Liquidity, sqrtCurrent, sqrtLower, sqrtUpper)
	if err != nil {
		return nil, nil, err
	}

	amount0.Quo(amount0, pow10(int(pool.Token0Decimals)))
	amount1.Quo(amount1, pow10(int(pool.Token1Decimals)))
	return amount0, amount1, nil
}

// UncollectedPositionFees returns the decimal-adjusted fee amounts earned by
// the position but not yet collected. Fees keep accruing value even at zero
// liquidity until collect is called, since the delta against the last
// snapshot is what matters.
func UncollectedPositionFees(pos PositionSnapshot, pool PoolSnapshot, lower, upper TickInfo) (*big.Rat, *big.Rat, error) {
	if err := validateRange(pos); err != nil {
		return nil, nil, err
	}

	inside0 := FeeGrowthInside(pool.FeeGrowthGlobal0, lower.FeeGrowthOutside0, upper.FeeGrowthOutside0,
		pos.TickLower, pos.TickUpper, pool.Tick)
	inside1 := FeeGrowthInside(pool.FeeGrowthGlobal1, lower.FeeGrowthOutside1, upper.FeeGrowthOutside1,
		pos.TickLower, pos.TickUpper, pool.Tick)

	fee0, err := UncollectedFees(pos.Liquidity, inside0, pos.FeeGrowthInside0Last, pool.Token0Decimals)
	if err != nil {
		return nil, nil, err
	}
	fee1, err := UncollectedFees(pos.Liquidity, inside1, pos.FeeGrowthInside1Last, pool.Token1Decimals)
	if err != nil {
		return nil, nil, err
	}
	return fee0, fee1, nil
}

// PriceRange returns the decimal-adjusted price bounds (token1 per token0)
// of the position's range, independent of the current pool price.
func PriceRange(pos PositionSnapshot, pool PoolSnapshot) (*big.Rat, *big.Rat, error) {
	if err := validateRange(pos); err != nil {
		return nil, nil, err
	}
	lower := AdjustForDecimals(TickToPrice(pos.TickLower), pool.Token0Decimals, pool.Token1Decimals)
	upper := AdjustForDecimals(TickToPrice(pos.TickUpper), pool.Token0Decimals, pool.Token1Decimals)
	return lower, upper, nil
}

// PoolPrice returns the current pool price, decimal adjusted.
func PoolPrice(pool PoolSnapshot) *big.Rat {
	price := SqrtPriceX96ToPrice(pool.SqrtPriceX96)
	return AdjustForDecimals(price, pool.Token0Decimals, pool.Token1Decimals)
}

// IsClosed reports whether all liquidity has been withdrawn.
func IsClosed(pos PositionSnapshot) bool {
	return pos.Liquidity == nil || pos.Liquidity.Sign() == 0
}

// IsActive reports whether the position has liquidity and the pool price is
// strictly inside its range. A price sitting exactly on a boundary counts as
// out of range.
func IsActive(pos PositionSnapshot, pool PoolSnapshot) (bool, error) {
	if IsClosed(pos) {
		return false, nil
	}
	lower, upper, err := PriceRange(pos, pool)
	if err != nil {
		return false, err
	}
	price := PoolPrice(pool)
	return lower.Cmp(price) < 0 && price.Cmp(upper) < 0, nil
}

// APY annualizes the fee yield of a position. A zero locked value or an
// unknown creation date both degrade to a zero yield rather than failing;
// AgeKnown on the report tells the caller whether the age itself resolved,
// and the age is still reported when only the locked value is zero.
func APY(lockedValueQuote, feeValueQuote *big.Rat, createdAt, now time.Time) (*big.Rat, int) {
	apy := new(big.Rat)
	if createdAt.IsZero() {
		return apy, 0
	}
	age := now.Sub(createdAt)
	if age <= 0 {
		return apy, 0
	}
	ageDays := int(age.Hours() / 24)
	if lockedValueQuote.Sign() == 0 {
		return apy, ageDays
	}

	// The ratio is taken in nanoseconds so sub-second ages stay nonzero.
	yearsPortion := new(big.Rat).SetFrac64(secondsPerYear*int64(time.Second), age.Nanoseconds())
	apy.Quo(feeValueQuote, lockedValueQuote)
	apy.Mul(apy, yearsPortion)
	apy.Mul(apy, big.NewRat(100, 1))
	return apy, ageDays
}

// Valuation aggregates the locked amounts, uncollected fees, price range,
// status flags and yield summary into a single report. quoteUSD is the spot
// USD price of token1 and may be nil, in which case the USD totals are nil.
func Valuation(pos PositionSnapshot, pool PoolSnapshot, lower, upper TickInfo, quoteUSD *big.Rat, now time.Time) (*ValuationReport, error) {
	locked0, locked1, err := LockedAmounts(pos, pool)
	if err != nil {
		return nil, err
	}
	fee0, fee1, err := UncollectedPositionFees(pos, pool, lower, upper)
	if err != nil {
		return nil, err
	}
	priceLower, priceUpper, err := PriceRange(pos, pool)
	if err != nil {
		return nil, err
	}
	active, err := IsActive(pos, pool)
	if err != nil {
		return nil, err
	}

	price := PoolPrice(pool)
	totalValue := new(big.Rat).Mul(locked0, price)
	totalValue.Add(totalValue, locked1)
	totalFees := new(big.Rat).Mul(fee0, price)
	totalFees.Add(totalFees, fee1)

	apy, ageDays := APY(totalValue, totalFees, pos.CreatedAt, now)

	report := &ValuationReport{
		Locked0:         locked0,
		Locked1:         locked1,
		UncollectedFee0: fee0,
		UncollectedFee1: fee1,
		PriceLower:      priceLower,
		PriceUpper:      priceUpper,
		Active:          active,
		Closed:          IsClosed(pos),
		TotalValueQuote: totalValue,
		TotalFeesQuote:  totalFees,
		APYPercent:      apy,
		AgeDays:         ageDays,
		AgeKnown:        !pos.CreatedAt.IsZero(),
	}
	if quoteUSD != nil {
		report.TotalValueUSD = new(big.Rat).Mul(totalValue, quoteUSD)
		report.TotalFeesUSD = new(big.Rat).Mul(totalFees, quoteUSD)
	}
	return report, nil
}

func validateRange(pos PositionSnapshot) error {
	if pos.TickLower >= pos.TickUpper {
		return rangeErrorf("tick lower %d not below tick upper %d", pos.TickLower, pos.TickUpper)
	}
	if pos.TickLower < MinTick || pos.TickUpper > MaxTick {
		return rangeErrorf("ticks [%d, %d] outside [%d, %d]", pos.TickLower, pos.TickUpper, MinTick, MaxTick)
	}
	if pos.Liquidity != nil && pos.Liquidity.Sign() < 0 {
		return rangeErrorf("liquidity must be non-negative")
	}
	return nil
}
