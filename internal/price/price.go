package price

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

// EncodeSqrtRatio returns sqrt(amount1/amount0) as a Q64.96 value.
func EncodeSqrtRatio(amount1, amount0 *big.Int) (*big.Int, error) {
	if amount0 == nil || amount0.Sign() <= 0 {
		return nil, errs.Invalid("amount0 must be positive")
	}
	if amount1 == nil || amount1.Sign() <= 0 {
		return nil, errs.Invalid("amount1 must be positive")
	}
	ratio := new(big.Int).Lsh(amount1, 192)
	ratio.Quo(ratio, amount0)
	return v3math.Sqrt(ratio), nil
}

// PriceToSqrtRatio converts a quote-per-base price into a pool sqrt ratio.
func PriceToSqrtRatio(pair Pair, price *big.Int) (*big.Int, error) {
	if price == nil || price.Sign() <= 0 {
		return nil, errs.Invalid("price must be positive")
	}
	if err := pair.validate(); err != nil {
		return nil, err
	}

	unit := v3math.Pow10(pair.BaseDecimals)
	if pair.BaseIsToken0() {
		return EncodeSqrtRatio(price, unit)
	}
	return EncodeSqrtRatio(unit, price)
}

// TickToPrice returns the quote-per-base price at tick. Extreme ticks may
// floor to zero.
func TickToPrice(tick int32, pair Pair) (*big.Int, error) {
	if err := pair.validate(); err != nil {
		return nil, err
	}
	sqrtRatio, err := v3math.TickToSqrtRatio(tick)
	if err != nil {
		return nil, err
	}
	return SqrtRatioToPrice(sqrtRatio, pair)
}

// SqrtRatioToPrice returns the quote-per-base price at a sqrt ratio.
func SqrtRatioToPrice(sqrtRatio *big.Int, pair Pair) (*big.Int, error) {
	if sqrtRatio == nil || sqrtRatio.Sign() <= 0 {
		return nil, errs.Invalid("sqrt ratio must be positive")
	}
	squared := new(big.Int).Mul(sqrtRatio, sqrtRatio)
	unit := v3math.Pow10(pair.BaseDecimals)
	if pair.BaseIsToken0() {
		return v3math.MulDiv(squared, unit, v3math.Q192), nil
	}
	return v3math.MulDiv(v3math.Q192, unit, squared), nil
}

// PriceToTick returns the floor tick of price snapped down to the spacing
// grid, staying at or above MinTick.
func PriceToTick(price *big.Int, tickSpacing int32, pair Pair) (int32, error) {
	if tickSpacing <= 0 {
		return 0, errs.Invalid("tick spacing must be positive, got %d", tickSpacing)
	}
	tick, _, err := floorTick(price, pair)
	if err != nil {
		return 0, err
	}
	snapped := FloorToSpacing(tick, tickSpacing)
	if snapped < v3math.MinTick {
		snapped += tickSpacing
	}
	return snapped, nil
}

// PriceToClosestUsableTick picks whichever of the two ticks bracketing price
// has the closer sqrt ratio, then rounds it to the nearest usable tick.
func PriceToClosestUsableTick(price *big.Int, tickSpacing int32, pair Pair) (int32, error) {
	if tickSpacing <= 0 {
		return 0, errs.Invalid("tick spacing must be positive, got %d", tickSpacing)
	}
	tick, target, err := floorTick(price, pair)
	if err != nil {
		return 0, err
	}

	if tick < v3math.MaxTick {
		lower, err := v3math.TickToSqrtRatio(tick)
		if err != nil {
			return 0, err
		}
		upper, err := v3math.TickToSqrtRatio(tick + 1)
		if err != nil {
			return 0, err
		}
		distLower := new(big.Int).Sub(target, lower)
		distUpper := new(big.Int).Sub(upper, target)
		if distUpper.Cmp(distLower.Abs(distLower)) < 0 {
			tick++
		}
	}

	return NearestUsableTick(clampTick(tick), tickSpacing), nil
}

// FloorToSpacing snaps tick down to a multiple of tickSpacing.
func FloorToSpacing(tick, tickSpacing int32) int32 {
	q, _ := floorDivMod(tick, tickSpacing)
	return q * tickSpacing
}

// NearestUsableTick rounds tick to the closest multiple of tickSpacing that
// stays inside [MinTick, MaxTick]. Halfway values round up.
func NearestUsableTick(tick, tickSpacing int32) int32 {
	q, r := floorDivMod(tick, tickSpacing)
	rounded := q * tickSpacing
	if 2*r >= tickSpacing {
		rounded += tickSpacing
	}

	maxUsable := (v3math.MaxTick / tickSpacing) * tickSpacing
	if rounded > maxUsable {
		return maxUsable
	}
	if rounded < -maxUsable {
		return -maxUsable
	}
	return rounded
}

// floorTick returns the floor tick for price and the clamped target ratio.
func floorTick(price *big.Int, pair Pair) (int32, *big.Int, error) {
	target, err := PriceToSqrtRatio(pair, price)
	if err != nil {
		return 0, nil, err
	}
	if target.Cmp(v3math.MinSqrtRatio) < 0 {
		target = new(big.Int).Set(v3math.MinSqrtRatio)
	} else if target.Cmp(v3math.MaxSqrtRatio) > 0 {
		target = new(big.Int).Set(v3math.MaxSqrtRatio)
	}
	tick, err := v3math.SqrtRatioToTick(target)
	if err != nil {
		return 0, nil, err
	}
	return tick, target, nil
}

func clampTick(tick int32) int32 {
	if tick < v3math.MinTick {
		return v3math.MinTick
	}
	if tick > v3math.MaxTick {
		return v3math.MaxTick
	}
	return tick
}

func floorDivMod(a, b int32) (int32, int32) {
	q := a / b
	r := a % b
	if r < 0 {
		q--
		r += b
	}
	return q, r
}
