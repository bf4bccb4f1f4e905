package liquidity

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

// Rounding selects floor or ceiling for amount conversions.
type Rounding int

const (
	RoundDown Rounding = iota
	RoundUp
)

// Amounts holds raw token0/token1 quantities in smallest units.
type Amounts struct {
	Amount0 *big.Int
	Amount1 *big.Int
}

func zeroAmounts() Amounts {
	return Amounts{Amount0: new(big.Int), Amount1: new(big.Int)}
}

// ValidateRange checks that both ticks are valid and tickLower < tickUpper.
func ValidateRange(tickLower, tickUpper int32) error {
	if tickLower >= tickUpper {
		return errs.Invalid("tick lower %d must be below tick upper %d", tickLower, tickUpper)
	}
	if tickLower < v3math.MinTick || tickUpper > v3math.MaxTick {
		return errs.Invalid("tick range [%d, %d] outside [%d, %d]", tickLower, tickUpper, v3math.MinTick, v3math.MaxTick)
	}
	return nil
}

// AmountsForLiquidity returns the token amounts backing liquidity at
// currentTick. Zero liquidity yields zero amounts without validation.
func AmountsForLiquidity(liquidity *big.Int, currentTick, tickLower, tickUpper int32, rounding Rounding) (Amounts, error) {
	if liquidity == nil || liquidity.Sign() == 0 {
		return zeroAmounts(), nil
	}
	if err := ValidateRange(tickLower, tickUpper); err != nil {
		return Amounts{}, err
	}

	sqrtCurrent, err := v3math.TickToSqrtRatio(currentTick)
	if err != nil {
		return Amounts{}, err
	}
	sqrtLower, err := v3math.TickToSqrtRatio(tickLower)
	if err != nil {
		return Amounts{}, err
	}
	sqrtUpper, err := v3math.TickToSqrtRatio(tickUpper)
	if err != nil {
		return Amounts{}, err
	}
	return AmountsForSqrtPrice(liquidity, sqrtCurrent, sqrtLower, sqrtUpper, rounding)
}

// AmountsForSqrtPrice is AmountsForLiquidity over raw Q64.96 sqrt ratios.
func AmountsForSqrtPrice(liquidity, sqrtCurrent, sqrtLower, sqrtUpper *big.Int, rounding Rounding) (Amounts, error) {
	if liquidity == nil || liquidity.Sign() == 0 {
		return zeroAmounts(), nil
	}
	if liquidity.Sign() < 0 {
		return Amounts{}, errs.Invalid("liquidity must not be negative")
	}
	if err := validateSqrtRange(sqrtCurrent, sqrtLower, sqrtUpper); err != nil {
		return Amounts{}, err
	}

	out := zeroAmounts()
	switch {
	case sqrtCurrent.Cmp(sqrtLower) <= 0:
		out.Amount0 = amount0Delta(liquidity, sqrtLower, sqrtUpper, rounding)
	case sqrtCurrent.Cmp(sqrtUpper) >= 0:
		out.Amount1 = amount1Delta(liquidity, sqrtLower, sqrtUpper, rounding)
	default:
		out.Amount0 = amount0Delta(liquidity, sqrtCurrent, sqrtUpper, rounding)
		out.Amount1 = amount1Delta(liquidity, sqrtLower, sqrtCurrent, rounding)
	}
	return out, nil
}

func validateSqrtRange(sqrtCurrent, sqrtLower, sqrtUpper *big.Int) error {
	if sqrtCurrent == nil || sqrtLower == nil || sqrtUpper == nil {
		return errs.Invalid("sqrt ratios are required")
	}
	if sqrtCurrent.Sign() <= 0 || sqrtLower.Sign() <= 0 {
		return errs.Invalid("sqrt ratios must be positive")
	}
	if sqrtLower.Cmp(sqrtUpper) >= 0 {
		return errs.Invalid("sqrt lower %s must be below sqrt upper %s", sqrtLower, sqrtUpper)
	}
	return nil
}

// amount0Delta is L*(sqrtB-sqrtA)*Q96/(sqrtA*sqrtB).
func amount0Delta(liquidity, sqrtA, sqrtB *big.Int, rounding Rounding) *big.Int {
	numerator := new(big.Int).Sub(sqrtB, sqrtA)
	numerator.Mul(numerator, liquidity)
	denominator := new(big.Int).Mul(sqrtA, sqrtB)
	if rounding == RoundUp {
		return v3math.MulDivRoundingUp(numerator, v3math.Q96, denominator)
	}
	return v3math.MulDiv(numerator, v3math.Q96, denominator)
}

// amount1Delta is L*(sqrtB-sqrtA)/Q96.
func amount1Delta(liquidity, sqrtA, sqrtB *big.Int, rounding Rounding) *big.Int {
	diff := new(big.Int).Sub(sqrtB, sqrtA)
	if rounding == RoundUp {
		return v3math.MulDivRoundingUp(liquidity, diff, v3math.Q96)
	}
	return v3math.MulDiv(liquidity, diff, v3math.Q96)
}
