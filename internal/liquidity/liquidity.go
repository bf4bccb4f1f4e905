package liquidity

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

// LiquidityForAmounts returns the largest liquidity that amount0 and amount1
// can back at currentTick.
func LiquidityForAmounts(currentTick, tickLower, tickUpper int32, amount0, amount1 *big.Int) (*big.Int, error) {
	if err := ValidateRange(tickLower, tickUpper); err != nil {
		return nil, err
	}
	sqrtCurrent, err := v3math.TickToSqrtRatio(currentTick)
	if err != nil {
		return nil, err
	}
	sqrtLower, err := v3math.TickToSqrtRatio(tickLower)
	if err != nil {
		return nil, err
	}
	sqrtUpper, err := v3math.TickToSqrtRatio(tickUpper)
	if err != nil {
		return nil, err
	}
	return LiquidityForSqrtPrice(sqrtCurrent, sqrtLower, sqrtUpper, amount0, amount1)
}

// LiquidityForSqrtPrice is LiquidityForAmounts over raw Q64.96 sqrt ratios.
// Below range only amount0 counts, above range only amount1; in range the
// smaller of the two candidates wins.
func LiquidityForSqrtPrice(sqrtCurrent, sqrtLower, sqrtUpper, amount0, amount1 *big.Int) (*big.Int, error) {
	if err := validateSqrtRange(sqrtCurrent, sqrtLower, sqrtUpper); err != nil {
		return nil, err
	}
	amount0 = orZero(amount0)
	amount1 = orZero(amount1)
	if amount0.Sign() < 0 || amount1.Sign() < 0 {
		return nil, errs.Invalid("token amounts must not be negative")
	}

	switch {
	case sqrtCurrent.Cmp(sqrtLower) <= 0:
		return liquidity0(amount0, sqrtLower, sqrtUpper), nil
	case sqrtCurrent.Cmp(sqrtUpper) >= 0:
		return liquidity1(amount1, sqrtLower, sqrtUpper), nil
	default:
		l0 := liquidity0(amount0, sqrtCurrent, sqrtUpper)
		l1 := liquidity1(amount1, sqrtLower, sqrtCurrent)
		if l0.Cmp(l1) < 0 {
			return l0, nil
		}
		return l1, nil
	}
}

func liquidity0(amount0, sqrtA, sqrtB *big.Int) *big.Int {
	intermediate := v3math.MulDiv(sqrtA, sqrtB, v3math.Q96)
	return v3math.MulDiv(amount0, intermediate, new(big.Int).Sub(sqrtB, sqrtA))
}

func liquidity1(amount1, sqrtA, sqrtB *big.Int) *big.Int {
	return v3math.MulDiv(amount1, v3math.Q96, new(big.Int).Sub(sqrtB, sqrtA))
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
