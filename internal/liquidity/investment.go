package liquidity

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/price"
	"positionScope/internal/v3math"
)

// Investment is a mixed base/quote budget in smallest token units.
type Investment struct {
	BaseAmount    *big.Int
	BaseDecimals  uint8
	QuoteAmount   *big.Int
	QuoteDecimals uint8
	QuoteIsToken0 bool
}

// BudgetInQuote values the whole investment in quote units at sqrtCurrent.
func (inv Investment) BudgetInQuote(sqrtCurrent *big.Int) (*big.Int, error) {
	var (
		basePrice *big.Int
		err       error
	)
	if inv.QuoteIsToken0 {
		basePrice, err = price.SqrtRatioToToken1Price(sqrtCurrent, inv.QuoteDecimals, inv.BaseDecimals)
	} else {
		basePrice, err = price.SqrtRatioToToken0Price(sqrtCurrent, inv.BaseDecimals, inv.QuoteDecimals)
	}
	if err != nil {
		return nil, err
	}
	budget := v3math.MulDiv(orZero(inv.BaseAmount), basePrice, v3math.Pow10(inv.BaseDecimals))
	return budget.Add(budget, orZero(inv.QuoteAmount)), nil
}

// LiquidityForInvestment returns the liquidity a budget buys in
// [sqrtLower, sqrtUpper) once it is rebalanced at sqrtCurrent.
//
// With V the budget in quote units, W = V*Q192 when quote is token1 and
// W = V*sqrtCurrent^2 when quote is token0, so W/Q192 is the budget in token1.
// Per unit of liquidity the position holds (in token1, times Q192):
//
//	below: sqrtCurrent^2 * Q96 * (sqrtUpper-sqrtLower) / (sqrtLower*sqrtUpper)
//	above: Q96 * (sqrtUpper-sqrtLower)
//	in range: Q96 * ((sqrtUpper-sqrtCurrent)*sqrtCurrent + (sqrtCurrent-sqrtLower)*sqrtUpper) / sqrtUpper
func LiquidityForInvestment(inv Investment, sqrtLower, sqrtUpper, sqrtCurrent *big.Int) (*big.Int, error) {
	if err := validateSqrtRange(sqrtCurrent, sqrtLower, sqrtUpper); err != nil {
		return nil, err
	}
	if orZero(inv.BaseAmount).Sign() < 0 || orZero(inv.QuoteAmount).Sign() < 0 {
		return nil, errs.Invalid("investment amounts must not be negative")
	}

	budget, err := inv.BudgetInQuote(sqrtCurrent)
	if err != nil {
		return nil, err
	}
	if budget.Sign() == 0 {
		return new(big.Int), nil
	}

	currentSquared := new(big.Int).Mul(sqrtCurrent, sqrtCurrent)
	scaled := new(big.Int)
	if inv.QuoteIsToken0 {
		scaled.Mul(budget, currentSquared)
	} else {
		scaled.Mul(budget, v3math.Q192)
	}

	width := new(big.Int).Sub(sqrtUpper, sqrtLower)
	switch {
	case sqrtCurrent.Cmp(sqrtLower) <= 0:
		numerator := new(big.Int).Mul(scaled, sqrtLower)
		numerator.Mul(numerator, sqrtUpper)
		denominator := new(big.Int).Mul(currentSquared, width)
		denominator.Mul(denominator, v3math.Q96)
		return numerator.Div(numerator, denominator), nil
	case sqrtCurrent.Cmp(sqrtUpper) >= 0:
		denominator := new(big.Int).Mul(v3math.Q96, width)
		return scaled.Div(scaled, denominator), nil
	default:
		leg0 := new(big.Int).Sub(sqrtUpper, sqrtCurrent)
		leg0.Mul(leg0, sqrtCurrent)
		leg1 := new(big.Int).Sub(sqrtCurrent, sqrtLower)
		leg1.Mul(leg1, sqrtUpper)
		denominator := leg0.Add(leg0, leg1)
		denominator.Mul(denominator, v3math.Q96)
		numerator := new(big.Int).Mul(scaled, sqrtUpper)
		return numerator.Div(numerator, denominator), nil
	}
}
