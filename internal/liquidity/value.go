package liquidity

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

// PositionValue returns the quote-denominated value of a position at
// currentTick, pricing the base leg at currentPrice (quote per whole base).
func PositionValue(liquidity *big.Int, currentTick, tickLower, tickUpper int32, currentPrice *big.Int, baseIsToken0 bool, baseDecimals uint8) (*big.Int, error) {
	if liquidity == nil || liquidity.Sign() == 0 {
		return new(big.Int), nil
	}
	amounts, err := AmountsForLiquidity(liquidity, currentTick, tickLower, tickUpper, RoundDown)
	if err != nil {
		return nil, err
	}
	return QuoteValue(amounts, currentPrice, baseIsToken0, baseDecimals)
}

// QuoteValue converts token0/token1 amounts into quote units.
func QuoteValue(amounts Amounts, price *big.Int, baseIsToken0 bool, baseDecimals uint8) (*big.Int, error) {
	if price == nil || price.Sign() < 0 {
		return nil, errs.Invalid("price must not be negative")
	}
	amount0 := orZero(amounts.Amount0)
	amount1 := orZero(amounts.Amount1)
	unit := v3math.Pow10(baseDecimals)

	if baseIsToken0 {
		value := v3math.MulDiv(amount0, price, unit)
		return value.Add(value, amount1), nil
	}
	value := v3math.MulDiv(amount1, price, unit)
	return value.Add(value, amount0), nil
}
