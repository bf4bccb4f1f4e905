package price

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

// SqrtRatioToToken0Price returns the price of one whole token0 in token1
// base units: floor(sqrtRatio^2 * 10^dec0 / Q192).
func SqrtRatioToToken0Price(sqrtRatio *big.Int, token0Decimals, token1Decimals uint8) (*big.Int, error) {
	if sqrtRatio == nil || sqrtRatio.Sign() <= 0 {
		return nil, errs.Invalid("sqrt ratio must be positive")
	}
	squared := new(big.Int).Mul(sqrtRatio, sqrtRatio)
	scale := v3math.Pow10(token0Decimals)

	if token0Decimals >= token1Decimals {
		return v3math.MulDiv(squared, scale, v3math.Q192), nil
	}
	partial := v3math.MulDiv(squared, scale, v3math.Q96)
	return partial.Div(partial, v3math.Q96), nil
}

// SqrtRatioToToken1Price returns the price of one whole token1 in token0
// base units: floor(Q192 * 10^dec1 / sqrtRatio^2).
func SqrtRatioToToken1Price(sqrtRatio *big.Int, token0Decimals, token1Decimals uint8) (*big.Int, error) {
	if sqrtRatio == nil || sqrtRatio.Sign() <= 0 {
		return nil, errs.Invalid("sqrt ratio must be positive")
	}
	scale := v3math.Pow10(token1Decimals)

	if token1Decimals >= token0Decimals {
		squared := new(big.Int).Mul(sqrtRatio, sqrtRatio)
		return v3math.MulDiv(v3math.Q192, scale, squared), nil
	}
	partial := v3math.MulDiv(v3math.Q192, scale, sqrtRatio)
	return partial.Div(partial, sqrtRatio), nil
}
