package v3math

import "math/big"

// MulDiv returns floor(a*b/denominator). Operands are non-negative and
// denominator is positive; callers validate before reaching here.
func MulDiv(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	return product.Div(product, denominator)
}

// MulDivRoundingUp returns ceil(a*b/denominator).
func MulDivRoundingUp(a, b, denominator *big.Int) *big.Int {
	product := new(big.Int).Mul(a, b)
	quotient, remainder := new(big.Int).DivMod(product, denominator, new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return quotient
}

// DivRoundingUp returns ceil(a/denominator).
func DivRoundingUp(a, denominator *big.Int) *big.Int {
	quotient, remainder := new(big.Int).DivMod(a, denominator, new(big.Int))
	if remainder.Sign() != 0 {
		quotient.Add(quotient, big.NewInt(1))
	}
	return quotient
}

// Sqrt returns floor(sqrt(x)); non-positive input yields 0.
func Sqrt(x *big.Int) *big.Int {
	if x == nil || x.Sign() <= 0 {
		return new(big.Int)
	}
	return new(big.Int).Sqrt(x)
}
