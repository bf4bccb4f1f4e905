package valuation

import "math/big"

// PnL is the quote-denominated gain of a position against its initial value.
type PnL struct {
	Amount  *big.Int
	Percent float64
}

// CalculatePnL returns current-initial and its percentage of initial.
// The percentage is 0 when initial is 0.
func CalculatePnL(currentValue, initialValue *big.Int) PnL {
	current := orZero(currentValue)
	initial := orZero(initialValue)
	amount := new(big.Int).Sub(current, initial)
	return PnL{Amount: amount, Percent: Percent(amount, initial)}
}

// Percent returns numerator/denominator*100 truncated to two decimals
// through integer basis points. A zero denominator yields 0.
func Percent(numerator, denominator *big.Int) float64 {
	if numerator == nil || denominator == nil || denominator.Sign() == 0 {
		return 0
	}
	bps := new(big.Int).Mul(numerator, big.NewInt(10000))
	bps.Quo(bps, denominator)
	f, _ := new(big.Float).SetInt(bps).Float64()
	return f / 100
}

func orZero(v *big.Int) *big.Int {
	if v == nil {
		return new(big.Int)
	}
	return v
}
