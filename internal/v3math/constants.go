package v3math

import "math/big"

const (
	// MinTick is the lowest tick whose sqrt ratio fits the Q64.96 encoding.
	MinTick int32 = -887272
	// MaxTick is the highest tick whose sqrt ratio fits the Q64.96 encoding.
	MaxTick int32 = 887272
)

var (
	// Q96 is 2^96, the scale of a Q64.96 sqrt price.
	Q96 = new(big.Int).Lsh(big.NewInt(1), 96)
	// Q192 is 2^192, the scale of a squared Q64.96 sqrt price.
	Q192 = new(big.Int).Lsh(big.NewInt(1), 192)

	// MinSqrtRatio is TickToSqrtRatio(MinTick).
	MinSqrtRatio = big.NewInt(4295128739)
	// MaxSqrtRatio is TickToSqrtRatio(MaxTick).
	MaxSqrtRatio = mustBig("1461446703485210103287273052203988822378723970342")
)

func mustBig(value string) *big.Int {
	out, ok := new(big.Int).SetString(value, 10)
	if !ok {
		panic("v3math: bad constant " + value)
	}
	return out
}

// Pow10 returns 10^n as a fresh big.Int.
func Pow10(n uint8) *big.Int {
	return new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n)), nil)
}
