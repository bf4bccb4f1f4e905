package v3math

import (
	"math/big"

	"github.com/holiman/uint256"

	"positionScope/internal/errs"
)

var (
	ratioOddTick = uint256.MustFromHex("0xfffcb933bd6fad37aa2d162d1a594001")
	ratioOne     = new(uint256.Int).Lsh(uint256.NewInt(1), 128)
	uint256Max   = new(uint256.Int).Not(uint256.NewInt(0))

	// tickMultipliers[i] is 2^128 / sqrt(1.0001^(2^(i+1))).
	tickMultipliers = [19]*uint256.Int{
		uint256.MustFromHex("0xfff97272373d413259a46990580e213a"),
		uint256.MustFromHex("0xfff2e50f5f656932ef12357cf3c7fdcc"),
		uint256.MustFromHex("0xffe5caca7e10e4e61c3624eaa0941cd0"),
		uint256.MustFromHex("0xffcb9843d60f6159c9db58835c926644"),
		uint256.MustFromHex("0xff973b41fa98c081472e6896dfb254c0"),
		uint256.MustFromHex("0xff2ea16466c96a3843ec78b326b52861"),
		uint256.MustFromHex("0xfe5dee046a99a2a811c461f1969c3053"),
		uint256.MustFromHex("0xfcbe86c7900a88aedcffc83b479aa3a4"),
		uint256.MustFromHex("0xf987a7253ac413176f2b074cf7815e54"),
		uint256.MustFromHex("0xf3392b0822b70005940c7a398e4b70f3"),
		uint256.MustFromHex("0xe7159475a2c29b7443b29c7fa6e889d9"),
		uint256.MustFromHex("0xd097f3bdfd2022b8845ad8f792aa5825"),
		uint256.MustFromHex("0xa9f746462d870fdf8a65dc1f90e061e5"),
		uint256.MustFromHex("0x70d869a156d2a1b890bb3df62baf32f7"),
		uint256.MustFromHex("0x31be135f97d08fd981231505542fcfa6"),
		uint256.MustFromHex("0x9aa508b5b7a84e1c677de54f3e99bc9"),
		uint256.MustFromHex("0x5d6af8dedb81196699c329225ee604"),
		uint256.MustFromHex("0x2216e584f5fa1ea926041bedfe98"),
		uint256.MustFromHex("0x48a170391f7dc42444e8fa2"),
	}

	log2Sqrt10001  = mustBig("255738958999603826347141")
	tickLowOffset  = mustBig("3402992956809132418596140100660247210")
	tickHighOffset = mustBig("291339464771989622907027621153398088495")
)

// TickToSqrtRatio returns sqrt(1.0001^tick) as a Q64.96 value, rounded up.
func TickToSqrtRatio(tick int32) (*big.Int, error) {
	if tick < MinTick || tick > MaxTick {
		return nil, errs.Invalid("tick %d outside [%d, %d]", tick, MinTick, MaxTick)
	}

	absTick := uint64(tick)
	if tick < 0 {
		absTick = uint64(-int64(tick))
	}

	ratio := new(uint256.Int)
	if absTick&1 != 0 {
		ratio.Set(ratioOddTick)
	} else {
		ratio.Set(ratioOne)
	}
	for i, multiplier := range tickMultipliers {
		if absTick&(1<<uint(i+1)) != 0 {
			ratio.Mul(ratio, multiplier)
			ratio.Rsh(ratio, 128)
		}
	}

	if tick > 0 {
		ratio.Div(uint256Max, ratio)
	}

	// Q128.128 to Q64.96, rounded up.
	roundUp := ratio[0]&0xffffffff != 0
	ratio.Rsh(ratio, 32)
	if roundUp {
		ratio.AddUint64(ratio, 1)
	}
	return ratio.ToBig(), nil
}

// SqrtRatioToTick returns the greatest tick whose sqrt ratio is <= sqrtRatio.
func SqrtRatioToTick(sqrtRatio *big.Int) (int32, error) {
	if sqrtRatio == nil {
		return 0, errs.Invalid("sqrt ratio is required")
	}
	if sqrtRatio.Cmp(MinSqrtRatio) < 0 || sqrtRatio.Cmp(MaxSqrtRatio) > 0 {
		return 0, errs.Invalid("sqrt ratio %s outside [%s, %s]", sqrtRatio, MinSqrtRatio, MaxSqrtRatio)
	}

	ratio := new(big.Int).Lsh(sqrtRatio, 32)
	msb := ratio.BitLen() - 1

	r := new(big.Int)
	if msb >= 128 {
		r.Rsh(ratio, uint(msb-127))
	} else {
		r.Lsh(ratio, uint(127-msb))
	}

	log2 := new(big.Int).Lsh(big.NewInt(int64(msb-128)), 64)
	bit := new(big.Int)
	for i := 63; i >= 50; i-- {
		r.Mul(r, r)
		r.Rsh(r, 127)
		if r.Bit(128) == 1 {
			log2.Add(log2, bit.Lsh(big.NewInt(1), uint(i)))
			r.Rsh(r, 1)
		}
	}

	logSqrt := new(big.Int).Mul(log2, log2Sqrt10001)
	low := new(big.Int).Sub(logSqrt, tickLowOffset)
	low.Rsh(low, 128)
	high := new(big.Int).Add(logSqrt, tickHighOffset)
	high.Rsh(high, 128)

	tickLow := int32(low.Int64())
	tickHigh := int32(high.Int64())
	if tickLow == tickHigh {
		return tickLow, nil
	}
	atHigh, err := TickToSqrtRatio(tickHigh)
	if err == nil && atHigh.Cmp(sqrtRatio) <= 0 {
		return tickHigh, nil
	}
	return tickLow, nil
}
