package dex

import (
	"math/big"

	"github.com/holiman/uint256"

	"positionScope/internal/errs"
)

// FeeGrowth is a pair of Q128.128 fee growth accumulators, one per token.
type FeeGrowth struct {
	Token0 *big.Int
	Token1 *big.Int
}

// TickFees holds the outside accumulators stored on an initialized tick.
type TickFees struct {
	Outside0 *big.Int
	Outside1 *big.Int
}

// PositionFees is the fee bookkeeping the position manager keeps per NFT.
type PositionFees struct {
	Liquidity   *big.Int
	InsideLast0 *big.Int
	InsideLast1 *big.Int
	TokensOwed0 *big.Int
	TokensOwed1 *big.Int
	TickLower   int32
	TickUpper   int32
}

// FeeGrowthInside returns the fee growth inside [lower, upper) at the current
// tick. All arithmetic wraps modulo 2^256 like the pool contract.
func FeeGrowthInside(tick int32, lowerTick, upperTick int32, global FeeGrowth, lower, upper TickFees) (FeeGrowth, error) {
	g0, err := toWord(global.Token0)
	if err != nil {
		return FeeGrowth{}, err
	}
	g1, err := toWord(global.Token1)
	if err != nil {
		return FeeGrowth{}, err
	}
	lo0, err := toWord(lower.Outside0)
	if err != nil {
		return FeeGrowth{}, err
	}
	lo1, err := toWord(lower.Outside1)
	if err != nil {
		return FeeGrowth{}, err
	}
	up0, err := toWord(upper.Outside0)
	if err != nil {
		return FeeGrowth{}, err
	}
	up1, err := toWord(upper.Outside1)
	if err != nil {
		return FeeGrowth{}, err
	}

	below0, below1 := lo0, lo1
	if tick < lowerTick {
		below0 = new(uint256.Int).Sub(g0, lo0)
		below1 = new(uint256.Int).Sub(g1, lo1)
	}
	above0, above1 := up0, up1
	if tick >= upperTick {
		above0 = new(uint256.Int).Sub(g0, up0)
		above1 = new(uint256.Int).Sub(g1, up1)
	}

	inside0 := new(uint256.Int).Sub(g0, below0)
	inside0.Sub(inside0, above0)
	inside1 := new(uint256.Int).Sub(g1, below1)
	inside1.Sub(inside1, above1)

	return FeeGrowth{Token0: inside0.ToBig(), Token1: inside1.ToBig()}, nil
}

// UnclaimedFees returns tokensOwed plus the fees earned since the position's
// last checkpoint: liquidity*(inside-insideLast)/2^128 per token.
func UnclaimedFees(pos PositionFees, inside FeeGrowth) (*big.Int, *big.Int, error) {
	fee0, err := accrued(pos.Liquidity, inside.Token0, pos.InsideLast0)
	if err != nil {
		return nil, nil, err
	}
	fee1, err := accrued(pos.Liquidity, inside.Token1, pos.InsideLast1)
	if err != nil {
		return nil, nil, err
	}
	if pos.TokensOwed0 != nil {
		fee0.Add(fee0, pos.TokensOwed0)
	}
	if pos.TokensOwed1 != nil {
		fee1.Add(fee1, pos.TokensOwed1)
	}
	return fee0, fee1, nil
}

func accrued(liquidity, inside, last *big.Int) (*big.Int, error) {
	now, err := toWord(inside)
	if err != nil {
		return nil, err
	}
	prev, err := toWord(last)
	if err != nil {
		return nil, err
	}
	delta := new(uint256.Int).Sub(now, prev).ToBig()
	if liquidity == nil {
		return new(big.Int), nil
	}
	delta.Mul(delta, liquidity)
	return delta.Rsh(delta, 128), nil
}

func toWord(v *big.Int) (*uint256.Int, error) {
	if v == nil {
		return new(uint256.Int), nil
	}
	if v.Sign() < 0 {
		return nil, errs.Invalid("negative fee growth %s", v)
	}
	word, overflow := uint256.FromBig(v)
	if overflow {
		return nil, errs.Invalid("fee growth %s exceeds 256 bits", v)
	}
	return word, nil
}
