package valuation

import (
	"math/big"

	"positionScope/internal/liquidity"
	"positionScope/internal/model"
	"positionScope/internal/price"
)

// PositionValuation is a position valued against a pool snapshot.
type PositionValuation struct {
	Pair          price.Pair
	Tick          int32
	Phase         Phase
	Price         *big.Int
	Amounts       liquidity.Amounts
	Value         *big.Int
	UnclaimedFees *big.Int
}

// PairFor returns the base/quote pair implied by the position's quote flag.
func PairFor(pool model.PoolSnapshot, quoteIsToken0 bool) price.Pair {
	if quoteIsToken0 {
		return price.Pair{Base: pool.Token1, Quote: pool.Token0, BaseDecimals: pool.Token1Decimals}
	}
	return price.Pair{Base: pool.Token0, Quote: pool.Token1, BaseDecimals: pool.Token0Decimals}
}

// ValuePosition prices a position at the pool's current tick.
func ValuePosition(pool model.PoolSnapshot, position model.PositionSnapshot) (PositionValuation, error) {
	tick, err := pool.Tick()
	if err != nil {
		return PositionValuation{}, err
	}
	pair := PairFor(pool, position.QuoteIsToken0)
	current, err := price.TickToPrice(tick, pair)
	if err != nil {
		return PositionValuation{}, err
	}
	amounts, err := liquidity.AmountsForLiquidity(position.Liquidity, tick, position.TickLower, position.TickUpper, liquidity.RoundDown)
	if err != nil {
		return PositionValuation{}, err
	}
	baseIsToken0 := pair.BaseIsToken0()
	value, err := liquidity.QuoteValue(amounts, current, baseIsToken0, pair.BaseDecimals)
	if err != nil {
		return PositionValuation{}, err
	}
	unclaimed, err := liquidity.QuoteValue(liquidity.Amounts{
		Amount0: position.UnclaimedFee0,
		Amount1: position.UnclaimedFee1,
	}, current, baseIsToken0, pair.BaseDecimals)
	if err != nil {
		return PositionValuation{}, err
	}

	return PositionValuation{
		Pair:          pair,
		Tick:          tick,
		Phase:         DeterminePhase(tick, position.TickLower, position.TickUpper),
		Price:         current,
		Amounts:       amounts,
		Value:         value,
		UnclaimedFees: unclaimed,
	}, nil
}
