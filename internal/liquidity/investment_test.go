package liquidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/errs"
	"positionScope/internal/price"
)

// WETH/USDC: USDC sorts first, so a WETH-base position has quote as token0.
func wethUSDCInvestment(t *testing.T) Investment {
	return Investment{
		BaseAmount:    mustBig(t, "1000000000000000000"),
		BaseDecimals:  18,
		QuoteAmount:   big.NewInt(2_000_000_000),
		QuoteDecimals: 6,
		QuoteIsToken0: true,
	}
}

func TestLiquidityForInvestmentInRange(t *testing.T) {
	got, err := LiquidityForInvestment(wethUSDCInvestment(t), mustSqrt(t, tickLower), mustSqrt(t, tickUpper), mustSqrt(t, 202500))
	require.NoError(t, err)
	assert.Equal(t, "622664726259278", got.String())
}

func TestLiquidityForInvestmentSpendsBudget(t *testing.T) {
	sqrtLower := mustSqrt(t, tickLower)
	sqrtUpper := mustSqrt(t, tickUpper)

	investments := map[string]Investment{
		"quote token0": wethUSDCInvestment(t),
		"quote token1": {
			BaseAmount:    big.NewInt(2_000_000_000),
			BaseDecimals:  6,
			QuoteAmount:   mustBig(t, "1000000000000000000"),
			QuoteDecimals: 18,
			QuoteIsToken0: false,
		},
	}

	for name, inv := range investments {
		for _, tick := range []int32{199000, tickLower, 202500, tickUpper - 1, tickUpper, 206000} {
			sqrtCurrent := mustSqrt(t, tick)
			liq, err := LiquidityForInvestment(inv, sqrtLower, sqrtUpper, sqrtCurrent)
			require.NoError(t, err, "%s tick %d", name, tick)
			require.Equal(t, 1, liq.Sign(), "%s tick %d", name, tick)

			budget, err := inv.BudgetInQuote(sqrtCurrent)
			require.NoError(t, err)

			amounts, err := AmountsForSqrtPrice(liq, sqrtCurrent, sqrtLower, sqrtUpper, RoundDown)
			require.NoError(t, err)

			var basePrice *big.Int
			if inv.QuoteIsToken0 {
				basePrice, err = price.SqrtRatioToToken1Price(sqrtCurrent, inv.QuoteDecimals, inv.BaseDecimals)
			} else {
				basePrice, err = price.SqrtRatioToToken0Price(sqrtCurrent, inv.BaseDecimals, inv.QuoteDecimals)
			}
			require.NoError(t, err)
			spent, err := QuoteValue(amounts, basePrice, !inv.QuoteIsToken0, inv.BaseDecimals)
			require.NoError(t, err)

			assert.LessOrEqual(t, spent.Cmp(budget), 0, "%s tick %d", name, tick)
			// within one part per million
			slack := new(big.Int).Sub(budget, spent)
			slack.Mul(slack, big.NewInt(1_000_000))
			assert.LessOrEqual(t, slack.Cmp(budget), 0, "%s tick %d", name, tick)
		}
	}
}

func TestLiquidityForInvestmentEmptyBudget(t *testing.T) {
	got, err := LiquidityForInvestment(Investment{BaseDecimals: 18, QuoteDecimals: 6, QuoteIsToken0: true},
		mustSqrt(t, tickLower), mustSqrt(t, tickUpper), mustSqrt(t, 202500))
	require.NoError(t, err)
	assert.Equal(t, 0, got.Sign())
}

func TestLiquidityForInvestmentRejectsBadInput(t *testing.T) {
	inv := wethUSDCInvestment(t)
	_, err := LiquidityForInvestment(inv, mustSqrt(t, tickUpper), mustSqrt(t, tickLower), mustSqrt(t, 202500))
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	inv.QuoteAmount = big.NewInt(-1)
	_, err = LiquidityForInvestment(inv, mustSqrt(t, tickLower), mustSqrt(t, tickUpper), mustSqrt(t, 202500))
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}
