package liquidity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/errs"
	"positionScope/internal/v3math"
)

const (
	tickLower = int32(201000)
	tickUpper = int32(204000)
)

func mustBig(t *testing.T, value string) *big.Int {
	t.Helper()
	out, ok := new(big.Int).SetString(value, 10)
	require.True(t, ok, "bad integer %q", value)
	return out
}

func mustSqrt(t *testing.T, tick int32) *big.Int {
	t.Helper()
	out, err := v3math.TickToSqrtRatio(tick)
	require.NoError(t, err)
	return out
}

func TestAmountsForLiquidityInRange(t *testing.T) {
	got, err := AmountsForLiquidity(mustBig(t, "1000000000000000000"), 202500, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, "2896305114847", got.Amount0.String())
	assert.Equal(t, "1802469297706243660939", got.Amount1.String())
}

func TestAmountsForLiquidityBelowRange(t *testing.T) {
	got, err := AmountsForLiquidity(mustBig(t, "2000000000000000000"), 200000, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, "12036349576030", got.Amount0.String())
	assert.Equal(t, "0", got.Amount1.String())
}

func TestAmountsForLiquidityAboveRange(t *testing.T) {
	got, err := AmountsForLiquidity(mustBig(t, "1500000000000000000"), 205000, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, "0", got.Amount0.String())
	assert.Equal(t, "5617972651440315351851", got.Amount1.String())

	atUpper, err := AmountsForLiquidity(mustBig(t, "1500000000000000000"), tickUpper, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, got, atUpper)
}

func TestAmountsForLiquidityAtLowerTickIsAllToken0(t *testing.T) {
	liq := mustBig(t, "2000000000000000000")
	atLower, err := AmountsForLiquidity(liq, tickLower, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	below, err := AmountsForLiquidity(liq, tickLower-1, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	assert.Equal(t, below, atLower)
}

func TestAmountsForLiquidityZero(t *testing.T) {
	for _, ticks := range [][3]int32{{0, 10, 20}, {0, 20, 10}, {v3math.MaxTick + 5, -1, 1}} {
		got, err := AmountsForLiquidity(big.NewInt(0), ticks[0], ticks[1], ticks[2], RoundDown)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Amount0.Sign())
		assert.Equal(t, 0, got.Amount1.Sign())
	}
	got, err := AmountsForLiquidity(nil, 0, 20, 10, RoundUp)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Amount0.Sign())
}

func TestAmountsForLiquidityRejectsBadInput(t *testing.T) {
	liq := big.NewInt(1000)
	_, err := AmountsForLiquidity(liq, 0, 10, 10, RoundDown)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = AmountsForLiquidity(liq, 0, 20, 10, RoundDown)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = AmountsForLiquidity(liq, 0, v3math.MinTick-1, 10, RoundDown)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = AmountsForLiquidity(liq, v3math.MaxTick+1, 0, 10, RoundDown)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
	_, err = AmountsForLiquidity(big.NewInt(-1), 0, -10, 10, RoundDown)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestAmountsForLiquidityRoundUp(t *testing.T) {
	liq := mustBig(t, "1000000000000000000")
	down, err := AmountsForLiquidity(liq, 202500, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	up, err := AmountsForLiquidity(liq, 202500, tickLower, tickUpper, RoundUp)
	require.NoError(t, err)

	one := big.NewInt(1)
	assert.Contains(t, []int64{0, 1}, new(big.Int).Sub(up.Amount0, down.Amount0).Int64())
	assert.Contains(t, []int64{0, 1}, new(big.Int).Sub(up.Amount1, down.Amount1).Int64())
	assert.True(t, up.Amount0.Cmp(new(big.Int).Add(down.Amount0, one)) <= 0)
}

func TestAmountsForSqrtPriceMatchesTickVariant(t *testing.T) {
	liq := mustBig(t, "1000000000000000000")
	byTick, err := AmountsForLiquidity(liq, 202500, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)
	bySqrt, err := AmountsForSqrtPrice(liq, mustSqrt(t, 202500), mustSqrt(t, tickLower), mustSqrt(t, tickUpper), RoundDown)
	require.NoError(t, err)
	assert.Equal(t, byTick, bySqrt)

	_, err = AmountsForSqrtPrice(liq, mustSqrt(t, 202500), mustSqrt(t, tickUpper), mustSqrt(t, tickLower), RoundDown)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestLiquidityForAmountsInverts(t *testing.T) {
	cases := []struct {
		name string
		tick int32
		liq  string
	}{
		{name: "below", tick: 199000, liq: "2000000000000000000"},
		{name: "in range", tick: 202500, liq: "1000000000000000000"},
		{name: "near upper", tick: 203990, liq: "1000000000000000000"},
		{name: "above", tick: 205000, liq: "1500000000000000000"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			liq := mustBig(t, tc.liq)
			amounts, err := AmountsForLiquidity(liq, tc.tick, tickLower, tickUpper, RoundDown)
			require.NoError(t, err)

			back, err := LiquidityForAmounts(tc.tick, tickLower, tickUpper, amounts.Amount0, amounts.Amount1)
			require.NoError(t, err)
			assert.LessOrEqual(t, back.Cmp(liq), 0)

			// within 0.1%
			diff := new(big.Int).Sub(liq, back)
			diff.Mul(diff, big.NewInt(1000))
			assert.LessOrEqual(t, diff.Cmp(liq), 0)
		})
	}
}

func TestLiquidityForAmountsUsesSingleLegOutsideRange(t *testing.T) {
	huge := mustBig(t, "1000000000000000000000000")
	below, err := LiquidityForAmounts(199000, tickLower, tickUpper, big.NewInt(1_000_000), huge)
	require.NoError(t, err)
	belowOnly, err := LiquidityForAmounts(199000, tickLower, tickUpper, big.NewInt(1_000_000), nil)
	require.NoError(t, err)
	assert.Zero(t, below.Cmp(belowOnly))

	_, err = LiquidityForAmounts(199000, tickLower, tickUpper, big.NewInt(-1), nil)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestPositionValue(t *testing.T) {
	liq := mustBig(t, "1000000000000000000")
	// base WETH is token1, price in USDC units at tick 202500
	got, err := PositionValue(liq, 202500, tickLower, tickUpper, big.NewInt(1606854063), false, 18)
	require.NoError(t, err)
	assert.Equal(t, "5792610229299", got.String())

	zero, err := PositionValue(big.NewInt(0), 202500, tickUpper, tickLower, big.NewInt(1), false, 18)
	require.NoError(t, err)
	assert.Equal(t, 0, zero.Sign())

	_, err = PositionValue(liq, 202500, tickLower, tickUpper, big.NewInt(-1), false, 18)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestQuoteValueBaseToken0(t *testing.T) {
	got, err := QuoteValue(Amounts{Amount0: big.NewInt(2_500_000), Amount1: big.NewInt(7)}, big.NewInt(400), true, 6)
	require.NoError(t, err)
	// 2.5 base * 400 + 7
	assert.Equal(t, "1007", got.String())
}

func TestAmountsAreMonotonicAcrossPhases(t *testing.T) {
	liq := mustBig(t, "1000000000000000000")
	prev, err := AmountsForLiquidity(liq, tickLower-500, tickLower, tickUpper, RoundDown)
	require.NoError(t, err)

	for tick := tickLower - 499; tick <= tickUpper+500; tick += 7 {
		cur, err := AmountsForLiquidity(liq, tick, tickLower, tickUpper, RoundDown)
		require.NoError(t, err)
		require.LessOrEqual(t, cur.Amount0.Cmp(prev.Amount0), 0, "amount0 rose at tick %d", tick)
		require.GreaterOrEqual(t, cur.Amount1.Cmp(prev.Amount1), 0, "amount1 fell at tick %d", tick)
		prev = cur
	}
}
