package valuation

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/errs"
	"positionScope/internal/price"
)

var wethInUSDC = price.Pair{
	Base:         common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
	Quote:        common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
	BaseDecimals: 18,
}

func TestDeterminePhase(t *testing.T) {
	assert.Equal(t, PhaseBelow, DeterminePhase(200999, 201000, 204000))
	assert.Equal(t, PhaseInRange, DeterminePhase(201000, 201000, 204000))
	assert.Equal(t, PhaseInRange, DeterminePhase(203999, 201000, 204000))
	assert.Equal(t, PhaseAbove, DeterminePhase(204000, 201000, 204000))
	assert.Equal(t, PhaseAbove, DeterminePhase(300000, 201000, 204000))
}

func TestCalculatePnL(t *testing.T) {
	cases := []struct {
		current, initial int64
		pnl              int64
		percent          float64
	}{
		{current: 1100, initial: 1000, pnl: 100, percent: 10},
		{current: 900, initial: 1000, pnl: -100, percent: -10},
		{current: 4, initial: 3, pnl: 1, percent: 33.33},
		{current: 1, initial: 3, pnl: -2, percent: -66.66},
		{current: 500, initial: 0, pnl: 500, percent: 0},
	}
	for _, tc := range cases {
		got := CalculatePnL(big.NewInt(tc.current), big.NewInt(tc.initial))
		assert.Equal(t, tc.pnl, got.Amount.Int64())
		assert.InDelta(t, tc.percent, got.Percent, 1e-9)
	}

	got := CalculatePnL(nil, nil)
	assert.Equal(t, 0, got.Amount.Sign())
	assert.Zero(t, got.Percent)
}

func curveParams(numPoints int) CurveParams {
	return CurveParams{
		Liquidity:    big.NewInt(1_000_000_000_000_000_000),
		TickLower:    201000,
		TickUpper:    204000,
		InitialValue: big.NewInt(5792610229299),
		Pair:         wethInUSDC,
		TickSpacing:  60,
		MinPrice:     big.NewInt(1_000_000_000),
		MaxPrice:     big.NewInt(3_000_000_000),
		NumPoints:    numPoints,
	}
}

func TestGeneratePnLCurve(t *testing.T) {
	points, err := GeneratePnLCurve(curveParams(4))
	require.NoError(t, err)
	require.Len(t, points, 5)

	want := []struct {
		price   int64
		tick    int32
		phase   Phase
		value   int64
		percent float64
	}{
		{price: 1000000000, tick: 207240, phase: PhaseAbove, value: 3745315100960, percent: -35.34},
		{price: 1500000000, tick: 203160, phase: PhaseInRange, value: 5554232471506, percent: -4.11},
		{price: 2000000000, tick: 200280, phase: PhaseBelow, value: 6018174788015, percent: 3.89},
		{price: 2500000000, tick: 198060, phase: PhaseBelow, value: 6018174788015, percent: 3.89},
		{price: 3000000000, tick: 196200, phase: PhaseBelow, value: 6018174788015, percent: 3.89},
	}
	for i, w := range want {
		p := points[i]
		assert.Equal(t, w.price, p.Price.Int64(), "point %d", i)
		assert.Equal(t, w.tick, p.Tick, "point %d", i)
		assert.Equal(t, w.phase, p.Phase, "point %d", i)
		assert.Equal(t, w.value, p.Value.Int64(), "point %d", i)
		assert.Equal(t, w.value-5792610229299, p.PnL.Int64(), "point %d", i)
		assert.InDelta(t, w.percent, p.PnLPercent, 1e-9, "point %d", i)
	}
}

func TestGeneratePnLCurveDefaultsTo150Intervals(t *testing.T) {
	points, err := GeneratePnLCurve(curveParams(0))
	require.NoError(t, err)
	require.Len(t, points, DefaultCurvePoints+1)
	assert.Equal(t, int64(1_000_000_000), points[0].Price.Int64())
	assert.Equal(t, int64(3_000_000_000), points[DefaultCurvePoints].Price.Int64())

	for i := 1; i < len(points); i++ {
		assert.Equal(t, 1, points[i].Price.Cmp(points[i-1].Price))
	}
}

func TestGeneratePnLCurveRejectsBadRange(t *testing.T) {
	params := curveParams(10)
	params.MinPrice = big.NewInt(0)
	_, err := GeneratePnLCurve(params)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	params = curveParams(10)
	params.MaxPrice = big.NewInt(10)
	_, err = GeneratePnLCurve(params)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	params = curveParams(10)
	params.TickSpacing = 0
	_, err = GeneratePnLCurve(params)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)

	params = curveParams(10)
	params.TickLower, params.TickUpper = params.TickUpper, params.TickLower
	_, err = GeneratePnLCurve(params)
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestGeneratePnLCurveSinglePrice(t *testing.T) {
	params := curveParams(3)
	params.MaxPrice = params.MinPrice
	points, err := GeneratePnLCurve(params)
	require.NoError(t, err)
	require.Len(t, points, 4)
	for _, p := range points {
		assert.Zero(t, p.Price.Cmp(params.MinPrice))
	}
}
