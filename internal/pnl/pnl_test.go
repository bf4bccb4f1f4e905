package pnl

import (
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/errs"
	"positionScope/internal/model"
)

func event(typ model.EventType, block uint64, value, fee int64) model.PositionEvent {
	ev := model.PositionEvent{
		PositionID:  "1",
		Type:        typ,
		BlockNumber: block,
		Timestamp:   time.Unix(int64(block)*12, 0),
		Confidence:  model.ConfidenceExact,
	}
	if value != 0 {
		ev.ValueInQuote = big.NewInt(value)
	}
	if fee != 0 {
		ev.FeeValueInQuote = big.NewInt(fee)
	}
	return ev
}

func TestCalculateAverageCostBasis(t *testing.T) {
	events := []model.PositionEvent{
		event(model.EventCreate, 1, 1000, 0),
		event(model.EventDecrease, 2, 300, 0),
		event(model.EventCollect, 3, 0, 100),
	}

	got, err := Calculate(events, Valuation{CurrentValue: big.NewInt(800), Unclaimed: big.NewInt(50)})
	require.NoError(t, err)

	assert.Equal(t, "1000", got.Invested.String())
	assert.Equal(t, "300", got.Withdrawn.String())
	assert.Equal(t, "100", got.Collected.String())
	assert.Equal(t, "272", got.WithdrawnCostBasis.String())
	assert.Equal(t, "728", got.CostBasis.String())
	assert.Equal(t, "128", got.RealizedPnL.String())
	assert.Equal(t, "122", got.UnrealizedPnL.String())
	assert.Equal(t, "250", got.TotalPnL.String())
	assert.Equal(t, "150", got.TotalFeeIncome.String())
	assert.InDelta(t, 25.0, got.ROI, 1e-9)
	assert.InDelta(t, 12.8, got.RealizedROI, 1e-9)
	assert.Equal(t, model.ConfidenceExact, got.Confidence)
	assert.Equal(t, 3, got.EventCount)
}

func TestCalculateWithoutWithdrawals(t *testing.T) {
	events := []model.PositionEvent{
		event(model.EventCreate, 1, 1000, 0),
		event(model.EventIncrease, 2, 500, 0),
	}
	got, err := Calculate(events, Valuation{CurrentValue: big.NewInt(1400)})
	require.NoError(t, err)
	assert.Equal(t, "1500", got.CostBasis.String())
	assert.Equal(t, "0", got.WithdrawnCostBasis.String())
	assert.Equal(t, "0", got.RealizedPnL.String())
	assert.Equal(t, "-100", got.UnrealizedPnL.String())
	assert.InDelta(t, -6.66, got.ROI, 1e-9)
}

func TestCalculateFullyClosed(t *testing.T) {
	events := []model.PositionEvent{
		event(model.EventCreate, 1, 1000, 0),
		event(model.EventClose, 2, 1100, 0),
	}
	got, err := Calculate(events, Valuation{})
	require.NoError(t, err)
	assert.Equal(t, "0", got.CostBasis.String())
	assert.Equal(t, "100", got.RealizedPnL.String())
	assert.Equal(t, "0", got.UnrealizedPnL.String())
}

func TestCalculateUsesMagnitudes(t *testing.T) {
	events := []model.PositionEvent{
		event(model.EventCreate, 1, 1000, 0),
		event(model.EventDecrease, 2, -300, 0),
	}
	got, err := Calculate(events, Valuation{CurrentValue: big.NewInt(800)})
	require.NoError(t, err)
	assert.Equal(t, "300", got.Withdrawn.String())
	assert.Equal(t, "728", got.CostBasis.String())
}

func TestCalculateEstimatedConfidence(t *testing.T) {
	estimated := event(model.EventIncrease, 2, 10, 0)
	estimated.Confidence = model.ConfidenceEstimated
	got, err := Calculate([]model.PositionEvent{event(model.EventCreate, 1, 100, 0), estimated}, Valuation{})
	require.NoError(t, err)
	assert.Equal(t, model.ConfidenceEstimated, got.Confidence)
}

func TestCalculateErrors(t *testing.T) {
	_, err := Calculate(nil, Valuation{})
	assert.ErrorIs(t, err, errs.ErrNotFound)

	_, err = Calculate([]model.PositionEvent{event(model.EventCreate, 1, 100, 0)}, Valuation{CurrentValue: big.NewInt(-1)})
	assert.ErrorIs(t, err, errs.ErrInvalidArgument)
}

func TestCalculateZeroInvested(t *testing.T) {
	got, err := Calculate([]model.PositionEvent{event(model.EventCollect, 1, 0, 5)}, Valuation{})
	require.NoError(t, err)
	assert.Equal(t, "5", got.RealizedPnL.String())
	assert.Zero(t, got.ROI)
}

func TestCalculateForPosition(t *testing.T) {
	tick := int32(202500)
	pool := model.PoolSnapshot{
		Token0:         common.HexToAddress("0xA0b86991c6218b36c1d19D4a2e9Eb0cE3606eB48"),
		Token1:         common.HexToAddress("0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"),
		Token0Decimals: 6,
		Token1Decimals: 18,
		TickSpacing:    10,
		CurrentTick:    &tick,
	}
	position := model.PositionSnapshot{
		Liquidity:     big.NewInt(1_000_000_000_000_000_000),
		TickLower:     201000,
		TickUpper:     204000,
		QuoteIsToken0: true,
		UnclaimedFee0: big.NewInt(1_000_000),
		UnclaimedFee1: big.NewInt(1_000_000_000_000_000),
	}
	events := []model.PositionEvent{event(model.EventCreate, 1, 5_000_000_000_000, 0)}

	got, valued, err := CalculateForPosition(events, pool, position)
	require.NoError(t, err)
	assert.Equal(t, "5792610229299", valued.Value.String())
	assert.Equal(t, "5792610229299", got.CurrentValue.String())
	assert.Equal(t, "2606854", got.Unclaimed.String())
	// 5792610229299 - 5000000000000 + 2606854
	assert.Equal(t, "792612836153", got.UnrealizedPnL.String())
}
