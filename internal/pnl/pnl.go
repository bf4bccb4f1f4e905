package pnl

import (
	"math/big"

	"positionScope/internal/errs"
	"positionScope/internal/model"
	"positionScope/internal/valuation"
)

// Valuation is the live state the event fold is measured against, in quote
// units.
type Valuation struct {
	CurrentValue *big.Int
	Unclaimed    *big.Int
}

// Result is the PnL breakdown of one position.
type Result struct {
	Invested           *big.Int
	Withdrawn          *big.Int
	Collected          *big.Int
	Unclaimed          *big.Int
	TotalFeeIncome     *big.Int
	CurrentValue       *big.Int
	CostBasis          *big.Int
	WithdrawnCostBasis *big.Int
	RealizedPnL        *big.Int
	UnrealizedPnL      *big.Int
	TotalPnL           *big.Int
	ROI                float64
	RealizedROI        float64
	Confidence         model.Confidence
	EventCount         int
}

// Calculate folds a position's events into invested/withdrawn/fee totals and
// splits PnL into realized and unrealized parts.
//
// Withdrawals release cost basis pro rata to value:
// withdrawnCostBasis = floor(invested*withdrawn/(withdrawn+currentValue)).
// This is an average-cost approximation, not lot tracking.
func Calculate(events []model.PositionEvent, val Valuation) (Result, error) {
	if len(events) == 0 {
		return Result{}, errs.NotFound("no events for position")
	}

	currentValue := copyOrZero(val.CurrentValue)
	unclaimed := copyOrZero(val.Unclaimed)
	if currentValue.Sign() < 0 || unclaimed.Sign() < 0 {
		return Result{}, errs.Invalid("current value and unclaimed fees must not be negative")
	}

	invested := new(big.Int)
	withdrawn := new(big.Int)
	collected := new(big.Int)
	confidence := model.ConfidenceExact

	for _, ev := range events {
		switch {
		case ev.Type.AddsCapital():
			absAdd(invested, ev.ValueInQuote)
		case ev.Type.RemovesCapital():
			absAdd(withdrawn, ev.ValueInQuote)
		case ev.Type == model.EventCollect:
			absAdd(collected, ev.FeeValueInQuote)
		}
		if ev.Confidence == model.ConfidenceEstimated {
			confidence = model.ConfidenceEstimated
		}
	}

	withdrawnCostBasis := new(big.Int)
	if withdrawn.Sign() > 0 {
		denominator := new(big.Int).Add(withdrawn, currentValue)
		withdrawnCostBasis.Mul(invested, withdrawn)
		withdrawnCostBasis.Quo(withdrawnCostBasis, denominator)
	}
	costBasis := new(big.Int).Sub(invested, withdrawnCostBasis)

	realized := new(big.Int).Sub(withdrawn, withdrawnCostBasis)
	realized.Add(realized, collected)

	unrealized := new(big.Int).Sub(currentValue, costBasis)
	unrealized.Add(unrealized, unclaimed)

	total := new(big.Int).Add(realized, unrealized)

	return Result{
		Invested:           invested,
		Withdrawn:          withdrawn,
		Collected:          collected,
		Unclaimed:          unclaimed,
		TotalFeeIncome:     new(big.Int).Add(collected, unclaimed),
		CurrentValue:       currentValue,
		CostBasis:          costBasis,
		WithdrawnCostBasis: withdrawnCostBasis,
		RealizedPnL:        realized,
		UnrealizedPnL:      unrealized,
		TotalPnL:           total,
		ROI:                valuation.Percent(total, invested),
		RealizedROI:        valuation.Percent(realized, invested),
		Confidence:         confidence,
		EventCount:         len(events),
	}, nil
}

// CalculateForPosition values the position against the pool snapshot and
// folds events against that value and the snapshot's unclaimed fees.
func CalculateForPosition(events []model.PositionEvent, pool model.PoolSnapshot, position model.PositionSnapshot) (Result, valuation.PositionValuation, error) {
	valued, err := valuation.ValuePosition(pool, position)
	if err != nil {
		return Result{}, valuation.PositionValuation{}, err
	}
	result, err := Calculate(events, Valuation{
		CurrentValue: valued.Value,
		Unclaimed:    valued.UnclaimedFees,
	})
	if err != nil {
		return Result{}, valuation.PositionValuation{}, err
	}
	return result, valued, nil
}

func absAdd(target, value *big.Int) {
	if value == nil {
		return
	}
	target.Add(target, new(big.Int).Abs(value))
}

func copyOrZero(value *big.Int) *big.Int {
	if value == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(value)
}
