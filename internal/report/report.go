package report

import (
	"math/big"

	"positionScope/internal/apr"
	"positionScope/internal/model"
	"positionScope/internal/pnl"
	"positionScope/internal/valuation"
)

// Units carries the decimals needed to render a position's amounts.
type Units struct {
	Token0Decimals uint8
	Token1Decimals uint8
	QuoteIsToken0  bool
}

// UnitsFor derives rendering units from a pool and the position's quote side.
func UnitsFor(pool model.PoolSnapshot, quoteIsToken0 bool) Units {
	return Units{
		Token0Decimals: pool.Token0Decimals,
		Token1Decimals: pool.Token1Decimals,
		QuoteIsToken0:  quoteIsToken0,
	}
}

// QuoteDecimals returns the decimals of the quote token.
func (u Units) QuoteDecimals() uint8 {
	if u.QuoteIsToken0 {
		return u.Token0Decimals
	}
	return u.Token1Decimals
}

// Amount is an integer amount next to its human-readable form.
type Amount struct {
	Raw   string `json:"raw"`
	Human string `json:"human"`
}

func NewAmount(value *big.Int, decimals uint8) Amount {
	return Amount{Raw: model.FormatBigInt(value), Human: FormatAmount(value, decimals)}
}

// ValueReport is the rendered valuation of a position.
type ValueReport struct {
	Tick          int32    `json:"tick"`
	Phase         string   `json:"phase"`
	Price         Amount   `json:"price"`
	Amount0       Amount   `json:"amount0"`
	Amount1       Amount   `json:"amount1"`
	Value         Amount   `json:"value"`
	UnclaimedFees Amount   `json:"unclaimed_fees"`
	PnL           *PnLLine `json:"pnl,omitempty"`
}

// PnLLine compares current value with an initial value.
type PnLLine struct {
	InitialValue Amount `json:"initial_value"`
	PnL          Amount `json:"pnl"`
	Percent      string `json:"percent"`
}

// NewValueReport renders a position valuation. The PnL line is set only when
// initial is non-nil.
func NewValueReport(v valuation.PositionValuation, units Units, initial *big.Int) ValueReport {
	quote := units.QuoteDecimals()
	out := ValueReport{
		Tick:          v.Tick,
		Phase:         string(v.Phase),
		Price:         NewAmount(v.Price, quote),
		Amount0:       NewAmount(v.Amounts.Amount0, units.Token0Decimals),
		Amount1:       NewAmount(v.Amounts.Amount1, units.Token1Decimals),
		Value:         NewAmount(v.Value, quote),
		UnclaimedFees: NewAmount(v.UnclaimedFees, quote),
	}
	if initial != nil {
		pl := valuation.CalculatePnL(v.Value, initial)
		out.PnL = &PnLLine{
			InitialValue: NewAmount(initial, quote),
			PnL:          NewAmount(pl.Amount, quote),
			Percent:      FormatPercent(pl.Percent),
		}
	}
	return out
}

// CurvePointRecord is one line of a rendered PnL curve.
type CurvePointRecord struct {
	Price      Amount  `json:"price"`
	Tick       int32   `json:"tick"`
	Value      Amount  `json:"value"`
	PnL        Amount  `json:"pnl"`
	PnLPercent float64 `json:"pnl_percent"`
	Phase      string  `json:"phase"`
}

func NewCurvePointRecord(p valuation.CurvePoint, quoteDecimals uint8) CurvePointRecord {
	return CurvePointRecord{
		Price:      NewAmount(p.Price, quoteDecimals),
		Tick:       p.Tick,
		Value:      NewAmount(p.Value, quoteDecimals),
		PnL:        NewAmount(p.PnL, quoteDecimals),
		PnLPercent: p.PnLPercent,
		Phase:      string(p.Phase),
	}
}

// PnLReport is the rendered event PnL and APR of a position.
type PnLReport struct {
	PositionID         string                      `json:"position_id"`
	ComputationID      string                      `json:"computation_id,omitempty"`
	EventCount         int                         `json:"event_count"`
	Confidence         string                      `json:"confidence"`
	Invested           Amount                      `json:"invested"`
	Withdrawn          Amount                      `json:"withdrawn"`
	Collected          Amount                      `json:"collected"`
	Unclaimed          Amount                      `json:"unclaimed"`
	TotalFeeIncome     Amount                      `json:"total_fee_income"`
	CurrentValue       Amount                      `json:"current_value"`
	CostBasis          Amount                      `json:"cost_basis"`
	WithdrawnCostBasis Amount                      `json:"withdrawn_cost_basis"`
	RealizedPnL        Amount                      `json:"realized_pnl"`
	UnrealizedPnL      Amount                      `json:"unrealized_pnl"`
	TotalPnL           Amount                      `json:"total_pnl"`
	ROI                string                      `json:"roi"`
	RealizedROI        string                      `json:"realized_roi"`
	APR                model.APRSummaryRecord      `json:"apr"`
	Periods            []model.CapitalPeriodRecord `json:"periods,omitempty"`
}

// NewPnLReport renders an event PnL result together with its APR computation.
func NewPnLReport(res pnl.Result, aprResult apr.Result, computationID string, quoteDecimals uint8) PnLReport {
	rec := apr.NewRecord(aprResult, computationID)
	return PnLReport{
		PositionID:         aprResult.PositionID,
		ComputationID:      computationID,
		EventCount:         res.EventCount,
		Confidence:         string(res.Confidence),
		Invested:           NewAmount(res.Invested, quoteDecimals),
		Withdrawn:          NewAmount(res.Withdrawn, quoteDecimals),
		Collected:          NewAmount(res.Collected, quoteDecimals),
		Unclaimed:          NewAmount(res.Unclaimed, quoteDecimals),
		TotalFeeIncome:     NewAmount(res.TotalFeeIncome, quoteDecimals),
		CurrentValue:       NewAmount(res.CurrentValue, quoteDecimals),
		CostBasis:          NewAmount(res.CostBasis, quoteDecimals),
		WithdrawnCostBasis: NewAmount(res.WithdrawnCostBasis, quoteDecimals),
		RealizedPnL:        NewAmount(res.RealizedPnL, quoteDecimals),
		UnrealizedPnL:      NewAmount(res.UnrealizedPnL, quoteDecimals),
		TotalPnL:           NewAmount(res.TotalPnL, quoteDecimals),
		ROI:                FormatPercent(res.ROI),
		RealizedROI:        FormatPercent(res.RealizedROI),
		APR:                rec.Summary,
		Periods:            rec.Periods,
	}
}
