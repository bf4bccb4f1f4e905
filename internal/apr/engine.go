package apr

import (
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"positionScope/internal/errs"
	"positionScope/internal/model"
)

// Summary holds the realized, unrealized and combined APR tracks.
type Summary struct {
	RealizedFees        *big.Int
	RealizedAPR         float64
	RealizedDays        float64
	RealizedTWCostBasis *big.Int

	UnclaimedFees       *big.Int
	UnrealizedAPR       float64
	UnrealizedDays      float64
	UnrealizedCostBasis *big.Int

	TotalAPR         float64
	TotalActiveDays  float64
	TotalTWCostBasis *big.Int
}

// Result is a full APR computation for one position.
type Result struct {
	PositionID  string
	Events      []model.PositionEvent
	Periods     []Period
	Summary     Summary
	Fingerprint common.Hash
	Now         time.Time

	// ComputationID identifies the persisted computation the periods came
	// from. Empty until a Cache saves or loads the result.
	ComputationID string
}

// Engine computes period APRs. The zero value is usable.
type Engine struct {
	logger *zap.Logger
}

func NewEngine(logger *zap.Logger) Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Engine{logger: logger}
}

func (e Engine) log() *zap.Logger {
	if e.logger == nil {
		return zap.NewNop()
	}
	return e.logger
}

// Calculate rebuilds every period from events, redistributes all collected
// fees and evaluates the APR tracks at now.
func (e Engine) Calculate(events []model.PositionEvent, unclaimed *big.Int, now time.Time) (Result, error) {
	if len(events) == 0 {
		return Result{}, errs.NotFound("no events for position")
	}
	sorted := model.SortEvents(events)
	periods := BuildPeriods(sorted)

	if skipped := DistributeFees(periods, sorted); skipped > 0 {
		e.log().Debug("collects without eligible capital",
			zap.String("position", sorted[0].PositionID),
			zap.Int("skipped", skipped),
		)
	}
	setPeriodAPRs(periods)

	return Result{
		PositionID:  sorted[0].PositionID,
		Events:      sorted,
		Periods:     periods,
		Summary:     Summarize(periods, sorted, unclaimed, now),
		Fingerprint: Fingerprint(sorted),
		Now:         now,
	}, nil
}

// Append folds one new event into a previous result without rebuilding the
// earlier periods. The event must sort after every event already in state.
func (e Engine) Append(state Result, ev model.PositionEvent, unclaimed *big.Int, now time.Time) (Result, error) {
	if len(state.Events) == 0 {
		return e.Calculate([]model.PositionEvent{ev}, unclaimed, now)
	}
	last := state.Events[len(state.Events)-1]
	if len(state.Periods) != len(state.Events) {
		events := append(append([]model.PositionEvent(nil), state.Events...), ev)
		return e.Calculate(events, unclaimed, now)
	}
	if !last.Before(ev) {
		return Result{}, errs.Invalid("event at block %d log %d does not follow block %d log %d",
			ev.BlockNumber, ev.LogIndex, last.BlockNumber, last.LogIndex)
	}
	if ev.Timestamp.Before(last.Timestamp) {
		return Result{}, errs.Invalid("event timestamp %s precedes %s", ev.Timestamp, last.Timestamp)
	}

	periods := clonePeriods(state.Periods)
	closePeriod(&periods[len(periods)-1], ev.Timestamp)
	periods = append(periods, newPeriod(len(periods), ev))

	if ev.Type == model.EventCollect {
		if !allocate(periods, ev.Timestamp, feeValue(ev)) {
			e.log().Debug("collect has no eligible capital",
				zap.String("position", ev.PositionID),
				zap.Uint64("block", ev.BlockNumber),
			)
		}
	}
	setPeriodAPRs(periods)

	events := make([]model.PositionEvent, 0, len(state.Events)+1)
	events = append(events, state.Events...)
	events = append(events, ev)

	return Result{
		PositionID:  state.PositionID,
		Events:      events,
		Periods:     periods,
		Summary:     Summarize(periods, events, unclaimed, now),
		Fingerprint: Fingerprint(events),
		Now:         now,
	}, nil
}

// Refresh re-evaluates the APR tracks of a result for a new unclaimed
// estimate and time. Periods are untouched.
func (e Engine) Refresh(state Result, unclaimed *big.Int, now time.Time) Result {
	state.Summary = Summarize(state.Periods, state.Events, unclaimed, now)
	state.Now = now
	return state
}

// Summarize computes the realized track over earning periods, the unrealized
// track from the last COLLECT (or the first event) to now, and their
// day-weighted combination. events must be in chain order.
func Summarize(periods []Period, events []model.PositionEvent, unclaimed *big.Int, now time.Time) Summary {
	out := Summary{
		RealizedFees:        new(big.Int),
		RealizedTWCostBasis: new(big.Int),
		UnclaimedFees:       new(big.Int),
		UnrealizedCostBasis: new(big.Int),
		TotalTWCostBasis:    new(big.Int),
	}
	if unclaimed != nil {
		out.UnclaimedFees.Abs(unclaimed)
	}

	weighted := new(big.Int)
	var realizedDur time.Duration
	for _, p := range periods {
		if !p.Earning() {
			continue
		}
		d := p.Duration()
		realizedDur += d
		weighted.Add(weighted, new(big.Int).Mul(p.CostBasis, big.NewInt(int64(d))))
		out.RealizedFees.Add(out.RealizedFees, p.AllocatedFees)
		out.RealizedDays += *p.Days
	}
	if realizedDur > 0 {
		out.RealizedTWCostBasis.Quo(weighted, big.NewInt(int64(realizedDur)))
		if out.RealizedTWCostBasis.Sign() > 0 {
			out.RealizedAPR = annualize(out.RealizedFees, out.RealizedTWCostBasis, realizedDur)
		}
	}

	var unrealizedDur time.Duration
	if len(events) > 0 {
		if cb := events[len(events)-1].CostBasisAfter; cb != nil && cb.Sign() > 0 {
			out.UnrealizedCostBasis.Set(cb)
			start := events[0].Timestamp
			for i := len(events) - 1; i >= 0; i-- {
				if events[i].Type == model.EventCollect {
					start = events[i].Timestamp
					break
				}
			}
			if d := now.Sub(start); d > 0 {
				unrealizedDur = d
				out.UnrealizedDays = daysBetween(start, now)
				out.UnrealizedAPR = annualize(out.UnclaimedFees, cb, d)
			}
		}
	}

	out.TotalActiveDays = out.RealizedDays + out.UnrealizedDays
	if out.TotalActiveDays > 0 {
		out.TotalAPR = (out.RealizedAPR*out.RealizedDays + out.UnrealizedAPR*out.UnrealizedDays) / out.TotalActiveDays
	}
	if totalDur := realizedDur + unrealizedDur; totalDur > 0 {
		tw := new(big.Int).Mul(out.RealizedTWCostBasis, big.NewInt(int64(realizedDur)))
		tw.Add(tw, new(big.Int).Mul(out.UnrealizedCostBasis, big.NewInt(int64(unrealizedDur))))
		out.TotalTWCostBasis.Quo(tw, big.NewInt(int64(totalDur)))
	}
	return out
}
