package apr

import (
	"math/big"
	"time"

	"positionScope/internal/model"
)

const (
	daysPerYear   = 365
	secondsPerDay = 86400
)

var nanosPerDay = big.NewInt(secondsPerDay * int64(time.Second))

// Period is the span between one event and the next, during which the cost
// basis recorded by the opening event is held.
type Period struct {
	Index         int
	EventType     model.EventType
	Start         time.Time
	End           *time.Time
	Days          *float64
	CostBasis     *big.Int
	AllocatedFees *big.Int
	APR           *float64
}

// Closed reports whether the period has an end.
func (p Period) Closed() bool {
	return p.End != nil
}

// Duration is zero for open periods.
func (p Period) Duration() time.Duration {
	if p.End == nil {
		return 0
	}
	return p.End.Sub(p.Start)
}

// Earning reports whether the period takes part in APR aggregation.
func (p Period) Earning() bool {
	return p.Closed() && p.Duration() > 0 && p.CostBasis != nil && p.CostBasis.Sign() > 0
}

// BuildPeriods returns one period per event in chain order. The last period
// is open.
func BuildPeriods(events []model.PositionEvent) []Period {
	sorted := model.SortEvents(events)
	periods := make([]Period, 0, len(sorted))
	for i, ev := range sorted {
		periods = append(periods, newPeriod(i, ev))
		if i > 0 {
			closePeriod(&periods[i-1], ev.Timestamp)
		}
	}
	return periods
}

func newPeriod(index int, ev model.PositionEvent) Period {
	costBasis := new(big.Int)
	if ev.CostBasisAfter != nil {
		costBasis.Set(ev.CostBasisAfter)
	}
	return Period{
		Index:         index,
		EventType:     ev.Type,
		Start:         ev.Timestamp,
		CostBasis:     costBasis,
		AllocatedFees: new(big.Int),
	}
}

func closePeriod(p *Period, end time.Time) {
	p.End = &end
	days := daysBetween(p.Start, end)
	p.Days = &days
}

func daysBetween(start, end time.Time) float64 {
	return end.Sub(start).Seconds() / secondsPerDay
}

// annualize returns (fees/costBasis)/(d/365)*100 where d is the duration in
// days. The caller guarantees costBasis > 0 and d > 0.
func annualize(fees, costBasis *big.Int, d time.Duration) float64 {
	num := new(big.Int).Mul(fees, big.NewInt(daysPerYear*100))
	num.Mul(num, nanosPerDay)
	den := new(big.Int).Mul(costBasis, big.NewInt(int64(d)))
	f, _ := new(big.Rat).SetFrac(num, den).Float64()
	return f
}

func setPeriodAPRs(periods []Period) {
	for i := range periods {
		p := &periods[i]
		if !p.Earning() {
			p.APR = nil
			continue
		}
		v := annualize(p.AllocatedFees, p.CostBasis, p.Duration())
		p.APR = &v
	}
}

func clonePeriods(periods []Period) []Period {
	out := make([]Period, len(periods))
	for i, p := range periods {
		out[i] = p
		out[i].CostBasis = new(big.Int).Set(p.CostBasis)
		out[i].AllocatedFees = new(big.Int).Set(p.AllocatedFees)
		if p.End != nil {
			end := *p.End
			out[i].End = &end
		}
		if p.Days != nil {
			days := *p.Days
			out[i].Days = &days
		}
		if p.APR != nil {
			v := *p.APR
			out[i].APR = &v
		}
	}
	return out
}
