package apr

import (
	"math/big"
	"time"

	"positionScope/internal/model"
)

// DistributeFees resets every allocation and spreads each COLLECT event's fee
// value over the closed, funded periods that started before it. It returns
// the number of collects that found no eligible period.
func DistributeFees(periods []Period, events []model.PositionEvent) int {
	for i := range periods {
		periods[i].AllocatedFees = new(big.Int)
	}
	skipped := 0
	for _, ev := range model.SortEvents(events) {
		if ev.Type != model.EventCollect {
			continue
		}
		if !allocate(periods, ev.Timestamp, feeValue(ev)) {
			skipped++
		}
	}
	return skipped
}

// allocate adds floor(fees*w/W) to each eligible period, where w is
// costBasis*duration. It returns false when no period carries weight.
func allocate(periods []Period, at time.Time, fees *big.Int) bool {
	weights := make([]*big.Int, len(periods))
	total := new(big.Int)
	for i, p := range periods {
		if !p.Closed() || !p.Start.Before(at) || p.CostBasis.Sign() <= 0 {
			continue
		}
		d := p.Duration()
		if d <= 0 {
			continue
		}
		w := new(big.Int).Mul(p.CostBasis, big.NewInt(int64(d)))
		weights[i] = w
		total.Add(total, w)
	}
	if total.Sign() == 0 {
		return false
	}

	for i, w := range weights {
		if w == nil {
			continue
		}
		share := new(big.Int).Mul(fees, w)
		share.Quo(share, total)
		periods[i].AllocatedFees.Add(periods[i].AllocatedFees, share)
	}
	return true
}

func feeValue(ev model.PositionEvent) *big.Int {
	if ev.FeeValueInQuote == nil {
		return new(big.Int)
	}
	return new(big.Int).Abs(ev.FeeValueInQuote)
}
