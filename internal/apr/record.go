package apr

import (
	"time"

	"github.com/ethereum/go-ethereum/common"

	"positionScope/internal/errs"
	"positionScope/internal/model"
)

// NewRecord renders a result for persistence under a computation ID.
func NewRecord(res Result, computationID string) model.PositionAPRRecord {
	periods := make([]model.CapitalPeriodRecord, 0, len(res.Periods))
	for _, p := range res.Periods {
		rec := model.CapitalPeriodRecord{
			PositionID:    res.PositionID,
			PeriodIndex:   p.Index,
			EventType:     string(p.EventType),
			StartTS:       p.Start.Unix(),
			Days:          p.Days,
			CostBasis:     model.FormatBigInt(p.CostBasis),
			AllocatedFees: model.FormatBigInt(p.AllocatedFees),
			APR:           p.APR,
		}
		if p.End != nil {
			end := p.End.Unix()
			rec.EndTS = &end
		}
		periods = append(periods, rec)
	}

	s := res.Summary
	return model.PositionAPRRecord{
		PositionID:    res.PositionID,
		ComputationID: computationID,
		Fingerprint:   res.Fingerprint.Hex(),
		EventCount:    len(res.Events),
		CalculatedAt:  res.Now.Unix(),
		Summary: model.APRSummaryRecord{
			RealizedFees:        model.FormatBigInt(s.RealizedFees),
			RealizedAPR:         s.RealizedAPR,
			RealizedDays:        s.RealizedDays,
			RealizedTWCostBasis: model.FormatBigInt(s.RealizedTWCostBasis),
			UnclaimedFees:       model.FormatBigInt(s.UnclaimedFees),
			UnrealizedAPR:       s.UnrealizedAPR,
			UnrealizedDays:      s.UnrealizedDays,
			UnrealizedCostBasis: model.FormatBigInt(s.UnrealizedCostBasis),
			TotalAPR:            s.TotalAPR,
			TotalActiveDays:     s.TotalActiveDays,
			TotalTWCostBasis:    model.FormatBigInt(s.TotalTWCostBasis),
		},
		Periods: periods,
	}
}

// PeriodsFromRecord restores the periods of a stored computation.
func PeriodsFromRecord(rec model.PositionAPRRecord) ([]Period, error) {
	periods := make([]Period, 0, len(rec.Periods))
	for i, pr := range rec.Periods {
		if pr.PeriodIndex != i {
			return nil, errs.Invalid("period %d stored at index %d", pr.PeriodIndex, i)
		}
		costBasis, err := model.ParseRequiredBigInt("cost_basis", pr.CostBasis)
		if err != nil {
			return nil, err
		}
		allocated, err := model.ParseRequiredBigInt("allocated_fees", pr.AllocatedFees)
		if err != nil {
			return nil, err
		}
		p := Period{
			Index:         pr.PeriodIndex,
			EventType:     model.EventType(pr.EventType),
			Start:         time.Unix(pr.StartTS, 0).UTC(),
			CostBasis:     costBasis,
			AllocatedFees: allocated,
		}
		if pr.EndTS != nil {
			closePeriod(&p, time.Unix(*pr.EndTS, 0).UTC())
		}
		periods = append(periods, p)
	}
	setPeriodAPRs(periods)
	return periods, nil
}

// FingerprintFromRecord parses the stored fingerprint.
func FingerprintFromRecord(rec model.PositionAPRRecord) common.Hash {
	return common.HexToHash(rec.Fingerprint)
}
