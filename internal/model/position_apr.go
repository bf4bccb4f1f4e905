package model

// CapitalPeriodRecord is a persisted capital period. Open periods carry no
// end, days or APR.
type CapitalPeriodRecord struct {
	PositionID    string   `json:"position_id"`
	PeriodIndex   int      `json:"period_index"`
	EventType     string   `json:"event_type"`
	StartTS       int64    `json:"start_ts"`
	EndTS         *int64   `json:"end_ts,omitempty"`
	Days          *float64 `json:"days,omitempty"`
	CostBasis     string   `json:"cost_basis"`
	AllocatedFees string   `json:"allocated_fees"`
	APR           *float64 `json:"apr,omitempty"`
}

// APRSummaryRecord is the persisted aggregate of a position's APR tracks.
type APRSummaryRecord struct {
	RealizedFees        string  `json:"realized_fees"`
	RealizedAPR         float64 `json:"realized_apr"`
	RealizedDays        float64 `json:"realized_days"`
	RealizedTWCostBasis string  `json:"realized_tw_cost_basis"`
	UnclaimedFees       string  `json:"unclaimed_fees"`
	UnrealizedAPR       float64 `json:"unrealized_apr"`
	UnrealizedDays      float64 `json:"unrealized_days"`
	UnrealizedCostBasis string  `json:"unrealized_cost_basis"`
	TotalAPR            float64 `json:"total_apr"`
	TotalActiveDays     float64 `json:"total_active_days"`
	TotalTWCostBasis    string  `json:"total_tw_cost_basis"`
}

// PositionAPRRecord is one stored APR computation for a position. Stale
// records must be recomputed before use.
type PositionAPRRecord struct {
	PositionID    string                `json:"position_id"`
	ComputationID string                `json:"computation_id"`
	Fingerprint   string                `json:"fingerprint"`
	EventCount    int                   `json:"event_count"`
	Stale         bool                  `json:"stale"`
	CalculatedAt  int64                 `json:"calculated_at"`
	Summary       APRSummaryRecord      `json:"summary"`
	Periods       []CapitalPeriodRecord `json:"periods"`
}
