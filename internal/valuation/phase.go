package valuation

// Phase classifies where the pool price sits relative to a position range.
type Phase string

const (
	PhaseBelow   Phase = "below"
	PhaseInRange Phase = "in-range"
	PhaseAbove   Phase = "above"
)

// DeterminePhase returns below for tick < lower, above for tick >= upper.
func DeterminePhase(tick, tickLower, tickUpper int32) Phase {
	switch {
	case tick < tickLower:
		return PhaseBelow
	case tick >= tickUpper:
		return PhaseAbove
	default:
		return PhaseInRange
	}
}
