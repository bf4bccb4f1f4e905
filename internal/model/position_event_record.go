package model

import (
	"strings"
	"time"

	"positionScope/internal/errs"
)

// PositionEventRecord is the JSON form of a PositionEvent. Integer amounts
// are base-10 strings; timestamp is unix seconds.
type PositionEventRecord struct {
	PositionID      string `json:"position_id"`
	EventType       string `json:"event_type"`
	BlockNumber     uint64 `json:"block_number"`
	TxIndex         uint64 `json:"tx_index"`
	LogIndex        uint64 `json:"log_index"`
	TxHash          string `json:"tx_hash,omitempty"`
	Timestamp       uint64 `json:"timestamp"`
	LiquidityDelta  string `json:"liquidity_delta"`
	ValueInQuote    string `json:"value_in_quote"`
	FeeValueInQuote string `json:"fee_value_in_quote,omitempty"`
	CostBasisAfter  string `json:"cost_basis_after"`
	Confidence      string `json:"confidence,omitempty"`
}

// Parse validates the record and converts it into a PositionEvent.
func (r PositionEventRecord) Parse() (PositionEvent, error) {
	eventType := EventType(strings.ToUpper(strings.TrimSpace(r.EventType)))
	if !eventType.Valid() {
		return PositionEvent{}, errs.Invalid("unknown event type %q", r.EventType)
	}

	confidence := ConfidenceExact
	switch strings.ToLower(strings.TrimSpace(r.Confidence)) {
	case "", string(ConfidenceExact):
	case string(ConfidenceEstimated):
		confidence = ConfidenceEstimated
	default:
		return PositionEvent{}, errs.Invalid("unknown confidence %q", r.Confidence)
	}

	liquidityDelta, err := ParseBigInt("liquidity_delta", r.LiquidityDelta)
	if err != nil {
		return PositionEvent{}, err
	}
	valueInQuote, err := ParseBigInt("value_in_quote", r.ValueInQuote)
	if err != nil {
		return PositionEvent{}, err
	}
	feeValue, err := ParseBigInt("fee_value_in_quote", r.FeeValueInQuote)
	if err != nil {
		return PositionEvent{}, err
	}
	costBasis, err := ParseBigInt("cost_basis_after", r.CostBasisAfter)
	if err != nil {
		return PositionEvent{}, err
	}

	return PositionEvent{
		PositionID:      r.PositionID,
		Type:            eventType,
		BlockNumber:     r.BlockNumber,
		TxIndex:         r.TxIndex,
		LogIndex:        r.LogIndex,
		TxHash:          r.TxHash,
		Timestamp:       time.Unix(int64(r.Timestamp), 0).UTC(),
		LiquidityDelta:  liquidityDelta,
		ValueInQuote:    valueInQuote,
		FeeValueInQuote: feeValue,
		CostBasisAfter:  costBasis,
		Confidence:      confidence,
	}, nil
}

// NewPositionEventRecord renders a PositionEvent for JSON output.
func NewPositionEventRecord(event PositionEvent) PositionEventRecord {
	return PositionEventRecord{
		PositionID:      event.PositionID,
		EventType:       string(event.Type),
		BlockNumber:     event.BlockNumber,
		TxIndex:         event.TxIndex,
		LogIndex:        event.LogIndex,
		TxHash:          event.TxHash,
		Timestamp:       uint64(event.Timestamp.Unix()),
		LiquidityDelta:  FormatBigInt(event.LiquidityDelta),
		ValueInQuote:    FormatBigInt(event.ValueInQuote),
		FeeValueInQuote: formatOptionalBigInt(event.FeeValueInQuote),
		CostBasisAfter:  FormatBigInt(event.CostBasisAfter),
		Confidence:      string(event.Confidence),
	}
}

// EventError records an event line that failed validation.
type EventError struct {
	Line        int    `json:"line"`
	PositionID  string `json:"position_id,omitempty"`
	BlockNumber uint64 `json:"block_number,omitempty"`
	LogIndex    uint64 `json:"log_index,omitempty"`
	Error       string `json:"error"`
}
