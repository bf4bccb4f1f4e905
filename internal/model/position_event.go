package model

import (
	"math/big"
	"sort"
	"time"
)

// EventType is the lifecycle step a position event records.
type EventType string

const (
	EventCreate   EventType = "CREATE"
	EventIncrease EventType = "INCREASE"
	EventDecrease EventType = "DECREASE"
	EventCollect  EventType = "COLLECT"
	EventClose    EventType = "CLOSE"
)

// Valid reports whether t is one of the known event types.
func (t EventType) Valid() bool {
	switch t {
	case EventCreate, EventIncrease, EventDecrease, EventCollect, EventClose:
		return true
	default:
		return false
	}
}

// AddsCapital is true for CREATE and INCREASE.
func (t EventType) AddsCapital() bool {
	return t == EventCreate || t == EventIncrease
}

// RemovesCapital is true for DECREASE and CLOSE.
func (t EventType) RemovesCapital() bool {
	return t == EventDecrease || t == EventClose
}

// Confidence says whether an event value was priced exactly or estimated.
type Confidence string

const (
	ConfidenceExact     Confidence = "exact"
	ConfidenceEstimated Confidence = "estimated"
)

// PositionEvent is one immutable entry of a position's ledger.
type PositionEvent struct {
	PositionID      string
	Type            EventType
	BlockNumber     uint64
	TxIndex         uint64
	LogIndex        uint64
	TxHash          string
	Timestamp       time.Time
	LiquidityDelta  *big.Int
	ValueInQuote    *big.Int
	FeeValueInQuote *big.Int
	CostBasisAfter  *big.Int
	Confidence      Confidence
}

// Before orders events by (block, tx index, log index).
func (e PositionEvent) Before(other PositionEvent) bool {
	if e.BlockNumber != other.BlockNumber {
		return e.BlockNumber < other.BlockNumber
	}
	if e.TxIndex != other.TxIndex {
		return e.TxIndex < other.TxIndex
	}
	return e.LogIndex < other.LogIndex
}

// SortEvents returns a copy of events in chain order.
func SortEvents(events []PositionEvent) []PositionEvent {
	out := make([]PositionEvent, len(events))
	copy(out, events)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Before(out[j])
	})
	return out
}
