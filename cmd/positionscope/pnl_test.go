package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/config"
	"positionScope/internal/model"
)

type captureWriter struct {
	records []interface{}
}

func (c *captureWriter) Write(value interface{}) error {
	c.records = append(c.records, value)
	return nil
}

const eventsInput = `{"position_id":"7","event_type":"create","block_number":10,"log_index":1,"timestamp":1700000000,"liquidity_delta":"100","value_in_quote":"1000","cost_basis_after":"1000"}
not json
{"position_id":"7","event_type":"COLLECT","block_number":12,"log_index":0,"timestamp":1700086400,"liquidity_delta":"0","value_in_quote":"0","fee_value_in_quote":"5","cost_basis_after":"1000"}

{"position_id":"8","event_type":"CREATE","block_number":11,"log_index":0,"timestamp":1700000000,"liquidity_delta":"1","value_in_quote":"1","cost_basis_after":"1"}
{"position_id":"9","event_type":"SWAP","block_number":11,"log_index":3,"timestamp":1700000000,"liquidity_delta":"0","value_in_quote":"0","cost_basis_after":"0"}
`

func TestReadEvents(t *testing.T) {
	errs := &captureWriter{}
	batch, err := readEvents(strings.NewReader(eventsInput), errs, "")
	require.NoError(t, err)

	assert.Equal(t, 5, batch.total)
	assert.Equal(t, 2, batch.failed)
	assert.Equal(t, []string{"7", "8"}, batch.ids())
	assert.Len(t, batch.positions["7"], 2)
	assert.Equal(t, model.EventCreate, batch.positions["7"][0].Type)

	require.Len(t, errs.records, 2)
	first := errs.records[0].(model.EventError)
	assert.Equal(t, 2, first.Line)
	second := errs.records[1].(model.EventError)
	assert.Equal(t, 6, second.Line)
	assert.Equal(t, "9", second.PositionID)
	assert.Equal(t, uint64(3), second.LogIndex)
}

func TestReadEventsFiltersPosition(t *testing.T) {
	batch, err := readEvents(strings.NewReader(eventsInput), &captureWriter{}, "8")
	require.NoError(t, err)
	assert.Equal(t, []string{"8"}, batch.ids())
	assert.Equal(t, 3, batch.skipped)
}

func TestManualValuation(t *testing.T) {
	val, err := manualValuation(config.PnLConfig{CurrentValue: "728", Unclaimed: ""})
	require.NoError(t, err)
	assert.Equal(t, "728", val.CurrentValue.String())
	assert.Equal(t, "0", val.Unclaimed.String())

	_, err = manualValuation(config.PnLConfig{CurrentValue: "12.5"})
	require.Error(t, err)
}
