package storage

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"positionScope/internal/model"
)

func TestFileAPRStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state", "apr.json")
	store := &FileAPRStore{Path: path}

	_, found, err := store.LoadAPR(ctx, "pos-1")
	require.NoError(t, err)
	assert.False(t, found)

	days := 10.0
	rec := model.PositionAPRRecord{
		PositionID:    "pos-1",
		ComputationID: "c1",
		Fingerprint:   "0x01",
		EventCount:    1,
		Summary:       model.APRSummaryRecord{RealizedFees: "5"},
		Periods: []model.CapitalPeriodRecord{
			{PositionID: "pos-1", EventType: "CREATE", CostBasis: "1000", AllocatedFees: "5", Days: &days},
		},
	}
	require.NoError(t, store.SaveAPR(ctx, rec))
	require.NoError(t, store.SaveAPR(ctx, model.PositionAPRRecord{PositionID: "pos-2", ComputationID: "c2"}))

	got, found, err := store.LoadAPR(ctx, "pos-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, rec, got)

	// a second store on the same file sees both positions
	other := &FileAPRStore{Path: path}
	got, found, err = other.LoadAPR(ctx, "pos-2")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "c2", got.ComputationID)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err))
}

func TestFileAPRStoreMarkStale(t *testing.T) {
	ctx := context.Background()
	store := &FileAPRStore{Path: filepath.Join(t.TempDir(), "apr.json")}

	require.NoError(t, store.MarkStale(ctx, "missing"))
	require.NoError(t, store.SaveAPR(ctx, model.PositionAPRRecord{PositionID: "pos-1"}))
	require.NoError(t, store.MarkStale(ctx, "pos-1"))

	got, found, err := store.LoadAPR(ctx, "pos-1")
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, got.Stale)
}

func TestFileAPRStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "apr.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, _, err := (&FileAPRStore{Path: path}).LoadAPR(context.Background(), "pos-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse state")
}

func TestFileAPRStoreDisabled(t *testing.T) {
	var store *FileAPRStore
	_, found, err := store.LoadAPR(context.Background(), "pos-1")
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, store.SaveAPR(context.Background(), model.PositionAPRRecord{PositionID: "pos-1"}))
}
