package booking

import (
	"context"
	"testing"

	"labreserve/internal/calendar"
	"labreserve/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBSC(t *testing.T) *BSC {
	t.Helper()
	db := newTestDB(t, database.Options{})
	return NewBSC(db, calendar.BSCGrid{Cabinets: 4, SlotsPerDay: 5}, 14, testLogger())
}

func TestBSC_ReserveAndOccupancy(t *testing.T) {
	e := newBSC(t)
	ctx := context.Background()
	today := day("2025-04-01")
	target := today.AddDate(0, 0, 3)

	results, err := e.ApplyBatch(ctx, "Alice", today, []BSCItem{
		{Date: target, CabinetID: 2, Slot: 1, Mode: ModeReserve},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.True(t, results[0].Applied())

	occ, err := e.Occupancy(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, "Alice", occ.Booked[2][SlotKey{Date: target, Slot: 1}])
	assert.Len(t, occ.Dates, 14)
	assert.True(t, occ.WindowEnd.Equal(today.AddDate(0, 0, 13)))

	// Alice cancels; the slot disappears from occupancy.
	results, err = e.ApplyBatch(ctx, "Alice", today, []BSCItem{
		{Date: target, CabinetID: 2, Slot: 1, Mode: ModeCancel},
	})
	require.NoError(t, err)
	assert.True(t, results[0].Applied())

	occ, err = e.Occupancy(ctx, today)
	require.NoError(t, err)
	_, ok := occ.Booked[2][SlotKey{Date: target, Slot: 1}]
	assert.False(t, ok)
}

func TestBSC_ReserveConflictIsSkipped(t *testing.T) {
	e := newBSC(t)
	ctx := context.Background()
	today := day("2025-04-01")
	item := BSCItem{Date: today.AddDate(0, 0, 2), CabinetID: 1, Slot: 0, Mode: ModeReserve}

	results, err := e.ApplyBatch(ctx, "Alice", today, []BSCItem{item})
	require.NoError(t, err)
	assert.True(t, results[0].Applied())

	results, err = e.ApplyBatch(ctx, "Bob", today, []BSCItem{item})
	require.NoError(t, err)
	assert.Equal(t, StatusSkipped, results[0].Status)
	assert.Equal(t, ReasonAlreadyTaken, results[0].Reason)

	// Occupancy still shows the first claimant.
	occ, err := e.Occupancy(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, "Alice", occ.Booked[1][SlotKey{Date: item.Date, Slot: 0}])
}

func TestBSC_CancelRequiresOwnership(t *testing.T) {
	e := newBSC(t)
	ctx := context.Background()
	today := day("2025-04-01")
	item := BSCItem{Date: today.AddDate(0, 0, 1), CabinetID: 3, Slot: 2, Mode: ModeReserve}

	_, err := e.ApplyBatch(ctx, "Alice", today, []BSCItem{item})
	require.NoError(t, err)

	cancel := item
	cancel.Mode = ModeCancel
	results, err := e.ApplyBatch(ctx, "Bob", today, []BSCItem{cancel})
	require.NoError(t, err)
	assert.Equal(t, ReasonNotOwner, results[0].Reason)

	// Booking stays intact.
	occ, err := e.Occupancy(ctx, today)
	require.NoError(t, err)
	assert.Equal(t, "Alice", occ.Booked[3][SlotKey{Date: item.Date, Slot: 2}])
}

func TestBSC_CancelMissingIsSkipped(t *testing.T) {
	e := newBSC(t)
	today := day("2025-04-01")

	results, err := e.ApplyBatch(context.Background(), "Alice", today, []BSCItem{
		{Date: today, CabinetID: 1, Slot: 1, Mode: ModeCancel},
	})
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, results[0].Reason)
}

func TestBSC_BatchAppliesInOrder(t *testing.T) {
	e := newBSC(t)
	ctx := context.Background()
	today := day("2025-04-01")
	target := today.AddDate(0, 0, 5)

	// Reserve then cancel the same slot in one batch: both apply.
	results, err := e.ApplyBatch(ctx, "Alice", today, []BSCItem{
		{Date: target, CabinetID: 1, Slot: 3, Mode: ModeReserve},
		{Date: target, CabinetID: 1, Slot: 3, Mode: ModeCancel},
		{Date: target, CabinetID: 1, Slot: 3, Mode: ModeReserve},
	})
	require.NoError(t, err)
	assert.True(t, results[0].Applied())
	assert.True(t, results[1].Applied())
	assert.True(t, results[2].Applied())
}

func TestBSC_RejectsWithoutActor(t *testing.T) {
	e := newBSC(t)

	_, err := e.ApplyBatch(context.Background(), "", day("2025-04-01"), nil)
	assert.ErrorIs(t, err, ErrNoActor)
}

func TestBSC_InvalidItemsSkipped(t *testing.T) {
	e := newBSC(t)
	ctx := context.Background()
	today := day("2025-04-01")

	tests := []struct {
		name string
		item BSCItem
	}{
		{"cabinet out of range", BSCItem{Date: today, CabinetID: 9, Slot: 0, Mode: ModeReserve}},
		{"slot out of range", BSCItem{Date: today, CabinetID: 1, Slot: 7, Mode: ModeReserve}},
		{"date in the past", BSCItem{Date: today.AddDate(0, 0, -2), CabinetID: 1, Slot: 0, Mode: ModeReserve}},
		{"date past the window", BSCItem{Date: today.AddDate(0, 0, 20), CabinetID: 1, Slot: 0, Mode: ModeReserve}},
		{"unknown mode", BSCItem{Date: today, CabinetID: 1, Slot: 0, Mode: "hold"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results, err := e.ApplyBatch(ctx, "Alice", today, []BSCItem{tt.item})
			require.NoError(t, err)
			assert.Equal(t, ReasonInvalid, results[0].Reason)
		})
	}
}

func TestBSC_OccupancyLookback(t *testing.T) {
	e := newBSC(t)
	ctx := context.Background()
	yesterday := day("2025-03-31")

	// Booked yesterday, viewed today: still visible through the
	// 1-day lookback window.
	_, err := e.ApplyBatch(ctx, "Alice", yesterday, []BSCItem{
		{Date: yesterday, CabinetID: 4, Slot: 4, Mode: ModeReserve},
	})
	require.NoError(t, err)

	occ, err := e.Occupancy(ctx, day("2025-04-01"))
	require.NoError(t, err)
	assert.Equal(t, "Alice", occ.Booked[4][SlotKey{Date: yesterday, Slot: 4}])

	// Two days later it ages out.
	occ, err = e.Occupancy(ctx, day("2025-04-02"))
	require.NoError(t, err)
	_, ok := occ.Booked[4][SlotKey{Date: yesterday, Slot: 4}]
	assert.False(t, ok)
}
