package booking

import (
	"context"
	"testing"

	"labreserve/internal/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFreezer(t *testing.T) *Freezer {
	t.Helper()
	db := newTestDB(t, database.Options{})
	return NewFreezer(db, 7, testLogger())
}

func boxIDByName(t *testing.T, e *Freezer, name string) int64 {
	t.Helper()
	list, err := e.ListWithPriority(context.Background(), day("2025-04-01"))
	require.NoError(t, err)
	for _, b := range list.Available {
		if b.BoxName == name {
			return b.ID
		}
	}
	for _, b := range list.InUse {
		if b.BoxName == name {
			return b.ID
		}
	}
	t.Fatalf("box %q not found", name)
	return 0
}

func TestFreezer_RegisterBoxes(t *testing.T) {
	e := newFreezer(t)
	ctx := context.Background()

	// Mixed ASCII and fullwidth commas normalize to three boxes.
	results, err := e.RegisterBoxes(ctx, "B1, B2，B3")
	require.NoError(t, err)
	require.Len(t, results, 3)
	for _, res := range results {
		assert.True(t, res.Applied())
	}

	list, err := e.ListWithPriority(ctx, day("2025-04-01"))
	require.NoError(t, err)
	require.Len(t, list.Available, 3)
	assert.Equal(t, "B1", list.Available[0].BoxName)
	assert.Equal(t, "B2", list.Available[1].BoxName)
	assert.Equal(t, "B3", list.Available[2].BoxName)

	// Re-registering an existing name is a silent skip.
	results, err = e.RegisterBoxes(ctx, "B1")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, ReasonDuplicate, results[0].Reason)

	// Empty tokens are dropped entirely.
	results, err = e.RegisterBoxes(ctx, " , ，,")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFreezer_CheckoutAndReturn(t *testing.T) {
	e := newFreezer(t)
	ctx := context.Background()
	today := day("2025-04-01")

	_, err := e.RegisterBoxes(ctx, "B1")
	require.NoError(t, err)
	id := boxIDByName(t, e, "B1")

	res, err := e.Checkout(ctx, "Alice", id, today)
	require.NoError(t, err)
	assert.True(t, res.Applied())
	assert.Empty(t, res.Detail)

	// Actor and start date are set together.
	list, err := e.ListWithPriority(ctx, today)
	require.NoError(t, err)
	require.Len(t, list.InUse, 1)
	assert.Equal(t, "Alice", list.InUse[0].ActorName)
	assert.True(t, list.InUse[0].StartDate.Equal(today))

	// Return clears both together; any caller may return.
	res, err = e.Return(ctx, id)
	require.NoError(t, err)
	assert.True(t, res.Applied())

	list, err = e.ListWithPriority(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, list.InUse)
	require.Len(t, list.Available, 1)
	assert.Empty(t, list.Available[0].ActorName)
	assert.True(t, list.Available[0].StartDate.IsZero())
}

func TestFreezer_CheckoutDisplacesOccupant(t *testing.T) {
	e := newFreezer(t)
	ctx := context.Background()

	_, err := e.RegisterBoxes(ctx, "B1")
	require.NoError(t, err)
	id := boxIDByName(t, e, "B1")

	_, err = e.Checkout(ctx, "Alice", id, day("2025-04-01"))
	require.NoError(t, err)

	// Overwrite is permitted; the result names the displaced occupant.
	res, err := e.Checkout(ctx, "Bob", id, day("2025-04-05"))
	require.NoError(t, err)
	assert.True(t, res.Applied())
	assert.Equal(t, "Alice", res.Detail)

	list, err := e.ListWithPriority(ctx, day("2025-04-05"))
	require.NoError(t, err)
	require.Len(t, list.InUse, 1)
	assert.Equal(t, "Bob", list.InUse[0].ActorName)
	assert.Equal(t, 0, list.InUse[0].Usage.DaysUsed)
}

func TestFreezer_CheckoutUnknownBox(t *testing.T) {
	e := newFreezer(t)

	res, err := e.Checkout(context.Background(), "Alice", 999, day("2025-04-01"))
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, res.Reason)

	_, err = e.Checkout(context.Background(), "", 1, day("2025-04-01"))
	assert.ErrorIs(t, err, ErrNoActor)
}

func TestFreezer_DeleteOnlyWhenAvailable(t *testing.T) {
	e := newFreezer(t)
	ctx := context.Background()
	today := day("2025-04-01")

	_, err := e.RegisterBoxes(ctx, "B1,B2")
	require.NoError(t, err)
	held := boxIDByName(t, e, "B1")
	free := boxIDByName(t, e, "B2")

	_, err = e.Checkout(ctx, "Alice", held, today)
	require.NoError(t, err)

	// Occupied boxes cannot be deleted.
	res, err := e.Delete(ctx, held)
	require.NoError(t, err)
	assert.Equal(t, ReasonOccupied, res.Reason)

	res, err = e.Delete(ctx, free)
	require.NoError(t, err)
	assert.True(t, res.Applied())

	res, err = e.Delete(ctx, free)
	require.NoError(t, err)
	assert.Equal(t, ReasonNotFound, res.Reason)

	list, err := e.ListWithPriority(ctx, today)
	require.NoError(t, err)
	assert.Empty(t, list.Available)
	require.Len(t, list.InUse, 1)
}

func TestFreezer_PriorityOrdering(t *testing.T) {
	e := newFreezer(t)
	ctx := context.Background()
	today := day("2025-04-20")

	_, err := e.RegisterBoxes(ctx, "C10,A03,B08,D07")
	require.NoError(t, err)

	// daysUsed: C10=10, B08=8, D07=7, A03=3.
	checkouts := map[string]string{
		"C10": "2025-04-10",
		"B08": "2025-04-12",
		"D07": "2025-04-13",
		"A03": "2025-04-17",
	}
	for name, start := range checkouts {
		id := boxIDByName(t, e, name)
		_, err := e.Checkout(ctx, "Alice", id, day(start))
		require.NoError(t, err)
	}

	list, err := e.ListWithPriority(ctx, today)
	require.NoError(t, err)
	require.Len(t, list.InUse, 4)

	// Priorities -10, -8, -7 ascending, then the under-threshold box.
	var order []string
	for _, b := range list.InUse {
		order = append(order, b.BoxName)
	}
	assert.Equal(t, []string{"C10", "B08", "D07", "A03"}, order)
	assert.Equal(t, -10, list.InUse[0].Usage.Priority)
	assert.Equal(t, 3, list.InUse[0].Usage.OverdueDays)
	assert.Equal(t, 0, list.InUse[3].Usage.Priority)
}

func TestFreezer_PriorityTiesBreakAlphabetically(t *testing.T) {
	e := newFreezer(t)
	ctx := context.Background()
	today := day("2025-04-20")

	_, err := e.RegisterBoxes(ctx, "Z1,A1,M1")
	require.NoError(t, err)

	// All three share priority 0.
	for _, name := range []string{"Z1", "A1", "M1"} {
		id := boxIDByName(t, e, name)
		_, err := e.Checkout(ctx, "Bob", id, day("2025-04-18"))
		require.NoError(t, err)
	}

	list, err := e.ListWithPriority(ctx, today)
	require.NoError(t, err)
	var order []string
	for _, b := range list.InUse {
		order = append(order, b.BoxName)
	}
	assert.Equal(t, []string{"A1", "M1", "Z1"}, order)
}
