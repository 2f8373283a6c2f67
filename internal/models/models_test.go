package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}

func TestUsage(t *testing.T) {
	today := date("2025-03-20")

	tests := []struct {
		name        string
		start       string
		wantDays    int
		wantOverdue int
		wantPrio    int
	}{
		{"checked out today", "2025-03-20", 0, 0, 0},
		{"three days", "2025-03-17", 3, 0, 0},
		{"exactly at threshold", "2025-03-13", 7, 0, -7},
		{"one past threshold", "2025-03-12", 8, 1, -8},
		{"well overdue", "2025-03-10", 10, 3, -10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			box := FreezerBox{BoxName: "B1", ActorName: "Alice", StartDate: date(tt.start)}
			u := Usage(box, today, 7)
			assert.Equal(t, tt.wantDays, u.DaysUsed)
			assert.Equal(t, tt.wantOverdue, u.OverdueDays)
			assert.Equal(t, tt.wantPrio, u.Priority)
		})
	}
}

func TestUsage_IgnoresClock(t *testing.T) {
	// Start date recorded late in the evening must still count whole days.
	box := FreezerBox{
		BoxName:   "B2",
		ActorName: "Bob",
		StartDate: time.Date(2025, 3, 10, 23, 55, 0, 0, time.UTC),
	}
	today := time.Date(2025, 3, 20, 0, 5, 0, 0, time.UTC)

	u := Usage(box, today, 7)
	assert.Equal(t, 10, u.DaysUsed)
}

func TestFreezerBox_Occupied(t *testing.T) {
	free := FreezerBox{BoxName: "B1"}
	assert.False(t, free.Occupied())

	held := FreezerBox{BoxName: "B2", ActorName: "Alice", StartDate: date("2025-03-01")}
	assert.True(t, held.Occupied())
}

func TestDateOnly(t *testing.T) {
	in := time.Date(2025, 6, 1, 18, 30, 45, 12, time.FixedZone("X", 3600))
	got := DateOnly(in)
	assert.Equal(t, time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), got)
}
