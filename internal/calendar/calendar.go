// Package calendar produces the rolling window of bookable dates and the
// slot grids the allocation engines render occupancy against. Everything
// here is a pure function of the reference date; no state is kept.
package calendar

import (
	"time"

	"labreserve/internal/models"
)

// DefaultWindowDays is the length of the bookable window shown to users.
const DefaultWindowDays = 14

// ihcSlots is the fixed ordered set of staining slots in a day.
var ihcSlots = []string{"AM1", "AM2", "AM3", "PM1", "PM2", "PM3"}

// Window returns days consecutive calendar dates starting at today
// (inclusive), each normalized to midnight UTC.
func Window(today time.Time, days int) []time.Time {
	if days <= 0 {
		days = DefaultWindowDays
	}
	start := models.DateOnly(today)
	dates := make([]time.Time, days)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

// IHCSlots returns the ordered staining slot names. The returned slice is a
// copy; callers may reorder it freely.
func IHCSlots() []string {
	out := make([]string, len(ihcSlots))
	copy(out, ihcSlots)
	return out
}

// ValidIHCSlot reports whether name is one of the staining slots.
func ValidIHCSlot(name string) bool {
	for _, s := range ihcSlots {
		if s == name {
			return true
		}
	}
	return false
}

// BSCGrid describes the cabinet/slot grid a lab exposes for booking.
type BSCGrid struct {
	Cabinets    int // cabinets are numbered 1..Cabinets
	SlotsPerDay int // slots are indexed 0..SlotsPerDay-1
}

// ValidCabinet reports whether id addresses a cabinet in the grid.
func (g BSCGrid) ValidCabinet(id int) bool {
	return id >= 1 && id <= g.Cabinets
}

// ValidSlot reports whether slot addresses a time slot in the grid.
func (g BSCGrid) ValidSlot(slot int) bool {
	return slot >= 0 && slot < g.SlotsPerDay
}
