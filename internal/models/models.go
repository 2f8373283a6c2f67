package models

import "time"

// MaxActorNameLen is the longest allowed actor name, counted in runes.
const MaxActorNameLen = 10

// Actor is a registered lab member. Reservations reference actors by name
// only; deleting an actor does not cascade into existing records.
type Actor struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BSCReservation is an exclusive claim on one biosafety cabinet time slot.
// At most one record may exist per (cabinet_id, date, slot); the store
// enforces this with a unique index.
type BSCReservation struct {
	ID        int64     `json:"id"`
	CabinetID int       `json:"cabinet_id"`
	Date      time.Time `json:"date"` // calendar date, midnight UTC
	Slot      int       `json:"slot"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

// IHCReservation is a claim on tray capacity in a named staining slot.
// In capacity mode multiple records share a (date, slot) up to the tray cap;
// in exclusive mode the store keeps a unique index on (date, slot).
type IHCReservation struct {
	ID        int64     `json:"id"`
	Date      time.Time `json:"date"`
	Slot      string    `json:"slot"` // AM1..AM3, PM1..PM3
	TrayCount int       `json:"tray_count"`
	ActorName string    `json:"actor_name"`
	CreatedAt time.Time `json:"created_at"`
}

// FreezerBox is a long-term storage container. An empty ActorName and zero
// StartDate mean the box is available; both are always set and cleared
// together.
type FreezerBox struct {
	ID        int64     `json:"id"`
	BoxName   string    `json:"box_name"`
	ActorName string    `json:"actor_name,omitempty"`
	StartDate time.Time `json:"start_date,omitzero"`
	CreatedAt time.Time `json:"created_at"`
}

// Occupied reports whether the box is currently checked out.
func (b *FreezerBox) Occupied() bool {
	return b.ActorName != ""
}

// BoxUsage holds the derived occupancy-age fields for a checked-out box.
// These are computed at read time and never persisted.
type BoxUsage struct {
	DaysUsed    int `json:"days_used"`
	OverdueDays int `json:"overdue_days"`
	Priority    int `json:"priority"`
}

// Usage computes occupancy age for a box as of today. Boxes held for
// overdueAfter days or more get an increasingly negative priority so that
// the most overdue box sorts first; everything younger shares priority 0.
func Usage(b FreezerBox, today time.Time, overdueAfter int) BoxUsage {
	days := int(DateOnly(today).Sub(DateOnly(b.StartDate)).Hours() / 24)

	u := BoxUsage{DaysUsed: days}
	if days > overdueAfter {
		u.OverdueDays = days - overdueAfter
	}
	if days >= overdueAfter {
		u.Priority = -days
	}
	return u
}

// DateOnly truncates t to its calendar date at midnight UTC. All reservation
// dates pass through here so composite keys compare by day, never by clock.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
