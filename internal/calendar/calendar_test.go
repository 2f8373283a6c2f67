package calendar

import (
	"testing"
	"time"
)

func TestWindow(t *testing.T) {
	today := time.Date(2025, 2, 26, 15, 42, 0, 0, time.Local)

	dates := Window(today, 14)
	if len(dates) != 14 {
		t.Fatalf("expected 14 dates, got %d", len(dates))
	}

	want := time.Date(2025, 2, 26, 0, 0, 0, 0, time.UTC)
	for i, d := range dates {
		if !d.Equal(want.AddDate(0, 0, i)) {
			t.Errorf("date[%d] = %v, want %v", i, d, want.AddDate(0, 0, i))
		}
	}

	// Window must roll over month boundaries.
	if got := dates[13]; got.Month() != time.March || got.Day() != 11 {
		t.Errorf("window end = %v, want 2025-03-11", got)
	}
}

func TestWindow_DefaultDays(t *testing.T) {
	if got := len(Window(time.Now(), 0)); got != DefaultWindowDays {
		t.Errorf("expected default %d dates, got %d", DefaultWindowDays, got)
	}
}

func TestIHCSlots(t *testing.T) {
	slots := IHCSlots()
	want := []string{"AM1", "AM2", "AM3", "PM1", "PM2", "PM3"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d", len(want), len(slots))
	}
	for i := range want {
		if slots[i] != want[i] {
			t.Errorf("slot[%d] = %s, want %s", i, slots[i], want[i])
		}
	}

	// Mutating the returned slice must not leak into later calls.
	slots[0] = "XX"
	if IHCSlots()[0] != "AM1" {
		t.Error("IHCSlots returned shared backing array")
	}
}

func TestValidIHCSlot(t *testing.T) {
	for _, s := range IHCSlots() {
		if !ValidIHCSlot(s) {
			t.Errorf("slot %s should be valid", s)
		}
	}
	for _, s := range []string{"", "AM4", "am1", "PM"} {
		if ValidIHCSlot(s) {
			t.Errorf("slot %q should be invalid", s)
		}
	}
}

func TestBSCGrid(t *testing.T) {
	g := BSCGrid{Cabinets: 4, SlotsPerDay: 5}

	tests := []struct {
		cabinet int
		slot    int
		okCab   bool
		okSlot  bool
	}{
		{1, 0, true, true},
		{4, 4, true, true},
		{0, 0, false, true},
		{5, 2, false, true},
		{2, -1, true, false},
		{2, 5, true, false},
	}
	for _, tt := range tests {
		if got := g.ValidCabinet(tt.cabinet); got != tt.okCab {
			t.Errorf("ValidCabinet(%d) = %v, want %v", tt.cabinet, got, tt.okCab)
		}
		if got := g.ValidSlot(tt.slot); got != tt.okSlot {
			t.Errorf("ValidSlot(%d) = %v, want %v", tt.slot, got, tt.okSlot)
		}
	}
}
