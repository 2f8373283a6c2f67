package booking

import (
	"context"
	"fmt"
	"time"

	"labreserve/internal/calendar"
	"labreserve/internal/database"
	"labreserve/internal/metrics"
	"labreserve/internal/models"

	"github.com/rs/zerolog"
)

// Mode selects what a batch item does to its slot.
type Mode string

const (
	ModeReserve Mode = "reserve"
	ModeCancel  Mode = "cancel"
)

// SlotKey identifies one cabinet time slot within a day.
type SlotKey struct {
	Date time.Time
	Slot int
}

// MarshalText renders the key as "YYYY-MM-DD/slot" so occupancy maps can be
// serialized directly.
func (k SlotKey) MarshalText() ([]byte, error) {
	return []byte(fmt.Sprintf("%s/%d", k.Date.Format("2006-01-02"), k.Slot)), nil
}

// BSCItem is one unit of a reservation batch.
type BSCItem struct {
	Date      time.Time
	CabinetID int
	Slot      int
	Mode      Mode
}

// BSCOccupancy is the derived display state for the cabinet grid. It is
// recomputed from the store on every read; nothing here is cached.
type BSCOccupancy struct {
	Dates     []time.Time
	WindowEnd time.Time
	Booked    map[int]map[SlotKey]string // cabinet -> slot -> actor
}

// BSC allocates exclusive cabinet time slots. Ownership is per
// (cabinet, date, slot); a change of actor requires cancel plus reserve.
type BSC struct {
	db         *database.DB
	grid       calendar.BSCGrid
	windowDays int
	logger     *zerolog.Logger
}

// NewBSC creates the cabinet allocation engine.
func NewBSC(db *database.DB, grid calendar.BSCGrid, windowDays int, logger *zerolog.Logger) *BSC {
	if windowDays <= 0 {
		windowDays = calendar.DefaultWindowDays
	}
	return &BSC{db: db, grid: grid, windowDays: windowDays, logger: logger}
}

// Grid returns the cabinet/slot grid the engine allocates against.
func (e *BSC) Grid() calendar.BSCGrid {
	return e.grid
}

// Occupancy scans reservations from yesterday onwards and groups them per
// cabinet. The 1-day lookback keeps yesterday's late-evening slots visible
// across midnight.
func (e *BSC) Occupancy(ctx context.Context, today time.Time) (*BSCOccupancy, error) {
	today = models.DateOnly(today)
	dates := calendar.Window(today, e.windowDays)

	records, err := e.db.ListBSCFrom(ctx, today.AddDate(0, 0, -1))
	if err != nil {
		return nil, fmt.Errorf("scan bsc occupancy: %w", err)
	}

	booked := make(map[int]map[SlotKey]string, e.grid.Cabinets)
	for cab := 1; cab <= e.grid.Cabinets; cab++ {
		booked[cab] = make(map[SlotKey]string)
	}
	for _, r := range records {
		if _, ok := booked[r.CabinetID]; !ok {
			continue
		}
		booked[r.CabinetID][SlotKey{Date: r.Date, Slot: r.Slot}] = r.ActorName
	}

	return &BSCOccupancy{
		Dates:     dates,
		WindowEnd: dates[len(dates)-1],
		Booked:    booked,
	}, nil
}

// ApplyBatch processes items in the given order and commits them as one
// unit. Reserving a taken slot and cancelling someone else's booking are
// skipped results, not errors; the whole batch only fails on store errors.
func (e *BSC) ApplyBatch(ctx context.Context, actor string, today time.Time, items []BSCItem) ([]Result, error) {
	if actor == "" {
		return nil, ErrNoActor
	}
	today = models.DateOnly(today)

	results := make([]Result, len(items))
	err := e.db.InTx(ctx, func(tx *database.Tx) error {
		for i, item := range items {
			res, err := e.applyItem(ctx, tx, actor, today, item)
			if err != nil {
				return fmt.Errorf("batch item %d: %w", i, err)
			}
			results[i] = res
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for _, res := range results {
		metrics.IncReservationOp("bsc", string(res.Status), string(res.Reason))
	}
	e.logger.Info().Str("actor", actor).Int("items", len(items)).Msg("bsc batch applied")
	return results, nil
}

func (e *BSC) applyItem(ctx context.Context, tx *database.Tx, actor string, today time.Time, item BSCItem) (Result, error) {
	date := models.DateOnly(item.Date)
	if !e.grid.ValidCabinet(item.CabinetID) || !e.grid.ValidSlot(item.Slot) {
		return skipped(ReasonInvalid), nil
	}

	switch item.Mode {
	case ModeReserve:
		if date.Before(today) || !date.Before(today.AddDate(0, 0, e.windowDays)) {
			return skipped(ReasonInvalid), nil
		}
		owner, err := tx.BSCOwner(ctx, item.CabinetID, date, item.Slot)
		if err != nil {
			return Result{}, err
		}
		if owner != "" {
			return skipped(ReasonAlreadyTaken), nil
		}
		err = tx.InsertBSC(ctx, models.BSCReservation{
			CabinetID: item.CabinetID,
			Date:      date,
			Slot:      item.Slot,
			ActorName: actor,
		})
		if err != nil {
			// The unique index caught a claim racing past our check.
			if database.IsUniqueViolation(err) {
				return skipped(ReasonAlreadyTaken), nil
			}
			return Result{}, err
		}
		return applied(), nil

	case ModeCancel:
		owner, err := tx.BSCOwner(ctx, item.CabinetID, date, item.Slot)
		if err != nil {
			return Result{}, err
		}
		if owner == "" {
			return skipped(ReasonNotFound), nil
		}
		if owner != actor {
			return skipped(ReasonNotOwner), nil
		}
		deleted, err := tx.DeleteBSCOwned(ctx, item.CabinetID, date, item.Slot, actor)
		if err != nil {
			return Result{}, err
		}
		if !deleted {
			return skipped(ReasonNotFound), nil
		}
		return applied(), nil

	default:
		return skipped(ReasonInvalid), nil
	}
}
