package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"labreserve/internal/calendar"
	"labreserve/internal/database"
	"labreserve/internal/metrics"
	"labreserve/internal/models"

	"github.com/rs/zerolog"
)

// IHCMode selects which of the two observed staining booking behaviors the
// engine runs with. Capacity mode is the recommended one; exclusive mode is
// preserved for labs that book whole slots.
type IHCMode string

const (
	// IHCCapacity books summed tray capacity, today only.
	IHCCapacity IHCMode = "capacity"
	// IHCExclusive books whole slots, one owner each, future dates allowed.
	IHCExclusive IHCMode = "exclusive"
)

// DefaultTrayCap is the tray capacity of one staining slot.
const DefaultTrayCap = 3

// ErrWrongMode is returned when an operation belongs to the other staining
// mode than the engine is configured for.
var ErrWrongMode = errors.New("operation not available in this staining mode")

// IHCItem is one unit of an exclusive-mode batch.
type IHCItem struct {
	Date time.Time
	Slot string
	Mode Mode
}

// IHCOccupancy is the derived display state for the staining calendar.
// Exclusive mode fills Booked over the upcoming window; capacity mode fills
// Usage for today only.
type IHCOccupancy struct {
	Mode    IHCMode
	Dates   []time.Time
	Slots   []string
	TrayCap int
	Booked  map[string]map[string]string // date -> slot -> actor
	Usage   map[string]int               // slot -> trays booked today
}

// IHC allocates staining slots, either as exclusive units or as a shared
// tray pool, depending on mode.
type IHC struct {
	db         *database.DB
	mode       IHCMode
	trayCap    int
	windowDays int
	logger     *zerolog.Logger
}

// NewIHC creates the staining capacity engine.
func NewIHC(db *database.DB, mode IHCMode, trayCap, windowDays int, logger *zerolog.Logger) *IHC {
	if mode != IHCExclusive {
		mode = IHCCapacity
	}
	if trayCap <= 0 {
		trayCap = DefaultTrayCap
	}
	if windowDays <= 0 {
		windowDays = calendar.DefaultWindowDays
	}
	return &IHC{db: db, mode: mode, trayCap: trayCap, windowDays: windowDays, logger: logger}
}

// Mode returns the configured staining mode.
func (e *IHC) Mode() IHCMode {
	return e.mode
}

// TrayCap returns the per-slot tray capacity.
func (e *IHC) TrayCap() int {
	return e.trayCap
}

// Book claims trays in one of today's staining slots (capacity mode only;
// booking a future date is deliberately not possible here). The booking is
// accepted iff the slot's tray total stays within the cap.
func (e *IHC) Book(ctx context.Context, actor string, today time.Time, slot string, trays int) (Result, error) {
	if e.mode != IHCCapacity {
		return Result{}, ErrWrongMode
	}
	if actor == "" {
		return Result{}, ErrNoActor
	}
	today = models.DateOnly(today)

	var res Result
	err := e.db.InTx(ctx, func(tx *database.Tx) error {
		if !calendar.ValidIHCSlot(slot) || trays < 1 {
			res = skipped(ReasonInvalid)
			return nil
		}
		sum, err := tx.IHCTraySum(ctx, today, slot)
		if err != nil {
			return err
		}
		if sum+trays > e.trayCap {
			res = skipped(ReasonCapacityExceeded)
			return nil
		}
		if err := tx.InsertIHC(ctx, models.IHCReservation{
			Date:      today,
			Slot:      slot,
			TrayCount: trays,
			ActorName: actor,
		}); err != nil {
			return err
		}
		res = applied()
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("ihc book: %w", err)
	}

	metrics.IncReservationOp("ihc", string(res.Status), string(res.Reason))
	return res, nil
}

// Cancel removes the caller's own whole reservation for (date, slot).
// Tray counts are never partially reduced. Works in both modes.
func (e *IHC) Cancel(ctx context.Context, actor string, date time.Time, slot string) (Result, error) {
	if actor == "" {
		return Result{}, ErrNoActor
	}
	date = models.DateOnly(date)

	var res Result
	err := e.db.InTx(ctx, func(tx *database.Tx) error {
		deleted, err := tx.DeleteIHCOwned(ctx, date, slot, actor)
		if err != nil {
			return err
		}
		if !deleted {
			res = skipped(ReasonNotFound)
			return nil
		}
		res = applied()
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("ihc cancel: %w", err)
	}

	metrics.IncReservationOp("ihc", string(res.Status), string(res.Reason))
	return res, nil
}

// ApplyBatch processes exclusive-mode items in order inside one
// transaction, mirroring the cabinet batch semantics: occupied slots skip,
// cancels only touch the caller's own records.
func (e *IHC) ApplyBatch(ctx context.Context, actor string, today time.Time, items []IHCItem) ([]Result, error) {
	if e.mode != IHCExclusive {
		return nil, ErrWrongMode
	}
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
		metrics.IncReservationOp("ihc", string(res.Status), string(res.Reason))
	}
	e.logger.Info().Str("actor", actor).Int("items", len(items)).Msg("ihc batch applied")
	return results, nil
}

func (e *IHC) applyItem(ctx context.Context, tx *database.Tx, actor string, today time.Time, item IHCItem) (Result, error) {
	date := models.DateOnly(item.Date)
	if !calendar.ValidIHCSlot(item.Slot) {
		return skipped(ReasonInvalid), nil
	}

	switch item.Mode {
	case ModeReserve:
		if date.Before(today) || !date.Before(today.AddDate(0, 0, e.windowDays)) {
			return skipped(ReasonInvalid), nil
		}
		owner, err := tx.IHCSlotOwner(ctx, date, item.Slot)
		if err != nil {
			return Result{}, err
		}
		if owner != "" {
			return skipped(ReasonAlreadyTaken), nil
		}
		err = tx.InsertIHC(ctx, models.IHCReservation{
			Date:      date,
			Slot:      item.Slot,
			TrayCount: 1,
			ActorName: actor,
		})
		if err != nil {
			if database.IsUniqueViolation(err) {
				return skipped(ReasonAlreadyTaken), nil
			}
			return Result{}, err
		}
		return applied(), nil

	case ModeCancel:
		owner, err := tx.IHCSlotOwner(ctx, date, item.Slot)
		if err != nil {
			return Result{}, err
		}
		if owner == "" {
			return skipped(ReasonNotFound), nil
		}
		if owner != actor {
			return skipped(ReasonNotOwner), nil
		}
		deleted, err := tx.DeleteIHCOwned(ctx, date, item.Slot, actor)
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

// Occupancy recomputes the staining display state from the store.
func (e *IHC) Occupancy(ctx context.Context, today time.Time) (*IHCOccupancy, error) {
	today = models.DateOnly(today)
	occ := &IHCOccupancy{
		Mode:    e.mode,
		Dates:   calendar.Window(today, e.windowDays),
		Slots:   calendar.IHCSlots(),
		TrayCap: e.trayCap,
	}

	records, err := e.db.ListIHCFrom(ctx, today)
	if err != nil {
		return nil, fmt.Errorf("scan ihc occupancy: %w", err)
	}

	switch e.mode {
	case IHCExclusive:
		occ.Booked = make(map[string]map[string]string)
		for _, r := range records {
			day := r.Date.Format("2006-01-02")
			if occ.Booked[day] == nil {
				occ.Booked[day] = make(map[string]string)
			}
			occ.Booked[day][r.Slot] = r.ActorName
		}
	default:
		occ.Usage = make(map[string]int, len(occ.Slots))
		for _, s := range occ.Slots {
			occ.Usage[s] = 0
		}
		for _, r := range records {
			if !r.Date.Equal(today) {
				continue
			}
			occ.Usage[r.Slot] += r.TrayCount
		}
	}
	return occ, nil
}
