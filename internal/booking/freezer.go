package booking

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"labreserve/internal/database"
	"labreserve/internal/metrics"
	"labreserve/internal/models"

	"github.com/rs/zerolog"
)

// DefaultOverdueAfterDays is how long a box may be held before it counts as
// overdue and starts climbing the priority list.
const DefaultOverdueAfterDays = 7

// BoxView is a freezer box with its derived occupancy-age fields, computed
// at read time.
type BoxView struct {
	models.FreezerBox
	Usage models.BoxUsage `json:"usage"`
}

// FreezerList is the derived display state of the box pool.
type FreezerList struct {
	InUse     []BoxView
	Available []models.FreezerBox
}

// Freezer manages long-lived checkout and return of storage boxes.
type Freezer struct {
	db           *database.DB
	overdueAfter int
	logger       *zerolog.Logger
}

// NewFreezer creates the box custody engine.
func NewFreezer(db *database.DB, overdueAfter int, logger *zerolog.Logger) *Freezer {
	if overdueAfter <= 0 {
		overdueAfter = DefaultOverdueAfterDays
	}
	return &Freezer{db: db, overdueAfter: overdueAfter, logger: logger}
}

// RegisterBoxes adds boxes from raw comma-separated input. Both ASCII and
// fullwidth commas separate names; whitespace is trimmed, empty tokens are
// dropped, and names already registered are skipped silently. One result is
// returned per surviving token, in input order.
func (e *Freezer) RegisterBoxes(ctx context.Context, raw string) ([]Result, error) {
	names := splitBoxNames(raw)
	if len(names) == 0 {
		return nil, nil
	}

	results := make([]Result, len(names))
	err := e.db.InTx(ctx, func(tx *database.Tx) error {
		for i, name := range names {
			exists, err := tx.FreezerBoxExists(ctx, name)
			if err != nil {
				return err
			}
			if exists {
				results[i] = skipped(ReasonDuplicate)
				continue
			}
			if err := tx.InsertFreezerBox(ctx, name); err != nil {
				if database.IsUniqueViolation(err) {
					results[i] = skipped(ReasonDuplicate)
					continue
				}
				return err
			}
			results[i] = applied()
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("register boxes: %w", err)
	}

	for _, res := range results {
		metrics.IncReservationOp("freezer", string(res.Status), string(res.Reason))
	}
	return results, nil
}

// splitBoxNames normalizes fullwidth commas, splits, trims, dedupes within
// the input and drops empty tokens.
func splitBoxNames(raw string) []string {
	raw = strings.ReplaceAll(raw, "，", ",")
	seen := make(map[string]bool)
	var names []string
	for _, tok := range strings.Split(raw, ",") {
		name := strings.TrimSpace(tok)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Checkout marks a box as held by actor starting today. Actor and start
// date are set together, never one without the other. Checking out a box
// someone else holds replaces their claim; the displaced occupant is
// reported in the result detail. (Whether overwrite should instead be
// rejected is an open point; the permissive behavior is kept deliberately
// and is covered by tests.)
func (e *Freezer) Checkout(ctx context.Context, actor string, boxID int64, today time.Time) (Result, error) {
	if actor == "" {
		return Result{}, ErrNoActor
	}
	today = models.DateOnly(today)

	var res Result
	err := e.db.InTx(ctx, func(tx *database.Tx) error {
		box, err := tx.FreezerBox(ctx, boxID)
		if err != nil {
			return err
		}
		if box == nil {
			res = skipped(ReasonNotFound)
			return nil
		}
		if err := tx.SetFreezerCustody(ctx, boxID, actor, today); err != nil {
			return err
		}
		if box.Occupied() && box.ActorName != actor {
			res = appliedDetail(box.ActorName)
			e.logger.Warn().
				Str("box", box.BoxName).
				Str("actor", actor).
				Str("displaced", box.ActorName).
				Msg("checkout displaced previous occupant")
			return nil
		}
		res = applied()
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("checkout box: %w", err)
	}

	metrics.IncReservationOp("freezer", string(res.Status), string(res.Reason))
	return res, nil
}

// Return puts a box back in the available pool, clearing actor and start
// date together. Any caller may return any box.
func (e *Freezer) Return(ctx context.Context, boxID int64) (Result, error) {
	var res Result
	err := e.db.InTx(ctx, func(tx *database.Tx) error {
		box, err := tx.FreezerBox(ctx, boxID)
		if err != nil {
			return err
		}
		if box == nil {
			res = skipped(ReasonNotFound)
			return nil
		}
		if err := tx.ClearFreezerCustody(ctx, boxID); err != nil {
			return err
		}
		res = applied()
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("return box: %w", err)
	}

	metrics.IncReservationOp("freezer", string(res.Status), string(res.Reason))
	return res, nil
}

// Delete removes a box record, but only while nobody holds it.
func (e *Freezer) Delete(ctx context.Context, boxID int64) (Result, error) {
	var res Result
	err := e.db.InTx(ctx, func(tx *database.Tx) error {
		box, err := tx.FreezerBox(ctx, boxID)
		if err != nil {
			return err
		}
		if box == nil {
			res = skipped(ReasonNotFound)
			return nil
		}
		if box.Occupied() {
			res = skipped(ReasonOccupied)
			return nil
		}
		if err := tx.DeleteFreezerBox(ctx, boxID); err != nil {
			return err
		}
		res = applied()
		return nil
	})
	if err != nil {
		return Result{}, fmt.Errorf("delete box: %w", err)
	}

	metrics.IncReservationOp("freezer", string(res.Status), string(res.Reason))
	return res, nil
}

// ListWithPriority partitions boxes into in-use and available. In-use boxes
// sort by (priority, name) ascending, so the most overdue box comes first
// and boxes under the threshold stay alphabetical; available boxes sort by
// name.
func (e *Freezer) ListWithPriority(ctx context.Context, today time.Time) (*FreezerList, error) {
	today = models.DateOnly(today)

	boxes, err := e.db.ListFreezerBoxes(ctx)
	if err != nil {
		return nil, fmt.Errorf("list boxes: %w", err)
	}

	list := &FreezerList{}
	for _, b := range boxes {
		if b.Occupied() {
			list.InUse = append(list.InUse, BoxView{
				FreezerBox: b,
				Usage:      models.Usage(b, today, e.overdueAfter),
			})
		} else {
			list.Available = append(list.Available, b)
		}
	}

	sort.Slice(list.InUse, func(i, j int) bool {
		a, b := list.InUse[i], list.InUse[j]
		if a.Usage.Priority != b.Usage.Priority {
			return a.Usage.Priority < b.Usage.Priority
		}
		return a.BoxName < b.BoxName
	})
	sort.Slice(list.Available, func(i, j int) bool {
		return list.Available[i].BoxName < list.Available[j].BoxName
	})
	return list, nil
}
