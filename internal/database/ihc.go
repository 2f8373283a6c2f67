package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"labreserve/internal/models"
)

// ListIHCFrom returns all staining reservations dated from (inclusive)
// onwards, ordered by date and slot.
func (db *DB) ListIHCFrom(ctx context.Context, from time.Time) ([]models.IHCReservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, date, slot, tray_count, actor_name, created_at
		FROM ihc_reservations
		WHERE date >= ?
		ORDER BY date, slot, id`,
		fmtDate(from),
	)
	if err != nil {
		return nil, fmt.Errorf("list ihc reservations: %w", err)
	}
	defer rows.Close()

	var out []models.IHCReservation
	for rows.Next() {
		var r models.IHCReservation
		var date string
		if err := rows.Scan(&r.ID, &date, &r.Slot, &r.TrayCount, &r.ActorName, &r.CreatedAt); err != nil {
			return nil, err
		}
		if r.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("parse ihc date %q: %w", date, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// IHCTraySum returns the tray total currently booked for (date, slot).
func (tx *Tx) IHCTraySum(ctx context.Context, date time.Time, slot string) (int, error) {
	var sum int
	err := tx.tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(tray_count), 0) FROM ihc_reservations
		WHERE date = ? AND slot = ?`,
		fmtDate(date), slot,
	).Scan(&sum)
	return sum, err
}

// IHCSlotOwner returns the actor occupying (date, slot), or "" when free.
// Only meaningful in exclusive mode, where one record at most exists.
func (tx *Tx) IHCSlotOwner(ctx context.Context, date time.Time, slot string) (string, error) {
	var actor string
	err := tx.tx.QueryRowContext(ctx, `
		SELECT actor_name FROM ihc_reservations
		WHERE date = ? AND slot = ?
		ORDER BY id LIMIT 1`,
		fmtDate(date), slot,
	).Scan(&actor)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return actor, nil
}

// InsertIHC books trays in a staining slot.
func (tx *Tx) InsertIHC(ctx context.Context, r models.IHCReservation) error {
	_, err := tx.tx.ExecContext(ctx, `
		INSERT INTO ihc_reservations (date, slot, tray_count, actor_name)
		VALUES (?, ?, ?, ?)`,
		fmtDate(r.Date), r.Slot, r.TrayCount, r.ActorName,
	)
	return err
}

// DeleteIHCOwned removes the oldest reservation actor holds for
// (date, slot). A cancellation always removes a whole record, never a
// partial tray count. Returns whether a row was deleted.
func (tx *Tx) DeleteIHCOwned(ctx context.Context, date time.Time, slot, actor string) (bool, error) {
	res, err := tx.tx.ExecContext(ctx, `
		DELETE FROM ihc_reservations
		WHERE id = (
			SELECT id FROM ihc_reservations
			WHERE date = ? AND slot = ? AND actor_name = ?
			ORDER BY id LIMIT 1
		)`,
		fmtDate(date), slot, actor,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
