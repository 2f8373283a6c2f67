package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"labreserve/internal/models"
)

// ListBSCFrom returns all cabinet reservations dated from (inclusive)
// onwards, ordered by date and slot.
func (db *DB) ListBSCFrom(ctx context.Context, from time.Time) ([]models.BSCReservation, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT id, cabinet_id, date, slot, actor_name, created_at
		FROM bsc_reservations
		WHERE date >= ?
		ORDER BY date, cabinet_id, slot`,
		fmtDate(from),
	)
	if err != nil {
		return nil, fmt.Errorf("list bsc reservations: %w", err)
	}
	defer rows.Close()

	var out []models.BSCReservation
	for rows.Next() {
		var r models.BSCReservation
		var date string
		if err := rows.Scan(&r.ID, &r.CabinetID, &date, &r.Slot, &r.ActorName, &r.CreatedAt); err != nil {
			return nil, err
		}
		if r.Date, err = parseDate(date); err != nil {
			return nil, fmt.Errorf("parse bsc date %q: %w", date, err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// BSCOwner returns the actor holding (cabinet, date, slot), or "" when the
// slot is free.
func (tx *Tx) BSCOwner(ctx context.Context, cabinetID int, date time.Time, slot int) (string, error) {
	var actor string
	err := tx.tx.QueryRowContext(ctx, `
		SELECT actor_name FROM bsc_reservations
		WHERE cabinet_id = ? AND date = ? AND slot = ?`,
		cabinetID, fmtDate(date), slot,
	).Scan(&actor)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return actor, nil
}

// InsertBSC claims a cabinet slot. The unique index on
// (cabinet_id, date, slot) rejects a concurrent claim.
func (tx *Tx) InsertBSC(ctx context.Context, r models.BSCReservation) error {
	_, err := tx.tx.ExecContext(ctx, `
		INSERT INTO bsc_reservations (cabinet_id, date, slot, actor_name)
		VALUES (?, ?, ?, ?)`,
		r.CabinetID, fmtDate(r.Date), r.Slot, r.ActorName,
	)
	return err
}

// DeleteBSCOwned removes the reservation at (cabinet, date, slot) only when
// it is held by actor. Returns whether a row was deleted.
func (tx *Tx) DeleteBSCOwned(ctx context.Context, cabinetID int, date time.Time, slot int, actor string) (bool, error) {
	res, err := tx.tx.ExecContext(ctx, `
		DELETE FROM bsc_reservations
		WHERE cabinet_id = ? AND date = ? AND slot = ? AND actor_name = ?`,
		cabinetID, fmtDate(date), slot, actor,
	)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}
