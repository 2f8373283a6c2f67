package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"labreserve/internal/models"
)

func scanFreezerBox(row interface {
	Scan(dest ...any) error
}) (*models.FreezerBox, error) {
	var b models.FreezerBox
	var start string
	err := row.Scan(&b.ID, &b.BoxName, &b.ActorName, &start, &b.CreatedAt)
	if err != nil {
		return nil, err
	}
	if b.StartDate, err = parseDate(start); err != nil {
		return nil, fmt.Errorf("parse box start date %q: %w", start, err)
	}
	return &b, nil
}

// ListFreezerBoxes returns every registered box.
func (db *DB) ListFreezerBoxes(ctx context.Context) ([]models.FreezerBox, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, box_name, actor_name, start_date, created_at FROM freezer_boxes")
	if err != nil {
		return nil, fmt.Errorf("list freezer boxes: %w", err)
	}
	defer rows.Close()

	var boxes []models.FreezerBox
	for rows.Next() {
		b, err := scanFreezerBox(rows)
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, *b)
	}
	return boxes, rows.Err()
}

// FreezerBox returns the box with the given id, or nil when absent.
func (tx *Tx) FreezerBox(ctx context.Context, id int64) (*models.FreezerBox, error) {
	b, err := scanFreezerBox(tx.tx.QueryRowContext(ctx,
		"SELECT id, box_name, actor_name, start_date, created_at FROM freezer_boxes WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return b, err
}

// FreezerBoxExists reports whether a box with the given name is registered.
func (tx *Tx) FreezerBoxExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := tx.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM freezer_boxes WHERE box_name = ?", name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertFreezerBox registers a new, available box.
func (tx *Tx) InsertFreezerBox(ctx context.Context, name string) error {
	_, err := tx.tx.ExecContext(ctx,
		"INSERT INTO freezer_boxes (box_name) VALUES (?)", name)
	return err
}

// SetFreezerCustody marks a box as checked out: actor and start date are
// written in one statement so neither is ever observed without the other.
func (tx *Tx) SetFreezerCustody(ctx context.Context, id int64, actor string, start time.Time) error {
	_, err := tx.tx.ExecContext(ctx,
		"UPDATE freezer_boxes SET actor_name = ?, start_date = ? WHERE id = ?",
		actor, fmtDate(start), id)
	return err
}

// ClearFreezerCustody returns a box to the available pool, clearing actor
// and start date together.
func (tx *Tx) ClearFreezerCustody(ctx context.Context, id int64) error {
	_, err := tx.tx.ExecContext(ctx,
		"UPDATE freezer_boxes SET actor_name = '', start_date = '' WHERE id = ?", id)
	return err
}

// DeleteFreezerBox removes a box record.
func (tx *Tx) DeleteFreezerBox(ctx context.Context, id int64) error {
	_, err := tx.tx.ExecContext(ctx, "DELETE FROM freezer_boxes WHERE id = ?", id)
	return err
}
