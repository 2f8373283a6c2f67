package database

import (
	"context"
	"fmt"

	"labreserve/internal/models"
)

// ListActors returns all registered actors ordered by name.
func (db *DB) ListActors(ctx context.Context) ([]models.Actor, error) {
	rows, err := db.QueryContext(ctx,
		"SELECT id, name, created_at FROM actors ORDER BY name")
	if err != nil {
		return nil, fmt.Errorf("list actors: %w", err)
	}
	defer rows.Close()

	var actors []models.Actor
	for rows.Next() {
		var a models.Actor
		if err := rows.Scan(&a.ID, &a.Name, &a.CreatedAt); err != nil {
			return nil, err
		}
		actors = append(actors, a)
	}
	return actors, rows.Err()
}

// ActorExists reports whether an actor with the given name is registered.
func (db *DB) ActorExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM actors WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// DeleteActor removes an actor by id. Existing reservations keep their
// actor_name reference; there is no cascade.
func (db *DB) DeleteActor(ctx context.Context, id int64) (bool, error) {
	res, err := db.ExecContext(ctx, "DELETE FROM actors WHERE id = ?", id)
	if err != nil {
		return false, fmt.Errorf("delete actor: %w", err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// ActorExists reports whether an actor with the given name is registered.
func (tx *Tx) ActorExists(ctx context.Context, name string) (bool, error) {
	var count int
	err := tx.tx.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM actors WHERE name = ?", name).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertActor registers a new actor name.
func (tx *Tx) InsertActor(ctx context.Context, name string) error {
	_, err := tx.tx.ExecContext(ctx, "INSERT INTO actors (name) VALUES (?)", name)
	return err
}
