package booking

import (
	"context"
	"strings"
	"unicode/utf8"

	"labreserve/internal/database"
	"labreserve/internal/metrics"
	"labreserve/internal/models"

	"github.com/rs/zerolog"
)

// Registry maintains the set of valid actor names. Every other engine
// resolves the current actor against it through the session boundary.
type Registry struct {
	db     *database.DB
	logger *zerolog.Logger
}

// NewRegistry creates the actor registry.
func NewRegistry(db *database.DB, logger *zerolog.Logger) *Registry {
	return &Registry{db: db, logger: logger}
}

// Add registers a new actor name. Empty, overlong and duplicate names are
// skipped, not errors.
func (r *Registry) Add(ctx context.Context, name string) (Result, error) {
	name = strings.TrimSpace(name)

	res, err := r.add(ctx, name)
	if err != nil {
		return res, err
	}
	metrics.IncReservationOp("actors", string(res.Status), string(res.Reason))
	if res.Applied() {
		r.logger.Info().Str("actor", name).Msg("actor registered")
	}
	return res, nil
}

func (r *Registry) add(ctx context.Context, name string) (Result, error) {
	if name == "" || utf8.RuneCountInString(name) > models.MaxActorNameLen {
		return skipped(ReasonInvalid), nil
	}

	var res Result
	err := r.db.InTx(ctx, func(tx *database.Tx) error {
		exists, err := tx.ActorExists(ctx, name)
		if err != nil {
			return err
		}
		if exists {
			res = skipped(ReasonDuplicate)
			return nil
		}
		if err := tx.InsertActor(ctx, name); err != nil {
			if database.IsUniqueViolation(err) {
				res = skipped(ReasonDuplicate)
				return nil
			}
			return err
		}
		res = applied()
		return nil
	})
	return res, err
}

// Delete removes an actor by id. Reservations referencing the name stay in
// place; orphaned actor names are tolerated by design.
func (r *Registry) Delete(ctx context.Context, id int64) (Result, error) {
	deleted, err := r.db.DeleteActor(ctx, id)
	if err != nil {
		return Result{}, err
	}
	if !deleted {
		return skipped(ReasonNotFound), nil
	}
	r.logger.Info().Int64("actor_id", id).Msg("actor deleted")
	return applied(), nil
}

// List returns all registered actors ordered by name.
func (r *Registry) List(ctx context.Context) ([]models.Actor, error) {
	return r.db.ListActors(ctx)
}

// Exists reports whether name is a registered actor.
func (r *Registry) Exists(ctx context.Context, name string) (bool, error) {
	return r.db.ActorExists(ctx, name)
}
