package api

import (
	"net/http"
	"strconv"

	"labreserve/internal/booking"
	"labreserve/internal/metrics"
	"labreserve/internal/session"
)

// AddActorRequest is the body for POST /api/actors.
type AddActorRequest struct {
	Name string `json:"name" validate:"required"`
}

// SetSessionRequest is the body for POST /api/session.
type SetSessionRequest struct {
	ActorName string `json:"actor_name" validate:"required"`
}

// handleListActors returns all registered actors.
// GET /api/actors
func (s *Server) handleListActors(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("actors_list")

	actors, err := s.registry.List(r.Context())
	if err != nil {
		s.logger.Error().Err(err).Msg("list actors failed")
		writeError(w, http.StatusInternalServerError, "list actors failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"actors": actors})
}

// handleAddActor registers a new actor name and returns the updated list.
// Overlong or duplicate names come back as a skipped result, not an error.
// POST /api/actors
func (s *Server) handleAddActor(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("actors_add")

	var req AddActorRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	res, err := s.registry.Add(r.Context(), req.Name)
	if err != nil {
		s.logger.Error().Err(err).Msg("add actor failed")
		writeError(w, http.StatusInternalServerError, "add actor failed")
		return
	}

	actors, err := s.registry.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "list actors failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"result": res,
		"actors": actors,
	})
}

// handleDeleteActor removes an actor by id. Reservations under the name
// stay; a missing id is a no-op.
// DELETE /api/actors/{id}
func (s *Server) handleDeleteActor(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("actors_delete")

	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid actor id")
		return
	}

	res, err := s.registry.Delete(r.Context(), id)
	if err != nil {
		s.logger.Error().Err(err).Msg("delete actor failed")
		writeError(w, http.StatusInternalServerError, "delete actor failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "result": res})
}

// handleSetSession binds the caller's session cookie to an actor. The
// actor must be registered; the cookie is the only place the binding
// lives, engines always receive the actor explicitly.
// POST /api/session
func (s *Server) handleSetSession(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("session_set")

	var req SetSessionRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	exists, err := s.registry.Exists(r.Context(), req.ActorName)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "session setup failed")
		return
	}
	if !exists {
		writeJSON(w, http.StatusOK, map[string]any{
			"status": "success",
			"result": booking.Result{Status: booking.StatusSkipped, Reason: booking.ReasonNotFound},
		})
		return
	}

	token := session.NewToken()
	if err := s.sessions.Set(r.Context(), token, req.ActorName, s.sessionTTL); err != nil {
		s.logger.Error().Err(err).Msg("store session failed")
		writeError(w, http.StatusInternalServerError, "session setup failed")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookie,
		Value:    token,
		Path:     "/",
		MaxAge:   int(s.sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	metrics.IncSessionCreated()
	writeJSON(w, http.StatusOK, map[string]any{
		"status": "success",
		"result": booking.Result{Status: booking.StatusApplied},
	})
}
