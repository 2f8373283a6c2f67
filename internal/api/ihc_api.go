package api

import (
	"errors"
	"net/http"
	"time"

	"labreserve/internal/booking"
	"labreserve/internal/metrics"
)

// IHCRequest is the body for POST /api/ihc in capacity mode.
// Book claims trays in a slot today; cancel releases the caller's
// oldest claim for the given date and slot.
type IHCRequest struct {
	Action string `json:"action" validate:"required,oneof=book cancel"`
	Slot   string `json:"slot" validate:"required"`
	Trays  int    `json:"trays" validate:"min=0,max=10"`
	Date   string `json:"date" validate:"omitempty,datetime=2006-01-02"`
}

// IHCBatchRequest is the body for POST /api/ihc/batch in exclusive mode.
type IHCBatchRequest struct {
	Items []IHCBatchItem `json:"items" validate:"required,min=1,max=200,dive"`
}

// IHCBatchItem is one reserve or cancel unit inside a batch.
type IHCBatchItem struct {
	Date string `json:"date" validate:"required,datetime=2006-01-02"`
	Slot string `json:"slot" validate:"required"`
	Mode string `json:"mode" validate:"required,oneof=reserve cancel"`
}

// IHCOccupancyResponse is the reply for GET /api/ihc. Booked is filled
// in exclusive mode, usage in capacity mode.
type IHCOccupancyResponse struct {
	Mode    string                       `json:"mode"`
	Dates   []string                     `json:"dates"`
	Slots   []string                     `json:"slots"`
	TrayCap int                          `json:"tray_cap,omitempty"`
	Booked  map[string]map[string]string `json:"booked,omitempty"`
	Usage   map[string]int               `json:"usage,omitempty"`
}

// handleIHCOccupancy returns the staining calendar state.
// GET /api/ihc?today=YYYY-MM-DD
func (s *Server) handleIHCOccupancy(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("ihc_occupancy")

	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	occ, err := s.ihc.Occupancy(r.Context(), today)
	if err != nil {
		s.logger.Error().Err(err).Msg("ihc occupancy failed")
		writeError(w, http.StatusInternalServerError, "occupancy scan failed")
		return
	}

	writeJSON(w, http.StatusOK, IHCOccupancyResponse{
		Mode:    string(occ.Mode),
		Dates:   formatDates(occ.Dates),
		Slots:   occ.Slots,
		TrayCap: occ.TrayCap,
		Booked:  occ.Booked,
		Usage:   occ.Usage,
	})
}

// handleIHCAction books or cancels trays for the session's actor.
// POST /api/ihc
func (s *Server) handleIHCAction(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("ihc_action")

	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req IHCRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var res booking.Result
	switch req.Action {
	case "book":
		res, err = s.ihc.Book(r.Context(), actor, today, req.Slot, req.Trays)
	case "cancel":
		date := today
		if req.Date != "" {
			date, _ = time.Parse("2006-01-02", req.Date)
		}
		res, err = s.ihc.Cancel(r.Context(), actor, date, req.Slot)
	}
	if err != nil {
		s.writeIHCError(w, err, actor, "ihc action failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "result": res})
}

// handleIHCBatch applies an exclusive-mode reserve/cancel batch.
// POST /api/ihc/batch
func (s *Server) handleIHCBatch(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("ihc_batch")

	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req IHCBatchRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]booking.IHCItem, len(req.Items))
	for i, it := range req.Items {
		date, _ := time.Parse("2006-01-02", it.Date)
		items[i] = booking.IHCItem{Date: date, Slot: it.Slot, Mode: booking.Mode(it.Mode)}
	}

	results, err := s.ihc.ApplyBatch(r.Context(), actor, today, items)
	if err != nil {
		s.writeIHCError(w, err, actor, "ihc batch failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "results": results})
}

func (s *Server) writeIHCError(w http.ResponseWriter, err error, actor, msg string) {
	if errors.Is(err, booking.ErrWrongMode) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	s.logger.Error().Err(err).Str("actor", actor).Msg(msg)
	writeError(w, http.StatusInternalServerError, "staining operation failed")
}
