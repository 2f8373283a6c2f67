package api

import (
	"net/http"
	"time"

	"labreserve/internal/booking"
	"labreserve/internal/metrics"
)

// BSCBatchRequest is the body for POST /api/bsc/batch.
type BSCBatchRequest struct {
	Items []BSCBatchItem `json:"items" validate:"required,min=1,max=200,dive"`
}

// BSCBatchItem is one reserve or cancel unit inside a batch.
type BSCBatchItem struct {
	Date      string `json:"date" validate:"required,datetime=2006-01-02"`
	CabinetID int    `json:"cabinet_id" validate:"required,min=1"`
	Slot      int    `json:"slot" validate:"min=0"`
	Mode      string `json:"mode" validate:"required,oneof=reserve cancel"`
}

// BSCOccupancyResponse is the reply for GET /api/bsc.
type BSCOccupancyResponse struct {
	Dates     []string                           `json:"dates"`
	WindowEnd string                             `json:"window_end"`
	Occupancy map[int]map[booking.SlotKey]string `json:"occupancy"`
	Cabinets  int                                `json:"cabinets"`
	Slots     int                                `json:"slots_per_day"`
}

// handleBSCOccupancy returns the cabinet grid with current owners.
// GET /api/bsc?today=YYYY-MM-DD
func (s *Server) handleBSCOccupancy(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bsc_occupancy")

	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	occ, err := s.bsc.Occupancy(r.Context(), today)
	if err != nil {
		s.logger.Error().Err(err).Msg("bsc occupancy failed")
		writeError(w, http.StatusInternalServerError, "occupancy scan failed")
		return
	}

	grid := s.bsc.Grid()
	writeJSON(w, http.StatusOK, BSCOccupancyResponse{
		Dates:     formatDates(occ.Dates),
		WindowEnd: occ.WindowEnd.Format("2006-01-02"),
		Occupancy: occ.Booked,
		Cabinets:  grid.Cabinets,
		Slots:     grid.SlotsPerDay,
	})
}

// handleBSCBatch applies a reserve/cancel batch for the session's actor.
// POST /api/bsc/batch
func (s *Server) handleBSCBatch(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("bsc_batch")

	actor, ok := s.requireActor(w, r)
	if !ok {
		return
	}

	var req BSCBatchRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	items := make([]booking.BSCItem, len(req.Items))
	for i, it := range req.Items {
		// Date format already validated by the schema.
		date, _ := time.Parse("2006-01-02", it.Date)
		items[i] = booking.BSCItem{
			Date:      date,
			CabinetID: it.CabinetID,
			Slot:      it.Slot,
			Mode:      booking.Mode(it.Mode),
		}
	}

	results, err := s.bsc.ApplyBatch(r.Context(), actor, today, items)
	if err != nil {
		s.logger.Error().Err(err).Str("actor", actor).Msg("bsc batch failed")
		writeError(w, http.StatusInternalServerError, "batch failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "results": results})
}

func formatDates(dates []time.Time) []string {
	out := make([]string, len(dates))
	for i, d := range dates {
		out[i] = d.Format("2006-01-02")
	}
	return out
}
