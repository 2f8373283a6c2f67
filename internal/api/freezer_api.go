package api

import (
	"net/http"

	"labreserve/internal/booking"
	"labreserve/internal/export"
	"labreserve/internal/metrics"
	"labreserve/internal/models"
)

// FreezerOpRequest is the body for POST /api/freezer. Op selects the
// operation; register needs Boxes, the rest need BoxID.
type FreezerOpRequest struct {
	Op    string `json:"op" validate:"required,oneof=register checkout return delete"`
	Boxes string `json:"boxes" validate:"required_if=Op register,max=2000"`
	BoxID int64  `json:"box_id" validate:"required_unless=Op register,omitempty,min=1"`
}

// FreezerListResponse is the reply for GET /api/freezer. In-use boxes
// come first, ordered most overdue first.
type FreezerListResponse struct {
	InUse     []booking.BoxView   `json:"in_use"`
	Available []models.FreezerBox `json:"available"`
}

// handleFreezerList returns the box pool with usage and priority.
// GET /api/freezer?today=YYYY-MM-DD
func (s *Server) handleFreezerList(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("freezer_list")

	list, ok := s.freezerSnapshot(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, FreezerListResponse{InUse: list.InUse, Available: list.Available})
}

// handleFreezerOp applies one box operation. Register is open to anyone;
// checkout binds the box to the session's actor.
// POST /api/freezer
func (s *Server) handleFreezerOp(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("freezer_op")

	var req FreezerOpRequest
	if !s.decodeValid(w, r, &req) {
		return
	}

	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	switch req.Op {
	case "register":
		results, err := s.freezer.RegisterBoxes(ctx, req.Boxes)
		if err != nil {
			s.logger.Error().Err(err).Msg("freezer register failed")
			writeError(w, http.StatusInternalServerError, "register failed")
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"status": "success", "results": results})
		return
	case "checkout":
		actor, ok := s.requireActor(w, r)
		if !ok {
			return
		}
		res, err := s.freezer.Checkout(ctx, actor, req.BoxID, today)
		s.writeFreezerResult(w, res, err)
		return
	case "return":
		res, err := s.freezer.Return(ctx, req.BoxID)
		s.writeFreezerResult(w, res, err)
		return
	case "delete":
		res, err := s.freezer.Delete(ctx, req.BoxID)
		s.writeFreezerResult(w, res, err)
		return
	}
}

// handleFreezerExport streams the box pool as an Excel workbook.
// GET /api/freezer/export
func (s *Server) handleFreezerExport(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("freezer_export")

	list, ok := s.freezerSnapshot(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="freezer_boxes.xlsx"`)
	if err := export.WriteFreezerReport(w, list); err != nil {
		s.logger.Error().Err(err).Msg("freezer export failed")
	}
}

func (s *Server) freezerSnapshot(w http.ResponseWriter, r *http.Request) (*booking.FreezerList, bool) {
	today, err := parseToday(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return nil, false
	}
	list, err := s.freezer.ListWithPriority(r.Context(), today)
	if err != nil {
		s.logger.Error().Err(err).Msg("freezer list failed")
		writeError(w, http.StatusInternalServerError, "box scan failed")
		return nil, false
	}
	return list, true
}

func (s *Server) writeFreezerResult(w http.ResponseWriter, res booking.Result, err error) {
	if err != nil {
		s.logger.Error().Err(err).Msg("freezer operation failed")
		writeError(w, http.StatusInternalServerError, "box operation failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "success", "result": res})
}
