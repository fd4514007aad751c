package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dandantas/profilewatch/internal/projector"
	"github.com/dandantas/profilewatch/internal/session"
)

// ColumnFetchFailedMessage is shown when a column refresh fails without detail
const ColumnFetchFailedMessage = "Failed to fetch column"

// AnalysisHandler serves the dashboard and column drill-down
type AnalysisHandler struct {
	sessions *session.Manager
}

// NewAnalysisHandler creates a new analysis handler
func NewAnalysisHandler(sessions *session.Manager) *AnalysisHandler {
	return &AnalysisHandler{sessions: sessions}
}

// Report handles GET /api/v1/sessions/{id}/report?sort=&dir=
func (h *AnalysisHandler) Report(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}

	var sortState *projector.SortState
	if raw := r.URL.Query().Get("sort"); raw != "" {
		field, err := projector.ParseSortField(raw)
		if err != nil {
			writeFailure(w, err, "Invalid sort field")
			return
		}
		dir, err := projector.ParseDirection(r.URL.Query().Get("dir"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid sort direction")
			return
		}
		if dir == projector.Unsorted {
			dir = projector.Ascending
		}
		sortState = &projector.SortState{Field: field, Direction: dir}
	} else if r.URL.Query().Has("sort") {
		sortState = &projector.SortState{}
	}

	report, err := s.Report(sortState)
	if err != nil {
		writeFailure(w, err, "Failed to build report")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// SortRequest names the table column whose header was clicked
type SortRequest struct {
	Field string `json:"field"`
}

// ToggleSort handles POST /api/v1/sessions/{id}/sort
func (h *AnalysisHandler) ToggleSort(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	var req SortRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}
	field, err := projector.ParseSortField(req.Field)
	if err != nil {
		writeFailure(w, err, "Invalid sort field")
		return
	}
	state, err := s.ToggleSort(field)
	if err != nil {
		writeFailure(w, err, "Invalid sort field")
		return
	}
	writeJSON(w, http.StatusOK, state)
}

// SelectRequest names the column to inspect
type SelectRequest struct {
	Column string `json:"column"`
}

// Select handles PUT /api/v1/sessions/{id}/selection
func (h *AnalysisHandler) Select(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	var req SelectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}
	if req.Column == "" {
		writeError(w, http.StatusBadRequest, "column is required")
		return
	}
	if err := s.Select(req.Column); err != nil {
		writeFailure(w, err, "Selection failed")
		return
	}
	h.writeDetail(w, s)
}

// Detail handles GET /api/v1/sessions/{id}/selection
func (h *AnalysisHandler) Detail(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	h.writeDetail(w, s)
}

func (h *AnalysisHandler) writeDetail(w http.ResponseWriter, s *session.Session) {
	view, err := s.Detail()
	if err != nil {
		writeFailure(w, err, "Failed to build column detail")
		return
	}
	if view == nil {
		writeError(w, http.StatusNotFound, "No column selected")
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// ClearSelection handles DELETE /api/v1/sessions/{id}/selection
func (h *AnalysisHandler) ClearSelection(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	s.ClearSelection()
	w.WriteHeader(http.StatusNoContent)
}

// Column handles GET /api/v1/sessions/{id}/columns/{name}
func (h *AnalysisHandler) Column(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	view, err := s.RefreshColumn(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		writeFailure(w, err, ColumnFetchFailedMessage)
		return
	}
	writeJSON(w, http.StatusOK, view)
}
