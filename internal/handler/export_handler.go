package handler

import (
	"net/http"
	"strings"

	"github.com/dandantas/profilewatch/internal/session"
)

// ExportHandler handles report exports
type ExportHandler struct {
	sessions *session.Manager
}

// NewExportHandler creates a new export handler
func NewExportHandler(sessions *session.Manager) *ExportHandler {
	return &ExportHandler{sessions: sessions}
}

// ExportRequest names the format: json, csv, pdf or xlsx
type ExportRequest struct {
	Format string `json:"format"`
}

// Create handles POST /api/v1/sessions/{id}/exports
func (h *ExportHandler) Create(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	var req ExportRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}
	if req.Format == "" {
		writeError(w, http.StatusBadRequest, "format is required")
		return
	}

	outcome, err := s.Export(r.Context(), req.Format)
	if err != nil {
		writeFailure(w, err, session.ExportMessage(err, strings.ToLower(req.Format)))
		return
	}
	writeJSON(w, http.StatusCreated, outcome)
}
