package handler

import (
	"net/http"

	"github.com/dandantas/profilewatch/internal/insights"
	"github.com/dandantas/profilewatch/internal/session"
)

// InsightsHandler handles insights generation and the model catalog
type InsightsHandler struct {
	sessions *session.Manager
}

// NewInsightsHandler creates a new insights handler
func NewInsightsHandler(sessions *session.Manager) *InsightsHandler {
	return &InsightsHandler{sessions: sessions}
}

// GenerateRequest picks the model; empty selects the default
type GenerateRequest struct {
	Model string `json:"model"`
}

// Generate handles POST /api/v1/sessions/{id}/insights
func (h *InsightsHandler) Generate(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	var req GenerateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadBody(w, r, err)
		return
	}

	state, err := s.GenerateInsights(r.Context(), req.Model)
	if err != nil {
		writeFailure(w, err, insights.GenerateFailedMessage)
		return
	}
	writeJSON(w, http.StatusAccepted, state)
}

// Get handles GET /api/v1/sessions/{id}/insights
func (h *InsightsHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := lookupSession(h.sessions, w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Insights())
}

// Models handles GET /api/v1/models
func (h *InsightsHandler) Models(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"default": insights.DefaultModel,
		"models":  insights.Models(),
	})
}
