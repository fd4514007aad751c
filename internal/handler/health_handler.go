package handler

import (
	"context"
	"net/http"
	"time"
)

// Pinger checks a dependency
type Pinger interface {
	Ping(ctx context.Context) error
}

// Counter reports a live count
type Counter interface {
	Len() int
}

// HealthHandler handles service health and readiness checks
type HealthHandler struct {
	engine    Pinger
	sessions  Counter
	startTime time.Time
	version   string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(engine Pinger, sessions Counter, version string) *HealthHandler {
	return &HealthHandler{
		engine:    engine,
		sessions:  sessions,
		startTime: time.Now(),
		version:   version,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Timestamp     string `json:"timestamp"`
	Sessions      int    `json:"sessions"`
	UptimeSeconds int64  `json:"uptime_seconds"`
}

// ReadyResponse represents the readiness check response
type ReadyResponse struct {
	Ready  bool   `json:"ready"`
	Engine string `json:"engine"`
}

// Health reports liveness only; it does not touch the engine
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		Sessions:      h.sessions.Len(),
		UptimeSeconds: int64(time.Since(h.startTime).Seconds()),
	})
}

// Ready reports whether the profiling engine is reachable
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	response := ReadyResponse{Ready: true, Engine: "reachable"}
	statusCode := http.StatusOK
	if err := h.engine.Ping(ctx); err != nil {
		response = ReadyResponse{Ready: false, Engine: "unreachable"}
		statusCode = http.StatusServiceUnavailable
	}

	writeJSON(w, statusCode, response)
}
