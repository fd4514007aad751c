package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dandantas/profilewatch/internal/intake"
	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/notify"
	"github.com/dandantas/profilewatch/internal/session"
	"github.com/dandantas/profilewatch/pkg/middleware"
)

// multipartOverhead is allowed on top of the file size limit for form
// boundaries and headers.
const multipartOverhead = 1 << 20

const (
	defaultWaitSec = 30
	maxWait        = 300 * time.Second
	// writeMargin leaves room to send the snapshot before the server's
	// write deadline.
	writeMargin = 5 * time.Second
)

// SessionHandler handles session lifecycle endpoints
type SessionHandler struct {
	sessions *session.Manager
	maxBytes int64
	maxWait  time.Duration
	feed     *notify.Recorder
}

// NewSessionHandler creates a new session handler. writeTimeout is the
// server's write deadline; long-polls end before it. feed may be nil.
func NewSessionHandler(sessions *session.Manager, maxBytes int64, writeTimeout time.Duration, feed *notify.Recorder) *SessionHandler {
	if maxBytes <= 0 {
		maxBytes = intake.DefaultMaxBytes
	}
	return &SessionHandler{sessions: sessions, maxBytes: maxBytes, maxWait: WaitLimit(writeTimeout), feed: feed}
}

// WaitLimit is the longest long-poll a server with the given write
// timeout can answer. Zero means no write deadline.
func WaitLimit(writeTimeout time.Duration) time.Duration {
	if writeTimeout <= 0 {
		return maxWait
	}
	limit := writeTimeout - writeMargin
	if limit < writeTimeout/2 {
		limit = writeTimeout / 2
	}
	if limit > maxWait {
		limit = maxWait
	}
	return limit
}

func clampWait(seconds int, limit time.Duration) time.Duration {
	wait := time.Duration(seconds) * time.Second
	if wait < time.Second {
		wait = time.Second
	}
	if wait > limit {
		wait = limit
	}
	return wait
}

// CreateResponse is returned after a successful upload
type CreateResponse struct {
	SessionID string          `json:"session_id"`
	Job       model.JobHandle `json:"job"`
	FileKind  string          `json:"file_kind,omitempty"`
	FileSize  string          `json:"file_size"`
	State     model.JobState  `json:"state"`
}

// Create handles POST /api/v1/sessions
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeFailure(w, &model.ValidationError{Reason: model.ReasonTooLarge, Limit: h.maxBytes}, "")
			return
		}
		writeError(w, http.StatusBadRequest, "Invalid multipart body")
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file is required")
		return
	}
	defer file.Close()

	s := h.sessions.Create()
	handle, err := s.Upload(r.Context(), intake.File{
		Name: header.Filename,
		Size: header.Size,
		Body: file,
	})
	if err != nil {
		_ = h.sessions.Delete(s.ID())
		writeFailure(w, err, intake.UploadFailedMessage)
		return
	}

	kind, _ := intake.FileKind(header.Filename)
	writeJSON(w, http.StatusCreated, CreateResponse{
		SessionID: s.ID(),
		Job:       handle,
		FileKind:  string(kind),
		FileSize:  intake.FormatSize(header.Size),
		State:     model.Processing(),
	})
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// Wait handles GET /api/v1/sessions/{id}/wait. It long-polls until the
// job is terminal or timeout_sec elapses, then returns the snapshot.
// timeout_sec is capped below the server's write timeout.
func (h *SessionHandler) Wait(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}

	wait := clampWait(parseQueryInt(r, "timeout_sec", defaultWaitSec), h.maxWait)

	ctx, cancel := context.WithTimeout(r.Context(), wait)
	defer cancel()

	if _, err := s.Wait(ctx); err != nil && !errors.Is(err, context.DeadlineExceeded) {
		slog.Debug("Wait ended early",
			"session_id", s.ID(),
			"error", err.Error(),
			"correlation_id", middleware.GetCorrelationID(r.Context()),
		)
	}
	writeJSON(w, http.StatusOK, s.Snapshot())
}

// Notifications handles GET /api/v1/sessions/{id}/notifications
func (h *SessionHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	events := []notify.Event{}
	if h.feed != nil {
		events = h.feed.ForSession(s.ID())
	}
	writeJSON(w, http.StatusOK, map[string]any{"notifications": events})
}

// Refresh handles POST /api/v1/sessions/{id}/refresh
func (h *SessionHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	s, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := s.Refresh(); err != nil {
		writeFailure(w, err, "Refresh failed")
		return
	}
	writeJSON(w, http.StatusAccepted, s.Snapshot())
}

// Delete handles DELETE /api/v1/sessions/{id}
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		writeFailure(w, err, "Delete failed")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	return lookupSession(h.sessions, w, r)
}

func lookupSession(sessions *session.Manager, w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, err := sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeFailure(w, err, "")
		return nil, false
	}
	return s, true
}
