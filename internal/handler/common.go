package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/dandantas/profilewatch/internal/detail"
	"github.com/dandantas/profilewatch/internal/export"
	"github.com/dandantas/profilewatch/internal/insights"
	"github.com/dandantas/profilewatch/internal/intake"
	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/projector"
	"github.com/dandantas/profilewatch/internal/remote"
	"github.com/dandantas/profilewatch/internal/session"
	"github.com/dandantas/profilewatch/pkg/middleware"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// writeJSON writes a JSON response
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}

// writeFailure maps a domain error to a status code and short message.
// fallback is used for remote failures that carry no detail.
func writeFailure(w http.ResponseWriter, err error, fallback string) {
	var (
		validation *model.ValidationError
		submit     *intake.SubmitError
		exportFail *export.Failure
	)

	switch {
	case errors.As(err, &validation):
		writeError(w, http.StatusBadRequest, validation.UserMessage())
	case errors.Is(err, session.ErrNotFound):
		writeError(w, http.StatusNotFound, "Session not found")
	case errors.Is(err, session.ErrClosed):
		writeError(w, http.StatusGone, "Session closed")
	case errors.Is(err, detail.ErrUnknownColumn):
		writeError(w, http.StatusNotFound, "Column not found")
	case errors.Is(err, session.ErrNoJob):
		writeError(w, http.StatusConflict, "No file has been uploaded")
	case errors.Is(err, session.ErrNoResult):
		writeError(w, http.StatusConflict, "No completed profile yet")
	case errors.Is(err, export.ErrExportInFlight):
		writeError(w, http.StatusConflict, "An export is already in progress")
	case errors.Is(err, export.ErrUnsupportedFormat):
		writeError(w, http.StatusBadRequest, "Unsupported export format")
	case errors.Is(err, projector.ErrNotSortable):
		writeError(w, http.StatusBadRequest, "Column is not sortable")
	case errors.Is(err, insights.ErrNoJob):
		writeError(w, http.StatusConflict, "No file has been uploaded")
	case errors.As(err, &submit):
		writeError(w, http.StatusBadGateway, submit.Message)
	case errors.As(err, &exportFail):
		writeError(w, http.StatusBadGateway, exportFail.Message)
	case remote.IsNotFound(err):
		writeError(w, http.StatusNotFound, remote.UserMessage(err, fallback))
	case isRemote(err):
		writeError(w, http.StatusBadGateway, remote.UserMessage(err, fallback))
	default:
		writeError(w, http.StatusInternalServerError, fallback)
	}
}

func isRemote(err error) bool {
	var (
		transport *remote.TransportError
		remoteErr *remote.RemoteError
	)
	return errors.As(err, &transport) || errors.As(err, &remoteErr)
}

// writeBadBody rejects an undecodable request body without echoing the
// decoder error
func writeBadBody(w http.ResponseWriter, r *http.Request, err error) {
	slog.Warn("Invalid request body",
		"path", r.URL.Path,
		"error", err.Error(),
		"correlation_id", middleware.GetCorrelationID(r.Context()),
	)
	writeError(w, http.StatusBadRequest, "Invalid request body")
}

// decodeJSON reads a small JSON body into v. An empty body leaves v as is.
func decodeJSON(r *http.Request, v interface{}) error {
	err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(v)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

// parseQueryInt parses an integer query parameter with a default value
func parseQueryInt(r *http.Request, key string, defaultValue int) int {
	value := r.URL.Query().Get(key)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}

	return intValue
}
