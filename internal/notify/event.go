// Package notify delivers user-facing notifications about uploads, job
// outcomes, insights and exports.
package notify

import (
	"time"
)

// Kind is the operation an event reports on
type Kind string

const (
	KindUpload   Kind = "upload"
	KindJob      Kind = "job"
	KindInsights Kind = "insights"
	KindExport   Kind = "export"
)

// Level distinguishes success toasts from error toasts
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Event is one notification
type Event struct {
	Kind          Kind              `json:"kind"`
	Level         Level             `json:"level"`
	Message       string            `json:"message"`
	SessionID     string            `json:"session_id,omitempty"`
	JobID         string            `json:"job_id,omitempty"`
	CorrelationID string            `json:"correlation_id,omitempty"`
	Details       map[string]string `json:"details,omitempty"`
	Timestamp     time.Time         `json:"timestamp"`
}

// Success builds a success event
func Success(kind Kind, message string) Event {
	return Event{Kind: kind, Level: LevelSuccess, Message: message, Timestamp: time.Now().UTC()}
}

// Failure builds an error event
func Failure(kind Kind, message string) Event {
	return Event{Kind: kind, Level: LevelError, Message: message, Timestamp: time.Now().UTC()}
}

// With returns a copy of e carrying the given ids
func (e Event) With(sessionID, jobID string) Event {
	e.SessionID = sessionID
	e.JobID = jobID
	return e
}

// WithDetail returns a copy of e with one more detail entry
func (e Event) WithDetail(key, value string) Event {
	details := make(map[string]string, len(e.Details)+1)
	for k, v := range e.Details {
		details[k] = v
	}
	details[key] = value
	e.Details = details
	return e
}
