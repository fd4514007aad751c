package model

import "fmt"

// Validation reasons reported before a file leaves the machine
const (
	ReasonUnsupportedType = "unsupported type"
	ReasonTooLarge        = "too large"
)

// ValidationError is a local pre-flight rejection. It never reaches the
// remote engine or the job tracker.
type ValidationError struct {
	Reason string
	File   string
	Limit  int64 // byte limit, set for ReasonTooLarge
}

func (e *ValidationError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("validation failed for %s: %s", e.File, e.Reason)
	}
	return "validation failed: " + e.Reason
}

// UserMessage is the short text shown to the user
func (e *ValidationError) UserMessage() string {
	switch e.Reason {
	case ReasonUnsupportedType:
		return "Invalid file type. Please upload a CSV, Excel, or JSON file."
	case ReasonTooLarge:
		return fmt.Sprintf("File too large. Maximum size is %dMB.", e.Limit/(1<<20))
	default:
		return e.Reason
	}
}
