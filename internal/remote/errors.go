package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/oliveagle/jsonpath"
)

// TransportError is a network-level failure: the engine never answered
type TransportError struct {
	Op    string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport failure: %v", e.Op, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// RemoteError is a non-2xx answer from the engine
type RemoteError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *RemoteError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: engine returned %d: %s", e.Op, e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("%s: engine returned %d", e.Op, e.StatusCode)
}

// detailPaths are tried in order against an error body. FastAPI sends
// {"detail": "..."}; the rate limiter sends {"detail": {"message": "..."}}.
var detailPaths = []string{
	"$.detail",
	"$.detail.message",
	"$.detail.error",
	"$.error",
	"$.message",
}

// extractDetail pulls a human-readable message out of an error body
func extractDetail(body []byte) string {
	var doc interface{}
	if err := json.Unmarshal(body, &doc); err != nil {
		return ""
	}
	if _, ok := doc.(map[string]interface{}); !ok {
		return ""
	}

	for _, path := range detailPaths {
		value, err := jsonpath.JsonPathLookup(doc, path)
		if err != nil {
			continue
		}
		if s, ok := value.(string); ok && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// Detail returns the engine-supplied detail carried by err, if any
func Detail(err error) string {
	var remoteErr *RemoteError
	if errors.As(err, &remoteErr) {
		return remoteErr.Detail
	}
	return ""
}

// UserMessage prefers the engine's detail and falls back to a generic text
func UserMessage(err error, fallback string) string {
	if detail := Detail(err); detail != "" {
		return detail
	}
	return fallback
}

// IsNotFound reports whether the engine answered 404
func IsNotFound(err error) bool {
	var remoteErr *RemoteError
	return errors.As(err, &remoteErr) && remoteErr.StatusCode == 404
}
