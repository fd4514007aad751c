package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/profilewatch/internal/export"
	"github.com/dandantas/profilewatch/internal/remote"
)

func TestWriteFailureExportUsesNotificationText(t *testing.T) {
	rec := httptest.NewRecorder()
	err := &export.Failure{
		Format:  "csv",
		Message: "Failed to export CSV",
		Cause:   &remote.RemoteError{Op: "get report", StatusCode: 500, Detail: "Report generator crashed"},
	}

	writeFailure(rec, err, "")

	assert.Equal(t, http.StatusBadGateway, rec.Code)
	var body ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Failed to export CSV", body.Message)
}

func TestInvalidBodiesDoNotEchoDecoderErrors(t *testing.T) {
	ts := newTestServer(t, nil)
	id := completedSession(t, ts)

	for _, path := range []string{"/sort", "/selection", "/insights", "/exports"} {
		method := http.MethodPost
		if path == "/selection" {
			method = http.MethodPut
		}
		t.Run(path, func(t *testing.T) {
			rec := ts.do(t, method, "/api/v1/sessions/"+id+path, `{"field": 3`)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var body ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, "Invalid request body", body.Message)
		})
	}
}
