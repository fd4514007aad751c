package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/pkg/middleware"
)

// maxErrorBody caps how much of a failed response is read for its detail
const maxErrorBody = 64 * 1024

// Client talks to the remote profiling, insights and export engines. The
// base URL is fixed at construction.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeouts   Timeouts
}

// NewClient creates a client for the engine at baseURL
func NewClient(baseURL string, httpClient *http.Client, timeouts Timeouts) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		timeouts:   timeouts,
	}
}

// BaseURL returns the engine base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// endpoint joins escaped path segments onto the base URL
func (c *Client) endpoint(query url.Values, segments ...string) string {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	u := c.baseURL + "/" + strings.Join(escaped, "/")
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends req and turns transport failures and non-2xx answers into
// typed errors. On success the caller owns resp.Body.
func (c *Client) do(req *http.Request, op string) (*http.Response, error) {
	ctx, correlationID := middleware.EnsureCorrelationID(req.Context())
	req = req.WithContext(ctx)
	req.Header.Set(middleware.CorrelationHeader, correlationID)

	slog.Debug("Calling profiling engine",
		"op", op,
		"method", req.Method,
		"url", req.URL.String(),
		"correlation_id", correlationID,
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Cause: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		remoteErr := &RemoteError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Detail:     extractDetail(body),
		}
		slog.Warn("Profiling engine returned an error",
			"op", op,
			"status_code", resp.StatusCode,
			"detail", remoteErr.Detail,
			"correlation_id", correlationID,
		)
		return nil, remoteErr
	}

	return resp, nil
}

// getJSON issues a GET and decodes a JSON body into v
func (c *Client) getJSON(ctx context.Context, op, target string, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, op)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return &TransportError{Op: op, Cause: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

// GetProfile fetches the status (and, once completed, the result) of a job
func (c *Client) GetProfile(ctx context.Context, jobID string) (*model.StatusResponse, error) {
	ctx, cancel := bound(ctx, c.timeouts.Request)
	defer cancel()
	var out model.StatusResponse
	if err := c.getJSON(ctx, "get profile", c.endpoint(nil, "api", "profile", jobID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetColumn fetches one column of a completed job
func (c *Client) GetColumn(ctx context.Context, jobID, column string) (*model.Column, error) {
	ctx, cancel := bound(ctx, c.timeouts.Request)
	defer cancel()
	var out model.Column
	target := c.endpoint(nil, "api", "profile", jobID, "column", column)
	if err := c.getJSON(ctx, "get column", target, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetInsights asks the insights engine to narrate a completed job
func (c *Client) GetInsights(ctx context.Context, jobID, modelID string) (*model.InsightsResponse, error) {
	ctx, cancel := bound(ctx, c.timeouts.Insights)
	defer cancel()
	var out model.InsightsResponse
	query := url.Values{"model": []string{modelID}}
	if err := c.getJSON(ctx, "get insights", c.endpoint(query, "api", "insights", jobID), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Report is a downloaded export with the metadata needed to save it
type Report struct {
	Body               []byte
	ContentType        string
	ContentDisposition string
}

// GetReport downloads an export of a job in the requested format
func (c *Client) GetReport(ctx context.Context, jobID, format string) (*Report, error) {
	const op = "get report"
	ctx, cancel := bound(ctx, c.timeouts.Transfer)
	defer cancel()
	query := url.Values{"format": []string{format}}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(query, "api", "report", jobID), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}

	resp, err := c.do(req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Cause: fmt.Errorf("read body: %w", err)}
	}

	return &Report{
		Body:               body,
		ContentType:        resp.Header.Get("Content-Type"),
		ContentDisposition: resp.Header.Get("Content-Disposition"),
	}, nil
}

// Ping checks that the engine answers at its root path
func (c *Client) Ping(ctx context.Context) error {
	const op = "ping"
	ctx, cancel := bound(ctx, c.timeouts.Request)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(nil), nil)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	resp, err := c.do(req, op)
	if err != nil {
		return err
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	return resp.Body.Close()
}
