package remote

import (
	"context"
	"net/http"
	"time"
)

// Timeouts bound each kind of engine call. Zero leaves that kind unbounded.
type Timeouts struct {
	// Request covers status polls, column fetches and pings
	Request time.Duration
	// Transfer covers uploads and report downloads
	Transfer time.Duration
	// Insights covers the generative insights call
	Insights time.Duration
}

// DefaultTimeouts are used when the caller does not configure any
var DefaultTimeouts = Timeouts{
	Request:  30 * time.Second,
	Transfer: 5 * time.Minute,
	Insights: 3 * time.Minute,
}

// NewHTTPClient creates the pooled client shared by every call to the
// profiling engine. It sets no overall timeout; each call is bounded by
// its own context.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        100,
			MaxIdleConnsPerHost: 10,
			IdleConnTimeout:     90 * time.Second,
			TLSHandshakeTimeout: 10 * time.Second,
		},
	}
}

func bound(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
