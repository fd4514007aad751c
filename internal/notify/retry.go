package notify

import (
	"math"
	"time"
)

// RetryPolicy is exponential backoff for webhook delivery
type RetryPolicy struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}

// withDefaults fills unset fields
func (p RetryPolicy) withDefaults() RetryPolicy {
	if p.MaxAttempts == 0 {
		p.MaxAttempts = 3
	}
	if p.InitialDelay == 0 {
		p.InitialDelay = time.Second
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = 30 * time.Second
	}
	if p.Multiplier == 0 {
		p.Multiplier = 2.0
	}
	return p
}

// Delay returns the wait before the attempt after the given one:
// min(initial * multiplier^(attempt-1), max)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt <= 0 {
		return 0
	}
	delay := float64(p.InitialDelay) * math.Pow(p.Multiplier, float64(attempt-1))
	if delay > float64(p.MaxDelay) {
		return p.MaxDelay
	}
	return time.Duration(delay)
}

// ShouldRetry decides whether a failed attempt is worth repeating
func (p RetryPolicy) ShouldRetry(attempt, statusCode int, err error) bool {
	if attempt >= p.MaxAttempts {
		return false
	}
	if err != nil && statusCode == 0 {
		return true
	}
	switch {
	case statusCode == 429:
		return true
	case statusCode >= 500:
		return true
	case statusCode >= 400:
		return false
	case statusCode >= 300:
		return true
	}
	return false
}
