package notify

import (
	"sync"
	"time"
)

// CircuitState is the state of a Breaker
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Breaker stops webhook delivery after repeated failures and probes again
// once the cool-down has passed.
type Breaker struct {
	mu sync.Mutex

	state           CircuitState
	failures        int
	successes       int
	lastStateChange time.Time

	failureThreshold int
	successThreshold int
	coolDown         time.Duration
	now              func() time.Time
}

// NewBreaker opens after failureThreshold consecutive failures
func NewBreaker(failureThreshold, successThreshold int, coolDown time.Duration) *Breaker {
	return &Breaker{
		state:            StateClosed,
		failureThreshold: failureThreshold,
		successThreshold: successThreshold,
		coolDown:         coolDown,
		now:              time.Now,
		lastStateChange:  time.Now(),
	}
}

// Allow reports whether a delivery may be attempted
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateOpen:
		if b.now().Sub(b.lastStateChange) >= b.coolDown {
			b.transition(StateHalfOpen)
			return true
		}
		return false
	default:
		return true
	}
}

// Success records a delivered attempt
func (b *Breaker) Success() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed:
		b.failures = 0
	case StateHalfOpen:
		b.successes++
		if b.successes >= b.successThreshold {
			b.transition(StateClosed)
		}
	}
}

// Failure records a failed delivery
func (b *Breaker) Failure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures++
	switch b.state {
	case StateClosed:
		if b.failures >= b.failureThreshold {
			b.transition(StateOpen)
		}
	case StateHalfOpen:
		b.transition(StateOpen)
	}
}

// State returns the current state
func (b *Breaker) State() CircuitState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Breaker) transition(to CircuitState) {
	b.state = to
	b.failures = 0
	b.successes = 0
	b.lastStateChange = b.now()
}
