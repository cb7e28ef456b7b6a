package retry

import (
	"fmt"
	"sync"
	"time"
)

// ── Circuit breaker state ────────────────────────────────────────────

// State is the breaker's view of the endpoint.
type State int

const (
	// StateClosed: the endpoint looks healthy, transactions run.
	StateClosed State = iota
	// StateOpen: the endpoint keeps failing, transactions are refused
	// without touching the wire.
	StateOpen
	// StateHalfOpen: the cool-down elapsed, a few trial transactions
	// decide whether the endpoint recovered.
	StateHalfOpen
)

func (s State) String() string {
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

// ── Configuration ────────────────────────────────────────────────────

// CircuitBreakerConfig tunes a [CircuitBreaker].
type CircuitBreakerConfig struct {
	// MaxFailures is how many transactions may fail in a row before
	// the breaker refuses further ones (default 5).
	MaxFailures int
	// ResetTimeout is the cool-down an open breaker waits before
	// letting trial transactions through (default 30s).
	ResetTimeout time.Duration
	// HalfOpenMax is how many trials must succeed in a row before the
	// endpoint is trusted again (default 2).
	HalfOpenMax int
	// OnStateChange observes transitions.  It runs with the breaker's
	// lock held, so it must not call back into the breaker.
	OnStateChange func(from, to State)
}

// DefaultCircuitBreakerConfig returns the probe-mode defaults.
func DefaultCircuitBreakerConfig() *CircuitBreakerConfig {
	return &CircuitBreakerConfig{
		MaxFailures:  5,
		ResetTimeout: 30 * time.Second,
		HalfOpenMax:  2,
	}
}

// ── CircuitBreaker ───────────────────────────────────────────────────

// CircuitBreaker keeps a probe run from hammering an endpoint that has
// stopped answering: consecutive failures trip it open, and only a
// streak of successful trials after the cool-down closes it again.
type CircuitBreaker struct {
	mu          sync.Mutex
	state       State
	failStreak  int
	trialStreak int
	lastFailure time.Time

	maxFailures  int
	resetTimeout time.Duration
	halfOpenMax  int
	observe      func(from, to State)
}

// NewCircuitBreaker builds a breaker; nil cfg means the defaults.
func NewCircuitBreaker(cfg *CircuitBreakerConfig) *CircuitBreaker {
	if cfg == nil {
		cfg = DefaultCircuitBreakerConfig()
	}
	cb := &CircuitBreaker{
		state:        StateClosed,
		maxFailures:  cfg.MaxFailures,
		resetTimeout: cfg.ResetTimeout,
		halfOpenMax:  cfg.HalfOpenMax,
		observe:      cfg.OnStateChange,
	}
	if cb.maxFailures <= 0 {
		cb.maxFailures = 5
	}
	if cb.resetTimeout <= 0 {
		cb.resetTimeout = 30 * time.Second
	}
	if cb.halfOpenMax <= 0 {
		cb.halfOpenMax = 2
	}
	return cb
}

// Execute runs one transaction through the breaker.  While the breaker
// is open fn is never called; the returned error says how long until
// trials resume.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if err := cb.admit(); err != nil {
		return err
	}
	err := fn()
	cb.record(err)
	return err
}

// CurrentState returns the breaker's state.
func (cb *CircuitBreaker) CurrentState() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Failures returns the current run of consecutive failures.
func (cb *CircuitBreaker) Failures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.failStreak
}

// Reset forces the breaker closed and clears its streaks.
func (cb *CircuitBreaker) Reset() {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	cb.failStreak = 0
	cb.trialStreak = 0
	cb.transition(StateClosed)
}

// ── internal ─────────────────────────────────────────────────────────

// admit decides whether the next transaction may run.
func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state != StateOpen {
		return nil
	}
	elapsed := time.Since(cb.lastFailure)
	if elapsed > cb.resetTimeout {
		cb.transition(StateHalfOpen)
		return nil
	}
	return fmt.Errorf("circuit open after %d consecutive failures, trial in %v",
		cb.failStreak, (cb.resetTimeout - elapsed).Truncate(time.Second))
}

// record folds a transaction outcome into the streaks.
func (cb *CircuitBreaker) record(err error) {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if err != nil {
		cb.failStreak++
		cb.trialStreak = 0
		cb.lastFailure = time.Now()
		// A half-open breaker reopens on any failure; a closed one
		// only once the streak crosses the threshold.
		if cb.state == StateHalfOpen || cb.failStreak >= cb.maxFailures {
			cb.transition(StateOpen)
		}
		return
	}

	cb.trialStreak++
	switch cb.state {
	case StateHalfOpen:
		if cb.trialStreak >= cb.halfOpenMax {
			cb.failStreak = 0
			cb.transition(StateClosed)
		}
	case StateClosed:
		cb.failStreak = 0
	}
}

func (cb *CircuitBreaker) transition(to State) {
	from := cb.state
	if from == to {
		return
	}
	cb.state = to
	if cb.observe != nil {
		cb.observe(from, to)
	}
}
