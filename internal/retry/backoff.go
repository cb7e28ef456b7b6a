// Package retry provides the re-execution policies gotx layers over a
// failed transaction: exponential backoff for one-off retries and a
// circuit breaker for probe runs.
package retry

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// ── Permanent errors ─────────────────────────────────────────────────

// PermanentError marks a failure that re-running the transaction
// cannot fix, such as rejected input.  The backoff loop stops on it
// immediately and hands back the inner error.
type PermanentError struct {
	Err error
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }

// Permanent wraps err so the backoff loop gives up on it at once.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

// IsPermanent reports whether err carries the permanent marker.
func IsPermanent(err error) bool {
	var pe *PermanentError
	return errors.As(err, &pe)
}

// ── Backoff ──────────────────────────────────────────────────────────

// Backoff re-runs a transaction with exponentially growing pauses.
// The zero value works; unset fields take the documented defaults.
type Backoff struct {
	// InitialDelay is the pause before the second attempt (default 1s).
	InitialDelay time.Duration
	// MaxDelay caps the pause however many attempts have failed
	// (default 60s).
	MaxDelay time.Duration
	// Multiplier grows the pause after each failure (default 2.0).
	Multiplier float64
	// MaxAttempts bounds the total attempts, first included.  Zero
	// means keep trying until the context says stop (default 10).
	MaxAttempts int
	// Jitter spreads the pauses ±25% so parallel invocations do not
	// hit the endpoint in lockstep.
	Jitter bool
}

// DefaultBackoff returns the policy used by the --retries flag.
func DefaultBackoff() *Backoff {
	return &Backoff{
		InitialDelay: 1 * time.Second,
		MaxDelay:     60 * time.Second,
		Multiplier:   2.0,
		MaxAttempts:  10,
		Jitter:       true,
	}
}

// Do runs fn until it returns nil, returns a [Permanent] error, runs
// out of attempts, or the context is cancelled.  The attempt number
// passed to fn is 1-based.
func (b *Backoff) Do(ctx context.Context, fn func(attempt int) error) error {
	pause := b.InitialDelay
	if pause == 0 {
		pause = time.Second
	}
	growth := b.Multiplier
	if growth <= 0 {
		growth = 2.0
	}
	ceiling := b.MaxDelay
	if ceiling == 0 {
		ceiling = 60 * time.Second
	}

	for attempt := 1; ; attempt++ {
		err := fn(attempt)
		if err == nil {
			return nil
		}

		var pe *PermanentError
		if errors.As(err, &pe) {
			return pe.Err
		}

		if b.MaxAttempts > 0 && attempt >= b.MaxAttempts {
			return fmt.Errorf("max retries (%d) exceeded: %w", b.MaxAttempts, err)
		}

		wait := pause
		if b.Jitter {
			wait = addJitter(pause)
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("retry cancelled: %w", ctx.Err())
		case <-time.After(wait):
		}

		if pause = time.Duration(float64(pause) * growth); pause > ceiling {
			pause = ceiling
		}
	}
}

// addJitter spreads d by ±25%, never below a millisecond.
func addJitter(d time.Duration) time.Duration {
	span := float64(d) * 0.25
	jittered := float64(d) + (rand.Float64()*2*span - span)
	return time.Duration(math.Max(jittered, float64(time.Millisecond)))
}
