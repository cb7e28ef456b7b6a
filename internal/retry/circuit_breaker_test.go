package retry

import (
	"errors"
	"testing"
	"time"
)

func failing() error { return errors.New("endpoint down") }
func succeeding() error { return nil }

func TestCircuitBreaker_OpensAfterMaxFailures(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{MaxFailures: 3, ResetTimeout: time.Minute})

	for i := 0; i < 3; i++ {
		cb.Execute(failing) //nolint:errcheck
	}

	if got := cb.CurrentState(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	// While open, fn must not run.
	called := false
	err := cb.Execute(func() error {
		called = true
		return nil
	})
	if err == nil {
		t.Fatal("expected rejection while open")
	}
	if called {
		t.Error("fn should not run while the circuit is open")
	}
}

func TestCircuitBreaker_SuccessResetsFailureCount(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{MaxFailures: 3, ResetTimeout: time.Minute})

	cb.Execute(failing)    //nolint:errcheck
	cb.Execute(failing)    //nolint:errcheck
	cb.Execute(succeeding) //nolint:errcheck

	if got := cb.Failures(); got != 0 {
		t.Errorf("failures = %d, want 0 after success", got)
	}
	if got := cb.CurrentState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestCircuitBreaker_HalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 10 * time.Millisecond,
		HalfOpenMax:  2,
	})

	cb.Execute(failing) //nolint:errcheck
	if got := cb.CurrentState(); got != StateOpen {
		t.Fatalf("state = %v, want open", got)
	}

	time.Sleep(20 * time.Millisecond)

	// First success moves through half-open.
	if err := cb.Execute(succeeding); err != nil {
		t.Fatalf("half-open probe rejected: %v", err)
	}
	if got := cb.CurrentState(); got != StateHalfOpen {
		t.Fatalf("state = %v, want half-open", got)
	}

	// Second success closes the circuit.
	if err := cb.Execute(succeeding); err != nil {
		t.Fatal(err)
	}
	if got := cb.CurrentState(); got != StateClosed {
		t.Errorf("state = %v, want closed", got)
	}
}

func TestCircuitBreaker_HalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: 10 * time.Millisecond,
	})

	cb.Execute(failing) //nolint:errcheck
	time.Sleep(20 * time.Millisecond)

	cb.Execute(failing) //nolint:errcheck
	if got := cb.CurrentState(); got != StateOpen {
		t.Errorf("state = %v, want open after half-open failure", got)
	}
}

func TestCircuitBreaker_Reset(t *testing.T) {
	cb := NewCircuitBreaker(&CircuitBreakerConfig{MaxFailures: 1, ResetTimeout: time.Minute})

	cb.Execute(failing) //nolint:errcheck
	cb.Reset()

	if got := cb.CurrentState(); got != StateClosed {
		t.Errorf("state = %v, want closed after reset", got)
	}
	if got := cb.Failures(); got != 0 {
		t.Errorf("failures = %d, want 0 after reset", got)
	}
}

func TestCircuitBreaker_StateChangeCallback(t *testing.T) {
	var transitions []string
	cb := NewCircuitBreaker(&CircuitBreakerConfig{
		MaxFailures:  1,
		ResetTimeout: time.Minute,
		OnStateChange: func(from, to State) {
			transitions = append(transitions, from.String()+"->"+to.String())
		},
	})

	cb.Execute(failing) //nolint:errcheck

	if len(transitions) != 1 || transitions[0] != "closed->open" {
		t.Errorf("transitions = %v, want [closed->open]", transitions)
	}
}

func TestState_String(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{State(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("State(%d).String() = %q, want %q", tt.state, got, tt.want)
		}
	}
}
