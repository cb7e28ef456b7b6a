package txn

import (
	"context"
	"time"

	"gotx/internal/retry"
	"gotx/util"
)

// ProbeResult records the outcome of one probe attempt.
type ProbeResult struct {
	Attempt  int
	Duration time.Duration
	Bytes    int
	Err      error
}

// Prober runs repeated transactions against the same endpoint, pacing
// them by Interval and guarding the target with a circuit breaker so a
// dead endpoint is not hammered for the full probe count.
type Prober struct {
	Client   *Client
	Count    int
	Interval time.Duration
	Breaker  *retry.CircuitBreaker
	Logger   *util.Logger
}

// Run executes up to p.Count probes and returns one result per attempt
// actually made.  It stops early when the context is cancelled; breaker
// rejections are recorded as failed attempts, not skipped ones.
func (p *Prober) Run(ctx context.Context, address string, port int, payload []byte, bufSize int) []ProbeResult {
	results := make([]ProbeResult, 0, p.Count)

	for i := 1; i <= p.Count; i++ {
		if ctx.Err() != nil {
			break
		}

		var n int
		start := time.Now()
		err := p.Breaker.Execute(func() error {
			var buf []byte
			if bufSize <= util.DefaultBufSize {
				pooled := util.GetBuf()
				defer util.PutBuf(pooled)
				buf = (*pooled)[:bufSize]
			} else {
				buf = make([]byte, bufSize)
			}
			var derr error
			n, derr = p.Client.Do(ctx, address, port, payload, buf)
			return derr
		})
		elapsed := time.Since(start)

		results = append(results, ProbeResult{
			Attempt:  i,
			Duration: elapsed,
			Bytes:    n,
			Err:      err,
		})

		if err != nil {
			p.logger().Warn("probe %d/%d failed after %v: %v", i, p.Count, elapsed.Round(time.Millisecond), err)
		} else {
			p.logger().Info("probe %d/%d ok: %d bytes in %v", i, p.Count, n, elapsed.Round(time.Millisecond))
		}

		if i == p.Count {
			break
		}
		select {
		case <-ctx.Done():
			return results
		case <-time.After(p.Interval):
		}
	}
	return results
}

func (p *Prober) logger() *util.Logger {
	if p.Logger != nil {
		return p.Logger
	}
	return util.NewLogger(0)
}
