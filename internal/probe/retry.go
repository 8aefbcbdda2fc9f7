package probe

import (
	"context"
	"time"
)

// RetryProber repeats a failed probe. Each attempt is bounded by the request
// timeout on its own, so the total time grows with Attempts.
type RetryProber struct {
	Inner    Prober
	Attempts int
	Backoff  time.Duration
}

func (r *RetryProber) Probe(ctx context.Context, req Request) Result {
	attempts := r.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var last Result
	for i := 0; i < attempts; i++ {
		last = r.Inner.Probe(ctx, req)
		if last.OK() || i == attempts-1 {
			return last
		}
		t := time.NewTimer(r.Backoff)
		select {
		case <-ctx.Done():
			t.Stop()
			return last
		case <-t.C:
		}
	}
	return last
}
