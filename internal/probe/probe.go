package probe

import (
	"context"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// Request describes a single reachability check. Port is ignored by ping.
type Request struct {
	Address string
	Port    int
	Timeout time.Duration
	Method  domain.Method
}

// Result is the raw outcome of a probe, before latency classification.
//
// LatencyMS is set only when a connection or echo reply succeeded. Reason is
// empty on success. Err keeps the underlying error for logging; it is never
// meant to be propagated.
type Result struct {
	Method    domain.Method
	LatencyMS *int64
	Reason    domain.FailureReason
	Err       error
}

func (r Result) OK() bool { return r.LatencyMS != nil }

// Prober performs one check and must return within req.Timeout (plus
// scheduling overhead), releasing any socket or subprocess it opened.
type Prober interface {
	Probe(ctx context.Context, req Request) Result
}

// ProberFunc adapts a plain function to Prober.
type ProberFunc func(ctx context.Context, req Request) Result

func (f ProberFunc) Probe(ctx context.Context, req Request) Result { return f(ctx, req) }

func roundMillis(d time.Duration) int64 {
	return d.Round(time.Millisecond).Milliseconds()
}
