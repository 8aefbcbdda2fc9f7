package probe

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// TCPProber measures the time to establish a TCP connection. No data is sent;
// the connection is closed as soon as it is up.
type TCPProber struct {
	Dialer net.Dialer
}

func NewTCPProber() *TCPProber {
	return &TCPProber{}
}

func (p *TCPProber) Probe(ctx context.Context, req Request) Result {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	addr := net.JoinHostPort(req.Address, strconv.Itoa(req.Port))

	start := time.Now()
	conn, err := p.Dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return Result{Method: domain.MethodTCP, Reason: failureReason(err), Err: err}
	}
	ms := roundMillis(time.Since(start))
	_ = conn.Close()
	return Result{Method: domain.MethodTCP, LatencyMS: &ms}
}

func failureReason(err error) domain.FailureReason {
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return domain.ReasonDNSError
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return domain.ReasonTimeout
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return domain.ReasonTimeout
	}
	if errors.Is(err, syscall.ECONNREFUSED) ||
		errors.Is(err, syscall.EHOSTUNREACH) ||
		errors.Is(err, syscall.ENETUNREACH) {
		return domain.ReasonRefused
	}
	return domain.ReasonOther
}
