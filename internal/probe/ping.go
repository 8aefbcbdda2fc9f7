package probe

import (
	"context"
	"errors"
	"os/exec"
	"regexp"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// CommandRunner runs a subprocess and returns its combined output. The
// process must be gone when it returns.
type CommandRunner func(ctx context.Context, name string, args ...string) ([]byte, error)

// PingProber issues a single ICMP echo through the system ping utility.
type PingProber struct {
	Binary string
	GOOS   string
	Run    CommandRunner
}

func NewPingProber() *PingProber {
	return &PingProber{Binary: "ping", GOOS: runtime.GOOS, Run: execRunner}
}

// rttPattern matches "time=12.3 ms", "time<1ms" and the Spanish "tiempo=4ms".
var rttPattern = regexp.MustCompile(`(?i)(?:time|tiempo)\s*[=<]\s*([0-9]+(?:[.,][0-9]+)?)\s*ms`)

func (p *PingProber) Probe(ctx context.Context, req Request) Result {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	out, err := p.Run(ctx, p.Binary, pingArgs(p.GOOS, req.Address, timeout)...)
	elapsed := time.Since(start)
	if err != nil {
		reason := domain.ReasonOther
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			reason = domain.ReasonTimeout
		}
		return Result{Method: domain.MethodPing, Reason: reason, Err: err}
	}

	ms, ok := parseRTT(out)
	if !ok {
		ms = roundMillis(elapsed)
	}
	return Result{Method: domain.MethodPing, LatencyMS: &ms}
}

func pingArgs(goos, host string, timeout time.Duration) []string {
	secs := int((timeout + time.Second - 1) / time.Second)
	if secs < 1 {
		secs = 1
	}
	switch goos {
	case "windows":
		return []string{"-n", "1", "-w", strconv.FormatInt(timeout.Milliseconds(), 10), host}
	case "darwin", "freebsd", "openbsd", "netbsd":
		return []string{"-c", "1", "-t", strconv.Itoa(secs), host}
	default:
		return []string{"-c", "1", "-W", strconv.Itoa(secs), host}
	}
}

// parseRTT extracts the round trip from ping output, rounded to whole
// milliseconds. "time<1ms" is reported as 0.
func parseRTT(out []byte) (int64, bool) {
	m := rttPattern.FindSubmatch(out)
	if m == nil {
		return 0, false
	}
	v, err := strconv.ParseFloat(strings.ReplaceAll(string(m[1]), ",", "."), 64)
	if err != nil {
		return 0, false
	}
	if strings.Contains(string(m[0]), "<") {
		return 0, true
	}
	return int64(v + 0.5), true
}

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Do not wait for orphaned pipes once the process has been killed.
	cmd.WaitDelay = 100 * time.Millisecond
	return cmd.CombinedOutput()
}
