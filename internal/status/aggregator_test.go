package status

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/health"
	"github.com/hamed0406/netmonitor/internal/probe"
)

// portProber answers from a table keyed by port; missing ports time out.
type portProber struct {
	latency map[int]int64
	delay   time.Duration
	calls   atomic.Int32
	methods chan domain.Method
}

func (p *portProber) Probe(ctx context.Context, req probe.Request) probe.Result {
	p.calls.Add(1)
	if p.methods != nil {
		p.methods <- req.Method
	}
	if p.delay > 0 {
		time.Sleep(p.delay)
	}
	if ms, ok := p.latency[req.Port]; ok {
		return probe.Result{Method: req.Method, LatencyMS: domain.Millis(ms)}
	}
	return probe.Result{Method: req.Method, Reason: domain.ReasonTimeout}
}

func newAggregator(p probe.Prober) *Aggregator {
	return NewAggregator(zap.NewNop(), p, health.Thresholds{Good: 100, Warning: 300}, time.Second)
}

func server(ports ...int) domain.Server {
	s := domain.Server{ID: "app", Name: "App", Host: "10.0.0.1"}
	for i, port := range ports {
		s.Services = append(s.Services, domain.Service{Name: string(rune('A' + i)), Port: port, Protocol: "TCP"})
	}
	return s
}

func TestEvaluateServer_MixedServices(t *testing.T) {
	p := &portProber{latency: map[int]int64{1: 40, 2: 250}}
	st := newAggregator(p).EvaluateServer(context.Background(), server(1, 2, 3))

	assert.Equal(t, domain.LevelUnreachable, st.Level)
	require.NotNil(t, st.LatencyMS)
	assert.Equal(t, int64(145), *st.LatencyMS)
	require.Len(t, st.Services, 3)

	assert.Equal(t, "A", st.Services[0].Name)
	assert.Equal(t, domain.LevelHealthy, st.Services[0].Level)
	assert.Equal(t, domain.LevelDegraded, st.Services[1].Level)
	assert.Equal(t, domain.LevelUnreachable, st.Services[2].Level)
	assert.Nil(t, st.Services[2].LatencyMS)
	assert.Equal(t, domain.ReasonTimeout, st.Services[2].Reason)
	assert.Equal(t, domain.MethodTCP, st.Services[2].Method)
	assert.Equal(t, domain.KindServer, st.Kind)
	assert.False(t, st.CheckedAt.IsZero())
}

func TestEvaluateServer_WorstOf(t *testing.T) {
	cases := []struct {
		name    string
		latency map[int]int64
		want    domain.Level
	}{
		{"all healthy", map[int]int64{1: 10, 2: 20}, domain.LevelHealthy},
		{"one degraded", map[int]int64{1: 10, 2: 120}, domain.LevelDegraded},
		{"one slow beyond warning", map[int]int64{1: 10, 2: 400}, domain.LevelUnreachable},
		{"one down", map[int]int64{1: 10}, domain.LevelUnreachable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			st := newAggregator(&portProber{latency: c.latency}).EvaluateServer(context.Background(), server(1, 2))
			assert.Equal(t, c.want, st.Level)
		})
	}
}

func TestEvaluateServer_RoundsMeanLatency(t *testing.T) {
	st := newAggregator(&portProber{latency: map[int]int64{1: 10, 2: 11}}).EvaluateServer(context.Background(), server(1, 2))
	require.NotNil(t, st.LatencyMS)
	assert.Equal(t, int64(11), *st.LatencyMS) // 10.5 rounds up
}

func TestEvaluateServer_AllDownHasNoLatency(t *testing.T) {
	st := newAggregator(&portProber{}).EvaluateServer(context.Background(), server(1, 2))
	assert.Equal(t, domain.LevelUnreachable, st.Level)
	assert.Nil(t, st.LatencyMS)
}

func TestEvaluateServer_ProbesServicesConcurrently(t *testing.T) {
	p := &portProber{latency: map[int]int64{1: 5, 2: 5, 3: 5, 4: 5}, delay: 150 * time.Millisecond}
	start := time.Now()
	st := newAggregator(p).EvaluateServer(context.Background(), server(1, 2, 3, 4))
	elapsed := time.Since(start)

	assert.Equal(t, domain.LevelHealthy, st.Level)
	assert.EqualValues(t, 4, p.calls.Load())
	assert.Less(t, elapsed, 450*time.Millisecond, "services should be probed in parallel")
}

func TestEvaluateServer_NoServicesUsesPing(t *testing.T) {
	p := &portProber{latency: map[int]int64{0: 120}, methods: make(chan domain.Method, 1)}
	st := newAggregator(p).EvaluateServer(context.Background(), domain.Server{ID: "print", Host: "10.0.0.30"})

	assert.Equal(t, domain.MethodPing, <-p.methods)
	assert.Equal(t, domain.LevelDegraded, st.Level)
	require.NotNil(t, st.LatencyMS)
	assert.Equal(t, int64(120), *st.LatencyMS)
	assert.Empty(t, st.Services)
}

func TestEvaluateUplink(t *testing.T) {
	a := newAggregator(&portProber{latency: map[int]int64{443: 50}})
	st := a.EvaluateUplink(context.Background(), domain.Uplink{ID: "bogota", Name: "Bogota", Host: "10.10.40.1", Port: 443, Location: "Bogota"})
	assert.Equal(t, domain.LevelHealthy, st.Level)
	assert.Equal(t, int64(50), *st.LatencyMS)
	assert.Equal(t, "Bogota", st.Location)
	assert.Equal(t, domain.KindUplink, st.Kind)

	down := a.EvaluateUplink(context.Background(), domain.Uplink{ID: "cali", Host: "10.10.104.1", Port: 8443})
	assert.Equal(t, domain.LevelUnreachable, down.Level)
	assert.Nil(t, down.LatencyMS)
}

func TestAggregator_PassesTimeoutToProber(t *testing.T) {
	var got time.Duration
	p := probe.ProberFunc(func(_ context.Context, req probe.Request) probe.Result {
		got = req.Timeout
		return probe.Result{}
	})
	a := NewAggregator(zap.NewNop(), p, health.DefaultThresholds(), 750*time.Millisecond)
	st := a.EvaluateUplink(context.Background(), domain.Uplink{ID: "u", Host: "h", Port: 1})

	assert.Equal(t, 750*time.Millisecond, got)
	assert.Equal(t, domain.LevelUnreachable, st.Level)
}

func TestAggregator_LogsDNSDiagnosis(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	p := probe.ProberFunc(func(_ context.Context, req probe.Request) probe.Result {
		return probe.Result{Method: domain.MethodTCP, Reason: domain.ReasonDNSError}
	})
	a := NewAggregator(zap.New(core), p, health.DefaultThresholds(), time.Second)
	a.Diagnoser = probe.NewDiagnoser()

	st := a.EvaluateUplink(context.Background(), domain.Uplink{ID: "u", Host: "bad host", Port: 443})
	assert.Equal(t, domain.LevelUnreachable, st.Level)

	assert.Equal(t, 1, logs.FilterMessage("probe_result").Len())
	dns := logs.FilterMessage("dns_check").All()
	require.Len(t, dns, 1)
	assert.Equal(t, string(probe.DNSInvalidName), dns[0].ContextMap()["class"])
}
