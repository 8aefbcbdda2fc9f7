package status

import (
	"context"
	"math"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/health"
	"github.com/hamed0406/netmonitor/internal/probe"
)

// Aggregator turns probe results into entity statuses. Probe failures are
// folded into unreachable entries; evaluation itself never fails.
type Aggregator struct {
	Logger     *zap.Logger
	Prober     probe.Prober
	Diagnoser  *probe.Diagnoser
	Thresholds health.Thresholds
	Timeout    time.Duration
	now        func() time.Time
}

func NewAggregator(logger *zap.Logger, p probe.Prober, th health.Thresholds, timeout time.Duration) *Aggregator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Aggregator{
		Logger:     logger,
		Prober:     p,
		Thresholds: th,
		Timeout:    timeout,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (a *Aggregator) EvaluateServer(ctx context.Context, s domain.Server) domain.EntityStatus {
	st := domain.EntityStatus{ID: s.ID, Name: s.Name, Kind: domain.KindServer}

	if len(s.Services) == 0 {
		out := a.probe(ctx, s.ID, probe.Request{Address: s.Host, Method: domain.MethodPing})
		st.Level = out.Level
		st.LatencyMS = out.LatencyMS
		st.CheckedAt = a.now()
		return st
	}

	services := make([]domain.ServiceStatus, len(s.Services))
	var wg sync.WaitGroup
	for i, svc := range s.Services {
		wg.Add(1)
		go func() {
			defer wg.Done()
			services[i] = domain.ServiceStatus{
				Name:     svc.Name,
				Port:     svc.Port,
				Protocol: svc.Protocol,
				ProbeOutcome: a.probe(ctx, s.ID, probe.Request{
					Address: s.Host, Port: svc.Port, Method: domain.MethodTCP,
				}),
			}
		}()
	}
	wg.Wait()

	levels := make([]domain.Level, len(services))
	var sum, n int64
	for i, svc := range services {
		levels[i] = svc.Level
		if svc.LatencyMS != nil {
			sum += *svc.LatencyMS
			n++
		}
	}
	st.Level = health.Worst(levels...)
	if n > 0 {
		st.LatencyMS = domain.Millis(int64(math.Round(float64(sum) / float64(n))))
	}
	st.Services = services
	st.CheckedAt = a.now()
	return st
}

func (a *Aggregator) EvaluateUplink(ctx context.Context, u domain.Uplink) domain.EntityStatus {
	out := a.probe(ctx, u.ID, probe.Request{Address: u.Host, Port: u.Port, Method: domain.MethodTCP})
	return domain.EntityStatus{
		ID:        u.ID,
		Name:      u.Name,
		Kind:      domain.KindUplink,
		Level:     out.Level,
		LatencyMS: out.LatencyMS,
		Location:  u.Location,
		CheckedAt: a.now(),
	}
}

func (a *Aggregator) probe(ctx context.Context, entityID string, req probe.Request) domain.ProbeOutcome {
	req.Timeout = a.Timeout
	res := a.Prober.Probe(ctx, req)
	method := res.Method
	if method == "" {
		method = req.Method
	}
	out := domain.ProbeOutcome{
		Level:     health.Classify(res.LatencyMS, a.Thresholds),
		LatencyMS: res.LatencyMS,
		Reason:    res.Reason,
		Method:    method,
	}
	if out.LatencyMS == nil && out.Reason == domain.ReasonNone {
		out.Reason = domain.ReasonOther
	}

	if ce := a.Logger.Check(zap.DebugLevel, "probe_result"); ce != nil {
		fields := []zap.Field{
			zap.String("entity_id", entityID),
			zap.String("address", req.Address),
			zap.Int("port", req.Port),
			zap.String("method", string(out.Method)),
			zap.String("status", string(out.Level)),
			zap.String("reason", string(out.Reason)),
		}
		if out.LatencyMS != nil {
			fields = append(fields, zap.Int64("latency_ms", *out.LatencyMS))
		}
		if res.Err != nil {
			fields = append(fields, zap.Error(res.Err))
		}
		ce.Write(fields...)
	}
	if out.Reason == domain.ReasonDNSError && a.Diagnoser != nil {
		dns := a.Diagnoser.Diagnose(ctx, req.Address)
		a.Logger.Info("dns_check",
			zap.String("entity_id", entityID),
			zap.String("host", dns.Host),
			zap.String("class", string(dns.Class)),
			zap.Strings("addrs", dns.Addrs),
			zap.String("cname", dns.CNAME),
			zap.Strings("nameservers", dns.Nameservers),
			zap.String("resolver_error", dns.ResolverError),
		)
	}
	return out
}
