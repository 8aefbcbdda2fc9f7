package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/registry"
	"github.com/hamed0406/netmonitor/internal/repo"
)

type TargetSource interface {
	Snapshot() registry.Snapshot
}

type Evaluator interface {
	EvaluateServer(ctx context.Context, s domain.Server) domain.EntityStatus
	EvaluateUplink(ctx context.Context, u domain.Uplink) domain.EntityStatus
}

// Observer is handed the full status set after every completed cycle.
type Observer interface {
	Observe(ctx context.Context, statuses []domain.EntityStatus)
}

// Driver runs poll cycles on a fixed interval. A tick that fires while the
// previous cycle is still running is skipped.
type Driver struct {
	Logger      *zap.Logger
	Targets     TargetSource
	Evaluator   Evaluator
	Metrics     repo.MetricStore
	Interval    time.Duration
	Concurrency int
	Observers   []Observer

	busy   atomic.Bool
	cycles atomic.Int64

	mu      sync.RWMutex
	servers []domain.EntityStatus
	uplinks []domain.EntityStatus
	lastRun time.Time
}

func NewDriver(
	logger *zap.Logger,
	targets TargetSource,
	eval Evaluator,
	metrics repo.MetricStore,
	interval time.Duration,
	concurrency int,
	observers ...Observer,
) *Driver {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &Driver{
		Logger:      logger,
		Targets:     targets,
		Evaluator:   eval,
		Metrics:     metrics,
		Interval:    interval,
		Concurrency: concurrency,
		Observers:   observers,
	}
}

// Run does an immediate pass, then one per tick, until ctx is cancelled. It
// returns once the in-flight cycle, if any, has finished.
func (d *Driver) Run(ctx context.Context) {
	t := time.NewTicker(d.Interval)
	defer t.Stop()

	var wg sync.WaitGroup
	defer wg.Wait()

	tick := func() {
		if !d.busy.CompareAndSwap(false, true) {
			d.Logger.Warn("poll_tick_skipped", zap.Duration("interval", d.Interval))
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer d.busy.Store(false)
			d.cycle(ctx)
		}()
	}

	d.Logger.Info("poll_driver_started", zap.Duration("interval", d.Interval))
	tick()
	for {
		select {
		case <-ctx.Done():
			d.Logger.Info("poll_driver_stopped", zap.Int64("cycles", d.cycles.Load()))
			return
		case <-t.C:
			tick()
		}
	}
}

// RunOnce runs a single cycle unless one is already in progress. It reports
// whether the cycle ran.
func (d *Driver) RunOnce(ctx context.Context) bool {
	if !d.busy.CompareAndSwap(false, true) {
		return false
	}
	defer d.busy.Store(false)
	d.cycle(ctx)
	return true
}

// Latest returns the statuses published by the last completed cycle.
func (d *Driver) Latest() (servers, uplinks []domain.EntityStatus, at time.Time) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.servers, d.uplinks, d.lastRun
}

// cycle evaluates every target once. Probes are detached from ctx
// cancellation and bounded only by their own timeout.
func (d *Driver) cycle(ctx context.Context) {
	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	snap := d.Targets.Snapshot()
	servers := make([]domain.EntityStatus, len(snap.Servers))
	uplinks := make([]domain.EntityStatus, len(snap.Uplinks))

	var g errgroup.Group
	if d.Concurrency > 0 {
		g.SetLimit(d.Concurrency)
	}
	for i, s := range snap.Servers {
		g.Go(func() error {
			servers[i] = d.Evaluator.EvaluateServer(ctx, s)
			d.record(servers[i])
			return nil
		})
	}
	for i, u := range snap.Uplinks {
		g.Go(func() error {
			uplinks[i] = d.Evaluator.EvaluateUplink(ctx, u)
			d.record(uplinks[i])
			return nil
		})
	}
	_ = g.Wait()

	d.mu.Lock()
	d.servers, d.uplinks, d.lastRun = servers, uplinks, start
	d.mu.Unlock()
	n := d.cycles.Add(1)

	all := make([]domain.EntityStatus, 0, len(servers)+len(uplinks))
	all = append(append(all, servers...), uplinks...)
	for _, o := range d.Observers {
		o.Observe(ctx, all)
	}

	down := 0
	for _, st := range all {
		if st.Level == domain.LevelUnreachable {
			down++
		}
	}
	d.Logger.Info("poll_cycle_done",
		zap.Int64("cycle", n),
		zap.Int("servers", len(servers)),
		zap.Int("uplinks", len(uplinks)),
		zap.Int("unreachable", down),
		zap.Duration("took", time.Since(start)),
	)
}

// record stores the entity sample and, for servers, one sample per service
// under its service key.
func (d *Driver) record(st domain.EntityStatus) {
	d.put(st.Kind, st.ID, domain.PointFromStatus(st))
	if st.Kind != domain.KindServer {
		return
	}
	for _, svc := range st.Services {
		d.put(st.Kind, domain.ServiceKey(st.ID, svc.Name), domain.PointFromService(st.CheckedAt, svc))
	}
}

func (d *Driver) put(kind domain.Kind, id string, p domain.MetricPoint) {
	if err := d.Metrics.Record(kind, id, p); err != nil {
		d.Logger.Warn("poll_record_error",
			zap.String("kind", string(kind)),
			zap.String("id", id),
			zap.Error(err),
		)
	}
}
