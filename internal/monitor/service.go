// Package monitor is the query and command surface over the probing engine.
// HTTP handlers and CLI tools talk to a Service, never to the parts below it.
package monitor

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/registry"
	"github.com/hamed0406/netmonitor/internal/repo"
	"github.com/hamed0406/netmonitor/internal/scheduler"
)

// Latest is implemented by scheduler.Driver.
type Latest interface {
	Latest() (servers, uplinks []domain.EntityStatus, at time.Time)
}

type Options struct {
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int
}

type Service struct {
	logger    *zap.Logger
	registry  *registry.Registry
	evaluator scheduler.Evaluator
	metrics   repo.MetricStore
	latest    Latest
	opts      Options
	now       func() time.Time
}

func NewService(
	logger *zap.Logger,
	reg *registry.Registry,
	eval scheduler.Evaluator,
	metrics repo.MetricStore,
	latest Latest,
	opts Options,
) *Service {
	return &Service{
		logger:    logger,
		registry:  reg,
		evaluator: eval,
		metrics:   metrics,
		latest:    latest,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

type EntitySummary struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	Location      string       `json:"location,omitempty"`
	CurrentStatus domain.Level `json:"currentStatus"`
	AvgLatency    int64        `json:"avgLatency"`
	Uptime        int          `json:"uptime"`
}

type MetricsSummary struct {
	Servers             []EntitySummary `json:"servers"`
	Uplinks             []EntitySummary `json:"uplinks"`
	TotalRetainedPoints int             `json:"totalRetainedPoints"`
}

type HealthReport struct {
	Status             string        `json:"status"`
	RegistrySize       int           `json:"registrySize"`
	RetainedPointCount int           `json:"retainedPointCount"`
	ConfiguredInterval time.Duration `json:"-"`
	ConfiguredTimeout  time.Duration `json:"-"`
	IntervalMS         int64         `json:"updateIntervalMs"`
	TimeoutMS          int64         `json:"connectionTimeoutMs"`
	LastPoll           *time.Time    `json:"lastPoll,omitempty"`
}

type LatestStatus struct {
	Servers   []domain.EntityStatus `json:"servers"`
	Uplinks   []domain.EntityStatus `json:"uplinks"`
	CheckedAt *time.Time            `json:"checkedAt,omitempty"`
}

// ListServerStatuses probes every registered server now. The result follows
// registry order and is not written to history.
func (s *Service) ListServerStatuses(ctx context.Context) []domain.EntityStatus {
	servers := s.registry.Snapshot().Servers
	out := make([]domain.EntityStatus, len(servers))
	g := s.group()
	for i, srv := range servers {
		g.Go(func() error {
			out[i] = s.evaluator.EvaluateServer(ctx, srv)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) ListUplinkStatuses(ctx context.Context) []domain.EntityStatus {
	uplinks := s.registry.Snapshot().Uplinks
	out := make([]domain.EntityStatus, len(uplinks))
	g := s.group()
	for i, u := range uplinks {
		g.Go(func() error {
			out[i] = s.evaluator.EvaluateUplink(ctx, u)
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func (s *Service) group() *errgroup.Group {
	g := new(errgroup.Group)
	if s.opts.Concurrency > 0 {
		g.SetLimit(s.opts.Concurrency)
	}
	return g
}

// Latest returns what the last completed poll cycle published.
func (s *Service) Latest() LatestStatus {
	res := LatestStatus{Servers: []domain.EntityStatus{}, Uplinks: []domain.EntityStatus{}}
	if s.latest == nil {
		return res
	}
	servers, uplinks, at := s.latest.Latest()
	if servers != nil {
		res.Servers = servers
	}
	if uplinks != nil {
		res.Uplinks = uplinks
	}
	if !at.IsZero() {
		res.CheckedAt = &at
	}
	return res
}

// GetHistory returns the samples of one entity inside the time range. An id
// that was registered once and later removed still answers with its
// retained history. Server services are addressed as "<server>:<service>".
func (s *Service) GetHistory(kind domain.Kind, id string, r repo.TimeRange) (repo.HistoryResult, error) {
	if kind != domain.KindServer && kind != domain.KindUplink {
		return repo.HistoryResult{}, fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind)
	}
	if !s.registry.Loaded() {
		return repo.HistoryResult{}, domain.ErrRegistryUnavailable
	}
	if !s.registry.Known(kind, id) && !s.metrics.Has(kind, id) {
		return repo.HistoryResult{}, fmt.Errorf("%w: %s %q", domain.ErrTargetNotFound, kind, id)
	}
	return s.metrics.Query(kind, id, repo.ParseTimeRange(string(r)), s.now()), nil
}

func (s *Service) GetMetricsSummary() MetricsSummary {
	snap := s.registry.Snapshot()
	sum := MetricsSummary{
		Servers:             make([]EntitySummary, 0, len(snap.Servers)),
		Uplinks:             make([]EntitySummary, 0, len(snap.Uplinks)),
		TotalRetainedPoints: s.metrics.TotalPoints(),
	}
	for _, srv := range snap.Servers {
		sum.Servers = append(sum.Servers, s.summarize(domain.KindServer, srv.ID, srv.Name, ""))
	}
	for _, u := range snap.Uplinks {
		sum.Uplinks = append(sum.Uplinks, s.summarize(domain.KindUplink, u.ID, u.Name, u.Location))
	}
	return sum
}

func (s *Service) summarize(kind domain.Kind, id, name, location string) EntitySummary {
	r := s.metrics.RecentSummary(kind, id, repo.DefaultRecent)
	return EntitySummary{
		ID:            id,
		Name:          name,
		Location:      location,
		CurrentStatus: r.CurrentStatus,
		AvgLatency:    r.AvgLatency,
		Uptime:        r.Uptime,
	}
}

func (s *Service) ReplaceServers(servers []domain.Server) error {
	if err := s.registry.ReplaceServers(servers); err != nil {
		return err
	}
	s.logger.Info("targets_replaced", zap.String("kind", string(domain.KindServer)), zap.Int("count", len(servers)))
	return nil
}

func (s *Service) ReplaceUplinks(uplinks []domain.Uplink) error {
	if err := s.registry.ReplaceUplinks(uplinks); err != nil {
		return err
	}
	s.logger.Info("targets_replaced", zap.String("kind", string(domain.KindUplink)), zap.Int("count", len(uplinks)))
	return nil
}

func (s *Service) Targets() registry.Snapshot {
	return s.registry.Snapshot()
}

func (s *Service) HealthCheck() (HealthReport, error) {
	if !s.registry.Loaded() {
		return HealthReport{}, domain.ErrRegistryUnavailable
	}
	rep := HealthReport{
		Status:             "ok",
		RegistrySize:       s.registry.Snapshot().Size(),
		RetainedPointCount: s.metrics.TotalPoints(),
		ConfiguredInterval: s.opts.Interval,
		ConfiguredTimeout:  s.opts.Timeout,
		IntervalMS:         s.opts.Interval.Milliseconds(),
		TimeoutMS:          s.opts.Timeout.Milliseconds(),
	}
	if s.latest != nil {
		if _, _, at := s.latest.Latest(); !at.IsZero() {
			rep.LastPoll = &at
		}
	}
	return rep, nil
}
