package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/notify"
	"github.com/hamed0406/netmonitor/internal/repo"
)

type AlerterConfig struct {
	AlertOnRecovery bool
	Cooldown        time.Duration
}

// Alerter notifies on health transitions: an entity turning unreachable, and
// optionally its return to healthy after a DOWN notification.
type Alerter struct {
	logger   *zap.Logger
	alerts   repo.AlertStore
	notifier notify.Notifier
	cfg      AlerterConfig
	now      func() time.Time
}

func NewAlerter(logger *zap.Logger, alerts repo.AlertStore, notifier notify.Notifier, cfg AlerterConfig) *Alerter {
	return &Alerter{
		logger:   logger,
		alerts:   alerts,
		notifier: notifier,
		cfg:      cfg,
		now:      time.Now,
	}
}

func (a *Alerter) Observe(ctx context.Context, statuses []domain.EntityStatus) {
	for _, st := range statuses {
		if err := a.observe(ctx, st); err != nil {
			a.logger.Warn("alert_error",
				zap.String("kind", string(st.Kind)),
				zap.String("id", st.ID),
				zap.Error(err),
			)
		}
	}
}

func (a *Alerter) observe(ctx context.Context, st domain.EntityStatus) error {
	key := string(st.Kind) + "/" + st.ID
	rec, err := a.alerts.Get(ctx, key)
	if err != nil {
		return err
	}
	if rec != nil && rec.LastLevel == st.Level {
		return nil
	}

	now := a.now()
	// Cooldown only matters for DOWN alerts (suppresses flapping).
	cooled := true
	if rec != nil && rec.LastSentAt != nil {
		cooled = now.Sub(*rec.LastSentAt) >= a.cfg.Cooldown
	}
	down := st.Level == domain.LevelUnreachable && cooled
	recovered := st.Level == domain.LevelHealthy && a.cfg.AlertOnRecovery &&
		rec != nil && rec.LastNotified == domain.LevelUnreachable

	if !down && !recovered {
		// record the new state without a send time
		return a.alerts.Set(ctx, key, st.Level, time.Time{})
	}

	title := "🔴 " + kindLabel(st.Kind) + " DOWN"
	if recovered {
		title = "🟢 " + kindLabel(st.Kind) + " RECOVERED"
	}
	if err := a.notifier.Send(ctx, title, alertText(st)); err != nil {
		// keep the state, retry the send on the next transition
		_ = a.alerts.Set(ctx, key, st.Level, time.Time{})
		return fmt.Errorf("send %s alert: %w", key, err)
	}
	a.logger.Info("alert_sent", zap.String("key", key), zap.String("status", string(st.Level)))
	return a.alerts.Set(ctx, key, st.Level, now)
}

func kindLabel(k domain.Kind) string {
	if k == domain.KindUplink {
		return "Uplink"
	}
	return "Server"
}

func alertText(st domain.EntityStatus) string {
	latency := "n/a"
	if st.LatencyMS != nil {
		latency = fmt.Sprintf("%d ms", *st.LatencyMS)
	}
	var b strings.Builder
	fmt.Fprintf(&b, "ID: %s\nName: %s\n", st.ID, st.Name)
	if st.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", st.Location)
	}
	fmt.Fprintf(&b, "Status: %s\nLatency: %s\nChecked: %s", st.Level, latency, st.CheckedAt.Format(time.RFC3339))
	for _, svc := range st.Services {
		if svc.Level != domain.LevelUnreachable {
			continue
		}
		fmt.Fprintf(&b, "\n- %s (:%d) %s", svc.Name, svc.Port, svc.Reason)
	}
	return b.String()
}
