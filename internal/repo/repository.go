package repo

import (
	"context"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// Ports (interfaces); the in-memory adapter lives in repo/memory.

// MetricStore retains a bounded sample history per entity. Calls never block
// on I/O, so they take no context.
type MetricStore interface {
	Record(kind domain.Kind, id string, p domain.MetricPoint) error
	Query(kind domain.Kind, id string, r TimeRange, now time.Time) HistoryResult
	RecentSummary(kind domain.Kind, id string, n int) RecentSummary
	Has(kind domain.Kind, id string) bool
	TotalPoints() int
}

// AlertStore keeps the last notified state per entity.
type AlertStore interface {
	// Get returns nil, nil if there's no record yet.
	Get(ctx context.Context, key string) (*AlertRecord, error)
	// Set upserts the record. A non-zero sentAt marks level as notified; a
	// zero sentAt keeps the previous notification.
	Set(ctx context.Context, key string, level domain.Level, sentAt time.Time) error
}
