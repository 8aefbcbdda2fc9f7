package memory

import (
	"context"
	"sync"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/repo"
)

type AlertStore struct {
	mu sync.Mutex
	m  map[string]repo.AlertRecord
}

func NewAlertStore() *AlertStore {
	return &AlertStore{m: make(map[string]repo.AlertRecord)}
}

func (a *AlertStore) Get(ctx context.Context, key string) (*repo.AlertRecord, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	r, ok := a.m[key]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (a *AlertStore) Set(ctx context.Context, key string, level domain.Level, sentAt time.Time) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	rec := repo.AlertRecord{Key: key, LastLevel: level}
	if !sentAt.IsZero() {
		rec.LastSentAt = &sentAt
		rec.LastNotified = level
	} else if prev, ok := a.m[key]; ok {
		rec.LastSentAt = prev.LastSentAt
		rec.LastNotified = prev.LastNotified
	}
	a.m[key] = rec
	return nil
}

var _ repo.AlertStore = (*AlertStore)(nil)
