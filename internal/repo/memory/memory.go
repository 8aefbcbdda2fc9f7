package memory

import (
	"sync"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/repo"
)

const DefaultCapacity = 100

// Store keeps one bounded history per entity, in a separate map per kind.
// The maps are guarded by mu; each history has its own lock, so entities do
// not contend with each other.
type Store struct {
	capacity  int
	mu        sync.RWMutex
	histories map[domain.Kind]map[string]*history
}

func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		capacity: capacity,
		histories: map[domain.Kind]map[string]*history{
			domain.KindServer: {},
			domain.KindUplink: {},
		},
	}
}

func (s *Store) Capacity() int { return s.capacity }

func (s *Store) Record(kind domain.Kind, id string, p domain.MetricPoint) error {
	h, err := s.getOrCreate(kind, id)
	if err != nil {
		return err
	}
	h.push(p)
	return nil
}

func (s *Store) Query(kind domain.Kind, id string, r repo.TimeRange, now time.Time) repo.HistoryResult {
	res := repo.HistoryResult{ID: id, Kind: kind, TimeRange: r, Points: []domain.MetricPoint{}}
	if h := s.get(kind, id); h != nil {
		res.Points = h.within(now.Add(-r.Duration()), now)
	}
	res.Summary = repo.Summarize(res.Points)
	return res
}

func (s *Store) RecentSummary(kind domain.Kind, id string, n int) repo.RecentSummary {
	if n <= 0 {
		n = repo.DefaultRecent
	}
	h := s.get(kind, id)
	if h == nil {
		return repo.Recent(nil)
	}
	return repo.Recent(h.last(n))
}

func (s *Store) Has(kind domain.Kind, id string) bool {
	return s.get(kind, id) != nil
}

func (s *Store) TotalPoints() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, byID := range s.histories {
		for _, h := range byID {
			n += h.len()
		}
	}
	return n
}

func (s *Store) get(kind domain.Kind, id string) *history {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.histories[kind][id]
}

func (s *Store) getOrCreate(kind domain.Kind, id string) (*history, error) {
	if h := s.get(kind, id); h != nil {
		return h, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	byID, ok := s.histories[kind]
	if !ok {
		return nil, domain.ErrUnknownKind
	}
	h, ok := byID[id]
	if !ok {
		h = newHistory(s.capacity)
		byID[id] = h
	}
	return h, nil
}

var _ repo.MetricStore = (*Store)(nil)
