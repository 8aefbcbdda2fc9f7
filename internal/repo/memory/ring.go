package memory

import (
	"sync"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// history is a fixed-size ring of samples for one entity. When full, a push
// overwrites the oldest sample.
type history struct {
	mu   sync.Mutex
	buf  []domain.MetricPoint
	head int // next write position
	size int
}

func newHistory(capacity int) *history {
	return &history{buf: make([]domain.MetricPoint, capacity)}
}

func (h *history) push(p domain.MetricPoint) {
	h.mu.Lock()
	h.buf[h.head] = p
	h.head = (h.head + 1) % len(h.buf)
	if h.size < len(h.buf) {
		h.size++
	}
	h.mu.Unlock()
}

func (h *history) len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.size
}

// within copies, oldest first, the samples taken in [from, to].
func (h *history) within(from, to time.Time) []domain.MetricPoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]domain.MetricPoint, 0, h.size)
	h.eachLocked(h.size, func(p domain.MetricPoint) {
		if !p.Timestamp.Before(from) && !p.Timestamp.After(to) {
			out = append(out, p)
		}
	})
	return out
}

// last copies the n most recent samples, oldest first.
func (h *history) last(n int) []domain.MetricPoint {
	h.mu.Lock()
	defer h.mu.Unlock()
	if n > h.size {
		n = h.size
	}
	out := make([]domain.MetricPoint, 0, n)
	h.eachLocked(n, func(p domain.MetricPoint) { out = append(out, p) })
	return out
}

// eachLocked visits the newest n samples in chronological order.
func (h *history) eachLocked(n int, fn func(domain.MetricPoint)) {
	start := (h.head - n + len(h.buf)) % len(h.buf)
	for i := 0; i < n; i++ {
		fn(h.buf[(start+i)%len(h.buf)])
	}
}
