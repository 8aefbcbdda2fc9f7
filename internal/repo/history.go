package repo

import (
	"math"
	"time"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// TimeRange is one of the supported history lookback windows.
type TimeRange string

const (
	Range15m TimeRange = "15m"
	Range1h  TimeRange = "1h"
	Range6h  TimeRange = "6h"
	Range24h TimeRange = "24h"

	DefaultRange = Range1h
	// DefaultRecent is the number of samples behind a recent summary.
	DefaultRecent = 10
)

// ParseTimeRange falls back to DefaultRange for empty or unknown input.
func ParseTimeRange(s string) TimeRange {
	switch r := TimeRange(s); r {
	case Range15m, Range1h, Range6h, Range24h:
		return r
	}
	return DefaultRange
}

func (r TimeRange) Duration() time.Duration {
	switch r {
	case Range15m:
		return 15 * time.Minute
	case Range6h:
		return 6 * time.Hour
	case Range24h:
		return 24 * time.Hour
	}
	return time.Hour
}

// Summary holds statistics over a set of samples. Latency figures are 0 when
// no sample carried a latency; SampledPoints tells that case apart from a
// genuine 0 ms reading.
type Summary struct {
	TotalPoints   int   `json:"totalPoints"`
	SampledPoints int   `json:"sampledPoints"`
	AvgLatency    int64 `json:"avgLatency"`
	MaxLatency    int64 `json:"maxLatency"`
	MinLatency    int64 `json:"minLatency"`
	Uptime        int   `json:"uptime"`
}

type HistoryResult struct {
	ID        string               `json:"id"`
	Kind      domain.Kind          `json:"type"`
	TimeRange TimeRange            `json:"timeRange"`
	Points    []domain.MetricPoint `json:"data"`
	Summary   Summary              `json:"summary"`
}

type RecentSummary struct {
	CurrentStatus domain.Level `json:"currentStatus"`
	AvgLatency    int64        `json:"avgLatency"`
	Uptime        int          `json:"uptime"`
	Points        int          `json:"points"`
}

func Summarize(points []domain.MetricPoint) Summary {
	s := Summary{TotalPoints: len(points)}
	if len(points) == 0 {
		return s
	}
	var sum int64
	healthy := 0
	for _, p := range points {
		if p.Level == domain.LevelHealthy {
			healthy++
		}
		if p.LatencyMS == nil {
			continue
		}
		l := *p.LatencyMS
		if s.SampledPoints == 0 || l < s.MinLatency {
			s.MinLatency = l
		}
		if l > s.MaxLatency {
			s.MaxLatency = l
		}
		sum += l
		s.SampledPoints++
	}
	if s.SampledPoints > 0 {
		s.AvgLatency = int64(math.Round(float64(sum) / float64(s.SampledPoints)))
	}
	s.Uptime = int(math.Round(100 * float64(healthy) / float64(len(points))))
	return s
}

// Recent summarises the given samples, taking the current status from the
// last one.
func Recent(points []domain.MetricPoint) RecentSummary {
	if len(points) == 0 {
		return RecentSummary{CurrentStatus: domain.LevelUnknown}
	}
	s := Summarize(points)
	return RecentSummary{
		CurrentStatus: points[len(points)-1].Level,
		AvgLatency:    s.AvgLatency,
		Uptime:        s.Uptime,
		Points:        len(points),
	}
}
