package health

import "github.com/hamed0406/netmonitor/internal/domain"

// Thresholds are latency bounds in milliseconds. A sample below Good is
// healthy, below Warning degraded, anything slower unreachable.
type Thresholds struct {
	Good    int64 `yaml:"good" json:"good"`
	Warning int64 `yaml:"warning" json:"warning"`
}

func DefaultThresholds() Thresholds {
	return Thresholds{Good: 100, Warning: 300}
}

// Classify maps a probe latency to a health level. A nil latency means the
// probe failed. When Warning <= Good every latency at or above Good is
// reported as degraded.
func Classify(latencyMS *int64, t Thresholds) domain.Level {
	if latencyMS == nil {
		return domain.LevelUnreachable
	}
	l := *latencyMS
	switch {
	case l < t.Good:
		return domain.LevelHealthy
	case t.Warning <= t.Good:
		return domain.LevelDegraded
	case l < t.Warning:
		return domain.LevelDegraded
	default:
		return domain.LevelUnreachable
	}
}

// Worst returns the most severe level, healthy for an empty input.
func Worst(levels ...domain.Level) domain.Level {
	out := domain.LevelHealthy
	for _, l := range levels {
		if l.WorseThan(out) {
			out = l
		}
	}
	return out
}
