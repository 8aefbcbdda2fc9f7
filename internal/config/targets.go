package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/netmonitor/internal/domain"
	"github.com/hamed0406/netmonitor/internal/health"
	"github.com/hamed0406/netmonitor/internal/registry"
)

// ErrLoad marks a targets file that exists but cannot be used.
var ErrLoad = errors.New("configuration load failure")

type Monitoring struct {
	UpdateIntervalMS    int               `yaml:"update_interval_ms" json:"updateInterval"`
	ConnectionTimeoutMS int               `yaml:"connection_timeout_ms" json:"connectionTimeout"`
	HistoryCapacity     int               `yaml:"history_capacity" json:"historyCapacity"`
	LatencyThresholds   health.Thresholds `yaml:"latency_thresholds" json:"latencyThresholds"`
}

func (m Monitoring) Interval() time.Duration {
	return time.Duration(m.UpdateIntervalMS) * time.Millisecond
}

func (m Monitoring) Timeout() time.Duration {
	return time.Duration(m.ConnectionTimeoutMS) * time.Millisecond
}

type Targets struct {
	Servers    []domain.Server `yaml:"servers"`
	Uplinks    []domain.Uplink `yaml:"uplinks"`
	Monitoring Monitoring      `yaml:"monitoring"`
	// Fallback is set when no targets file was found.
	Fallback bool `yaml:"-"`
}

type targetsFile struct {
	Targets `yaml:",inline"`
	// older files list uplinks under "mpls"
	MPLS []domain.Uplink `yaml:"mpls"`
}

func DefaultMonitoring() Monitoring {
	return Monitoring{
		UpdateIntervalMS:    30000,
		ConnectionTimeoutMS: 5000,
		HistoryCapacity:     100,
		LatencyThresholds:   health.DefaultThresholds(),
	}
}

// LoadTargets reads the targets file. A missing file yields the built-in
// registry; a file that exists but cannot be read, parsed or validated is an
// ErrLoad.
func LoadTargets(path string) (Targets, error) {
	content, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		t := DefaultTargets()
		t.Fallback = true
		return t, nil
	}
	if err != nil {
		return Targets{}, fmt.Errorf("%w: read %s: %v", ErrLoad, path, err)
	}
	return ParseTargets(content)
}

func ParseTargets(content []byte) (Targets, error) {
	var f targetsFile
	f.Monitoring = DefaultMonitoring()
	if err := yaml.Unmarshal(content, &f); err != nil {
		return Targets{}, fmt.Errorf("%w: parse: %v", ErrLoad, err)
	}
	t := f.Targets
	t.Uplinks = append(t.Uplinks, f.MPLS...)
	t.Monitoring = fillMonitoring(t.Monitoring)

	if err := t.Validate(); err != nil {
		return Targets{}, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return t, nil
}

// Validate reports every problem in the file at once.
func (t Targets) Validate() error {
	errs := multierr.Append(registry.ValidateServers(t.Servers), registry.ValidateUplinks(t.Uplinks))
	if len(t.Servers)+len(t.Uplinks) == 0 {
		errs = multierr.Append(errs, errors.New("no servers or uplinks configured"))
	}
	th := t.Monitoring.LatencyThresholds
	if th.Good <= 0 || th.Warning <= 0 {
		errs = multierr.Append(errs, fmt.Errorf("latency thresholds must be positive, got good=%d warning=%d", th.Good, th.Warning))
	}
	return errs
}

// fillMonitoring replaces unset or negative values with defaults.
func fillMonitoring(m Monitoring) Monitoring {
	def := DefaultMonitoring()
	if m.UpdateIntervalMS <= 0 {
		m.UpdateIntervalMS = def.UpdateIntervalMS
	}
	if m.ConnectionTimeoutMS <= 0 {
		m.ConnectionTimeoutMS = def.ConnectionTimeoutMS
	}
	if m.HistoryCapacity <= 0 {
		m.HistoryCapacity = def.HistoryCapacity
	}
	if m.LatencyThresholds.Good == 0 && m.LatencyThresholds.Warning == 0 {
		m.LatencyThresholds = def.LatencyThresholds
	}
	return m
}
