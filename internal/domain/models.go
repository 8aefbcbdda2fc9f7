package domain

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrTargetNotFound      = errors.New("target not found")
	ErrUnknownKind         = errors.New("unknown target kind")
	ErrRegistryUnavailable = errors.New("target registry not loaded")
	ErrInvalidTargets      = errors.New("invalid target list")
)

// Kind separates the two families of monitored entities. Identifiers are
// only unique within a kind.
type Kind string

const (
	KindServer Kind = "server"
	KindUplink Kind = "uplink"
)

// ParseKind accepts the singular, plural and legacy "mpls" spellings.
func ParseKind(s string) (Kind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "server", "servers":
		return KindServer, nil
	case "uplink", "uplinks", "mpls":
		return KindUplink, nil
	}
	return "", ErrUnknownKind
}

type Level string

const (
	LevelHealthy     Level = "healthy"
	LevelDegraded    Level = "degraded"
	LevelUnreachable Level = "unreachable"
	// LevelUnknown is only reported for entities without any recorded sample.
	LevelUnknown Level = "unknown"
)

// severity orders levels for worst-of aggregation.
func (l Level) severity() int {
	switch l {
	case LevelHealthy:
		return 0
	case LevelDegraded:
		return 1
	case LevelUnreachable:
		return 2
	}
	return -1
}

// WorseThan reports whether l is strictly more severe than other.
func (l Level) WorseThan(other Level) bool {
	return l.severity() > other.severity()
}

type FailureReason string

const (
	ReasonNone     FailureReason = ""
	ReasonTimeout  FailureReason = "timeout"
	ReasonRefused  FailureReason = "refused"
	ReasonDNSError FailureReason = "dns-error"
	ReasonOther    FailureReason = "other"
)

type Method string

const (
	MethodTCP  Method = "tcp"
	MethodPing Method = "ping"
)

type Service struct {
	Name     string `yaml:"name" json:"name"`
	Port     int    `yaml:"port" json:"port"`
	Protocol string `yaml:"type" json:"type"`
}

// Server is probed per service over TCP, or by ping when it has no services.
type Server struct {
	ID       string    `yaml:"id" json:"id"`
	Name     string    `yaml:"name" json:"name"`
	Host     string    `yaml:"ip" json:"ip"`
	Services []Service `yaml:"services" json:"services"`
}

type Uplink struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Host     string `yaml:"ip" json:"ip"`
	Port     int    `yaml:"port" json:"port"`
	Location string `yaml:"location" json:"location"`
}

// ProbeOutcome is the classified result of one probe attempt. LatencyMS is
// nil unless a connection or echo reply succeeded.
type ProbeOutcome struct {
	Level     Level         `json:"status"`
	LatencyMS *int64        `json:"latency"`
	Reason    FailureReason `json:"reason,omitempty"`
	Method    Method        `json:"method"`
}

type ServiceStatus struct {
	Name     string `json:"name"`
	Port     int    `json:"port"`
	Protocol string `json:"type"`
	ProbeOutcome
}

// EntityStatus is the aggregated view of one server or uplink for a single
// pass. It is always built whole and never updated in place.
type EntityStatus struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Kind      Kind            `json:"kind"`
	Level     Level           `json:"status"`
	LatencyMS *int64          `json:"latency"`
	Location  string          `json:"location,omitempty"`
	Services  []ServiceStatus `json:"services,omitempty"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// MetricPoint is one retained history sample. Service counts are zero for
// uplinks.
type MetricPoint struct {
	Timestamp           time.Time `json:"timestamp"`
	Level               Level     `json:"status"`
	LatencyMS           *int64    `json:"latency"`
	OperationalServices int       `json:"operationalServices,omitempty"`
	TotalServices       int       `json:"servicesCount,omitempty"`
}

// PointFromStatus derives the history sample recorded for a pass result.
func PointFromStatus(st EntityStatus) MetricPoint {
	p := MetricPoint{
		Timestamp: st.CheckedAt,
		Level:     st.Level,
		LatencyMS: st.LatencyMS,
	}
	if st.Kind == KindServer && len(st.Services) > 0 {
		p.TotalServices = len(st.Services)
		for _, s := range st.Services {
			if s.Level == LevelHealthy {
				p.OperationalServices++
			}
		}
	}
	return p
}

// ServiceSep joins a server id and a service name into the history key of
// that service. Server ids may not contain it.
const ServiceSep = ":"

// ServiceKey is the server-kind history id of one service, e.g. "db02:API".
func ServiceKey(serverID, service string) string {
	return serverID + ServiceSep + service
}

// PointFromService derives the history sample of one service of a pass.
func PointFromService(at time.Time, svc ServiceStatus) MetricPoint {
	return MetricPoint{Timestamp: at, Level: svc.Level, LatencyMS: svc.LatencyMS}
}

// Millis returns a pointer to ms, for building optional latencies.
func Millis(ms int64) *int64 {
	return &ms
}
