package registry

import (
	"fmt"
	"slices"
	"strings"
	"sync"

	"go.uber.org/multierr"

	"github.com/hamed0406/netmonitor/internal/domain"
)

// Snapshot is a consistent copy of the monitored targets.
type Snapshot struct {
	Servers []domain.Server `json:"servers"`
	Uplinks []domain.Uplink `json:"uplinks"`
}

func (s Snapshot) Size() int { return len(s.Servers) + len(s.Uplinks) }

// Registry holds the current target set. Each kind is replaced wholesale;
// readers see either the old or the new list for a kind, never a mix.
type Registry struct {
	mu      sync.RWMutex
	loaded  bool
	servers []domain.Server
	uplinks []domain.Uplink
	// seen keeps every identifier ever registered, so history for a
	// removed target is still addressable.
	seen map[domain.Kind]map[string]struct{}
}

func New() *Registry {
	return &Registry{
		seen: map[domain.Kind]map[string]struct{}{
			domain.KindServer: {},
			domain.KindUplink: {},
		},
	}
}

// Load installs the initial target set.
func (r *Registry) Load(servers []domain.Server, uplinks []domain.Uplink) error {
	if err := multierr.Append(ValidateServers(servers), ValidateUplinks(uplinks)); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers = cloneServers(servers)
	r.uplinks = slices.Clone(uplinks)
	r.markSeenLocked()
	r.loaded = true
	return nil
}

func (r *Registry) ReplaceServers(servers []domain.Server) error {
	if err := ValidateServers(servers); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.servers = cloneServers(servers)
	r.markSeenLocked()
	r.loaded = true
	return nil
}

func (r *Registry) ReplaceUplinks(uplinks []domain.Uplink) error {
	if err := ValidateUplinks(uplinks); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uplinks = slices.Clone(uplinks)
	r.markSeenLocked()
	r.loaded = true
	return nil
}

func (r *Registry) Loaded() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.loaded
}

func (r *Registry) Snapshot() Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return Snapshot{Servers: cloneServers(r.servers), Uplinks: slices.Clone(r.uplinks)}
}

// Known reports whether id has ever been part of the registry for kind.
func (r *Registry) Known(kind domain.Kind, id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.seen[kind][id]
	return ok
}

func (r *Registry) markSeenLocked() {
	for _, s := range r.servers {
		r.seen[domain.KindServer][s.ID] = struct{}{}
		for _, svc := range s.Services {
			r.seen[domain.KindServer][domain.ServiceKey(s.ID, svc.Name)] = struct{}{}
		}
	}
	for _, u := range r.uplinks {
		r.seen[domain.KindUplink][u.ID] = struct{}{}
	}
}

func cloneServers(in []domain.Server) []domain.Server {
	if in == nil {
		return nil
	}
	out := make([]domain.Server, len(in))
	for i, s := range in {
		s.Services = slices.Clone(s.Services)
		out[i] = s
	}
	return out
}

// ValidateServers reports every problem in the list at once.
func ValidateServers(servers []domain.Server) error {
	var errs error
	ids := make(map[string]struct{}, len(servers))
	for i, s := range servers {
		if s.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: server %d has no id", domain.ErrInvalidTargets, i))
		} else if _, dup := ids[s.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%w: duplicate server id %q", domain.ErrInvalidTargets, s.ID))
		}
		ids[s.ID] = struct{}{}
		if strings.Contains(s.ID, domain.ServiceSep) {
			errs = multierr.Append(errs, fmt.Errorf("%w: server id %q may not contain %q",
				domain.ErrInvalidTargets, s.ID, domain.ServiceSep))
		}
		if s.Host == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: server %q has no address", domain.ErrInvalidTargets, s.ID))
		}
		names := make(map[string]struct{}, len(s.Services))
		for _, svc := range s.Services {
			if svc.Name == "" {
				errs = multierr.Append(errs, fmt.Errorf("%w: server %q has a service without a name", domain.ErrInvalidTargets, s.ID))
			} else if _, dup := names[svc.Name]; dup {
				errs = multierr.Append(errs, fmt.Errorf("%w: server %q has duplicate service %q",
					domain.ErrInvalidTargets, s.ID, svc.Name))
			}
			names[svc.Name] = struct{}{}
			if svc.Port < 1 || svc.Port > 65535 {
				errs = multierr.Append(errs, fmt.Errorf("%w: server %q service %q has invalid port %d",
					domain.ErrInvalidTargets, s.ID, svc.Name, svc.Port))
			}
		}
	}
	return errs
}

func ValidateUplinks(uplinks []domain.Uplink) error {
	var errs error
	ids := make(map[string]struct{}, len(uplinks))
	for i, u := range uplinks {
		if u.ID == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: uplink %d has no id", domain.ErrInvalidTargets, i))
		} else if _, dup := ids[u.ID]; dup {
			errs = multierr.Append(errs, fmt.Errorf("%w: duplicate uplink id %q", domain.ErrInvalidTargets, u.ID))
		}
		ids[u.ID] = struct{}{}
		if u.Host == "" {
			errs = multierr.Append(errs, fmt.Errorf("%w: uplink %q has no address", domain.ErrInvalidTargets, u.ID))
		}
		if u.Port < 1 || u.Port > 65535 {
			errs = multierr.Append(errs, fmt.Errorf("%w: uplink %q has invalid port %d", domain.ErrInvalidTargets, u.ID, u.Port))
		}
	}
	return errs
}
