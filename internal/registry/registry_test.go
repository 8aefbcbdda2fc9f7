package registry

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/multierr"

	"github.com/hamed0406/netmonitor/internal/domain"
)

func sampleServers() []domain.Server {
	return []domain.Server{
		{ID: "db02", Name: "DB02", Host: "10.10.1.252", Services: []domain.Service{{Name: "API", Port: 37834, Protocol: "HTTP"}}},
		{ID: "print", Name: "Print", Host: "10.10.0.30"},
	}
}

func sampleUplinks() []domain.Uplink {
	return []domain.Uplink{{ID: "bogota", Name: "Bogota", Host: "10.10.40.1", Port: 443, Location: "Bogota"}}
}

func TestRegistry_LoadAndSnapshot(t *testing.T) {
	r := New()
	assert.False(t, r.Loaded())

	require.NoError(t, r.Load(sampleServers(), sampleUplinks()))
	assert.True(t, r.Loaded())

	snap := r.Snapshot()
	assert.Equal(t, 3, snap.Size())
	assert.Equal(t, "db02", snap.Servers[0].ID)
	assert.Equal(t, "print", snap.Servers[1].ID)

	// snapshots are copies
	snap.Servers[0].Services[0].Port = 1
	assert.Equal(t, 37834, r.Snapshot().Servers[0].Services[0].Port)
}

func TestRegistry_ReplaceKeepsKnownIDs(t *testing.T) {
	r := New()
	require.NoError(t, r.Load(sampleServers(), sampleUplinks()))

	require.NoError(t, r.ReplaceServers([]domain.Server{{ID: "new", Host: "10.0.0.9"}}))
	snap := r.Snapshot()
	require.Len(t, snap.Servers, 1)
	assert.Equal(t, "new", snap.Servers[0].ID)
	assert.Len(t, snap.Uplinks, 1, "replacing servers leaves uplinks alone")

	assert.True(t, r.Known(domain.KindServer, "db02"), "removed id stays known")
	assert.True(t, r.Known(domain.KindServer, "new"))
	assert.False(t, r.Known(domain.KindUplink, "db02"), "ids are scoped per kind")
	assert.False(t, r.Known(domain.KindServer, "ghost"))
}

func TestRegistry_SameIDAcrossKinds(t *testing.T) {
	r := New()
	require.NoError(t, r.Load(
		[]domain.Server{{ID: "bogota", Host: "10.0.0.1"}},
		[]domain.Uplink{{ID: "bogota", Host: "10.0.0.2", Port: 443}},
	))
	assert.True(t, r.Known(domain.KindServer, "bogota"))
	assert.True(t, r.Known(domain.KindUplink, "bogota"))
}

func TestRegistry_RejectsInvalidLists(t *testing.T) {
	r := New()
	require.NoError(t, r.Load(sampleServers(), sampleUplinks()))

	err := r.ReplaceUplinks([]domain.Uplink{
		{ID: "", Host: "10.0.0.1", Port: 443},
		{ID: "a", Host: "", Port: 0},
		{ID: "a", Host: "10.0.0.1", Port: 443},
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrInvalidTargets))
	assert.Len(t, multierr.Errors(err), 4)

	assert.Equal(t, "bogota", r.Snapshot().Uplinks[0].ID, "failed replace leaves the registry untouched")
}

func TestRegistry_KnowsServiceKeys(t *testing.T) {
	r := New()
	require.NoError(t, r.Load(sampleServers(), sampleUplinks()))
	assert.True(t, r.Known(domain.KindServer, domain.ServiceKey("db02", "API")))
	assert.False(t, r.Known(domain.KindServer, domain.ServiceKey("db02", "Payu")))
	assert.False(t, r.Known(domain.KindUplink, domain.ServiceKey("db02", "API")))
}

func TestValidateServers_ServiceKeysStayUnique(t *testing.T) {
	err := ValidateServers([]domain.Server{
		{ID: "db02:API", Host: "h"},
		{ID: "app", Host: "h", Services: []domain.Service{
			{Name: "", Port: 80},
			{Name: "web", Port: 80},
			{Name: "web", Port: 8080},
		}},
	})
	require.Error(t, err)
	assert.Len(t, multierr.Errors(err), 3)
	assert.Contains(t, err.Error(), "may not contain")
	assert.Contains(t, err.Error(), "duplicate service \"web\"")
}

func TestValidateServers_BadPort(t *testing.T) {
	err := ValidateServers([]domain.Server{{ID: "x", Host: "h", Services: []domain.Service{{Name: "s", Port: 70000}}}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid port 70000")
}
