package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeAPI(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/api/servers/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"db02","name":"DB02","kind":"server","status":"unreachable","latency":145,
			"services":[{"name":"API","port":1,"type":"HTTP","status":"healthy","latency":40,"method":"tcp"},
			            {"name":"Payu","port":2,"type":"HTTP","status":"unreachable","latency":null,"reason":"timeout","method":"tcp"}]}]`))
	})
	mux.HandleFunc("/api/metrics/uplink/bogota", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "6h", r.URL.Query().Get("timeRange"))
		_, _ = w.Write([]byte(`{"id":"bogota","type":"uplink","timeRange":"6h","data":[
			{"timestamp":"2025-08-18T12:00:00Z","status":"healthy","latency":20}],
			"summary":{"totalPoints":1,"sampledPoints":1,"avgLatency":20,"maxLatency":20,"minLatency":20,"uptime":100}}`))
	})
	mux.HandleFunc("/api/metrics/server/db02:API", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"id":"db02:API","type":"server","timeRange":"1h","data":[],
			"summary":{"totalPoints":0,"sampledPoints":0,"avgLatency":0,"maxLatency":0,"minLatency":0,"uptime":0}}`))
	})
	mux.HandleFunc("/api/metrics/server/ghost", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"target not found: server \"ghost\""}`))
	})
	mux.HandleFunc("/api/metrics/summary", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"servers":[{"id":"db02","name":"DB02","currentStatus":"degraded","avgLatency":120,"uptime":80}],
			"uplinks":[],"totalRetainedPoints":12}`))
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestStatusCmd(t *testing.T) {
	ts := fakeAPI(t)
	out, err := run(t, "--api", ts.URL, "status", "servers")
	require.NoError(t, err)
	assert.Contains(t, out, "db02")
	assert.Contains(t, out, "145 ms")
	assert.Contains(t, out, "1/2 services up")

	_, err = run(t, "--api", ts.URL, "status", "routers")
	assert.Error(t, err)
}

func TestHistoryCmd(t *testing.T) {
	ts := fakeAPI(t)
	out, err := run(t, "--api", ts.URL, "history", "uplink", "bogota", "--range", "6h")
	require.NoError(t, err)
	assert.Contains(t, out, "uplink bogota over 6h: 1 points, uptime 100%")

	out, err = run(t, "--api", ts.URL, "history", "server", "db02:API")
	require.NoError(t, err)
	assert.Contains(t, out, "server db02:API over 1h: 0 points")

	_, err = run(t, "--api", ts.URL, "history", "server", "ghost")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "target not found")
}

func TestSummaryCmd(t *testing.T) {
	ts := fakeAPI(t)
	out, err := run(t, "--api", ts.URL, "summary")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "degraded")
	assert.Equal(t, "retained points: 12", lines[2])

	out, err = run(t, "--api", ts.URL, "--json", "summary")
	require.NoError(t, err)
	assert.Contains(t, out, `"totalRetainedPoints": 12`)
}
