// cmd/preflight/main.go
package main

import (
	"fmt"
	"io"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"go.uber.org/multierr"

	"github.com/hamed0406/netmonitor/internal/config"
	"github.com/hamed0406/netmonitor/internal/logging"
)

func main() {
	os.Exit(preflight(os.Getenv, os.Stdout, os.Stderr))
}

// preflight validates the environment and the targets file and returns the
// process exit code.
func preflight(getenv func(string) string, stdout, stderr io.Writer) int {
	failed := false
	fail := func(msg string) {
		fmt.Fprintln(stderr, "✖", msg)
		failed = true
	}
	warn := func(msg string) { fmt.Fprintln(stderr, "⚠", msg) }
	ok := func(msg string) { fmt.Fprintln(stdout, "✔", msg) }

	apiAddr := strings.TrimSpace(getenv("API_ADDR"))
	if apiAddr == "" {
		warn("API_ADDR is empty; default 127.0.0.1:3001 will be used.")
	} else if _, _, err := net.SplitHostPort(apiAddr); err != nil {
		fail("API_ADDR=" + apiAddr + " is not host:port (" + err.Error() + ")")
	} else {
		ok("API_ADDR=" + apiAddr)
	}

	if lvl := strings.TrimSpace(getenv("LOG_LEVEL")); lvl != "" {
		if _, err := logging.ParseLevel(lvl); err != nil {
			fail(err.Error())
		} else {
			ok("LOG_LEVEL=" + lvl)
		}
	}

	for _, name := range []string{"PROBE_RETRY_ATTEMPTS", "PROBE_RETRY_BACKOFF_MS", "MAX_CONCURRENT_PROBES",
		"PUBLIC_RPM", "PUBLIC_BURST", "ALERT_COOLDOWN_MS"} {
		if v := strings.TrimSpace(getenv(name)); v != "" {
			if n, err := strconv.Atoi(v); err != nil || n < 0 {
				warn(name + "=" + v + " is not a non-negative integer; the default will be used.")
			}
		}
	}

	if hook := strings.TrimSpace(getenv("SLACK_WEBHOOK_URL")); hook == "" {
		warn("SLACK_WEBHOOK_URL empty; transitions are only written to the log.")
	} else if u, err := url.Parse(hook); err != nil || u.Scheme != "https" || u.Host == "" {
		fail("SLACK_WEBHOOK_URL is not an https URL.")
	} else {
		ok("SLACK_WEBHOOK_URL present")
	}

	if allowed := strings.TrimSpace(getenv("ALLOWED_ORIGINS")); allowed == "" {
		warn("ALLOWED_ORIGINS empty; any origin may call the API.")
	} else {
		ok("ALLOWED_ORIGINS=" + allowed)
	}

	path := strings.TrimSpace(getenv("TARGETS_FILE"))
	if path == "" {
		path = "config.yaml"
	}
	t, err := config.LoadTargets(path)
	switch {
	case err != nil:
		for _, e := range multierr.Errors(err) {
			fail(e.Error())
		}
	case t.Fallback:
		warn(path + " not found; the built-in target list will be monitored.")
	default:
		ok(fmt.Sprintf("%s: %d servers, %d uplinks, every %d ms", path,
			len(t.Servers), len(t.Uplinks), t.Monitoring.UpdateIntervalMS))
	}

	if failed {
		return 1
	}
	ok("preflight passed")
	return 0
}
