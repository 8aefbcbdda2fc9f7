package config

import (
	"os"
	"testing"
	"time"
)

func TestFromEnv_ParsesAndDefaults(t *testing.T) {
	t.Setenv("API_ADDR", ":9090")
	t.Setenv("LOG_DIR", "./_testlogs")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("TARGETS_FILE", "/etc/netmonitor/targets.yaml")
	t.Setenv("PROBE_RETRY_ATTEMPTS", "3")
	t.Setenv("PROBE_RETRY_BACKOFF_MS", "250")
	t.Setenv("MAX_CONCURRENT_PROBES", "7")
	t.Setenv("PUBLIC_RPM", "111")
	t.Setenv("PUBLIC_BURST", "22")
	t.Setenv("ALLOWED_ORIGINS", "http://localhost:5173, https://noc.example.com,")
	t.Setenv("ALERT_COOLDOWN_MS", "1000")
	t.Setenv("ALERT_ON_RECOVERY", "false")

	cfg := FromEnv()

	if cfg.Addr != ":9090" || cfg.LogDir != "./_testlogs" || cfg.LogLevel != "debug" {
		t.Fatalf("addr/logdir/level wrong: %+v", cfg)
	}
	if cfg.TargetsFile != "/etc/netmonitor/targets.yaml" {
		t.Fatalf("targets file wrong: %q", cfg.TargetsFile)
	}
	if cfg.RetryAttempts != 3 || cfg.RetryBackoff != 250*time.Millisecond || cfg.MaxConcurrent != 7 {
		t.Fatalf("probe tuning wrong: %+v", cfg)
	}
	if cfg.PublicRPM != 111 || cfg.PublicBurst != 22 {
		t.Fatalf("rate limit wrong: %+v", cfg)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://noc.example.com" {
		t.Fatalf("origins wrong: %+v", cfg.AllowedOrigins)
	}
	if cfg.AlertCooldown != time.Second || cfg.AlertOnRecover {
		t.Fatalf("alerting wrong: %+v", cfg)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	for _, k := range []string{"API_ADDR", "LOG_DIR", "LOG_LEVEL", "TARGETS_FILE", "PROBE_RETRY_ATTEMPTS",
		"MAX_CONCURRENT_PROBES", "ALLOWED_ORIGINS", "SLACK_WEBHOOK_URL", "ALERT_ON_RECOVERY"} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	cfg := FromEnv()
	if cfg.Addr != "127.0.0.1:3001" || cfg.LogDir != "logs" || cfg.LogLevel != "info" || cfg.TargetsFile != "config.yaml" {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
	if cfg.RetryAttempts != 1 || cfg.MaxConcurrent != 32 || !cfg.AlertOnRecover || cfg.AllowedOrigins != nil {
		t.Fatalf("defaults wrong: %+v", cfg)
	}
}

func TestFromEnv_IgnoresBadNumbers(t *testing.T) {
	t.Setenv("PROBE_RETRY_ATTEMPTS", "0")
	t.Setenv("MAX_CONCURRENT_PROBES", "lots")
	t.Setenv("ALERT_ON_RECOVERY", "maybe")
	cfg := FromEnv()
	if cfg.RetryAttempts != 1 || cfg.MaxConcurrent != 32 || !cfg.AlertOnRecover {
		t.Fatalf("bad values should fall back to defaults: %+v", cfg)
	}
}
