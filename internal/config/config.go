package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Addr           string        // API bind address, e.g., "127.0.0.1:3001" (Windows) or ":3001" (Docker)
	LogDir         string        // logs directory
	LogLevel       string        // debug, info, warn, error
	TargetsFile    string        // YAML file with servers, uplinks and monitoring settings
	RetryAttempts  int           // probe attempts per check, 1 = no retry
	RetryBackoff   time.Duration // backoff between attempts
	MaxConcurrent  int           // entities evaluated at once per poll cycle
	PublicRPM      int
	PublicBurst    int
	AllowedOrigins []string // CORS, empty means any origin
	SlackWebhook   string
	AlertCooldown  time.Duration
	AlertOnRecover bool
}

func FromEnv() Config {
	// Bind address (Windows-friendly default)
	addr := os.Getenv("API_ADDR")
	if addr == "" {
		addr = "127.0.0.1:3001"
	}

	// Logs
	logDir := os.Getenv("LOG_DIR")
	if logDir == "" {
		logDir = "logs"
	}
	logLevel := strings.ToLower(strings.TrimSpace(os.Getenv("LOG_LEVEL")))
	if logLevel == "" {
		logLevel = "info"
	}

	targets := os.Getenv("TARGETS_FILE")
	if targets == "" {
		targets = "config.yaml"
	}

	return Config{
		Addr:           addr,
		LogDir:         logDir,
		LogLevel:       logLevel,
		TargetsFile:    targets,
		RetryAttempts:  intEnv("PROBE_RETRY_ATTEMPTS", 1, 1),
		RetryBackoff:   msEnv("PROBE_RETRY_BACKOFF_MS", 300*time.Millisecond),
		MaxConcurrent:  intEnv("MAX_CONCURRENT_PROBES", 32, 1),
		PublicRPM:      intEnv("PUBLIC_RPM", 600, 1),
		PublicBurst:    intEnv("PUBLIC_BURST", 60, 1),
		AllowedOrigins: csv(os.Getenv("ALLOWED_ORIGINS")),
		SlackWebhook:   strings.TrimSpace(os.Getenv("SLACK_WEBHOOK_URL")),
		AlertCooldown:  msEnv("ALERT_COOLDOWN_MS", 5*time.Minute),
		AlertOnRecover: boolEnv("ALERT_ON_RECOVERY", true),
	}
}

// intEnv returns def when the variable is unset, malformed or below min.
func intEnv(key string, def, min int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= min {
			return n
		}
	}
	return def
}

func msEnv(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if ms, err := strconv.Atoi(v); err == nil && ms >= 0 {
			return time.Duration(ms) * time.Millisecond
		}
	}
	return def
}

func boolEnv(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func csv(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
