// Package envconfig reads typed configuration values from environment variables.
// Unset or unparsable values fall back to the given default.
package envconfig

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

// String returns the environment variable value or a default.
func String(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// Int returns the environment variable as int or a default.
func Int(key string, def int) int {
	v := String(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("invalid int env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// Float returns the environment variable as float64 or a default.
func Float(key string, def float64) float64 {
	v := String(key, "")
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		slog.Warn("invalid float env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return f
}

// Duration returns the environment variable parsed by time.ParseDuration or a default.
func Duration(key string, def time.Duration) time.Duration {
	v := String(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		slog.Warn("invalid duration env var, using default", "key", key, "value", v, "default", def)
		return def
	}
	return d
}
