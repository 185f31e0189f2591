package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Duration wraps time.Duration for clearer type usage in Config.
type Duration = time.Duration

// lookup returns the trimmed value of key and whether it was set to anything.
func lookup(key string) (string, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	return raw, raw != ""
}

// parsedEnvOrDefault falls back to def when key is unset or parse rejects the value.
func parsedEnvOrDefault[T any](key string, def T, parse func(string) (T, bool)) T {
	raw, ok := lookup(key)
	if !ok {
		return def
	}
	if val, ok := parse(raw); ok {
		return val
	}
	return def
}

func envOrDefault(key, defaultValue string) string {
	if raw, ok := lookup(key); ok {
		return raw
	}
	return defaultValue
}

func durationEnvOrDefault(key string, defaultValue time.Duration) time.Duration {
	return parsedEnvOrDefault(key, defaultValue, func(raw string) (time.Duration, bool) {
		d, err := time.ParseDuration(raw)
		return d, err == nil && d > 0
	})
}

func intEnvOrDefault(key string, defaultValue int) int {
	return parsedEnvOrDefault(key, defaultValue, func(raw string) (int, bool) {
		n, err := strconv.Atoi(raw)
		return n, err == nil && n > 0
	})
}

func floatEnvOrDefault(key string, defaultValue float64) float64 {
	return parsedEnvOrDefault(key, defaultValue, func(raw string) (float64, bool) {
		f, err := strconv.ParseFloat(raw, 64)
		return f, err == nil && f >= 0
	})
}

func boolEnvOrDefault(key string, defaultValue bool) bool {
	return parsedEnvOrDefault(key, defaultValue, func(raw string) (bool, bool) {
		switch strings.ToLower(raw) {
		case "1", "true", "yes", "on":
			return true, true
		case "0", "false", "no", "off":
			return false, true
		}
		return false, false
	})
}
