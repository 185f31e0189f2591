package config

import (
	"fmt"
	"time"

	"github.com/preston-bernstein/match-feed-service/internal/settings"
)

// FeedConfig holds the aggregation engine's startup settings.
type FeedConfig struct {
	ParallelFetch bool
	GroupLimits   string
	QueryTimeout  time.Duration
	LimitsFile    string
}

func loadFeed() FeedConfig {
	return FeedConfig{
		ParallelFetch: boolEnvOrDefault(envParallelFetch, defaultParallelFetch),
		GroupLimits:   envOrDefault(envGroupLimits, defaultGroupLimits),
		QueryTimeout:  durationEnvOrDefault(envQueryTimeout, defaultQueryTimeout),
		LimitsFile:    envOrDefault(envLimitsFile, ""),
	}
}

// Settings builds the initial engine settings snapshot.
func (f FeedConfig) Settings() (settings.Settings, error) {
	limits, err := settings.ParseGroupLimits(f.GroupLimits)
	if err != nil {
		return settings.Settings{}, fmt.Errorf("%s: %w", envGroupLimits, err)
	}
	return settings.Settings{
		Version:       1,
		ParallelFetch: f.ParallelFetch,
		Limits:        limits,
		QueryTimeout:  f.QueryTimeout,
	}, nil
}
