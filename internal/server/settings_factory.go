package server

import (
	"log/slog"

	"github.com/preston-bernstein/match-feed-service/internal/config"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
	"github.com/preston-bernstein/match-feed-service/internal/settings"
)

type settingsComponents struct {
	source  settings.Source
	watcher Watcher
}

// buildSettings returns a static source, or a watched file source when a limits file is configured.
func buildSettings(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (settingsComponents, error) {
	base, err := cfg.Feed.Settings()
	if err != nil {
		return settingsComponents{}, err
	}
	if cfg.Feed.LimitsFile == "" {
		return settingsComponents{source: settings.NewStatic(base)}, nil
	}
	fs := settings.NewFileSource(cfg.Feed.LimitsFile, base, logger, recorder)
	return settingsComponents{source: fs, watcher: newFallbackWatcher(fs)}, nil
}
