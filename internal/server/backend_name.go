package server

import (
	"strings"

	"github.com/preston-bernstein/match-feed-service/internal/config"
)

// normalizeBackendName lower-cases the configured store backend, defaulting to the fixture.
// Used across gateway wiring and logs to keep naming consistent in metrics.
func normalizeBackendName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return config.BackendFixture
	}
	return name
}
