package config

// MetricsConfig controls telemetry export. The Prometheus scrape endpoint listens on Port;
// OtlpEndpoint additionally pushes to a collector when set.
type MetricsConfig struct {
	Enabled      bool
	Port         string
	OtlpEndpoint string
	ServiceName  string
	OtlpInsecure bool
}

// Addr is the listen address of the metrics server.
func (m MetricsConfig) Addr() string {
	return ":" + m.Port
}

// PushEnabled reports whether an OTLP collector was configured.
func (m MetricsConfig) PushEnabled() bool {
	return m.Enabled && m.OtlpEndpoint != ""
}

func loadMetrics() MetricsConfig {
	m := MetricsConfig{
		Enabled:      boolEnvOrDefault(envMetricsOn, true),
		Port:         envOrDefault(envMetricsPort, defaultMetricsPort),
		ServiceName:  envOrDefault(envOtelService, defaultServiceName),
		OtlpInsecure: boolEnvOrDefault(envOtelInsecure, true),
	}
	if m.Enabled {
		m.OtlpEndpoint = envOrDefault(envOtelEndpoint, "")
	}
	return m
}
