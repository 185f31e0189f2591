package config

// Config holds runtime configuration for the server.
type Config struct {
	Port    string
	Logging LoggingConfig
	Store   StoreConfig
	Cache   CacheConfig
	Feed    FeedConfig
	Metrics MetricsConfig
}

// LoggingConfig selects the log level and handler format.
type LoggingConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() Config {
	return Config{
		Port: envOrDefault(envPort, defaultPort),
		Logging: LoggingConfig{
			Level:  envOrDefault(envLogLevel, defaultLogLevel),
			Format: envOrDefault(envLogFormat, defaultLogFormat),
		},
		Store:   loadStore(),
		Cache:   loadCache(),
		Feed:    loadFeed(),
		Metrics: loadMetrics(),
	}
}
