package config

import "time"

// StoreConfig selects the feed store backend and its client decorators.
type StoreConfig struct {
	Backend     string
	FixturePath string
	Dynamo      DynamoConfig
	Retry       RetryConfig
	RateLimit   float64 // requests per second, 0 disables limiting
	RateBurst   int
}

// DynamoConfig locates the match feed table.
type DynamoConfig struct {
	Region     string
	Table      string
	GroupIndex string
	Endpoint   string
	PageSize   int
}

type RetryConfig struct {
	Attempts int
	Backoff  time.Duration
}

func loadStore() StoreConfig {
	return StoreConfig{
		Backend:     envOrDefault(envStoreBackend, defaultStoreBackend),
		FixturePath: envOrDefault(envFixturePath, ""),
		Dynamo: DynamoConfig{
			Region:     envOrDefault(envAWSRegion, defaultAWSRegion),
			Table:      envOrDefault(envDynamoTable, defaultDynamoTable),
			GroupIndex: envOrDefault(envDynamoIndex, defaultDynamoIndex),
			Endpoint:   envOrDefault(envDynamoEndpoint, ""),
			PageSize:   intEnvOrDefault(envDynamoPageSize, defaultDynamoPageSize),
		},
		Retry: RetryConfig{
			Attempts: intEnvOrDefault(envRetryAttempts, defaultRetryAttempts),
			Backoff:  durationEnvOrDefault(envRetryBackoff, defaultRetryBackoff),
		},
		RateLimit: floatEnvOrDefault(envRateLimit, 0),
		RateBurst: intEnvOrDefault(envRateBurst, defaultRateBurst),
	}
}
