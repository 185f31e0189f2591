package config

import "time"

const (
	envPort         = "PORT"
	envLogLevel     = "LOG_LEVEL"
	envLogFormat    = "LOG_FORMAT"
	envMetricsPort  = "METRICS_PORT"
	envMetricsOn    = "METRICS_ENABLED"
	envOtelEndpoint = "OTEL_EXPORTER_OTLP_ENDPOINT"
	envOtelService  = "OTEL_SERVICE_NAME"
	envOtelInsecure = "OTEL_EXPORTER_OTLP_INSECURE"

	envStoreBackend   = "STORE_BACKEND"
	envFixturePath    = "FIXTURE_PATH"
	envAWSRegion      = "AWS_REGION"
	envDynamoTable    = "DYNAMO_TABLE"
	envDynamoIndex    = "DYNAMO_GROUP_INDEX"
	envDynamoEndpoint = "DYNAMO_ENDPOINT"
	envDynamoPageSize = "DYNAMO_PAGE_SIZE"
	envRetryAttempts  = "STORE_RETRY_ATTEMPTS"
	envRetryBackoff   = "STORE_RETRY_BACKOFF"
	envRateLimit      = "STORE_RATE_LIMIT"
	envRateBurst      = "STORE_RATE_BURST"

	envRedisAddr     = "REDIS_ADDR"
	envRedisPassword = "REDIS_PASSWORD"
	envRedisDB       = "REDIS_DB"
	envCacheTTL      = "FEED_CACHE_TTL"

	envParallelFetch = "FEED_PARALLEL_FETCH_ENABLED"
	envGroupLimits   = "FEED_GROUP_LIMITS"
	envQueryTimeout  = "FEED_QUERY_TIMEOUT"
	envLimitsFile    = "FEED_LIMITS_FILE"

	defaultPort        = "4000"
	defaultLogLevel    = "info"
	defaultLogFormat   = "text"
	defaultMetricsPort = "9090"
	defaultServiceName = "match-feed-service"

	BackendFixture = "fixture"
	BackendDynamo  = "dynamodb"

	defaultStoreBackend   = BackendFixture
	defaultAWSRegion      = "us-east-1"
	defaultDynamoTable    = "MatchFeed"
	defaultDynamoIndex    = "feedGroup-matchId-index"
	defaultDynamoPageSize = 1000
	defaultRetryAttempts  = 3
	defaultRetryBackoff   = 100 * Duration(time.Millisecond)
	defaultRateBurst      = 10

	defaultCacheTTL = 30 * Duration(time.Second)

	defaultParallelFetch = true
	defaultGroupLimits   = "new=100,comm=250"
	defaultQueryTimeout  = 2 * Duration(time.Second)
)
