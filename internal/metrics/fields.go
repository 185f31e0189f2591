package metrics

// Common metric attribute keys to keep telemetry consistent/searchable.
const (
	AttrMethod  = "method"
	AttrPath    = "path"
	AttrStatus  = "status"
	AttrGroup   = "group"
	AttrGateway = "gateway"
)

// Aggregation strategies, recorded under distinct instrument names.
const (
	StrategyParallel = "parallel"
	StrategySync     = "sync"
)
