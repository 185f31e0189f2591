package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const defaultServiceName = "match-feed-service"

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = defaultServiceName
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

// strategyInstruments is one set of aggregation instruments. Each strategy gets its own
// metric names so the grouped and legacy paths can be compared side by side.
type strategyInstruments struct {
	durationMs metric.Float64Histogram
	size       metric.Int64Histogram
	failures   metric.Int64Counter
}

type otelInstruments struct {
	ctx              context.Context
	meter            metric.Meter
	requests         metric.Int64Counter
	requestLatencyMs metric.Float64Histogram
	queries          metric.Int64Counter
	queryErrors      metric.Int64Counter
	queryLatencyMs   metric.Float64Histogram
	throttles        metric.Int64Counter
	throttleWaitMs   metric.Float64Histogram
	cacheHits        metric.Int64Counter
	cacheMisses      metric.Int64Counter
	reloads          metric.Int64Counter
	reloadErrors     metric.Int64Counter
	strategies       map[string]strategyInstruments
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter(defaultServiceName)
	inst := &otelInstruments{
		ctx:        context.Background(),
		meter:      meter,
		strategies: make(map[string]strategyInstruments, 2),
	}

	var err error
	if inst.requests, err = meter.Int64Counter("http_requests_total"); err != nil {
		return nil, err
	}
	if inst.requestLatencyMs, err = meter.Float64Histogram("http_request_duration_ms"); err != nil {
		return nil, err
	}
	if inst.queries, err = meter.Int64Counter("store_queries_total"); err != nil {
		return nil, err
	}
	if inst.queryErrors, err = meter.Int64Counter("store_query_errors_total"); err != nil {
		return nil, err
	}
	if inst.queryLatencyMs, err = meter.Float64Histogram("store_query_duration_ms"); err != nil {
		return nil, err
	}
	if inst.throttles, err = meter.Int64Counter("store_throttle_total"); err != nil {
		return nil, err
	}
	if inst.throttleWaitMs, err = meter.Float64Histogram("store_throttle_wait_ms"); err != nil {
		return nil, err
	}
	if inst.cacheHits, err = meter.Int64Counter("feed_cache_hits_total"); err != nil {
		return nil, err
	}
	if inst.cacheMisses, err = meter.Int64Counter("feed_cache_misses_total"); err != nil {
		return nil, err
	}
	if inst.reloads, err = meter.Int64Counter("settings_reloads_total"); err != nil {
		return nil, err
	}
	if inst.reloadErrors, err = meter.Int64Counter("settings_reload_errors_total"); err != nil {
		return nil, err
	}

	for _, strategy := range []string{StrategyParallel, StrategySync} {
		si, err := newStrategyInstruments(meter, strategy)
		if err != nil {
			return nil, err
		}
		inst.strategies[strategy] = si
	}

	return inst, nil
}

func newStrategyInstruments(meter metric.Meter, strategy string) (strategyInstruments, error) {
	prefix := "feed_" + strategy
	durationMs, err := meter.Float64Histogram(prefix + "_duration_ms")
	if err != nil {
		return strategyInstruments{}, err
	}
	size, err := meter.Int64Histogram(prefix + "_size")
	if err != nil {
		return strategyInstruments{}, err
	}
	failures, err := meter.Int64Counter(prefix + "_failures_total")
	if err != nil {
		return strategyInstruments{}, err
	}
	return strategyInstruments{durationMs: durationMs, size: size, failures: failures}, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordStoreQuery(group string, duration time.Duration, err error) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrGroup, group)}
	o.recordCounter(o.queries, 1, attrs...)
	o.recordHistogram(o.queryLatencyMs, float64(duration.Milliseconds()), attrs...)
	if err != nil {
		o.recordCounter(o.queryErrors, 1, attrs...)
	}
}

func (o *otelInstruments) recordThrottle(group string, wait time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{attribute.String(AttrGroup, group)}
	o.recordCounter(o.throttles, 1, attrs...)
	if wait > 0 {
		o.recordHistogram(o.throttleWaitMs, float64(wait.Milliseconds()), attrs...)
	}
}

func (o *otelInstruments) recordAggregation(strategy string, duration time.Duration, size int, err error) {
	if o == nil {
		return
	}
	si, ok := o.strategies[strategy]
	if !ok {
		return
	}
	o.recordHistogram(si.durationMs, float64(duration.Milliseconds()))
	if err != nil {
		o.recordCounter(si.failures, 1)
		return
	}
	si.size.Record(o.ctx, int64(size))
}

func (o *otelInstruments) recordCache(hit bool) {
	if o == nil {
		return
	}
	if hit {
		o.recordCounter(o.cacheHits, 1)
		return
	}
	o.recordCounter(o.cacheMisses, 1)
}

func (o *otelInstruments) recordReload(err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.recordCounter(o.reloadErrors, 1)
		return
	}
	o.recordCounter(o.reloads, 1)
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
