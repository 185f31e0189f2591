package feed

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
	"github.com/preston-bernstein/match-feed-service/internal/settings"
)

// Querier runs one feed query against the store.
type Querier interface {
	Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error)
}

// Result is the completion value of an asynchronous fetch.
type Result struct {
	Set matches.FeedSet
	Err error
}

// Engine aggregates a user's feed from one query per status group.
type Engine struct {
	store    Querier
	settings settings.Source
	logger   *slog.Logger
	metrics  *metrics.Recorder
	now      func() time.Time
}

// NewEngine wires an engine. A nil source falls back to settings.Default.
func NewEngine(store Querier, source settings.Source, logger *slog.Logger, recorder *metrics.Recorder) *Engine {
	if source == nil {
		source = settings.NewStatic(settings.Default())
	}
	return &Engine{
		store:    store,
		settings: source,
		logger:   logger,
		metrics:  recorder,
		now:      time.Now,
	}
}

// FetchStrict returns the merged feed or an *AggregationError if any group query failed.
// Partial results are never returned.
func (e *Engine) FetchStrict(ctx context.Context, req matches.RequestContext) (matches.FeedSet, error) {
	return e.fetch(ctx, req)
}

// FetchSafe never fails: any group failure is logged and an empty set is returned.
func (e *Engine) FetchSafe(ctx context.Context, req matches.RequestContext) matches.FeedSet {
	set, err := e.fetch(ctx, req)
	if err != nil {
		logger := logging.FromContext(ctx, e.logger)
		logging.Warn(logger, "feed fetch degraded to empty",
			logging.FieldUserID, req.UserID(),
			logging.FieldError, err,
		)
		return matches.NewFeedSet()
	}
	return set
}

// FetchStrictAsync runs FetchStrict in the background. The channel yields exactly one Result.
func (e *Engine) FetchStrictAsync(ctx context.Context, req matches.RequestContext) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		set, err := e.FetchStrict(ctx, req)
		out <- Result{Set: set, Err: err}
	}()
	return out
}

// FetchSafeAsync runs FetchSafe in the background. The Result never carries an error.
func (e *Engine) FetchSafeAsync(ctx context.Context, req matches.RequestContext) <-chan Result {
	out := make(chan Result, 1)
	go func() {
		defer close(out)
		out <- Result{Set: e.FetchSafe(ctx, req)}
	}()
	return out
}

// Plan returns the strategy and the store queries a request would issue under the
// current settings.
func (e *Engine) Plan(req matches.RequestContext) (string, []matches.QueryDescriptor) {
	return plan(req, e.settings.Current())
}

func plan(req matches.RequestContext, s settings.Settings) (string, []matches.QueryDescriptor) {
	resolved := Resolve(req.Statuses())

	if !s.ParallelFetch {
		all := matches.StatusSet{}
		for _, set := range resolved {
			for status := range set {
				all.Add(status)
			}
		}
		q := BuildQuery(req.UserID(), "", all, 0, false)
		if q.Empty() {
			return metrics.StrategySync, nil
		}
		return metrics.StrategySync, []matches.QueryDescriptor{q}
	}

	groups := orderedGroups(resolved)
	out := make([]matches.QueryDescriptor, 0, len(groups))
	for _, g := range groups {
		limit, ok := s.Limits.LimitFor(g)
		q := BuildQuery(req.UserID(), g, resolved[g], limit, ok)
		if q.Empty() {
			continue
		}
		out = append(out, q)
	}
	return metrics.StrategyParallel, out
}

func (e *Engine) fetch(ctx context.Context, req matches.RequestContext) (matches.FeedSet, error) {
	current := e.settings.Current()
	strategy, queries := plan(req, current)
	start := e.now()

	results := make([]matches.FeedSet, len(queries))
	g, gctx := errgroup.WithContext(ctx)
	for i, q := range queries {
		i, q := i, q
		g.Go(func() error {
			qctx := gctx
			if current.QueryTimeout > 0 {
				var cancel context.CancelFunc
				qctx, cancel = context.WithTimeout(gctx, current.QueryTimeout)
				defer cancel()
			}
			set, err := e.store.Query(qctx, q)
			if err != nil {
				return &AggregationError{UserID: req.UserID(), Strategy: strategy, Group: q.Group, Cause: err}
			}
			results[i] = set
			return nil
		})
	}

	err := g.Wait()
	elapsed := e.now().Sub(start)
	if err != nil {
		e.metrics.RecordAggregation(strategy, elapsed, 0, err)
		return nil, err
	}

	merged := matches.NewFeedSet()
	for _, set := range results {
		merged.Merge(set)
	}
	e.metrics.RecordAggregation(strategy, elapsed, merged.Len(), nil)

	logging.Info(logging.FromContext(ctx, e.logger), "feed aggregated",
		logging.FieldUserID, req.UserID(),
		logging.FieldStrategy, strategy,
		logging.FieldSettings, current.Version,
		"queries", len(queries),
		logging.FieldCount, merged.Len(),
		logging.FieldDurationMS, elapsed.Milliseconds(),
	)
	return merged, nil
}
