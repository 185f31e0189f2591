package store

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
	"github.com/preston-bernstein/match-feed-service/internal/metrics"
)

const throttleReportThreshold = time.Millisecond

// rateLimitedGateway caps the request rate against the store with a token bucket.
type rateLimitedGateway struct {
	next    Gateway
	limiter *rate.Limiter
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewRateLimitedGateway limits calls to perSecond with the given burst. Calls block for a
// token; a call whose context cannot outlast the wait fails with a ThrottledError.
// A non-positive rate disables limiting.
func NewRateLimitedGateway(next Gateway, perSecond float64, burst int, logger *slog.Logger, recorder *metrics.Recorder) Gateway {
	if perSecond <= 0 {
		return next
	}
	if burst <= 0 {
		burst = 1
	}
	return &rateLimitedGateway{
		next:    next,
		limiter: rate.NewLimiter(rate.Limit(perSecond), burst),
		logger:  logger,
		metrics: recorder,
	}
}

func (g *rateLimitedGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	if g.next == nil {
		return nil, ErrGatewayUnavailable
	}
	if err := g.wait(ctx, groupLabel(q)); err != nil {
		return nil, err
	}
	return g.next.Query(ctx, q)
}

func (g *rateLimitedGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	if g.next == nil {
		return matches.FeedItem{}, false, ErrGatewayUnavailable
	}
	if err := g.wait(ctx, "get"); err != nil {
		return matches.FeedItem{}, false, err
	}
	return g.next.Get(ctx, userID, matchID)
}

func (g *rateLimitedGateway) wait(ctx context.Context, group string) error {
	start := time.Now()
	if err := g.limiter.Wait(ctx); err != nil {
		g.metrics.RecordThrottle(group, time.Since(start))
		logging.Warn(logging.FromContext(ctx, g.logger), "store call throttled",
			logging.FieldGroup, group,
			logging.FieldError, err,
		)
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &ThrottledError{Gateway: "rate-limit", Group: group, Err: err}
	}
	if waited := time.Since(start); waited >= throttleReportThreshold {
		g.metrics.RecordThrottle(group, waited)
	}
	return nil
}
