package store

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/preston-bernstein/match-feed-service/internal/domain/matches"
	"github.com/preston-bernstein/match-feed-service/internal/logging"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 100 * time.Millisecond
	maxBackoff           = 2 * time.Second
)

// retryingGateway wraps a Gateway with exponential backoff.
type retryingGateway struct {
	inner       Gateway
	logger      *slog.Logger
	maxAttempts int
	initial     time.Duration
}

// NewRetryingGateway wraps the given gateway with retries. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetryingGateway(inner Gateway, logger *slog.Logger, maxAttempts int, initial time.Duration) Gateway {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if initial <= 0 {
		initial = defaultBackoff
	}
	return &retryingGateway{
		inner:       inner,
		logger:      logger,
		maxAttempts: maxAttempts,
		initial:     initial,
	}
}

func (r *retryingGateway) Query(ctx context.Context, q matches.QueryDescriptor) (matches.FeedSet, error) {
	if r.inner == nil {
		return nil, ErrGatewayUnavailable
	}
	var out matches.FeedSet
	err := r.do(ctx, "store query retry", groupLabel(q), func() error {
		set, err := r.inner.Query(ctx, q)
		if err != nil {
			return err
		}
		out = set
		return nil
	})
	return out, err
}

func (r *retryingGateway) Get(ctx context.Context, userID, matchID int64) (matches.FeedItem, bool, error) {
	if r.inner == nil {
		return matches.FeedItem{}, false, ErrGatewayUnavailable
	}
	var (
		item  matches.FeedItem
		found bool
	)
	err := r.do(ctx, "store get retry", "get", func() error {
		got, ok, err := r.inner.Get(ctx, userID, matchID)
		if err != nil {
			return err
		}
		item, found = got, ok
		return nil
	})
	return item, found, err
}

func (r *retryingGateway) do(ctx context.Context, msg, group string, call func() error) error {
	op := func() error {
		err := call()
		if err != nil && !retryable(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	attempt := 0
	notify := func(err error, delay time.Duration) {
		attempt++
		logging.Warn(logging.FromContext(ctx, r.logger), msg,
			logging.FieldGroup, group,
			"attempt", attempt,
			"max_attempts", r.maxAttempts,
			"delay_ms", delay.Milliseconds(),
			logging.FieldError, err,
		)
	}
	return backoff.RetryNotify(op, backoff.WithContext(r.policy(), ctx), notify)
}

func (r *retryingGateway) policy() backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = r.initial
	exp.MaxInterval = maxBackoff
	exp.MaxElapsedTime = 0
	return backoff.WithMaxRetries(exp, uint64(r.maxAttempts-1))
}

// retryable rejects errors another attempt cannot fix.
func retryable(err error) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrEmptyQuery), errors.Is(err, ErrGatewayUnavailable):
		return false
	default:
		return true
	}
}
