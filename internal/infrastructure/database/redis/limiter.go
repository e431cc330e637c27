package redis

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
)

// WindowLimiter is a fixed-window request limiter shared by every replica
// that points at the same Redis.  Each window is one counter key; callers
// that overflow the window sleep until the next one begins.
//
// Redis failures fail open: the call proceeds and a warning is logged.
type WindowLimiter struct {
	rdb    redis.Cmdable
	key    string
	limit  int64
	window time.Duration
	logger logging.Logger

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// LimiterOption customises a WindowLimiter.
type LimiterOption func(*WindowLimiter)

// WithClock replaces the wall clock and timer, for tests.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) LimiterOption {
	return func(l *WindowLimiter) {
		l.now = now
		l.after = after
	}
}

// NewWindowLimiter allows rps*window requests per window (at least burst,
// and at least one).
func NewWindowLimiter(rdb redis.Cmdable, key string, rps float64, burst int, window time.Duration, log logging.Logger, opts ...LimiterOption) *WindowLimiter {
	if window <= 0 {
		window = time.Second
	}
	limit := int64(math.Floor(rps * window.Seconds()))
	if limit < int64(burst) {
		limit = int64(burst)
	}
	if limit < 1 {
		limit = 1
	}
	l := &WindowLimiter{
		rdb:    rdb,
		key:    key,
		limit:  limit,
		window: window,
		logger: log,
		now:    time.Now,
		after:  time.After,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewClientLimiter builds a WindowLimiter on c, namespacing key with the
// client's key prefix.
func NewClientLimiter(c *Client, key string, rps float64, burst int, window time.Duration, log logging.Logger, opts ...LimiterOption) *WindowLimiter {
	return NewWindowLimiter(c.GetUnderlyingClient(), c.KeyPrefix()+key, rps, burst, window, log, opts...)
}

// Limit returns the number of calls admitted per window.
func (l *WindowLimiter) Limit() int64 { return l.limit }

func (l *WindowLimiter) windowKey(t time.Time) (string, time.Time) {
	slot := t.UnixNano() / int64(l.window)
	next := time.Unix(0, (slot+1)*int64(l.window))
	return fmt.Sprintf("%s:%d", l.key, slot), next
}

// Wait blocks until the caller may issue one request or ctx is done.
func (l *WindowLimiter) Wait(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		key, next := l.windowKey(l.now())

		n, err := l.rdb.Incr(ctx, key).Result()
		if err != nil {
			l.logger.Warn("redis limiter unavailable, admitting request", logging.String("key", key), logging.Err(err))
			return nil
		}
		if n == 1 {
			if err := l.rdb.Expire(ctx, key, 2*l.window).Err(); err != nil {
				l.logger.Warn("failed to set limiter window expiry", logging.String("key", key), logging.Err(err))
			}
		}
		if n <= l.limit {
			return nil
		}

		wait := next.Sub(l.now())
		if wait < 0 {
			wait = 0
		}
		l.logger.Debug("outbound limit reached, waiting for next window",
			logging.String("key", key), logging.Int64("count", n), logging.Duration("wait", wait))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.after(wait):
		}
	}
}

//Personal.AI order the ending
