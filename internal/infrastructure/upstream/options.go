package upstream

import (
	"net/http"

	"golang.org/x/time/rate"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
)

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger logging.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics records call, retry and limiter metrics into m.
func WithMetrics(m *prometheus.AppMetrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithLimiter paces every attempt through l.  name labels the wait metric.
func WithLimiter(l Limiter, name string) Option {
	return func(c *Client) {
		c.limiter = l
		c.limiterName = name
	}
}

// WithSleeper replaces the backoff sleeper.
func WithSleeper(s Sleeper) Option {
	return func(c *Client) {
		if s != nil {
			c.sleep = s
		}
	}
}

// WithUserAgent sets a custom User-Agent string.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		if userAgent != "" {
			c.userAgent = userAgent
		}
	}
}

// NewLocalLimiter returns an in-process token bucket admitting rps requests
// per second with the given burst.
func NewLocalLimiter(rps float64, burst int) Limiter {
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(rps), burst)
}

//Personal.AI order the ending
