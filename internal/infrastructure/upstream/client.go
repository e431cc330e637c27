// Package upstream is the retrying HTTP client shared by the registry
// adapters.  It owns the throttling policy: every 429, 5xx and transport
// failure is retried after an exponentially growing wait, and exhausting
// the attempt budget yields a single UpstreamUnavailable error.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/KeyIP-Continuity/internal/infrastructure/monitoring/prometheus"
	"github.com/turtacn/KeyIP-Continuity/pkg/errors"
)

// Version is reported in the User-Agent header.
const Version = "0.1.0"

const (
	defaultMaxAttempts    = 4
	defaultInitialBackoff = time.Second
	defaultTimeout        = 30 * time.Second
	maxBodyBytes          = 64 << 20
	errorSnippetBytes     = 256
)

// Call outcomes used as metric labels.
const (
	OutcomeOK          = "ok"
	OutcomeNotFound    = "not_found"
	OutcomeClientError = "client_error"
	OutcomeThrottled   = "throttled"
	OutcomeServerError = "server_error"
	OutcomeTransport   = "transport_error"
)

// Limiter paces outbound calls.  *rate.Limiter satisfies it.
type Limiter interface {
	Wait(ctx context.Context) error
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Config describes one registry endpoint family.
type Config struct {
	// Registry names the upstream in logs and metrics ("uspto", "ptab").
	Registry       string
	BaseURL        string
	APIKey         string
	APIKeyHeader   string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
}

// Client sends requests to one registry.
type Client struct {
	cfg         Config
	baseURL     *url.URL
	httpClient  *http.Client
	userAgent   string
	limiter     Limiter
	limiterName string
	sleep       Sleeper
	logger      logging.Logger
	metrics     *prometheus.AppMetrics
}

// New validates cfg and creates a Client.
func New(cfg Config, opts ...Option) (*Client, error) {
	if cfg.Registry == "" {
		return nil, errors.InvalidParam("upstream: registry name is required")
	}
	base, err := url.Parse(strings.TrimSuffix(cfg.BaseURL, "/"))
	if err != nil || (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return nil, errors.InvalidParam(fmt.Sprintf("upstream: base URL %q must be an absolute http(s) URL", cfg.BaseURL))
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = defaultMaxAttempts
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = defaultInitialBackoff
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "X-API-KEY"
	}

	c := &Client{
		cfg:        cfg,
		baseURL:    base,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  fmt.Sprintf("keyip-continuity/%s", Version),
		sleep:      SleepContext,
		logger:     logging.NewNopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With(logging.String("registry", cfg.Registry))
	return c, nil
}

// Registry returns the configured registry name.
func (c *Client) Registry() string { return c.cfg.Registry }

// MaxAttempts returns the effective attempt budget.
func (c *Client) MaxAttempts() int { return c.cfg.MaxAttempts }

// Request describes one logical call.  Endpoint labels it in metrics.
type Request struct {
	Method   string
	Path     string
	Query    url.Values
	Body     interface{}
	Accept   string
	Endpoint string
}

// Response is a fully read reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// URL resolves req against the base URL.  Path segments must already be
// escaped.
func (c *Client) URL(req Request) string {
	target := c.baseURL.String() + "/" + strings.TrimPrefix(req.Path, "/")
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}
	return target
}

// Do performs req and reads the body.  A 404 returns the response together
// with a NotFound error; 401 and 403 fail with ErrCodeDataSourceAuthFailed.
// Other 4xx statuses fail with ErrCodeExternalService.  None are retried.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.Open(ctx, req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeExternalService,
			fmt.Sprintf("%s: reading response body", c.cfg.Registry))
	}
	out := &Response{Status: resp.StatusCode, Header: resp.Header, Body: body}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return out, errors.New(errors.CodeNotFound, fmt.Sprintf("%s: %s not found", c.cfg.Registry, req.Path))
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return out, errors.New(errors.ErrCodeDataSourceAuthFailed,
			fmt.Sprintf("%s: API key rejected with status %d", c.cfg.Registry, resp.StatusCode)).
			WithDetail(snippet(body))
	case resp.StatusCode >= 400:
		return out, errors.New(errors.ErrCodeExternalService,
			fmt.Sprintf("%s: unexpected status %d", c.cfg.Registry, resp.StatusCode)).
			WithDetail(snippet(body))
	}
	return out, nil
}

// DoJSON performs req and decodes a 2xx body into out.  A body that is not
// valid JSON is reported as Malformed.
func (c *Client) DoJSON(ctx context.Context, req Request, out interface{}) (*Response, error) {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return resp, errors.Wrap(err, errors.ErrCodeDataSourceParseError,
			fmt.Sprintf("%s: response is not valid JSON", c.cfg.Registry))
	}
	return resp, nil
}

// Open performs req with retries and returns the live response for any
// status that is not retried.  The caller must close the body.
func (c *Client) Open(ctx context.Context, req Request) (*http.Response, error) {
	var payload []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrCodeSerialization, "upstream: marshal request body")
		}
		payload = b
	}
	if req.Method == "" {
		req.Method = http.MethodGet
	}
	endpoint := req.Endpoint
	if endpoint == "" {
		endpoint = req.Path
	}
	target := c.URL(req)
	log := c.logger.WithContext(ctx)

	delay := c.cfg.InitialBackoff
	var lastErr error
	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := c.waitLimiter(ctx); err != nil {
			return nil, err
		}

		start := time.Now()
		resp, err := c.send(ctx, req, target, payload)
		elapsed := time.Since(start)

		var reason string
		switch {
		case err != nil:
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			reason = OutcomeTransport
			lastErr = errors.Wrap(err, errors.ErrCodeDataSourceUnavailable,
				fmt.Sprintf("%s: request failed", c.cfg.Registry))
			logging.LogUpstreamCall(log, c.cfg.Registry, target, 0, elapsed, lastErr)
		case resp.StatusCode == http.StatusTooManyRequests:
			reason = OutcomeThrottled
			lastErr = errors.Throttled(fmt.Sprintf("%s: rate limited", c.cfg.Registry))
			discard(resp)
			logging.LogUpstreamCall(log, c.cfg.Registry, target, resp.StatusCode, elapsed, lastErr)
		case resp.StatusCode >= 500:
			reason = OutcomeServerError
			lastErr = errors.New(errors.ErrCodeExternalService,
				fmt.Sprintf("%s: server error %d", c.cfg.Registry, resp.StatusCode))
			discard(resp)
			logging.LogUpstreamCall(log, c.cfg.Registry, target, resp.StatusCode, elapsed, lastErr)
		default:
			outcome := statusOutcome(resp.StatusCode)
			prometheus.RecordUpstreamCall(c.metrics, c.cfg.Registry, endpoint, outcome, elapsed)
			logging.LogUpstreamCall(log, c.cfg.Registry, target, resp.StatusCode, elapsed, nil)
			return resp, nil
		}

		prometheus.RecordUpstreamCall(c.metrics, c.cfg.Registry, endpoint, reason, elapsed)
		prometheus.RecordRetry(c.metrics, c.cfg.Registry, reason)
		log.Debug("backing off",
			logging.Int("attempt", attempt),
			logging.Duration("wait", delay),
			logging.String("reason", reason))
		// The wait follows the final attempt too, so an exhausted budget of n
		// attempts has waited 1, 2, ... 2^(n-1) units before giving up.
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
		delay *= 2
	}

	return nil, errors.UpstreamUnavailable(
		fmt.Sprintf("%s: gave up after %d attempts", c.cfg.Registry, c.cfg.MaxAttempts)).WithCause(lastErr)
}

func (c *Client) waitLimiter(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	start := time.Now()
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	prometheus.RecordLimiterWait(c.metrics, c.limiterName, time.Since(start))
	return nil
}

func (c *Client) send(ctx context.Context, req Request, target string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, err
	}

	accept := req.Accept
	if accept == "" {
		accept = "application/json"
	}
	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("User-Agent", c.userAgent)
	if payload != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if c.cfg.APIKey != "" {
		httpReq.Header.Set(c.cfg.APIKeyHeader, c.cfg.APIKey)
	}
	requestID := logging.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	httpReq.Header.Set("X-Request-ID", requestID)

	return c.httpClient.Do(httpReq)
}

func statusOutcome(status int) string {
	switch {
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status >= 400:
		return OutcomeClientError
	default:
		return OutcomeOK
	}
}

func discard(resp *http.Response) {
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
	resp.Body.Close()
}

func snippet(body []byte) string {
	s := strings.TrimSpace(string(body))
	if len(s) > errorSnippetBytes {
		s = s[:errorSnippetBytes] + "..."
	}
	return s
}

//Personal.AI order the ending
