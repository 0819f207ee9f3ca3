// Package client implements the REST client for the Citrination materials
// data platform: dataset upload, data-view management, prediction, design
// runs, and PIF search. All calls take a context and retry transient
// failures with exponential backoff.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"github.com/citrinelab/citrine/pkg/errors"
	"github.com/citrinelab/citrine/pkg/log"
)

const (
	defaultTimeout      = 2 * time.Minute
	defaultPollInterval = 5 * time.Second
	defaultPollDeadline = 30 * time.Minute
	defaultMaxElapsed   = 90 * time.Second
	defaultUserAgent    = "citrine-go"

	apiKeyHeader    = "X-API-Key"
	requestIDHeader = "X-Request-Id"
)

// Client talks to one Citrination site.
type Client struct {
	site         string
	apiKey       string
	httpClient   *http.Client
	logger       log.Logger
	userAgent    string
	pollInterval time.Duration
	pollDeadline time.Duration
	maxElapsed   time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithLogger sets the logger used for request and polling records.
func WithLogger(logger log.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithPollInterval sets the interval between polls of long-running jobs.
func WithPollInterval(d time.Duration) Option {
	return func(c *Client) { c.pollInterval = d }
}

// WithPollDeadline caps how long a single job is polled before a
// JobTimeoutError is returned.
func WithPollDeadline(d time.Duration) Option {
	return func(c *Client) { c.pollDeadline = d }
}

// WithRetryBudget caps the total time spent retrying one request.
func WithRetryBudget(d time.Duration) Option {
	return func(c *Client) { c.maxElapsed = d }
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) { c.userAgent = ua }
}

// New creates a client for the given site URL (e.g.
// "https://citrination.com") authenticating with apiKey.
func New(site, apiKey string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(site) == "" {
		return nil, errors.NewValidationError("site", "site URL required", site)
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.NewValidationError("apiKey", "API key required", "")
	}

	c := &Client{
		site:         strings.TrimRight(site, "/"),
		apiKey:       apiKey,
		httpClient:   &http.Client{Timeout: defaultTimeout},
		logger:       log.GetLoggerWithName("client"),
		userAgent:    defaultUserAgent,
		pollInterval: defaultPollInterval,
		pollDeadline: defaultPollDeadline,
		maxElapsed:   defaultMaxElapsed,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Site returns the site URL this client talks to.
func (c *Client) Site() string { return c.site }

// apiBody is the envelope error payloads arrive in.
type apiErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Error   string `json:"error"`
}

// doJSON performs one API call with retries. body is JSON-encoded when
// non-nil; a non-nil out is filled from the response body.
func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrapf(err, "encoding %s %s request", method, path)
		}
	}

	requestID := uuid.NewString()
	logger := c.logger.With(
		log.MethodKey, method,
		log.PathKey, path,
		log.RequestIDKey, requestID,
	)

	attempt := 0
	op := func() error {
		attempt++
		err := c.doOnce(ctx, method, path, requestID, payload, out)
		if err == nil {
			return nil
		}

		var apiErr *errors.APIError
		if errors.As(err, &apiErr) {
			if apiErr.StatusCode == http.StatusTooManyRequests {
				return err // retryable, warned in doOnce
			}
			if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 && apiErr.StatusCode != http.StatusRequestTimeout {
				return backoff.Permanent(err)
			}
		}
		logger.Debug("retrying request", log.AttemptKey, attempt, err)
		return err
	}

	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = c.maxElapsed
	if err := backoff.Retry(op, backoff.WithContext(bo, ctx)); err != nil {
		logger.Error("request failed", err, log.AttemptKey, attempt)
		return err
	}
	return nil
}

// doOnce performs a single HTTP exchange.
func (c *Client) doOnce(ctx context.Context, method, path, requestID string, payload []byte, out any) error {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.site+path, bodyReader)
	if err != nil {
		return errors.Wrapf(err, "building %s %s", method, path)
	}
	req.Header.Set(apiKeyHeader, c.apiKey)
	req.Header.Set(requestIDHeader, requestID)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	c.logger.Debug("api call",
		log.MethodKey, method,
		log.PathKey, path,
		log.StatusCodeKey, resp.StatusCode,
		log.DurationMsKey, time.Since(start).Milliseconds(),
	)

	if resp.StatusCode == http.StatusTooManyRequests {
		retryAfter := parseRetryAfter(resp.Header.Get("Retry-After"))
		errors.Warn(errors.NewRateLimitWarning(method, path, retryAfter, 1))
		return errors.NewAPIError(method, path, resp.StatusCode, "RateLimited", "too many requests", requestID)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var msg apiErrorBody
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
		_ = json.Unmarshal(raw, &msg)
		message := msg.Message
		if message == "" {
			message = msg.Error
		}
		if message == "" {
			message = strings.TrimSpace(string(raw))
		}
		return errors.NewAPIError(method, path, resp.StatusCode, msg.Code, message, requestID)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrapf(err, "decoding %s %s response", method, path)
	}
	return nil
}

func parseRetryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	if secs, err := strconv.Atoi(h); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 0
}

// pollJob calls check every poll interval until it reports done, the
// context ends, or the poll deadline passes. check returns the current
// job status string for logging and error context.
func (c *Client) pollJob(ctx context.Context, kind, id string, check func(ctx context.Context) (done bool, status string, err error)) error {
	logger := c.logger.With(log.JobKindKey, kind, "job.id", id)

	deadline := time.Now().Add(c.pollDeadline)
	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	lastStatus := "unknown"
	polls := 0
	for {
		done, status, err := check(ctx)
		if err != nil {
			return err
		}
		polls++
		if status != "" {
			lastStatus = status
		}
		logger.Debug("poll", log.JobStatusKey, lastStatus, log.PollCountKey, polls)
		if done {
			return nil
		}

		if time.Now().After(deadline) {
			return errors.NewJobTimeoutError(kind, id, lastStatus, c.pollDeadline)
		}

		select {
		case <-ctx.Done():
			return errors.Wrapf(ctx.Err(), "polling %s %s (last status %q)", kind, id, lastStatus)
		case <-ticker.C:
		}
	}
}

// String implements fmt.Stringer without exposing the API key.
func (c *Client) String() string {
	return fmt.Sprintf("client{site: %s}", c.site)
}
