// Package transport issues authenticated JSON requests against the chat
// backend. Success is defined per call by the expected status code a caller
// declares; every other completed response is surfaced as a StatusError and
// never silently treated as success.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/PeterJohnBishop/go-chat-cli/internal/apperrors"
	"github.com/PeterJohnBishop/go-chat-cli/internal/logger"
	"github.com/PeterJohnBishop/go-chat-cli/internal/metrics"
)

// maxBodyBytes caps how much of a reply is read into memory.
const maxBodyBytes = 1 << 20 // 1 MB

// TokenSource supplies the bearer token for privileged requests. The session
// store satisfies this.
type TokenSource interface {
	Token(ctx context.Context) (string, bool, error)
}

// Doer executes one request against the backend. Implemented by Client and
// by the circuit-breaker wrapper.
type Doer interface {
	Do(ctx context.Context, req Request) ([]byte, error)
}

// Config holds transport configuration.
type Config struct {
	BaseURL      string
	Timeout      time.Duration
	MaxRetries   int
	RetryWaitMin time.Duration
	RetryWaitMax time.Duration
}

// DefaultConfig returns sensible defaults for the given base URL.
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:      baseURL,
		Timeout:      30 * time.Second,
		MaxRetries:   3,
		RetryWaitMin: time.Second,
		RetryWaitMax: 5 * time.Second,
	}
}

// Request describes a single call to the chat backend.
type Request struct {
	Method string
	Path   string
	// Route is the path pattern used as the metrics label (for example
	// "/users/id/{id}"). Defaults to Path when empty.
	Route string
	// Body is marshaled as JSON when non-nil.
	Body any
	// RequireAuth attaches the bearer token; if no token is stored the
	// request fails before any network I/O.
	RequireAuth bool
	// ExpectStatus is the one status code that counts as success.
	ExpectStatus int
}

func (r Request) route() string {
	if r.Route != "" {
		return r.Route
	}
	return r.Path
}

// Client is the HTTP adapter for the chat backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *slog.Logger
	config     Config
}

// New creates a transport client. The base URL is taken from cfg with any
// trailing slash removed.
func New(cfg Config, tokens TokenSource, log *slog.Logger) *Client {
	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   cfg.Timeout,
		},
		tokens: tokens,
		logger: log,
		config: cfg,
	}
}

// Do executes the request and returns the raw response body on success.
// Idempotent requests (anything but POST) are retried on transport errors
// and 5xx replies with capped exponential backoff; POSTs are never retried
// so a chat or user can not be created twice by this layer.
func (c *Client) Do(ctx context.Context, req Request) ([]byte, error) {
	var bearer string
	if req.RequireAuth {
		token, ok, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("load auth token: %w", err)
		}
		if !ok {
			return nil, apperrors.MissingCredential(req.Method + " " + req.Path)
		}
		bearer = token
	}

	var bodyBytes []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		bodyBytes = b
	}

	correlationID := logger.CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.NewString()
		ctx = logger.WithCorrelationID(ctx, correlationID)
	}
	log := logger.WithContext(ctx, c.logger)

	retries := c.config.MaxRetries
	if req.Method == http.MethodPost {
		retries = 0
	}

	start := time.Now()
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		if attempt > 0 {
			wait := c.config.RetryWaitMin * time.Duration(1<<uint(attempt-1))
			if wait > c.config.RetryWaitMax {
				wait = c.config.RetryWaitMax
			}
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, c.fail(req, fmt.Errorf("%w: %w", apperrors.ErrTransport, ctx.Err()))
			}
			metrics.RetriesTotal.Inc()
			log.Warn("retrying request",
				slog.String("method", req.Method),
				slog.String("path", req.Path),
				slog.Int("attempt", attempt),
			)
		}

		body, status, err := c.once(ctx, req, bearer, bodyBytes, correlationID)
		if err != nil {
			lastErr = err
			if isRetryable(err) && attempt < retries {
				continue
			}
			return nil, c.fail(req, fmt.Errorf("%w: %w", apperrors.ErrTransport, err))
		}

		if status != req.ExpectStatus {
			if status >= 500 && attempt < retries {
				lastErr = &StatusError{Code: status, Body: body}
				continue
			}
			c.observe(req, outcomeForStatus(status), start)
			log.Debug("unexpected status",
				slog.String("method", req.Method),
				slog.String("path", req.Path),
				slog.Int("status", status),
				slog.Int("expected", req.ExpectStatus),
			)
			return nil, &StatusError{Code: status, Body: body}
		}

		c.observe(req, outcomeForStatus(status), start)
		return body, nil
	}

	return nil, c.fail(req, fmt.Errorf("request failed after %d attempts: %w", retries+1, lastErr))
}

// once performs a single HTTP round trip.
func (c *Client) once(ctx context.Context, req Request, bearer string, body []byte, correlationID string) ([]byte, int, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, c.baseURL+req.Path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Correlation-ID", correlationID)
	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, 0, fmt.Errorf("read response body: %w", err)
	}
	return respBody, resp.StatusCode, nil
}

func (c *Client) fail(req Request, err error) error {
	metrics.RequestsTotal.WithLabelValues(req.Method, req.route(), "error").Inc()
	return err
}

func (c *Client) observe(req Request, outcome string, start time.Time) {
	metrics.RequestsTotal.WithLabelValues(req.Method, req.route(), outcome).Inc()
	metrics.RequestDuration.WithLabelValues(req.Method, req.route()).Observe(time.Since(start).Seconds())
}

func outcomeForStatus(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	default:
		return "2xx"
	}
}

// isRetryable determines if a round-trip error is worth another attempt.
func isRetryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
