package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://sentry.io"
	apiPrefix      = "/api/0"
	userAgent      = "issuenav/1.0"
	requestTimeout = 30 * time.Second
)

// Client talks to the issue and saved-search REST endpoints
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string        // Optional: bearer token
	limiter    *rate.Limiter // Optional: client-side request throttle
	logger     *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithLogger enables request logging
func WithLogger(logger *log.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit throttles requests to rps per second with the given burst.
// A non-positive rps disables throttling.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new API client with a 30 second timeout.
// Session cookies are scoped per registrable domain.
func NewClient(baseURL, token string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	hc := &http.Client{Timeout: requestTimeout}
	if jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List}); err == nil {
		hc.Jar = jar
	}

	c := &Client{
		httpClient: hc,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewClientWithLogging creates a client that logs to api.log next to the database
func NewClientWithLogging(baseURL, token, dbPath string, opts ...Option) *Client {
	logFile := filepath.Join(filepath.Dir(dbPath), "api.log")

	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		// Fall back to client without file logging if we can't open the log file
		return NewClient(baseURL, token, opts...)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.RFC3339,
		Prefix:          "API",
	})

	return NewClient(baseURL, token, append(opts, WithLogger(logger))...)
}

// endpoint builds an absolute URL for an API path such as /organizations/acme/issues/
func (c *Client) endpoint(path string, query url.Values) string {
	u := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// do sends one request and decodes a JSON response into out (if non-nil).
// It returns the response headers so callers can read pagination metadata.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) (http.Header, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter: %w", err)
		}
	}

	endpoint := c.endpoint(path, query)

	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Failed to create request", "url", endpoint, "error", err)
		}
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	if c.logger != nil {
		c.logger.Info(method, "endpoint", endpoint)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if c.logger != nil {
			c.logger.Error("Request failed", "url", endpoint, "error", err)
		}
		return nil, fmt.Errorf("failed to %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if c.logger != nil {
		remaining := resp.Header.Get("X-Sentry-Rate-Limit-Remaining")
		reset := resp.Header.Get("X-Sentry-Rate-Limit-Reset")
		c.logger.Debug("Rate limit", "remaining", remaining, "reset", reset, "status", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if c.logger != nil {
			c.logger.Error("API error", "status", resp.StatusCode, "response", string(respBody))
		}
		return nil, newError(resp.StatusCode, respBody)
	}

	if out != nil && len(bytes.TrimSpace(respBody)) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}
	}

	return resp.Header, nil
}

// orgPath builds /organizations/{org}/{rest}
func orgPath(org, rest string) string {
	return "/organizations/" + url.PathEscape(org) + "/" + rest
}
