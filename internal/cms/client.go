// Package cms is a client for the WordPress REST API that backs the site:
// the "rooms" custom post type with its ACF fields, media items and posts.
package cms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/roomandroom/roomandroom-server/internal/ratelimit"
	"github.com/roomandroom/roomandroom-server/internal/validation"
)

const (
	// DefaultBaseURL is the production WordPress REST root.
	DefaultBaseURL = "https://cms.roomandroom.org/w/wp-json/wp/v2"

	// DefaultUserAgent is a browser agent; the WordPress host rejects unknown ones.
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"

	defaultTimeout   = 15 * time.Second
	defaultRetries   = 2
	defaultRetryWait = 500 * time.Millisecond
	defaultRPS       = 5.0
	defaultBurst     = 10

	// perPage is the WordPress maximum.
	perPage  = 100
	maxPages = 50
)

// Config controls the client. Zero values fall back to defaults.
type Config struct {
	BaseURL   string
	UserAgent string
	Timeout   time.Duration
	Retries   int
	RetryWait time.Duration
	RPS       float64
	Burst     int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	if c.Retries < 0 {
		c.Retries = 0
	}
	if c.RetryWait <= 0 {
		c.RetryWait = defaultRetryWait
	}
	if c.RPS <= 0 {
		c.RPS = defaultRPS
	}
	if c.Burst <= 0 {
		c.Burst = defaultBurst
	}
	return c
}

// DefaultConfig returns the production settings.
func DefaultConfig() Config {
	return Config{Retries: defaultRetries}.withDefaults()
}

// Client is a rate-limited WordPress REST client.
type Client struct {
	http      *resty.Client
	limiter   *ratelimit.KeyedRateLimiter
	validator *validation.Validator
	logger    *slog.Logger
	host      string
}

// New creates a client.
func New(cfg Config, logger *slog.Logger) *Client {
	cfg = cfg.withDefaults()

	host := cfg.BaseURL
	if u, err := url.Parse(cfg.BaseURL); err == nil && u.Host != "" {
		host = u.Host
	}

	r := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(10*cfg.RetryWait).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", cfg.UserAgent).
		AddRetryCondition(shouldRetry)

	return &Client{
		http:      r,
		limiter:   ratelimit.New(cfg.RPS, cfg.Burst),
		validator: validation.New(),
		logger:    logger,
		host:      host,
	}
}

// Close releases resources held by the client.
func (c *Client) Close() {
	c.limiter.Stop()
}

// Shutdown lets the DI container close the client.
func (c *Client) Shutdown() error {
	c.Close()
	return nil
}

// shouldRetry retries transport failures, throttling and server errors, but
// never a caller's cancellation.
func shouldRetry(resp *resty.Response, err error) bool {
	if err != nil {
		return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
	}
	if resp == nil {
		return false
	}
	code := resp.StatusCode()
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

// get performs a rate-limited GET and returns the body of a 200 response.
func (c *Client) get(ctx context.Context, path string, query url.Values) ([]byte, http.Header, error) {
	if err := c.limiter.Wait(ctx, c.host); err != nil {
		return nil, nil, fmt.Errorf("rate limit wait: %w", err)
	}

	c.logger.Debug("cms request",
		"path", path,
		"query", query.Encode(),
	)

	start := time.Now()
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParamsFromValues(query).
		Get(path)
	if err != nil {
		return nil, nil, fmt.Errorf("execute request: %w", err)
	}

	c.logger.Debug("cms response",
		"path", path,
		"status", resp.StatusCode(),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
		return resp.Body(), resp.Header(), nil
	case code == http.StatusNotFound:
		return nil, nil, ErrNotFound
	case code == http.StatusTooManyRequests:
		return nil, nil, ErrRateLimited
	case code >= http.StatusInternalServerError:
		return nil, nil, ErrServer
	case code == http.StatusBadRequest && pageOutOfRange(wpErrorCode(resp.Body())):
		// WordPress answers an out of range page with 400.
		return nil, nil, ErrNotFound
	default:
		return nil, nil, fmt.Errorf("%w: status %d", ErrBadResponse, code)
	}
}

// getJSON performs get and decodes the body into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	body, header, err := c.get(ctx, path, query)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return nil, fmt.Errorf("%w: parse response: %v", ErrBadResponse, err)
	}
	return header, nil
}

// paginate fetches every page of a collection endpoint, calling decode with
// each page body. It follows X-WP-TotalPages and stops at maxPages.
func (c *Client) paginate(ctx context.Context, path string, query url.Values, decode func([]byte) error) error {
	for page := 1; page <= maxPages; page++ {
		q := cloneValues(query)
		q.Set("per_page", strconv.Itoa(perPage))
		q.Set("page", strconv.Itoa(page))

		body, header, err := c.get(ctx, path, q)
		if err != nil {
			if page > 1 && errors.Is(err, ErrNotFound) {
				return nil
			}
			return err
		}
		if err := decode(body); err != nil {
			return fmt.Errorf("%w: page %d: %v", ErrBadResponse, page, err)
		}

		total, convErr := strconv.Atoi(header.Get("X-WP-TotalPages"))
		if convErr != nil || page >= total {
			return nil
		}
	}
	c.logger.Warn("cms pagination stopped at page limit", "path", path, "limit", maxPages)
	return nil
}

func pageOutOfRange(wpCode string) bool {
	return wpCode == "rest_post_invalid_page_number" || wpCode == "rest_invalid_param"
}

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v)+2)
	for k, vals := range v {
		out[k] = append([]string(nil), vals...)
	}
	return out
}

// wpErrorCode extracts the code of a WordPress error body.
func wpErrorCode(body []byte) string {
	var e struct {
		Code string `json:"code"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Code
}

// rendered is the WordPress {"rendered": "..."} wrapper.
type rendered struct {
	Rendered string `json:"rendered"`
}
