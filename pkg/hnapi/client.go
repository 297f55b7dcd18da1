package hnapi

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samvad-hq/hn-contract-checks/pkg/httpclient"
	"github.com/samvad-hq/hn-contract-checks/pkg/profile"
	"github.com/samvad-hq/hn-contract-checks/pkg/retry"
)

// Response is the raw outcome of a successful GET.
type Response struct {
	URL        string
	StatusCode int
	Header     http.Header
	Body       []byte
	Attempts   int
	Elapsed    time.Duration
}

// ContentType returns the media type of the response without parameters.
func (r *Response) ContentType() string {
	if r == nil || r.Header == nil {
		return ""
	}
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return strings.ToLower(strings.TrimSpace(r.Header.Get("Content-Type")))
	}
	return mt
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	return r.ContentType() == "application/json"
}

// defaultRetryStatuses are the 4xx codes treated as transient alongside 5xx.
var defaultRetryStatuses = []int{http.StatusRequestTimeout, http.StatusTooManyRequests}

// Client performs read-only calls against the HN API. It is safe for
// concurrent use; the only shared state is the transport's connection pool.
type Client struct {
	http          httpclient.Client
	closer        func()
	base          *url.URL
	profile       profile.Profile
	policy        retry.Policy
	retryStatuses map[int]bool
	log           Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the default resty transport. The replacement owns
// retries; the client calls it once per request.
func WithHTTPClient(hc httpclient.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger used for retries and results.
func WithLogger(log Logger) Option {
	return func(c *Client) { c.log = ensureLogger(log) }
}

// WithRetryStatuses overrides which 4xx statuses are retried. 5xx is always retried.
func WithRetryStatuses(codes ...int) Option {
	return func(c *Client) {
		c.retryStatuses = make(map[int]bool, len(codes))
		for _, code := range codes {
			c.retryStatuses[code] = true
		}
	}
}

// New builds a client for the given profile.
func New(p profile.Profile, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(p.BaseURL)
	if err != nil {
		return nil, err
	}

	c := &Client{
		base:    base,
		profile: p,
		policy:  p.RetryPolicy(),
		log:     noopLogger{},
	}
	WithRetryStatuses(defaultRetryStatuses...)(c)
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		rc := httpclient.NewRestyClient(httpclient.Options{
			Timeout:   p.Timeout,
			UserAgent: p.UserAgent,
			Retry: &httpclient.RetryOptions{
				Policy:    c.policy,
				Condition: c.transient,
				OnRetry:   c.logRetry,
			},
		})
		c.http = rc
		c.closer = rc.Close
	}
	return c, nil
}

func parseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("hnapi: base url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("hnapi: parse base url: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("hnapi: base url %q must be an absolute http(s) url", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
		u.RawPath = ""
	}
	return u, nil
}

// Profile returns the profile the client was built from.
func (c *Client) Profile() profile.Profile { return c.profile }

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string { return c.base.String() }

// Close releases pooled connections of the default transport.
func (c *Client) Close() {
	if c != nil && c.closer != nil {
		c.closer()
	}
}

// Raw issues a GET for path (relative to the base URL) under the retry
// contract and returns the response without schema validation.
func (c *Client) Raw(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.do(ctx, "path", path, path, query)
}

func (c *Client) resolve(path string, query url.Values) (string, error) {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return "", err
	}
	if ref.IsAbs() || ref.Host != "" {
		return "", fmt.Errorf("path %q must be relative", path)
	}
	u := c.base.ResolveReference(ref)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String(), nil
}

func (c *Client) transient(status int, err error) bool {
	if err != nil {
		return true
	}
	return status >= http.StatusInternalServerError || c.retryStatuses[status]
}

func (c *Client) logRetry(attempt, status int, err error, wait time.Duration) {
	fields := map[string]any{
		"attempt": attempt,
		"status":  status,
		"wait_ms": wait.Milliseconds(),
	}
	if err != nil {
		fields["error"] = err.Error()
	}
	c.log.WarnObj("hnapi request retry", "retry", fields)
}

func (c *Client) do(ctx context.Context, resource, id, path string, query url.Values) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	target, err := c.resolve(path, query)
	if err != nil {
		return nil, &ArgumentError{Name: "path", Value: path, Reason: err.Error()}
	}
	if err := ctx.Err(); err != nil {
		return nil, &TransportError{URL: target, Err: err}
	}

	start := time.Now()
	r, err := c.http.Get(ctx, target, nil)
	if err != nil {
		te := &TransportError{URL: target, Attempts: 1, Err: err}
		var reqErr *httpclient.RequestError
		if errors.As(err, &reqErr) {
			te.Attempts, te.Err = reqErr.Attempts, reqErr.Err
		}
		return nil, c.fail(te)
	}

	code := r.StatusCode()
	if code == http.StatusNotFound {
		return nil, &NotFoundError{Resource: resource, ID: id}
	}
	if code < 200 || code > 299 {
		return nil, c.fail(&TransportError{
			URL:        target,
			Attempts:   r.Attempts(),
			StatusCode: code,
			Body:       r.Body(),
			Err:        fmt.Errorf("HTTP %d", code),
		})
	}

	out := &Response{
		URL:        target,
		StatusCode: code,
		Header:     r.Header(),
		Body:       r.Body(),
		Attempts:   r.Attempts(),
		Elapsed:    time.Since(start),
	}
	c.log.DebugObj("hnapi request completed", "request", map[string]any{
		"url":        target,
		"status":     out.StatusCode,
		"attempts":   out.Attempts,
		"elapsed_ms": out.Elapsed.Milliseconds(),
	})
	return out, nil
}

func (c *Client) fail(te *TransportError) error {
	c.log.ErrorObj("hnapi request failed", "request_error", map[string]any{
		"url":      te.URL,
		"attempts": te.Attempts,
		"status":   te.StatusCode,
		"error":    te.Err.Error(),
	})
	return te
}
