package httpclient

import (
	"context"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/samvad-hq/hn-contract-checks/pkg/retry"
)

// Options controls the underlying resty client.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// Retry enables resty's retry loop. Nil sends each request once.
	Retry *RetryOptions
}

// RetryOptions maps a retry.Policy onto resty's retry loop.
type RetryOptions struct {
	Policy retry.Policy
	// Condition reports whether an attempt should be retried. Status is 0
	// when no response arrived. Defaults to any error or a 5xx status.
	Condition func(status int, err error) bool
	// OnRetry runs before waiting ahead of the next attempt.
	OnRetry func(attempt, status int, err error, wait time.Duration)
}

// RestyClient adapts resty.Client to the httpclient.Client interface.
type RestyClient struct {
	client *resty.Client
}

// NewRestyClient creates a new RestyClient with the given options.
func NewRestyClient(opts Options) *RestyClient {
	return &RestyClient{client: newRestyBaseClient(opts)}
}

func newRestyBaseClient(opts Options) *resty.Client {
	c := resty.New()
	c.SetLogger(discardLogger{})
	c.SetTimeout(opts.Timeout)
	c.SetHeader("Accept", "application/json")
	if opts.UserAgent != "" {
		c.SetHeader("User-Agent", opts.UserAgent)
	}
	configureRetry(c, opts.Retry)
	return c
}

func configureRetry(c *resty.Client, ro *RetryOptions) {
	if ro == nil || ro.Policy.MaxRetries <= 0 {
		c.SetRetryCount(0)
		return
	}
	p := ro.Policy
	cond := ro.Condition
	if cond == nil {
		cond = func(status int, err error) bool { return err != nil || status >= http.StatusInternalServerError }
	}

	c.SetRetryCount(p.MaxRetries)
	// resty clamps every wait into [RetryWaitTime, RetryMaxWaitTime].
	c.SetRetryWaitTime(0)
	c.SetRetryMaxWaitTime(p.MaxBackoff())
	c.SetRetryAfter(func(_ *resty.Client, resp *resty.Response) (time.Duration, error) {
		return p.Backoff(resp.Request.Attempt), nil
	})
	c.AddRetryCondition(func(resp *resty.Response, err error) bool {
		return cond(statusOf(resp), err)
	})
	if ro.OnRetry != nil {
		c.AddRetryHook(func(resp *resty.Response, err error) {
			attempt := attemptsOf(resp)
			// Hooks also fire after the final attempt.
			if attempt > p.MaxRetries {
				return
			}
			ro.OnRetry(attempt, statusOf(resp), err, p.Backoff(attempt))
		})
	}
}

// Get performs an HTTP GET request with the specified context, URL, and headers.
func (r *RestyClient) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	req := r.client.R().SetContext(ctx)
	if len(headers) > 0 {
		req.SetHeaders(headers)
	}
	resp, err := req.Get(url)
	if err != nil {
		return nil, &RequestError{Attempts: attemptsOf(resp), Err: err}
	}
	return &restyResponseAdapter{resp: resp}, nil
}

// Close releases idle connections held by the pool.
func (r *RestyClient) Close() {
	if r == nil || r.client == nil {
		return
	}
	r.client.GetClient().CloseIdleConnections()
}

func statusOf(resp *resty.Response) int {
	if resp == nil {
		return 0
	}
	return resp.StatusCode()
}

func attemptsOf(resp *resty.Response) int {
	if resp == nil || resp.Request == nil || resp.Request.Attempt < 1 {
		return 1
	}
	return resp.Request.Attempt
}

// restyResponseAdapter adapts resty.Response to the httpclient.Response interface.
type restyResponseAdapter struct {
	resp *resty.Response
}

func (r *restyResponseAdapter) Body() []byte        { return r.resp.Body() }
func (r *restyResponseAdapter) StatusCode() int     { return r.resp.StatusCode() }
func (r *restyResponseAdapter) Header() http.Header { return r.resp.Header() }
func (r *restyResponseAdapter) Attempts() int       { return attemptsOf(r.resp) }

// discardLogger silences resty; callers log retries through OnRetry.
type discardLogger struct{}

func (discardLogger) Errorf(string, ...interface{}) {}
func (discardLogger) Warnf(string, ...interface{})  {}
func (discardLogger) Debugf(string, ...interface{}) {}
