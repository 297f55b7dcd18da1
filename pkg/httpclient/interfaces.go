package httpclient

import (
	"context"
	"fmt"
	"net/http"
)

// Response is a minimal HTTP response contract.
type Response interface {
	Body() []byte
	StatusCode() int
	Header() http.Header
	// Attempts is how many requests were sent to produce this response.
	Attempts() int
}

// Client abstracts HTTP calls so callers can inject fakes or different transports.
// Implementations own their retry behaviour.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}

// ClientFunc adapts a plain function to Client.
type ClientFunc func(ctx context.Context, url string, headers map[string]string) (Response, error)

func (f ClientFunc) Get(ctx context.Context, url string, headers map[string]string) (Response, error) {
	return f(ctx, url, headers)
}

// RequestError is returned when no usable response arrived.
type RequestError struct {
	Attempts int
	Err      error
}

func (e *RequestError) Error() string {
	return fmt.Sprintf("request failed after %d attempt(s): %v", e.Attempts, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

// StaticResponse is a fixed Response, handy for fakes.
type StaticResponse struct {
	Status  int
	Payload []byte
	Headers http.Header
	Tries   int
}

func (r StaticResponse) Body() []byte    { return r.Payload }
func (r StaticResponse) StatusCode() int { return r.Status }
func (r StaticResponse) Header() http.Header {
	if r.Headers == nil {
		return http.Header{}
	}
	return r.Headers
}

func (r StaticResponse) Attempts() int {
	if r.Tries < 1 {
		return 1
	}
	return r.Tries
}
