package hnapi

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"unicode/utf8"
)

// ErrTransport matches every *TransportError via errors.Is.
var ErrTransport = errors.New("hnapi: transport failure")

// TransportError is a network fault, a timeout, or a non-2xx status other than 404.
type TransportError struct {
	URL      string
	Attempts int
	// StatusCode is zero for connection-level faults.
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("hnapi: GET %s failed after %d attempt(s): HTTP %d: %s",
			e.URL, e.Attempts, e.StatusCode, bodySnippet(e.Body))
	}
	return fmt.Sprintf("hnapi: GET %s failed after %d attempt(s): %v", e.URL, e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Timeout reports whether the last fault was a timeout.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(e.Err, &ne) && ne.Timeout()
}

// NotFoundError is returned for a 404 or for the API's null payload.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("hnapi: %s %s not found", e.Resource, e.ID)
}

// Violation is a single field-level schema failure.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string { return v.Field + ": " + v.Message }

// ValidationError is returned when a body is not JSON or fails its schema.
type ValidationError struct {
	Resource   string
	Body       []byte
	Violations []Violation
	// Err is the JSON syntax error, if parsing failed.
	Err error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("hnapi: %s response is not valid JSON: %v", e.Resource, e.Err)
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.String()
	}
	return fmt.Sprintf("hnapi: %s failed schema validation: %s", e.Resource, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return e.Err }

// HasViolation reports whether field has at least one violation.
func (e *ValidationError) HasViolation(field string) bool {
	for _, v := range e.Violations {
		if v.Field == field {
			return true
		}
	}
	return false
}

// Fields lists the violated field names in order, without duplicates.
func (e *ValidationError) Fields() []string {
	seen := make(map[string]bool, len(e.Violations))
	out := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if seen[v.Field] {
			continue
		}
		seen[v.Field] = true
		out = append(out, v.Field)
	}
	return out
}

// ArgumentError rejects caller input before any request is made.
type ArgumentError struct {
	Name   string
	Value  any
	Reason string
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("hnapi: invalid %s %v: %s", e.Name, e.Value, e.Reason)
}

func bodySnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		cut := maxLen
		for cut > 0 && !utf8.RuneStart(s[cut]) {
			cut--
		}
		return s[:cut] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
