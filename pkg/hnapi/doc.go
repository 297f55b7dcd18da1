// Package hnapi is a read-only client for the Hacker News API.
//
// Every call resolves a relative path against the profile base URL, applies
// the profile timeout and retry policy, and validates the JSON body against
// an explicit schema. Failures come back as *TransportError, *NotFoundError,
// *ValidationError or *ArgumentError.
package hnapi
