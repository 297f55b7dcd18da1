// Package retry describes how requests are retried: how many times and how
// long to wait between attempts. The loop itself is run by the HTTP client.
package retry

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// Strategy selects how the delay between attempts grows.
type Strategy string

const (
	StrategyNone        Strategy = "none"
	StrategyFixed       Strategy = "fixed"
	StrategyExponential Strategy = "exponential"
)

// ParseStrategy maps a config string to a Strategy. Empty means none.
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "", StrategyNone:
		return StrategyNone, nil
	case StrategyFixed:
		return StrategyFixed, nil
	case StrategyExponential:
		return StrategyExponential, nil
	default:
		return "", fmt.Errorf("unknown backoff strategy %q", s)
	}
}

// Policy configures retries.
type Policy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	Strategy   Strategy
	// Delay is the constant delay for fixed and the first delay for exponential.
	Delay time.Duration
	// MaxDelay caps exponential growth. Zero means no cap.
	MaxDelay time.Duration
}

// Backoff returns the delay to wait after the given failed attempt (1-based).
func (p Policy) Backoff(attempt int) time.Duration {
	if attempt < 1 || p.Delay <= 0 {
		return 0
	}
	switch p.Strategy {
	case StrategyFixed:
		return p.Delay
	case StrategyExponential:
		limit := p.MaxDelay
		if limit <= 0 {
			limit = math.MaxInt64
		}
		d := p.Delay
		for i := 1; i < attempt && d < limit; i++ {
			if d > math.MaxInt64/2 {
				return limit
			}
			d *= 2
		}
		if d > limit {
			return limit
		}
		return d
	default:
		return 0
	}
}

// MaxBackoff is the longest delay the policy can ask for.
func (p Policy) MaxBackoff() time.Duration {
	var longest time.Duration
	for attempt := 1; attempt <= p.MaxRetries; attempt++ {
		d := p.Backoff(attempt)
		if d > longest {
			longest = d
		}
		if p.Strategy != StrategyExponential || (p.MaxDelay > 0 && d == p.MaxDelay) {
			break
		}
	}
	return longest
}
