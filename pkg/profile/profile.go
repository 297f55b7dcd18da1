package profile

import (
	"fmt"
	"strings"
	"time"

	"github.com/samvad-hq/hn-contract-checks/pkg/retry"
)

// Name identifies an environment profile.
type Name string

const (
	Prod  Name = "PROD"
	Stage Name = "STAGE"

	// DefaultName is used when ENV is unset or unrecognized.
	DefaultName = Stage

	hnBaseURL        = "https://hacker-news.firebaseio.com/v0/"
	defaultUserAgent = "hn-contract-checks/1.0"
)

// Profile is the resolved, environment-specific client configuration.
type Profile struct {
	Name       Name
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	Backoff    retry.Strategy
	// BackoffDelay is the fixed delay, or the first delay for exponential backoff.
	BackoffDelay time.Duration
	// MaxBackoffDelay caps exponential backoff and is required for it.
	MaxBackoffDelay time.Duration
	UserAgent       string
}

// RetryPolicy converts the profile into the retry loop policy.
func (p Profile) RetryPolicy() retry.Policy {
	return retry.Policy{
		MaxRetries: p.MaxRetries,
		Strategy:   p.Backoff,
		Delay:      p.BackoffDelay,
		MaxDelay:   p.MaxBackoffDelay,
	}
}

// Set holds profiles keyed by name.
type Set map[Name]Profile

// Defaults returns the built-in PROD and STAGE profiles.
func Defaults() Set {
	return Set{
		Prod: {
			Name:            Prod,
			BaseURL:         hnBaseURL,
			Timeout:         10 * time.Second,
			MaxRetries:      3,
			Backoff:         retry.StrategyExponential,
			BackoffDelay:    300 * time.Millisecond,
			MaxBackoffDelay: 5 * time.Second,
			UserAgent:       defaultUserAgent,
		},
		Stage: {
			Name:            Stage,
			BaseURL:         hnBaseURL,
			Timeout:         15 * time.Second,
			MaxRetries:      5,
			Backoff:         retry.StrategyFixed,
			BackoffDelay:    500 * time.Millisecond,
			MaxBackoffDelay: 5 * time.Second,
			UserAgent:       defaultUserAgent,
		},
	}
}

// ParseName normalizes env into a known profile name.
// ok is false when env is empty or not a recognized profile.
func ParseName(env string) (Name, bool) {
	switch Name(strings.ToUpper(strings.TrimSpace(env))) {
	case Prod:
		return Prod, true
	case Stage:
		return Stage, true
	default:
		return DefaultName, false
	}
}

// Resolve picks the profile for env from set. Unknown or empty env values
// fall back to DefaultName. A nil set means Defaults.
func Resolve(env string, set Set) (Profile, error) {
	if set == nil {
		set = Defaults()
	}
	name, _ := ParseName(env)

	p, ok := set[name]
	if !ok {
		return Profile{}, &ConfigurationError{Name: name, Missing: []string{"profile"}}
	}
	if p.Name == "" {
		p.Name = name
	}
	if p.Backoff == "" {
		p.Backoff = retry.StrategyNone
	}
	if err := validate(p); err != nil {
		return Profile{}, err
	}
	return p, nil
}

func validate(p Profile) error {
	var missing []string
	if strings.TrimSpace(p.BaseURL) == "" {
		missing = append(missing, "base_url")
	}
	if p.Timeout <= 0 {
		missing = append(missing, "timeout")
	}
	if p.MaxRetries < 0 {
		missing = append(missing, "max_retries")
	}
	switch p.Backoff {
	case retry.StrategyNone, retry.StrategyFixed, retry.StrategyExponential:
	default:
		missing = append(missing, "backoff")
	}
	if p.Backoff != retry.StrategyNone && p.BackoffDelay <= 0 {
		missing = append(missing, "backoff_delay")
	}
	if p.Backoff == retry.StrategyExponential && p.MaxBackoffDelay <= 0 {
		missing = append(missing, "max_backoff_delay")
	}
	if len(missing) > 0 {
		return &ConfigurationError{Name: p.Name, Missing: missing}
	}
	return nil
}

// ConfigurationError reports a recognized profile that is incomplete.
type ConfigurationError struct {
	Name    Name
	Missing []string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("profile %s is incomplete: invalid or missing %s", e.Name, strings.Join(e.Missing, ", "))
}
