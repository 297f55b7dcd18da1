package retry

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBackoffStrategies(t *testing.T) {
	fixed := Policy{Strategy: StrategyFixed, Delay: 200 * time.Millisecond}
	assert.Equal(t, 200*time.Millisecond, fixed.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, fixed.Backoff(4))

	exp := Policy{Strategy: StrategyExponential, Delay: 100 * time.Millisecond, MaxDelay: 500 * time.Millisecond}
	assert.Equal(t, 100*time.Millisecond, exp.Backoff(1))
	assert.Equal(t, 200*time.Millisecond, exp.Backoff(2))
	assert.Equal(t, 400*time.Millisecond, exp.Backoff(3))
	assert.Equal(t, 500*time.Millisecond, exp.Backoff(4))
	assert.Equal(t, 500*time.Millisecond, exp.Backoff(30))

	none := Policy{Strategy: StrategyNone, Delay: time.Second}
	assert.Zero(t, none.Backoff(1))
	assert.Zero(t, exp.Backoff(0))
}

func TestUncappedExponentialBackoffSaturates(t *testing.T) {
	p := Policy{Strategy: StrategyExponential, Delay: 300 * time.Millisecond}
	assert.Equal(t, 2400*time.Millisecond, p.Backoff(4))

	prev := p.Backoff(1)
	for attempt := 2; attempt <= 100; attempt++ {
		d := p.Backoff(attempt)
		require.Positive(t, d, "attempt %d", attempt)
		require.GreaterOrEqual(t, d, prev, "attempt %d", attempt)
		prev = d
	}
	assert.Equal(t, time.Duration(math.MaxInt64), p.Backoff(36))
}

func TestMaxBackoff(t *testing.T) {
	exp := Policy{MaxRetries: 5, Strategy: StrategyExponential, Delay: 100 * time.Millisecond, MaxDelay: 300 * time.Millisecond}
	assert.Equal(t, 300*time.Millisecond, exp.MaxBackoff())

	exp.MaxRetries = 2
	assert.Equal(t, 200*time.Millisecond, exp.MaxBackoff())

	fixed := Policy{MaxRetries: 3, Strategy: StrategyFixed, Delay: 50 * time.Millisecond}
	assert.Equal(t, 50*time.Millisecond, fixed.MaxBackoff())

	assert.Zero(t, Policy{MaxRetries: 3, Strategy: StrategyNone}.MaxBackoff())
	assert.Zero(t, Policy{Strategy: StrategyFixed, Delay: time.Second}.MaxBackoff())
}

func TestParseStrategy(t *testing.T) {
	s, err := ParseStrategy(" Exponential ")
	require.NoError(t, err)
	assert.Equal(t, StrategyExponential, s)

	s, err = ParseStrategy("")
	require.NoError(t, err)
	assert.Equal(t, StrategyNone, s)

	_, err = ParseStrategy("linear")
	assert.Error(t, err)
}
