package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/agentcell/core"
)

func TestRetryPolicy_DelayDoublesUpToCap(t *testing.T) {
	p := RetryPolicy{MaxRetries: 10, InitialBackoff: 100 * time.Millisecond, MaxBackoff: 500 * time.Millisecond}

	assert.Equal(t, 100*time.Millisecond, p.Delay(0))
	assert.Equal(t, 200*time.Millisecond, p.Delay(1))
	assert.Equal(t, 400*time.Millisecond, p.Delay(2))
	assert.Equal(t, 500*time.Millisecond, p.Delay(3))
	assert.Equal(t, 500*time.Millisecond, p.Delay(10))
}

func TestRetryPolicy_DelayNonDecreasing(t *testing.T) {
	p := RetryPolicy{MaxRetries: 100, InitialBackoff: time.Millisecond}

	prev := time.Duration(0)
	for i := 0; i < 100; i++ {
		d := p.Delay(i)
		assert.GreaterOrEqual(t, d, prev)
		assert.LessOrEqual(t, d, BackoffCap)
		prev = d
	}
}

func TestRetryPolicy_HardCapApplies(t *testing.T) {
	// A configured cap above the hard ceiling is clamped.
	p := RetryPolicy{MaxRetries: 64, InitialBackoff: time.Second, MaxBackoff: 10 * time.Minute}

	assert.Equal(t, BackoffCap, p.Delay(63))
}

func TestRetryPolicy_ZeroInitialMeansNoDelay(t *testing.T) {
	p := RetryPolicy{MaxRetries: 3}

	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, time.Duration(0), p.Delay(5))
}

func TestRetryPolicy_ShouldRetry(t *testing.T) {
	p := RetryPolicy{MaxRetries: 1}

	assert.True(t, p.ShouldRetry(core.KindExecution))
	assert.True(t, p.ShouldRetry(core.KindTimeout))
	assert.False(t, p.ShouldRetry(core.KindValidation))
	assert.False(t, p.ShouldRetry(core.KindConfig))
	assert.False(t, p.ShouldRetry(core.KindCompensation))
	assert.False(t, p.ShouldRetry(core.KindDirective))

	none := RetryPolicy{}
	assert.False(t, none.ShouldRetry(core.KindExecution))
}
