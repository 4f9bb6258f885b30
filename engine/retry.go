package engine

import (
	"time"

	"github.com/hupe1980/agentcell/core"
)

// BackoffCap is the hard ceiling on the delay between retry attempts.
const BackoffCap = 30 * time.Second

// RetryPolicy controls how failed executions are re-attempted. Only
// execution and timeout failures are retried; validation and config
// failures surface immediately.
type RetryPolicy struct {
	// MaxRetries is the number of re-attempts after the first failure.
	MaxRetries int
	// InitialBackoff is the delay before the first retry.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts. Values above BackoffCap
	// (or zero) are clamped to BackoffCap.
	MaxBackoff time.Duration
}

// ShouldRetry reports whether a failure of the given kind is retryable
// under this policy.
func (p RetryPolicy) ShouldRetry(kind core.ErrorKind) bool {
	return p.MaxRetries > 0 && kind.Retryable()
}

// Delay returns the backoff before re-attempting after the given
// zero-based attempt: min(initial * 2^attempt, cap). The sequence is
// strictly non-decreasing.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	limit := p.MaxBackoff
	if limit <= 0 || limit > BackoffCap {
		limit = BackoffCap
	}
	if p.InitialBackoff <= 0 {
		return 0
	}
	if attempt < 0 {
		attempt = 0
	}

	delay := p.InitialBackoff
	for i := 0; i < attempt; i++ {
		delay *= 2
		if delay >= limit || delay < 0 { // doubling overflowed
			return limit
		}
	}
	if delay > limit {
		return limit
	}
	return delay
}
