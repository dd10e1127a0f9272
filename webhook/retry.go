package webhook

import (
	"fmt"
	"time"
)

/* RetryPolicy decides attempt limits and the backoff schedule
 * Exponential backoff: BaseDelay * 2^(attempt-1). The attempt passed in is
 * the number of attempts made so far, so the first retry waits BaseDelay.
 */
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// DefaultRetryPolicy retries up to 5 attempts starting at a 30s delay
// (30s, 1m, 2m, 4m between attempts)
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   30 * time.Second,
	}
}

// Validate checks the policy is finite and usable
func (p RetryPolicy) Validate() error {
	if p.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", p.MaxAttempts)
	}
	if p.BaseDelay <= 0 {
		return fmt.Errorf("base delay must be positive, got %s", p.BaseDelay)
	}
	return nil
}

// Exhausted reports whether a failure at the given attempt is terminal
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}

// Delay returns how long to wait after the given failed attempt
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}
	return delay
}

// NextRetryAt computes the timestamp of the next attempt after a failure
// at the given attempt number
func (p RetryPolicy) NextRetryAt(attempt int, now time.Time) time.Time {
	return now.Add(p.Delay(attempt))
}
