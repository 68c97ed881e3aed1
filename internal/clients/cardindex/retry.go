package cardindex

import (
	"context"
	"math"
	"math/rand"
	"time"
)

// RetryConfig controls the backoff loop around upstream calls.
type RetryConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
	Jitter            float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries:        3,
		InitialBackoff:    100 * time.Millisecond,
		MaxBackoff:        10 * time.Second,
		BackoffMultiplier: 2.0,
		Jitter:            0.1,
	}
}

// withRetry runs op, retrying only errors the classifier marks
// retryable (network failures, 429s, 5xx).
func (c *client) withRetry(ctx context.Context, op func() error) error {
	var lastErr error

	for attempt := 0; attempt <= c.retry.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := c.calculateBackoff(attempt)
			c.log.Debug("retrying card-index request",
				"attempt", attempt,
				"backoff", backoff.String(),
				"error", lastErr.Error())
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
		}

		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if ctx.Err() != nil {
			return lastErr
		}
		if !c.classifier.Classify(lastErr, "cardindex").Retryable {
			return lastErr
		}
	}

	return lastErr
}

func (c *client) calculateBackoff(attempt int) time.Duration {
	backoff := float64(c.retry.InitialBackoff) * math.Pow(c.retry.BackoffMultiplier, float64(attempt-1))
	if backoff > float64(c.retry.MaxBackoff) {
		backoff = float64(c.retry.MaxBackoff)
	}
	if c.retry.Jitter > 0 {
		backoff += backoff * c.retry.Jitter * (rand.Float64()*2 - 1)
	}
	return time.Duration(backoff)
}
