// Package resilience provides retry with exponential backoff for calls to
// the navigation server.
package resilience

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// RetryPolicy defines the retry behavior for operations.
type RetryPolicy struct {
	// MaxRetries is the maximum number of retry attempts (not including initial call).
	MaxRetries int `json:"maxRetries" yaml:"max_retries"`

	// BaseDelay is the initial delay before the first retry.
	BaseDelay time.Duration `json:"baseDelay" yaml:"base_delay"`

	// MaxDelay is the maximum delay between retries.
	MaxDelay time.Duration `json:"maxDelay" yaml:"max_delay"`

	// UseJitter adds randomness to delays to prevent thundering herd.
	UseJitter bool `json:"useJitter" yaml:"use_jitter"`

	// RetryableErrors is a list of errors that should be retried.
	// If empty, all errors except client errors are retried.
	RetryableErrors []error `json:"-" yaml:"-"`
}

// DefaultRetryPolicy returns the policy used for REST calls: two retries,
// 200ms doubling up to 2s, with jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 2,
		BaseDelay:  200 * time.Millisecond,
		MaxDelay:   2 * time.Second,
		UseJitter:  true,
	}
}

// ClientError is implemented by errors caused by the request itself.
// Such errors are never retried.
type ClientError interface {
	error
	IsClientError() bool
}

// clientError is a plain ClientError.
type clientError struct {
	msg string
}

// NewClientError returns an error that Retry will not retry.
func NewClientError(msg string) ClientError {
	return &clientError{msg: msg}
}

func (e *clientError) Error() string { return "client error: " + e.msg }
func (e *clientError) IsClientError() bool { return true }

// @MX:ANCHOR: [AUTO] Retry wraps every REST call made by the signalk client
// @MX:REASON: [AUTO] all navigation server requests go through this function
// Retry executes the given function with the specified retry policy.
// It returns the error from the last attempt if all retries are exhausted.
func Retry(ctx context.Context, policy RetryPolicy, fn func() error) error {
	var lastErr error

	// Initial attempt plus retries
	maxAttempts := policy.MaxRetries + 1

	for attempt := range maxAttempts {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := fn()
		if err == nil {
			return nil
		}

		lastErr = err

		if !isErrorRetryable(err, policy.RetryableErrors) {
			return err
		}

		// Don't delay after the last attempt
		if attempt < maxAttempts-1 {
			delay := CalculateBackoff(attempt, policy.BaseDelay, policy.MaxDelay, policy.UseJitter)

			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return lastErr
}

// RetryValue is Retry for functions that produce a value.
func RetryValue[T any](ctx context.Context, policy RetryPolicy, fn func() (T, error)) (T, error) {
	var out T
	err := Retry(ctx, policy, func() error {
		v, err := fn()
		if err != nil {
			return err
		}
		out = v
		return nil
	})
	return out, err
}

// CalculateBackoff calculates the backoff delay for a given attempt.
// The delay grows exponentially: baseDelay * 2^attempt, capped at maxDelay.
func CalculateBackoff(attempt int, baseDelay, maxDelay time.Duration, useJitter bool) time.Duration {
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}

	delay := baseDelay
	for range attempt {
		delay *= 2
		if delay > maxDelay {
			delay = maxDelay
			break
		}
	}

	// Jitter scales the delay by a random factor in [0.5, 1.5).
	if useJitter {
		jitterFactor := 0.5 + rand.Float64()
		delay = time.Duration(float64(delay) * jitterFactor)
	}

	if delay > maxDelay {
		delay = maxDelay
	}

	return delay
}

// Backoff tracks consecutive failures of a long-running loop, such as a
// stream reconnect, and yields the delay before the next attempt.
type Backoff struct {
	BaseDelay time.Duration
	MaxDelay  time.Duration
	UseJitter bool

	attempt int
}

// Next returns the delay for the current failure and advances the count.
func (b *Backoff) Next() time.Duration {
	d := CalculateBackoff(b.attempt, b.BaseDelay, b.MaxDelay, b.UseJitter)
	b.attempt++
	return d
}

// Reset clears the failure count after a success.
func (b *Backoff) Reset() {
	b.attempt = 0
}

// Wait sleeps for the next backoff delay or until ctx ends.
func (b *Backoff) Wait(ctx context.Context) error {
	t := time.NewTimer(b.Next())
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// IsRetryableError determines if an error should be retried.
func IsRetryableError(err error) bool {
	return isErrorRetryable(err, nil)
}

// isErrorRetryable checks if the error should be retried based on the policy.
func isErrorRetryable(err error, retryableErrors []error) bool {
	if err == nil {
		return false
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var clientErr ClientError
	if errors.As(err, &clientErr) && clientErr.IsClientError() {
		return false
	}

	if len(retryableErrors) > 0 {
		for _, retryable := range retryableErrors {
			if errors.Is(err, retryable) {
				return true
			}
		}
		return false
	}

	return true
}
