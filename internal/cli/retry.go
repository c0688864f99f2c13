package cli

import (
	"context"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis connection retry policy.
const (
	redisAttempts = 4
	redisDelay    = 250 * time.Millisecond
)

// retryableError marks a failure worth another attempt.
type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }

// retry runs fn up to attempts times, doubling delay after each retryable
// failure. Errors not wrapped in retryableError are returned immediately.
func retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !stderrors.As(err, new(*retryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

// pingRedis waits for Redis to accept connections. A reply from the server
// (wrong password, unknown database) is final.
func pingRedis(ctx context.Context, client redis.Cmdable, attempts int, delay time.Duration) error {
	return retry(ctx, attempts, delay, func() error {
		err := client.Ping(ctx).Err()
		var reply redis.Error
		if err == nil || stderrors.As(err, &reply) {
			return err
		}
		return &retryableError{err: err}
	})
}
