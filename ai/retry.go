// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package ai

import (
	"context"
	"log/slog"
	"time"
)

// maxBackoffShift keeps base << attempt from overflowing time.Duration.
const maxBackoffShift = 30

// Backoff returns the delay to wait after failed attempt number attempt (0-based):
// base * 2^attempt.
func Backoff(base time.Duration, attempt int) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxBackoffShift {
		attempt = maxBackoffShift
	}
	return base * time.Duration(int64(1)<<attempt)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Sleep is the default SleepFunc backed by a timer.
func Sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	select {
	case <-ctx.Done():
		timer.Stop()
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Retrier runs an operation with exponential backoff.
type Retrier struct {
	// MaxAttempts is the total number of attempts, including the first (must be > 0).
	MaxAttempts int
	// BaseDelay is the wait after the first failure; it doubles on each retry.
	BaseDelay time.Duration
	// Retryable decides whether a failure is worth another attempt.
	// Nil retries every error.
	Retryable func(error) bool
	// Sleep waits between attempts. Nil uses Sleep.
	Sleep SleepFunc
	// OnRetry is called before each wait, with the 0-based failed attempt.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// Do calls operation until it succeeds, fails with a non-retryable error,
// or MaxAttempts attempts have been made. No wait follows the last attempt.
// Returns the error from the last attempt.
func (r Retrier) Do(ctx context.Context, operation func() error) error {
	if r.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	sleep := r.Sleep
	if sleep == nil {
		sleep = Sleep
	}

	var lastErr error
	for attempt := 0; attempt < r.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		lastErr = operation()
		if lastErr == nil {
			if attempt > 0 {
				slog.Debug("operation succeeded after retry", "attempt", attempt+1)
			}
			return nil
		}

		if r.Retryable != nil && !r.Retryable(lastErr) {
			return lastErr
		}

		if attempt == r.MaxAttempts-1 {
			break
		}

		delay := Backoff(r.BaseDelay, attempt)
		slog.Debug("operation failed, will retry",
			"attempt", attempt+1,
			"maxAttempts", r.MaxAttempts,
			"delay", delay,
			"error", lastErr)
		if r.OnRetry != nil {
			r.OnRetry(attempt, delay, lastErr)
		}

		if err := sleep(ctx, delay); err != nil {
			return err
		}
	}

	return lastErr
}

// RetryWithBackoff retries operation with exponential backoff while retryable
// reports true for its error. A nil retryable retries every error.
func RetryWithBackoff(ctx context.Context, operation func() error, maxAttempts int, baseDelay time.Duration, retryable func(error) bool) error {
	return Retrier{
		MaxAttempts: maxAttempts,
		BaseDelay:   baseDelay,
		Retryable:   retryable,
	}.Do(ctx, operation)
}
