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
	"fmt"
	"log/slog"
	"time"

	"github.com/poiesic/ragbot/core"
)

// RetryingEmbedder retries rate-limited embedding calls with exponential backoff.
// Every other failure is returned after a single attempt.
type RetryingEmbedder struct {
	inner   Embedder
	retrier Retrier
	logger  *slog.Logger
}

var _ Embedder = (*RetryingEmbedder)(nil)

// RetryOption configures a RetryingEmbedder.
type RetryOption func(*RetryingEmbedder)

// WithSleep replaces the wait between attempts. Tests use it to record delays.
func WithSleep(sleep SleepFunc) RetryOption {
	return func(e *RetryingEmbedder) {
		e.retrier.Sleep = sleep
	}
}

// WithRetryHook registers a callback invoked before each backoff wait.
func WithRetryHook(hook func(attempt int, delay time.Duration, err error)) RetryOption {
	return func(e *RetryingEmbedder) {
		e.retrier.OnRetry = hook
	}
}

// WithRetryLogger sets a custom logger.
func WithRetryLogger(logger *slog.Logger) RetryOption {
	return func(e *RetryingEmbedder) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewRetryingEmbedder wraps inner with a rate-limit retry policy.
func NewRetryingEmbedder(inner Embedder, maxAttempts int, baseDelay time.Duration, opts ...RetryOption) *RetryingEmbedder {
	e := &RetryingEmbedder{
		inner: inner,
		retrier: Retrier{
			MaxAttempts: maxAttempts,
			BaseDelay:   baseDelay,
			Retryable:   IsRateLimited,
		},
		logger: slog.Default().With("component", "retrying-embedder"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// EmbedText embeds text, retrying while the provider reports rate limiting.
// A successful response without a vector is a terminal ErrEmbeddingFailed.
func (e *RetryingEmbedder) EmbedText(ctx context.Context, text string, task TaskType) ([]float32, error) {
	var vector []float32
	attempts := 0

	err := e.retrier.Do(ctx, func() error {
		attempts++
		v, err := e.inner.EmbedText(ctx, text, task)
		if err != nil {
			return err
		}
		if len(v) == 0 {
			return fmt.Errorf("%w: empty embedding in response", core.ErrEmbeddingFailed)
		}
		vector = v
		return nil
	})
	if err != nil {
		e.logger.Warn("embedding failed", "task", task.String(), "attempts", attempts, "err", err)
		return nil, fmt.Errorf("embed after %d attempt(s): %w", attempts, err)
	}
	return vector, nil
}
