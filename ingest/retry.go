// Copyright 2025 Tessella Systems
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


package ingest

import (
	"context"
	"log/slog"
	"time"
)

// Retrier runs an operation with bounded exponential backoff.
// AttemptTimeout, when positive, bounds every attempt with its own child
// context, so a hung or slow call fails that attempt and is retried
// instead of consuming the whole run.
type Retrier struct {
	// MaxAttempts is the maximum number of attempts (must be > 0).
	MaxAttempts int

	// BaseDelay is the delay before the second attempt; it doubles on
	// each subsequent retry.
	BaseDelay time.Duration

	// AttemptTimeout bounds a single attempt. Zero disables it.
	AttemptTimeout time.Duration

	// Logger receives per-attempt debug logs. Nil falls back to
	// slog.Default().
	Logger *slog.Logger
}

// Do invokes operation until it succeeds or MaxAttempts is exhausted.
// It returns the number of attempts actually made alongside the error
// from the last attempt. Cancelling the parent context stops the loop;
// an expired attempt context only fails that attempt.
func (r Retrier) Do(ctx context.Context, operation func(ctx context.Context) error) (int, error) {
	if r.MaxAttempts <= 0 {
		return 0, ErrInvalidMaxAttempts
	}

	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var lastErr error
	for attempt := 1; ; attempt++ {
		select {
		case <-ctx.Done():
			return attempt - 1, ctx.Err()
		default:
		}

		lastErr = r.attempt(ctx, operation)
		if lastErr == nil {
			if attempt > 1 {
				logger.Debug("operation succeeded after retry", "attempt", attempt)
			}
			return attempt, nil
		}

		if attempt == r.MaxAttempts {
			return attempt, lastErr
		}

		logger.Debug("operation failed, will retry",
			"attempt", attempt,
			"maxAttempts", r.MaxAttempts,
			"error", lastErr)

		// Exponential backoff: BaseDelay * 2^(attempt-1)
		timer := time.NewTimer(r.BaseDelay << (attempt - 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return attempt, ctx.Err()
		case <-timer.C:
		}
	}
}

func (r Retrier) attempt(ctx context.Context, operation func(ctx context.Context) error) error {
	if r.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.AttemptTimeout)
		defer cancel()
	}
	return operation(ctx)
}
