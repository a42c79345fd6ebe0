// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package ceremony

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// DefaultTimeout bounds a ceremony when no timeout is configured.
const DefaultTimeout = 60 * time.Second

// Run executes one interactive ceremony step with a bounded timeout.
//
// The step runs in its own goroutine so that an authenticator ignoring ctx
// still cannot block the caller past the deadline. The outcome is
// classified:
//   - a step error matching ErrCeremonyCancelled is returned as is;
//   - the deadline passing yields ErrCeremonyTimeout;
//   - the parent ctx being cancelled yields ErrCeremonyCancelled;
//   - any other step error is wrapped in ErrCeremonyFailed.
func Run[T any](ctx context.Context, timeout time.Duration, step func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		val T
		err error
	}
	done := make(chan result, 1)

	go func() {
		v, err := step(stepCtx)
		done <- result{val: v, err: err}
	}()

	var zero T
	select {
	case r := <-done:
		if r.err == nil {
			return r.val, nil
		}
		return zero, classify(ctx, stepCtx, r.err)
	case <-stepCtx.Done():
		return zero, classify(ctx, stepCtx, stepCtx.Err())
	}
}

func classify(parent, stepCtx context.Context, err error) error {
	switch {
	case errors.Is(err, ErrCeremonyCancelled):
		return err
	case parent.Err() != nil:
		return fmt.Errorf("%w: %w", ErrCeremonyCancelled, parent.Err())
	case errors.Is(stepCtx.Err(), context.DeadlineExceeded):
		return fmt.Errorf("%w: %w", ErrCeremonyTimeout, err)
	default:
		return fmt.Errorf("%w: %w", ErrCeremonyFailed, err)
	}
}
