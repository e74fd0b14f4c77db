package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	reasonerrors "github.com/mrz1836/reasonkernel/internal/errors"
)

// RetryingProvider decorates a Provider with a bounded retry loop and a
// per-call deadline, the same shape as the teacher's retry.go wraps a chat
// client: the wrapped Provider is unaware retries happen at all.
type RetryingProvider struct {
	next           Provider
	maxAttempts    int
	perCallTimeout time.Duration
	backoff        func(attempt int) time.Duration
}

// RetryOption configures a RetryingProvider.
type RetryOption func(*RetryingProvider)

// WithMaxAttempts overrides the default of 3 attempts.
func WithMaxAttempts(n int) RetryOption {
	return func(r *RetryingProvider) { r.maxAttempts = n }
}

// WithPerCallTimeout overrides the default 30s per-attempt deadline.
func WithPerCallTimeout(d time.Duration) RetryOption {
	return func(r *RetryingProvider) { r.perCallTimeout = d }
}

// NewRetryingProvider wraps next with retry and per-call timeout behavior.
func NewRetryingProvider(next Provider, opts ...RetryOption) *RetryingProvider {
	r := &RetryingProvider{
		next:           next,
		maxAttempts:    3,
		perCallTimeout: 30 * time.Second,
		backoff: func(attempt int) time.Duration {
			return time.Duration(attempt) * 100 * time.Millisecond
		},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Generate implements Provider, retrying on a context deadline or a
// transient collaborator error up to maxAttempts times. A deadline that
// expires on the final attempt surfaces as
// internal/errors.ErrCollaboratorTimeout.
func (r *RetryingProvider) Generate(ctx context.Context, req Request) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		callCtx, cancel := context.WithTimeout(ctx, r.perCallTimeout)
		resp, err := r.next.Generate(callCtx, req)
		cancel()
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		if attempt < r.maxAttempts {
			select {
			case <-time.After(r.backoff(attempt)):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}
	if errors.Is(lastErr, context.DeadlineExceeded) {
		return nil, fmt.Errorf("%w: %w", reasonerrors.ErrCollaboratorTimeout, lastErr)
	}
	return nil, fmt.Errorf("%w: exhausted %d attempts: %w", reasonerrors.ErrCollaboratorTimeout, r.maxAttempts, lastErr)
}

var _ Provider = (*RetryingProvider)(nil)
