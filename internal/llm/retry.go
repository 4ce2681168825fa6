package llm

import (
	"context"
	"errors"
	"math"
	"math/rand/v2"
	"time"
)

type retryProvider struct {
	inner Provider
	cfg   RetryConfig
}

// WithRetry retries failures that may clear up on their own, backing off
// exponentially with jitter. At least one attempt is always made.
func WithRetry(p Provider, cfg RetryConfig) Provider {
	cfg.MaxAttempts = max(cfg.MaxAttempts, 1)
	return &retryProvider{inner: p, cfg: cfg}
}

func (r *retryProvider) Complete(ctx context.Context, p Prompt) (*Completion, error) {
	invalidSeen := false
	for attempt := 1; ; attempt++ {
		out, err := r.inner.Complete(ctx, p)
		if err == nil {
			return out, nil
		}
		if attempt >= r.cfg.MaxAttempts || !retryable(err, &invalidSeen) {
			return nil, err
		}

		t := time.NewTimer(r.cfg.delay(attempt, err))
		select {
		case <-ctx.Done():
			t.Stop()
			return nil, ctx.Err()
		case <-t.C:
		}
	}
}

func (r *retryProvider) Model() string { return r.inner.Model() }

// retryable reports whether another attempt could succeed. Invalid output
// gets one more try per call.
func retryable(err error, invalidSeen *bool) bool {
	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return false
	case errors.Is(err, ErrRejected), errors.Is(err, ErrTruncated):
		return false
	case errors.Is(err, ErrInvalidOutput):
		if *invalidSeen {
			return false
		}
		*invalidSeen = true
	}
	return true
}

// delay is the wait after the given 1-based attempt failed with err. A
// provider's Retry-After wins over the computed backoff.
func (c RetryConfig) delay(attempt int, err error) time.Duration {
	var e *Error
	if errors.As(err, &e) && e.RetryAfter > 0 {
		return e.RetryAfter
	}

	wait := float64(c.InitialWait) * math.Pow(max(c.Multiplier, 1), float64(attempt-1))
	if c.MaxWait > 0 {
		wait = min(wait, float64(c.MaxWait))
	}
	wait *= 0.8 + 0.4*rand.Float64()
	return time.Duration(wait)
}
