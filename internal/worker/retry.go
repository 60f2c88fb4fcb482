package worker

import (
	"context"
	"math"
	"time"
)

// RetryPolicy is exponential backoff shared by the order sweeper and the HTTP
// client's GET requests. MaxRetries counts retries, so a call runs at most
// MaxRetries+1 times.
type RetryPolicy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64

	// OnRetry, if set, is called before each wait.
	OnRetry func(attempt int, delay time.Duration, err error)
}

// NextDelay returns the wait after a failed attempt (1-based), clamped to MaxDelay.
func (r RetryPolicy) NextDelay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	initial := r.InitialDelay
	if initial <= 0 {
		initial = time.Second
	}
	factor := r.BackoffFactor
	if factor <= 0 {
		factor = 2
	}

	d := time.Duration(float64(initial) * math.Pow(factor, float64(attempt-1)))
	if r.MaxDelay > 0 && d > r.MaxDelay {
		d = r.MaxDelay
	}
	if d <= 0 {
		// overflow on a large attempt
		d = r.MaxDelay
		if d <= 0 {
			d = initial
		}
	}
	return d
}

// Do calls fn until it succeeds, returns an error retryable rejects, the retry
// budget runs out or ctx is done. A nil retryable retries every error. The last
// error from fn is returned; ctx.Err() is returned only if fn never ran.
func (r RetryPolicy) Do(ctx context.Context, fn func() error, retryable func(error) bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if attempt > r.MaxRetries || (retryable != nil && !retryable(err)) || ctx.Err() != nil {
			return err
		}

		delay := r.NextDelay(attempt)
		if r.OnRetry != nil {
			r.OnRetry(attempt, delay, err)
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
}
