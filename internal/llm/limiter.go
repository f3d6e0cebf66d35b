package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter throttles API requests so batch sweeps with many datasets do not
// exceed hosted-provider rate limits. A single limiter is shared across all
// workers of a sweep.
type Limiter struct {
	limiter *rate.Limiter
}

// NewLimiter creates a limiter allowing requestsPerMinute calls with a small
// burst. A non-positive rate disables throttling.
func NewLimiter(requestsPerMinute float64) *Limiter {
	if requestsPerMinute <= 0 {
		return &Limiter{}
	}
	return &Limiter{
		limiter: rate.NewLimiter(rate.Limit(requestsPerMinute/60.0), 1),
	}
}

// Wait blocks until a request is allowed or the context is cancelled
func (l *Limiter) Wait(ctx context.Context) error {
	if l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
