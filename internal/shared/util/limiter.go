package util

import (
	"context"

	"golang.org/x/time/rate"
)

// Limiter paces outbound provider requests with a token bucket. Each request
// costs one token; burst controls how many may fire back to back.
type Limiter struct {
	inner *rate.Limiter
}

// NewLimiter creates a limiter allowing rps requests per second on average.
func NewLimiter(rps float64, burst int) *Limiter {
	if burst < 1 {
		burst = 1
	}
	return &Limiter{inner: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until the next request may be sent or the context ends.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.inner.Wait(ctx)
}
