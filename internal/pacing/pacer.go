// Package pacing spaces outbound API calls so a whole run stays under the
// account's request budget.
package pacing

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// DefaultRequestsPerMinute leaves a small buffer under reddit's 60/min OAuth limit.
const DefaultRequestsPerMinute = 55

// Pacer is a token bucket shared by every call a run makes. A nil *Pacer
// never waits.
type Pacer struct {
	limiter *rate.Limiter
}

// New returns a pacer admitting perMinute calls per minute. perMinute <= 0
// disables pacing.
func New(perMinute int) *Pacer {
	if perMinute <= 0 {
		return &Pacer{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	// Token Bucket: one call every 60s/perMinute, no bursts
	return &Pacer{limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)}
}

// Delay reports how long a call made at now would have to wait. It only
// reads the bucket.
func (p *Pacer) Delay(now time.Time) time.Duration {
	if p == nil || p.limiter.Limit() == rate.Inf {
		return 0
	}
	tokens := p.limiter.TokensAt(now)
	if tokens >= 1 {
		return 0
	}
	return time.Duration((1 - tokens) / float64(p.limiter.Limit()) * float64(time.Second))
}

// Wait blocks until the next call may go out.
func (p *Pacer) Wait(ctx context.Context) error {
	if p == nil {
		return nil
	}
	return p.limiter.Wait(ctx)
}
