package hosting

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	gogithub "github.com/google/go-github/v68/github"
)

// rateReserve is how many requests are left in reserve before the limiter
// pauses. A batch of in-flight requests can overshoot a hard zero, so the
// floor sits slightly above it.
const rateReserve = 3

// RateLimiter is the single shared gate in front of every API request. Its
// whole contract is Acquire (wait here if the quota is gone) and
// RecordResponse (learn the quota from response headers).
type RateLimiter struct {
	mu        sync.Mutex
	remaining int
	reset     time.Time
	known     bool
}

// NewRateLimiter returns a limiter that lets everything through until the
// first response teaches it the real quota.
func NewRateLimiter() *RateLimiter {
	return &RateLimiter{}
}

// Acquire blocks until a request may be sent. When the remaining quota is
// exhausted it sleeps until the reset window, pausing the whole pipeline
// rather than failing individual repositories.
func (l *RateLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	var wait time.Duration
	if l.known && l.remaining <= rateReserve {
		if d := time.Until(l.reset); d > 0 {
			wait = d
		}
	}
	l.mu.Unlock()

	if wait > 0 {
		slog.Warn("API rate limit exhausted; pausing until reset", "wait", wait.Round(time.Second))
		return sleepCtx(ctx, wait)
	}
	return nil
}

// RecordResponse updates the limiter from a response's rate headers.
func (l *RateLimiter) RecordResponse(resp *gogithub.Response) {
	if resp == nil || resp.Rate.Limit == 0 {
		return
	}
	l.mu.Lock()
	l.remaining = resp.Rate.Remaining
	l.reset = resp.Rate.Reset.Time
	l.known = true
	l.mu.Unlock()
}

// rateLimitDelay inspects an API error for the typed rate-limit conditions
// go-github raises and returns how long to wait before resuming the same
// request.
func rateLimitDelay(err error) (time.Duration, bool) {
	var rle *gogithub.RateLimitError
	if errors.As(err, &rle) {
		d := time.Until(rle.Rate.Reset.Time)
		if d < time.Second {
			d = time.Second
		}
		return d, true
	}
	var are *gogithub.AbuseRateLimitError
	if errors.As(err, &are) {
		if ra := are.GetRetryAfter(); ra > 0 {
			return ra, true
		}
		return 30 * time.Second, true
	}
	return 0, false
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
