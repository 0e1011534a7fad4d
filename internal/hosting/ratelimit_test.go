package hosting

import (
	"context"
	"net/http"
	"testing"
	"time"

	gogithub "github.com/google/go-github/v68/github"
)

func rateResponse(remaining int, reset time.Time) *gogithub.Response {
	return &gogithub.Response{
		Response: &http.Response{StatusCode: http.StatusOK},
		Rate:     gogithub.Rate{Limit: 5000, Remaining: remaining, Reset: gogithub.Timestamp{Time: reset}},
	}
}

func TestAcquirePassesWhileQuotaRemains(t *testing.T) {
	l := NewRateLimiter()
	l.RecordResponse(rateResponse(100, time.Now().Add(time.Hour)))

	start := time.Now()
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("Acquire should not block while quota remains")
	}
}

func TestAcquireWaitsUntilReset(t *testing.T) {
	l := NewRateLimiter()
	l.RecordResponse(rateResponse(0, time.Now().Add(150*time.Millisecond)))

	start := time.Now()
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Fatalf("Acquire returned after %v, expected to wait for the reset window", elapsed)
	}
}

func TestAcquireSkipsWaitWhenResetHasPassed(t *testing.T) {
	l := NewRateLimiter()
	l.RecordResponse(rateResponse(0, time.Now().Add(-time.Minute)))

	start := time.Now()
	if err := l.Acquire(context.Background()); err != nil {
		t.Fatalf("Acquire: %v", err)
	}
	if time.Since(start) > 100*time.Millisecond {
		t.Fatal("Acquire must not wait on an already-elapsed reset")
	}
}

func TestAcquireHonoursContextCancellation(t *testing.T) {
	l := NewRateLimiter()
	l.RecordResponse(rateResponse(0, time.Now().Add(time.Hour)))

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := l.Acquire(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}

func TestRateLimitDelayFromTypedErrors(t *testing.T) {
	reset := time.Now().Add(10 * time.Minute)
	d, ok := rateLimitDelay(&gogithub.RateLimitError{
		Rate: gogithub.Rate{Remaining: 0, Reset: gogithub.Timestamp{Time: reset}},
	})
	if !ok {
		t.Fatal("RateLimitError not recognised")
	}
	if d < 9*time.Minute || d > 10*time.Minute {
		t.Fatalf("delay = %v, want roughly 10m", d)
	}

	retryAfter := 42 * time.Second
	d, ok = rateLimitDelay(&gogithub.AbuseRateLimitError{RetryAfter: &retryAfter})
	if !ok || d != retryAfter {
		t.Fatalf("abuse delay = %v ok=%v, want %v", d, ok, retryAfter)
	}

	if _, ok := rateLimitDelay(context.Canceled); ok {
		t.Fatal("unrelated error misread as rate limit")
	}
}
