package dailyquote

import (
	"context"
	"sync"
	"time"
)

// RateLimiter gates outgoing calls. key identifies the bucket, usually the request host,
// so the three public endpoints do not slow each other down.
type RateLimiter interface {
	Wait(ctx context.Context, key string) error
}

// RateLimiterFunc adapts a function into a RateLimiter.
type RateLimiterFunc func(ctx context.Context, key string) error

// Wait calls f.
func (f RateLimiterFunc) Wait(ctx context.Context, key string) error {
	if f == nil {
		return nil
	}
	return f(ctx, key)
}

// NewHostLimiter returns a limiter that spaces calls sharing a key at least interval apart.
// Keys are independent. A non-positive interval falls back to one second.
func NewHostLimiter(interval time.Duration) RateLimiter {
	if interval <= 0 {
		interval = time.Second
	}
	return &hostLimiter{interval: interval, next: make(map[string]time.Time)}
}

type hostLimiter struct {
	mu       sync.Mutex
	interval time.Duration
	next     map[string]time.Time
}

func (l *hostLimiter) reserve(key string, now time.Time) time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	slot := now
	if n, ok := l.next[key]; ok && now.Before(n) {
		slot = n
	}
	l.next[key] = slot.Add(l.interval)
	return slot.Sub(now)
}

func (l *hostLimiter) Wait(ctx context.Context, key string) error {
	wait := l.reserve(key, time.Now())
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
