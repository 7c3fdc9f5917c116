package auth

import (
	"sync"

	"golang.org/x/time/rate"
)

// LoginLimiter throttles login attempts per identifier with a token
// bucket. There is no account lockout; the bucket refills on its own.
type LoginLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rate     rate.Limit
	burst    int
}

// NewLoginLimiter allows ratePerMinute attempts per identifier, with the
// given burst.
func NewLoginLimiter(ratePerMinute, burst int) *LoginLimiter {
	if ratePerMinute <= 0 {
		ratePerMinute = 5
	}
	if burst <= 0 {
		burst = ratePerMinute
	}
	return &LoginLimiter{
		limiters: make(map[string]*rate.Limiter),
		rate:     rate.Limit(float64(ratePerMinute) / 60.0),
		burst:    burst,
	}
}

// Allow reports whether another attempt for the identifier may proceed.
func (l *LoginLimiter) Allow(identifier string) bool {
	l.mu.Lock()
	limiter, ok := l.limiters[identifier]
	if !ok {
		limiter = rate.NewLimiter(l.rate, l.burst)
		l.limiters[identifier] = limiter
	}
	l.mu.Unlock()
	return limiter.Allow()
}
