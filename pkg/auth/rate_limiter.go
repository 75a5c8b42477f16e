package auth

import (
	"sync"
	"time"
)

// RateLimiter is a token bucket refilled continuously at rate per interval.
type RateLimiter struct {
	mu       sync.Mutex
	rate     float64 // tokens per second
	capacity float64
	tokens   float64
	last     time.Time
	now      func() time.Time
}

/*
NewRateLimiter creates a bucket that holds rate tokens and refills them over
interval.  It starts full.
*/
func NewRateLimiter(rate int64, interval time.Duration) *RateLimiter {
	if rate <= 0 || interval <= 0 {
		panic("rate and interval must be positive")
	}

	return &RateLimiter{
		rate:     float64(rate) / interval.Seconds(),
		capacity: float64(rate),
		tokens:   float64(rate),
		last:     time.Now(),
		now:      time.Now,
	}
}

func (rl *RateLimiter) refill() {
	now := rl.now()
	elapsed := now.Sub(rl.last).Seconds()
	rl.last = now

	rl.tokens = min(rl.capacity, rl.tokens+elapsed*rl.rate)
}

// Allow consumes one token, reporting false when the bucket is empty.
func (rl *RateLimiter) Allow() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens < 1.0 {
		return false
	}

	rl.tokens--
	return true
}

// WaitTime returns how long until the next token is available.
func (rl *RateLimiter) WaitTime() time.Duration {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.refill()

	if rl.tokens >= 1.0 {
		return 0
	}

	return time.Duration((1.0 - rl.tokens) / rl.rate * float64(time.Second))
}

// Reset refills the bucket.
func (rl *RateLimiter) Reset() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	rl.tokens = rl.capacity
	rl.last = rl.now()
}

/*
Limiters hands out one bucket per key, so a noisy user cannot starve the
others.  Buckets idle for longer than a full refill are dropped on Prune.
*/
type Limiters struct {
	mu       sync.Mutex
	rate     int64
	interval time.Duration
	buckets  map[string]*RateLimiter
}

func NewLimiters(rate int64, interval time.Duration) *Limiters {
	return &Limiters{
		rate:     rate,
		interval: interval,
		buckets:  map[string]*RateLimiter{},
	}
}

func (limiters *Limiters) Allow(key string) bool {
	limiters.mu.Lock()
	bucket, ok := limiters.buckets[key]

	if !ok {
		bucket = NewRateLimiter(limiters.rate, limiters.interval)
		limiters.buckets[key] = bucket
	}

	limiters.mu.Unlock()

	return bucket.Allow()
}

// Prune removes buckets that have been full for at least one interval.
func (limiters *Limiters) Prune() int {
	limiters.mu.Lock()
	defer limiters.mu.Unlock()

	removed := 0

	for key, bucket := range limiters.buckets {
		bucket.mu.Lock()
		idle := bucket.now().Sub(bucket.last) >= limiters.interval
		bucket.mu.Unlock()

		if idle {
			delete(limiters.buckets, key)
			removed++
		}
	}

	return removed
}

func (limiters *Limiters) Len() int {
	limiters.mu.Lock()
	defer limiters.mu.Unlock()

	return len(limiters.buckets)
}
