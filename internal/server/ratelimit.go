package server

import (
	"sync"
	"time"
)

// rateLimiter is a token bucket per (client, action). The limits are
// generous; the point is to blunt scripted PIN guessing and join floods, not
// to meter well-behaved polling clients.
type rateLimiter struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	perMinute int
	burst     int
	now       func() time.Time
	lastSweep time.Time
}

const sweepInterval = time.Minute

type bucket struct {
	tokens   float64
	lastSeen time.Time
}

func newRateLimiter(perMinute, burst int) *rateLimiter {
	return &rateLimiter{
		buckets:   make(map[string]*bucket),
		perMinute: perMinute,
		burst:     burst,
		now:       time.Now,
	}
}

func (rl *rateLimiter) allow(key string) bool {
	if rl.perMinute <= 0 {
		return true
	}
	rl.mu.Lock()
	defer rl.mu.Unlock()
	now := rl.now()
	rl.sweep(now)
	b, ok := rl.buckets[key]
	if !ok {
		b = &bucket{tokens: float64(rl.burst), lastSeen: now}
		rl.buckets[key] = b
	}
	refill := now.Sub(b.lastSeen).Minutes() * float64(rl.perMinute)
	b.tokens += refill
	if b.tokens > float64(rl.burst) {
		b.tokens = float64(rl.burst)
	}
	b.lastSeen = now
	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// sweep drops buckets idle long enough to have refilled completely; such a
// bucket is indistinguishable from a fresh one, so the map stays bounded by
// the set of recently active keys. Runs at most once per sweepInterval.
func (rl *rateLimiter) sweep(now time.Time) {
	if now.Sub(rl.lastSweep) < sweepInterval {
		return
	}
	rl.lastSweep = now
	idle := time.Duration(float64(rl.burst) / float64(rl.perMinute) * float64(time.Minute))
	if idle < sweepInterval {
		idle = sweepInterval
	}
	for key, b := range rl.buckets {
		if now.Sub(b.lastSeen) > idle {
			delete(rl.buckets, key)
		}
	}
}
