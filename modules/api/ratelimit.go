package api

import (
	"math"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// pruneThreshold bounds the limiter map; idle entries are evicted once the
// map grows past it.
const (
	pruneThreshold = 1024
	idleEviction   = 10 * time.Minute
)

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// ipLimiter keeps one token bucket per client key.
type ipLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	rate  rate.Limit
	burst int
}

func newIPLimiter(perMinute, burst int) *ipLimiter {
	if perMinute <= 0 {
		perMinute = 30
	}
	if burst <= 0 {
		burst = 10
	}
	return &ipLimiter{
		entries: make(map[string]*limiterEntry),
		rate:    rate.Limit(float64(perMinute) / 60.0),
		burst:   burst,
	}
}

// allow consumes one token for the key. When denied it returns the seconds to
// wait before the next token becomes available.
func (l *ipLimiter) allow(key string) (retryAfter int, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, exists := l.entries[key]
	if !exists {
		if len(l.entries) >= pruneThreshold {
			l.prune()
		}
		entry = &limiterEntry{limiter: rate.NewLimiter(l.rate, l.burst)}
		l.entries[key] = entry
	}
	entry.lastSeen = time.Now()

	if entry.limiter.Allow() {
		return 0, true
	}

	reservation := entry.limiter.Reserve()
	delay := reservation.Delay()
	reservation.Cancel()
	return int(math.Ceil(delay.Seconds())), false
}

// prune drops idle entries. Caller holds the lock.
func (l *ipLimiter) prune() {
	cutoff := time.Now().Add(-idleEviction)
	for key, entry := range l.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(l.entries, key)
		}
	}
}
