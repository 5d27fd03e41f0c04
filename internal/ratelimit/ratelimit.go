// Package ratelimit gates mutating operations with named token
// buckets keyed per caller. Bucket accounting is delegated to
// golang.org/x/time/rate.
package ratelimit

import (
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limit describes one named bucket: Rate tokens refill over Window,
// with bursts up to Burst.
type Limit struct {
	Rate   int
	Window time.Duration
	Burst  int
}

type bucketKey struct {
	name string
	key  string
}

// Limiter holds an immutable name→Limit mapping supplied at process
// start and lazily creates one token bucket per (name, key) pair.
// Buckets are retained for the process lifetime, so memory grows with
// the number of distinct keys seen; at one small struct per active
// user per bucket this is acceptable until an eviction policy is
// needed.
type Limiter struct {
	limits map[string]Limit

	mu      sync.Mutex
	buckets map[bucketKey]*rate.Limiter
}

func New(limits map[string]Limit) *Limiter {
	return &Limiter{
		limits:  limits,
		buckets: make(map[bucketKey]*rate.Limiter),
	}
}

// Allow consumes one token from the named bucket for the given key.
// Unknown bucket names are not limited; a bucket with a non-positive
// rate denies everything. On denial it reports the duration after
// which a retry may succeed.
func (l *Limiter) Allow(name, key string) (bool, time.Duration) {
	limit, ok := l.limits[name]
	if !ok {
		return true, 0
	}
	if limit.Rate <= 0 {
		return false, limit.Window
	}

	l.mu.Lock()
	bk := bucketKey{name: name, key: key}
	bucket, ok := l.buckets[bk]
	if !ok {
		interval := limit.Window / time.Duration(limit.Rate)
		bucket = rate.NewLimiter(rate.Every(interval), limit.Burst)
		l.buckets[bk] = bucket
	}
	l.mu.Unlock()

	reservation := bucket.Reserve()
	if !reservation.OK() {
		return false, limit.Window
	}
	if delay := reservation.Delay(); delay > 0 {
		reservation.Cancel()
		return false, delay
	}
	return true, 0
}
