// Package ratelimiter is a token bucket limiter keyed by caller identity.
// Buckets expire after a quiet period so the map does not grow with every
// visitor the service ever saw.
package ratelimiter

import (
	"sync"
	"time"
)

type bucket struct {
	tokens     float64
	capacity   float64
	rate       float64
	lastRefill time.Time
	mu         sync.Mutex
	timer      *time.Timer
	identity   string
	parent     *SenderRateLimiter
}

// SenderRateLimiter manages one bucket per identity (user name or IP).
type SenderRateLimiter struct {
	buckets        map[string]*bucket
	mu             sync.RWMutex
	rate           float64
	capacity       float64
	expirationTime time.Duration
}

// New creates a limiter refilling rate tokens per second up to capacity.
func New(rate, capacity float64, expirationTime time.Duration) *SenderRateLimiter {
	return &SenderRateLimiter{
		buckets:        make(map[string]*bucket),
		rate:           rate,
		capacity:       capacity,
		expirationTime: expirationTime,
	}
}

func (l *SenderRateLimiter) cleanup(identity string) {
	l.mu.Lock()
	delete(l.buckets, identity)
	l.mu.Unlock()
}

func (b *bucket) resetTimer() {
	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.parent.expirationTime, func() {
		b.parent.cleanup(b.identity)
	})
}

func (l *SenderRateLimiter) getBucket(identity string) *bucket {
	l.mu.RLock()
	b, exists := l.buckets[identity]
	l.mu.RUnlock()

	if exists {
		b.resetTimer()
		return b
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	// Double-check after acquiring the write lock.
	b, exists = l.buckets[identity]
	if exists {
		b.resetTimer()
		return b
	}

	b = &bucket{
		tokens:     l.capacity,
		capacity:   l.capacity,
		rate:       l.rate,
		lastRefill: time.Now(),
		identity:   identity,
		parent:     l,
	}
	l.buckets[identity] = b
	b.resetTimer()

	return b
}

func (b *bucket) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	now := time.Now()
	elapsed := now.Sub(b.lastRefill).Seconds()

	b.tokens += elapsed * b.rate
	if b.tokens > b.capacity {
		b.tokens = b.capacity
	}
	b.lastRefill = now

	if b.tokens >= 1 {
		b.tokens--
		return true
	}
	return false
}

// Allow reports whether identity may make a request right now.
func (l *SenderRateLimiter) Allow(identity string) bool {
	return l.getBucket(identity).allow()
}

// Stop cancels every expiration timer.
func (l *SenderRateLimiter) Stop() {
	l.mu.Lock()
	defer l.mu.Unlock()

	for _, b := range l.buckets {
		if b.timer != nil {
			b.timer.Stop()
		}
	}
}
