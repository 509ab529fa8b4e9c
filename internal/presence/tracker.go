// Package presence tracks who is typing right now. State is in-memory only:
// losing it on restart is cosmetic, the tracker rebuilds itself from incoming
// signals. Entries older than the TTL are invisible to queries and evicted
// lazily on the next access.
package presence

import (
	"sort"
	"sync"
	"time"
)

// Tracker is an owned, mutex-guarded map of author -> last signal time.
// Workers that need presence receive a handle to it, never package state.
type Tracker struct {
	mu      sync.Mutex
	entries map[string]time.Time
	ttl     time.Duration
	now     func() time.Time
}

func New(ttl time.Duration) *Tracker {
	return &Tracker{
		entries: make(map[string]time.Time),
		ttl:     ttl,
		now:     time.Now,
	}
}

// NewWithClock injects a clock for tests.
func NewWithClock(ttl time.Duration, now func() time.Time) *Tracker {
	t := New(ttl)
	t.now = now
	return t
}

// Signal records "author is typing now". Last signal wins; an unknown author
// is simply created.
func (t *Tracker) Signal(author string) {
	t.mu.Lock()
	t.entries[author] = t.now()
	t.mu.Unlock()
}

// Clear drops the entry, typically because the author's message was just
// appended.
func (t *Tracker) Clear(author string) {
	t.mu.Lock()
	delete(t.entries, author)
	t.mu.Unlock()
}

// Active returns authors whose last signal is within the TTL, excluding
// exclude (usually the requester). Stale entries found on the way are
// evicted. The result is sorted for stable output.
func (t *Tracker) Active(exclude string) []string {
	now := t.now()

	t.mu.Lock()
	active := make([]string, 0, len(t.entries))
	for author, last := range t.entries {
		if now.Sub(last) > t.ttl {
			delete(t.entries, author)
			continue
		}
		if author == exclude {
			continue
		}
		active = append(active, author)
	}
	t.mu.Unlock()

	sort.Strings(active)
	return active
}
