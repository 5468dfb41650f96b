package line

import (
	"sync"
	"time"
)

// Deduper remembers recently seen webhook event ids so redelivered events
// are handled once.
type Deduper struct {
	seen  map[string]time.Time
	now   func() time.Time
	ttl   time.Duration
	limit int // Expired entries are swept when the map grows past this
	mu    sync.Mutex
}

// NewDeduper creates a Deduper that forgets ids after ttl.
func NewDeduper(ttl time.Duration) *Deduper {
	return &Deduper{
		seen:  make(map[string]time.Time),
		now:   time.Now,
		ttl:   ttl,
		limit: 1000,
	}
}

// Seen records id and reports whether it was already recorded.
// Empty ids are never treated as duplicates.
func (d *Deduper) Seen(id string) bool {
	if id == "" {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if at, ok := d.seen[id]; ok && now.Sub(at) < d.ttl {
		return true
	}
	d.seen[id] = now

	if len(d.seen) > d.limit {
		cutoff := now.Add(-d.ttl)
		for k, at := range d.seen {
			if at.Before(cutoff) {
				delete(d.seen, k)
			}
		}
	}
	return false
}

// Len returns the number of remembered ids.
func (d *Deduper) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.seen)
}
