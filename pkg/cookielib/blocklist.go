package cookielib

import (
	"sync"
	"time"
)

// BlockList remembers recently deleted cookies by (name, domain) so the
// guard can undo their regeneration. Entries expire after the window; a zero
// window keeps them for the lifetime of the list. Expired entries are pruned
// lazily on access. Safe for concurrent use.
type BlockList struct {
	mu      sync.Mutex
	window  time.Duration
	entries map[GuardKey]time.Time
	now     func() time.Time
}

// NewBlockList returns an empty list with the given window.
func NewBlockList(window time.Duration) *BlockList {
	return &BlockList{
		window:  window,
		entries: make(map[GuardKey]time.Time),
		now:     time.Now,
	}
}

// WithClock replaces the wall clock, mainly for tests.
func (b *BlockList) WithClock(now func() time.Time) *BlockList {
	b.mu.Lock()
	b.now = now
	b.mu.Unlock()
	return b
}

// Window returns the configured blocking window.
func (b *BlockList) Window() time.Duration {
	return b.window
}

// Add blocks k, restarting its window if it is already present.
func (b *BlockList) Add(k GuardKey) {
	b.mu.Lock()
	defer b.mu.Unlock()
	var expiry time.Time
	if b.window > 0 {
		expiry = b.now().Add(b.window)
	}
	b.entries[k] = expiry
}

// Contains reports whether k is blocked right now.
func (b *BlockList) Contains(k GuardKey) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	expiry, ok := b.entries[k]
	if !ok {
		return false
	}
	if b.expired(expiry, b.now()) {
		delete(b.entries, k)
		return false
	}
	return true
}

// Remove unblocks k.
func (b *BlockList) Remove(k GuardKey) {
	b.mu.Lock()
	delete(b.entries, k)
	b.mu.Unlock()
}

// Len prunes expired entries and returns the number of live ones.
func (b *BlockList) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	now := b.now()
	for k, expiry := range b.entries {
		if b.expired(expiry, now) {
			delete(b.entries, k)
		}
	}
	return len(b.entries)
}

func (b *BlockList) expired(expiry, now time.Time) bool {
	return !expiry.IsZero() && !now.Before(expiry)
}
