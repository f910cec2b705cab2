package collision

import (
	"fmt"

	"github.com/arloliu/voicefont/errs"
)

// Tracker interns strings by xxHash64 and detects hash collisions while a
// string pool is being built. It keeps a hash-to-index map for O(1) lookups
// and an ordered list of the interned strings for pool serialization.
type Tracker struct {
	byHash       map[uint64]uint32 // Hash → index of the first string with that hash
	list         []string          // Interned strings in insertion order
	hasCollision bool              // Whether a collision has been detected
}

// NewTracker creates a new collision tracker.
func NewTracker() *Tracker {
	return &Tracker{
		byHash:       make(map[uint64]uint32),
		list:         make([]string, 0),
		hasCollision: false,
	}
}

// Track interns s under the given hash and returns its pool index.
// The boolean reports whether s was newly added; tracking the same string
// again returns the existing index.
//
// A genuine collision (a different string already interned under the same
// hash) cannot be represented by the hash index, so Track verifies the
// stored string and returns errs.ErrStringCollision instead of silently
// merging the two strings.
func (t *Tracker) Track(s string, hash uint64) (uint32, bool, error) {
	if idx, exists := t.byHash[hash]; exists {
		if t.list[idx] == s {
			return idx, false, nil
		}

		t.hasCollision = true

		return 0, false, fmt.Errorf("%w: %q and %q both hash to 0x%016x",
			errs.ErrStringCollision, t.list[idx], s, hash)
	}

	idx := uint32(len(t.list))
	t.byHash[hash] = idx
	t.list = append(t.list, s)

	return idx, true, nil
}

// Lookup returns the index of a previously tracked string.
// The boolean reports whether the string is present; a hash hit whose stored
// string differs from s is not a match.
func (t *Tracker) Lookup(s string, hash uint64) (uint32, bool) {
	idx, exists := t.byHash[hash]
	if !exists || t.list[idx] != s {
		return 0, false
	}

	return idx, true
}

// HasCollision returns true if a collision has been detected.
func (t *Tracker) HasCollision() bool {
	return t.hasCollision
}

// Strings returns the interned strings in insertion order.
// The slice is the tracker's backing store; callers must not modify it.
func (t *Tracker) Strings() []string {
	return t.list
}

// Count returns the number of interned strings.
func (t *Tracker) Count() int {
	return len(t.list)
}

// Reset clears all interned strings and collision state.
// This allows reusing the tracker for building a new pool.
func (t *Tracker) Reset() {
	// Clear maps but preserve capacity to avoid allocations
	for k := range t.byHash {
		delete(t.byHash, k)
	}
	t.list = t.list[:0]
	t.hasCollision = false
}
