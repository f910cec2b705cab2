// Package hash provides the string hashing used by the font string pool's
// interning index.
package hash

import "github.com/cespare/xxhash/v2"

// ID returns the xxHash64 digest of s. Equal strings always map to the same
// ID; the collision tracker verifies the string on every hit, so a collision
// between distinct strings is detected rather than assumed away.
func ID(s string) uint64 {
	return xxhash.Sum64String(s)
}
