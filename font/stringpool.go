package font

import (
	"fmt"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/collision"
	"github.com/arloliu/voicefont/internal/hash"
)

// StringPool is the deduplicating string interner behind the font's string
// pool section. Adding a string returns a stable uint32 index; adding the
// same string again returns the existing index. Other sections and model
// tables reference pool strings by index.
//
// Interning is hash-based (xxHash64) with collision verification: two
// distinct strings hashing to the same value cannot share a pool, and Add
// reports errs.ErrStringCollision instead of silently merging them.
//
// On disk the section is
//
//	{count: u32} {offsets: u32 × count} {blob}
//
// where offsets are byte positions into the concatenated blob. String ends
// are implied by the next offset (or the blob end for the last string), so
// the pool never stores length bytes per string.
type StringPool struct {
	tracker *collision.Tracker
	blobLen int
}

// NewStringPool creates an empty string pool.
func NewStringPool() *StringPool {
	return &StringPool{tracker: collision.NewTracker()}
}

// Add interns s and returns its pool index.
//
// Returns:
//   - uint32: Stable index of s in the pool
//   - error: errs.ErrStringCollision if a different string with the same
//     hash is already interned
func (p *StringPool) Add(s string) (uint32, error) {
	idx, added, err := p.tracker.Track(s, hash.ID(s))
	if err != nil {
		return 0, err
	}

	if added {
		p.blobLen += len(s)
	}

	return idx, nil
}

// Lookup returns the index of a previously added string.
// The boolean reports whether the string is present.
func (p *StringPool) Lookup(s string) (uint32, bool) {
	return p.tracker.Lookup(s, hash.ID(s))
}

// At returns the string at the given pool index.
// The boolean reports whether the index is in range.
func (p *StringPool) At(index uint32) (string, bool) {
	strs := p.tracker.Strings()
	if int(index) >= len(strs) {
		return "", false
	}

	return strs[index], true
}

// Strings returns the interned strings in index order.
// The slice is the pool's backing store; callers must not modify it.
func (p *StringPool) Strings() []string {
	return p.tracker.Strings()
}

// Count returns the number of interned strings.
func (p *StringPool) Count() int {
	return p.tracker.Count()
}

// Size returns the encoded section size in bytes.
func (p *StringPool) Size() int {
	return 4 + 4*p.Count() + p.blobLen
}

// Bytes serializes the pool into its section form.
func (p *StringPool) Bytes(engine endian.EndianEngine) []byte {
	strs := p.tracker.Strings()

	b := make([]byte, 0, p.Size())
	b = engine.AppendUint32(b, uint32(len(strs))) //nolint:gosec // pool growth is u32-bounded

	offset := uint32(0)
	for _, s := range strs {
		b = engine.AppendUint32(b, offset)
		offset += uint32(len(s)) //nolint:gosec // offsets bounded by blob growth
	}

	for _, s := range strs {
		b = append(b, s...)
	}

	return b
}

// Parse decodes a string pool section, replacing the pool's contents.
//
// Offsets must be in order and inside the blob, and the decoded strings must
// be unique; violations are reported as errs.ErrInvalidStringPool. A hash
// collision between two decoded strings is reported as
// errs.ErrStringCollision, since such a pool cannot serve index lookups.
func (p *StringPool) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) < 4 {
		return fmt.Errorf("%w: need 4 count bytes, have %d", errs.ErrInvalidStringPool, len(data))
	}

	count := int(engine.Uint32(data))
	blobStart := uint64(4) + uint64(count)*4
	if blobStart > uint64(len(data)) {
		return fmt.Errorf("%w: %d offsets need %d bytes, section has %d",
			errs.ErrInvalidStringPool, count, blobStart, len(data))
	}

	blob := data[blobStart:]

	// Offsets plus a sentinel at the blob end; string i spans
	// offsets[i]:offsets[i+1].
	offsets := make([]uint32, count+1)
	for i := range count {
		offsets[i] = engine.Uint32(data[4+4*i:])
	}
	offsets[count] = uint32(len(blob)) //nolint:gosec // section sizes are u32-bounded

	tracker := collision.NewTracker()
	blobLen := 0
	for i := range count {
		start, end := offsets[i], offsets[i+1]
		if start > end || uint64(end) > uint64(len(blob)) {
			return fmt.Errorf("%w: string %d spans %d-%d, blob has %d bytes",
				errs.ErrInvalidStringPool, i, start, end, len(blob))
		}

		s := string(blob[start:end])
		idx, added, err := tracker.Track(s, hash.ID(s))
		if err != nil {
			return err
		}
		if !added {
			return fmt.Errorf("%w: string %d duplicates string %d (%q)",
				errs.ErrInvalidStringPool, i, idx, s)
		}

		blobLen += len(s)
	}

	p.tracker = tracker
	p.blobLen = blobLen

	return nil
}

// ParseStringPool decodes a string pool section.
func ParseStringPool(data []byte, engine endian.EndianEngine) (*StringPool, error) {
	p := NewStringPool()
	if err := p.Parse(data, engine); err != nil {
		return nil, err
	}

	return p, nil
}
