package section

import (
	"fmt"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
)

// TableIndexEntry records the location of a single table in a data-table
// container. Entries are fixed size per container: keyLength int32 key
// components followed by an absolute data-section offset and the body size.
//
// Offsets are relative to the start of the container's data section, not to
// the artifact, so containers can be embedded in font sections unchanged.
type TableIndexEntry struct {
	// Key is the table's signed integer key tuple. Its length matches the
	// container's fixed key length and it is unique within the container.
	//
	// Offset: 0, Size: keyLength × 4 bytes
	Key []int32

	// Offset is the absolute byte offset of the table body from the start of
	// the container data section.
	//
	// Offset: keyLength×4, Size: 8 bytes
	Offset int64

	// Size is the byte length of the table body.
	//
	// Offset: keyLength×4+8, Size: 4 bytes
	Size uint32
}

// NewTableIndexEntry creates an index entry for the given key.
// Offset and Size are set by the writer when the table body is placed.
func NewTableIndexEntry(key []int32) TableIndexEntry {
	return TableIndexEntry{
		Key: key,
	}
}

// Bytes returns the index entry as a byte slice using the specified endian engine.
//
// Parameters:
//   - engine: Endian engine for byte order
//
// Returns:
//   - []byte: keyLength×4+12 bytes with all fields encoded
func (e *TableIndexEntry) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, IndexEntrySize(len(e.Key)))
	e.WriteToSlice(b, 0, engine)

	return b
}

// WriteToSlice writes the entry to a pre-allocated slice and returns the next
// position.
//
// This is the most efficient method when writing an index sequentially.
//
// Parameters:
//   - data: Pre-allocated byte slice (must have IndexEntrySize(len(Key)) bytes at offset)
//   - offset: Starting position in data slice
//   - engine: Endian engine for byte order
//
// Returns:
//   - int: Next write position
func (e *TableIndexEntry) WriteToSlice(data []byte, offset int, engine endian.EndianEngine) int {
	pos := offset
	for _, k := range e.Key {
		engine.PutUint32(data[pos:pos+4], uint32(k)) //nolint:gosec // bit-pattern cast of signed key component
		pos += 4
	}

	PutInt64(data[pos:pos+8], engine, e.Offset)
	engine.PutUint32(data[pos+8:pos+12], e.Size)

	return pos + 12
}

// ParseTableIndexEntry parses a TableIndexEntry from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the entry (must be at least IndexEntrySize(keyLength) bytes)
//   - keyLength: The container's fixed key length
//   - engine: Endian engine for byte order
//
// Returns:
//   - TableIndexEntry: Parsed entry
//   - error: ErrInvalidIndexEntry if data is too short
func ParseTableIndexEntry(data []byte, keyLength int, engine endian.EndianEngine) (TableIndexEntry, error) {
	if keyLength < 0 || len(data) < IndexEntrySize(keyLength) {
		return TableIndexEntry{}, fmt.Errorf("%w: got %d bytes, want %d",
			errs.ErrInvalidIndexEntry, len(data), IndexEntrySize(keyLength))
	}

	key := make([]int32, keyLength)
	pos := 0
	for i := range key {
		key[i] = int32(engine.Uint32(data[pos : pos+4])) //nolint:gosec // bit-pattern cast of signed key component
		pos += 4
	}

	return TableIndexEntry{
		Key:    key,
		Offset: Int64(data[pos:pos+8], engine),
		Size:   engine.Uint32(data[pos+8 : pos+12]),
	}, nil
}
