package section

import (
	"fmt"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
)

// TableHeader is the fixed-size data-table container sub-header that follows
// the FontHeader in "VFDT" artifacts and in embedded model sections.
type TableHeader struct {
	// TableCount is the number of tables stored in the container.
	TableCount uint32 // byte offset 0-3
	// KeyLength is the fixed number of int32 components in every table key.
	KeyLength uint32 // byte offset 4-7
}

// Parse parses the sub-header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the sub-header (must be exactly 8 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 8 bytes
func (h *TableHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != TableHeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), TableHeaderSize)
	}

	h.TableCount = engine.Uint32(data[0:4])
	h.KeyLength = engine.Uint32(data[4:8])

	return nil
}

// Bytes serializes the TableHeader into an 8-byte slice.
func (h *TableHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, TableHeaderSize)
	engine.PutUint32(b[0:4], h.TableCount)
	engine.PutUint32(b[4:8], h.KeyLength)

	return b
}

// IndexSize returns the on-disk byte size of the container's index section.
func (h *TableHeader) IndexSize() int {
	return int(h.TableCount) * IndexEntrySize(int(h.KeyLength))
}

// ParseTableHeader parses a TableHeader from the start of a byte slice.
func ParseTableHeader(data []byte, engine endian.EndianEngine) (TableHeader, error) {
	if len(data) < TableHeaderSize {
		return TableHeader{}, fmt.Errorf("%w: got %d bytes, want at least %d",
			errs.ErrInvalidHeaderSize, len(data), TableHeaderSize)
	}

	h := TableHeader{}
	if err := h.Parse(data[:TableHeaderSize], engine); err != nil {
		return TableHeader{}, err
	}

	return h, nil
}
