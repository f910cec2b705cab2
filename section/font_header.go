package section

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/google/uuid"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
)

// Tag is the 4-byte artifact kind identifier at the start of a FontHeader.
type Tag [4]byte

// String returns the tag as a printable 4-character string.
func (t Tag) String() string {
	return string(t[:])
}

// SectionRange locates one section inside an artifact payload.
// Offset is absolute from the start of the payload (the byte after the
// header); a range with Size zero marks an absent section.
type SectionRange struct {
	Offset uint32
	Size   uint32
}

// End returns the payload offset one past the section's last byte.
func (r SectionRange) End() uint32 {
	return r.Offset + r.Size
}

// FontHeader is the fixed-size header at the start of every voice-font
// artifact. All multi-byte fields are little-endian on disk.
type FontHeader struct {
	// Tag identifies the artifact kind (font, data table, wave stream, ...).
	Tag Tag // byte offset 0-3
	// FormatID is the GUID of the binary format revision the artifact obeys.
	FormatID uuid.UUID // byte offset 4-19
	// Size is the number of payload bytes following the header. The writer
	// back-patches it on close; readers must find it equal to the actual
	// byte count after the header.
	Size uint32 // byte offset 20-23
	// Version is the voice-font format version.
	Version uint32 // byte offset 24-27
	// Build is the voice build number that produced the artifact.
	Build uint32 // byte offset 28-31
	// LangID is the language identifier of the voice.
	LangID uint16 // byte offset 32-33
	// ShortPause is the short-pause unit flag of the voice model.
	ShortPause uint16 // byte offset 34-35
	// FixedPoint is 1 when values are fixed-point encoded, 0 for floating
	// point. Any other value is malformed.
	FixedPoint uint32 // byte offset 36-39
	// SamplesPerSec is the audio sampling rate.
	SamplesPerSec uint32 // byte offset 40-43
	// BitsPerSample is the audio sample width in bits.
	BitsPerSample uint32 // byte offset 44-47
	// SamplesPerFrame is the number of audio samples per analysis frame.
	SamplesPerFrame uint32 // byte offset 48-51
	// StateCount is the number of HMM states per model unit.
	StateCount uint32 // byte offset 52-55
	// Sections locates the artifact sections in fixed slot order
	// (questions, model, string pool, codebook, reserved...).
	Sections [SectionSlots]SectionRange // byte offset 56-127
	// Reserved is unused and written as zero.
	Reserved uint32 // byte offset 128-131
}

// NewFontHeader creates a FontHeader for the given artifact tag.
// Size and the section table are filled in when the writer finishes.
func NewFontHeader(tag Tag) *FontHeader {
	return &FontHeader{
		Tag:     tag,
		Version: FormatVersion,
	}
}

// Parse parses the header from a byte slice.
//
// Parameters:
//   - data: Byte slice containing the header (must be exactly 132 bytes)
//   - engine: Endian engine for byte order (the format is little-endian)
//
// Returns:
//   - error: ErrInvalidHeaderSize if data is not 132 bytes
func (h *FontHeader) Parse(data []byte, engine endian.EndianEngine) error {
	if len(data) != HeaderSize {
		return fmt.Errorf("%w: got %d bytes, want %d", errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	copy(h.Tag[:], data[0:4])
	copy(h.FormatID[:], data[4:20])
	h.Size = engine.Uint32(data[20:24])
	h.Version = engine.Uint32(data[24:28])
	h.Build = engine.Uint32(data[28:32])
	h.LangID = engine.Uint16(data[32:34])
	h.ShortPause = engine.Uint16(data[34:36])
	h.FixedPoint = engine.Uint32(data[36:40])
	h.SamplesPerSec = engine.Uint32(data[40:44])
	h.BitsPerSample = engine.Uint32(data[44:48])
	h.SamplesPerFrame = engine.Uint32(data[48:52])
	h.StateCount = engine.Uint32(data[52:56])

	pos := 56
	for i := range h.Sections {
		h.Sections[i].Offset = engine.Uint32(data[pos : pos+4])
		h.Sections[i].Size = engine.Uint32(data[pos+4 : pos+8])
		pos += 8
	}

	h.Reserved = engine.Uint32(data[128:132])

	return nil
}

// Bytes serializes the FontHeader into a 132-byte slice.
func (h *FontHeader) Bytes(engine endian.EndianEngine) []byte {
	b := make([]byte, HeaderSize)

	copy(b[0:4], h.Tag[:])
	copy(b[4:20], h.FormatID[:])
	engine.PutUint32(b[20:24], h.Size)
	engine.PutUint32(b[24:28], h.Version)
	engine.PutUint32(b[28:32], h.Build)
	engine.PutUint16(b[32:34], h.LangID)
	engine.PutUint16(b[34:36], h.ShortPause)
	engine.PutUint32(b[36:40], h.FixedPoint)
	engine.PutUint32(b[40:44], h.SamplesPerSec)
	engine.PutUint32(b[44:48], h.BitsPerSample)
	engine.PutUint32(b[48:52], h.SamplesPerFrame)
	engine.PutUint32(b[52:56], h.StateCount)

	pos := 56
	for i := range h.Sections {
		engine.PutUint32(b[pos:pos+4], h.Sections[i].Offset)
		engine.PutUint32(b[pos+4:pos+8], h.Sections[i].Size)
		pos += 8
	}

	engine.PutUint32(b[128:132], h.Reserved)

	return b
}

// Validate checks the parsed header against the expected artifact tag.
//
// A tag mismatch or a fixed-point flag outside {0, 1} marks the artifact
// malformed; both are fatal for the read.
func (h *FontHeader) Validate(expectedTag Tag) error {
	if h.Tag != expectedTag {
		return fmt.Errorf("%w: got %q, want %q", errs.ErrInvalidMagicTag, h.Tag.String(), expectedTag.String())
	}

	if h.FixedPoint > 1 {
		return fmt.Errorf("%w: fixed-point flag %d", errs.ErrInvalidFormatFlag, h.FixedPoint)
	}

	return nil
}

// ValidateSections checks that every non-empty section range lies inside the
// payload described by the Size field and does not wrap around.
func (h *FontHeader) ValidateSections() error {
	for slot, r := range h.Sections {
		if r.Size == 0 {
			continue
		}

		if uint64(r.Offset)+uint64(r.Size) > uint64(h.Size) {
			return fmt.Errorf("%w: section %d spans %d-%d beyond payload size %d",
				errs.ErrInvalidSectionRange, slot, r.Offset, r.End(), h.Size)
		}
	}

	return nil
}

// BytesPerFrame returns the size of one audio frame in bytes, derived from
// the sample width and frame length fields.
func (h *FontHeader) BytesPerFrame() int {
	return int(h.SamplesPerFrame) * int(h.BitsPerSample) / 8
}

// ParseFontHeader parses a FontHeader from the start of a byte slice.
//
// Parameters:
//   - data: Byte slice starting with a header (must be at least 132 bytes)
//   - engine: Endian engine for byte order
//
// Returns:
//   - FontHeader: Parsed header struct
//   - error: ErrInvalidHeaderSize if data is too short
func ParseFontHeader(data []byte, engine endian.EndianEngine) (FontHeader, error) {
	if len(data) < HeaderSize {
		return FontHeader{}, fmt.Errorf("%w: got %d bytes, want at least %d",
			errs.ErrInvalidHeaderSize, len(data), HeaderSize)
	}

	h := FontHeader{}
	if err := h.Parse(data[:HeaderSize], engine); err != nil {
		return FontHeader{}, err
	}

	return h, nil
}

// PutFloat32 stores a float32 into b using the engine's byte order.
func PutFloat32(b []byte, engine endian.EndianEngine, v float32) {
	engine.PutUint32(b, math.Float32bits(v))
}

// Float32 reads a float32 from b using the engine's byte order.
func Float32(b []byte, engine endian.EndianEngine) float32 {
	return math.Float32frombits(engine.Uint32(b))
}

// PutInt64 stores an int64 into b preserving the bit pattern.
func PutInt64(b []byte, engine endian.EndianEngine, v int64) {
	engine.PutUint64(b, *(*uint64)(unsafe.Pointer(&v)))
}

// Int64 reads an int64 from b preserving the bit pattern.
func Int64(b []byte, engine endian.EndianEngine) int64 {
	u := engine.Uint64(b)
	return *(*int64)(unsafe.Pointer(&u))
}
