package wave

import (
	"fmt"
	"math"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/section"
)

// Entry locates one sentence's frames inside a waveform stream.
type Entry struct {
	// ID is the sentence identifier.
	ID string
	// FirstFrame is the sentence's first frame index in the stream.
	FirstFrame uint32
	// FrameCount is the number of frames the sentence spans.
	FrameCount uint32
}

// End returns the frame index one past the sentence's last frame.
func (e Entry) End() uint64 {
	return uint64(e.FirstFrame) + uint64(e.FrameCount)
}

// Index is the waveform sentence index side table ("VFWI"): per-sentence
// frame ranges sorted by sentence identifier.
//
// Entries stay sorted at all times; Add inserts in order and Lookup binary
// searches. Equal identifiers keep their insertion order.
type Index struct {
	// Header is the artifact font header.
	Header section.FontHeader
	// Entries holds the sentence records in identifier order.
	Entries []Entry
}

// NewIndex creates an empty sentence index.
func NewIndex() *Index {
	return &Index{Header: *section.NewFontHeader(section.TagWaveIndex)}
}

// Add records a sentence's frame range, inserted at its sorted position.
//
// Returns:
//   - error: errs.ErrStringTooLong when the identifier exceeds the 16-bit
//     length prefix
func (x *Index) Add(id string, firstFrame, frameCount uint32) error {
	if err := section.CheckString16(id); err != nil {
		return fmt.Errorf("sentence %q: %w", id, err)
	}

	pos := sort.Search(len(x.Entries), func(i int) bool {
		return x.Entries[i].ID > id
	})
	x.Entries = slices.Insert(x.Entries, pos, Entry{ID: id, FirstFrame: firstFrame, FrameCount: frameCount})

	return nil
}

// Lookup returns the entry for the given sentence identifier.
func (x *Index) Lookup(id string) (Entry, bool) {
	pos, ok := slices.BinarySearchFunc(x.Entries, id, func(e Entry, target string) int {
		return strings.Compare(e.ID, target)
	})
	if !ok {
		return Entry{}, false
	}

	return x.Entries[pos], true
}

// Count returns the number of sentences in the index.
func (x *Index) Count() int {
	return len(x.Entries)
}

// TotalFrames returns the highest frame index any entry reaches.
func (x *Index) TotalFrames() uint64 {
	var total uint64
	for _, e := range x.Entries {
		if e.End() > total {
			total = e.End()
		}
	}

	return total
}

// ShiftFrom adds delta to the first-frame reference of every entry whose
// range starts at or after frameStart. Structural editors use it to
// propagate inserted fill frames to later sentences.
func (x *Index) ShiftFrom(frameStart, delta uint32) {
	for i := range x.Entries {
		if x.Entries[i].FirstFrame >= frameStart {
			x.Entries[i].FirstFrame += delta
		}
	}
}

// Validate checks that every entry's frame range lies inside a stream of
// totalFrames frames.
//
// Returns:
//   - error: errs.ErrInvalidFrameRange naming the first offending sentence
func (x *Index) Validate(totalFrames uint64) error {
	for _, e := range x.Entries {
		if e.End() > totalFrames {
			return fmt.Errorf("%w: sentence %q spans frames %d-%d, stream has %d",
				errs.ErrInvalidFrameRange, e.ID, e.FirstFrame, e.End(), totalFrames)
		}
	}

	return nil
}

// payloadSize returns the serialized payload size in bytes.
func (x *Index) payloadSize() int {
	size := 4
	for _, e := range x.Entries {
		size += section.String16Size(e.ID) + 8
	}

	return size
}

// Bytes serializes the index artifact: font header, entry count, then the
// entries in identifier order.
func (x *Index) Bytes(engine endian.EndianEngine) []byte {
	payloadSize := x.payloadSize()

	header := x.Header
	header.Tag = section.TagWaveIndex
	header.Size = uint32(payloadSize) //nolint:gosec // WriteFile guards the 32-bit bound
	if header.Version == 0 {
		header.Version = section.FormatVersion
	}

	b := make([]byte, 0, section.HeaderSize+payloadSize)
	b = append(b, header.Bytes(engine)...)
	b = engine.AppendUint32(b, uint32(len(x.Entries))) //nolint:gosec // bounded by memory
	for _, e := range x.Entries {
		b = section.AppendString16(b, engine, e.ID)
		b = engine.AppendUint32(b, e.FirstFrame)
		b = engine.AppendUint32(b, e.FrameCount)
	}

	return b
}

// WriteFile writes the index artifact to path, overwriting it if present.
func (x *Index) WriteFile(path string) error {
	if int64(x.payloadSize()) > math.MaxUint32 {
		return fmt.Errorf("%w: %d payload bytes exceed the 32-bit header size field",
			errs.ErrSizeMismatch, x.payloadSize())
	}

	return os.WriteFile(path, x.Bytes(endian.GetLittleEndianEngine()), 0o644)
}

// ReadIndex reads a "VFWI" sentence index artifact from disk.
//
// Parameters:
//   - path: Index artifact path
//   - opts: Optional read behavior (WithStrict)
//
// Returns:
//   - *Index: Decoded index
//   - error: I/O errors or malformed-data errors
func ReadIndex(path string, opts ...ReadOption) (*Index, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	x, err := ParseIndex(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return x, nil
}

// ParseIndex decodes a complete index artifact from memory.
//
// Entries must be sorted by identifier on disk; an out-of-order entry is a
// malformed artifact. Trailing bytes after the last entry are tolerated in
// the default mode (legacy terminator padding) and reported under WithStrict.
func ParseIndex(data []byte, opts ...ReadOption) (*Index, error) {
	cfg := newReadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	header, err := section.ParseFontHeader(data, cfg.engine)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(section.TagWaveIndex); err != nil {
		return nil, err
	}

	payload, err := checkPayloadSize(data[section.HeaderSize:], header.Size, cfg)
	if err != nil {
		return nil, err
	}

	if len(payload) < 4 {
		return nil, fmt.Errorf("%w: index payload of %d bytes, count needs 4",
			errs.ErrTruncatedData, len(payload))
	}

	count := int(cfg.engine.Uint32(payload))
	x := &Index{
		Header:  header,
		Entries: make([]Entry, 0, min(count, 4096)),
	}

	pos := 4
	for i := range count {
		id, n, err := section.String16(payload[pos:], cfg.engine)
		if err != nil {
			return nil, fmt.Errorf("sentence %d id: %w", i, err)
		}
		pos += n

		if len(payload)-pos < 8 {
			return nil, fmt.Errorf("%w: sentence %d frame fields need 8 bytes, have %d",
				errs.ErrTruncatedData, i, len(payload)-pos)
		}

		entry := Entry{
			ID:         id,
			FirstFrame: cfg.engine.Uint32(payload[pos:]),
			FrameCount: cfg.engine.Uint32(payload[pos+4:]),
		}
		pos += 8

		if i > 0 && entry.ID < x.Entries[i-1].ID {
			return nil, fmt.Errorf("%w: sentence %q out of order after %q",
				errs.ErrInvalidIndexEntry, entry.ID, x.Entries[i-1].ID)
		}

		x.Entries = append(x.Entries, entry)
	}

	if cfg.strict && pos != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes after %d entries",
			errs.ErrInvalidIndexEntry, len(payload)-pos, count)
	}

	return x, nil
}
