package wave

import (
	"fmt"
	"math"
	"os"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/section"
)

// BlockSize is the waveform compression block size in bytes. Split segment
// boundaries must land on a multiple of it, so the splitter pads short
// segments with zero frames.
const BlockSize = 640

type readConfig struct {
	engine endian.EndianEngine
	strict bool
}

func newReadConfig() *readConfig {
	return &readConfig{engine: endian.GetLittleEndianEngine()}
}

// ReadOption represents a functional option for configuring a read.
type ReadOption = options.Option[*readConfig]

// WithStrict requires the header size field to equal the actual payload
// length instead of tolerating legacy trailing bytes.
func WithStrict() ReadOption {
	return options.NoError(func(c *readConfig) {
		c.strict = true
	})
}

// Stream is a compressed waveform stream artifact: a font header followed by
// opaque fixed-size compressed frames. The frame size in bytes comes from
// the header's audio fields.
type Stream struct {
	// Header is the artifact font header.
	Header section.FontHeader
	// Frames holds the concatenated compressed frame bytes.
	Frames []byte
}

// NewStream wraps frame bytes in a stream carrying the given header
// metadata. The artifact tag and size field are owned by serialization and
// overwritten there.
func NewStream(header section.FontHeader, frames []byte) *Stream {
	header.Tag = section.TagWaveStream
	header.Size = 0
	if header.Version == 0 {
		header.Version = section.FormatVersion
	}

	return &Stream{Header: header, Frames: frames}
}

// BytesPerFrame returns the size of one compressed frame in bytes.
func (s *Stream) BytesPerFrame() int {
	return s.Header.BytesPerFrame()
}

// FrameCount returns the number of whole frames in the stream, or zero when
// the header's audio fields do not define a frame size.
func (s *Stream) FrameCount() int {
	bpf := s.BytesPerFrame()
	if bpf <= 0 {
		return 0
	}

	return len(s.Frames) / bpf
}

// FrameRange returns the byte slice backing count frames starting at frame
// first. The slice aliases the stream's buffer.
//
// Returns:
//   - []byte: Frame bytes, count*BytesPerFrame long
//   - error: errs.ErrInvalidFrameRange when the range falls outside the
//     stream or the header defines no frame size
func (s *Stream) FrameRange(first, count uint32) ([]byte, error) {
	bpf := s.BytesPerFrame()
	if bpf <= 0 {
		return nil, fmt.Errorf("%w: stream frame size is %d bytes", errs.ErrInvalidFrameRange, bpf)
	}

	end := (uint64(first) + uint64(count)) * uint64(bpf)
	if end > uint64(len(s.Frames)) {
		return nil, fmt.Errorf("%w: frames %d-%d end at byte %d, stream has %d",
			errs.ErrInvalidFrameRange, first, first+count, end, len(s.Frames))
	}

	return s.Frames[uint64(first)*uint64(bpf) : end], nil
}

// Bytes serializes the stream artifact: font header with the size field set
// to the frame byte count, then the frames.
func (s *Stream) Bytes(engine endian.EndianEngine) []byte {
	header := s.Header
	header.Tag = section.TagWaveStream
	header.Size = uint32(len(s.Frames)) //nolint:gosec // WriteFile guards the 32-bit bound

	b := make([]byte, 0, section.HeaderSize+len(s.Frames))
	b = append(b, header.Bytes(engine)...)

	return append(b, s.Frames...)
}

// WriteFile writes the stream artifact to path, overwriting it if present.
//
// Returns:
//   - error: errs.ErrSizeMismatch when the frame bytes exceed the 32-bit
//     header size field, or the file write error
func (s *Stream) WriteFile(path string) error {
	if int64(len(s.Frames)) > math.MaxUint32 {
		return fmt.Errorf("%w: %d frame bytes exceed the 32-bit header size field",
			errs.ErrSizeMismatch, len(s.Frames))
	}

	return os.WriteFile(path, s.Bytes(endian.GetLittleEndianEngine()), 0o644)
}

// ReadStream reads a "VFWV" waveform stream artifact from disk.
//
// Parameters:
//   - path: Stream artifact path
//   - opts: Optional read behavior (WithStrict)
//
// Returns:
//   - *Stream: Decoded stream
//   - error: I/O errors or malformed-data errors
func ReadStream(path string, opts ...ReadOption) (*Stream, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	s, err := ParseStream(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return s, nil
}

// ParseStream decodes a complete stream artifact from memory. The frame
// bytes alias data.
func ParseStream(data []byte, opts ...ReadOption) (*Stream, error) {
	cfg := newReadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	header, err := section.ParseFontHeader(data, cfg.engine)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(section.TagWaveStream); err != nil {
		return nil, err
	}

	payload, err := checkPayloadSize(data[section.HeaderSize:], header.Size, cfg)
	if err != nil {
		return nil, err
	}

	return &Stream{Header: header, Frames: payload}, nil
}

// checkPayloadSize reconciles the header size field with the actual payload
// length. Strict mode demands equality; the default mode trims trailing
// bytes beyond the declared size and tolerates a short payload.
func checkPayloadSize(payload []byte, declared uint32, cfg *readConfig) ([]byte, error) {
	actual := len(payload)

	if cfg.strict && actual != int(declared) {
		return nil, fmt.Errorf("%w: header declares %d payload bytes, file has %d",
			errs.ErrSizeMismatch, declared, actual)
	}

	if actual > int(declared) {
		payload = payload[:declared]
	}

	return payload, nil
}
