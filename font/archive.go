package font

import (
	"fmt"
	"os"

	"github.com/arloliu/voicefont/compress"
	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/format"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/section"
)

// Archive frame layout (little-endian):
//
//	offset 0: magic "VFAR"            [4]byte
//	offset 4: frame version           u16
//	offset 6: compression type        u8
//	offset 7: reserved                u8
//	offset 8: uncompressed byte count u64
//	offset 16: compressed artifact payload
const (
	// ArchiveHeaderSize is the fixed archive frame header size in bytes.
	ArchiveHeaderSize = 16

	archiveVersion = 1
)

var archiveMagic = [4]byte{'V', 'F', 'A', 'R'}

type archiveConfig struct {
	engine endian.EndianEngine
	codec  format.CompressionType
}

// ArchiveOption represents a functional option for configuring an export.
type ArchiveOption = options.Option[*archiveConfig]

// WithArchiveCompression selects the archive compression codec.
// Zstd is the default; S2 and LZ4 trade ratio for speed, None disables
// compression entirely.
func WithArchiveCompression(c format.CompressionType) ArchiveOption {
	return options.NoError(func(cfg *archiveConfig) {
		cfg.codec = c
	})
}

// Export compresses a voice-font artifact file into an archive for
// distribution. Any artifact kind can be archived; the source must start
// with a parseable font header.
//
// Parameters:
//   - artifactPath: Source artifact file
//   - archivePath: Destination archive file, overwritten if present
//   - opts: Optional configuration (WithArchiveCompression)
//
// Returns:
//   - compress.CompressionStats: Original/compressed sizes and the codec used
//   - error: I/O errors, an unparseable source header, or codec errors
func Export(artifactPath, archivePath string, opts ...ArchiveOption) (compress.CompressionStats, error) {
	cfg := &archiveConfig{
		engine: endian.GetLittleEndianEngine(),
		codec:  format.CompressionZstd,
	}
	if err := options.Apply(cfg, opts...); err != nil {
		return compress.CompressionStats{}, err
	}

	data, err := os.ReadFile(artifactPath)
	if err != nil {
		return compress.CompressionStats{}, err
	}

	// Refuse to archive something that is not a voice-font artifact.
	if _, err := section.ParseFontHeader(data, cfg.engine); err != nil {
		return compress.CompressionStats{}, fmt.Errorf("%s: %w", artifactPath, err)
	}

	codec, err := compress.CreateCodec(cfg.codec, "archive")
	if err != nil {
		return compress.CompressionStats{}, err
	}

	compressed, err := codec.Compress(data)
	if err != nil {
		return compress.CompressionStats{}, fmt.Errorf("compress %s: %w", artifactPath, err)
	}

	frame := make([]byte, 0, ArchiveHeaderSize+len(compressed))
	frame = append(frame, archiveMagic[:]...)
	frame = cfg.engine.AppendUint16(frame, archiveVersion)
	frame = append(frame, byte(cfg.codec), 0)
	frame = cfg.engine.AppendUint64(frame, uint64(len(data)))
	frame = append(frame, compressed...)

	if err := os.WriteFile(archivePath, frame, 0o644); err != nil {
		return compress.CompressionStats{}, err
	}

	return compress.CompressionStats{
		Algorithm:      cfg.codec,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(compressed)),
	}, nil
}

// Import extracts an archived artifact back into its original file form.
//
// The frame magic, version, codec and declared uncompressed size are all
// verified, and the extracted bytes must start with a parseable font header;
// violations are reported as errs.ErrInvalidArchive.
//
// Parameters:
//   - archivePath: Source archive file
//   - artifactPath: Destination artifact file, overwritten if present
//
// Returns:
//   - compress.CompressionStats: Sizes and codec recovered from the frame
//   - error: I/O errors or errs.ErrInvalidArchive
func Import(archivePath, artifactPath string) (compress.CompressionStats, error) {
	engine := endian.GetLittleEndianEngine()

	frame, err := os.ReadFile(archivePath)
	if err != nil {
		return compress.CompressionStats{}, err
	}

	if len(frame) < ArchiveHeaderSize {
		return compress.CompressionStats{}, fmt.Errorf("%w: frame of %d bytes, header needs %d",
			errs.ErrInvalidArchive, len(frame), ArchiveHeaderSize)
	}
	if [4]byte(frame[0:4]) != archiveMagic {
		return compress.CompressionStats{}, fmt.Errorf("%w: bad magic %q", errs.ErrInvalidArchive, frame[0:4])
	}
	if v := engine.Uint16(frame[4:6]); v != archiveVersion {
		return compress.CompressionStats{}, fmt.Errorf("%w: unsupported frame version %d", errs.ErrInvalidArchive, v)
	}

	codecType := format.CompressionType(frame[6])
	originalSize := engine.Uint64(frame[8:16])

	codec, err := compress.CreateCodec(codecType, "archive")
	if err != nil {
		return compress.CompressionStats{}, fmt.Errorf("%w: %s", errs.ErrInvalidArchive, err)
	}

	data, err := codec.Decompress(frame[ArchiveHeaderSize:])
	if err != nil {
		return compress.CompressionStats{}, fmt.Errorf("%w: decompress: %s", errs.ErrInvalidArchive, err)
	}

	if uint64(len(data)) != originalSize {
		return compress.CompressionStats{}, fmt.Errorf("%w: frame declares %d uncompressed bytes, got %d",
			errs.ErrInvalidArchive, originalSize, len(data))
	}
	if _, err := section.ParseFontHeader(data, engine); err != nil {
		return compress.CompressionStats{}, fmt.Errorf("%w: extracted payload: %s", errs.ErrInvalidArchive, err)
	}

	if err := os.WriteFile(artifactPath, data, 0o644); err != nil {
		return compress.CompressionStats{}, err
	}

	return compress.CompressionStats{
		Algorithm:      codecType,
		OriginalSize:   int64(len(data)),
		CompressedSize: int64(len(frame) - ArchiveHeaderSize),
	}, nil
}
