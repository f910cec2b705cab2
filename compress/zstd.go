package compress

// ZstdCompressor provides Zstandard compression for voice-font payloads.
//
// This compressor is designed for scenarios where compression ratio is more important
// than compression speed, making it ideal for:
//   - Distribution packages shipped to devices
//   - Long-term storage of built fonts
//   - Network transmission where bandwidth is limited
//   - Text-heavy sections such as question sets and string pools
//
// Two implementations exist behind the same type:
//   - Default: pure-Go klauspost/compress/zstd with pooled encoders/decoders
//   - Build with -tags gozstd: cgo-backed valyala/gozstd bindings
type ZstdCompressor struct{}

var _ Codec = (*ZstdCompressor)(nil)

// NewZstdCompressor creates a new Zstd compressor with default settings.
//
// Returns:
//   - ZstdCompressor: New Zstd compressor instance
//
// Example:
//
//	compressor := NewZstdCompressor()
//	compressed, err := compressor.Compress(data)
//	if err != nil {
//		return err
//	}
func NewZstdCompressor() ZstdCompressor {
	return ZstdCompressor{}
}
