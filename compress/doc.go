// Package compress provides compression and decompression codecs for voice-font payloads.
//
// This package offers multiple compression algorithms optimized for the different
// payload kinds a voice font produces. Compression is applied at the artifact level
// when packaging fonts into archives, providing space savings beyond what the
// quantized table encoding already achieves.
//
// # Overview
//
// A voice font reaches disk through a two-stage pipeline:
//
//  1. **Encoding**: Tables are quantized into bit-packed codes, strings are
//     interned into pools, wave data is framed into blocks
//  2. **Compression**: Whole artifacts are further reduced using general-purpose
//     algorithms when exported into an archive
//
// The compress package implements the second stage, supporting multiple algorithms:
//   - None: No compression (fastest, largest)
//   - Zstd: Excellent compression ratio, moderate speed
//   - S2: Balanced compression and speed
//   - LZ4: Fast decompression, moderate compression
//
// # Architecture
//
// The package defines three core interfaces:
//
//	type Compressor interface {
//	    Compress(data []byte) ([]byte, error)
//	}
//
//	type Decompressor interface {
//	    Decompress(data []byte) ([]byte, error)
//	}
//
//	type Codec interface {
//	    Compressor
//	    Decompressor
//	}
//
// # Algorithm Selection Guide
//
// **Choose based on workload**:
//
// | Workload Type            | Recommended | Reason                              |
// |--------------------------|-------------|-------------------------------------|
// | Distribution packages    | Zstd        | Best compression ratio              |
// | Build pipeline scratch   | S2          | Balanced speed and compression      |
// | On-device extraction     | LZ4         | Fastest decompression               |
// | Already-packed tables    | None        | Little to gain, no CPU overhead     |
//
// **Choose based on payload kind**:
//
// | Payload Kind             | Recommended | Typical Ratio                  |
// |--------------------------|-------------|--------------------------------|
// | Question sets, pools     | Zstd        | 3-5x                           |
// | Quantized tables         | S2          | 1.2-1.8x                       |
// | Raw float tables         | Zstd        | 2-3x                           |
// | Wave streams             | LZ4         | 1.3-2x                         |
//
// Tightly quantized tables are already near their entropy limit, so the win from
// compressing them is modest. Text-heavy sections (question sets, string pools)
// and raw float tables compress very well.
//
// # Memory Management
//
// Codec implementations reuse internal encoder/decoder state through pools to
// minimize allocations. Returned slices are always newly allocated and owned by
// the caller, except for the no-op codec which passes the input through.
//
// # Thread Safety
//
// All codec implementations are thread-safe and can be safely shared across
// goroutines. The pooled implementations (Zstd, LZ4) hand each goroutine its own
// encoder instance, so there is no lock contention on the hot path.
//
// # Error Handling
//
// Compression errors are rare but can occur:
//   - Input too large (exceeds algorithm limits)
//   - Memory allocation failure
//
// Decompression errors are more common:
//   - Corrupted compressed data
//   - Invalid compression format
//   - Decompressed size exceeds limits
//
// All errors are wrapped with context for debugging.
//
// # Integration with the Font Package
//
// The font package uses this package when exporting and importing archives.
// Configure compression via archive options:
//
//	stats, err := font.Export(fontPath, archivePath,
//	    font.WithArchiveCompression(format.CompressionZstd),
//	)
//
// Importers automatically detect and use the correct decompression algorithm
// based on the archive frame header.
//
// # Advanced Usage
//
// For custom compression needs, implement the Compressor/Decompressor interfaces:
//
//	type MyCodec struct{}
//
//	func (c *MyCodec) Compress(data []byte) ([]byte, error) {
//	    // Custom compression logic
//	    return compressedData, nil
//	}
//
//	func (c *MyCodec) Decompress(data []byte) ([]byte, error) {
//	    // Custom decompression logic
//	    return originalData, nil
//	}
package compress
