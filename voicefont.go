// Package voicefont provides a compact binary serialization format for
// voice-font artifacts used by concatenative and statistical TTS runtimes.
//
// A voice font bundles everything a synthesis engine needs to load at startup:
// the question schema driving decision-tree traversal, quantized acoustic
// model tables, and a deduplicated string pool, all behind a fixed 132-byte
// header with per-section checksums and a four-character type tag.
//
// # Core Features
//
//   - Tagged little-endian artifacts ("VFNT" fonts, "VFDT" table containers,
//     "VFWV"/"VFWI" wave streams and indexes) sharing one header layout
//   - Linear quantization of float32 feature tables at 1-32 bits per value
//   - Row/column index maps for tables shared across model states
//   - Hash-verified string interning with stable uint32 pool indices
//   - Question schema storage with equal/in/less/greater operators
//   - Strict read mode rejecting size mismatches and truncated sections
//   - Whole-artifact archive compression (Zstd, S2, LZ4)
//
// # Basic Usage
//
// Writing a quantized table container:
//
//	import "github.com/arloliu/voicefont"
//
//	w, _ := voicefont.NewTableWriter("model.vfdt", 1)
//	t := &table.Table{
//	    Key:    table.Key{int32(format.KindLPCC)},
//	    Rows:   4,
//	    Cols:   25,
//	    Values: coefficients,
//	}
//	_ = w.Add(t, table.Setting{Bits: 8, Scale: 0.004})
//	_ = w.Close()
//
// Reading it back with decoded values:
//
//	f, _ := voicefont.ReadTables("model.vfdt", table.WithDecode())
//	t, s, ok := f.Table(table.Key{int32(format.KindLPCC)})
//
// Opening a complete voice font:
//
//	font, _ := voicefont.OpenFontStrict("voice.vfnt")
//	id, ok := voicefont.StringID(font, "C-Phone_Vowel")
//
// # Package Structure
//
// This package provides convenient top-level wrappers around the font and
// table packages, simplifying the most common use cases. For fine-grained
// control, use the subpackages directly:
//
//   - font: voice-font assembly, parsing, and archive export/import
//   - table: quantized table containers and single-table artifacts
//   - wave: wave stream and sentence index artifacts
//   - postedit: sentence-boundary splitting of recorded wave streams
//   - builder: manifest-driven font builds for the vfont CLI
package voicefont

import (
	"github.com/arloliu/voicefont/compress"
	"github.com/arloliu/voicefont/font"
	"github.com/arloliu/voicefont/table"
)

var defaultOpenOptions = []font.ReadOption{
	font.WithStrict(),
	font.WithDecode(),
}

// NewTableWriter creates a streaming writer for a multi-table container
// artifact at path.
//
// Tables are appended with Add or AddQuantized and the artifact is finalized
// by Close, which seals the header with the payload size and section ranges.
// All tables in one container share the same key length.
//
// Parameters:
//   - path: Destination file path (created or truncated)
//   - keyLength: Number of int32 components in every table key (1 for
//     kind-keyed acoustic tables, 2 for left/right concatenation cost pairs)
//   - opts: Optional configuration functions (see table.WriterOption)
//
// Returns:
//   - *table.Writer: The created container writer.
//   - error: An error if the writer cannot be created.
//
// Available options:
//   - table.WithHeader(h) to carry font identity fields (GUID, build, language)
//     into the container header
//
// Example:
//
//	w, err := voicefont.NewTableWriter("model.vfdt", 1)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = w.Add(lpccTable, table.Setting{Bits: 8, Scale: 0.004})
//	err = w.Close()
func NewTableWriter(path string, keyLength int, opts ...table.WriterOption) (*table.Writer, error) {
	return table.NewWriter(path, keyLength, opts...)
}

// ReadTables reads a multi-table container artifact from path.
//
// By default parsing is lenient and lazy: table values stay in their packed
// on-disk form, and size disagreements legacy tools produce are tolerated.
// Options tighten this:
//
//   - table.WithStrict() rejects size mismatches, trailing bytes, and
//     truncated trailing tables
//   - table.WithDecode() dequantizes every table into float32 values
//
// Parameters:
//   - path: Container artifact path (tag "VFDT")
//
// Returns:
//   - *table.File: The parsed container with key-indexed table access.
//   - error: An error if the artifact is malformed.
//
// Example:
//
//	f, err := voicefont.ReadTables("model.vfdt", table.WithDecode())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	t, setting, ok := f.Table(table.Key{int32(format.KindLPCC)})
func ReadTables(path string, opts ...table.ReadOption) (*table.File, error) {
	return table.ReadFile(path, opts...)
}

// ReadTable reads a single-table artifact from path.
//
// Single-table artifacts (tag "VFAD") carry exactly one table with its
// quantization setting and no key directory. They are produced for auxiliary
// per-sentence data such as pitch markers or frame gains.
//
// Parameters:
//   - path: Single-table artifact path
//   - opts: Optional configuration functions (see table.ReadOption)
//
// Returns:
//   - *table.SingleFile: The parsed artifact.
//   - error: An error if the artifact is malformed.
//
// Example:
//
//	sf, err := voicefont.ReadTable("sentence_0042.gain", table.WithDecode())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d rows of %d values\n", sf.Table.Rows, sf.Table.Cols)
func ReadTable(path string, opts ...table.ReadOption) (*table.SingleFile, error) {
	return table.ReadSingle(path, opts...)
}

// OpenFont opens a voice-font artifact with custom options.
//
// This is the most flexible entry point: by default sections are located and
// bounds-checked but model tables are not decoded, and size disagreements
// legacy tools produce are tolerated. Use it when you want lazy access to
// packed table payloads, or when loading fonts from trusted local builds.
//
// Parameters:
//   - path: Voice-font artifact path (tag "VFNT")
//   - opts: Optional configuration functions (see font.ReadOption)
//
// Returns:
//   - *font.Font: The opened font.
//   - error: An error if the artifact is malformed.
//
// Available options:
//   - font.WithStrict() to reject size mismatches and truncation
//   - font.WithDecode() to decode the model tables into float32 values
//
// For the common checked-and-decoded case, use OpenFontStrict instead.
func OpenFont(path string, opts ...font.ReadOption) (*font.Font, error) {
	return font.Open(path, opts...)
}

// OpenFontStrict opens a voice-font artifact with recommended settings.
//
// This is the recommended entry point for synthesis runtimes loading a font
// at startup. It rejects artifacts whose declared sizes disagree with their
// actual bytes and fully decodes every model table, so truncation and
// malformed sections surface at load time rather than mid-synthesis.
//
// Parameters:
//   - path: Voice-font artifact path (tag "VFNT")
//
// Returns:
//   - *font.Font: The verified, fully decoded font.
//   - error: An error if the artifact is malformed or sizes disagree.
//
// Example:
//
//	f, err := voicefont.OpenFontStrict("voice.vfnt")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("build %d, %d questions\n", f.Header.Build, f.Questions.Count())
func OpenFontStrict(path string) (*font.Font, error) {
	return font.Open(path, defaultOpenOptions...)
}

// ParseFont parses a voice-font artifact from memory.
//
// Equivalent to OpenFont for fonts already loaded into a byte slice, such as
// fonts embedded in a binary or fetched from remote storage.
//
// Parameters:
//   - data: The raw artifact bytes
//   - opts: Optional configuration functions (see font.ReadOption)
//
// Returns:
//   - *font.Font: The parsed font.
//   - error: An error if the artifact is malformed.
func ParseFont(data []byte, opts ...font.ReadOption) (*font.Font, error) {
	return font.Parse(data, opts...)
}

// ExportFont compresses a voice-font artifact into a distribution archive.
//
// The archive wraps the artifact bytes in a compressed envelope carrying the
// codec identifier and the original size, so Import can restore the exact
// artifact without guessing the codec.
//
// Parameters:
//   - artifactPath: Source artifact path
//   - archivePath: Destination archive path
//   - opts: Optional configuration functions (see font.ArchiveOption)
//
// Returns:
//   - compress.CompressionStats: Original and compressed sizes plus codec.
//   - error: An error if the artifact cannot be read or the archive written.
//
// Available options:
//   - font.WithArchiveCompression(format.CompressionZstd|S2|LZ4|None)
//
// Example:
//
//	stats, err := voicefont.ExportFont("voice.vfnt", "voice.vfa",
//	    font.WithArchiveCompression(format.CompressionZstd),
//	)
//	fmt.Printf("saved %.0f%%\n", stats.SpaceSavings())
func ExportFont(artifactPath, archivePath string, opts ...font.ArchiveOption) (compress.CompressionStats, error) {
	return font.Export(artifactPath, archivePath, opts...)
}

// ImportFont restores a voice-font artifact from a distribution archive.
//
// The codec is read from the archive envelope; the restored artifact is
// byte-identical to the exported one.
//
// Parameters:
//   - archivePath: Source archive path
//   - artifactPath: Destination artifact path
//
// Returns:
//   - compress.CompressionStats: Sizes and codec recorded in the archive.
//   - error: An error if the archive is malformed or the artifact unwritable.
func ImportFont(archivePath, artifactPath string) (compress.CompressionStats, error) {
	return font.Import(archivePath, artifactPath)
}

// StringID resolves a string to its pool index in an opened font.
//
// Pool indices are assigned in interning order at build time and are stable
// for the lifetime of the artifact, so engines can resolve schema strings
// once at load and compare indices afterwards. A font without a string pool
// section misses every lookup.
//
// Parameters:
//   - f: An opened voice font
//   - s: The string to resolve
//
// Returns:
//   - uint32: The pool index of s.
//   - bool: Whether s is present in the pool.
//
// Example:
//
//	f, _ := voicefont.OpenFontStrict("voice.vfnt")
//	id, ok := voicefont.StringID(f, "C-Phone_Vowel")
//	if !ok {
//	    log.Fatal("schema string missing from pool")
//	}
func StringID(f *font.Font, s string) (uint32, bool) {
	return f.StringID(s)
}
