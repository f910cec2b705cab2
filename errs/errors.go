// Package errs defines the sentinel errors shared across the voicefont
// library. Callers match them with errors.Is; packages wrap them with
// fmt.Errorf("%w: ...") to attach context.
//
// Two families exist:
//
//   - Malformed-data errors: the bytes on disk violate the voice-font
//     format (bad magic tag, impossible offsets, truncated sections).
//     These are fatal for the artifact being read.
//   - Contract errors: the caller misused an API (duplicate key, closed
//     writer, out-of-range bit width). These indicate a bug in the
//     calling build pipeline, not a corrupt file.
package errs

import "errors"

// Malformed-data errors.
var (
	// ErrInvalidHeaderSize indicates the byte slice given to a header
	// parser is not exactly the fixed header size.
	ErrInvalidHeaderSize = errors.New("invalid header size")

	// ErrInvalidMagicTag indicates the 4-byte artifact tag does not match
	// the tag expected for the artifact kind being opened.
	ErrInvalidMagicTag = errors.New("invalid magic tag")

	// ErrInvalidFormatFlag indicates a header flag field holds a value
	// outside its defined set (for example a fixed-point flag that is
	// neither 0 nor 1).
	ErrInvalidFormatFlag = errors.New("invalid format flag")

	// ErrInvalidSectionRange indicates a section offset/size pair points
	// outside the artifact payload.
	ErrInvalidSectionRange = errors.New("invalid section range")

	// ErrInvalidIndexEntry indicates an index entry is malformed: a table
	// entry whose offset/size range does not fit the data section, or a
	// waveform sentence entry out of sorted order.
	ErrInvalidIndexEntry = errors.New("invalid index entry")

	// ErrTruncatedData indicates the artifact ends before a structure the
	// index or a header promised. Container reads tolerate a truncated
	// trailing table in the default lenient mode and report it only under
	// WithStrict; section parsers always report it.
	ErrTruncatedData = errors.New("truncated data")

	// ErrSizeMismatch indicates the header size field disagrees with the
	// actual number of bytes following the header.
	ErrSizeMismatch = errors.New("header size mismatch")

	// ErrInvalidTableBody indicates a table body's self-describing fields
	// (attributes, shape, map counts) are inconsistent with its byte size.
	ErrInvalidTableBody = errors.New("invalid table body")

	// ErrInvalidStringPool indicates string pool offsets are out of order
	// or point outside the pool blob.
	ErrInvalidStringPool = errors.New("invalid string pool")

	// ErrInvalidQuestionSet indicates the question section ends inside a
	// question record or declares an impossible count.
	ErrInvalidQuestionSet = errors.New("invalid question set")

	// ErrInvalidArchive indicates a font archive frame is malformed or was
	// produced with an unknown compression codec.
	ErrInvalidArchive = errors.New("invalid archive")
)

// Contract errors.
var (
	// ErrDuplicateKey indicates Add was called with a key already present
	// in the container. The container index is left unchanged.
	ErrDuplicateKey = errors.New("duplicate table key")

	// ErrInvalidKeyLength indicates a key does not match the fixed key
	// length the container was opened with.
	ErrInvalidKeyLength = errors.New("invalid key length")

	// ErrInvalidBitWidth indicates a quantization bit width outside 1..32.
	ErrInvalidBitWidth = errors.New("invalid bit width")

	// ErrEmptyValues indicates a pack or quantize call with no values.
	ErrEmptyValues = errors.New("empty values")

	// ErrShortBuffer indicates a packed bitstream holds fewer values than
	// the caller asked to unpack.
	ErrShortBuffer = errors.New("packed buffer too short")

	// ErrEmptyTable indicates a table with a zero row or column count was
	// given to the writer without pre-encoded bytes.
	ErrEmptyTable = errors.New("empty table")

	// ErrShapeMismatch indicates table dimensions disagree with the value
	// count or with the attached row/column maps.
	ErrShapeMismatch = errors.New("table shape mismatch")

	// ErrWriterClosed indicates Add or Close was called on a writer that
	// is not open.
	ErrWriterClosed = errors.New("writer not opened")

	// ErrStringCollision indicates two distinct strings hashed to the same
	// pool ID. The pool falls back to a full comparison and reports the
	// collision instead of silently merging the strings.
	ErrStringCollision = errors.New("string pool hash collision")

	// ErrStringTooLong indicates a string exceeds the 16-bit length prefix
	// used by question names, operands and sentence identifiers.
	ErrStringTooLong = errors.New("string exceeds length prefix")

	// ErrInvalidFrameRange indicates a frame edit references frames
	// outside the table or stream being edited.
	ErrInvalidFrameRange = errors.New("invalid frame range")

	// ErrInvalidBlockSize indicates the waveform bytes-per-frame does not
	// divide the fixed compression block size, so block alignment cannot
	// be expressed in whole frames.
	ErrInvalidBlockSize = errors.New("invalid block size")

	// ErrInvalidSegment indicates the cumulative per-segment sentence
	// counts given to the splitter are not strictly increasing or do not
	// end at the index's sentence count.
	ErrInvalidSegment = errors.New("invalid segment boundaries")

	// ErrStageExists indicates a build stage name was registered twice.
	ErrStageExists = errors.New("build stage already registered")

	// ErrStageUnknown indicates a requested build stage was never
	// registered.
	ErrStageUnknown = errors.New("unknown build stage")
)
