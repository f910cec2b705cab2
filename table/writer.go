package table

import (
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"slices"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/internal/pool"
	"github.com/arloliu/voicefont/quant"
	"github.com/arloliu/voicefont/section"
)

// Writer serializes a keyed data-table container to a "VFDT" artifact file.
//
// Encoded table bodies are spooled to a scratch file next to the destination
// while the index grows in memory; Close assembles font header, container
// sub-header, index and the spooled bodies into the destination file and
// removes the scratch file.
//
// A Writer is single use: after Close (successful or not) all methods fail
// with errs.ErrWriterClosed. It is not safe for concurrent use.
type Writer struct {
	engine      endian.EndianEngine
	path        string
	header      section.FontHeader
	keyLength   int
	scratch     *os.File
	scratchSize int64
	entries     []section.TableIndexEntry
	used        map[string]struct{}
}

// WriterOption represents a functional option for configuring a Writer.
type WriterOption = options.Option[*Writer]

// WithHeader seeds the container's font header with the caller's metadata
// (format GUID, build, audio parameters). The artifact tag and size field
// are owned by the writer and overwritten on Close.
func WithHeader(h section.FontHeader) WriterOption {
	return options.NoError(func(w *Writer) {
		tag := w.header.Tag
		h.Tag = tag
		h.Size = 0
		if h.Version == 0 {
			h.Version = section.FormatVersion
		}
		w.header = h
	})
}

// NewWriter creates a container writer for the given destination path and
// fixed key length.
//
// The scratch file is created immediately in the destination directory, so a
// failure to create it surfaces here rather than at the first Add.
//
// Parameters:
//   - path: Destination artifact path, created on Close
//   - keyLength: Fixed number of int32 components per table key (>= 0)
//   - opts: Optional configuration (header metadata)
//
// Returns:
//   - *Writer: Open writer ready for Add calls
//   - error: errs.ErrInvalidKeyLength for a negative key length, or the
//     scratch file creation error
func NewWriter(path string, keyLength int, opts ...WriterOption) (*Writer, error) {
	if keyLength < 0 {
		return nil, fmt.Errorf("%w: %d", errs.ErrInvalidKeyLength, keyLength)
	}

	w := &Writer{
		engine:    endian.GetLittleEndianEngine(),
		path:      path,
		header:    *section.NewFontHeader(section.TagDataTable),
		keyLength: keyLength,
		used:      make(map[string]struct{}),
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	scratch, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".scratch-*")
	if err != nil {
		return nil, fmt.Errorf("create scratch file: %w", err)
	}
	w.scratch = scratch

	return w, nil
}

// Add validates and appends a table with the given setting.
//
// The table body is encoded and written to the scratch file immediately; the
// in-memory index records its key, offset and size. On any validation error
// nothing is written and the index is unchanged.
//
// Returns:
//   - error: errs.ErrWriterClosed after Close, errs.ErrInvalidKeyLength on a
//     key length mismatch, errs.ErrDuplicateKey for a key already added,
//     errs.ErrShapeMismatch or errs.ErrEmptyTable for shape violations,
//     errs.ErrInvalidBitWidth for an out-of-range quantization width
func (w *Writer) Add(t *Table, s Setting) error {
	return w.add(t, s, nil)
}

// AddQuantized appends a table using a caller-supplied quantizer instead of
// a Setting record. The setting persisted in the body is reconstructed from
// the quantizer's parameters and the table's map presence.
func (w *Writer) AddQuantized(t *Table, q quant.Quantizer) error {
	return w.add(t, SettingFromQuantizer(q, t), q)
}

func (w *Writer) add(t *Table, s Setting, q quant.Quantizer) error {
	if w.scratch == nil {
		return fmt.Errorf("%w: add on a closed writer", errs.ErrWriterClosed)
	}

	if len(t.Key) != w.keyLength {
		return fmt.Errorf("%w: key %s has %d components, container uses %d",
			errs.ErrInvalidKeyLength, t.Key, len(t.Key), w.keyLength)
	}

	ks := keyString(t.Key)
	if _, exists := w.used[ks]; exists {
		return fmt.Errorf("%w: %s", errs.ErrDuplicateKey, t.Key)
	}

	if err := validateShape(t, s); err != nil {
		return err
	}

	if q == nil && !s.RawFloats && t.Bytes == nil {
		lq, err := s.quantizer()
		if err != nil {
			return err
		}
		q = lq
	}

	buf := pool.GetTableBuffer()
	defer pool.PutTableBuffer(buf)

	body, err := appendBody(buf.Bytes(), t, s, q, w.engine)
	if err != nil {
		return err
	}
	buf.B = body

	if _, err := w.scratch.Write(body); err != nil {
		return fmt.Errorf("write scratch file: %w", err)
	}

	entry := section.NewTableIndexEntry(slices.Clone(t.Key))
	entry.Offset = w.scratchSize
	entry.Size = uint32(len(body)) //nolint:gosec // bounded by scratch write
	w.entries = append(w.entries, entry)
	w.used[ks] = struct{}{}
	w.scratchSize += int64(len(body))

	return nil
}

// TableCount returns the number of tables added so far.
func (w *Writer) TableCount() int {
	return len(w.entries)
}

// Close assembles the destination artifact and releases the scratch file.
//
// Layout written: font header (size back-patched), container sub-header,
// index entries, then the scratch file's bytes verbatim. The header size
// field is patched only after the writer verifies it equals the byte count
// actually emitted after the header.
//
// The scratch file is closed and removed on every path. Calling Close twice
// fails with errs.ErrWriterClosed.
func (w *Writer) Close() (err error) {
	if w.scratch == nil {
		return fmt.Errorf("%w: close on a closed writer", errs.ErrWriterClosed)
	}

	// The writer is spent once Close begins, even on failure.
	scratch := w.scratch
	w.scratch = nil

	defer func() {
		cerr := scratch.Close()
		rerr := os.Remove(scratch.Name())
		if err == nil {
			err = cerr
		}
		if err == nil {
			err = rerr
		}
	}()

	dst, err := os.Create(w.path)
	if err != nil {
		return fmt.Errorf("create %s: %w", w.path, err)
	}

	defer func() {
		cerr := dst.Close()
		if err == nil {
			err = cerr
		}
	}()

	header := w.header
	header.Size = 0
	if _, err = dst.Write(header.Bytes(w.engine)); err != nil {
		return fmt.Errorf("write font header: %w", err)
	}

	tableHeader := section.TableHeader{
		TableCount: uint32(len(w.entries)), //nolint:gosec // bounded by index growth
		KeyLength:  uint32(w.keyLength),    //nolint:gosec // validated non-negative
	}
	if _, err = dst.Write(tableHeader.Bytes(w.engine)); err != nil {
		return fmt.Errorf("write table header: %w", err)
	}

	indexSize := tableHeader.IndexSize()
	index := make([]byte, indexSize)
	pos := 0
	for i := range w.entries {
		pos = w.entries[i].WriteToSlice(index, pos, w.engine)
	}
	if _, err = dst.Write(index); err != nil {
		return fmt.Errorf("write index: %w", err)
	}

	if _, err = scratch.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("rewind scratch file: %w", err)
	}

	copyBuf := pool.GetFontBuffer()
	copyBuf.SetLength(copyBuf.Cap())
	_, err = io.CopyBuffer(dst, scratch, copyBuf.Bytes())
	pool.PutFontBuffer(copyBuf)
	if err != nil {
		return fmt.Errorf("copy table data: %w", err)
	}

	payloadSize := int64(section.TableHeaderSize) + int64(indexSize) + w.scratchSize
	if payloadSize > math.MaxUint32 {
		return fmt.Errorf("%w: payload size %d exceeds the 32-bit header size field",
			errs.ErrSizeMismatch, payloadSize)
	}

	end, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if end != int64(section.HeaderSize)+payloadSize {
		return fmt.Errorf("%w: wrote %d payload bytes, expected %d",
			errs.ErrSizeMismatch, end-int64(section.HeaderSize), payloadSize)
	}

	if err = section.PatchHeaderSize(dst, uint32(payloadSize), w.engine); err != nil { //nolint:gosec // checked above
		return fmt.Errorf("patch header size: %w", err)
	}

	if err = dst.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", w.path, err)
	}

	return nil
}
