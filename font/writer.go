package font

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/section"
)

// Writer assembles a "VFNT" voice-font artifact from its sections.
//
// Sections are staged in memory; Close writes a placeholder header, streams
// the sections in fixed slot order, then back-patches the header with the
// final payload size and section table.
//
// A Writer is single use: after Close (successful or not) all methods fail
// with errs.ErrWriterClosed. It is not safe for concurrent use.
type Writer struct {
	engine   endian.EndianEngine
	path     string
	header   section.FontHeader
	sections [section.SectionSlots][]byte
	closed   bool
}

// WriterOption represents a functional option for configuring a Writer.
type WriterOption = options.Option[*Writer]

// WithHeader seeds the font header with the caller's metadata (format GUID,
// build, language, audio parameters). The artifact tag, size field and
// section table are owned by the writer and overwritten on Close.
func WithHeader(h section.FontHeader) WriterOption {
	return options.NoError(func(w *Writer) {
		h.Tag = w.header.Tag
		h.Size = 0
		h.Sections = [section.SectionSlots]section.SectionRange{}
		if h.Version == 0 {
			h.Version = section.FormatVersion
		}
		w.header = h
	})
}

// NewWriter creates a font writer for the given destination path.
//
// Parameters:
//   - path: Destination artifact path, created on Close
//   - opts: Optional configuration (header metadata)
//
// Returns:
//   - *Writer: Open writer ready for Set calls
//   - error: Option application error
func NewWriter(path string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		engine: endian.GetLittleEndianEngine(),
		path:   path,
		header: *section.NewFontHeader(section.TagFont),
	}

	if err := options.Apply(w, opts...); err != nil {
		return nil, err
	}

	return w, nil
}

// SetQuestions stages the question/schema section.
func (w *Writer) SetQuestions(qs *QuestionSet) error {
	return w.setSection(section.SlotQuestions, qs.Bytes(w.engine))
}

// SetModel stages the model section from a container payload: the embedded
// (header-less) form of a data-table container, sub-header through bodies.
func (w *Writer) SetModel(payload []byte) error {
	return w.setSection(section.SlotModel, payload)
}

// SetModelFromContainer stages the model section from a built "VFDT"
// container artifact, stripping its font header. Trailing bytes beyond the
// container's declared size are dropped so the embedded section is canonical;
// a container shorter than its header declares is rejected.
//
// Returns:
//   - error: Read errors, header validation errors, or
//     errs.ErrTruncatedData for a short container
func (w *Writer) SetModelFromContainer(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	header, err := section.ParseFontHeader(data, w.engine)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	if err := header.Validate(section.TagDataTable); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	payload := data[section.HeaderSize:]
	if len(payload) < int(header.Size) {
		return fmt.Errorf("%w: %s declares %d payload bytes, file has %d",
			errs.ErrTruncatedData, path, header.Size, len(payload))
	}

	return w.setSection(section.SlotModel, payload[:header.Size])
}

// SetStringPool stages the string pool section.
func (w *Writer) SetStringPool(p *StringPool) error {
	return w.setSection(section.SlotStringPool, p.Bytes(w.engine))
}

func (w *Writer) setSection(slot int, data []byte) error {
	if w.closed {
		return fmt.Errorf("%w: set section on a closed writer", errs.ErrWriterClosed)
	}

	w.sections[slot] = data

	return nil
}

// Close writes the assembled font artifact.
//
// Layout written: placeholder font header, then each staged section in slot
// order. The header's size field and section table are back-patched only
// after the writer verifies the emitted byte count, under a position guard
// that restores the stream position on every exit path.
//
// Calling Close twice fails with errs.ErrWriterClosed.
func (w *Writer) Close() (err error) {
	if w.closed {
		return fmt.Errorf("%w: close on a closed writer", errs.ErrWriterClosed)
	}

	// The writer is spent once Close begins, even on failure.
	w.closed = true

	var payloadSize int64
	for _, data := range w.sections {
		payloadSize += int64(len(data))
	}
	if payloadSize > math.MaxUint32 {
		return fmt.Errorf("%w: payload size %d exceeds the 32-bit header size field",
			errs.ErrSizeMismatch, payloadSize)
	}

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
	header.Sections = [section.SectionSlots]section.SectionRange{}
	if _, err = dst.Write(header.Bytes(w.engine)); err != nil {
		return fmt.Errorf("write font header: %w", err)
	}

	var written int64
	for slot, data := range w.sections {
		if len(data) == 0 {
			continue
		}

		header.Sections[slot] = section.SectionRange{
			Offset: uint32(written),   //nolint:gosec // bounded by the payload size check
			Size:   uint32(len(data)), //nolint:gosec // bounded by the payload size check
		}

		if _, err = dst.Write(data); err != nil {
			return fmt.Errorf("write section %d: %w", slot, err)
		}
		written += int64(len(data))
	}

	end, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if end != int64(section.HeaderSize)+payloadSize {
		return fmt.Errorf("%w: wrote %d payload bytes, expected %d",
			errs.ErrSizeMismatch, end-int64(section.HeaderSize), payloadSize)
	}

	header.Size = uint32(payloadSize) //nolint:gosec // checked above
	if err = patchHeader(dst, &header, w.engine); err != nil {
		return fmt.Errorf("patch font header: %w", err)
	}

	if err = dst.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", w.path, err)
	}

	return nil
}

// patchHeader rewrites the full header at the stream start and restores the
// position afterwards, on every exit path including a failed write.
func patchHeader(ws io.WriteSeeker, h *section.FontHeader, engine endian.EndianEngine) (err error) {
	cur, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	defer func() {
		_, serr := ws.Seek(cur, io.SeekStart)
		if err == nil {
			err = serr
		}
	}()

	if _, err = ws.Seek(0, io.SeekStart); err != nil {
		return err
	}

	_, err = ws.Write(h.Bytes(engine))

	return err
}
