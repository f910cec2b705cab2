package table

import (
	"fmt"
	"io"
	"math"
	"os"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/quant"
	"github.com/arloliu/voicefont/section"
)

// SingleFile is a "VFAD" artifact: one table body directly after the font
// header, with no container sub-header or index. Per-frame acoustic data
// streams (LPCC, F0, gain, power, pitch markers) are stored this way; the
// table's role comes from the file, so the body carries no key.
type SingleFile struct {
	Header  section.FontHeader
	Table   *Table
	Setting Setting
}

// NewSingle wraps a table and its setting in a fresh single-table artifact.
func NewSingle(t *Table, s Setting) *SingleFile {
	return &SingleFile{
		Header:  *section.NewFontHeader(section.TagAcdData),
		Table:   t,
		Setting: s,
	}
}

// ReadSingle reads a single-table artifact and fully materializes its float
// matrix (the direct decode path; no index entry is involved). The encoded
// value bytes are retained alongside the decoded values so structural
// editors can splice rows without re-quantizing.
//
// Trailing bytes after the body, such as the terminator word some legacy
// tools append, are swallowed by default and rejected with
// errs.ErrInvalidTableBody under WithStrict.
func ReadSingle(path string, opts ...ReadOption) (*SingleFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	sf, err := ParseSingle(data, opts...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return sf, nil
}

// ParseSingle decodes a single-table artifact from memory.
func ParseSingle(data []byte, opts ...ReadOption) (*SingleFile, error) {
	cfg := newReadConfig()
	if err := options.Apply(cfg, opts...); err != nil {
		return nil, err
	}

	header, err := section.ParseFontHeader(data, cfg.engine)
	if err != nil {
		return nil, err
	}
	if err := header.Validate(section.TagAcdData); err != nil {
		return nil, err
	}

	payload, err := checkPayloadSize(data[section.HeaderSize:], header.Size, cfg)
	if err != nil {
		return nil, err
	}

	t, s, consumed, err := decodeBody(payload, cfg.engine)
	if err != nil {
		return nil, err
	}
	if cfg.strict && consumed != len(payload) {
		return nil, fmt.Errorf("%w: %d trailing bytes after table body",
			errs.ErrInvalidTableBody, len(payload)-consumed)
	}

	values, err := t.materialize(s, cfg.engine)
	if err != nil {
		return nil, err
	}
	t.Values = values

	return &SingleFile{Header: header, Table: t, Setting: s}, nil
}

// WriteFile serializes the artifact to path.
//
// The font header is written with a zero size field first; after the body is
// emitted the writer verifies the actual payload length and back-patches the
// size field in place.
func (sf *SingleFile) WriteFile(path string) (err error) {
	engine := endian.GetLittleEndianEngine()

	if err := validateShape(sf.Table, sf.Setting); err != nil {
		return err
	}

	var q quant.Quantizer
	if !sf.Setting.RawFloats && sf.Table.Bytes == nil {
		lq, err := sf.Setting.quantizer()
		if err != nil {
			return err
		}
		q = lq
	}

	body, err := appendBody(nil, sf.Table, sf.Setting, q, engine)
	if err != nil {
		return err
	}
	if int64(len(body)) > math.MaxUint32 {
		return fmt.Errorf("%w: body size %d exceeds the 32-bit header size field",
			errs.ErrSizeMismatch, len(body))
	}

	dst, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}

	defer func() {
		cerr := dst.Close()
		if err == nil {
			err = cerr
		}
	}()

	header := sf.Header
	header.Tag = section.TagAcdData
	header.Size = 0
	if _, err = dst.Write(header.Bytes(engine)); err != nil {
		return fmt.Errorf("write font header: %w", err)
	}
	if _, err = dst.Write(body); err != nil {
		return fmt.Errorf("write table body: %w", err)
	}

	end, err := dst.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}
	if end != int64(section.HeaderSize)+int64(len(body)) {
		return fmt.Errorf("%w: wrote %d payload bytes, expected %d",
			errs.ErrSizeMismatch, end-int64(section.HeaderSize), len(body))
	}

	if err = section.PatchHeaderSize(dst, uint32(len(body)), engine); err != nil { //nolint:gosec // checked above
		return fmt.Errorf("patch header size: %w", err)
	}

	if err = dst.Sync(); err != nil {
		return fmt.Errorf("sync %s: %w", path, err)
	}

	return nil
}
