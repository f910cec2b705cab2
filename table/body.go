package table

import (
	"fmt"
	"math"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/quant"
	"github.com/arloliu/voicefont/section"
)

// bodyFixedSize is the byte size of the settings fields every body starts
// with: attribute word, bit width, scale and offset.
const bodyFixedSize = 16

// bodyHeaderSize returns the byte size of a body's self-describing fields up
// to the start of the value bytes.
func bodyHeaderSize(s Setting, mapRows, mapCols int) int {
	size := bodyFixedSize + 8 // fixed fields + matrix row/col counts
	if s.RowMap {
		size += 4 + mapRows*2
	}
	if s.ColumnMap {
		size += 4 + mapCols*2
	}

	return size
}

// appendBody encodes a validated table into its on-disk body form and appends
// it to dst. The quantizer is only consulted for non-raw tables without
// pre-encoded bytes.
func appendBody(dst []byte, t *Table, s Setting, q quant.Quantizer, engine endian.EndianEngine) ([]byte, error) {
	dst = engine.AppendUint32(dst, uint32(int32(s.Attr()))) //nolint:gosec // bit-pattern cast
	dst = engine.AppendUint32(dst, uint32(int32(s.Bits)))   //nolint:gosec // bit-pattern cast
	dst = engine.AppendUint32(dst, math.Float32bits(s.Scale))
	dst = engine.AppendUint32(dst, math.Float32bits(s.Offset))

	if s.RowMap {
		dst = engine.AppendUint32(dst, uint32(len(t.RowMap))) //nolint:gosec // validated shape
	}
	dst = engine.AppendUint32(dst, uint32(int32(t.Rows))) //nolint:gosec // validated shape

	if s.ColumnMap {
		dst = engine.AppendUint32(dst, uint32(len(t.ColumnMap))) //nolint:gosec // validated shape
	}
	dst = engine.AppendUint32(dst, uint32(int32(t.Cols))) //nolint:gosec // validated shape

	for _, m := range t.RowMap {
		dst = engine.AppendUint16(dst, m)
	}
	for _, m := range t.ColumnMap {
		dst = engine.AppendUint16(dst, m)
	}

	switch {
	case t.Bytes != nil:
		dst = append(dst, t.Bytes...)
	case s.RawFloats:
		for _, v := range t.Values {
			dst = engine.AppendUint32(dst, math.Float32bits(v))
		}
	default:
		// Pack row by row so every matrix row starts at a byte boundary.
		var err error
		for r := range t.Rows {
			dst, err = quant.AppendPacked(dst, t.Values[r*t.Cols:(r+1)*t.Cols], q)
			if err != nil {
				return dst, fmt.Errorf("key %s row %d: %w", t.Key, r, err)
			}
		}
	}

	return dst, nil
}

// decodeBody parses one table body from the start of data.
//
// It returns the table in passthrough form (value bytes aliased, Values nil),
// the reconstructed setting and the number of bytes consumed. Bytes beyond
// the consumed count are the caller's concern: a container reader checks
// them against the index entry size, a single-table reader treats them as
// legacy trailing padding.
func decodeBody(data []byte, engine endian.EndianEngine) (*Table, Setting, int, error) {
	if len(data) < bodyFixedSize {
		return nil, Setting{}, 0, fmt.Errorf("%w: %d bytes, settings fields need %d",
			errs.ErrInvalidTableBody, len(data), bodyFixedSize)
	}

	attr := section.TableAttr(int32(engine.Uint32(data[0:4]))) //nolint:gosec // bit-pattern cast
	bits := int32(engine.Uint32(data[4:8]))                    //nolint:gosec // bit-pattern cast
	scale := section.Float32(data[8:12], engine)
	offset := section.Float32(data[12:16], engine)
	s := settingFromBody(attr, bits, scale, offset)

	pos := bodyFixedSize

	readInt32 := func(field string) (int, error) {
		if len(data) < pos+4 {
			return 0, fmt.Errorf("%w: body ends inside %s field", errs.ErrInvalidTableBody, field)
		}

		v := int32(engine.Uint32(data[pos : pos+4])) //nolint:gosec // bit-pattern cast
		pos += 4
		if v < 0 {
			return 0, fmt.Errorf("%w: negative %s %d", errs.ErrInvalidTableBody, field, v)
		}

		return int(v), nil
	}

	var mapRows, mapCols int
	var err error

	if s.RowMap {
		if mapRows, err = readInt32("row map count"); err != nil {
			return nil, Setting{}, 0, err
		}
	}

	rows, err := readInt32("matrix row count")
	if err != nil {
		return nil, Setting{}, 0, err
	}

	if s.ColumnMap {
		if mapCols, err = readInt32("column map count"); err != nil {
			return nil, Setting{}, 0, err
		}
	}

	cols, err := readInt32("matrix column count")
	if err != nil {
		return nil, Setting{}, 0, err
	}

	if !s.RawFloats && (bits < quant.MinBitWidth || bits > quant.MaxBitWidth) {
		return nil, Setting{}, 0, fmt.Errorf("%w: bit width %d", errs.ErrInvalidTableBody, bits)
	}

	t := &Table{Rows: rows, Cols: cols}

	if s.RowMap {
		if len(data) < pos+mapRows*2 {
			return nil, Setting{}, 0, fmt.Errorf("%w: body ends inside row map (%d entries)",
				errs.ErrInvalidTableBody, mapRows)
		}

		t.RowMap = make([]uint16, mapRows)
		for i := range t.RowMap {
			t.RowMap[i] = engine.Uint16(data[pos : pos+2])
			pos += 2
		}
	}

	if s.ColumnMap {
		if len(data) < pos+mapCols*2 {
			return nil, Setting{}, 0, fmt.Errorf("%w: body ends inside column map (%d entries)",
				errs.ErrInvalidTableBody, mapCols)
		}

		t.ColumnMap = make([]uint16, mapCols)
		for i := range t.ColumnMap {
			t.ColumnMap[i] = engine.Uint16(data[pos : pos+2])
			pos += 2
		}
	}

	valueBytes := rows * s.RowBytes(cols)
	if len(data) < pos+valueBytes {
		return nil, Setting{}, 0, fmt.Errorf("%w: %d value bytes for %dx%d matrix, need %d",
			errs.ErrInvalidTableBody, len(data)-pos, rows, cols, valueBytes)
	}

	t.Bytes = data[pos : pos+valueBytes]
	pos += valueBytes

	return t, s, pos, nil
}
