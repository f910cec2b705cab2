package table

import (
	"fmt"
	"slices"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/quant"
	"github.com/arloliu/voicefont/section"
)

// Key is a table's fixed-length signed integer key tuple.
//
// The key length is fixed per container: acoustic data tables use length 1
// (the data kind), concatenation cost tables use length 2 (left and right
// unit group). Keys are unique within a container.
type Key []int32

// Equal reports whether two keys have the same length and components.
func (k Key) Equal(other Key) bool {
	return slices.Equal(k, other)
}

// String returns the key in "[a b c]" form for error messages and logs.
func (k Key) String() string {
	return fmt.Sprintf("%v", []int32(k))
}

// keyString returns the key components as an opaque comparable string,
// used as a map key for duplicate detection.
func keyString(k Key) string {
	b := make([]byte, 0, len(k)*4)
	for _, c := range k {
		b = append(b, byte(c), byte(c>>8), byte(c>>16), byte(c>>24))
	}

	return string(b)
}

// Setting holds the per-table storage parameters.
//
// Exactly one of the two equivalent forms is supplied per write: a Setting
// record, or a quant.Quantizer via Writer.AddQuantized. Readers always
// reconstruct the record form from the table body.
type Setting struct {
	// Bits is the code width of the packed value stream, 1-32.
	// Ignored when RawFloats is set.
	Bits int
	// Scale is the linear dequantization scale (value = code*Scale + Offset).
	Scale float32
	// Offset is the linear dequantization offset.
	Offset float32
	// RowMap declares that the table carries a row index map.
	RowMap bool
	// ColumnMap declares that the table carries a column index map.
	ColumnMap bool
	// RawFloats stores values as uncompressed little-endian float32 words
	// instead of a packed quantized bitstream.
	RawFloats bool
}

// RawSetting returns the Setting for an uncompressed float32 table.
func RawSetting(rowMap, columnMap bool) Setting {
	return Setting{RowMap: rowMap, ColumnMap: columnMap, RawFloats: true}
}

// SettingFromQuantizer reconstructs the record form of a quantizer's
// parameters, with map presence taken from the table being written.
func SettingFromQuantizer(q quant.Quantizer, t *Table) Setting {
	return Setting{
		Bits:      q.BitWidth(),
		Scale:     q.Scale(),
		Offset:    q.Offset(),
		RowMap:    len(t.RowMap) > 0,
		ColumnMap: len(t.ColumnMap) > 0,
	}
}

// Attr returns the on-disk attribute word for the setting.
func (s Setting) Attr() section.TableAttr {
	var attr section.TableAttr
	attr.SetRowMap(s.RowMap)
	attr.SetColumnMap(s.ColumnMap)
	attr.SetRawFloats(s.RawFloats)

	return attr
}

// Params returns the quantization parameter record of the setting.
func (s Setting) Params() quant.Params {
	return quant.Params{BitWidth: s.Bits, Scale: s.Scale, Offset: s.Offset}
}

// RowBytes returns the byte length of one packed matrix row at the given
// column count. Every row starts at a byte boundary, so structural editors
// can splice whole rows without touching the bitstream.
func (s Setting) RowBytes(cols int) int {
	if s.RawFloats {
		return cols * 4
	}

	return quant.PackedSize(cols, s.Bits)
}

// quantizer builds the LinearQuantizer for the setting's numeric parameters.
func (s Setting) quantizer() (quant.LinearQuantizer, error) {
	return quant.NewLinearQuantizer(s.Params())
}

// settingFromBody reconstructs a Setting from the fields of a parsed body.
func settingFromBody(attr section.TableAttr, bits int32, scale, offset float32) Setting {
	return Setting{
		Bits:      int(bits),
		Scale:     scale,
		Offset:    offset,
		RowMap:    attr.HasRowMap(),
		ColumnMap: attr.HasColumnMap(),
		RawFloats: attr.IsRawFloats(),
	}
}

// Table is a 2-D grid of values with optional row and column index maps.
//
// Rows and Cols are the stored matrix shape. RowMap, when present, maps
// logical row indices to stored matrix rows (one entry per logical row, so
// its length may differ from Rows when rows are deduplicated); ColumnMap is
// the column analogue.
//
// Values holds the matrix in row-major float32 form. Bytes holds the encoded
// value section instead: a writer accepts either form (Bytes wins when both
// are set, the pre-quantized import path), and a reader fills Bytes by
// default and Values only when decoding was requested.
type Table struct {
	Key       Key
	Rows      int
	Cols      int
	RowMap    []uint16
	ColumnMap []uint16
	Values    []float32
	Bytes     []byte
}

// Materialize returns the table's float32 matrix in row-major order.
//
// When Values is populated it is returned as-is. Otherwise the encoded
// Bytes are decoded using the setting: raw float32 words are read directly,
// packed streams are dequantized row by row.
func (t *Table) Materialize(s Setting) ([]float32, error) {
	return t.materialize(s, endian.GetLittleEndianEngine())
}

func (t *Table) materialize(s Setting, engine endian.EndianEngine) ([]float32, error) {
	if t.Values != nil {
		return t.Values, nil
	}

	count := t.Rows * t.Cols
	if count == 0 {
		return nil, nil
	}

	rowBytes := s.RowBytes(t.Cols)
	need := t.Rows * rowBytes
	if len(t.Bytes) < need {
		return nil, fmt.Errorf("%w: %d value bytes for %dx%d matrix, need %d",
			errs.ErrInvalidTableBody, len(t.Bytes), t.Rows, t.Cols, need)
	}

	values := make([]float32, count)

	if s.RawFloats {
		for i := range count {
			values[i] = section.Float32(t.Bytes[i*4:i*4+4], engine)
		}

		return values, nil
	}

	q, err := s.quantizer()
	if err != nil {
		return nil, err
	}

	for r := range t.Rows {
		row := t.Bytes[r*rowBytes : (r+1)*rowBytes]
		if err := quant.UnpackInto(values[r*t.Cols:(r+1)*t.Cols], row, q); err != nil {
			return nil, fmt.Errorf("row %d: %w", r, err)
		}
	}

	return values, nil
}

// validateShape checks the table's contract invariants against its setting:
// map presence must match the setting, and the matrix must be non-empty with
// a matching value count unless pre-encoded bytes are supplied.
func validateShape(t *Table, s Setting) error {
	if s.RowMap != (len(t.RowMap) > 0) {
		return fmt.Errorf("%w: key %s row map present=%t, setting row map=%t",
			errs.ErrShapeMismatch, t.Key, len(t.RowMap) > 0, s.RowMap)
	}

	if s.ColumnMap != (len(t.ColumnMap) > 0) {
		return fmt.Errorf("%w: key %s column map present=%t, setting column map=%t",
			errs.ErrShapeMismatch, t.Key, len(t.ColumnMap) > 0, s.ColumnMap)
	}

	if t.Rows < 0 || t.Cols < 0 {
		return fmt.Errorf("%w: key %s shape %dx%d", errs.ErrShapeMismatch, t.Key, t.Rows, t.Cols)
	}

	if t.Bytes != nil {
		// Pre-encoded import path: the byte length is the only shape check
		// possible, and an empty matrix is legal.
		if need := t.Rows * s.RowBytes(t.Cols); len(t.Bytes) != need {
			return fmt.Errorf("%w: key %s has %d value bytes, %dx%d matrix needs %d",
				errs.ErrShapeMismatch, t.Key, len(t.Bytes), t.Rows, t.Cols, need)
		}

		return nil
	}

	if t.Rows*t.Cols == 0 {
		return fmt.Errorf("%w: key %s shape %dx%d", errs.ErrEmptyTable, t.Key, t.Rows, t.Cols)
	}

	if len(t.Values) != t.Rows*t.Cols {
		return fmt.Errorf("%w: key %s has %d values, %dx%d matrix needs %d",
			errs.ErrShapeMismatch, t.Key, len(t.Values), t.Rows, t.Cols, t.Rows*t.Cols)
	}

	return nil
}
