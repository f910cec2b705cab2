package table

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/quant"
	"github.com/arloliu/voicefont/section"
)

func TestKey(t *testing.T) {
	t.Run("equal", func(t *testing.T) {
		require.True(t, Key{1, 2}.Equal(Key{1, 2}))
		require.False(t, Key{1, 2}.Equal(Key{1, 3}))
		require.False(t, Key{1}.Equal(Key{1, 2}))
	})

	t.Run("string form", func(t *testing.T) {
		require.Equal(t, "[42]", Key{42}.String())
		require.Equal(t, "[-1 7]", Key{-1, 7}.String())
	})

	t.Run("map form distinguishes components", func(t *testing.T) {
		require.NotEqual(t, keyString(Key{1, 0}), keyString(Key{0, 1}))
		require.NotEqual(t, keyString(Key{256}), keyString(Key{1}))
		require.Equal(t, keyString(Key{-3, 9}), keyString(Key{-3, 9}))
	})
}

func TestSettingAttr(t *testing.T) {
	tests := []struct {
		name    string
		setting Setting
		attr    section.TableAttr
	}{
		{"plain quantized", Setting{Bits: 8}, 0},
		{"row map", Setting{Bits: 8, RowMap: true}, section.AttrRowMap},
		{"column map", Setting{Bits: 8, ColumnMap: true}, section.AttrColumnMap},
		{"raw floats", Setting{RawFloats: true}, section.AttrRawFloats},
		{
			"all bits",
			Setting{RowMap: true, ColumnMap: true, RawFloats: true},
			section.AttrRowMap | section.AttrColumnMap | section.AttrRawFloats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attr := tt.setting.Attr()
			require.Equal(t, tt.attr, attr)

			restored := settingFromBody(attr, int32(tt.setting.Bits), tt.setting.Scale, tt.setting.Offset)
			require.Equal(t, tt.setting, restored)
		})
	}
}

func TestSettingRowBytes(t *testing.T) {
	require.Equal(t, 12, Setting{RawFloats: true}.RowBytes(3))
	require.Equal(t, 3, Setting{Bits: 8}.RowBytes(3))
	require.Equal(t, 1, Setting{Bits: 1}.RowBytes(8))
	require.Equal(t, 2, Setting{Bits: 1}.RowBytes(9))
	require.Equal(t, 5, Setting{Bits: 12}.RowBytes(3))
}

func TestSettingFromQuantizer(t *testing.T) {
	q, err := quant.NewLinearQuantizer(quant.Params{BitWidth: 12, Scale: 0.5, Offset: -2})
	require.NoError(t, err)

	s := SettingFromQuantizer(q, &Table{RowMap: []uint16{0, 1}})
	require.Equal(t, Setting{Bits: 12, Scale: 0.5, Offset: -2, RowMap: true}, s)
}

func TestValidateShape(t *testing.T) {
	tests := []struct {
		name    string
		table   *Table
		setting Setting
		wantErr error
	}{
		{
			name:    "valid quantized",
			table:   &Table{Key: Key{1}, Rows: 2, Cols: 2, Values: []float32{1, 2, 3, 4}},
			setting: Setting{Bits: 8},
		},
		{
			name:    "row map missing",
			table:   &Table{Key: Key{1}, Rows: 1, Cols: 1, Values: []float32{1}},
			setting: Setting{Bits: 8, RowMap: true},
			wantErr: errs.ErrShapeMismatch,
		},
		{
			name:    "row map unexpected",
			table:   &Table{Key: Key{1}, Rows: 1, Cols: 1, Values: []float32{1}, RowMap: []uint16{0}},
			setting: Setting{Bits: 8},
			wantErr: errs.ErrShapeMismatch,
		},
		{
			name:    "column map missing",
			table:   &Table{Key: Key{1}, Rows: 1, Cols: 1, Values: []float32{1}},
			setting: Setting{Bits: 8, ColumnMap: true},
			wantErr: errs.ErrShapeMismatch,
		},
		{
			name:    "empty without bytes",
			table:   &Table{Key: Key{1}, Rows: 0, Cols: 3},
			setting: Setting{Bits: 8},
			wantErr: errs.ErrEmptyTable,
		},
		{
			name:    "empty with bytes is legal",
			table:   &Table{Key: Key{1}, Rows: 0, Cols: 3, Bytes: []byte{}},
			setting: Setting{Bits: 8},
		},
		{
			name:    "value count mismatch",
			table:   &Table{Key: Key{1}, Rows: 2, Cols: 2, Values: []float32{1, 2, 3}},
			setting: Setting{Bits: 8},
			wantErr: errs.ErrShapeMismatch,
		},
		{
			name:    "byte count mismatch",
			table:   &Table{Key: Key{1}, Rows: 2, Cols: 2, Bytes: []byte{1, 2, 3}},
			setting: Setting{Bits: 8},
			wantErr: errs.ErrShapeMismatch,
		},
		{
			name:    "negative rows",
			table:   &Table{Key: Key{1}, Rows: -1, Cols: 2, Values: []float32{}},
			setting: Setting{Bits: 8},
			wantErr: errs.ErrShapeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateShape(tt.table, tt.setting)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestMaterialize(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("values returned as-is", func(t *testing.T) {
		tab := &Table{Rows: 1, Cols: 2, Values: []float32{1, 2}}
		values, err := tab.Materialize(Setting{Bits: 8})
		require.NoError(t, err)
		require.Equal(t, []float32{1, 2}, values)
	})

	t.Run("raw float bytes", func(t *testing.T) {
		s := Setting{RawFloats: true}
		src := &Table{Rows: 2, Cols: 2, Values: []float32{1.5, -2.25, 3, 4}}
		body, err := appendBody(nil, src, s, nil, engine)
		require.NoError(t, err)

		decoded, ds, n, err := decodeBody(body, engine)
		require.NoError(t, err)
		require.Len(t, body, n)
		require.Equal(t, s, ds)

		values, err := decoded.Materialize(ds)
		require.NoError(t, err)
		require.Equal(t, src.Values, values)
	})

	t.Run("quantized rows are byte aligned", func(t *testing.T) {
		// 3 columns at 3 bits pack to 2 bytes per row, so row 1 must
		// start at byte 2.
		s := Setting{Bits: 3, Scale: 1}
		src := &Table{Rows: 2, Cols: 3, Values: []float32{1, 2, 3, 4, 5, 6}}
		q, err := s.quantizer()
		require.NoError(t, err)

		body, err := appendBody(nil, src, s, q, engine)
		require.NoError(t, err)

		decoded, ds, _, err := decodeBody(body, engine)
		require.NoError(t, err)
		require.Len(t, decoded.Bytes, 4)

		values, err := decoded.Materialize(ds)
		require.NoError(t, err)
		require.InDeltaSlice(t, src.Values, values, float64(s.Scale))
	})

	t.Run("short value bytes", func(t *testing.T) {
		tab := &Table{Rows: 2, Cols: 2, Bytes: []byte{0, 0}}
		_, err := tab.Materialize(Setting{Bits: 8})
		require.ErrorIs(t, err, errs.ErrInvalidTableBody)
	})
}

func TestDecodeBody_Malformed(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("too short for settings", func(t *testing.T) {
		_, _, _, err := decodeBody(make([]byte, 8), engine)
		require.ErrorIs(t, err, errs.ErrInvalidTableBody)
	})

	t.Run("ends inside row map", func(t *testing.T) {
		s := Setting{Bits: 8, Scale: 1, RowMap: true}
		src := &Table{Rows: 2, Cols: 1, Values: []float32{1, 2}, RowMap: []uint16{0, 1}}
		q, err := s.quantizer()
		require.NoError(t, err)

		body, err := appendBody(nil, src, s, q, engine)
		require.NoError(t, err)

		_, _, _, err = decodeBody(body[:len(body)-4], engine)
		require.ErrorIs(t, err, errs.ErrInvalidTableBody)
	})

	t.Run("bad bit width", func(t *testing.T) {
		body := make([]byte, 24)
		engine.PutUint32(body[4:8], 50) // bit width 50
		engine.PutUint32(body[16:20], 1)
		engine.PutUint32(body[20:24], 1)
		_, _, _, err := decodeBody(body, engine)
		require.ErrorIs(t, err, errs.ErrInvalidTableBody)
	})

	t.Run("negative matrix count", func(t *testing.T) {
		body := make([]byte, 24)
		engine.PutUint32(body[4:8], 8)
		engine.PutUint32(body[16:20], 0xFFFFFFFF) // rows -1
		engine.PutUint32(body[20:24], 1)
		_, _, _, err := decodeBody(body, engine)
		require.ErrorIs(t, err, errs.ErrInvalidTableBody)
	})
}
