package table

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/quant"
	"github.com/arloliu/voicefont/section"
)

func createTestWriter(t *testing.T, keyLength int, opts ...WriterOption) (*Writer, string) {
	t.Helper()

	path := filepath.Join(t.TempDir(), "model.vfdt")
	w, err := NewWriter(path, keyLength, opts...)
	require.NoError(t, err)

	return w, path
}

func TestNewWriter_NegativeKeyLength(t *testing.T) {
	_, err := NewWriter(filepath.Join(t.TempDir(), "bad.vfdt"), -1)
	require.ErrorIs(t, err, errs.ErrInvalidKeyLength)
}

func TestContainerRoundTrip_SingleRawTable(t *testing.T) {
	w, path := createTestWriter(t, 1)

	src := &Table{
		Key:    Key{42},
		Rows:   2,
		Cols:   3,
		Values: []float32{1, 2, 3, 4, 5, 6},
	}
	require.NoError(t, w.Add(src, RawSetting(false, false)))
	require.NoError(t, w.Close())

	f, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 1, f.KeyLength)
	require.Len(t, f.Tables, 1)

	got, s, ok := f.Table(Key{42})
	require.True(t, ok)
	require.True(t, s.RawFloats)
	require.Equal(t, 2, got.Rows)
	require.Equal(t, 3, got.Cols)

	values, err := got.Materialize(s)
	require.NoError(t, err)
	require.Equal(t, src.Values, values)
}

func TestContainerRoundTrip_QuantizedWithMaps(t *testing.T) {
	w, path := createTestWriter(t, 2)

	lpcc := &Table{
		Key:    Key{3, 7},
		Rows:   3,
		Cols:   4,
		RowMap: []uint16{0, 0, 1, 2, 2},
		Values: []float32{
			0.1, 0.2, 0.3, 0.4,
			0.5, 0.6, 0.7, 0.8,
			0.9, 1.0, 1.1, 1.2,
		},
	}
	lpccSetting := Setting{Bits: 8, Scale: 1.2 / 255.0, RowMap: true}

	gain := &Table{
		Key:       Key{4, 7},
		Rows:      2,
		Cols:      2,
		ColumnMap: []uint16{1, 0},
		Values:    []float32{10, 20, 30, 40},
	}
	gainSetting := Setting{Bits: 16, Scale: 40.0 / 65535.0, ColumnMap: true}

	require.NoError(t, w.Add(lpcc, lpccSetting))
	require.NoError(t, w.Add(gain, gainSetting))
	require.Equal(t, 2, w.TableCount())
	require.NoError(t, w.Close())

	f, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, []Key{{3, 7}, {4, 7}}, f.Keys())

	got, s, ok := f.Table(Key{3, 7})
	require.True(t, ok)
	require.Equal(t, lpccSetting, s)
	require.Equal(t, lpcc.RowMap, got.RowMap)
	require.Nil(t, got.Values, "passthrough read keeps values packed")

	values, err := got.Materialize(s)
	require.NoError(t, err)
	require.InDeltaSlice(t, lpcc.Values, values, float64(lpccSetting.Scale))

	got, s, ok = f.Table(Key{4, 7})
	require.True(t, ok)
	require.Equal(t, gainSetting, s)
	require.Equal(t, gain.ColumnMap, got.ColumnMap)

	values, err = got.Materialize(s)
	require.NoError(t, err)
	require.InDeltaSlice(t, gain.Values, values, float64(gainSetting.Scale))
}

func TestContainerRoundTrip_PreEncodedBytes(t *testing.T) {
	w, path := createTestWriter(t, 1)

	// Pre-quantized import path: raw body bytes pass through untouched.
	src := &Table{
		Key:   Key{9},
		Rows:  2,
		Cols:  4,
		Bytes: []byte{0x12, 0x34, 0x56, 0x78, 0x9A, 0xBC, 0xDE, 0xF0},
	}
	require.NoError(t, w.Add(src, Setting{Bits: 8, Scale: 1}))
	require.NoError(t, w.Close())

	f, err := ReadFile(path)
	require.NoError(t, err)

	got, _, ok := f.Table(Key{9})
	require.True(t, ok)
	require.Equal(t, src.Bytes, got.Bytes)
}

func TestWriter_AddQuantized(t *testing.T) {
	w, path := createTestWriter(t, 1)

	q, err := quant.NewLinearQuantizer(quant.Params{BitWidth: 4, Scale: 0.25, Offset: -1})
	require.NoError(t, err)

	src := &Table{Key: Key{1}, Rows: 1, Cols: 4, Values: []float32{-1, -0.5, 0, 1}}
	require.NoError(t, w.AddQuantized(src, q))
	require.NoError(t, w.Close())

	f, err := ReadFile(path)
	require.NoError(t, err)

	got, s, ok := f.Table(Key{1})
	require.True(t, ok)
	require.Equal(t, Setting{Bits: 4, Scale: 0.25, Offset: -1}, s)

	values, err := got.Materialize(s)
	require.NoError(t, err)
	require.InDeltaSlice(t, src.Values, values, 0.25)
}

func TestWriter_ContractViolations(t *testing.T) {
	t.Run("duplicate key leaves index intact", func(t *testing.T) {
		w, path := createTestWriter(t, 1)

		first := &Table{Key: Key{5}, Rows: 1, Cols: 1, Values: []float32{1}}
		require.NoError(t, w.Add(first, RawSetting(false, false)))

		dup := &Table{Key: Key{5}, Rows: 1, Cols: 1, Values: []float32{99}}
		require.ErrorIs(t, w.Add(dup, RawSetting(false, false)), errs.ErrDuplicateKey)

		require.NoError(t, w.Close())

		f, err := ReadFile(path)
		require.NoError(t, err)
		require.Len(t, f.Tables, 1)

		got, s, ok := f.Table(Key{5})
		require.True(t, ok)
		values, err := got.Materialize(s)
		require.NoError(t, err)
		require.Equal(t, []float32{1}, values)
	})

	t.Run("key length mismatch", func(t *testing.T) {
		w, _ := createTestWriter(t, 2)
		defer func() { _ = w.Close() }()

		bad := &Table{Key: Key{5}, Rows: 1, Cols: 1, Values: []float32{1}}
		require.ErrorIs(t, w.Add(bad, RawSetting(false, false)), errs.ErrInvalidKeyLength)
	})

	t.Run("map presence mismatch", func(t *testing.T) {
		w, _ := createTestWriter(t, 1)
		defer func() { _ = w.Close() }()

		bad := &Table{Key: Key{5}, Rows: 1, Cols: 1, Values: []float32{1}}
		require.ErrorIs(t, w.Add(bad, Setting{Bits: 8, RowMap: true}), errs.ErrShapeMismatch)
	})

	t.Run("empty table", func(t *testing.T) {
		w, _ := createTestWriter(t, 1)
		defer func() { _ = w.Close() }()

		bad := &Table{Key: Key{5}, Rows: 0, Cols: 0}
		require.ErrorIs(t, w.Add(bad, Setting{Bits: 8}), errs.ErrEmptyTable)
	})

	t.Run("bad bit width", func(t *testing.T) {
		w, _ := createTestWriter(t, 1)
		defer func() { _ = w.Close() }()

		bad := &Table{Key: Key{5}, Rows: 1, Cols: 1, Values: []float32{1}}
		require.ErrorIs(t, w.Add(bad, Setting{Bits: 0, Scale: 1}), errs.ErrInvalidBitWidth)
	})

	t.Run("add after close", func(t *testing.T) {
		w, _ := createTestWriter(t, 1)
		require.NoError(t, w.Close())

		late := &Table{Key: Key{5}, Rows: 1, Cols: 1, Values: []float32{1}}
		require.ErrorIs(t, w.Add(late, RawSetting(false, false)), errs.ErrWriterClosed)
	})

	t.Run("close twice", func(t *testing.T) {
		w, _ := createTestWriter(t, 1)
		require.NoError(t, w.Close())
		require.ErrorIs(t, w.Close(), errs.ErrWriterClosed)
	})
}

func TestWriter_HeaderSizeInvariant(t *testing.T) {
	w, path := createTestWriter(t, 1)

	for k := int32(1); k <= 5; k++ {
		tab := &Table{Key: Key{k}, Rows: int(k), Cols: 3, Values: make([]float32, int(k)*3)}
		for i := range tab.Values {
			tab.Values[i] = float32(i)
		}
		require.NoError(t, w.Add(tab, Setting{Bits: 8, Scale: 0.1}))
	}
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	header, err := section.ParseFontHeader(data, endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.NoError(t, header.Validate(section.TagDataTable))
	require.Equal(t, uint32(len(data)-section.HeaderSize), header.Size)

	// Strict mode accepts the artifact as written.
	_, err = Parse(data, WithStrict())
	require.NoError(t, err)
}

func TestWriter_ScratchFileRemoved(t *testing.T) {
	w, path := createTestWriter(t, 1)

	tab := &Table{Key: Key{1}, Rows: 1, Cols: 1, Values: []float32{1}}
	require.NoError(t, w.Add(tab, RawSetting(false, false)))
	require.NoError(t, w.Close())

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, filepath.Base(path), entries[0].Name())
}

func TestWriter_WithHeader(t *testing.T) {
	meta := *section.NewFontHeader(section.TagFont)
	meta.FormatID = uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")
	meta.Build = 1234
	meta.SamplesPerSec = 16000
	meta.BitsPerSample = 16
	meta.SamplesPerFrame = 80

	w, path := createTestWriter(t, 1, WithHeader(meta))

	tab := &Table{Key: Key{1}, Rows: 1, Cols: 1, Values: []float32{1}}
	require.NoError(t, w.Add(tab, RawSetting(false, false)))
	require.NoError(t, w.Close())

	f, err := ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, section.TagDataTable, f.Header.Tag, "tag is owned by the writer")
	require.Equal(t, meta.FormatID, f.Header.FormatID)
	require.Equal(t, uint32(1234), f.Header.Build)
	require.Equal(t, uint32(16000), f.Header.SamplesPerSec)
}

func TestReader_WithDecode(t *testing.T) {
	w, path := createTestWriter(t, 1)

	src := &Table{Key: Key{2}, Rows: 2, Cols: 2, Values: []float32{1, 2, 3, 4}}
	require.NoError(t, w.Add(src, RawSetting(false, false)))
	require.NoError(t, w.Close())

	f, err := ReadFile(path, WithDecode())
	require.NoError(t, err)

	got, _, ok := f.Table(Key{2})
	require.True(t, ok)
	require.Equal(t, src.Values, got.Values)
}

func TestReader_Malformed(t *testing.T) {
	writeContainer := func(t *testing.T) []byte {
		t.Helper()

		w, path := createTestWriter(t, 1)
		tab := &Table{Key: Key{1}, Rows: 2, Cols: 2, Values: []float32{1, 2, 3, 4}}
		require.NoError(t, w.Add(tab, RawSetting(false, false)))
		require.NoError(t, w.Close())

		data, err := os.ReadFile(path)
		require.NoError(t, err)

		return data
	}

	t.Run("bad magic tag", func(t *testing.T) {
		data := writeContainer(t)
		copy(data[0:4], "XXXX")

		_, err := Parse(data)
		require.ErrorIs(t, err, errs.ErrInvalidMagicTag)
	})

	t.Run("bad fixed point flag", func(t *testing.T) {
		data := writeContainer(t)
		endian.GetLittleEndianEngine().PutUint32(data[36:40], 7)

		_, err := Parse(data)
		require.ErrorIs(t, err, errs.ErrInvalidFormatFlag)
	})

	t.Run("short header", func(t *testing.T) {
		_, err := Parse(make([]byte, 16))
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})

	t.Run("index count beyond payload", func(t *testing.T) {
		data := writeContainer(t)
		// Claim far more tables than the payload holds.
		endian.GetLittleEndianEngine().PutUint32(data[section.HeaderSize:], 1_000_000)

		_, err := Parse(data)
		require.ErrorIs(t, err, errs.ErrInvalidIndexEntry)
	})
}

func TestReader_TrailingBytes(t *testing.T) {
	w, path := createTestWriter(t, 1)
	tab := &Table{Key: Key{1}, Rows: 1, Cols: 2, Values: []float32{1, 2}}
	require.NoError(t, w.Add(tab, RawSetting(false, false)))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Legacy tools pad artifacts with a trailing terminator word.
	padded := append(append([]byte{}, data...), 0xDE, 0xAD, 0xBE, 0xEF)

	t.Run("lenient swallows trailing padding", func(t *testing.T) {
		f, err := Parse(padded)
		require.NoError(t, err)
		require.Len(t, f.Tables, 1)
	})

	t.Run("strict rejects trailing padding", func(t *testing.T) {
		_, err := Parse(padded, WithStrict())
		require.ErrorIs(t, err, errs.ErrSizeMismatch)
	})
}

func TestReader_TruncatedTrailingTable(t *testing.T) {
	w, path := createTestWriter(t, 1)

	first := &Table{Key: Key{1}, Rows: 1, Cols: 2, Values: []float32{1, 2}}
	second := &Table{Key: Key{2}, Rows: 1, Cols: 2, Values: []float32{3, 4}}
	require.NoError(t, w.Add(first, RawSetting(false, false)))
	require.NoError(t, w.Add(second, RawSetting(false, false)))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	// Cut into the second table's body.
	truncated := append([]byte{}, data[:len(data)-4]...)

	t.Run("lenient drops the truncated table", func(t *testing.T) {
		f, err := Parse(truncated)
		require.NoError(t, err)
		require.Len(t, f.Tables, 1)
		require.Equal(t, Key{1}, f.Tables[0].Key)

		_, _, ok := f.Table(Key{2})
		require.False(t, ok)
	})

	t.Run("strict reports the size mismatch first", func(t *testing.T) {
		_, err := Parse(truncated, WithStrict())
		require.ErrorIs(t, err, errs.ErrSizeMismatch)
	})

	t.Run("strict reports truncation when the size field agrees", func(t *testing.T) {
		// Rewrite the size field so the header matches the shortened file;
		// the dangling index entry is then the only inconsistency left.
		patched := append([]byte{}, truncated...)
		engine := endian.GetLittleEndianEngine()
		engine.PutUint32(patched[section.HeaderSizeFieldOff:], uint32(len(patched)-section.HeaderSize))

		_, err := Parse(patched, WithStrict())
		require.ErrorIs(t, err, errs.ErrTruncatedData)

		f, err := Parse(patched)
		require.NoError(t, err)
		require.Len(t, f.Tables, 1)
	})
}

func TestParsePayload_EmbeddedContainer(t *testing.T) {
	w, path := createTestWriter(t, 1)
	tab := &Table{Key: Key{3}, Rows: 1, Cols: 1, Values: []float32{9}}
	require.NoError(t, w.Add(tab, RawSetting(false, false)))
	require.NoError(t, w.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	f, err := ParsePayload(data[section.HeaderSize:])
	require.NoError(t, err)
	require.Len(t, f.Tables, 1)
	require.Equal(t, Key{3}, f.Tables[0].Key)
}
