package font

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/section"
	"github.com/arloliu/voicefont/table"
)

// createTestContainer builds a small "VFDT" container with two raw-float
// tables keyed by length-1 keys and returns its path.
func createTestContainer(t *testing.T, dir string) string {
	t.Helper()

	path := filepath.Join(dir, "model.vfdt")
	w, err := table.NewWriter(path, 1)
	require.NoError(t, err)

	require.NoError(t, w.Add(&table.Table{
		Key:    table.Key{1},
		Rows:   2,
		Cols:   3,
		Values: []float32{1, 2, 3, 4, 5, 6},
	}, table.RawSetting(false, false)))

	require.NoError(t, w.Add(&table.Table{
		Key:    table.Key{2},
		Rows:   1,
		Cols:   4,
		Values: []float32{0.5, 1.5, 2.5, 3.5},
	}, table.RawSetting(false, false)))

	require.NoError(t, w.Close())

	return path
}

// createTestFont assembles a complete font artifact and returns its path with
// the sections it was built from.
func createTestFont(t *testing.T) (string, *QuestionSet, *StringPool) {
	t.Helper()

	dir := t.TempDir()
	fontPath := filepath.Join(dir, "voice.vfnt")

	qs := createTestQuestions(t)
	pool := createTestPool(t)

	w, err := NewWriter(fontPath)
	require.NoError(t, err)
	require.NoError(t, w.SetQuestions(qs))
	require.NoError(t, w.SetModelFromContainer(createTestContainer(t, dir)))
	require.NoError(t, w.SetStringPool(pool))
	require.NoError(t, w.Close())

	return fontPath, qs, pool
}

func TestFont_RoundTrip(t *testing.T) {
	fontPath, qs, pool := createTestFont(t)

	f, err := Open(fontPath)
	require.NoError(t, err)

	require.Equal(t, section.TagFont, f.Header.Tag)

	require.NotNil(t, f.Questions)
	require.Equal(t, qs.Count(), f.Questions.Count())
	q, ok := f.Questions.Find("C-Phone_Vowel")
	require.True(t, ok)
	require.Equal(t, OpIn, q.Operator)

	require.NotNil(t, f.Strings)
	require.Equal(t, pool.Strings(), f.Strings.Strings())

	require.NotNil(t, f.Model)
	require.Equal(t, 1, f.Model.KeyLength)
	require.Len(t, f.Model.Tables, 2)

	tbl, s, ok := f.Model.Table(table.Key{1})
	require.True(t, ok)
	require.Equal(t, 2, tbl.Rows)
	require.Equal(t, 3, tbl.Cols)

	values, err := tbl.Materialize(s)
	require.NoError(t, err)
	require.Equal(t, []float32{1, 2, 3, 4, 5, 6}, values)
}

func TestFont_HeaderSizeInvariant(t *testing.T) {
	fontPath, _, _ := createTestFont(t)

	data, err := os.ReadFile(fontPath)
	require.NoError(t, err)

	header, err := section.ParseFontHeader(data, endian.GetLittleEndianEngine())
	require.NoError(t, err)
	require.Equal(t, uint32(len(data)-section.HeaderSize), header.Size,
		"header size equals the byte count after the header")

	// Every non-empty section sits inside the payload.
	require.NoError(t, header.ValidateSections())

	// The strict reader agrees.
	_, err = Parse(data, WithStrict())
	require.NoError(t, err)
}

func TestFont_WithHeader(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "voice.vfnt")

	meta := *section.NewFontHeader(section.TagDataTable) // tag is overwritten
	meta.FormatID = uuid.MustParse("01234567-89ab-cdef-0123-456789abcdef")
	meta.Build = 77
	meta.LangID = 1033
	meta.SamplesPerSec = 16000
	meta.BitsPerSample = 16
	meta.SamplesPerFrame = 80
	meta.StateCount = 5

	w, err := NewWriter(fontPath, WithHeader(meta))
	require.NoError(t, err)
	require.NoError(t, w.SetModelFromContainer(createTestContainer(t, dir)))
	require.NoError(t, w.Close())

	f, err := Open(fontPath)
	require.NoError(t, err)
	require.Equal(t, section.TagFont, f.Header.Tag, "writer owns the tag")
	require.Equal(t, meta.FormatID, f.Header.FormatID)
	require.Equal(t, uint32(77), f.Header.Build)
	require.Equal(t, uint16(1033), f.Header.LangID)
	require.Equal(t, uint32(16000), f.Header.SamplesPerSec)
	require.Equal(t, uint32(5), f.Header.StateCount)
}

func TestFont_PartialSections(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "voice.vfnt")

	w, err := NewWriter(fontPath)
	require.NoError(t, err)
	require.NoError(t, w.SetModelFromContainer(createTestContainer(t, dir)))
	require.NoError(t, w.Close())

	f, err := Open(fontPath)
	require.NoError(t, err)
	require.Nil(t, f.Questions)
	require.Nil(t, f.Strings)
	require.NotNil(t, f.Model)

	_, ok := f.StringID("anything")
	require.False(t, ok, "no pool, no IDs")

	// The absent slots stay zero in the header.
	require.Equal(t, section.SectionRange{}, f.Header.Sections[section.SlotQuestions])
	require.Equal(t, section.SectionRange{}, f.Header.Sections[section.SlotStringPool])
}

func TestFont_StringID(t *testing.T) {
	fontPath, _, pool := createTestFont(t)

	f, err := Open(fontPath)
	require.NoError(t, err)

	want, ok := pool.Lookup("pau")
	require.True(t, ok)

	got, ok := f.StringID("pau")
	require.True(t, ok)
	require.Equal(t, want, got)
}

func TestFont_WithDecode(t *testing.T) {
	fontPath, _, _ := createTestFont(t)

	f, err := Open(fontPath, WithDecode())
	require.NoError(t, err)

	for _, tbl := range f.Model.Tables {
		require.NotNil(t, tbl.Values, "decode materializes model tables")
	}
}

func TestWriter_Closed(t *testing.T) {
	dir := t.TempDir()
	fontPath := filepath.Join(dir, "voice.vfnt")

	w, err := NewWriter(fontPath)
	require.NoError(t, err)
	require.NoError(t, w.SetModelFromContainer(createTestContainer(t, dir)))
	require.NoError(t, w.Close())

	require.ErrorIs(t, w.SetQuestions(NewQuestionSet()), errs.ErrWriterClosed)
	require.ErrorIs(t, w.SetModel(nil), errs.ErrWriterClosed)
	require.ErrorIs(t, w.SetStringPool(NewStringPool()), errs.ErrWriterClosed)
	require.ErrorIs(t, w.Close(), errs.ErrWriterClosed)
}

func TestWriter_SetModelFromContainer(t *testing.T) {
	t.Run("trailing container padding is dropped", func(t *testing.T) {
		dir := t.TempDir()
		containerPath := createTestContainer(t, dir)

		// Legacy containers may end with terminator words.
		padded, err := os.ReadFile(containerPath)
		require.NoError(t, err)
		padded = append(padded, 0xFF, 0xFF, 0xFF, 0xFF)
		require.NoError(t, os.WriteFile(containerPath, padded, 0o644))

		fontPath := filepath.Join(dir, "voice.vfnt")
		w, err := NewWriter(fontPath)
		require.NoError(t, err)
		require.NoError(t, w.SetModelFromContainer(containerPath))
		require.NoError(t, w.Close())

		// The embedded section is canonical, so strict parsing succeeds.
		f, err := Open(fontPath, WithStrict())
		require.NoError(t, err)
		require.Len(t, f.Model.Tables, 2)
	})

	t.Run("short container", func(t *testing.T) {
		dir := t.TempDir()
		containerPath := createTestContainer(t, dir)

		data, err := os.ReadFile(containerPath)
		require.NoError(t, err)
		require.NoError(t, os.WriteFile(containerPath, data[:len(data)-10], 0o644))

		w, err := NewWriter(filepath.Join(dir, "voice.vfnt"))
		require.NoError(t, err)
		require.ErrorIs(t, w.SetModelFromContainer(containerPath), errs.ErrTruncatedData)
	})

	t.Run("wrong artifact kind", func(t *testing.T) {
		dir := t.TempDir()

		// A font artifact is not a container.
		otherFont, _, _ := createTestFont(t)

		w, err := NewWriter(filepath.Join(dir, "voice.vfnt"))
		require.NoError(t, err)
		require.ErrorIs(t, w.SetModelFromContainer(otherFont), errs.ErrInvalidMagicTag)
	})

	t.Run("embedded payload form", func(t *testing.T) {
		dir := t.TempDir()
		containerPath := createTestContainer(t, dir)

		data, err := os.ReadFile(containerPath)
		require.NoError(t, err)

		fontPath := filepath.Join(dir, "voice.vfnt")
		w, err := NewWriter(fontPath)
		require.NoError(t, err)
		require.NoError(t, w.SetModel(data[section.HeaderSize:]))
		require.NoError(t, w.Close())

		f, err := Open(fontPath)
		require.NoError(t, err)
		require.Len(t, f.Model.Tables, 2)
	})
}

func TestOpen_Malformed(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("wrong tag", func(t *testing.T) {
		dir := t.TempDir()
		containerPath := createTestContainer(t, dir)

		_, err := Open(containerPath)
		require.ErrorIs(t, err, errs.ErrInvalidMagicTag)
	})

	t.Run("section beyond declared payload", func(t *testing.T) {
		fontPath, _, _ := createTestFont(t)
		data, err := os.ReadFile(fontPath)
		require.NoError(t, err)

		// Inflate the question section size past the payload.
		sizeOff := 56 + 8*section.SlotQuestions + 4
		engine.PutUint32(data[sizeOff:], 0xFFFFFF)

		_, err = Parse(data)
		require.ErrorIs(t, err, errs.ErrInvalidSectionRange)
	})

	t.Run("file shorter than declared", func(t *testing.T) {
		fontPath, _, _ := createTestFont(t)
		data, err := os.ReadFile(fontPath)
		require.NoError(t, err)

		_, err = Parse(data[:len(data)-10])
		require.ErrorIs(t, err, errs.ErrTruncatedData)
	})

	t.Run("trailing bytes tolerated by default", func(t *testing.T) {
		fontPath, _, _ := createTestFont(t)
		data, err := os.ReadFile(fontPath)
		require.NoError(t, err)

		padded := append(data, 0, 0, 0, 0)
		f, err := Parse(padded)
		require.NoError(t, err)
		require.NotNil(t, f.Model)

		_, err = Parse(padded, WithStrict())
		require.ErrorIs(t, err, errs.ErrSizeMismatch)
	})

	t.Run("corrupt model section", func(t *testing.T) {
		fontPath, _, _ := createTestFont(t)
		data, err := os.ReadFile(fontPath)
		require.NoError(t, err)

		header, err := section.ParseFontHeader(data, engine)
		require.NoError(t, err)

		// Stamp an impossible index count into the embedded container
		// sub-header.
		modelOff := section.HeaderSize + int(header.Sections[section.SlotModel].Offset)
		engine.PutUint32(data[modelOff:], 0xFFFFFF)

		_, err = Parse(data)
		require.ErrorIs(t, err, errs.ErrInvalidIndexEntry)
	})
}
