package section

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
)

func createTestHeader(t *testing.T) *FontHeader {
	t.Helper()

	header := NewFontHeader(TagFont)
	header.FormatID = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")
	header.Build = 2045
	header.LangID = 1033
	header.SamplesPerSec = 16000
	header.BitsPerSample = 16
	header.SamplesPerFrame = 80
	header.StateCount = 5
	header.Sections[SlotQuestions] = SectionRange{Offset: 0, Size: 128}
	header.Sections[SlotModel] = SectionRange{Offset: 128, Size: 4096}
	header.Sections[SlotStringPool] = SectionRange{Offset: 4224, Size: 512}
	header.Size = 4736

	return header
}

func TestNewFontHeader(t *testing.T) {
	header := NewFontHeader(TagDataTable)

	require.Equal(t, TagDataTable, header.Tag)
	require.Equal(t, uint32(FormatVersion), header.Version)
	require.Equal(t, uint32(0), header.Size)
	require.Equal(t, uint32(0), header.FixedPoint)
}

func TestFontHeader_ParseBytes(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("round trip", func(t *testing.T) {
		original := createTestHeader(t)

		data := original.Bytes(engine)
		require.Len(t, data, HeaderSize)

		parsed := &FontHeader{}
		require.NoError(t, parsed.Parse(data, engine))
		require.Equal(t, *original, *parsed)
	})

	t.Run("fixed field offsets", func(t *testing.T) {
		header := createTestHeader(t)
		data := header.Bytes(engine)

		require.Equal(t, []byte("VFNT"), data[0:4])
		require.Equal(t, header.Size, engine.Uint32(data[HeaderSizeFieldOff:HeaderSizeFieldOff+4]))
		require.Equal(t, uint32(2045), engine.Uint32(data[28:32]))
		require.Equal(t, uint16(1033), engine.Uint16(data[32:34]))
		require.Equal(t, uint32(16000), engine.Uint32(data[40:44]))
		require.Equal(t, uint32(0), engine.Uint32(data[128:132]), "reserved tail")
	})

	t.Run("big endian round trip", func(t *testing.T) {
		be := endian.GetBigEndianEngine()
		original := createTestHeader(t)

		parsed := &FontHeader{}
		require.NoError(t, parsed.Parse(original.Bytes(be), be))
		require.Equal(t, *original, *parsed)
	})

	t.Run("wrong size", func(t *testing.T) {
		header := &FontHeader{}
		require.ErrorIs(t, header.Parse(make([]byte, HeaderSize-1), engine), errs.ErrInvalidHeaderSize)
		require.ErrorIs(t, header.Parse(make([]byte, HeaderSize+1), engine), errs.ErrInvalidHeaderSize)
	})
}

func TestFontHeader_Validate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		header := createTestHeader(t)
		require.NoError(t, header.Validate(TagFont))
	})

	t.Run("tag mismatch", func(t *testing.T) {
		header := createTestHeader(t)
		require.ErrorIs(t, header.Validate(TagDataTable), errs.ErrInvalidMagicTag)
	})

	t.Run("fixed point flag", func(t *testing.T) {
		header := createTestHeader(t)

		header.FixedPoint = 1
		require.NoError(t, header.Validate(TagFont))

		header.FixedPoint = 2
		require.ErrorIs(t, header.Validate(TagFont), errs.ErrInvalidFormatFlag)
	})
}

func TestFontHeader_ValidateSections(t *testing.T) {
	t.Run("sections inside payload", func(t *testing.T) {
		header := createTestHeader(t)
		require.NoError(t, header.ValidateSections())
	})

	t.Run("section beyond payload", func(t *testing.T) {
		header := createTestHeader(t)
		header.Sections[SlotStringPool] = SectionRange{Offset: 4700, Size: 100}
		require.ErrorIs(t, header.ValidateSections(), errs.ErrInvalidSectionRange)
	})

	t.Run("empty slots are ignored", func(t *testing.T) {
		header := createTestHeader(t)
		header.Sections[SlotCodebook] = SectionRange{Offset: 0xFFFFFFFF, Size: 0}
		require.NoError(t, header.ValidateSections())
	})
}

func TestFontHeader_BytesPerFrame(t *testing.T) {
	header := createTestHeader(t)
	require.Equal(t, 160, header.BytesPerFrame())

	header.BitsPerSample = 8
	require.Equal(t, 80, header.BytesPerFrame())
}

func TestParseFontHeader(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("accepts trailing payload bytes", func(t *testing.T) {
		original := createTestHeader(t)
		data := append(original.Bytes(engine), 1, 2, 3, 4)

		parsed, err := ParseFontHeader(data, engine)
		require.NoError(t, err)
		require.Equal(t, *original, parsed)
	})

	t.Run("short data", func(t *testing.T) {
		_, err := ParseFontHeader(make([]byte, 50), engine)
		require.ErrorIs(t, err, errs.ErrInvalidHeaderSize)
	})
}

func TestFloatAndInt64Helpers(t *testing.T) {
	engine := endian.GetLittleEndianEngine()

	t.Run("float32 bit pattern", func(t *testing.T) {
		b := make([]byte, 4)
		PutFloat32(b, engine, -123.456)
		require.Equal(t, float32(-123.456), Float32(b, engine))
	})

	t.Run("int64 bit pattern", func(t *testing.T) {
		b := make([]byte, 8)
		PutInt64(b, engine, -1)
		require.Equal(t, int64(-1), Int64(b, engine))

		PutInt64(b, engine, 1<<40)
		require.Equal(t, int64(1<<40), Int64(b, engine))
	})
}
