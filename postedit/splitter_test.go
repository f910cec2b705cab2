package postedit

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/section"
	"github.com/arloliu/voicefont/wave"
)

// createWaveHeader returns stream metadata with a 160-byte frame, so a
// 640-byte compression block holds exactly 4 frames.
func createWaveHeader() section.FontHeader {
	header := *section.NewFontHeader(section.TagWaveStream)
	header.SamplesPerSec = 16000
	header.BitsPerSample = 16
	header.SamplesPerFrame = 80

	return header
}

// createIndexedStream builds a 12-frame stream of byte-stamped frames with
// four back-to-back sentences: utt001 frames 0-3, utt002 4-5, utt003 6-8,
// utt004 9-11.
func createIndexedStream(t *testing.T) (*wave.Stream, *wave.Index) {
	t.Helper()

	header := createWaveHeader()
	bpf := header.BytesPerFrame()

	frames := make([]byte, 12*bpf)
	for f := range 12 {
		for b := range bpf {
			frames[f*bpf+b] = byte(f + 1)
		}
	}

	x := wave.NewIndex()
	require.NoError(t, x.Add("utt001", 0, 4))
	require.NoError(t, x.Add("utt002", 4, 2))
	require.NoError(t, x.Add("utt003", 6, 3))
	require.NoError(t, x.Add("utt004", 9, 3))

	return wave.NewStream(header, frames), x
}

func TestSplitter_Split(t *testing.T) {
	stream, index := createIndexedStream(t)
	bpf := stream.BytesPerFrame()

	sp, err := NewSplitter(stream, index, []int{2, 4})
	require.NoError(t, err)

	segments, err := sp.Split()
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// Both segments cover 6 frames, so each needs 2 fill frames to reach
	// the 4-frame block boundary.
	for k, seg := range segments {
		require.Equal(t, 2, seg.FillFrames, "segment %d", k)
		require.Equal(t, 8, seg.Stream.FrameCount(), "segment %d", k)

		pad := seg.Stream.Frames[6*bpf:]
		for _, b := range pad {
			require.Zero(t, b, "segment %d padding", k)
		}
	}

	// Segment frames carry the source bytes.
	require.Equal(t, stream.Frames[:6*bpf], segments[0].Stream.Frames[:6*bpf])
	require.Equal(t, stream.Frames[6*bpf:], segments[1].Stream.Frames[:6*bpf])

	// Per-segment indices are rebased to the segment start.
	e, ok := segments[0].Index.Lookup("utt002")
	require.True(t, ok)
	require.Equal(t, uint32(4), e.FirstFrame)

	e, ok = segments[1].Index.Lookup("utt003")
	require.True(t, ok)
	require.Equal(t, uint32(0), e.FirstFrame)

	e, ok = segments[1].Index.Lookup("utt004")
	require.True(t, ok)
	require.Equal(t, uint32(3), e.FirstFrame)

	_, ok = segments[1].Index.Lookup("utt001")
	require.False(t, ok)
}

func TestSplitter_AlignedSegmentsNeedNoFill(t *testing.T) {
	header := createWaveHeader()
	bpf := header.BytesPerFrame()
	stream := wave.NewStream(header, make([]byte, 8*bpf))

	x := wave.NewIndex()
	require.NoError(t, x.Add("utt001", 0, 4))
	require.NoError(t, x.Add("utt002", 4, 4))

	sp, err := NewSplitter(stream, x, []int{1, 2})
	require.NoError(t, err)

	segments, err := sp.Split()
	require.NoError(t, err)

	total := 0
	for k, seg := range segments {
		require.Zero(t, seg.FillFrames, "segment %d", k)
		total += seg.Stream.FrameCount()
	}
	require.Equal(t, stream.FrameCount(), total,
		"aligned boundaries preserve the total frame count")
}

func TestSplitter_GapFramesStayWithPrecedingSegment(t *testing.T) {
	header := createWaveHeader()
	bpf := header.BytesPerFrame()
	stream := wave.NewStream(header, make([]byte, 8*bpf))

	// Two gap frames (4-5) sit between the sentences.
	x := wave.NewIndex()
	require.NoError(t, x.Add("utt001", 0, 4))
	require.NoError(t, x.Add("utt002", 6, 2))

	sp, err := NewSplitter(stream, x, []int{1, 2})
	require.NoError(t, err)

	segments, err := sp.Split()
	require.NoError(t, err)

	// The first segment runs to utt002's first frame and absorbs the gap.
	require.Equal(t, 2, segments[0].FillFrames)
	require.Equal(t, 8, segments[0].Stream.FrameCount())
	require.Equal(t, 2, segments[1].FillFrames)
	require.Equal(t, 4, segments[1].Stream.FrameCount())
}

func TestSplitter_WithoutFill(t *testing.T) {
	stream, index := createIndexedStream(t)

	sp, err := NewSplitter(stream, index, []int{2, 4}, WithoutFill())
	require.NoError(t, err)

	segments, err := sp.Split()
	require.NoError(t, err)

	// Gaps are still reported for frame-reference propagation, only the
	// physical zero bytes are omitted.
	for k, seg := range segments {
		require.Equal(t, 2, seg.FillFrames, "segment %d", k)
		require.Equal(t, 6, seg.Stream.FrameCount(), "segment %d", k)
	}
}

func TestNewSplitter_Validation(t *testing.T) {
	stream, index := createIndexedStream(t)

	t.Run("frame size does not divide the block", func(t *testing.T) {
		header := createWaveHeader()
		header.SamplesPerFrame = 75 // 150-byte frames
		bad := wave.NewStream(header, nil)

		_, err := NewSplitter(bad, wave.NewIndex(), nil)
		require.ErrorIs(t, err, errs.ErrInvalidBlockSize)
	})

	t.Run("no frame size", func(t *testing.T) {
		bad := wave.NewStream(*section.NewFontHeader(section.TagWaveStream), nil)
		_, err := NewSplitter(bad, wave.NewIndex(), nil)
		require.ErrorIs(t, err, errs.ErrInvalidBlockSize)
	})

	t.Run("boundaries not increasing", func(t *testing.T) {
		_, err := NewSplitter(stream, index, []int{2, 2})
		require.ErrorIs(t, err, errs.ErrInvalidSegment)
	})

	t.Run("boundaries end short of the index", func(t *testing.T) {
		_, err := NewSplitter(stream, index, []int{2, 3})
		require.ErrorIs(t, err, errs.ErrInvalidSegment)
	})

	t.Run("no boundaries", func(t *testing.T) {
		_, err := NewSplitter(stream, index, nil)
		require.ErrorIs(t, err, errs.ErrInvalidSegment)
	})

	t.Run("index reaches past the stream", func(t *testing.T) {
		x := wave.NewIndex()
		require.NoError(t, x.Add("utt001", 0, 13))

		_, err := NewSplitter(stream, x, []int{1})
		require.ErrorIs(t, err, errs.ErrInvalidFrameRange)
	})

	t.Run("sentences out of frame order", func(t *testing.T) {
		x := wave.NewIndex()
		require.NoError(t, x.Add("utt001", 6, 4))
		require.NoError(t, x.Add("utt002", 0, 4))

		_, err := NewSplitter(stream, x, []int{1, 2})
		require.ErrorIs(t, err, errs.ErrInvalidIndexEntry)
	})

	t.Run("overlapping sentences", func(t *testing.T) {
		x := wave.NewIndex()
		require.NoError(t, x.Add("utt001", 0, 5))
		require.NoError(t, x.Add("utt002", 4, 2))

		_, err := NewSplitter(stream, x, []int{1, 2})
		require.ErrorIs(t, err, errs.ErrInvalidIndexEntry)
	})
}
