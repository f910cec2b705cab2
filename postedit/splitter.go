package postedit

import (
	"fmt"
	"slices"

	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/wave"
)

// Splitter cuts an indexed waveform stream into segments at sentence
// boundaries.
//
// Boundaries are cumulative sentence counts over the index's identifier
// order: counts {120, 260, 400} split a 400-sentence stream into segments of
// 120, 140 and 140 sentences. A segment spans from its first sentence's
// first frame to the next segment's first frame (the last segment runs to
// the stream end), so inter-sentence gap frames stay with the segment that
// precedes them.
//
// Each segment is padded with zero frames to a wave.BlockSize multiple.
// Block-aligned decoders skip to the next block at a segment end, so frame
// references after a boundary shift by the gap whether or not the zero
// bytes are physically present; the fill counts the splitter reports drive
// that propagation.
type Splitter struct {
	stream *wave.Stream
	index  *wave.Index
	bounds []int
	fill   bool
}

// SplitterOption represents a functional option for configuring a Splitter.
type SplitterOption = options.Option[*Splitter]

// WithoutFill omits the physical zero bytes from padded segments, for
// codecs that pad implicitly at block boundaries. Alignment gaps are still
// computed and reported for frame-reference propagation.
func WithoutFill() SplitterOption {
	return options.NoError(func(sp *Splitter) {
		sp.fill = false
	})
}

// Segment is one split output: its stream, its sentence index rebased to
// the segment's first frame, and the zero frames appended for block
// alignment.
type Segment struct {
	Stream *wave.Stream
	Index  *wave.Index
	// FillFrames is the number of zero frames padding the segment to a
	// block multiple.
	FillFrames int
}

// NewSplitter validates the split inputs and returns a ready splitter.
//
// Parameters:
//   - stream: Source waveform stream
//   - index: The stream's sentence index
//   - counts: Cumulative per-segment sentence counts, strictly increasing,
//     ending at the index's sentence count
//   - opts: Optional configuration (WithoutFill)
//
// Returns:
//   - *Splitter: Ready splitter
//   - error: errs.ErrInvalidBlockSize when the stream's frame size does not
//     divide the block size, errs.ErrInvalidSegment for bad counts,
//     errs.ErrInvalidFrameRange or errs.ErrInvalidIndexEntry when the index
//     disagrees with the stream
func NewSplitter(stream *wave.Stream, index *wave.Index, counts []int, opts ...SplitterOption) (*Splitter, error) {
	bpf := stream.BytesPerFrame()
	if bpf <= 0 || wave.BlockSize%bpf != 0 {
		return nil, fmt.Errorf("%w: %d-byte blocks cannot hold whole %d-byte frames",
			errs.ErrInvalidBlockSize, wave.BlockSize, bpf)
	}

	prev := 0
	for i, c := range counts {
		if c <= prev {
			return nil, fmt.Errorf("%w: segment %d boundary %d does not advance past %d",
				errs.ErrInvalidSegment, i, c, prev)
		}
		prev = c
	}
	if prev != index.Count() {
		return nil, fmt.Errorf("%w: boundaries end at sentence %d, index has %d",
			errs.ErrInvalidSegment, prev, index.Count())
	}

	if err := index.Validate(uint64(stream.FrameCount())); err != nil {
		return nil, err
	}

	// Sentences must be laid out in identifier order for boundary frame
	// arithmetic to hold.
	for i := 1; i < index.Count(); i++ {
		if uint64(index.Entries[i].FirstFrame) < index.Entries[i-1].End() {
			return nil, fmt.Errorf("%w: sentence %q frames precede the end of %q",
				errs.ErrInvalidIndexEntry, index.Entries[i].ID, index.Entries[i-1].ID)
		}
	}

	sp := &Splitter{
		stream: stream,
		index:  index,
		bounds: slices.Clone(counts),
		fill:   true,
	}

	if err := options.Apply(sp, opts...); err != nil {
		return nil, err
	}

	return sp, nil
}

// segmentEnds returns each segment's end in source frame numbers: the next
// segment's first frame, or the stream's frame count for the last segment.
func (sp *Splitter) segmentEnds() []uint32 {
	ends := make([]uint32, len(sp.bounds))
	for k, bound := range sp.bounds {
		if bound < sp.index.Count() {
			ends[k] = sp.index.Entries[bound].FirstFrame
		} else {
			ends[k] = uint32(sp.stream.FrameCount()) //nolint:gosec // bounded by index validation
		}
	}

	return ends
}

// Split cuts the stream and returns the segments in order.
//
// Returns:
//   - []*Segment: One entry per boundary, with rebased sentence indices
//   - error: errs.ErrInvalidFrameRange when a boundary falls outside the
//     stream
func (sp *Splitter) Split() ([]*Segment, error) {
	bpf := sp.stream.BytesPerFrame()
	blockFrames := wave.BlockSize / bpf
	ends := sp.segmentEnds()

	segments := make([]*Segment, 0, len(sp.bounds))
	start := 0
	for k, bound := range sp.bounds {
		sentences := sp.index.Entries[start:bound]
		segFirst := sentences[0].FirstFrame
		segFrames := ends[k] - segFirst

		frames, err := sp.stream.FrameRange(segFirst, segFrames)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", k, err)
		}

		fillFrames := 0
		if rem := int(segFrames) % blockFrames; rem != 0 {
			fillFrames = blockFrames - rem
		}

		out := frames
		if sp.fill && fillFrames > 0 {
			out = make([]byte, 0, len(frames)+fillFrames*bpf)
			out = append(out, frames...)
			out = append(out, make([]byte, fillFrames*bpf)...)
		}

		segIndex := &wave.Index{Header: sp.index.Header}
		segIndex.Entries = make([]wave.Entry, 0, len(sentences))
		for _, e := range sentences {
			segIndex.Entries = append(segIndex.Entries, wave.Entry{
				ID:         e.ID,
				FirstFrame: e.FirstFrame - segFirst,
				FrameCount: e.FrameCount,
			})
		}

		segments = append(segments, &Segment{
			Stream:     wave.NewStream(sp.stream.Header, out),
			Index:      segIndex,
			FillFrames: fillFrames,
		})
		start = bound
	}

	return segments, nil
}
