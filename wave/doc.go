// Package wave implements the waveform stream artifact ("VFWV") and its
// sentence index side table ("VFWI").
//
// A stream is a font header followed by opaque compressed audio frames of a
// fixed size derived from the header's audio fields (samples per frame times
// bits per sample). The codec that produced the frames is outside this
// package; the stream only carries and slices the bytes.
//
// The index maps sentence identifiers to frame ranges inside the stream,
// sorted by identifier so a sentence can be located with a binary search:
//
//	idx, err := wave.ReadIndex("voice.vfwi")
//	if err != nil {
//		return err
//	}
//	entry, ok := idx.Lookup("utt0042")
//	if !ok {
//		return fmt.Errorf("sentence not recorded")
//	}
//	stream, err := wave.ReadStream("voice.vfwv")
//	if err != nil {
//		return err
//	}
//	frames, err := stream.FrameRange(entry.FirstFrame, entry.FrameCount)
//
// Streams are compressed in BlockSize-byte blocks; the postedit package pads
// split segments to that alignment.
package wave
