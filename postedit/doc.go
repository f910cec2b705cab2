// Package postedit applies structural edits to serialized voice-font
// artifacts without re-encoding their contents.
//
// Two edits exist. InsertFrames splices zero-valued rows into a data table's
// encoded byte buffer, keeping its row map consistent so the inserted rows
// stay unreachable. Splitter cuts an indexed waveform stream into
// per-segment files at sentence boundaries, padding each segment to the
// wave.BlockSize compression block.
//
// Editor combines both: after a split, every frame reference at or after a
// padded boundary has shifted by the accumulated fill count, so the sentence
// index and the per-frame acoustic containers (LPCC, F0, gain, power, pitch
// markers) must shift with it:
//
//	sp, err := postedit.NewSplitter(stream, index, []int{120, 260, 400})
//	if err != nil {
//		return err
//	}
//	ed, err := postedit.NewEditor(sp,
//		postedit.WithAuxiliary(format.KindLPCC, "voice_lpcc.vfdt"),
//		postedit.WithAuxiliary(format.KindF0, "voice_f0.vfdt"),
//	)
//	if err != nil {
//		return err
//	}
//	result, err := ed.Run("out", "voice")
//
// A required auxiliary container that is missing on disk is logged as a
// warning and skipped; older fonts legitimately lack some of them.
package postedit
