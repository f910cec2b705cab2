// Package font assembles and reads complete voice-font artifacts.
//
// An assembled font is a "VFNT" artifact: a fixed 132-byte font header whose
// section table locates up to nine payload sections in fixed slot order:
//
//	Slot 0  question/schema section  (QuestionSet)
//	Slot 1  model section            (embedded data-table container payload)
//	Slot 2  string pool section      (StringPool)
//	Slot 3  codebook section         (reserved, never written)
//	Slot 4+ reserved
//
// Section offsets are absolute from the start of the payload, the byte after
// the header. A slot with size zero is absent.
//
// # Writing
//
//	w, err := font.NewWriter("voice.vfnt", font.WithHeader(meta))
//	if err != nil {
//	    return err
//	}
//	w.SetQuestions(questions)
//	if err := w.SetModelFromContainer("model.vfdt"); err != nil {
//	    return err
//	}
//	w.SetStringPool(pool)
//	if err := w.Close(); err != nil {
//	    return err
//	}
//
// The writer emits a placeholder header first, streams the sections in slot
// order, then back-patches the header with the final size and section table.
// The patch seeks under a scoped position guard, so the stream position is
// restored even when the patch write fails.
//
// # Reading
//
//	f, err := font.Open("voice.vfnt")
//	if err != nil {
//	    return err
//	}
//	lpcc, _, ok := f.Model.Table(table.Key{int32(format.KindLPCC)})
//
// Open validates the header tag and section ranges, then decodes each present
// section. The model section round-trips through the table package's
// container reader in its embedded (header-less) form.
//
// # Archives
//
// Export and Import wrap a finished artifact file in a small compressed frame
// for distribution. The codec is selectable through the compress package;
// Zstd is the default.
package font
