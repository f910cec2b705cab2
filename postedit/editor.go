package postedit

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/arloliu/voicefont/format"
	"github.com/arloliu/voicefont/internal/options"
	"github.com/arloliu/voicefont/table"
	"github.com/arloliu/voicefont/wave"
)

// Auxiliary names a per-frame acoustic container that must stay frame
// aligned with the waveform stream.
type Auxiliary struct {
	Kind format.DataKind
	Path string
}

// Editor drives a waveform split and propagates the resulting fill frames
// to the sentence index and the auxiliary acoustic containers.
//
// Splitting pads each segment to a block multiple, which shifts every frame
// reference after a boundary by the accumulated fill count. The editor
// applies that shift to a copy of the sentence index and splices matching
// zero rows into each auxiliary container's tables.
type Editor struct {
	splitter *Splitter
	aux      []Auxiliary
	logger   logrus.FieldLogger
}

// EditorOption represents a functional option for configuring an Editor.
type EditorOption = options.Option[*Editor]

// WithAuxiliary registers a per-frame acoustic container to keep aligned.
// A registered container missing on disk is logged and skipped, not fatal;
// older fonts legitimately lack some kinds.
func WithAuxiliary(kind format.DataKind, path string) EditorOption {
	return options.NoError(func(e *Editor) {
		e.aux = append(e.aux, Auxiliary{Kind: kind, Path: path})
	})
}

// WithLogger replaces the process-wide standard logger.
func WithLogger(logger logrus.FieldLogger) EditorOption {
	return options.NoError(func(e *Editor) {
		e.logger = logger
	})
}

// NewEditor creates an editor around a validated splitter.
func NewEditor(sp *Splitter, opts ...EditorOption) (*Editor, error) {
	e := &Editor{
		splitter: sp,
		logger:   logrus.StandardLogger(),
	}

	if err := options.Apply(e, opts...); err != nil {
		return nil, err
	}

	return e, nil
}

// SegmentFiles names one written segment's output files.
type SegmentFiles struct {
	StreamPath string
	IndexPath  string
	// FillFrames is the zero-frame padding the segment received.
	FillFrames int
}

// Result reports what an edit run produced.
type Result struct {
	// Segments holds the written segment files in boundary order.
	Segments []SegmentFiles
	// TotalFillFrames is the zero-frame count inserted across all
	// boundaries.
	TotalFillFrames int
	// Index is the source sentence index rebased to the padded timeline.
	Index *wave.Index
	// UpdatedAux lists the auxiliary containers that received zero rows.
	UpdatedAux []format.DataKind
	// MissingAux lists registered containers not found on disk.
	MissingAux []format.DataKind
}

// Run splits the stream into dir, writing one "<base>_NNN.vfwv" stream and
// "<base>_NNN.vfwi" index per segment, then propagates the fill frames to
// the rebased index and the registered auxiliary containers in place.
//
// Parameters:
//   - dir: Output directory, created if absent
//   - base: Output file name prefix
//
// Returns:
//   - *Result: Written files, fill totals and the rebased index
//   - error: Split errors, I/O errors, or frame-splice errors in an
//     auxiliary container
func (e *Editor) Run(dir, base string) (*Result, error) {
	segments, err := e.splitter.Split()
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	result := &Result{Segments: make([]SegmentFiles, 0, len(segments))}
	for k, seg := range segments {
		files := SegmentFiles{
			StreamPath: filepath.Join(dir, fmt.Sprintf("%s_%03d.vfwv", base, k)),
			IndexPath:  filepath.Join(dir, fmt.Sprintf("%s_%03d.vfwi", base, k)),
			FillFrames: seg.FillFrames,
		}

		if err := seg.Stream.WriteFile(files.StreamPath); err != nil {
			return nil, err
		}
		if err := seg.Index.WriteFile(files.IndexPath); err != nil {
			return nil, err
		}

		e.logger.WithFields(logrus.Fields{
			"segment":   k,
			"sentences": seg.Index.Count(),
			"frames":    seg.Stream.FrameCount(),
			"fill":      seg.FillFrames,
		}).Info("wrote waveform segment")

		result.Segments = append(result.Segments, files)
		result.TotalFillFrames += seg.FillFrames
	}

	result.Index = e.paddedIndex(segments)

	if result.TotalFillFrames == 0 {
		// Nothing shifted, so the auxiliary containers are already aligned.
		return result, nil
	}

	for _, aux := range e.aux {
		updated, err := e.updateAuxiliary(aux, segments)
		if err != nil {
			return nil, fmt.Errorf("%s container %s: %w", aux.Kind, aux.Path, err)
		}
		if updated {
			result.UpdatedAux = append(result.UpdatedAux, aux.Kind)
		} else {
			result.MissingAux = append(result.MissingAux, aux.Kind)
		}
	}

	return result, nil
}

// paddedIndex rebases a copy of the source index to the padded timeline:
// sentences at or after each boundary shift by the fill accumulated up to
// that boundary.
func (e *Editor) paddedIndex(segments []*Segment) *wave.Index {
	padded := &wave.Index{
		Header:  e.splitter.index.Header,
		Entries: slices.Clone(e.splitter.index.Entries),
	}

	ends := e.splitter.segmentEnds()
	shifted := 0
	for k, seg := range segments {
		if seg.FillFrames == 0 {
			continue
		}
		padded.ShiftFrom(ends[k]+uint32(shifted), uint32(seg.FillFrames)) //nolint:gosec // fill counts are small and non-negative
		shifted += seg.FillFrames
	}

	return padded
}

// updateAuxiliary splices zero rows into every table of one acoustic
// container at each padded boundary and rewrites the file in place. A
// missing file is reported, not failed.
func (e *Editor) updateAuxiliary(aux Auxiliary, segments []*Segment) (bool, error) {
	f, err := table.ReadFile(aux.Path)
	if errors.Is(err, fs.ErrNotExist) {
		e.logger.WithFields(logrus.Fields{
			"kind": aux.Kind.String(),
			"path": aux.Path,
		}).Warn("auxiliary acoustic container missing, frame update skipped")

		return false, nil
	}
	if err != nil {
		return false, err
	}

	ends := e.splitter.segmentEnds()
	inserted := 0
	for k, seg := range segments {
		if seg.FillFrames == 0 {
			continue
		}
		at := int(ends[k]) + inserted
		for i, t := range f.Tables {
			if err := InsertFrames(t, f.Settings[i], at, seg.FillFrames); err != nil {
				return false, fmt.Errorf("table %s: %w", t.Key, err)
			}
		}
		inserted += seg.FillFrames
	}

	// Rewrite through a sibling file so a failed write leaves the original
	// container intact.
	tmp := aux.Path + ".rewrite"
	w, err := table.NewWriter(tmp, f.KeyLength, table.WithHeader(f.Header))
	if err != nil {
		return false, err
	}
	for i, t := range f.Tables {
		if err := w.Add(t, f.Settings[i]); err != nil {
			_ = w.Close()
			_ = os.Remove(tmp)

			return false, err
		}
	}
	if err := w.Close(); err != nil {
		_ = os.Remove(tmp)

		return false, err
	}
	if err := os.Rename(tmp, aux.Path); err != nil {
		_ = os.Remove(tmp)

		return false, err
	}

	e.logger.WithFields(logrus.Fields{
		"kind":           aux.Kind.String(),
		"path":           aux.Path,
		"insertedFrames": inserted,
	}).Info("updated auxiliary acoustic container")

	return true, nil
}
