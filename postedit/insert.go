package postedit

import (
	"fmt"
	"math"
	"slices"

	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/table"
)

// InsertFrames splices frameCount zero-valued rows into a table at row
// position frameStart, in place.
//
// The encoded byte buffer becomes [rows before frameStart] + [zero rows] +
// [rows from frameStart onward] and the row count grows by frameCount; a
// materialized float matrix, when present, is spliced the same way. When the
// table carries a row map, entries referencing rows at or after frameStart
// shift by frameCount, and the inserted rows receive sentinel entries one
// past the last valid row so no pre-existing logical index can reach them.
//
// The setting must be the one the table was read or written with; its row
// byte length drives the splice positions.
//
// Parameters:
//   - t: Table to edit, in encoded or materialized form
//   - s: The table's storage setting
//   - frameStart: Row position of the splice, 0..t.Rows
//   - frameCount: Number of zero rows to insert
//
// Returns:
//   - error: errs.ErrInvalidFrameRange for an out-of-range splice position
//     or a row map that cannot address the grown table,
//     errs.ErrInvalidTableBody when the byte buffer disagrees with the
//     table's shape
func InsertFrames(t *table.Table, s table.Setting, frameStart, frameCount int) error {
	if frameStart < 0 || frameStart > t.Rows || frameCount < 0 {
		return fmt.Errorf("%w: insert %d frames at row %d of a %d-row table",
			errs.ErrInvalidFrameRange, frameCount, frameStart, t.Rows)
	}
	if frameCount == 0 {
		return nil
	}

	if t.Bytes == nil && t.Values == nil {
		return fmt.Errorf("%w: table %s carries no value data", errs.ErrInvalidTableBody, t.Key)
	}

	newRows := t.Rows + frameCount

	if len(t.RowMap) > 0 {
		if frameStart > len(t.RowMap) {
			return fmt.Errorf("%w: insert at row %d beyond the %d-entry row map",
				errs.ErrInvalidFrameRange, frameStart, len(t.RowMap))
		}
		if newRows > math.MaxUint16 {
			return fmt.Errorf("%w: row map cannot address %d rows", errs.ErrInvalidFrameRange, newRows)
		}
	}

	if t.Bytes != nil {
		rowBytes := s.RowBytes(t.Cols)
		if len(t.Bytes) != t.Rows*rowBytes {
			return fmt.Errorf("%w: table %s has %d value bytes, %d rows of %d bytes need %d",
				errs.ErrInvalidTableBody, t.Key, len(t.Bytes), t.Rows, rowBytes, t.Rows*rowBytes)
		}
		t.Bytes = slices.Insert(t.Bytes, frameStart*rowBytes, make([]byte, frameCount*rowBytes)...)
	}

	if t.Values != nil {
		t.Values = slices.Insert(t.Values, frameStart*t.Cols, make([]float32, frameCount*t.Cols)...)
	}

	if len(t.RowMap) > 0 {
		for i, m := range t.RowMap {
			if int(m) >= frameStart {
				t.RowMap[i] = m + uint16(frameCount) //nolint:gosec // bounded by the address check
			}
		}

		// A repeated insert shifts earlier sentinels along with real
		// references, so they keep pointing one past the last valid row.
		sentinel := uint16(newRows) //nolint:gosec // bounded by the address check
		t.RowMap = slices.Insert(t.RowMap, frameStart, slices.Repeat([]uint16{sentinel}, frameCount)...)
	}

	t.Rows = newRows

	return nil
}
