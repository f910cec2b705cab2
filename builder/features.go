package builder

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"github.com/arloliu/voicefont/errs"
	"github.com/arloliu/voicefont/table"
)

// Feature extractor output is plain text: one matrix row per line, columns
// whitespace-delimited, each value formatted with six decimal places. Lines
// that are blank or start with '#' carry no data. Both sides of the contract
// live here so tests can generate the exact files the extractors would.

// maxFeatureLine bounds a single feature row in bytes. Neural weight rows
// run to thousands of columns, far past bufio.Scanner's default limit.
const maxFeatureLine = 8 * 1024 * 1024

// ReadRows parses a feature matrix from extractor output.
//
// Rows are returned as parsed, without shape validation; TableFromRows
// checks rectangularity when the matrix becomes a table.
func ReadRows(r io.Reader) ([][]float32, error) {
	var rows [][]float32

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFeatureLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		row := make([]float32, 0, len(fields))
		for _, field := range fields {
			v, err := strconv.ParseFloat(field, 32)
			if err != nil {
				return nil, fmt.Errorf("feature line %d: %w", lineNo, err)
			}
			row = append(row, float32(v))
		}

		rows = append(rows, row)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("feature line %d: %w", lineNo+1, err)
	}

	return rows, nil
}

// ReadRowsFile parses a feature matrix file.
func ReadRowsFile(path string) ([][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rows, err := ReadRows(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return rows, nil
}

// WriteRows writes a feature matrix in the extractor output format:
// six decimal places, single-space separated, one row per line.
func WriteRows(w io.Writer, rows [][]float32) error {
	bw := bufio.NewWriter(w)

	for _, row := range rows {
		for i, v := range row {
			if i > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			if _, err := bw.WriteString(strconv.FormatFloat(float64(v), 'f', 6, 32)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// WriteRowsFile writes a feature matrix file.
func WriteRowsFile(path string, rows [][]float32) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	defer func() {
		cerr := f.Close()
		if err == nil {
			err = cerr
		}
	}()

	return WriteRows(f, rows)
}

// ReadIndexMap parses a row or column index map: whitespace-delimited
// unsigned integers, same comment and blank-line rules as feature files.
//
// Returns:
//   - []uint16: Map entries in file order
//   - error: errs.ErrShapeMismatch for an entry outside uint16 range, or
//     the underlying parse error
func ReadIndexMap(r io.Reader) ([]uint16, error) {
	var entries []uint16

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxFeatureLine)

	lineNo := 0
	for scanner.Scan() {
		lineNo++

		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		for _, field := range strings.Fields(line) {
			v, err := strconv.ParseUint(field, 10, 64)
			if err != nil {
				return nil, fmt.Errorf("index map line %d: %w", lineNo, err)
			}
			if v > math.MaxUint16 {
				return nil, fmt.Errorf("%w: index map line %d entry %d exceeds %d",
					errs.ErrShapeMismatch, lineNo, v, math.MaxUint16)
			}
			entries = append(entries, uint16(v))
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("index map line %d: %w", lineNo+1, err)
	}

	return entries, nil
}

// ReadIndexMapFile parses an index map file.
func ReadIndexMapFile(path string) ([]uint16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	entries, err := ReadIndexMap(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return entries, nil
}

// TableFromRows builds a keyed table from a parsed feature matrix.
//
// Returns:
//   - *table.Table: Table with the matrix flattened row-major into Values
//   - error: errs.ErrEmptyValues for an empty matrix, errs.ErrShapeMismatch
//     for ragged rows
func TableFromRows(key table.Key, rows [][]float32) (*table.Table, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: feature matrix has no rows", errs.ErrEmptyValues)
	}

	cols := len(rows[0])
	values := make([]float32, 0, len(rows)*cols)
	for i, row := range rows {
		if len(row) != cols {
			return nil, fmt.Errorf("%w: feature row %d has %d columns, row 0 has %d",
				errs.ErrShapeMismatch, i, len(row), cols)
		}
		values = append(values, row...)
	}

	return &table.Table{
		Key:    key,
		Rows:   len(rows),
		Cols:   cols,
		Values: values,
	}, nil
}
