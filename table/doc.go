// Package table implements the keyed data-table container format used to
// store trained acoustic model data inside voice fonts.
//
// A container holds heterogeneous 2-D numeric tables addressed by fixed-length
// signed integer keys: acoustic data tables are keyed by data kind (key length
// 1), concatenation cost tables by unit group pair (key length 2). Each table
// carries its own quantization settings and optional row/column index maps, so
// a single container can mix raw float32 matrices with bit-packed streams at
// different widths.
//
// # On-Disk Layout
//
// A container file is a "VFDT" artifact (little-endian throughout):
//
//	FontHeader (132 bytes, tag "VFDT")
//	TableHeader: tableCount uint32, keyLength uint32
//	Index: tableCount entries of {key keyLength×int32, offset int64, size uint32}
//	Data section: concatenated table bodies
//
// Index offsets are relative to the start of the data section. The index
// locates raw byte ranges only; everything needed to decode a table (its
// attribute word, quantization parameters, shape and maps) is stored inline
// at the start of its body:
//
//	attr    int32   bit0 row map, bit1 column map, bit2 raw float32 values
//	bits    int32   code width of the packed value stream
//	scale   float32 linear dequantization scale
//	offset  float32 linear dequantization offset
//	[mapRowCount int32, present iff attr bit0]
//	matrixRowCount int32
//	[mapColCount int32, present iff attr bit1]
//	matrixColCount int32
//	[rowMap mapRowCount×uint16]
//	[colMap mapColCount×uint16]
//	value bytes
//
// Value bytes are row padded: every matrix row starts at a byte boundary, so
// structural editors can splice whole rows without re-packing the bitstream.
//
// # Writing
//
//	w, err := table.NewWriter("model.vfdt", 1)
//	if err != nil { ... }
//	err = w.Add(&table.Table{
//		Key:    table.Key{int32(format.KindF0)},
//		Rows:   frames,
//		Cols:   1,
//		Values: f0,
//	}, table.Setting{Bits: 8, Scale: 2.0, Offset: 50.0})
//	if err != nil { ... }
//	if err := w.Close(); err != nil { ... }
//
// The writer spools encoded bodies to a scratch file next to the destination
// and assembles header, index and data on Close. A writer is single use and
// not safe for concurrent use.
//
// # Reading
//
//	f, err := table.ReadFile("model.vfdt")
//	t, s, ok := f.Table(table.Key{int32(format.KindF0)})
//	values, err := t.Materialize(s)
//
// By default tables are read in passthrough form: the packed value bytes are
// kept as-is and floats are only produced on Materialize. Pass WithDecode to
// materialize everything up front, and WithStrict to turn the default
// tolerance for trailing bytes and truncated trailing tables into errors.
package table
