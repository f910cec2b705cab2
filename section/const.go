package section

// Artifact tags. Every serialized voice-font artifact starts with a FontHeader
// whose 4-byte tag identifies the artifact kind.
var (
	TagFont       = Tag{'V', 'F', 'N', 'T'} // assembled voice font
	TagDataTable  = Tag{'V', 'F', 'D', 'T'} // keyed data-table container
	TagAcdData    = Tag{'V', 'F', 'A', 'D'} // single-table acoustic data file
	TagWaveStream = Tag{'V', 'F', 'W', 'V'} // compressed waveform stream
	TagWaveIndex  = Tag{'V', 'F', 'W', 'I'} // waveform sentence index side table
)

const (
	// Table attribute bits (low bits of the table body attribute word)
	AttrRowMap    = 0x0001 // Mask for row map presence (bit 0)
	AttrColumnMap = 0x0002 // Mask for column map presence (bit 1)
	AttrRawFloats = 0x0004 // Mask for uncompressed float32 values (bit 2)

	// Section slots in the FontHeader section table.
	// Offsets are absolute from the start of the payload (the byte after the header);
	// a slot with size zero is absent.
	SlotQuestions  = 0 // question/schema section
	SlotModel      = 1 // model data-table container section
	SlotStringPool = 2 // string pool section
	SlotCodebook   = 3 // codebook section (reserved, never written)

	// FormatVersion is the voice-font format version written into new headers.
	FormatVersion = 1
)

// Offsets and section sizes in voice-font artifacts
const (
	HeaderSize          = 132        // fixed font header size in bytes (shared by all artifact kinds)
	HeaderSizeFieldOff  = 20         // byte offset of the header Size field, the back-patch target
	SectionSlots        = 9          // number of offset/size pairs in the header section table
	TableHeaderSize     = 8          // fixed data-table container sub-header size in bytes
	IndexEntryFixedSize = 12         // index entry size in bytes excluding the key tuple
	TableHeaderOffset   = HeaderSize // byte offset where the container sub-header starts
)

// IndexEntrySize returns the on-disk size in bytes of one table index entry
// for containers with the given key length.
func IndexEntrySize(keyLength int) int {
	return keyLength*4 + IndexEntryFixedSize
}
