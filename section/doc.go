// Package section defines the low-level binary structures and constants of the
// voice-font artifact format.
//
// This package provides the foundational types that define the physical layout
// of voice-font artifacts. It handles binary serialization/deserialization of
// the font header, the data-table container sub-header and the table index
// entries, ensuring a consistent byte-level representation across platforms.
//
// # Artifact Structure
//
// Every serialized artifact starts with the same fixed 132-byte FontHeader;
// the 4-byte tag identifies the artifact kind and the Size field counts the
// payload bytes that follow the header:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ FontHeader (132 bytes, fixed)                           │
//	│  - Tag (4 bytes): "VFNT"/"VFDT"/"VFAD"/"VFWV"/"VFWI"    │
//	│  - FormatID (16 bytes): format revision GUID            │
//	│  - Size (4 bytes): payload bytes after the header       │
//	│  - Version, Build, audio parameters                     │
//	│  - Section table: 9 × {offset, size} pairs              │
//	├─────────────────────────────────────────────────────────┤
//	│ Payload (variable, layout depends on the tag)           │
//	└─────────────────────────────────────────────────────────┘
//
// A data-table container ("VFDT") payload is:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ TableHeader (8 bytes)                                   │
//	│  - TableCount (4 bytes)                                 │
//	│  - KeyLength (4 bytes): int32 components per key        │
//	├─────────────────────────────────────────────────────────┤
//	│ Index (TableCount entries, fixed size per container)    │
//	│  - Key (KeyLength × 4 bytes)                            │
//	│  - Offset (8 bytes): from the data section start        │
//	│  - Size (4 bytes): table body length                    │
//	├─────────────────────────────────────────────────────────┤
//	│ Data section: concatenated table bodies                 │
//	└─────────────────────────────────────────────────────────┘
//
// The index locates raw byte ranges only. A table body is self-describing: it
// opens with an attribute word (TableAttr), quantization parameters, shape
// counts and optional row/column maps, followed by the value bytes.
//
// # Header Format
//
// FontHeader (132 bytes):
//
//	Bytes   | Field           | Type    | Description
//	--------|-----------------|---------|----------------------------------
//	0-3     | Tag             | [4]byte | Artifact kind tag
//	4-19    | FormatID        | UUID    | Format revision GUID
//	20-23   | Size            | uint32  | Payload bytes after the header
//	24-27   | Version         | uint32  | Voice-font format version
//	28-31   | Build           | uint32  | Voice build number
//	32-33   | LangID          | uint16  | Language identifier
//	34-35   | ShortPause      | uint16  | Short-pause unit flag
//	36-39   | FixedPoint      | uint32  | 0 = float, 1 = fixed point
//	40-43   | SamplesPerSec   | uint32  | Audio sampling rate
//	44-47   | BitsPerSample   | uint32  | Sample width in bits
//	48-51   | SamplesPerFrame | uint32  | Samples per analysis frame
//	52-55   | StateCount      | uint32  | HMM states per model unit
//	56-127  | Sections        | 9×8 B   | Section offset/size pairs
//	128-131 | Reserved        | uint32  | Written as zero
//
// Section slots follow a fixed order (SlotQuestions, SlotModel,
// SlotStringPool, SlotCodebook, remaining slots reserved); offsets are
// absolute from the start of the payload and a slot with size zero is absent.
//
// # Byte Order
//
// The voice-font format is little-endian on disk. All Parse/Bytes methods
// nevertheless take an endian.EndianEngine so the layout code stays
// byte-order-agnostic and testable against both orders.
//
// # Back-Patching
//
// Writers emit the header before the payload size is known and repair the
// Size field afterwards with PatchHeaderSize, which seeks to the field,
// writes, and restores the stream position on every exit path.
//
// # Thread Safety
//
// All types in this package are plain value types without internal state and
// are safe for concurrent use as long as each instance is confined to one
// goroutine while being mutated.
//
// Most users should interact with the table, font and wave packages instead
// of using section directly. Use this package only when implementing custom
// artifact tooling that needs fine-grained control over the binary layout.
package section
