// Package endian provides byte order utilities for binary encoding and decoding.
//
// The package folds the ByteOrder and AppendByteOrder interfaces from
// encoding/binary into a single EndianEngine, so layout code can patch words
// at fixed offsets and append variable-length records through one value.
//
// # Basic Usage
//
// Voice-font artifacts are little-endian on disk, so most users should use
// GetLittleEndianEngine():
//
//	import "github.com/arloliu/voicefont/endian"
//
//	engine := endian.GetLittleEndianEngine()
//	data := pool.Bytes(engine)
//	header, err := section.ParseFontHeader(data, engine)
//
// The big-endian engine exists for diagnostics and byte-order tests; no
// artifact format in this module uses it.
//
// # Performance
//
// The append half of the interface matters for the section serializers, which
// build records by growing a slice:
//
//	buf = engine.AppendUint32(buf, offset)
//
// avoids the temporary buffer and copy a PutUint32-then-append sequence
// would need.
//
// # Thread Safety
//
// All functions and methods in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine is the byte order contract shared by every serializer in this
// module: Uint*/PutUint* for fixed-offset header fields and AppendUint* for
// growing record buffers.
//
// binary.LittleEndian and binary.BigEndian both satisfy it, so an EndianEngine
// can be handed to any standard-library code that wants a binary.ByteOrder.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

// CheckEndianness reports the host's native byte order.
func CheckEndianness() binary.ByteOrder {
	// Store 0x0100 and look at which half lands at the lower address:
	// little-endian machines put the 0x00 byte first, big-endian the 0x01.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return CheckEndianness() == binary.LittleEndian
}

func IsNativeBigEndian() bool {
	return CheckEndianness() == binary.BigEndian
}

// CompareNativeEndian reports whether engine matches the host's byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == CheckEndianness()
}

// GetLittleEndianEngine returns the engine matching the on-disk byte order of
// every voice-font artifact.
func GetLittleEndianEngine() EndianEngine {
	return binary.LittleEndian
}

// GetBigEndianEngine returns the big-endian engine.
func GetBigEndianEngine() EndianEngine {
	return binary.BigEndian
}
