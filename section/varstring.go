package section

import (
	"fmt"
	"math"

	"github.com/arloliu/voicefont/endian"
	"github.com/arloliu/voicefont/errs"
)

// Variable-length strings inside voice-font sections are uint16-length-prefixed
// UTF-8: [Len: uint16][Bytes: UTF-8]. Question names and operands and waveform
// sentence identifiers all use this form.

// CheckString16 reports whether s fits the 16-bit length prefix.
//
// Returns:
//   - error: ErrStringTooLong if s is longer than 65535 bytes
func CheckString16(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("%w: %d bytes", errs.ErrStringTooLong, len(s))
	}

	return nil
}

// AppendString16 appends s to dst as a length-prefixed string and returns the
// extended slice. The caller must have validated s with CheckString16; an
// oversized string would silently truncate its prefix.
func AppendString16(dst []byte, engine endian.EndianEngine, s string) []byte {
	dst = engine.AppendUint16(dst, uint16(len(s))) //nolint: gosec
	return append(dst, s...)
}

// String16Size returns the encoded size of s in bytes.
func String16Size(s string) int {
	return 2 + len(s)
}

// String16 decodes a length-prefixed string from the start of data.
//
// Parameters:
//   - data: Byte slice starting with a length-prefixed string
//   - engine: Endian engine for the length prefix
//
// Returns:
//   - string: Decoded string (copied out of data)
//   - int: Number of bytes consumed
//   - error: ErrTruncatedData if data ends inside the prefix or the string
func String16(data []byte, engine endian.EndianEngine) (string, int, error) {
	if len(data) < 2 {
		return "", 0, fmt.Errorf("%w: need 2 length bytes, have %d", errs.ErrTruncatedData, len(data))
	}

	strLen := int(engine.Uint16(data))
	if len(data) < 2+strLen {
		return "", 0, fmt.Errorf("%w: string of %d bytes, only %d available",
			errs.ErrTruncatedData, strLen, len(data)-2)
	}

	return string(data[2 : 2+strLen]), 2 + strLen, nil
}
