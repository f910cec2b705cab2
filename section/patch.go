package section

import (
	"io"

	"github.com/arloliu/voicefont/endian"
)

// PatchUint32 overwrites the uint32 at the given byte offset of ws and
// restores the stream position afterwards.
//
// Writers use it to back-patch header fields (most often the Size field at
// HeaderSizeFieldOff) after the payload has been emitted. The current
// position is recorded before seeking and restored on every exit path,
// including a failed seek or write, so a partially patched stream is never
// left pointing at the patch location.
//
// Parameters:
//   - ws: Destination stream, positioned anywhere
//   - offset: Absolute byte offset of the field to overwrite
//   - value: Value to write
//   - engine: Endian engine for byte order
//
// Returns:
//   - error: Seek or write failure; the position restore error if the
//     inner write succeeded but the stream could not be repositioned
func PatchUint32(ws io.WriteSeeker, offset int64, value uint32, engine endian.EndianEngine) (err error) {
	cur, err := ws.Seek(0, io.SeekCurrent)
	if err != nil {
		return err
	}

	defer func() {
		_, serr := ws.Seek(cur, io.SeekStart)
		if err == nil {
			err = serr
		}
	}()

	if _, err = ws.Seek(offset, io.SeekStart); err != nil {
		return err
	}

	var b [4]byte
	engine.PutUint32(b[:], value)
	_, err = ws.Write(b[:])

	return err
}

// PatchHeaderSize back-patches the Size field of the FontHeader at the start
// of ws with the actual payload byte count.
func PatchHeaderSize(ws io.WriteSeeker, payloadSize uint32, engine endian.EndianEngine) error {
	return PatchUint32(ws, HeaderSizeFieldOff, payloadSize, engine)
}
