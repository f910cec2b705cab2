package quant

import (
	"fmt"
	"slices"

	"github.com/arloliu/voicefont/errs"
)

// PackedSize returns the number of bytes occupied by count packed codes at
// the given bit width.
func PackedSize(count int, bitWidth int) int {
	return (count*bitWidth + 7) / 8
}

// Pack quantizes values and packs their codes into a new byte slice.
//
// Codes are written MSB-first with no per-value padding; the result is
// exactly PackedSize(len(values), q.BitWidth()) bytes with zeroed trailing
// bits in the final byte. Out-of-range values saturate per the quantizer.
//
// Returns errs.ErrInvalidBitWidth for bit widths outside 1-32 and
// errs.ErrEmptyValues for an empty input.
func Pack(values []float32, q Quantizer) ([]byte, error) {
	return AppendPacked(nil, values, q)
}

// PackParams is the Params convenience form of Pack.
func PackParams(values []float32, params Params) ([]byte, error) {
	q, err := NewLinearQuantizer(params)
	if err != nil {
		return nil, err
	}

	return Pack(values, q)
}

// AppendPacked quantizes values and appends their packed codes to dst,
// returning the extended slice. The packed stream starts at a byte boundary.
func AppendPacked(dst []byte, values []float32, q Quantizer) ([]byte, error) {
	bitWidth := q.BitWidth()
	if bitWidth < MinBitWidth || bitWidth > MaxBitWidth {
		return dst, fmt.Errorf("%w: %d (supported range %d-%d)",
			errs.ErrInvalidBitWidth, bitWidth, MinBitWidth, MaxBitWidth)
	}

	if len(values) == 0 {
		return dst, errs.ErrEmptyValues
	}

	w := bitWriter{out: slices.Grow(dst, PackedSize(len(values), bitWidth))}
	for _, v := range values {
		w.writeBits(uint64(q.Quantize(v)), bitWidth)
	}

	return w.finish(), nil
}

// Unpack decodes count values from a packed bitstream.
//
// The data slice may be longer than the packed stream; extra bytes are
// ignored. A stream holding fewer than count codes fails with
// errs.ErrShortBuffer.
func Unpack(data []byte, count int, q Quantizer) ([]float32, error) {
	if count <= 0 {
		return nil, fmt.Errorf("%w: count %d", errs.ErrEmptyValues, count)
	}

	out := make([]float32, count)
	if err := UnpackInto(out, data, q); err != nil {
		return nil, err
	}

	return out, nil
}

// UnpackParams is the Params convenience form of Unpack.
func UnpackParams(data []byte, count int, params Params) ([]float32, error) {
	q, err := NewLinearQuantizer(params)
	if err != nil {
		return nil, err
	}

	return Unpack(data, count, q)
}

// UnpackInto decodes len(dst) values from a packed bitstream into dst.
// Decoding a zero-length dst is a no-op.
func UnpackInto(dst []float32, data []byte, q Quantizer) error {
	bitWidth := q.BitWidth()
	if bitWidth < MinBitWidth || bitWidth > MaxBitWidth {
		return fmt.Errorf("%w: %d (supported range %d-%d)",
			errs.ErrInvalidBitWidth, bitWidth, MinBitWidth, MaxBitWidth)
	}

	if len(dst) == 0 {
		return nil
	}

	need := PackedSize(len(dst), bitWidth)
	if len(data) < need {
		return fmt.Errorf("%w: need %d bytes for %d values at bit width %d, have %d",
			errs.ErrShortBuffer, need, len(dst), bitWidth, len(data))
	}

	r := bitReader{data: data}
	for i := range dst {
		code, ok := r.readBits(bitWidth)
		if !ok {
			// Unreachable after the length check above; kept as a guard.
			return fmt.Errorf("%w: stream ended at value %d of %d",
				errs.ErrShortBuffer, i, len(dst))
		}

		dst[i] = q.Dequantize(uint32(code))
	}

	return nil
}
