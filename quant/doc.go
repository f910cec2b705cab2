// Package quant implements fixed-width linear quantization of float32 values
// into MSB-first packed bitstreams.
//
// Quantization maps a real value to an integer code of a configurable bit
// width (1-32 bits) through a linear transform:
//
//	code  = round((value - offset) / scale)
//	value = code*scale + offset
//
// Codes outside the representable range [0, 2^bitWidth-1] saturate to the
// range boundary. Saturation is silent: it is the defined behavior for
// out-of-range inputs, not an error, and round-tripping a saturated value
// reproduces the boundary instead of the original input.
//
// # Bitstream Layout
//
// Packed codes are written most-significant-bit first with no per-value
// padding. A stream of N codes at bit width W occupies exactly
// ceil(N*W/8) bytes; unused low bits of the final byte are zero.
//
//	values:  [a, b, c]   bitWidth: 3
//	bits:    aaabbbcc c00000 (2 bytes)
//
// The layout is byte-order independent: the stream is defined at the bit
// level, so the same bytes decode identically on any platform.
//
// # Usage
//
//	q, err := quant.NewLinearQuantizer(quant.Params{BitWidth: 8, Scale: 3.0 / 255.0})
//	if err != nil { ... }
//
//	packed, err := quant.Pack(values, q)
//	restored, err := quant.Unpack(packed, len(values), q)
//
// The absolute round-trip error of an in-range value is at most scale.
package quant
