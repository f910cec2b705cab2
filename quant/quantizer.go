package quant

import (
	"fmt"
	"math"

	"github.com/arloliu/voicefont/errs"
)

const (
	// MinBitWidth is the smallest supported quantization bit width.
	MinBitWidth = 1
	// MaxBitWidth is the largest supported quantization bit width.
	MaxBitWidth = 32
)

// Params holds the quantization parameters of a packed value stream.
//
// A stream is fully described by its bit width and the linear transform
// value = code*Scale + Offset. Params is the plain record form used in
// table settings; wrap it in a LinearQuantizer to quantize values.
type Params struct {
	BitWidth int     // Code width in bits, 1-32
	Scale    float32 // Linear scale factor applied to codes
	Offset   float32 // Linear offset added to scaled codes
}

// Validate checks that the bit width is within the supported range.
func (p Params) Validate() error {
	if p.BitWidth < MinBitWidth || p.BitWidth > MaxBitWidth {
		return fmt.Errorf("%w: %d (supported range %d-%d)",
			errs.ErrInvalidBitWidth, p.BitWidth, MinBitWidth, MaxBitWidth)
	}

	return nil
}

// MaxCode returns the largest code representable at the parameter bit width.
func (p Params) MaxCode() uint32 {
	return uint32((uint64(1) << uint(p.BitWidth)) - 1)
}

// Quantizer converts between float32 values and fixed-width integer codes.
//
// Implementations must be pure value transforms: Quantize and Dequantize
// may be called concurrently and must not retain state between calls.
// BitWidth, Scale and Offset expose the stream parameters so containers
// can persist them alongside the packed codes.
type Quantizer interface {
	BitWidth() int
	Scale() float32
	Offset() float32
	Quantize(v float32) uint32
	Dequantize(code uint32) float32
}

// LinearQuantizer is the standard Quantizer implementation backed by Params.
//
// Quantize saturates out-of-range inputs to the code range boundaries and
// maps NaN to code zero. A zero scale degenerates the transform: every
// finite input saturates, and Dequantize returns the offset for all codes.
type LinearQuantizer struct {
	params  Params
	maxCode uint32
}

var _ Quantizer = LinearQuantizer{}

// NewLinearQuantizer creates a LinearQuantizer from params.
// It fails with errs.ErrInvalidBitWidth when the bit width is outside 1-32.
func NewLinearQuantizer(params Params) (LinearQuantizer, error) {
	if err := params.Validate(); err != nil {
		return LinearQuantizer{}, err
	}

	return LinearQuantizer{
		params:  params,
		maxCode: params.MaxCode(),
	}, nil
}

// ParamsOf extracts the Params of any Quantizer.
func ParamsOf(q Quantizer) Params {
	return Params{
		BitWidth: q.BitWidth(),
		Scale:    q.Scale(),
		Offset:   q.Offset(),
	}
}

// BitWidth returns the code width in bits.
func (q LinearQuantizer) BitWidth() int { return q.params.BitWidth }

// Scale returns the linear scale factor.
func (q LinearQuantizer) Scale() float32 { return q.params.Scale }

// Offset returns the linear offset.
func (q LinearQuantizer) Offset() float32 { return q.params.Offset }

// Quantize converts a value to its integer code, saturating codes outside
// [0, 2^bitWidth-1] to the nearest boundary.
func (q LinearQuantizer) Quantize(v float32) uint32 {
	scaled := math.Round((float64(v) - float64(q.params.Offset)) / float64(q.params.Scale))

	switch {
	case math.IsNaN(scaled):
		return 0
	case scaled < 0:
		return 0
	case scaled > float64(q.maxCode):
		return q.maxCode
	}

	return uint32(scaled)
}

// Dequantize converts an integer code back to its value.
func (q LinearQuantizer) Dequantize(code uint32) float32 {
	return float32(float64(code)*float64(q.params.Scale) + float64(q.params.Offset))
}
