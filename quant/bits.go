package quant

import "encoding/binary"

// bitWriter accumulates MSB-first bits in a 64-bit buffer and appends
// completed groups to a byte slice in big-endian order.
type bitWriter struct {
	out      []byte
	bitBuf   uint64 // Bit buffer for accumulating bits before writing out
	bitCount int    // Number of valid bits in bitBuf
}

// writeBits writes the least significant numBits of value to the stream.
//
// It efficiently handles writing 1-64 bits at once, automatically flushing
// the bit buffer to the output when it fills.
func (w *bitWriter) writeBits(value uint64, numBits int) {
	if numBits == 0 {
		return
	}

	// Mask value to only include the specified number of bits
	if numBits < 64 {
		value &= (1 << numBits) - 1
	}

	// Calculate how many bits fit in current buffer
	available := 64 - w.bitCount

	if numBits <= available {
		// All bits fit in current buffer
		w.bitBuf = (w.bitBuf << numBits) | value
		w.bitCount += numBits

		if w.bitCount == 64 {
			w.flushFull()
		}
	} else {
		// Split across buffer boundary
		// Write high bits that fit in current buffer
		highBits := numBits - available
		w.bitBuf = (w.bitBuf << available) | (value >> highBits)
		w.bitCount = 64
		w.flushFull()

		// Write remaining low bits to new buffer
		w.bitBuf = value & ((1 << highBits) - 1)
		w.bitCount = highBits
	}
}

// flushFull writes the full 64-bit buffer to the output.
func (w *bitWriter) flushFull() {
	w.out = binary.BigEndian.AppendUint64(w.out, w.bitBuf)
	w.bitBuf = 0
	w.bitCount = 0
}

// finish flushes any pending bits, left-aligned to the byte boundary with
// zero padding, and returns the output slice.
func (w *bitWriter) finish() []byte {
	if w.bitCount == 0 {
		return w.out
	}

	numBytes := (w.bitCount + 7) / 8

	// Shift bits to align to byte boundary (left-align)
	alignedBits := w.bitBuf << (64 - w.bitCount)

	// Write bytes in big-endian order (most significant byte first)
	for i := range numBytes {
		shift := 56 - (i * 8)
		w.out = append(w.out, byte(alignedBits>>shift))
	}

	w.bitBuf = 0
	w.bitCount = 0

	return w.out
}

// bitReader provides efficient bit-level reading from a byte slice.
//
// It maintains a buffer of bits and refills it from the source as needed.
type bitReader struct {
	data     []byte // Source data
	bytePos  int    // Current byte position
	bitBuf   uint64 // Buffer holding current bits
	bitCount int    // Number of valid bits in buffer
}

// readBits reads numBits (1-64) from the stream, right-aligned.
// It returns false if insufficient data is available.
func (r *bitReader) readBits(numBits int) (uint64, bool) {
	if numBits == 0 {
		return 0, true
	}

	if numBits <= r.bitCount {
		shift := 64 - numBits
		result := r.bitBuf >> shift
		r.bitBuf <<= numBits
		r.bitCount -= numBits

		return result, true
	}

	var result uint64
	firstRead := true

	for numBits > 0 {
		if r.bitCount == 0 {
			if !r.fillBuffer() {
				return 0, false
			}
		}

		// Determine how many bits we can read from current buffer
		bitsToRead := numBits
		if bitsToRead > r.bitCount {
			bitsToRead = r.bitCount
		}

		// Extract bits from most significant position
		shift := 64 - bitsToRead
		shiftedBits := r.bitBuf >> shift

		// Accumulate result
		if firstRead {
			result = shiftedBits
			firstRead = false
		} else {
			result = (result << bitsToRead) | shiftedBits
		}

		// Update buffer
		r.bitBuf <<= bitsToRead
		r.bitCount -= bitsToRead
		numBits -= bitsToRead
	}

	return result, true
}

// fillBuffer refills the bit buffer from the byte stream.
//
// Reads up to 8 bytes and left-aligns them in the 64-bit buffer for
// consistent extraction from the MSB. Returns false if no more data.
func (r *bitReader) fillBuffer() bool {
	if r.bytePos >= len(r.data) {
		return false
	}

	// Read up to 8 bytes to fill the buffer
	bytesAvailable := len(r.data) - r.bytePos
	bytesToRead := 8
	if bytesToRead > bytesAvailable {
		bytesToRead = bytesAvailable
	}

	// Fast path: read full 8 bytes using binary.BigEndian
	if bytesToRead == 8 {
		r.bitBuf = binary.BigEndian.Uint64(r.data[r.bytePos : r.bytePos+8])
		r.bytePos += 8
		r.bitCount = 64

		return true
	}

	// Slow path: read partial bytes
	r.bitBuf = 0
	for i := 0; i < bytesToRead; i++ {
		r.bitBuf = (r.bitBuf << 8) | uint64(r.data[r.bytePos])
		r.bytePos++
	}

	// Left-align the bits if we read less than 8 bytes
	r.bitBuf <<= (8 - bytesToRead) * 8
	r.bitCount = bytesToRead * 8

	return true
}
