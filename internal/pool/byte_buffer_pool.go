// Package pool provides pooled scratch buffers for artifact encoding.
//
// Two pools cover the module's two allocation patterns: a small pool for
// encoding one table body at a time, and a large pool for streaming whole
// artifacts. Buffers over a per-pool threshold are dropped on Put so one
// oversized voice build cannot pin memory for the life of the process.
package pool

import "sync"

const (
	TableBufferDefaultSize  = 1024 * 16       // 16KiB, fits a typical quantized table body
	TableBufferMaxThreshold = 1024 * 128      // 128KiB
	FontBufferDefaultSize   = 1024 * 1024     // 1MiB, fits most assembled artifacts
	FontBufferMaxThreshold  = 1024 * 1024 * 8 // 8MiB
)

// ByteBuffer wraps a reusable byte slice. Callers append through B directly;
// the type exists so the pools can reset length while keeping capacity.
type ByteBuffer struct {
	// B is the underlying byte slice.
	B []byte
}

// NewByteBuffer creates an empty ByteBuffer with the given capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset empties the buffer while keeping its capacity for reuse.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the number of bytes currently in the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the buffer's capacity.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// SetLength resizes the buffer to n bytes without zeroing; existing capacity
// is exposed as-is. Panics if n is negative or exceeds the capacity.
func (bb *ByteBuffer) SetLength(n int) {
	if n < 0 || n > cap(bb.B) {
		panic("SetLength: invalid length")
	}
	bb.B = bb.B[:n]
}

// ByteBufferPool hands out ByteBuffers backed by a sync.Pool.
//
// A positive maxThreshold bounds what comes back: buffers whose capacity grew
// past it are discarded instead of pooled.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool whose fresh buffers have defaultSize
// capacity. maxThreshold of zero disables the discard bound.
func NewByteBufferPool(defaultSize int, maxThreshold int) *ByteBufferPool {
	return &ByteBufferPool{
		pool: sync.Pool{
			New: func() any {
				return NewByteBuffer(defaultSize)
			},
		},
		maxThreshold: maxThreshold,
	}
}

// Get retrieves an empty ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put resets bb and returns it to the pool. Nil buffers and buffers grown
// past the pool's threshold are dropped.
func (bbp *ByteBufferPool) Put(bb *ByteBuffer) {
	if bb == nil {
		return
	}

	if bbp.maxThreshold > 0 && cap(bb.B) > bbp.maxThreshold {
		return
	}

	bb.Reset()
	bbp.pool.Put(bb)
}

var (
	tableDefaultPool = NewByteBufferPool(TableBufferDefaultSize, TableBufferMaxThreshold)
	fontDefaultPool  = NewByteBufferPool(FontBufferDefaultSize, FontBufferMaxThreshold)
)

// GetTableBuffer retrieves a ByteBuffer sized for encoding a single table body.
func GetTableBuffer() *ByteBuffer {
	return tableDefaultPool.Get()
}

// PutTableBuffer returns a ByteBuffer to the table body pool.
func PutTableBuffer(bb *ByteBuffer) {
	tableDefaultPool.Put(bb)
}

// GetFontBuffer retrieves a ByteBuffer sized for assembling whole font sections.
func GetFontBuffer() *ByteBuffer {
	return fontDefaultPool.Get()
}

// PutFontBuffer returns a ByteBuffer to the font section pool.
func PutFontBuffer(bb *ByteBuffer) {
	fontDefaultPool.Put(bb)
}
