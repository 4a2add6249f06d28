// Package pool provides pooled byte buffers for the snapshot archive codec.
package pool

import (
	"io"
	"sync"
)

// Default sizing for archive section buffers. A full snapshot with 50
// candidate columns over a 400 point grid encodes to well under 256KiB,
// so the default capacity covers a whole section without regrowth.
const (
	ArchiveBufferDefaultSize  = 1024 * 64       // 64KiB
	ArchiveBufferMaxThreshold = 1024 * 1024 * 4 // 4MiB
)

// ByteBuffer is a growable byte slice with explicit capacity management.
// The underlying slice B is exported so callers can append to it directly
// with encoding/binary append helpers.
type ByteBuffer struct {
	B []byte
}

// NewByteBuffer creates a new ByteBuffer with the specified capacity.
func NewByteBuffer(defaultSize int) *ByteBuffer {
	return &ByteBuffer{
		B: make([]byte, 0, defaultSize),
	}
}

// Bytes returns the underlying byte slice.
func (bb *ByteBuffer) Bytes() []byte {
	return bb.B
}

// Reset resets the buffer to be empty, retaining the allocated memory.
func (bb *ByteBuffer) Reset() {
	bb.B = bb.B[:0]
}

// Len returns the length of the buffer.
func (bb *ByteBuffer) Len() int {
	return len(bb.B)
}

// Cap returns the capacity of the buffer.
func (bb *ByteBuffer) Cap() int {
	return cap(bb.B)
}

// Grow ensures the buffer can hold requiredBytes more bytes without
// reallocating. Small buffers grow by the default size, larger ones by
// 25% of current capacity.
func (bb *ByteBuffer) Grow(requiredBytes int) {
	available := cap(bb.B) - len(bb.B)
	if available >= requiredBytes {
		return
	}

	growBy := ArchiveBufferDefaultSize
	if cap(bb.B) > 4*ArchiveBufferDefaultSize {
		growBy = cap(bb.B) / 4
	}

	if growBy < requiredBytes {
		growBy = requiredBytes
	}

	newBuf := make([]byte, len(bb.B), len(bb.B)+growBy)
	copy(newBuf, bb.B)
	bb.B = newBuf
}

// Write appends the contents of data to the buffer, growing it as needed.
// It implements io.Writer and never returns an error.
func (bb *ByteBuffer) Write(data []byte) (int, error) {
	bb.B = append(bb.B, data...)
	return len(data), nil
}

// WriteTo writes the contents of the buffer to w.
func (bb *ByteBuffer) WriteTo(w io.Writer) (int64, error) {
	n, err := w.Write(bb.B)
	return int64(n), err
}

// ByteBufferPool is a pool of ByteBuffers to minimize allocations.
//
// It uses sync.Pool internally. Buffers whose capacity exceeds the
// configured threshold are discarded on Put to avoid retaining memory
// from one oversized snapshot forever.
type ByteBufferPool struct {
	pool         sync.Pool
	maxThreshold int
}

// NewByteBufferPool creates a pool handing out buffers of the given
// default size, discarding returned buffers above maxThreshold bytes.
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

// Get retrieves a ByteBuffer from the pool.
func (bbp *ByteBufferPool) Get() *ByteBuffer {
	bb, _ := bbp.pool.Get().(*ByteBuffer)
	return bb
}

// Put returns a ByteBuffer to the pool for reuse.
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

var archiveDefaultPool = NewByteBufferPool(ArchiveBufferDefaultSize, ArchiveBufferMaxThreshold)

// GetArchiveBuffer retrieves a ByteBuffer from the default archive pool.
func GetArchiveBuffer() *ByteBuffer {
	return archiveDefaultPool.Get()
}

// PutArchiveBuffer returns a ByteBuffer to the default archive pool.
func PutArchiveBuffer(bb *ByteBuffer) {
	archiveDefaultPool.Put(bb)
}
