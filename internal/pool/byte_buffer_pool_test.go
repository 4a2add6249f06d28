package pool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	capacity := 1024
	bb := NewByteBuffer(capacity)

	require.NotNil(t, bb)
	require.NotNil(t, bb.B)
	assert.Equal(t, 0, bb.Len(), "new buffer should have zero length")
	assert.Equal(t, capacity, bb.Cap(), "new buffer should have specified capacity")
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(ArchiveBufferDefaultSize)
	bb.B = append(bb.B, []byte("some data")...)
	originalCap := bb.Cap()

	bb.Reset()

	assert.Equal(t, 0, bb.Len(), "Reset should clear the buffer length")
	assert.Equal(t, originalCap, bb.Cap(), "Reset should preserve capacity")
}

func TestByteBuffer_Write(t *testing.T) {
	bb := NewByteBuffer(16)

	n, err := bb.Write([]byte("hello "))
	require.NoError(t, err)
	assert.Equal(t, 6, n)

	n, err = bb.Write([]byte("world"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	assert.Equal(t, []byte("hello world"), bb.Bytes())
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(16)
	_, err := bb.Write([]byte("snapshot"))
	require.NoError(t, err)

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(8), n)
	assert.Equal(t, "snapshot", out.String())
}

func TestByteBuffer_Grow(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.B = append(bb.B, []byte("12345678")...)

	bb.Grow(100)
	assert.GreaterOrEqual(t, bb.Cap()-bb.Len(), 100)
	assert.Equal(t, []byte("12345678"), bb.Bytes(), "Grow should preserve contents")

	// Growing with sufficient capacity is a no-op.
	capBefore := bb.Cap()
	bb.Grow(1)
	assert.Equal(t, capBefore, bb.Cap())
}

func TestByteBufferPool_GetPut(t *testing.T) {
	p := NewByteBufferPool(64, 1024)

	bb := p.Get()
	require.NotNil(t, bb)
	_, err := bb.Write([]byte("data"))
	require.NoError(t, err)

	p.Put(bb)

	bb2 := p.Get()
	require.NotNil(t, bb2)
	assert.Equal(t, 0, bb2.Len(), "pooled buffer must come back empty")
}

func TestByteBufferPool_DiscardsOversized(t *testing.T) {
	p := NewByteBufferPool(64, 128)

	bb := p.Get()
	bb.Grow(4096)
	p.Put(bb) // exceeds threshold, should be discarded without panic

	p.Put(nil) // nil is a no-op
}

func TestByteBufferPool_Concurrent(t *testing.T) {
	p := NewByteBufferPool(64, 1024)

	var wg sync.WaitGroup
	for it3 := 0; it3 < 16; it3++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for it4 := 0; it4 < 100; it4++ {
				bb := p.Get()
				_, _ = bb.Write([]byte("payload"))
				p.Put(bb)
			}
		}()
	}
	wg.Wait()
}

func TestArchiveBufferDefaults(t *testing.T) {
	bb := GetArchiveBuffer()
	require.NotNil(t, bb)
	assert.Equal(t, 0, bb.Len())
	PutArchiveBuffer(bb)
}
