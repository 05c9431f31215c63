package bufpool

import (
	"bytes"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewByteBuffer(t *testing.T) {
	bb := NewByteBuffer(1024)

	require.NotNil(t, bb)
	require.NotNil(t, bb.B)
	assert.Equal(t, 0, len(bb.B))
	assert.Equal(t, 1024, cap(bb.B))
}

func TestByteBuffer_Bytes(t *testing.T) {
	bb := NewByteBuffer(FragmentBufferDefaultSize)
	bb.B = append(bb.B, []byte("hello")...)

	got := bb.Bytes()
	assert.Equal(t, []byte("hello"), got)
	assert.True(t, &bb.B[0] == &got[0])
}

func TestByteBuffer_Reset(t *testing.T) {
	bb := NewByteBuffer(FragmentBufferDefaultSize)
	bb.B = append(bb.B, []byte("some data")...)
	originalCap := cap(bb.B)

	bb.Reset()

	assert.Equal(t, 0, len(bb.B))
	assert.Equal(t, originalCap, cap(bb.B))
}

func TestByteBuffer_Len(t *testing.T) {
	bb := NewByteBuffer(FragmentBufferDefaultSize)
	assert.Equal(t, 0, bb.Len())

	bb.B = append(bb.B, []byte("test")...)
	assert.Equal(t, 4, bb.Len())
}

func TestByteBuffer_MustWrite(t *testing.T) {
	bb := NewByteBuffer(FragmentBufferDefaultSize)

	bb.MustWrite([]byte("hello"))
	assert.Equal(t, []byte("hello"), bb.B)

	bb.MustWrite([]byte(" world"))
	assert.Equal(t, []byte("hello world"), bb.B)
}

func TestByteBuffer_Write(t *testing.T) {
	bb := NewByteBuffer(FragmentBufferDefaultSize)

	n, err := bb.Write([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, 5, n)
	assert.Equal(t, []byte("hello"), bb.B)
}

func TestByteBuffer_WriteTo(t *testing.T) {
	bb := NewByteBuffer(FragmentBufferDefaultSize)
	bb.MustWrite([]byte("payload"))

	var out bytes.Buffer
	n, err := bb.WriteTo(&out)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	assert.Equal(t, "payload", out.String())
}

func TestByteBuffer_SliceAndSetLength(t *testing.T) {
	bb := NewByteBuffer(16)
	bb.SetLength(8)
	assert.Equal(t, 8, bb.Len())

	s := bb.Slice(0, 8)
	assert.Len(t, s, 8)

	assert.Panics(t, func() { bb.Slice(0, 100) })
	assert.Panics(t, func() { bb.SetLength(-1) })
}

func TestByteBuffer_ExtendOrGrow(t *testing.T) {
	bb := NewByteBuffer(4)
	bb.SetLength(4)

	bb.ExtendOrGrow(32)
	assert.Equal(t, 36, bb.Len())
	assert.GreaterOrEqual(t, cap(bb.B), 36)
}

func TestByteBuffer_Grow_SmallAndLarge(t *testing.T) {
	bb := NewByteBuffer(8)
	bb.Grow(4)
	assert.GreaterOrEqual(t, cap(bb.B), 4)

	big := NewByteBuffer(4 * FragmentBufferDefaultSize + 1)
	big.SetLength(big.Cap())
	prevCap := big.Cap()
	big.Grow(16)
	assert.Greater(t, big.Cap(), prevCap)
}

func TestPool_GetPutRoundTrip(t *testing.T) {
	p := NewPool(64, 256)

	bb := p.Get()
	require.NotNil(t, bb)
	bb.MustWrite([]byte("abc"))

	p.Put(bb)

	bb2 := p.Get()
	require.NotNil(t, bb2)
	assert.Equal(t, 0, bb2.Len(), "pooled buffer must come back reset")
}

func TestPool_PutDiscardsOversizedBuffer(t *testing.T) {
	p := NewPool(8, 16)

	oversized := NewByteBuffer(1024)
	p.Put(oversized)

	// Put on an oversized buffer must not panic and must simply discard it;
	// a freshly-sized buffer should still come back from Get.
	bb := p.Get()
	require.NotNil(t, bb)
}

func TestPool_PutNilIsNoop(t *testing.T) {
	p := NewPool(8, 16)
	assert.NotPanics(t, func() { p.Put(nil) })
}

func TestDefaultFragmentAndRecordPools(t *testing.T) {
	fb := GetFragmentBuffer()
	require.NotNil(t, fb)
	fb.MustWrite([]byte("frag"))
	PutFragmentBuffer(fb)

	rb := GetRecordBuffer()
	require.NotNil(t, rb)
	rb.MustWrite([]byte("record"))
	PutRecordBuffer(rb)
}

func TestPool_ConcurrentUse(t *testing.T) {
	p := NewPool(32, 1024)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			bb := p.Get()
			bb.MustWrite([]byte("x"))
			p.Put(bb)
		}()
	}
	wg.Wait()
}
