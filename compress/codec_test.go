package compress

import (
	"testing"

	"github.com/hep-eformat/eformat/format"
	"github.com/stretchr/testify/require"
)

func payload() []byte {
	b := make([]byte, 4096)
	for i := range b {
		b[i] = byte(i % 17)
	}
	return b
}

func TestNoOpCodec_RoundTrip(t *testing.T) {
	c := NewNoOpCodec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Equal(t, data, compressed)

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestZlibCodec_RoundTrip(t *testing.T) {
	c := NewZlibCodec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestZlibCodec_DecompressGarbageReturnsInputAndError(t *testing.T) {
	c := NewZlibCodec()
	garbage := []byte{0x01, 0x02, 0x03, 0x04}

	out, err := c.Decompress(garbage)
	require.Error(t, err)
	require.Equal(t, garbage, out)
}

func TestZstdCodec_RoundTrip(t *testing.T) {
	c := NewZstdCodec()
	data := payload()

	compressed, err := c.Compress(data)
	require.NoError(t, err)
	require.Less(t, len(compressed), len(data))

	out, err := c.Decompress(compressed)
	require.NoError(t, err)
	require.Equal(t, data, out)
}

func TestZstdCodec_DecompressGarbageReturnsInputAndError(t *testing.T) {
	c := NewZstdCodec()
	garbage := []byte{0xff, 0xfe, 0xfd}

	out, err := c.Decompress(garbage)
	require.Error(t, err)
	require.Equal(t, garbage, out)
}

func TestCreateCodec(t *testing.T) {
	for _, ct := range []format.CompressionType{format.CompressionNone, format.CompressionZlib, format.CompressionZstd} {
		codec, err := CreateCodec(ct, "test")
		require.NoError(t, err)
		require.NotNil(t, codec)
	}

	_, err := CreateCodec(format.CompressionType(99), "test")
	require.Error(t, err)
}

func TestGetCodec(t *testing.T) {
	codec, err := GetCodec(format.CompressionZlib)
	require.NoError(t, err)
	require.NotNil(t, codec)

	_, err = GetCodec(format.CompressionType(99))
	require.Error(t, err)
}
