// Package compress adapts the fragment format's CompressionType enum to
// concrete compression algorithms. The fragment read path's lazy
// decompression and the event-storage writer and reader call these codecs.
package compress

import (
	"fmt"

	"github.com/hep-eformat/eformat/format"
)

// Compressor compresses a fragment or record payload.
//
// The input is the uncompressed payload (a FullEvent's readable tail, or a
// pre-built storage record); the returned slice is newly allocated and
// owned by the caller.
type Compressor interface {
	Compress(data []byte) ([]byte, error)
}

// Decompressor decompresses a payload previously produced by the matching
// Compressor.
//
// If the compressed bytes do not decode — truncated write, bit flip in
// transit, wrong algorithm selected — Decompress returns the original
// compressed bytes unchanged alongside the error, so a caller that chooses
// to ignore the error still has the raw bytes rather than nothing.
type Decompressor interface {
	Decompress(data []byte) ([]byte, error)
}

// Codec combines both directions. A single Codec value is shared by every
// fragment of a given CompressionType; implementations must be safe for
// concurrent use.
type Codec interface {
	Compressor
	Decompressor
}

// CreateCodec returns the Codec for compressionType, or an error naming
// target (the caller's description of what it was trying to compress) if
// compressionType is not one this library supports.
func CreateCodec(compressionType format.CompressionType, target string) (Codec, error) {
	switch compressionType {
	case format.CompressionNone:
		return NewNoOpCodec(), nil
	case format.CompressionZlib:
		return NewZlibCodec(), nil
	case format.CompressionZstd:
		return NewZstdCodec(), nil
	default:
		return nil, fmt.Errorf("invalid %s compression: %s", target, compressionType)
	}
}

var builtinCodecs = map[format.CompressionType]Codec{
	format.CompressionNone: NewNoOpCodec(),
	format.CompressionZlib: NewZlibCodec(),
	format.CompressionZstd: NewZstdCodec(),
}

// GetCodec retrieves the built-in Codec for compressionType.
func GetCodec(compressionType format.CompressionType) (Codec, error) {
	if codec, ok := builtinCodecs[compressionType]; ok {
		return codec, nil
	}

	return nil, fmt.Errorf("unsupported compression type: %s", compressionType)
}
