package compress

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
)

// ZlibCodec implements Codec using DEFLATE/zlib framing. This is the
// compression scheme the original ATLAS event format calls "ZLIB"; it
// trades compression ratio for an implementation available on every
// platform this library targets, with no cgo dependency.
type ZlibCodec struct {
	level int
}

var _ Codec = (*ZlibCodec)(nil)

// NewZlibCodec creates a ZlibCodec at the library's default compression
// level.
func NewZlibCodec() ZlibCodec {
	return ZlibCodec{level: zlib.DefaultCompression}
}

// NewZlibCodecLevel creates a ZlibCodec at an explicit compression level,
// as accepted by klauspost/compress/zlib.NewWriterLevel.
func NewZlibCodecLevel(level int) ZlibCodec {
	return ZlibCodec{level: level}
}

func (c ZlibCodec) Compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer

	w, err := zlib.NewWriterLevel(&buf, c.level)
	if err != nil {
		return nil, fmt.Errorf("zlib: create writer: %w", err)
	}

	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return nil, fmt.Errorf("zlib: compress: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("zlib: flush: %w", err)
	}

	return buf.Bytes(), nil
}

// Decompress inflates data. On any framing or checksum error the original
// compressed bytes are returned alongside the error rather than silently
// dropped, so a caller that logs-and-continues still has something to
// inspect.
func (c ZlibCodec) Decompress(data []byte) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	r, err := zlib.NewReader(bytes.NewReader(data))
	if err != nil {
		return data, fmt.Errorf("zlib: open reader: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return data, fmt.Errorf("zlib: decompress: %w", err)
	}

	return out, nil
}
