// Package checksum implements the two check-summing algorithms the fragment
// codec and the event-storage file format rely on: Adler-32 (including a
// multi-threaded variant) and CRC-16-CCITT.
package checksum

import "github.com/hep-eformat/eformat/endian"

const adlerMod = 65521

var byteOrder = endian.GetLittleEndianEngine()

// Adler32 computes the Adler-32 checksum of data, a vector of 32-bit words
// addressed byte-wise in little-endian memory order, matching how the bytes
// sit on disk.
func Adler32(data []uint32) uint32 {
	return Adler32Init(1, data)
}

// Adler32Init resumes an Adler-32 computation from a previously computed
// value, so callers can checksum a fragment page by page without
// re-scanning bytes already seen.
func Adler32Init(prev uint32, data []uint32) uint32 {
	a := prev & 0xffff
	b := (prev >> 16) & 0xffff

	var buf [4]byte
	for _, w := range data {
		byteOrder.PutUint32(buf[:], w)
		for _, c := range buf {
			a = (a + uint32(c)) % adlerMod
			b = (b + a) % adlerMod
		}
	}

	return (b << 16) | a
}

// Adler32Bytes is the byte-oriented counterpart of Adler32, used directly by
// the event-storage writer/reader where records are untyped byte payloads
// rather than word vectors.
func Adler32Bytes(data []byte) uint32 {
	return Adler32BytesInit(1, data)
}

// Adler32BytesInit resumes a byte-oriented Adler-32 computation.
func Adler32BytesInit(prev uint32, data []byte) uint32 {
	a := prev & 0xffff
	b := (prev >> 16) & 0xffff

	for _, c := range data {
		a = (a + uint32(c)) % adlerMod
		b = (b + a) % adlerMod
	}

	return (b << 16) | a
}

// Adler32Combine merges two Adler-32 checksums computed over adjacent byte
// ranges, where len2 is the byte length of the range checksum2 covers. This
// is the standard combine identity (as used by zlib's adler32_combine) and
// is what makes the multi-threaded variant possible: each worker checksums
// an independent chunk and the results are folded together in order.
func Adler32Combine(checksum1, checksum2 uint32, len2 int64) uint32 {
	if len2 == 0 {
		return checksum1
	}

	const base = int64(adlerMod)
	rem := len2 % base

	a1 := int64(checksum1 & 0xffff)
	b1 := int64((checksum1 >> 16) & 0xffff)
	a2 := int64(checksum2 & 0xffff)
	b2 := int64((checksum2 >> 16) & 0xffff)

	a := (a1 + a2 - 1) % base
	if a < 0 {
		a += base
	}
	b := (b1 + rem*a1 + b2 - rem) % base
	if b < 0 {
		b += base
	}

	return uint32(b)<<16 | uint32(a)
}
