package sourceid

import (
	"fmt"
	"strconv"

	"github.com/hep-eformat/eformat/errs"
)

// DetectorMask is the 128-bit set of participating subdetectors recorded in
// a storage file's metadata header. Bit index is the SubDetector id
// restricted to its low 7 bits, so ids that differ only in the top bit
// share a bit (ForwardBCM 0x81 with Offline 0x01, Other 0xff with
// TDAQFTK 0x7f); see DESIGN.md for why
// this library does not reproduce a narrower, historical per-partition bit
// table.
type DetectorMask struct {
	// lo holds bits 0-63, hi holds bits 64-127.
	lo, hi uint64
}

func bitIndex(id SubDetector) uint {
	return uint(id) & 0x7f
}

// Set adds id to the mask and returns the receiver for chaining.
func (m *DetectorMask) Set(id SubDetector) *DetectorMask {
	idx := bitIndex(id)
	if idx < 64 {
		m.lo |= 1 << idx
	} else {
		m.hi |= 1 << (idx - 64)
	}

	return m
}

// Unset removes id from the mask and returns the receiver for chaining.
func (m *DetectorMask) Unset(id SubDetector) *DetectorMask {
	idx := bitIndex(id)
	if idx < 64 {
		m.lo &^= 1 << idx
	} else {
		m.hi &^= 1 << (idx - 64)
	}

	return m
}

// IsSet reports whether id is present in the mask.
func (m DetectorMask) IsSet(id SubDetector) bool {
	idx := bitIndex(id)
	if idx < 64 {
		return m.lo&(1<<idx) != 0
	}

	return m.hi&(1<<(idx-64)) != 0
}

// Reset clears every bit.
func (m *DetectorMask) Reset() {
	m.lo, m.hi = 0, 0
}

// LeastMost returns the wire representation: bits 0-63 (least significant)
// and bits 64-127 (most significant), matching the file header's
// detector-mask-LS / detector-mask-MS words.
func (m DetectorMask) LeastMost() (least, most uint64) {
	return m.lo, m.hi
}

// FromLeastMost builds a mask from the two 64-bit wire words.
func FromLeastMost(least, most uint64) DetectorMask {
	return DetectorMask{lo: least, hi: most}
}

// SubDetectors enumerates every SubDetector id (0..127) whose bit is set.
func (m DetectorMask) SubDetectors() []SubDetector {
	var out []SubDetector
	for i := 0; i < 128; i++ {
		var set bool
		if i < 64 {
			set = m.lo&(1<<uint(i)) != 0
		} else {
			set = m.hi&(1<<uint(i-64)) != 0
		}
		if set {
			out = append(out, SubDetector(i))
		}
	}

	return out
}

// String renders the mask as 32 lowercase hex characters, most significant
// bit first (hi word first, then lo word, each zero-padded to 16 digits).
func (m DetectorMask) String() string {
	return fmt.Sprintf("%016x%016x", m.hi, m.lo)
}

// FromString parses the 32-character hex representation produced by
// String. It rejects strings of the wrong length or containing non-hex
// characters.
func FromString(s string) (DetectorMask, error) {
	if len(s) != 32 {
		return DetectorMask{}, fmt.Errorf("%w: detector mask string must be 32 chars, got %d", errs.ErrCannotDecodeMask, len(s))
	}

	hi, err := strconv.ParseUint(s[:16], 16, 64)
	if err != nil {
		return DetectorMask{}, fmt.Errorf("%w: %w", errs.ErrCannotDecodeMask, err)
	}
	lo, err := strconv.ParseUint(s[16:], 16, 64)
	if err != nil {
		return DetectorMask{}, fmt.Errorf("%w: %w", errs.ErrCannotDecodeMask, err)
	}

	return DetectorMask{lo: lo, hi: hi}, nil
}
