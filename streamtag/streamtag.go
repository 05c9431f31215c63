// Package streamtag implements the StreamTag routing-metadata records
// attached to a FullEvent, and their packed byte-stream encoding.
package streamtag

import (
	"fmt"

	"github.com/hep-eformat/eformat/endian"
	"github.com/hep-eformat/eformat/errs"
)

var wireOrder = endian.GetLittleEndianEngine()

// TagType classifies a StreamTag's purpose.
type TagType uint32

const (
	PhysicsTag     TagType = 0x1
	CalibrationTag TagType = 0x2
	ReservedTag    TagType = 0x4
	DebugTag       TagType = 0x8
	UnknownTag     TagType = 0x10
	ExpressTag     TagType = 0x20
	MonitoringTag  TagType = 0x40
)

var tagTypeNames = map[TagType]string{
	PhysicsTag:     "physics",
	CalibrationTag: "calibration",
	ReservedTag:    "reserved",
	DebugTag:       "debug",
	UnknownTag:     "unknown",
	ExpressTag:     "express",
	MonitoringTag:  "monitoring",
}

func (t TagType) String() string {
	if name, ok := tagTypeNames[t]; ok {
		return name
	}

	return "unknown"
}

// StringToTagType parses a type string. An unrecognized string maps to
// UnknownTag rather than failing, matching the original's tolerant
// behavior.
func StringToTagType(s string) TagType {
	for t, name := range tagTypeNames {
		if name == s {
			return t
		}
	}

	return UnknownTag
}

// Tag is a single stream tag: a name, a type, whether it obeys the
// luminosity-block boundary, and the optional ROB/SubDetector partial-event
// building lists.
type Tag struct {
	Name           string
	Type           TagType
	ObeysLumiblock bool
	ROBs           []uint32
	Dets           []uint32
}

// sizeWords returns the number of 32-bit words this tag occupies once
// encoded, including its NUL-terminated, word-aligned trailer.
func (t Tag) sizeWords() uint32 {
	// record_size_words, bits, nrobs, robs..., ndets, dets...
	fixed := 3 + len(t.ROBs) + 1 + len(t.Dets)

	nameBytes := len(t.Name) + 1      // NUL terminator
	typeBytes := len(t.Type.String()) + 1
	stringBytes := nameBytes + typeBytes
	stringWords := (stringBytes + 3) / 4 // zero-pad to 32-bit boundary

	return uint32(fixed + stringWords)
}

// SizeWords returns the total number of 32-bit words required to encode
// tags as one packed, word-aligned byte block.
func SizeWords(tags []Tag) uint32 {
	var total uint32
	for _, t := range tags {
		total += t.sizeWords()
	}

	return total
}

// Encode packs tags into dst, which must be at least SizeWords(tags) words
// long, and returns the number of words written.
func Encode(tags []Tag, dst []uint32) (uint32, error) {
	need := SizeWords(tags)
	if uint32(len(dst)) < need {
		return 0, fmt.Errorf("%w: stream tag block needs %d words, got %d", errs.ErrBlockSizeTooSmall, need, len(dst))
	}

	var pos uint32
	for _, t := range tags {
		recWords := t.sizeWords()
		dst[pos] = recWords
		var bits uint32 = uint32(t.Type) << 24
		if t.ObeysLumiblock {
			bits |= 0x10000
		}
		dst[pos+1] = bits
		dst[pos+2] = uint32(len(t.ROBs))

		off := pos + 3
		for _, r := range t.ROBs {
			dst[off] = r
			off++
		}
		dst[off] = uint32(len(t.Dets))
		off++
		for _, d := range t.Dets {
			dst[off] = d
			off++
		}

		strBuf := make([]byte, 0, 4*(recWords-off+pos))
		strBuf = append(strBuf, []byte(t.Name)...)
		strBuf = append(strBuf, 0)
		strBuf = append(strBuf, []byte(t.Type.String())...)
		strBuf = append(strBuf, 0)
		for len(strBuf)%4 != 0 {
			strBuf = append(strBuf, 0)
		}

		for i := 0; i < len(strBuf); i += 4 {
			dst[off] = wireOrder.Uint32(strBuf[i : i+4])
			off++
		}

		pos += recWords
	}

	return pos, nil
}

// Decode unpacks a szword-word block into a slice of Tags, tolerating
// trailing NUL padding up to the 32-bit boundary.
func Decode(szword uint32, encoded []uint32) ([]Tag, error) {
	if uint32(len(encoded)) < szword {
		return nil, fmt.Errorf("%w: stream tag block declares %d words, have %d", errs.ErrTooBigCount, szword, len(encoded))
	}

	var tags []Tag
	var pos uint32
	for pos < szword {
		if pos+3 > szword {
			return nil, fmt.Errorf("%w: truncated stream tag record", errs.ErrWrongSize)
		}
		recWords := encoded[pos]
		if recWords == 0 || pos+recWords > szword {
			return nil, fmt.Errorf("%w: stream tag record size %d out of bounds", errs.ErrWrongSize, recWords)
		}
		bits := encoded[pos+1]
		nrobs := encoded[pos+2]

		off := pos + 3
		if off+nrobs > pos+recWords {
			return nil, fmt.Errorf("%w: stream tag rob count out of bounds", errs.ErrWrongSize)
		}
		var robs []uint32
		if nrobs > 0 {
			robs = make([]uint32, nrobs)
			for i := range robs {
				robs[i] = encoded[off]
				off++
			}
		}

		ndets := encoded[off]
		off++
		if off+ndets > pos+recWords {
			return nil, fmt.Errorf("%w: stream tag det count out of bounds", errs.ErrWrongSize)
		}
		var dets []uint32
		if ndets > 0 {
			dets = make([]uint32, ndets)
			for i := range dets {
				dets[i] = encoded[off]
				off++
			}
		}

		strWords := pos + recWords - off
		strBuf := make([]byte, 0, strWords*4)
		for i := uint32(0); i < strWords; i++ {
			var b [4]byte
			wireOrder.PutUint32(b[:], encoded[off+i])
			strBuf = append(strBuf, b[:]...)
		}

		name, rest, err := splitNUL(strBuf)
		if err != nil {
			return nil, err
		}
		typeStr, _, err := splitNUL(rest)
		if err != nil {
			return nil, err
		}

		// The type bits are preserved verbatim even for the RESERVED tag
		// type (0x04), whose semantics this library does not interpret;
		// typeStr only covers the case where the bits were never set.
		tagType := TagType(bits >> 24)
		if tagType == 0 {
			tagType = StringToTagType(typeStr)
		}

		tag := Tag{
			Name:           name,
			Type:           tagType,
			ObeysLumiblock: bits&0x10000 != 0,
			ROBs:           robs,
			Dets:           dets,
		}

		tags = append(tags, tag)
		pos += recWords
	}

	return tags, nil
}

func splitNUL(b []byte) (string, []byte, error) {
	for i, c := range b {
		if c == 0 {
			return string(b[:i]), b[i+1:], nil
		}
	}

	return "", nil, fmt.Errorf("%w: stream tag string missing NUL terminator", errs.ErrWrongSize)
}

// ContainsType counts how many tags in v carry any of the bits set in
// typeMask.
func ContainsType(v []Tag, typeMask TagType) uint32 {
	var n uint32
	for _, t := range v {
		if t.Type&typeMask != 0 {
			n++
		}
	}

	return n
}
