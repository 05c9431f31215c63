// Package format defines the small enumerated types shared by the fragment
// codec: the header marker that self-identifies a fragment's kind and byte
// order, the checksum algorithm selector, and the payload compression type.
package format

// HeaderMarker identifies a fragment's kind. All three values share the
// "1234" middle bytes, which is how a reader notices a byte-swapped buffer:
// if the marker doesn't match any of these verbatim, the data is either not
// a fragment or was written with the opposite byte order.
type HeaderMarker uint32

const (
	RODMarker       HeaderMarker = 0xee1234ee
	ROBMarker       HeaderMarker = 0xdd1234dd
	FullEventMarker HeaderMarker = 0xaa1234aa
)

func (m HeaderMarker) String() string {
	switch m {
	case RODMarker:
		return "ROD"
	case ROBMarker:
		return "ROB"
	case FullEventMarker:
		return "FULL_EVENT"
	default:
		return "UNKNOWN"
	}
}

// ChildMarker returns the marker expected for the direct children of a
// fragment carrying marker m. FullEvent fragments contain ROBs, ROB
// fragments contain a single embedded ROD; RODMarker has no children.
func ChildMarker(m HeaderMarker) (HeaderMarker, bool) {
	switch m {
	case FullEventMarker:
		return ROBMarker, true
	case ROBMarker:
		return RODMarker, true
	default:
		return 0, false
	}
}

// CheckSum selects the algorithm used to protect a fragment or a storage
// file's payload.
type CheckSum uint32

const (
	NoChecksum CheckSum = 0x0
	CRC16CCITT CheckSum = 0x1
	Adler32    CheckSum = 0x2
)

func (c CheckSum) String() string {
	switch c {
	case NoChecksum:
		return "NONE"
	case CRC16CCITT:
		return "CRC16_CCITT"
	case Adler32:
		return "ADLER32"
	default:
		return "UNKNOWN"
	}
}

// CompressionType selects how a FullEvent's ROB payload is compressed on
// disk. The numeric values are part of the wire format and must not change.
type CompressionType uint32

const (
	CompressionNone CompressionType = 0
	CompressionZlib CompressionType = 1
	CompressionZstd CompressionType = 2
)

func (c CompressionType) String() string {
	switch c {
	case CompressionNone:
		return "NONE"
	case CompressionZlib:
		return "ZLIB"
	case CompressionZstd:
		return "ZSTD"
	default:
		return "UNKNOWN"
	}
}

// Version packs a (major, minor) pair into the 32-bit format_version word
// the way every fragment header stores it: major in the high 16 bits.
type Version uint32

func NewVersion(major, minor uint16) Version {
	return Version(uint32(major)<<16 | uint32(minor))
}

func (v Version) Major() uint16 { return uint16(v >> 16) }
func (v Version) Minor() uint16 { return uint16(v & 0xffff) }

// Major versions understood by the version converter (Section 4.5).
const (
	MajorV24     uint16 = 0x0018
	MajorV30     uint16 = 0x001e
	MajorV31     uint16 = 0x001f
	MajorV40     uint16 = 0x0028
	MajorCurrent uint16 = 0x0041 // current library major, accepted by check_impl
)
