package fragment

import (
	"fmt"
	"sync"

	"github.com/hep-eformat/eformat/compress"
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
)

// fullEventFixedFieldsWords is the word count of the fixed fields
// following the generic prefix and status words: bc_time_seconds,
// bc_time_nanoseconds, global_id_lo, global_id_hi, run_type, run_no,
// lumi_block, lvl1_id, bc_id, lvl1_trigger_type, compression_type,
// readable_payload_size_word.
const fullEventFixedFieldsWords = 12

// decompressCache holds the materialized, decompressed payload for a
// FullEventView. It is allocated once and shared by every copy of the
// view it was created from, so FullEventView itself stays a cheap,
// copyable value.
type decompressCache struct {
	once sync.Once
	data []byte
	err  error
}

// FullEventView is a read view over a FullEvent fragment: generic prefix,
// fixed event fields, five variable-length info/tag sections, and a
// (possibly compressed) payload of ROB children.
type FullEventView struct {
	View
	cache *decompressCache
}

// NewFullEventView wraps buf as a FullEvent read view.
func NewFullEventView(buf []byte) (FullEventView, error) {
	v, err := NewView(buf)
	if err != nil {
		return FullEventView{}, err
	}
	return FullEventView{View: v, cache: &decompressCache{}}, nil
}

func (f FullEventView) fixedBase() int {
	return genericPrefixWords + int(f.NStatus())
}

func (f FullEventView) fixedField(i int) uint32 {
	idx := f.fixedBase() + i
	w, _ := f.word(idx)
	return w
}

func (f FullEventView) BunchCrossingSeconds() uint32     { return f.fixedField(0) }
func (f FullEventView) BunchCrossingNanoseconds() uint32 { return f.fixedField(1) }

// GlobalID returns the 64-bit global event ID, combining the two
// consecutive header words little-endian (low word first).
func (f FullEventView) GlobalID() uint64 {
	lo := uint64(f.fixedField(2))
	hi := uint64(f.fixedField(3))
	return lo | hi<<32
}

func (f FullEventView) RunType() uint32            { return f.fixedField(4) }
func (f FullEventView) RunNumber() uint32           { return f.fixedField(5) }
func (f FullEventView) LumiBlock() uint32           { return f.fixedField(6) }
func (f FullEventView) Lvl1ID() uint32              { return f.fixedField(7) }
func (f FullEventView) BCID() uint32                { return f.fixedField(8) }
func (f FullEventView) Lvl1TriggerType() uint32     { return f.fixedField(9) }

func (f FullEventView) CompressionType() format.CompressionType {
	return format.CompressionType(f.fixedField(10))
}

func (f FullEventView) ReadablePayloadSizeWord() uint32 {
	return f.fixedField(11)
}

// varSection reads the n-th variable-length section (0-indexed in
// declaration order: L1 info, L2 info, event-filter info, HLT info,
// stream-tag bytes) and returns its word slice, excluding the leading
// size word.
func (f FullEventView) varSection(n int) []uint32 {
	pos := f.fixedBase() + fullEventFixedFieldsWords
	for i := 0; i < n; i++ {
		size, ok := f.word(pos)
		if !ok {
			return nil
		}
		pos += 1 + int(size)
	}

	size, ok := f.word(pos)
	if !ok {
		return nil
	}
	start := pos + 1
	end := start + int(size)
	if end > f.Len() {
		return nil
	}
	return f.Words()[start:end]
}

func (f FullEventView) Lvl1TriggerInfo() []uint32  { return f.varSection(0) }
func (f FullEventView) Lvl2TriggerInfo() []uint32  { return f.varSection(1) }
func (f FullEventView) EventFilterInfo() []uint32  { return f.varSection(2) }
func (f FullEventView) HLTInfo() []uint32          { return f.varSection(3) }
func (f FullEventView) StreamTagWords() []uint32   { return f.varSection(4) }

// payloadStart returns the word offset of the on-disk (possibly
// compressed) ROB payload, i.e. header_size_word.
func (f FullEventView) payloadStart() int {
	return int(f.HeaderSizeWord())
}

// onDiskPayload returns the raw, as-stored bytes of the payload region,
// which is compressed when CompressionType() != CompressionNone.
func (f FullEventView) onDiskPayload() []byte {
	start := f.payloadStart()
	end := int(f.FragmentSizeWord())
	if start > f.Len() {
		return nil
	}
	if end <= start || end > f.Len() {
		end = f.Len()
	}

	words := f.Words()[start:end]
	buf := make([]byte, len(words)*4)
	for i, w := range words {
		wireOrder.PutUint32(buf[i*4:], w)
	}
	return buf
}

// ReadablePayload returns the decompressed payload bytes, materializing
// and caching them on first call. Every copy of this FullEventView made
// from the same NewFullEventView call shares the cache. A mismatch
// between the decompressed size and ReadablePayloadSizeWord is reported
// as ErrWrongUncompressedSize.
func (f FullEventView) ReadablePayload() ([]byte, error) {
	f.cache.once.Do(func() {
		raw := f.onDiskPayload()

		codec, err := compress.GetCodec(f.CompressionType())
		if err != nil {
			f.cache.err = fmt.Errorf("fullevent: %w", err)
			return
		}

		decoded, err := codec.Decompress(raw)
		if err != nil {
			f.cache.data = decoded
			f.cache.err = fmt.Errorf("fullevent: decompress payload: %w", err)
			return
		}

		wantBytes := int(f.ReadablePayloadSizeWord()) * 4
		if f.CompressionType() != format.CompressionNone && len(decoded) != wantBytes {
			f.cache.err = fmt.Errorf("fullevent: %w: got %d bytes, want %d", errs.ErrWrongUncompressedSize, len(decoded), wantBytes)
		}
		f.cache.data = decoded
	})

	return f.cache.data, f.cache.err
}

// ChildIter walks the readable payload as a sequence of ROB fragments,
// calling fn for each. Iteration stops at the first word that is not a
// valid ROB marker, or once the remaining buffer is too small to hold
// another fragment.
func (f FullEventView) ChildIter(fn func(ROBView) error) error {
	payload, err := f.ReadablePayload()
	if err != nil {
		return err
	}

	words := bytesToWords(payload)
	pos := 0
	for pos < len(words) {
		if format.HeaderMarker(words[pos]) != format.ROBMarker {
			break
		}
		if pos+2 >= len(words) {
			break
		}

		size := int(words[pos+2])
		if size <= 0 || pos+size > len(words) {
			break
		}

		rob := ROBView{View: NewViewFromWords(words[pos : pos+size])}
		if err := fn(rob); err != nil {
			return err
		}

		pos += size
	}

	return nil
}

// NChildren counts the ROB fragments reachable via ChildIter.
func (f FullEventView) NChildren() (int, error) {
	n := 0
	err := f.ChildIter(func(ROBView) error {
		n++
		return nil
	})
	return n, err
}

// Child returns the n-th ROB child (0-indexed), or ErrNoSuchChild if n is
// out of range.
func (f FullEventView) Child(n int) (ROBView, error) {
	var (
		i      int
		result ROBView
		found  bool
	)

	err := f.ChildIter(func(rob ROBView) error {
		if i == n {
			result = rob
			found = true
		}
		i++
		return nil
	})
	if err != nil {
		return ROBView{}, err
	}
	if !found {
		return ROBView{}, errs.ErrNoSuchChild
	}

	return result, nil
}

// Problems validates this FullEvent and its descendants without
// panicking.
func (f FullEventView) Problems(expectedMajor uint16) []errs.Problem {
	problems := f.checkGeneric(format.FullEventMarker, expectedMajor)

	if err := f.ChildIter(func(rob ROBView) error {
		problems = append(problems, rob.Problems(expectedMajor)...)
		return nil
	}); err != nil {
		problems = append(problems, errs.ProblemWrongFragmentSize)
	}

	return problems
}

// Check validates this FullEvent and every descendant ROB/ROD, returning
// the first error encountered.
func (f FullEventView) Check(expectedMajor uint16) error {
	if f.Marker() != format.FullEventMarker {
		return errs.ErrWrongMarker
	}
	if f.Version().Major() != expectedMajor {
		return errs.ErrBadVersion
	}

	return f.ChildIter(func(rob ROBView) error {
		return rob.Check(expectedMajor)
	})
}
