// Package fragment implements read views and write builders for the three
// levels of the fragment hierarchy: FullEvent, ROB, and ROD.
//
// A read view holds the 32-bit words decoded from a word-aligned byte
// buffer when the view is constructed; it keeps no reference to that
// buffer, so later changes to the buffer are not seen by the view. Views
// are cheap to copy and safe to share across goroutines; they hold no
// locks of their own.
package fragment

import (
	"github.com/hep-eformat/eformat/endian"
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/hep-eformat/eformat/sourceid"
)

// wireOrder is the byte order every fragment read/write path uses. The
// marker word self-identifies a byte-swapped buffer (see format.HeaderMarker),
// but this library does not yet implement the swap-and-retry path, so
// wireOrder stays fixed to the on-disk convention.
var wireOrder = endian.GetLittleEndianEngine()

// genericPrefixWords is the word count of the common prefix shared by
// FullEvent and ROB fragments, before the per-type fixed fields:
// marker, header_size_word, fragment_size_word, format_version,
// source_id, nstatus.
const genericPrefixWords = 6

// View wraps a read-only slice of 32-bit words and the common prefix
// accessors every fragment kind shares.
type View struct {
	words []uint32
}

// NewView constructs a View over buf, which must be 32-bit-word-aligned.
// The words of buf are decoded into a new slice owned by the View.
func NewView(buf []byte) (View, error) {
	if len(buf)%4 != 0 {
		return View{}, errs.ErrNotAligned
	}

	return View{words: bytesToWords(buf)}, nil
}

// NewViewFromWords wraps an already-decoded word slice.
func NewViewFromWords(words []uint32) View {
	return View{words: words}
}

func bytesToWords(buf []byte) []uint32 {
	words := make([]uint32, len(buf)/4)
	for i := range words {
		words[i] = wireOrder.Uint32(buf[i*4 : i*4+4])
	}
	return words
}

// Words returns the underlying word slice.
func (v View) Words() []uint32 { return v.words }

// Len returns the number of words in the view.
func (v View) Len() int { return len(v.words) }

func (v View) word(i int) (uint32, bool) {
	if i < 0 || i >= len(v.words) {
		return 0, false
	}
	return v.words[i], true
}

// Marker returns the fragment's marker word.
func (v View) Marker() format.HeaderMarker {
	w, _ := v.word(0)
	return format.HeaderMarker(w)
}

// HeaderSizeWord returns the header_size_word field, valid for FullEvent
// and ROB fragments (ROD's header size is derived differently; see
// RODView.HeaderSizeWord).
func (v View) HeaderSizeWord() uint32 {
	w, _ := v.word(1)
	return w
}

// FragmentSizeWord returns the fragment_size_word field.
func (v View) FragmentSizeWord() uint32 {
	w, _ := v.word(2)
	return w
}

// Version returns the packed format_version field.
func (v View) Version() format.Version {
	w, _ := v.word(3)
	return format.Version(w)
}

// SourceID returns the source_id field.
func (v View) SourceID() sourceid.SourceIdentifier {
	w, _ := v.word(4)
	return sourceid.SourceIdentifier(w)
}

// NStatus returns the number of status words.
func (v View) NStatus() uint32 {
	w, _ := v.word(5)
	return w
}

// Status returns the status word slice.
func (v View) Status() []uint32 {
	n := int(v.NStatus())
	start := genericPrefixWords
	if start+n > len(v.words) {
		return nil
	}
	return v.words[start : start+n]
}

// checkGeneric validates the common-prefix invariants shared by FullEvent
// and ROB: marker, major version, header size, and total size bounds.
func (v View) checkGeneric(expectedMarker format.HeaderMarker, expectedMajor uint16) []errs.Problem {
	var problems []errs.Problem

	if v.Marker() != expectedMarker {
		problems = append(problems, errs.ProblemWrongMarker)
	}
	if v.Version().Major() != expectedMajor {
		problems = append(problems, errs.ProblemUnsupportedVersion)
	}

	headerWords := genericPrefixWords + int(v.NStatus())
	headerOK := int(v.HeaderSizeWord()) == headerWords
	if expectedMarker == format.FullEventMarker {
		// A FullEvent header also holds the fixed fields and one size word
		// per variable-length section, so only a lower bound applies.
		headerOK = int(v.HeaderSizeWord()) >= headerWords+fullEventFixedFieldsWords+5
	}
	if !headerOK || v.FragmentSizeWord() < v.HeaderSizeWord() ||
		int(v.FragmentSizeWord()) > len(v.words) {
		problems = append(problems, errs.ProblemWrongFragmentSize)
	}

	return problems
}
