package fragment

import (
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/hep-eformat/eformat/sourceid"
)

// StatusPosition selects whether a ROD's status words precede or follow
// its data words.
type StatusPosition uint32

const (
	StatusFront StatusPosition = 0
	StatusBack  StatusPosition = 1
)

func (p StatusPosition) String() string {
	if p == StatusBack {
		return "BACK"
	}
	return "FRONT"
}

// rodHeaderWords is the fixed ROD header length: marker, header_size_word,
// format_version, source_id, run_no, lvl1_id, bc_id, lvl1_trigger_type,
// detector_event_type.
const rodHeaderWords = 9

// rodTrailerWords is the fixed trailer length: fragment_size_word,
// n_status, n_data, status_position.
const rodTrailerWords = 4

// RODView is a read view over an embedded ROD fragment. Unlike FullEvent
// and ROB, a ROD's total size and status/data split are only known from
// its trailer — the last four words of the fragment — so RODView is
// tolerant of a words slice shorter than the size the trailer declares:
// see FragmentSizeWord and Problems.
type RODView struct {
	words []uint32
}

// NewRODView wraps words, which must begin with the ROD marker. words may
// be shorter than the fragment's true extent if the source was truncated;
// RODView degrades gracefully rather than panicking.
func NewRODView(words []uint32) RODView {
	return RODView{words: words}
}

func (r RODView) available() int { return len(r.words) }

// hasTrailer reports whether enough words are present to plausibly contain
// a 9-word header and 4-word trailer.
func (r RODView) hasTrailer() bool {
	return r.available() >= rodHeaderWords+rodTrailerWords
}

func (r RODView) Marker() format.HeaderMarker {
	if r.available() == 0 {
		return 0
	}
	return format.HeaderMarker(r.words[0])
}

func (r RODView) HeaderSizeWord() uint32 { return rodHeaderWords }

func (r RODView) Version() format.Version {
	if r.available() < 3 {
		return 0
	}
	return format.Version(r.words[2])
}

func (r RODView) SourceID() sourceid.SourceIdentifier {
	if r.available() < 4 {
		return 0
	}
	return sourceid.SourceIdentifier(r.words[3])
}

func (r RODView) RunNumber() uint32           { return r.field(4) }
func (r RODView) Lvl1ID() uint32              { return r.field(5) }
func (r RODView) BCID() uint32                { return r.field(6) }
func (r RODView) Lvl1TriggerType() uint32     { return r.field(7) }
func (r RODView) DetectorEventType() uint32   { return r.field(8) }

func (r RODView) field(i int) uint32 {
	if i >= r.available() {
		return 0
	}
	return r.words[i]
}

// declaredFragmentSizeWord reads the trailer's claimed size without
// applying truncation tolerance; used internally to decide whether the
// tolerant fallback path is needed.
func (r RODView) declaredFragmentSizeWord() (uint32, bool) {
	if !r.hasTrailer() {
		return 0, false
	}
	return r.words[r.available()-4], true
}

// FragmentSizeWord returns the ROD's size in words. If the trailer is
// absent or declares a size larger than the words actually available, the
// observed available length is returned instead (truncation tolerance).
func (r RODView) FragmentSizeWord() uint32 {
	declared, ok := r.declaredFragmentSizeWord()
	if !ok || int(declared) > r.available() {
		return uint32(r.available())
	}
	return declared
}

// truncated reports whether the tolerant fallback path applies: the
// trailer is absent, or the size read from the trailer position differs
// from the words available (a cut-off fragment leaves other words there).
func (r RODView) truncated() bool {
	declared, ok := r.declaredFragmentSizeWord()
	return !ok || int(declared) != r.available()
}

// NStatus returns the number of status words. Truncated fragments report 0.
func (r RODView) NStatus() uint32 {
	if r.truncated() {
		return 0
	}
	return r.words[r.available()-3]
}

// NData returns the number of data words. For a truncated fragment this
// is the payload actually present rather than the (unreachable) declared
// count.
func (r RODView) NData() uint32 {
	if r.truncated() {
		rem := r.available() - rodHeaderWords
		if rem < 0 {
			return 0
		}
		return uint32(rem)
	}
	return r.words[r.available()-2]
}

func (r RODView) StatusPos() StatusPosition {
	if r.truncated() {
		return StatusFront
	}
	return StatusPosition(r.words[r.available()-1])
}

// Status returns the status word slice, located before or after Data per
// StatusPos.
func (r RODView) Status() []uint32 {
	lo, hi := r.statusRange()
	if lo < 0 || hi > r.available() || lo > hi {
		return nil
	}
	return r.words[lo:hi]
}

// Data returns the data word slice.
func (r RODView) Data() []uint32 {
	lo, hi := r.dataRange()
	if lo < 0 || hi > r.available() || lo > hi {
		return nil
	}
	return r.words[lo:hi]
}

func (r RODView) statusRange() (int, int) {
	nstatus := int(r.NStatus())
	ndata := int(r.NData())
	if r.StatusPos() == StatusFront {
		return rodHeaderWords, rodHeaderWords + nstatus
	}
	return rodHeaderWords + ndata, rodHeaderWords + ndata + nstatus
}

func (r RODView) dataRange() (int, int) {
	nstatus := int(r.NStatus())
	ndata := int(r.NData())
	if r.StatusPos() == StatusFront {
		return rodHeaderWords + nstatus, rodHeaderWords + nstatus + ndata
	}
	return rodHeaderWords, rodHeaderWords + ndata
}

// Problems reports structural issues found in this ROD without panicking
// or returning an error.
func (r RODView) Problems() []errs.Problem {
	var problems []errs.Problem

	if r.Marker() != format.RODMarker {
		problems = append(problems, errs.ProblemWrongRODMarker)
	}
	if r.Version().Major() != format.MajorCurrent {
		problems = append(problems, errs.ProblemUnsupportedRODVersion)
	}
	if r.truncated() {
		problems = append(problems, errs.ProblemWrongRODFragmentSize)
	}

	return problems
}

// Check validates marker and major version, returning an error on the
// first violation found.
func (r RODView) Check(expectedMajor uint16) error {
	if r.Marker() != format.RODMarker {
		return errs.ErrWrongRODMarker
	}
	if r.Version().Major() != expectedMajor {
		return errs.ErrBadRodVersion
	}
	if r.truncated() {
		return errs.ErrWrongRODFragSize
	}
	return nil
}
