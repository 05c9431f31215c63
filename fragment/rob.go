package fragment

import (
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
)

// ROBView is a read view over a ROB fragment: the generic prefix plus an
// embedded ROD fragment immediately following the header.
type ROBView struct {
	View
}

// NewROBView wraps buf as a ROB read view.
func NewROBView(buf []byte) (ROBView, error) {
	v, err := NewView(buf)
	if err != nil {
		return ROBView{}, err
	}
	return ROBView{View: v}, nil
}

// RODStart returns the word slice the embedded ROD fragment begins at,
// bounded by this ROB's declared fragment_size_word when that value is
// trustworthy (within the buffer), and by the buffer's end otherwise.
func (r ROBView) RODStart() []uint32 {
	start := int(r.HeaderSizeWord())
	if start > r.Len() {
		return nil
	}

	end := int(r.FragmentSizeWord())
	if end <= start || end > r.Len() {
		end = r.Len()
	}

	return r.Words()[start:end]
}

// ROD returns a read view over the embedded ROD fragment.
func (r ROBView) ROD() RODView {
	return NewRODView(r.RODStart())
}

// CheckRODSize reports whether the embedded ROD's declared
// fragment_size_word equals this ROB's payload length
// (fragment_size_word - header_size_word), per invariant #2.
func (r ROBView) CheckRODSize() error {
	payloadWords := r.FragmentSizeWord() - r.HeaderSizeWord()
	if r.ROD().FragmentSizeWord() != payloadWords {
		return errs.ErrRODSizeCheck
	}
	return nil
}

// Problems validates this ROB and reports structural issues without
// panicking.
func (r ROBView) Problems(expectedMajor uint16) []errs.Problem {
	problems := r.checkGeneric(format.ROBMarker, expectedMajor)

	if r.CheckRODSize() != nil {
		problems = append(problems, errs.ProblemWrongRODFragmentSize)
	}
	problems = append(problems, r.ROD().Problems()...)

	return problems
}

// Check validates this ROB and its embedded ROD, returning the first
// error encountered.
func (r ROBView) Check(expectedMajor uint16) error {
	if r.Marker() != format.ROBMarker {
		return errs.ErrWrongMarker
	}
	if r.Version().Major() != expectedMajor {
		return errs.ErrBadVersion
	}
	if int(r.FragmentSizeWord()) > r.Len() || r.FragmentSizeWord() < r.HeaderSizeWord() {
		return errs.ErrWrongSize
	}
	if err := r.CheckRODSize(); err != nil {
		return err
	}
	return r.ROD().Check(expectedMajor)
}
