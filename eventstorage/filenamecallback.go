package eventstorage

import (
	"fmt"

	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/rawfilename"
)

// FileNameCallback generates the next file name in a writer's rollover
// sequence. Two variants are provided: StructuredFileNameCallback (the
// normal ATLAS raw-file-name strategy) and SimpleFileNameCallback (rejects
// any rollover past the first file).
type FileNameCallback interface {
	// NextFileName returns the name for sequence index seq (1-based), the
	// extension forced by writing.
	NextFileName(seq uint32, writing bool) (string, error)
}

// StructuredFileNameCallback builds names via the rawfilename package's
// ATLAS convention, advancing the sequence field on every rollover.
type StructuredFileNameCallback struct {
	name *rawfilename.Name
}

// NewStructuredFileNameCallback seeds the strategy from the writer's
// declared project/run/stream/lb/application ingredients.
func NewStructuredFileNameCallback(project string, runNumber uint32, streamType, streamName string, lumiBlock uint32, application string) *StructuredFileNameCallback {
	return &StructuredFileNameCallback{
		name: rawfilename.New(project, runNumber, streamType, streamName, lumiBlock, application),
	}
}

func (s *StructuredFileNameCallback) NextFileName(seq uint32, writing bool) (string, error) {
	s.name.FileSequenceNumber = seq
	return s.name.FileName(writing), nil
}

// CoreName returns the name without its sequence/extension trailer, used
// to seed file metadata (FileNameCore) and a deterministic GUID.
func (s *StructuredFileNameCallback) CoreName() string {
	return s.name.CoreName()
}

// SimpleFileNameCallback always returns the same base name and rejects any
// rollover past the first file, matching the original's "simple callback
// rejects rollover" requirement.
type SimpleFileNameCallback struct {
	BaseName string
}

func (s *SimpleFileNameCallback) NextFileName(seq uint32, writing bool) (string, error) {
	if seq > 1 {
		return "", fmt.Errorf("eventstorage: %w: simple file-name callback does not support rollover", errs.ErrSingleFile)
	}
	if writing {
		return s.BaseName + ".writing", nil
	}
	return s.BaseName + ".data", nil
}
