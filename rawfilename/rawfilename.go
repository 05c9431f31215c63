// Package rawfilename builds and parses ATLAS raw-event file names:
//
//	<project>.<run:8>.<streamtype>_<streamname>.<prodstep>.<datatype>.<lb:4>._<app>.<seq:4>.<ext>
//
// Zero-padding widths and field order follow the ATLAS RawFileName
// convention; an older 7-digit-run/2-digit-sequence convention is parsed
// for interpretation but never produced.
package rawfilename

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hep-eformat/eformat/errs"
)

const (
	delimiter = "."

	runNumberWidth    = 8
	runNumberWidthOld = 7
	lumiBlockWidth    = 4
	sequenceWidth     = 4
	sequenceWidthOld  = 2

	// ExtensionWriting marks a file still being written; ExtensionFinished
	// marks one closed cleanly.
	ExtensionWriting  = "writing"
	ExtensionFinished = "data"

	defaultProductionStep = "daq"
	defaultDataType       = "RAW"
)

// Name holds the parsed or to-be-built ingredients of a raw file name.
type Name struct {
	Project          string
	RunNumber        uint32
	StreamType       string
	StreamName       string
	ProductionStep   string
	DataType         string
	LumiBlockNumber  uint32
	ApplicationName  string
	FileSequenceNumber uint32
	Extension        string

	// oldConvention records whether the name was parsed from the legacy
	// 7-digit-run/2-digit-sequence layout, purely informational.
	oldConvention bool
}

// New builds a Name from its ingredients, defaulting ProductionStep and
// DataType the way the original constructor does when left empty.
func New(project string, runNumber uint32, streamType, streamName string, lumiBlockNumber uint32, applicationName string) *Name {
	return &Name{
		Project:            project,
		RunNumber:          runNumber,
		StreamType:         streamType,
		StreamName:         streamName,
		ProductionStep:     defaultProductionStep,
		DataType:           defaultDataType,
		LumiBlockNumber:    lumiBlockNumber,
		ApplicationName:    applicationName,
		FileSequenceNumber: 1,
		Extension:          ExtensionWriting,
	}
}

// Stream returns the combined "<streamtype>_<streamname>" field.
func (n *Name) Stream() string {
	return n.StreamType + "_" + n.StreamName
}

// Advance increments the file sequence number, for rollover to the next
// file in the same run/lumi-block.
func (n *Name) Advance() {
	n.FileSequenceNumber++
}

// CoreName returns the name without the trailing sequence/extension
// trailer: "<project>.<run>.<stream>.<prodstep>.<datatype>.<lb>._<app>".
func (n *Name) CoreName() string {
	return strings.Join([]string{
		n.Project,
		zeroPad(n.RunNumber, runNumberWidth),
		n.Stream(),
		n.ProductionStep,
		n.DataType,
		zeroPad(n.LumiBlockNumber, lumiBlockWidth),
		"_" + n.ApplicationName,
	}, delimiter)
}

// FileName returns the complete file name, with the extension forced to
// ExtensionWriting when writing is true.
func (n *Name) FileName(writing bool) string {
	ext := n.Extension
	if writing {
		ext = ExtensionWriting
	}
	return strings.Join([]string{
		n.CoreName(),
		zeroPad(n.FileSequenceNumber, sequenceWidth),
		ext,
	}, delimiter)
}

func zeroPad(v uint32, width int) string {
	s := strconv.FormatUint(uint64(v), 10)
	if len(s) >= width {
		return s
	}
	return strings.Repeat("0", width-len(s)) + s
}

// Parse reconstructs a Name from a file name previously produced by
// FileName, or by the older 7-digit-run/2-digit-sequence convention. It
// returns ErrWrongFileFormat if fileName does not have the expected number
// of delimiter-separated fields.
func Parse(fileName string) (*Name, error) {
	// 0 project, 1 run, 2 stream, 3 prodstep, 4 datatype, 5 lb, 6 _app, 7 seq, 8 ext
	fields := strings.Split(fileName, delimiter)
	if len(fields) != 9 {
		return nil, fmt.Errorf("rawfilename: %q: %w", fileName, errs.ErrWrongFileFormat)
	}

	run, err := strconv.ParseUint(fields[1], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("rawfilename: %q: bad run number: %w", fileName, errs.ErrWrongFileFormat)
	}
	lb, err := strconv.ParseUint(fields[5], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("rawfilename: %q: bad lumi block: %w", fileName, errs.ErrWrongFileFormat)
	}
	seq, err := strconv.ParseUint(fields[7], 10, 32)
	if err != nil {
		return nil, fmt.Errorf("rawfilename: %q: bad sequence number: %w", fileName, errs.ErrWrongFileFormat)
	}

	streamType, streamName, ok := strings.Cut(fields[2], "_")
	if !ok {
		return nil, fmt.Errorf("rawfilename: %q: bad stream field: %w", fileName, errs.ErrWrongFileFormat)
	}

	if !strings.HasPrefix(fields[6], "_") {
		return nil, fmt.Errorf("rawfilename: %q: bad application field: %w", fileName, errs.ErrWrongFileFormat)
	}

	n := &Name{
		Project:            fields[0],
		RunNumber:          uint32(run),
		StreamType:         streamType,
		StreamName:         streamName,
		ProductionStep:     fields[3],
		DataType:           fields[4],
		LumiBlockNumber:    uint32(lb),
		ApplicationName:    strings.TrimPrefix(fields[6], "_"),
		FileSequenceNumber: uint32(seq),
		Extension:          fields[8],
	}

	switch len(fields[1]) {
	case runNumberWidth:
	case runNumberWidthOld:
		n.oldConvention = true
	default:
		return nil, fmt.Errorf("rawfilename: %q: bad run number width: %w", fileName, errs.ErrWrongFileFormat)
	}
	switch len(fields[7]) {
	case sequenceWidth:
	case sequenceWidthOld:
		n.oldConvention = true
	default:
		return nil, fmt.Errorf("rawfilename: %q: bad sequence number width: %w", fileName, errs.ErrWrongFileFormat)
	}

	return n, nil
}

// IsOldConvention reports whether Parse recognized the legacy 7-digit-run
// or 2-digit-sequence layout in fileName.
func (n *Name) IsOldConvention() bool { return n.oldConvention }
