package eventstorage

import (
	"fmt"
	"io"
	"math"

	"github.com/hep-eformat/eformat/endian"
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/hep-eformat/eformat/sourceid"
)

// wireOrder is the byte order every record in this package (header,
// metadata, trailer) is framed in.
var wireOrder = endian.GetLittleEndianEngine()

// Metadata is the file header written once at file open and read back once
// at reader open. Every field the reader's metadata accessors expose
// (Section 4.7) is carried here.
type Metadata struct {
	ApplicationName string
	FileNameCore    string

	RunNumber    uint32
	MaxEvents    uint32
	RecEnable    bool
	TriggerType  uint32
	DetectorMask sourceid.DetectorMask
	BeamType     uint32
	BeamEnergy   float64

	Project    string
	Stream     string
	StreamType string
	StreamName string
	LumiBlock  uint32

	GUID string

	MetadataStrings []string

	Compression format.CompressionType

	StartDate uint32 // DDMMYYYY
	StartTime uint32 // HHMMSS

	MaxFileEvents     uint32
	MaxFileMB         uint32
	FileSequenceIndex uint32
}

// Trailer is the end-of-file record written when a file is closed.
type Trailer struct {
	EndDate uint32
	EndTime uint32

	EventsInFile         uint32
	DataMBInFile         float64
	EventsInFileSequence uint32
	DataMBInFileSequence float64

	Adler32 uint32
}

func writeUint32(w io.Writer, v uint32) error {
	var buf [4]byte
	wireOrder.PutUint32(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeUint64(w io.Writer, v uint64) error {
	var buf [8]byte
	wireOrder.PutUint64(buf[:], v)
	_, err := w.Write(buf[:])
	return err
}

func writeFloat64(w io.Writer, v float64) error {
	return writeUint64(w, math.Float64bits(v))
}

func writeBool(w io.Writer, v bool) error {
	b := byte(0)
	if v {
		b = 1
	}
	_, err := w.Write([]byte{b})
	return err
}

// writeString writes a u32 byte length followed by the raw bytes, no NUL
// terminator, matching the wire layout's length-prefixed string convention.
func writeString(w io.Writer, s string) error {
	if err := writeUint32(w, uint32(len(s))); err != nil {
		return err
	}
	_, err := io.WriteString(w, s)
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return wireOrder.Uint32(buf[:]), nil
}

func readUint64(r io.Reader) (uint64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return wireOrder.Uint64(buf[:]), nil
}

func readFloat64(r io.Reader) (float64, error) {
	bits, err := readUint64(r)
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(bits), nil
}

func readBool(r io.Reader) (bool, error) {
	var buf [1]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return false, err
	}
	return buf[0] != 0, nil
}

func readString(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

// writeMetadata serializes the file magic, format version, and metadata
// record in the order the reader expects them.
func writeMetadata(w io.Writer, m Metadata) error {
	if err := writeUint32(w, fileMagic); err != nil {
		return fmt.Errorf("eventstorage: writing magic: %w", err)
	}
	if err := writeUint32(w, fileFormatVersion); err != nil {
		return fmt.Errorf("eventstorage: writing version: %w", err)
	}
	if err := writeUint32(w, metadataMarker); err != nil {
		return fmt.Errorf("eventstorage: writing metadata marker: %w", err)
	}

	fields := []func() error{
		func() error { return writeString(w, m.ApplicationName) },
		func() error { return writeString(w, m.FileNameCore) },
		func() error { return writeUint32(w, m.RunNumber) },
		func() error { return writeUint32(w, m.MaxEvents) },
		func() error { return writeBool(w, m.RecEnable) },
		func() error { return writeUint32(w, m.TriggerType) },
		func() error {
			least, most := m.DetectorMask.LeastMost()
			if err := writeUint64(w, least); err != nil {
				return err
			}
			return writeUint64(w, most)
		},
		func() error { return writeUint32(w, m.BeamType) },
		func() error { return writeFloat64(w, m.BeamEnergy) },
		func() error { return writeString(w, m.Project) },
		func() error { return writeString(w, m.Stream) },
		func() error { return writeString(w, m.StreamType) },
		func() error { return writeString(w, m.StreamName) },
		func() error { return writeUint32(w, m.LumiBlock) },
		func() error { return writeString(w, m.GUID) },
		func() error {
			if err := writeUint32(w, uint32(len(m.MetadataStrings))); err != nil {
				return err
			}
			for _, s := range m.MetadataStrings {
				if err := writeString(w, s); err != nil {
					return err
				}
			}
			return nil
		},
		func() error { return writeUint32(w, uint32(m.Compression)) },
		func() error { return writeUint32(w, m.StartDate) },
		func() error { return writeUint32(w, m.StartTime) },
		func() error { return writeUint32(w, m.MaxFileEvents) },
		func() error { return writeUint32(w, m.MaxFileMB) },
		func() error { return writeUint32(w, m.FileSequenceIndex) },
	}

	for _, f := range fields {
		if err := f(); err != nil {
			return fmt.Errorf("eventstorage: writing metadata: %w", err)
		}
	}

	return nil
}

// readMetadata parses the file magic, version, and metadata record from r,
// positioned at the start of the file.
func readMetadata(r io.Reader) (Metadata, error) {
	var m Metadata

	magic, err := readUint32(r)
	if err != nil {
		return m, fmt.Errorf("eventstorage: reading magic: %w", err)
	}
	if magic != fileMagic {
		return m, fmt.Errorf("eventstorage: %w: bad file magic %#x", errs.ErrWrongFileFormat, magic)
	}

	version, err := readUint32(r)
	if err != nil {
		return m, fmt.Errorf("eventstorage: reading version: %w", err)
	}
	if version != fileFormatVersion {
		return m, fmt.Errorf("eventstorage: %w: unsupported file version %d", errs.ErrWrongFileFormat, version)
	}

	marker, err := readUint32(r)
	if err != nil {
		return m, fmt.Errorf("eventstorage: reading metadata marker: %w", err)
	}
	if marker != metadataMarker {
		return m, fmt.Errorf("eventstorage: %w: bad metadata marker %#x", errs.ErrWrongFileFormat, marker)
	}

	if m.ApplicationName, err = readString(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.FileNameCore, err = readString(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.RunNumber, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.MaxEvents, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.RecEnable, err = readBool(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.TriggerType, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	least, err := readUint64(r)
	if err != nil {
		return m, wrapMetadataErr(err)
	}
	most, err := readUint64(r)
	if err != nil {
		return m, wrapMetadataErr(err)
	}
	m.DetectorMask = sourceid.FromLeastMost(least, most)
	if m.BeamType, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.BeamEnergy, err = readFloat64(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.Project, err = readString(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.Stream, err = readString(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.StreamType, err = readString(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.StreamName, err = readString(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.LumiBlock, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.GUID, err = readString(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	nStrings, err := readUint32(r)
	if err != nil {
		return m, wrapMetadataErr(err)
	}
	m.MetadataStrings = make([]string, nStrings)
	for i := range m.MetadataStrings {
		if m.MetadataStrings[i], err = readString(r); err != nil {
			return m, wrapMetadataErr(err)
		}
	}
	compression, err := readUint32(r)
	if err != nil {
		return m, wrapMetadataErr(err)
	}
	m.Compression = format.CompressionType(compression)
	if m.StartDate, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.StartTime, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.MaxFileEvents, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.MaxFileMB, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}
	if m.FileSequenceIndex, err = readUint32(r); err != nil {
		return m, wrapMetadataErr(err)
	}

	return m, nil
}

func wrapMetadataErr(err error) error {
	return fmt.Errorf("eventstorage: reading metadata: %w", err)
}

// writeTrailer serializes the end-of-file record.
func writeTrailer(w io.Writer, t Trailer) error {
	if err := writeUint32(w, endOfFileMarker); err != nil {
		return err
	}

	fields := []func() error{
		func() error { return writeUint32(w, t.EndDate) },
		func() error { return writeUint32(w, t.EndTime) },
		func() error { return writeUint32(w, t.EventsInFile) },
		func() error { return writeFloat64(w, t.DataMBInFile) },
		func() error { return writeUint32(w, t.EventsInFileSequence) },
		func() error { return writeFloat64(w, t.DataMBInFileSequence) },
		func() error { return writeUint32(w, t.Adler32) },
	}
	for _, f := range fields {
		if err := f(); err != nil {
			return fmt.Errorf("eventstorage: writing trailer: %w", err)
		}
	}

	return nil
}

// readTrailer parses the end-of-file record from r.
func readTrailer(r io.Reader) (Trailer, error) {
	var t Trailer

	marker, err := readUint32(r)
	if err != nil {
		return t, fmt.Errorf("eventstorage: %w: reading trailer marker: %w", errs.ErrNoEndOfFileRecord, err)
	}
	if marker != endOfFileMarker {
		return t, fmt.Errorf("eventstorage: %w: bad trailer marker %#x", errs.ErrNoEndOfFileRecord, marker)
	}

	if t.EndDate, err = readUint32(r); err != nil {
		return t, wrapTrailerErr(err)
	}
	if t.EndTime, err = readUint32(r); err != nil {
		return t, wrapTrailerErr(err)
	}
	if t.EventsInFile, err = readUint32(r); err != nil {
		return t, wrapTrailerErr(err)
	}
	if t.DataMBInFile, err = readFloat64(r); err != nil {
		return t, wrapTrailerErr(err)
	}
	if t.EventsInFileSequence, err = readUint32(r); err != nil {
		return t, wrapTrailerErr(err)
	}
	if t.DataMBInFileSequence, err = readFloat64(r); err != nil {
		return t, wrapTrailerErr(err)
	}
	if t.Adler32, err = readUint32(r); err != nil {
		return t, wrapTrailerErr(err)
	}

	return t, nil
}

func wrapTrailerErr(err error) error {
	return fmt.Errorf("eventstorage: reading trailer: %w", err)
}

const trailerBytes = 4 /*marker*/ + 4 + 4 + 4 + 8 + 4 + 8 + 4
