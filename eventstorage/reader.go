package eventstorage

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path/filepath"

	"github.com/hep-eformat/eformat/checksum"
	"github.com/hep-eformat/eformat/compress"
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/rawfilename"
)

// dataSourceReader adapts DataSource to io.Reader for the metadata decoder.
type dataSourceReader struct{ src DataSource }

func (d *dataSourceReader) Read(p []byte) (int, error) {
	buf, err := d.src.ReadBytes(len(p))
	n := copy(p, buf)
	if err != nil {
		return n, err
	}
	if n < len(p) {
		return n, io.ErrUnexpectedEOF
	}
	return n, nil
}

// Reader iterates records in one file, or (with EnableSequenceReading)
// follows its "<core>.NNNN.data" successors.
type Reader struct {
	source DataSource
	path   string

	seqEnabled bool

	meta      Metadata
	headerEnd int64

	pos        int64
	atEOF      bool
	atEOFSeq   bool
	trailer    *Trailer
	trailerPos int64

	codec compress.Codec
}

// NewReader opens fileName (any scheme PickDataReader recognizes) and
// parses its metadata header.
func NewReader(fileName string) (*Reader, error) {
	source, path := PickDataReader(fileName)
	if err := source.Open(path); err != nil {
		return nil, err
	}

	meta, err := readMetadata(&dataSourceReader{src: source})
	if err != nil {
		source.Close()
		return nil, err
	}

	headerEnd, err := source.Tell()
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("eventstorage: %w", err)
	}

	codec, err := compress.GetCodec(meta.Compression)
	if err != nil {
		source.Close()
		return nil, fmt.Errorf("eventstorage: %w", err)
	}

	return &Reader{
		source:    source,
		path:      path,
		meta:      meta,
		headerEnd: headerEnd,
		pos:       headerEnd,
		codec:     codec,
	}, nil
}

// EnableSequenceReading opts in to following "<core>.NNNN.data" successor
// files once the current file is exhausted.
func (r *Reader) EnableSequenceReading() { r.seqEnabled = true }

// Good reports whether the underlying byte source is open. It does not
// track errors returned by GetData: it stays true after a NOOK status.
func (r *Reader) Good() bool { return r.source.IsOpen() }

// EndOfFile reports whether the current file has been fully read.
func (r *Reader) EndOfFile() bool { return r.atEOF }

// EndOfFileSequence reports whether the entire sequence has been read
// (only meaningful when sequence reading is enabled).
func (r *Reader) EndOfFileSequence() bool { return r.atEOFSeq }

// GetPosition returns the absolute byte offset at which the next
// GetData(-1, ...) call starts reading: the first record's offset before
// any read, and the end of the most recent record afterwards. It does not
// report the start offset of the record most recently returned.
func (r *Reader) GetPosition() int64 { return r.pos }

// GetData returns the next record, or the record starting at absolute
// offset pos when pos >= 0. If preAlloc, into must be large enough to hold
// the record (AllocatedMemoryTooLittle otherwise); when !preAlloc, into is
// ignored and a freshly allocated slice is returned.
func (r *Reader) GetData(pos int64, preAlloc bool, into []byte) (Status, []byte, error) {
	if pos >= 0 {
		if err := r.source.SeekAbs(pos); err != nil {
			return StatusWOff, nil, fmt.Errorf("eventstorage: %w: %w", errs.ErrWrongFileFormat, err)
		}
		r.pos = pos
		r.atEOF = false
	}

	header, err := r.source.ReadBytes(recordHeaderBytes)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return r.handleEndOfRecords()
		}
		return StatusNOOK, nil, fmt.Errorf("eventstorage: reading record header: %w", err)
	}

	marker := wireOrder.Uint32(header[0:4])
	if marker == endOfFileMarker {
		return r.handleEndOfFileMarker(header)
	}

	size, wantCRC, err := readRecordHeader(header)
	if err != nil {
		return StatusNOOK, nil, err
	}

	payload, err := r.source.ReadBytes(size)
	if err != nil {
		return StatusNOOK, nil, fmt.Errorf("eventstorage: %w: reading record payload: %w", errs.ErrWrongEventSize, err)
	}
	if pad := padLen(size); pad > 0 {
		if _, err := r.source.ReadBytes(pad); err != nil {
			return StatusNOOK, nil, fmt.Errorf("eventstorage: reading record pad: %w", err)
		}
	}
	if gotCRC := checksum.CRC16CCITTBytes(payload); gotCRC != wantCRC {
		return StatusNOOK, nil, fmt.Errorf("eventstorage: %w: record checksum mismatch", errs.ErrWrongFileFormat)
	}

	decoded, err := r.codec.Decompress(payload)
	if err != nil {
		return StatusNOOK, nil, fmt.Errorf("eventstorage: %w", err)
	}

	if preAlloc {
		if len(into) < len(decoded) {
			return StatusNOOK, nil, errs.ErrAllocatedMemoryTooLittle
		}
		n := copy(into, decoded)
		decoded = into[:n]
	}

	if next, err := r.source.Tell(); err == nil {
		r.pos = next
	}

	return StatusOK, decoded, nil
}

// handleEndOfFileMarker parses the trailer whose leading bytes (the
// record-header-sized read that found the marker) are already consumed and
// passed in, and, if sequence reading is enabled, attempts to open the
// successor file.
func (r *Reader) handleEndOfFileMarker(markerWord []byte) (Status, []byte, error) {
	rest, err := r.source.ReadBytes(trailerBytes - len(markerWord))
	if err != nil {
		return StatusNOOK, nil, fmt.Errorf("eventstorage: %w: %w", errs.ErrNoEndOfFileRecord, err)
	}

	trailer, err := readTrailer(bytes.NewReader(append(markerWord, rest...)))
	if err != nil {
		return StatusNOOK, nil, err
	}
	r.trailer = &trailer
	if p, err := r.source.Tell(); err == nil {
		r.trailerPos = p - int64(trailerBytes)
	}
	r.atEOF = true

	if !r.seqEnabled {
		r.atEOFSeq = true
		return StatusNOOK, nil, io.EOF
	}

	return r.advanceSequence()
}

// handleEndOfRecords is reached when the underlying source is exhausted
// without encountering an end-of-file record. If the file still exists it
// returns WAIT (the writer may still be appending); if it no longer exists
// it returns NOOK. A truncated file that still exists also yields WAIT.
func (r *Reader) handleEndOfRecords() (Status, []byte, error) {
	r.atEOF = true
	if !r.source.FileExists(r.path) {
		return StatusNOOK, nil, fmt.Errorf("eventstorage: %w", errs.ErrNoEndOfFileRecord)
	}

	return StatusWait, nil, nil
}

// advanceSequence attempts to open the next file in a "<core>.NNNN.data"
// sequence. If the successor cannot be derived from the current file's
// name, NOSEQ is returned; if it can be derived but does not exist yet,
// WAIT is returned so the caller may retry.
func (r *Reader) advanceSequence() (Status, []byte, error) {
	name, err := rawfilename.Parse(filepath.Base(r.path))
	if err != nil {
		r.atEOFSeq = true
		return StatusNoSeq, nil, nil
	}

	name.Advance()
	nextPath := filepath.Join(filepath.Dir(r.path), name.FileName(false))

	if !r.source.FileExists(nextPath) {
		// Successor not finished (or not started) yet: caller retries.
		return StatusWait, nil, nil
	}

	next := r.source.Clone()
	if err := next.Open(nextPath); err != nil {
		return StatusWait, nil, nil
	}

	meta, err := readMetadata(&dataSourceReader{src: next})
	if err != nil {
		next.Close()
		return StatusNOOK, nil, err
	}
	headerEnd, err := next.Tell()
	if err != nil {
		next.Close()
		return StatusNOOK, nil, fmt.Errorf("eventstorage: %w", err)
	}

	r.source.Close()
	r.source = next
	r.path = nextPath
	r.meta = meta
	r.headerEnd = headerEnd
	r.pos = headerEnd
	r.atEOF = false

	return r.GetData(-1, false, nil)
}

// Close releases the underlying byte source.
func (r *Reader) Close() error {
	return r.source.Close()
}

// Metadata accessors (Section 4.7).
func (r *Reader) RunNumber() uint32             { return r.meta.RunNumber }
func (r *Reader) MaxEvents() uint32             { return r.meta.MaxEvents }
func (r *Reader) RecEnable() bool               { return r.meta.RecEnable }
func (r *Reader) TriggerType() uint32           { return r.meta.TriggerType }
func (r *Reader) DetectorMask() (uint64, uint64) { return r.meta.DetectorMask.LeastMost() }
func (r *Reader) BeamType() uint32              { return r.meta.BeamType }
func (r *Reader) BeamEnergy() float64           { return r.meta.BeamEnergy }
func (r *Reader) MetadataStrings() []string     { return r.meta.MetadataStrings }
func (r *Reader) StartDate() uint32             { return r.meta.StartDate }
func (r *Reader) StartTime() uint32             { return r.meta.StartTime }
func (r *Reader) ProjectTag() string            { return r.meta.Project }
func (r *Reader) Stream() string                { return r.meta.Stream }
func (r *Reader) LumiBlock() uint32             { return r.meta.LumiBlock }
func (r *Reader) Compression() uint32           { return uint32(r.meta.Compression) }
func (r *Reader) GUID() string                  { return r.meta.GUID }

// End-of-file rewind accessors (Section 4.7): valid mid-read, obtained by a
// temporary seek to the file trailer with the read cursor restored after.
func (r *Reader) EndDate() (uint32, error) {
	return r.trailerField(func(t Trailer) uint32 { return t.EndDate })
}

func (r *Reader) EndTime() (uint32, error) {
	return r.trailerField(func(t Trailer) uint32 { return t.EndTime })
}

func (r *Reader) EventsInFile() (uint32, error) {
	return r.trailerField(func(t Trailer) uint32 { return t.EventsInFile })
}

func (r *Reader) EventsInFileSequence() (uint32, error) {
	return r.trailerField(func(t Trailer) uint32 { return t.EventsInFileSequence })
}

func (r *Reader) DataMBInFile() (float64, error) {
	return r.trailerFloatField(func(t Trailer) float64 { return t.DataMBInFile })
}

func (r *Reader) DataMBInFileSequence() (float64, error) {
	return r.trailerFloatField(func(t Trailer) float64 { return t.DataMBInFileSequence })
}

func (r *Reader) trailerField(extract func(Trailer) uint32) (uint32, error) {
	t, err := r.peekTrailer()
	if err != nil {
		return 0, err
	}
	return extract(t), nil
}

func (r *Reader) trailerFloatField(extract func(Trailer) float64) (float64, error) {
	t, err := r.peekTrailer()
	if err != nil {
		return 0, err
	}
	return extract(t), nil
}

// peekTrailer performs the temporary seek-and-restore the spec calls for:
// jump to the trailer, read it, then return the cursor to where it was.
func (r *Reader) peekTrailer() (Trailer, error) {
	if r.trailer != nil {
		return *r.trailer, nil
	}

	savedPos, err := r.source.Tell()
	if err != nil {
		return Trailer{}, fmt.Errorf("eventstorage: %w", err)
	}

	if err := r.source.SeekFromEnd(-int64(trailerBytes)); err != nil {
		return Trailer{}, fmt.Errorf("eventstorage: %w", err)
	}
	buf, err := r.source.ReadBytes(trailerBytes)
	if err != nil {
		return Trailer{}, fmt.Errorf("eventstorage: %w: %w", errs.ErrNoEndOfFileRecord, err)
	}
	trailer, err := readTrailer(bytes.NewReader(buf))
	if err != nil {
		return Trailer{}, err
	}
	r.trailer = &trailer

	if err := r.source.SeekAbs(savedPos); err != nil {
		return Trailer{}, fmt.Errorf("eventstorage: restoring read cursor: %w", err)
	}

	return trailer, nil
}
