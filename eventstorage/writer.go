package eventstorage

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hep-eformat/eformat/checksum"
	"github.com/hep-eformat/eformat/compress"
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/hep-eformat/eformat/internal/options"
	"github.com/hep-eformat/eformat/sourceid"
)

// State is the writer's per-file lifecycle stage.
type State int

const (
	StateIdle State = iota
	StateOpen
	StateWriting
	StateTransition
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateOpen:
		return "OPEN"
	case StateWriting:
		return "WRITING"
	case StateTransition:
		return "TRANSITION"
	case StateClosed:
		return "CLOSED"
	default:
		return "UNKNOWN"
	}
}

// WriterOption configures a Writer at construction time.
type WriterOption = options.Option[*Writer]

// Writer serializes an ordered stream of opaque byte records into files
// following the raw-file-name convention (Section 4.6), rolling to a new
// file when a size or event-count limit is reached.
type Writer struct {
	nameCallback FileNameCallback

	project         string
	streamType      string
	streamName      string
	applicationName string
	runNumber       uint32
	lumiBlock       uint32

	maxFileMB     uint32
	maxFileEvents uint32
	compression   format.CompressionType

	triggerType  uint32
	detectorMask sourceid.DetectorMask
	beamType     uint32
	beamEnergy   float64
	recEnable    bool
	metaStrings  []string

	guidOverride string

	dir        string
	pendingDir string

	callbacks callbackRegistry

	codec compress.Codec

	state        State
	seq          uint32
	file         *os.File
	buf          *bufio.Writer
	currentPath  string
	currentMeta  Metadata
	bytesWritten int
	eventsInFile uint32
	adler        uint32

	eventsInSequence uint32
	mbInSequence     float64
}

// NewWriter constructs a Writer for the given raw-data ingredients,
// defaulting to the structured ATLAS file-name convention; use
// WithFileNameCallback to install SimpleFileNameCallback instead.
func NewWriter(project string, runNumber uint32, streamType, streamName string, lumiBlock uint32, applicationName string, opts ...WriterOption) (*Writer, error) {
	w := &Writer{
		project:         project,
		streamType:      streamType,
		streamName:      streamName,
		applicationName: applicationName,
		runNumber:       runNumber,
		lumiBlock:       lumiBlock,
		dir:             ".",
		compression:     format.CompressionNone,
		recEnable:       true,
	}
	w.nameCallback = NewStructuredFileNameCallback(project, runNumber, streamType, streamName, lumiBlock, applicationName)

	if err := options.Apply(w, opts...); err != nil {
		return nil, fmt.Errorf("eventstorage: configuring writer: %w", err)
	}

	if w.codec == nil {
		codec, err := compress.GetCodec(w.compression)
		if err != nil {
			return nil, fmt.Errorf("eventstorage: %w", err)
		}
		w.codec = codec
	}

	return w, nil
}

// WithDirectory sets the directory new files are opened in.
func WithDirectory(dir string) WriterOption {
	return options.NoError(func(w *Writer) { w.dir = dir })
}

// WithMaxFileMB sets the byte-size rollover threshold.
func WithMaxFileMB(mb uint32) WriterOption {
	return options.NoError(func(w *Writer) { w.maxFileMB = mb })
}

// WithMaxFileEvents sets the record-count rollover threshold.
func WithMaxFileEvents(n uint32) WriterOption {
	return options.NoError(func(w *Writer) { w.maxFileEvents = n })
}

// WithCompression selects the codec PutData and PutDataIOV compress
// records with, and the CompressionType recorded in the file header.
// PutPrecompressedData bypasses this codec entirely.
func WithCompression(c format.CompressionType) WriterOption {
	return options.NoError(func(w *Writer) { w.compression = c })
}

// WithCodec installs an explicit Codec instead of the built-in one
// compression selects by default, e.g. a non-default zlib level. The
// header still records compression as the declared CompressionType, so
// callers must pick a compressionType consistent with codec's framing.
func WithCodec(compressionType format.CompressionType, codec compress.Codec) WriterOption {
	return options.NoError(func(w *Writer) {
		w.compression = compressionType
		w.codec = codec
	})
}

// WithFileNameCallback overrides the default structured file-name
// strategy, e.g. with a SimpleFileNameCallback.
func WithFileNameCallback(cb FileNameCallback) WriterOption {
	return options.NoError(func(w *Writer) { w.nameCallback = cb })
}

// WithTriggerType, WithDetectorMask, WithBeamType, WithBeamEnergy, and
// WithMetadataStrings set the remaining file-header fields the reader
// exposes as metadata accessors.
func WithTriggerType(t uint32) WriterOption {
	return options.NoError(func(w *Writer) { w.triggerType = t })
}

func WithDetectorMask(m sourceid.DetectorMask) WriterOption {
	return options.NoError(func(w *Writer) { w.detectorMask = m })
}

func WithBeamType(t uint32) WriterOption {
	return options.NoError(func(w *Writer) { w.beamType = t })
}

func WithBeamEnergy(e float64) WriterOption {
	return options.NoError(func(w *Writer) { w.beamEnergy = e })
}

func WithMetadataStrings(strs []string) WriterOption {
	return options.NoError(func(w *Writer) { w.metaStrings = strs })
}

func WithRecEnable(enabled bool) WriterOption {
	return options.NoError(func(w *Writer) { w.recEnable = enabled })
}

// State reports the writer's current lifecycle stage.
func (w *Writer) State() State { return w.state }

// InTransition reports whether Cd has been called but the directory switch
// has not yet taken effect (it takes effect at the next rollover).
func (w *Writer) InTransition() bool { return w.pendingDir != "" }

// Cd schedules the writer's next rollover to open in dir. In-flight file
// state is preserved; the current file is unaffected.
func (w *Writer) Cd(dir string) {
	w.pendingDir = dir
}

// SetGUID overrides the GUID used by the next opened file.
func (w *Writer) SetGUID(guid string) {
	w.guidOverride = guid
}

// RegisterCallback adds cb to the list fired (in registration order) after
// every file close.
func (w *Writer) RegisterCallback(cb DataWriterCallBack) (CallbackHandle, error) {
	return w.callbacks.register(cb)
}

// UnregisterCallback removes a callback previously returned by
// RegisterCallback.
func (w *Writer) UnregisterCallback(handle CallbackHandle) {
	w.callbacks.unregister(handle)
}

// Open starts the first file in the writer's sequence.
func (w *Writer) Open() error {
	if w.state != StateIdle {
		return fmt.Errorf("eventstorage: Open called from state %s", w.state)
	}
	return w.openNextFile()
}

func (w *Writer) openNextFile() error {
	if w.pendingDir != "" {
		w.dir = w.pendingDir
		w.pendingDir = ""
	}

	w.seq++
	name, err := w.nameCallback.NextFileName(w.seq, true)
	if err != nil {
		return fmt.Errorf("eventstorage: generating file name: %w", err)
	}
	path := filepath.Join(w.dir, name)

	if w.seq == 1 {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("eventstorage: %w: %s", errs.ErrSingleFileAlreadyExists, path)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("eventstorage: creating %s: %w", path, err)
	}

	guid := w.guidOverride
	if guid == "" {
		if s, ok := w.nameCallback.(*StructuredFileNameCallback); ok {
			guid = deterministicGUID(fmt.Sprintf("%s#%d", s.CoreName(), w.seq))
		} else {
			guid = newGUID()
		}
	}
	w.guidOverride = ""

	coreName := name
	if s, ok := w.nameCallback.(*StructuredFileNameCallback); ok {
		coreName = s.CoreName()
	}

	now := time.Now()
	meta := Metadata{
		ApplicationName:   w.applicationName,
		FileNameCore:      coreName,
		RunNumber:         w.runNumber,
		MaxEvents:         w.maxFileEvents,
		RecEnable:         w.recEnable,
		TriggerType:       w.triggerType,
		DetectorMask:      w.detectorMask,
		BeamType:          w.beamType,
		BeamEnergy:        w.beamEnergy,
		Project:           w.project,
		Stream:            w.streamType + "_" + w.streamName,
		StreamType:        w.streamType,
		StreamName:        w.streamName,
		LumiBlock:         w.lumiBlock,
		GUID:              guid,
		MetadataStrings:   w.metaStrings,
		Compression:       w.compression,
		StartDate:         dateAsInt(now),
		StartTime:         timeAsInt(now),
		MaxFileEvents:     w.maxFileEvents,
		MaxFileMB:         w.maxFileMB,
		FileSequenceIndex: w.seq,
	}

	buf := bufio.NewWriter(f)
	if err := writeMetadata(buf, meta); err != nil {
		f.Close()
		return err
	}

	w.file = f
	w.buf = buf
	w.currentPath = path
	w.currentMeta = meta
	w.bytesWritten = 0
	w.eventsInFile = 0
	w.adler = 1
	w.state = StateOpen

	return nil
}

// PutData appends a record carrying data, rolling to the next file first if
// the append would exceed the configured size or event-count limits.
func (w *Writer) PutData(data []byte) error {
	return w.putData(data, false)
}

// PutDataIOV appends a record assembled from the concatenation of iov, as a
// single record rather than one per chunk.
func (w *Writer) PutDataIOV(iov [][]byte) error {
	total := 0
	for _, c := range iov {
		total += len(c)
	}
	flat := make([]byte, 0, total)
	for _, c := range iov {
		flat = append(flat, c...)
	}

	return w.putData(flat, false)
}

// PutPrecompressedData appends data unchanged regardless of the writer's
// declared compression mode. The file header still claims the writer's
// configured compression; it is the caller's responsibility that data is
// actually encoded that way.
func (w *Writer) PutPrecompressedData(data []byte) error {
	return w.putData(data, true)
}

func (w *Writer) putData(data []byte, precompressed bool) error {
	if w.state == StateIdle {
		if err := w.Open(); err != nil {
			return err
		}
	}

	payload := data
	if !precompressed {
		compressed, err := w.codec.Compress(data)
		if err != nil {
			return fmt.Errorf("eventstorage: compressing record: %w", err)
		}
		payload = compressed
	}

	if w.wouldExceedLimits(len(payload)) {
		if err := w.rollover(); err != nil {
			return err
		}
	}

	w.state = StateWriting

	n, err := writeRecord(w.buf, payload)
	if err != nil {
		return fmt.Errorf("eventstorage: %w", err)
	}

	w.bytesWritten += n
	w.eventsInFile++
	w.adler = checksum.Adler32BytesInit(w.adler, payload)

	return nil
}

func (w *Writer) wouldExceedLimits(payloadBytes int) bool {
	if w.state != StateOpen && w.state != StateWriting {
		return false
	}
	if w.maxFileEvents > 0 && w.eventsInFile >= w.maxFileEvents {
		return true
	}
	if w.maxFileMB > 0 {
		projected := w.bytesWritten + recordLen(payloadBytes)
		if projected > int(w.maxFileMB)*(1<<20) {
			return true
		}
	}

	return false
}

func (w *Writer) rollover() error {
	if err := w.CloseFile(); err != nil {
		return err
	}
	return w.openNextFile()
}

// NextFile is an explicit caller-requested rollover, equivalent to the
// limits being hit.
func (w *Writer) NextFile() error {
	return w.rollover()
}

// CloseFile finalizes the current file: writes the trailer, renames from
// ".writing" to ".data", and fires FileWasClosed callbacks.
func (w *Writer) CloseFile() error {
	if w.state == StateIdle || w.state == StateClosed {
		return nil
	}

	w.state = StateTransition

	now := time.Now()
	mb := float64(w.bytesWritten) / float64(1<<20)
	w.eventsInSequence += w.eventsInFile
	w.mbInSequence += mb

	trailer := Trailer{
		EndDate:              dateAsInt(now),
		EndTime:              timeAsInt(now),
		EventsInFile:         w.eventsInFile,
		DataMBInFile:         mb,
		EventsInFileSequence: w.eventsInSequence,
		DataMBInFileSequence: w.mbInSequence,
		Adler32:              w.adler,
	}

	if err := writeTrailer(w.buf, trailer); err != nil {
		return err
	}
	if err := w.buf.Flush(); err != nil {
		return fmt.Errorf("eventstorage: flushing %s: %w", w.currentPath, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("eventstorage: closing %s: %w", w.currentPath, err)
	}

	finalName, err := w.nameCallback.NextFileName(w.seq, false)
	if err != nil {
		return fmt.Errorf("eventstorage: generating final file name: %w", err)
	}
	finalPath := filepath.Join(filepath.Dir(w.currentPath), finalName)
	if err := os.Rename(w.currentPath, finalPath); err != nil {
		return fmt.Errorf("eventstorage: renaming %s to %s: %w", w.currentPath, finalPath, err)
	}

	w.callbacks.fire(finalPath, w.currentMeta, trailer)

	w.currentPath = finalPath
	w.state = StateClosed
	w.file = nil
	w.buf = nil

	return nil
}

// Close finalizes and closes out the writer entirely (no further rollover).
func (w *Writer) Close() error {
	return w.CloseFile()
}

func dateAsInt(t time.Time) uint32 {
	return uint32(t.Day())*1_000_000 + uint32(t.Month())*10_000 + uint32(t.Year())
}

func timeAsInt(t time.Time) uint32 {
	return uint32(t.Hour())*10_000 + uint32(t.Minute())*100 + uint32(t.Second())
}
