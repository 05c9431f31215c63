package fragment

import (
	"fmt"

	"github.com/hep-eformat/eformat/compress"
	"github.com/hep-eformat/eformat/format"
	"github.com/hep-eformat/eformat/internal/bufpool"
)

// FullEventBuilder assembles a FullEvent fragment from a set of ROB
// children plus the fixed event fields and variable info/tag sections.
type FullEventBuilder struct {
	version             format.Version
	sourceID            uint32
	status              []uint32
	bcSeconds           uint32
	bcNanoseconds       uint32
	globalID            uint64
	runType             uint32
	runNumber           uint32
	lumiBlock           uint32
	lvl1ID              uint32
	bcID                uint32
	lvl1TriggerType     uint32
	compressionType     format.CompressionType
	lvl1TriggerInfo     []uint32
	lvl2TriggerInfo     []uint32
	eventFilterInfo     []uint32
	hltInfo             []uint32
	streamTagWords      []uint32
	children            []*ROBBuilder
}

// NewFullEventBuilder creates a builder at the current library major
// version, uncompressed by default.
func NewFullEventBuilder() *FullEventBuilder {
	return &FullEventBuilder{
		version:         format.NewVersion(format.MajorCurrent, 0),
		compressionType: format.CompressionNone,
	}
}

// Version overrides the stamped format_version. Builders default to the
// current major; this exists for constructing fixtures at older majors
// for the version converter to exercise.
func (b *FullEventBuilder) Version(v format.Version) *FullEventBuilder  { b.version = v; return b }
func (b *FullEventBuilder) SourceID(v uint32) *FullEventBuilder          { b.sourceID = v; return b }
func (b *FullEventBuilder) Status(words []uint32) *FullEventBuilder      { b.status = words; return b }
func (b *FullEventBuilder) BunchCrossingSeconds(v uint32) *FullEventBuilder {
	b.bcSeconds = v
	return b
}
func (b *FullEventBuilder) BunchCrossingNanoseconds(v uint32) *FullEventBuilder {
	b.bcNanoseconds = v
	return b
}
func (b *FullEventBuilder) GlobalID(v uint64) *FullEventBuilder         { b.globalID = v; return b }
func (b *FullEventBuilder) RunType(v uint32) *FullEventBuilder          { b.runType = v; return b }
func (b *FullEventBuilder) RunNumber(v uint32) *FullEventBuilder        { b.runNumber = v; return b }
func (b *FullEventBuilder) LumiBlock(v uint32) *FullEventBuilder        { b.lumiBlock = v; return b }
func (b *FullEventBuilder) Lvl1ID(v uint32) *FullEventBuilder           { b.lvl1ID = v; return b }
func (b *FullEventBuilder) BCID(v uint32) *FullEventBuilder             { b.bcID = v; return b }
func (b *FullEventBuilder) Lvl1TriggerType(v uint32) *FullEventBuilder  { b.lvl1TriggerType = v; return b }
func (b *FullEventBuilder) CompressionType(c format.CompressionType) *FullEventBuilder {
	b.compressionType = c
	return b
}
func (b *FullEventBuilder) Lvl1TriggerInfo(words []uint32) *FullEventBuilder {
	b.lvl1TriggerInfo = words
	return b
}
func (b *FullEventBuilder) Lvl2TriggerInfo(words []uint32) *FullEventBuilder {
	b.lvl2TriggerInfo = words
	return b
}
func (b *FullEventBuilder) EventFilterInfo(words []uint32) *FullEventBuilder {
	b.eventFilterInfo = words
	return b
}
func (b *FullEventBuilder) HLTInfo(words []uint32) *FullEventBuilder {
	b.hltInfo = words
	return b
}
func (b *FullEventBuilder) StreamTagWords(words []uint32) *FullEventBuilder {
	b.streamTagWords = words
	return b
}

// AppendChild links rob into the event's list of ROB fragments, in the
// order they will appear in the assembled payload.
func (b *FullEventBuilder) AppendChild(rob *ROBBuilder) *FullEventBuilder {
	b.children = append(b.children, rob)
	return b
}

func varSectionNode(words []uint32) []*Node {
	return []*Node{
		{Words: []uint32{uint32(len(words))}},
		{Words: words},
	}
}

// Bind finalizes the header, assembles and (if requested) compresses the
// ROB payload, and returns the head Node of the FullEvent's gather chain.
func (b *FullEventBuilder) Bind() (*Node, error) {
	var payloadHead *Node
	for _, child := range b.children {
		payloadHead = appendNode(payloadHead, child.Bind())
	}

	needBytes := int(CountWords(payloadHead)) * 4
	rawBuf := bufpool.GetFragmentBuffer()
	defer bufpool.PutFragmentBuffer(rawBuf)
	rawBuf.ExtendOrGrow(needBytes)
	rawPayload := rawBuf.Bytes()
	Copy(payloadHead, rawPayload)
	readableWords := uint32(len(rawPayload)) / 4

	codec, err := compress.GetCodec(b.compressionType)
	if err != nil {
		return nil, fmt.Errorf("fullevent: %w", err)
	}
	onDisk, err := codec.Compress(rawPayload)
	if err != nil {
		return nil, fmt.Errorf("fullevent: compress payload: %w", err)
	}

	header := []uint32{
		uint32(format.FullEventMarker),
		0, // header_size_word, patched below
		0, // fragment_size_word, patched below
		uint32(b.version),
		b.sourceID,
		uint32(len(b.status)),
	}

	fixed := []uint32{
		b.bcSeconds,
		b.bcNanoseconds,
		uint32(b.globalID),
		uint32(b.globalID >> 32),
		b.runType,
		b.runNumber,
		b.lumiBlock,
		b.lvl1ID,
		b.bcID,
		b.lvl1TriggerType,
		uint32(b.compressionType),
		readableWords,
	}

	head := &Node{Words: header}
	head = appendNode(head, &Node{Words: b.status})
	head = appendNode(head, &Node{Words: fixed})
	for _, section := range [][]uint32{b.lvl1TriggerInfo, b.lvl2TriggerInfo, b.eventFilterInfo, b.hltInfo, b.streamTagWords} {
		for _, n := range varSectionNode(section) {
			head = appendNode(head, n)
		}
	}

	headerWords := CountWords(head)
	header[1] = headerWords

	onDiskWords := wordsPadded(onDisk)
	header[2] = headerWords + uint32(len(onDiskWords))

	head = appendNode(head, &Node{Words: onDiskWords})

	return head, nil
}

// wordsPadded converts b into a 32-bit-word slice, zero-padding the final
// word if b's length is not a multiple of 4.
func wordsPadded(b []byte) []uint32 {
	n := (len(b) + 3) / 4
	words := make([]uint32, n)
	padded := make([]byte, n*4)
	copy(padded, b)
	for i := 0; i < n; i++ {
		words[i] = wireOrder.Uint32(padded[i*4:])
	}
	return words
}
