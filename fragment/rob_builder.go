package fragment

import "github.com/hep-eformat/eformat/format"

// ROBBuilder wraps a single embedded RODBuilder with the generic ROB
// prefix (marker, sizes, version, source_id, status).
type ROBBuilder struct {
	version  format.Version
	sourceID uint32
	status   []uint32
	rod      *RODBuilder
}

// NewROBBuilder creates a builder wrapping rod, at the current library
// major version.
func NewROBBuilder(rod *RODBuilder) *ROBBuilder {
	return &ROBBuilder{
		version: format.NewVersion(format.MajorCurrent, 0),
		rod:     rod,
	}
}

// Version overrides the stamped format_version; see FullEventBuilder.Version.
func (b *ROBBuilder) Version(v format.Version) *ROBBuilder { b.version = v; return b }
func (b *ROBBuilder) SourceID(v uint32) *ROBBuilder   { b.sourceID = v; return b }
func (b *ROBBuilder) Status(words []uint32) *ROBBuilder { b.status = words; return b }

// Bind finalizes the ROB header and returns the head Node of its gather
// chain: header, status, then the embedded ROD's chain.
func (b *ROBBuilder) Bind() *Node {
	rodHead := b.rod.Bind()
	rodWords := CountWords(rodHead)

	headerWords := genericPrefixWords + len(b.status)
	header := []uint32{
		uint32(format.ROBMarker),
		uint32(headerWords),
		uint32(headerWords) + rodWords,
		uint32(b.version),
		b.sourceID,
		uint32(len(b.status)),
	}

	head := &Node{Words: header}
	head = appendNode(head, &Node{Words: b.status})
	head = appendNode(head, rodHead)

	return head
}
