package fragment

import "github.com/hep-eformat/eformat/format"

// RODBuilder assembles a ROD fragment from caller-supplied status and data
// words without copying them, finalizing the header and trailer on Bind.
type RODBuilder struct {
	version          format.Version
	sourceID         uint32
	runNumber        uint32
	lvl1ID           uint32
	bcID             uint32
	lvl1TriggerType  uint32
	detectorEventType uint32
	status           []uint32
	data             []uint32
	statusPos        StatusPosition
}

// NewRODBuilder creates a builder for the current library major version.
func NewRODBuilder() *RODBuilder {
	return &RODBuilder{
		version:   format.NewVersion(format.MajorCurrent, 0),
		statusPos: StatusFront,
	}
}

// Version overrides the stamped format_version; see FullEventBuilder.Version.
func (b *RODBuilder) Version(v format.Version) *RODBuilder    { b.version = v; return b }
func (b *RODBuilder) SourceID(v uint32) *RODBuilder           { b.sourceID = v; return b }
func (b *RODBuilder) RunNumber(v uint32) *RODBuilder          { b.runNumber = v; return b }
func (b *RODBuilder) Lvl1ID(v uint32) *RODBuilder             { b.lvl1ID = v; return b }
func (b *RODBuilder) BCID(v uint32) *RODBuilder               { b.bcID = v; return b }
func (b *RODBuilder) Lvl1TriggerType(v uint32) *RODBuilder    { b.lvl1TriggerType = v; return b }
func (b *RODBuilder) DetectorEventType(v uint32) *RODBuilder  { b.detectorEventType = v; return b }
func (b *RODBuilder) StatusPosition(p StatusPosition) *RODBuilder { b.statusPos = p; return b }

// Status sets the status words. The slice is referenced, not copied.
func (b *RODBuilder) Status(words []uint32) *RODBuilder { b.status = words; return b }

// Data sets the data words. The slice is referenced, not copied.
func (b *RODBuilder) Data(words []uint32) *RODBuilder { b.data = words; return b }

// Bind finalizes the header and trailer and returns the head Node of the
// ROD's gather chain (header, then status/data in the configured order,
// then trailer).
func (b *RODBuilder) Bind() *Node {
	header := []uint32{
		uint32(format.RODMarker),
		rodHeaderWords,
		uint32(b.version),
		b.sourceID,
		b.runNumber,
		b.lvl1ID,
		b.bcID,
		b.lvl1TriggerType,
		b.detectorEventType,
	}

	total := rodHeaderWords + len(b.status) + len(b.data) + rodTrailerWords
	trailer := []uint32{
		uint32(total),
		uint32(len(b.status)),
		uint32(len(b.data)),
		uint32(b.statusPos),
	}

	head := &Node{Words: header}
	if b.statusPos == StatusFront {
		head = appendNode(head, &Node{Words: b.status})
		head = appendNode(head, &Node{Words: b.data})
	} else {
		head = appendNode(head, &Node{Words: b.data})
		head = appendNode(head, &Node{Words: b.status})
	}
	head = appendNode(head, &Node{Words: trailer})

	return head
}
