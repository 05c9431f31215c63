// Package convert rewrites fragments recorded at an older library major
// version into the current layout, recursing into every child in order.
//
// This library's wire layout has not changed shape across the majors it
// still accepts (V24, V30, V31, V40) — only the stamped format_version
// differs — so conversion amounts to re-assembling each fragment through
// its write builder, which always stamps the current major. When a
// FullEvent's payload is already current and uncompressed, the source
// bytes are returned unchanged to guarantee the idempotent case is
// byte-for-byte identical, not merely semantically equivalent. A current,
// already-compressed FullEvent still goes through decompress/rebuild/
// recompress, which is semantically idempotent but not guaranteed
// byte-for-byte, since recompression is not guaranteed deterministic
// across codec versions.
package convert

import (
	"fmt"

	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/hep-eformat/eformat/fragment"
)

var supportedMajors = map[uint16]bool{
	format.MajorV24:     true,
	format.MajorV30:     true,
	format.MajorV31:     true,
	format.MajorV40:     true,
	format.MajorCurrent: true,
}

// FullEvent rewrites src, a FullEvent fragment at a supported major
// version, into dst at the current major. It returns the number of words
// written, or 0 if dst is too small to hold the result. An unsupported
// major returns ErrUnsupportedVersion.
func FullEvent(src []byte, dst []byte) (int, error) {
	view, err := fragment.NewFullEventView(src)
	if err != nil {
		return 0, err
	}

	major := view.Version().Major()
	if !supportedMajors[major] {
		return 0, errs.ErrUnsupportedVersion
	}

	if major == format.MajorCurrent && view.CompressionType() == format.CompressionNone {
		if len(dst) < len(src) {
			return 0, nil
		}
		copy(dst, src)
		return len(src) / 4, nil
	}

	builder := fragment.NewFullEventBuilder().
		SourceID(uint32(view.SourceID())).
		Status(view.Status()).
		BunchCrossingSeconds(view.BunchCrossingSeconds()).
		BunchCrossingNanoseconds(view.BunchCrossingNanoseconds()).
		GlobalID(view.GlobalID()).
		RunType(view.RunType()).
		RunNumber(view.RunNumber()).
		LumiBlock(view.LumiBlock()).
		Lvl1ID(view.Lvl1ID()).
		BCID(view.BCID()).
		Lvl1TriggerType(view.Lvl1TriggerType()).
		CompressionType(view.CompressionType()).
		Lvl1TriggerInfo(view.Lvl1TriggerInfo()).
		Lvl2TriggerInfo(view.Lvl2TriggerInfo()).
		EventFilterInfo(view.EventFilterInfo()).
		HLTInfo(view.HLTInfo()).
		StreamTagWords(view.StreamTagWords())

	if err := view.ChildIter(func(rob fragment.ROBView) error {
		converted, err := convertROB(rob)
		if err != nil {
			return err
		}
		builder.AppendChild(converted)
		return nil
	}); err != nil {
		return 0, fmt.Errorf("convert: FullEvent children: %w", err)
	}

	head, err := builder.Bind()
	if err != nil {
		return 0, fmt.Errorf("convert: rebind FullEvent: %w", err)
	}

	need := int(fragment.CountWords(head)) * 4
	if len(dst) < need {
		return 0, nil
	}

	return fragment.Copy(head, dst) / 4, nil
}

func convertROB(rob fragment.ROBView) (*fragment.ROBBuilder, error) {
	rodView := rob.ROD()
	if !supportedMajors[rodView.Version().Major()] {
		return nil, errs.ErrUnsupportedVersion
	}

	rodBuilder := fragment.NewRODBuilder().
		SourceID(uint32(rodView.SourceID())).
		RunNumber(rodView.RunNumber()).
		Lvl1ID(rodView.Lvl1ID()).
		BCID(rodView.BCID()).
		Lvl1TriggerType(rodView.Lvl1TriggerType()).
		DetectorEventType(rodView.DetectorEventType()).
		Status(rodView.Status()).
		Data(rodView.Data()).
		StatusPosition(rodView.StatusPos())

	return fragment.NewROBBuilder(rodBuilder).
		SourceID(uint32(rob.SourceID())).
		Status(rob.Status()), nil
}
