package fragment

import (
	"testing"

	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/stretchr/testify/require"
)

func buildMinimalEvent(t *testing.T, compressionType format.CompressionType) []byte {
	t.Helper()

	rod := NewRODBuilder().
		SourceID(0x00410001).
		RunNumber(42).
		Data([]uint32{0xDEAD, 0xBEEF, 0xCAFE, 0xBABE}).
		Status([]uint32{0}).
		StatusPosition(StatusFront)

	rob := NewROBBuilder(rod).SourceID(0x00410001)

	event := NewFullEventBuilder().
		GlobalID(0x0000000100000002).
		RunNumber(42).
		LumiBlock(7).
		BunchCrossingSeconds(1_700_000_000).
		BunchCrossingNanoseconds(0).
		CompressionType(compressionType).
		AppendChild(rob)

	head, err := event.Bind()
	require.NoError(t, err)

	buf := make([]byte, CountWords(head)*4)
	n := Copy(head, buf)
	require.Equal(t, len(buf), n)

	return buf
}

func TestFullEvent_MinimalRoundTrip(t *testing.T) {
	buf := buildMinimalEvent(t, format.CompressionNone)

	view, err := NewFullEventView(buf)
	require.NoError(t, err)

	require.Equal(t, format.FullEventMarker, view.Marker())
	require.Equal(t, uint64(0x0000000100000002), view.GlobalID())

	n, err := view.NChildren()
	require.NoError(t, err)
	require.Equal(t, 1, n)

	child, err := view.Child(0)
	require.NoError(t, err)
	require.Equal(t, uint32(0x00410001), uint32(child.SourceID()))

	rod := child.ROD()
	require.Equal(t, uint32(4), rod.NData())
	require.Equal(t, uint32(0x00410001), uint32(rod.SourceID()))
	require.Equal(t, []uint32{0xDEAD, 0xBEEF, 0xCAFE, 0xBABE}, rod.Data())
}

func TestFullEvent_CompressedPayload(t *testing.T) {
	uncompressed := buildMinimalEvent(t, format.CompressionNone)
	compressed := buildMinimalEvent(t, format.CompressionZlib)

	require.Less(t, len(compressed), len(uncompressed))

	view, err := NewFullEventView(compressed)
	require.NoError(t, err)

	payload, err := view.ReadablePayload()
	require.NoError(t, err)

	uncompressedView, err := NewFullEventView(uncompressed)
	require.NoError(t, err)
	wantPayload, err := uncompressedView.ReadablePayload()
	require.NoError(t, err)

	require.Equal(t, wantPayload, payload)
	require.Equal(t, uint32(len(wantPayload))/4, view.ReadablePayloadSizeWord())
}

func TestFullEvent_ChecksFragmentTree(t *testing.T) {
	buf := buildMinimalEvent(t, format.CompressionNone)

	view, err := NewFullEventView(buf)
	require.NoError(t, err)

	require.NoError(t, view.Check(format.MajorCurrent))
	require.Empty(t, view.Problems(format.MajorCurrent))
}

func TestFullEvent_WrongMarkerDetected(t *testing.T) {
	buf := buildMinimalEvent(t, format.CompressionNone)
	buf[0] = 0 // clobber the marker

	view, err := NewFullEventView(buf)
	require.NoError(t, err)

	require.Error(t, view.Check(format.MajorCurrent))
	require.Contains(t, view.Problems(format.MajorCurrent), errs.ProblemWrongMarker)
}
