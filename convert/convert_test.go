package convert

import (
	"testing"

	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/hep-eformat/eformat/fragment"
	"github.com/stretchr/testify/require"
)

func buildEventAt(t *testing.T, major uint16, compressionType format.CompressionType) []byte {
	t.Helper()

	rodVersion := format.NewVersion(major, 0)

	rod := fragment.NewRODBuilder().
		Version(rodVersion).
		SourceID(0x00410001).
		Data([]uint32{1, 2, 3}).
		Status([]uint32{0})

	rob := fragment.NewROBBuilder(rod).Version(rodVersion).SourceID(0x00410001)

	event := fragment.NewFullEventBuilder().
		Version(rodVersion).
		GlobalID(1).
		RunNumber(99).
		CompressionType(compressionType).
		AppendChild(rob)

	head, err := event.Bind()
	require.NoError(t, err)

	buf := make([]byte, fragment.CountWords(head)*4)
	fragment.Copy(head, buf)
	return buf
}

func TestFullEvent_IdempotentAtCurrentVersion(t *testing.T) {
	src := buildEventAt(t, format.MajorCurrent, format.CompressionNone)

	dst := make([]byte, len(src))
	n, err := FullEvent(src, dst)
	require.NoError(t, err)
	require.Equal(t, len(src)/4, n)
	require.Equal(t, src, dst)
}

func TestFullEvent_ConvertsOlderMajor(t *testing.T) {
	src := buildEventAt(t, format.MajorV24, format.CompressionNone)

	dst := make([]byte, len(src)+64)
	n, err := FullEvent(src, dst)
	require.NoError(t, err)
	require.Greater(t, n, 0)

	out := dst[:n*4]
	view, err := fragment.NewFullEventView(out)
	require.NoError(t, err)
	require.Equal(t, format.MajorCurrent, view.Version().Major())
	require.Equal(t, uint64(1), view.GlobalID())

	child, err := view.Child(0)
	require.NoError(t, err)
	require.Equal(t, format.MajorCurrent, child.ROD().Version().Major())
}

func TestFullEvent_UnsupportedVersionRejected(t *testing.T) {
	src := buildEventAt(t, 0x9999, format.CompressionNone)

	_, err := FullEvent(src, make([]byte, len(src)+64))
	require.ErrorIs(t, err, errs.ErrUnsupportedVersion)
}

func TestFullEvent_DestinationTooSmallReturnsZero(t *testing.T) {
	src := buildEventAt(t, format.MajorV30, format.CompressionNone)

	n, err := FullEvent(src, make([]byte, 4))
	require.NoError(t, err)
	require.Equal(t, 0, n)
}
