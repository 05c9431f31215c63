package fragment

import (
	"testing"

	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/format"
	"github.com/stretchr/testify/require"
)

func buildROD() *Node {
	return NewRODBuilder().
		SourceID(0x00410001).
		RunNumber(7).
		Data([]uint32{1, 2, 3}).
		Status([]uint32{9}).
		StatusPosition(StatusFront).
		Bind()
}

func TestRODView_WellFormed(t *testing.T) {
	head := buildROD()
	words := flattenWords(head)

	rod := NewRODView(words)
	require.Equal(t, format.RODMarker, rod.Marker())
	require.Equal(t, uint32(3), rod.NData())
	require.Equal(t, uint32(1), rod.NStatus())
	require.Equal(t, []uint32{1, 2, 3}, rod.Data())
	require.Equal(t, []uint32{9}, rod.Status())
	require.Empty(t, rod.Problems())
	require.NoError(t, rod.Check(format.MajorCurrent))
}

func TestRODView_TruncatedFragmentTolerated(t *testing.T) {
	head := buildROD()
	words := flattenWords(head)

	truncated := words[:len(words)-2] // drop part of the trailer

	rod := NewRODView(truncated)
	require.Equal(t, uint32(0), rod.NStatus())
	require.Equal(t, uint32(len(truncated))-rodHeaderWords, rod.NData())
	require.Contains(t, rod.Problems(), errs.ProblemWrongRODFragmentSize)
	require.Error(t, rod.Check(format.MajorCurrent))
}

func flattenWords(head *Node) []uint32 {
	var words []uint32
	for n := head; n != nil; n = n.Next {
		words = append(words, n.Words...)
	}
	return words
}
