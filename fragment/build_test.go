package fragment

import (
	"testing"

	"github.com/hep-eformat/eformat/checksum"
	"github.com/hep-eformat/eformat/format"
	"github.com/stretchr/testify/require"
)

func TestCountAndCopy(t *testing.T) {
	head := &Node{Words: []uint32{1, 2}}
	head = appendNode(head, &Node{Words: []uint32{3}})

	require.Equal(t, 2, Count(head))
	require.Equal(t, uint32(3), CountWords(head))

	buf := make([]byte, 12)
	n := Copy(head, buf)
	require.Equal(t, 12, n)

	require.Equal(t, 0, Copy(head, make([]byte, 4)))
}

func TestShallowCopy_SkipsEmptyNodes(t *testing.T) {
	head := &Node{Words: []uint32{7}}
	head = appendNode(head, &Node{Words: nil})
	head = appendNode(head, &Node{Words: []uint32{8}})

	iov := ShallowCopy(head)
	require.Len(t, iov, 2)
}

func TestChecksum_MatchesDirectComputation(t *testing.T) {
	words := []uint32{1, 2, 3, 4}
	head := &Node{Words: words}

	got, err := Checksum(format.Adler32, head)
	require.NoError(t, err)
	require.Equal(t, checksum.Adler32(words), got)

	got, err = Checksum(format.CRC16CCITT, head)
	require.NoError(t, err)
	require.Equal(t, uint32(checksum.CRC16CCITT(words)), got)

	got, err = Checksum(format.NoChecksum, head)
	require.NoError(t, err)
	require.Equal(t, uint32(0), got)
}
