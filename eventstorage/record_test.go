package eventstorage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteRecord_RoundTripsHeader(t *testing.T) {
	var buf bytes.Buffer
	payload := []byte("hello world") // 11 bytes, needs 1 byte of padding

	n, err := writeRecord(&buf, payload)
	require.NoError(t, err)
	require.Equal(t, recordLen(len(payload)), n)
	require.Equal(t, n, buf.Len())

	size, _, err := readRecordHeader(buf.Bytes()[:recordHeaderBytes])
	require.NoError(t, err)
	require.Equal(t, len(payload), size)
}

func TestReadRecordHeader_RejectsBadMarker(t *testing.T) {
	buf := make([]byte, recordHeaderBytes)
	_, _, err := readRecordHeader(buf)
	require.Error(t, err)
}

func TestReadRecordHeader_RejectsShortBuffer(t *testing.T) {
	_, _, err := readRecordHeader(make([]byte, recordHeaderBytes-1))
	require.Error(t, err)
}

func TestPadLen(t *testing.T) {
	require.Equal(t, 0, padLen(0))
	require.Equal(t, 0, padLen(4))
	require.Equal(t, 1, padLen(3))
	require.Equal(t, 3, padLen(1))
}

func TestRecordLen_IncludesHeaderAndPad(t *testing.T) {
	require.Equal(t, recordHeaderBytes+3+1, recordLen(3))
	require.Equal(t, recordHeaderBytes+4+0, recordLen(4))
}
