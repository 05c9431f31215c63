package streamtag

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	tags := []Tag{
		{Name: "Main", Type: PhysicsTag, ObeysLumiblock: true},
		{Name: "Exp", Type: ExpressTag, ObeysLumiblock: false, ROBs: []uint32{0x00710001}},
	}

	szword := SizeWords(tags)
	buf := make([]uint32, szword)

	written, err := Encode(tags, buf)
	require.NoError(t, err)
	require.Equal(t, szword, written)

	decoded, err := Decode(szword, buf)
	require.NoError(t, err)
	require.Equal(t, tags, decoded)
}

func TestEncode_BufferTooSmall(t *testing.T) {
	tags := []Tag{{Name: "Main", Type: PhysicsTag}}

	_, err := Encode(tags, make([]uint32, 1))
	require.Error(t, err)
}

func TestDecode_TolerantToTrailingPadding(t *testing.T) {
	tags := []Tag{{Name: "A", Type: DebugTag}}
	szword := SizeWords(tags)

	// Over-allocate the declared size; Decode must only look at szword words.
	buf := make([]uint32, szword+4)
	_, err := Encode(tags, buf)
	require.NoError(t, err)

	decoded, err := Decode(szword, buf)
	require.NoError(t, err)
	require.Equal(t, tags, decoded)
}

func TestContainsType(t *testing.T) {
	tags := []Tag{
		{Name: "a", Type: PhysicsTag},
		{Name: "b", Type: ExpressTag},
		{Name: "c", Type: PhysicsTag},
	}

	require.Equal(t, uint32(2), ContainsType(tags, PhysicsTag))
	require.Equal(t, uint32(1), ContainsType(tags, ExpressTag))
	require.Equal(t, uint32(0), ContainsType(tags, MonitoringTag))
}

func TestTagType_String(t *testing.T) {
	require.Equal(t, "physics", PhysicsTag.String())
	require.Equal(t, "express", ExpressTag.String())
	require.Equal(t, "unknown", TagType(0).String())
}
