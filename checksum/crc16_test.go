package checksum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCRC16CCITT_EmptyIsInitValue(t *testing.T) {
	require.Equal(t, uint16(0xFFFF), CRC16CCITT(nil))
}

func TestCRC16CCITT_Deterministic(t *testing.T) {
	data := []uint32{0x31323334, 0x35363738} // "1234" "5678"

	a := CRC16CCITT(data)
	b := CRC16CCITT(data)
	require.Equal(t, a, b)
	require.NotEqual(t, uint16(0xFFFF), a)
}

func TestCRC16CCITT_InitResumes(t *testing.T) {
	data := []uint32{0x00000001, 0x00000002, 0x00000003}

	whole := CRC16CCITTInit(0xFFFF, data)

	partial := CRC16CCITTInit(0xFFFF, data[:1])
	resumed := CRC16CCITTInit(partial, data[1:])

	require.Equal(t, whole, resumed)
}

func TestCRC16CCITTBytes_MatchesWordVariant(t *testing.T) {
	words := []uint32{0x31323334, 0x35363738}
	bytes := []byte{0x34, 0x33, 0x32, 0x31, 0x38, 0x37, 0x36, 0x35}

	require.Equal(t, CRC16CCITT(words), CRC16CCITTBytes(bytes))
}

func TestCRC16CCITTBytes_InitResumes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}

	whole := CRC16CCITTBytesInit(0xFFFF, data)

	partial := CRC16CCITTBytesInit(0xFFFF, data[:2])
	resumed := CRC16CCITTBytesInit(partial, data[2:])

	require.Equal(t, whole, resumed)
}
