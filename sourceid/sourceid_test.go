package sourceid

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSourceIdentifier_RoundTrip(t *testing.T) {
	for _, code := range []uint32{0x00410001, 0x00000000, 0xff7c00ff, 0x01770002} {
		id := SourceIdentifier(code)
		require.Equal(t, code, id.Code())
	}
}

func TestSourceIdentifier_Components(t *testing.T) {
	id := New(LArEMBarrelASide, 1, 0)
	require.Equal(t, uint32(0x00410001), id.Code())
	require.Equal(t, LArEMBarrelASide, id.SubDetectorID())
	require.Equal(t, uint16(1), id.ModuleID())
	require.Equal(t, uint8(0), id.Optional())
	require.Equal(t, LAr, id.SubDetectorGroup())
}

func TestSourceIdentifier_Human(t *testing.T) {
	id := New(TDAQCTP, 2, 0)
	require.Contains(t, id.Human(), "TDAQ_CTP")
}
