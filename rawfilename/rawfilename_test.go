package rawfilename

import (
	"testing"

	"github.com/hep-eformat/eformat/errs"
	"github.com/stretchr/testify/require"
)

func TestName_FileNameRoundTrip(t *testing.T) {
	n := New("data22", 431894, "physics", "Main", 17, "SFO-1")

	writing := n.FileName(true)
	require.Equal(t, "data22.00431894.physics_Main.daq.RAW.0017._SFO-1.0001.writing", writing)

	n.Extension = ExtensionFinished
	closed := n.FileName(false)
	require.Equal(t, "data22.00431894.physics_Main.daq.RAW.0017._SFO-1.0001.data", closed)
}

func TestName_Advance(t *testing.T) {
	n := New("data22", 1, "physics", "Main", 0, "SFO-1")
	require.Equal(t, uint32(1), n.FileSequenceNumber)
	n.Advance()
	n.Advance()
	require.Equal(t, uint32(3), n.FileSequenceNumber)
	require.Equal(t, "0003", zeroPad(n.FileSequenceNumber, sequenceWidth))
}

func TestParse_RoundTripsFileName(t *testing.T) {
	original := New("data22", 431894, "physics", "Main", 17, "SFO-1")
	original.Extension = ExtensionFinished

	parsed, err := Parse(original.FileName(false))
	require.NoError(t, err)

	require.Equal(t, original.Project, parsed.Project)
	require.Equal(t, original.RunNumber, parsed.RunNumber)
	require.Equal(t, original.StreamType, parsed.StreamType)
	require.Equal(t, original.StreamName, parsed.StreamName)
	require.Equal(t, original.ProductionStep, parsed.ProductionStep)
	require.Equal(t, original.DataType, parsed.DataType)
	require.Equal(t, original.LumiBlockNumber, parsed.LumiBlockNumber)
	require.Equal(t, original.ApplicationName, parsed.ApplicationName)
	require.Equal(t, original.FileSequenceNumber, parsed.FileSequenceNumber)
	require.Equal(t, original.Extension, parsed.Extension)
	require.False(t, parsed.IsOldConvention())
}

func TestParse_OldConventionRunAndSequence(t *testing.T) {
	parsed, err := Parse("data12.0431894.physics_Main.daq.RAW.0017._SFO-1.01.data")
	require.NoError(t, err)
	require.True(t, parsed.IsOldConvention())
	require.Equal(t, uint32(431894), parsed.RunNumber)
	require.Equal(t, uint32(1), parsed.FileSequenceNumber)
}

func TestParse_RejectsWrongFieldCount(t *testing.T) {
	_, err := Parse("not.enough.fields")
	require.ErrorIs(t, err, errs.ErrWrongFileFormat)
}

func TestParse_RejectsMissingApplicationPrefix(t *testing.T) {
	_, err := Parse("data22.00431894.physics_Main.daq.RAW.0017.SFO-1.0001.data")
	require.ErrorIs(t, err, errs.ErrWrongFileFormat)
}

func TestParse_RejectsBadRunNumberWidth(t *testing.T) {
	_, err := Parse("data22.4318.physics_Main.daq.RAW.0017._SFO-1.0001.data")
	require.ErrorIs(t, err, errs.ErrWrongFileFormat)
}

func TestParse_RejectsBadStreamField(t *testing.T) {
	_, err := Parse("data22.00431894.physicsMain.daq.RAW.0017._SFO-1.0001.data")
	require.ErrorIs(t, err, errs.ErrWrongFileFormat)
}

func TestName_CoreName(t *testing.T) {
	n := New("data22", 431894, "physics", "Main", 17, "SFO-1")
	require.Equal(t, "data22.00431894.physics_Main.daq.RAW.0017._SFO-1", n.CoreName())
	require.Equal(t, "physics_Main", n.Stream())
}
