package eventstorage

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStructuredFileNameCallback_AdvancesSequence(t *testing.T) {
	cb := NewStructuredFileNameCallback("daq", 12345, "physics", "Main", 1, "evtcopy")

	first, err := cb.NextFileName(1, true)
	require.NoError(t, err)
	require.Contains(t, first, "._evtcopy.0001.")
	require.Contains(t, first, ".writing")

	second, err := cb.NextFileName(2, false)
	require.NoError(t, err)
	require.Contains(t, second, "._evtcopy.0002.")
	require.Contains(t, second, ".data")
}

func TestStructuredFileNameCallback_CoreName(t *testing.T) {
	cb := NewStructuredFileNameCallback("daq", 12345, "physics", "Main", 1, "evtcopy")
	require.NotEmpty(t, cb.CoreName())
	require.Contains(t, cb.CoreName(), "_evtcopy")
	require.NotContains(t, cb.CoreName(), "writing")
}

func TestSimpleFileNameCallback_FirstFile(t *testing.T) {
	cb := &SimpleFileNameCallback{BaseName: "myfile"}

	writing, err := cb.NextFileName(1, true)
	require.NoError(t, err)
	require.Equal(t, "myfile.writing", writing)

	final, err := cb.NextFileName(1, false)
	require.NoError(t, err)
	require.Equal(t, "myfile.data", final)
}

func TestSimpleFileNameCallback_RejectsRollover(t *testing.T) {
	cb := &SimpleFileNameCallback{BaseName: "myfile"}
	_, err := cb.NextFileName(2, true)
	require.Error(t, err)
}
