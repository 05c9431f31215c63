package eventstorage

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

var guidPattern = regexp.MustCompile(`^[0-9A-F]{8}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{12}$`)

func TestNewGUID_MatchesWireFormat(t *testing.T) {
	got := newGUID()
	require.Regexp(t, guidPattern, got)
}

func TestNewGUID_IsRandom(t *testing.T) {
	require.NotEqual(t, newGUID(), newGUID())
}

func TestDeterministicGUID_MatchesWireFormat(t *testing.T) {
	got := deterministicGUID("daq.00012345.physics_Main#1")
	require.Regexp(t, guidPattern, got)
}

func TestDeterministicGUID_IsStable(t *testing.T) {
	a := deterministicGUID("daq.00012345.physics_Main#1")
	b := deterministicGUID("daq.00012345.physics_Main#1")
	require.Equal(t, a, b)
}

func TestDeterministicGUID_DiffersBySeed(t *testing.T) {
	a := deterministicGUID("daq.00012345.physics_Main#1")
	b := deterministicGUID("daq.00012345.physics_Main#2")
	require.NotEqual(t, a, b)
}
