package eventstorage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPickDataReader_DefaultsToLocalFilesystem(t *testing.T) {
	source, path := PickDataReader("/tmp/some.data")
	require.IsType(t, &localFileSource{}, source)
	require.Equal(t, "/tmp/some.data", path)
}

func TestPickDataReader_UnavailableScheme(t *testing.T) {
	source, path := PickDataReader("rfio:/castor/some.data")
	require.IsType(t, &unavailableSource{}, source)
	require.Equal(t, "/castor/some.data", path)
	require.Error(t, source.Open(path))
}

func TestLocalFileSource_ReadsAndSeeks(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "sample.bin")
	require.NoError(t, os.WriteFile(path, []byte("0123456789"), 0o644))

	var src localFileSource
	require.NoError(t, src.Open(path))
	defer src.Close()

	require.True(t, src.IsOpen())

	first, err := src.ReadBytes(4)
	require.NoError(t, err)
	require.Equal(t, []byte("0123"), first)

	pos, err := src.Tell()
	require.NoError(t, err)
	require.Equal(t, int64(4), pos)

	require.NoError(t, src.SeekAbs(8))
	rest, err := src.ReadBytes(2)
	require.NoError(t, err)
	require.Equal(t, []byte("89"), rest)

	require.NoError(t, src.SeekFromEnd(-3))
	tail, err := src.ReadBytes(3)
	require.NoError(t, err)
	require.Equal(t, []byte("789"), tail)
}

func TestLocalFileSource_ReadBytesPastEOF(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.bin")
	require.NoError(t, os.WriteFile(path, []byte("ab"), 0o644))

	var src localFileSource
	require.NoError(t, src.Open(path))
	defer src.Close()

	_, err := src.ReadBytes(10)
	require.Error(t, err)
	require.True(t, src.IsEOF())
}

func TestLocalFileSource_FileExists(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "present.bin")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0o644))

	var src localFileSource
	require.True(t, src.FileExists(path))
	require.False(t, src.FileExists(filepath.Join(dir, "absent.bin")))
}
