package eventstorage

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// DataSource is the small capability interface a byte-source plug-in must
// implement. The reader only ever talks to files through this interface,
// so a network-attached source (rfio:, dcap:) can be dropped in without
// touching reader logic.
type DataSource interface {
	Open(name string) error
	Close() error
	IsOpen() bool
	IsEOF() bool
	ReadBytes(n int) ([]byte, error)
	Tell() (int64, error)
	SeekAbs(offset int64) error
	SeekFromEnd(offset int64) error
	FileExists(name string) bool
	Clone() DataSource
}

// localFileSource is the only byte-source plug-in implemented in-tree; it
// reads directly from the local filesystem.
type localFileSource struct {
	f   *os.File
	eof bool
}

func (s *localFileSource) Open(name string) error {
	f, err := os.Open(name)
	if err != nil {
		return fmt.Errorf("eventstorage: opening %s: %w", name, err)
	}
	s.f = f
	s.eof = false
	return nil
}

func (s *localFileSource) Close() error {
	if s.f == nil {
		return nil
	}
	err := s.f.Close()
	s.f = nil
	return err
}

func (s *localFileSource) IsOpen() bool { return s.f != nil }
func (s *localFileSource) IsEOF() bool  { return s.eof }

func (s *localFileSource) ReadBytes(n int) ([]byte, error) {
	buf := make([]byte, n)
	read, err := io.ReadFull(s.f, buf)
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		s.eof = true
	}
	return buf[:read], err
}

func (s *localFileSource) Tell() (int64, error) {
	return s.f.Seek(0, io.SeekCurrent)
}

func (s *localFileSource) SeekAbs(offset int64) error {
	_, err := s.f.Seek(offset, io.SeekStart)
	if err == nil {
		s.eof = false
	}
	return err
}

func (s *localFileSource) SeekFromEnd(offset int64) error {
	_, err := s.f.Seek(offset, io.SeekEnd)
	if err == nil {
		s.eof = false
	}
	return err
}

func (s *localFileSource) FileExists(name string) bool {
	_, err := os.Stat(name)
	return err == nil
}

func (s *localFileSource) Clone() DataSource {
	return &localFileSource{}
}

// unavailableSource is registered for schemes the in-tree build does not
// implement (rfio:, dcap:). Its presence in the scheme registry lets
// PickDataReader report a specific "plug-in not available" error rather
// than an unrecognized-scheme one.
type unavailableSource struct{ scheme string }

func (u *unavailableSource) Open(string) error {
	return fmt.Errorf("eventstorage: %s plug-in not available in this build", u.scheme)
}
func (u *unavailableSource) Close() error              { return nil }
func (u *unavailableSource) IsOpen() bool              { return false }
func (u *unavailableSource) IsEOF() bool               { return true }
func (u *unavailableSource) ReadBytes(int) ([]byte, error) {
	return nil, fmt.Errorf("eventstorage: %s plug-in not available in this build", u.scheme)
}
func (u *unavailableSource) Tell() (int64, error)        { return 0, nil }
func (u *unavailableSource) SeekAbs(int64) error         { return nil }
func (u *unavailableSource) SeekFromEnd(int64) error     { return nil }
func (u *unavailableSource) FileExists(string) bool      { return false }
func (u *unavailableSource) Clone() DataSource           { return &unavailableSource{scheme: u.scheme} }

var schemeFactories = map[string]func() DataSource{
	"rfio":  func() DataSource { return &unavailableSource{scheme: "rfio"} },
	"dcap":  func() DataSource { return &unavailableSource{scheme: "dcap"} },
}

// PickDataReader inspects fileName's URL-style prefix and returns the
// matching byte-source plug-in, defaulting to the local filesystem when no
// recognized scheme prefix is present.
func PickDataReader(fileName string) (DataSource, string) {
	if scheme, rest, ok := strings.Cut(fileName, ":"); ok {
		if factory, known := schemeFactories[scheme]; known {
			return factory(), rest
		}
	}

	return &localFileSource{}, fileName
}
