package eventstorage

import (
	"github.com/google/uuid"
	"github.com/hep-eformat/eformat/internal/hash"
)

// newGUID returns a fresh random GUID in the wire format's 32-char
// uppercase hex-with-dashes representation.
func newGUID() string {
	return formatGUID(uuid.New())
}

// deterministicGUID derives a reproducible GUID from seed (typically the
// file-name core), so repeated test runs and dry-run tooling can produce
// stable file metadata without needing true randomness.
func deterministicGUID(seed string) string {
	h := hash.ID(seed)
	var bytes [16]byte
	for i := 0; i < 8; i++ {
		bytes[i] = byte(h >> (8 * i))
		bytes[i+8] = byte(h >> (8 * i)) ^ byte(i)
	}
	id, err := uuid.FromBytes(bytes[:])
	if err != nil {
		// uuid.FromBytes only fails on wrong slice length, which bytes[:]
		// never is.
		panic(err)
	}

	return formatGUID(id)
}

func formatGUID(id uuid.UUID) string {
	s := id.String()
	upper := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'a' && c <= 'f' {
			c -= 'a' - 'A'
		}
		upper[i] = c
	}

	return string(upper)
}
