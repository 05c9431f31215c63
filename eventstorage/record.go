// Package eventstorage serializes an ordered stream of opaque byte records
// into raw-file-name-convention files, with per-file record-count and
// byte-size rollover, and reads them back across a file sequence.
package eventstorage

import (
	"fmt"
	"io"

	"github.com/hep-eformat/eformat/checksum"
	"github.com/hep-eformat/eformat/errs"
	"github.com/hep-eformat/eformat/internal/bufpool"
)

// File-level markers. The "1234" middle bytes follow the fragment codec's
// convention of flagging a byte-swapped buffer at the first read.
const (
	fileMagic       uint32 = 0xfe1234fe
	metadataMarker  uint32 = 0xcd1234cd
	recordMarker    uint32 = 0xab1234ab
	endOfFileMarker uint32 = 0xef1234ef

	fileFormatVersion uint32 = 1

	recordHeaderBytes = 12 // marker, size_bytes, checksum
)

// writeRecord appends a length-prefixed record: {marker, size_bytes,
// crc16ccitt(payload)} followed by payload, padded to the next 4-byte
// boundary. The frame is assembled in a pooled buffer so one write call
// reaches w regardless of payload size, rather than three.
func writeRecord(w io.Writer, payload []byte) (int, error) {
	crc := checksum.CRC16CCITTBytes(payload)
	pad := padLen(len(payload))

	bb := bufpool.GetRecordBuffer()
	defer bufpool.PutRecordBuffer(bb)

	bb.Grow(recordHeaderBytes + len(payload) + pad)

	header := make([]byte, recordHeaderBytes)
	wireOrder.PutUint32(header[0:4], recordMarker)
	wireOrder.PutUint32(header[4:8], uint32(len(payload)))
	wireOrder.PutUint32(header[8:12], uint32(crc))

	bb.MustWrite(header)
	bb.MustWrite(payload)
	if pad > 0 {
		bb.MustWrite(make([]byte, pad))
	}

	n, err := w.Write(bb.Bytes())
	if err != nil {
		return n, fmt.Errorf("eventstorage: writing record: %w", err)
	}

	return n, nil
}

// recordLen returns the total on-disk size (header + payload + pad) of a
// record carrying a payload of payloadBytes.
func recordLen(payloadBytes int) int {
	return recordHeaderBytes + payloadBytes + padLen(payloadBytes)
}

func padLen(n int) int {
	if r := n % 4; r != 0 {
		return 4 - r
	}
	return 0
}

// readRecordHeader parses a record header already read into buf (must be
// recordHeaderBytes long), returning the payload size in bytes.
func readRecordHeader(buf []byte) (size int, crc uint16, err error) {
	if len(buf) < recordHeaderBytes {
		return 0, 0, fmt.Errorf("eventstorage: %w: short record header", errs.ErrWrongFileFormat)
	}
	marker := wireOrder.Uint32(buf[0:4])
	if marker != recordMarker {
		return 0, 0, fmt.Errorf("eventstorage: %w: bad record marker %#x", errs.ErrWrongFileFormat, marker)
	}
	size = int(wireOrder.Uint32(buf[4:8]))
	crc = uint16(wireOrder.Uint32(buf[8:12]))
	return size, crc, nil
}
