package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/hep-eformat/eformat/compress"
	"github.com/hep-eformat/eformat/eventstorage"
	"github.com/hep-eformat/eformat/format"
)

var errOutRequired = errors.New("--out is required for a copy")

type copyCommand struct {
	paths []string
	out   string

	runFilter uint
	hasRun    bool

	selection map[int]bool // nil means "all"

	compress    int
	hasCompress bool
	deflate     bool
}

func (c *copyCommand) Run() error {
	if c.out == "" {
		return fmt.Errorf("%w", errOutRequired)
	}

	w, err := c.newWriter()
	if err != nil {
		return err
	}
	defer w.Close()

	total, kept := 0, 0
	for _, path := range c.paths {
		n, k, err := c.copyFrom(w, path)
		if err != nil {
			return fmt.Errorf("copying %s: %w", path, err)
		}
		total += n
		kept += k
	}

	fmt.Printf("copied %d of %d records to %s\n", kept, total, c.out)
	return nil
}

func (c *copyCommand) newWriter() (*eventstorage.Writer, error) {
	dir := filepath.Dir(c.out)
	base := strings.TrimSuffix(filepath.Base(c.out), ".data")
	cb := &eventstorage.SimpleFileNameCallback{BaseName: base}

	opts := []eventstorage.WriterOption{
		eventstorage.WithDirectory(dir),
		eventstorage.WithFileNameCallback(cb),
	}

	switch {
	case c.deflate && c.hasCompress && c.compress > 0:
		opts = append(opts, eventstorage.WithCodec(format.CompressionZlib, compress.NewZlibCodecLevel(c.compress)))
	case c.deflate:
		opts = append(opts, eventstorage.WithCompression(format.CompressionZlib))
	case c.hasCompress:
		opts = append(opts, eventstorage.WithCompression(format.CompressionZstd))
	}

	return eventstorage.NewWriter("daq", 0, "copy", base, 0, "evtcopy", opts...)
}

func (c *copyCommand) copyFrom(w *eventstorage.Writer, path string) (total, kept int, err error) {
	r, err := eventstorage.NewReader(path)
	if err != nil {
		return 0, 0, fmt.Errorf("opening: %w", err)
	}
	defer r.Close()

	if c.hasRun && r.RunNumber() != uint32(c.runFilter) {
		return 0, 0, nil
	}

	index := 0
	for {
		status, data, err := r.GetData(-1, false, nil)
		if status != eventstorage.StatusOK {
			if err != nil && !errors.Is(err, io.EOF) {
				return total, kept, err
			}
			break
		}

		index++
		total++
		if c.selection != nil && !c.selection[index] {
			continue
		}
		if err := w.PutData(data); err != nil {
			return total, kept, fmt.Errorf("writing record %d: %w", index, err)
		}
		kept++
	}

	return total, kept, nil
}
