package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/hep-eformat/eformat/eventstorage"
)

// errCheckFailed marks that --checkevents found at least one bad record;
// app.go's ExitErrHandler maps it to ExitCodeCheckFailed rather than a
// generic failure code.
var errCheckFailed = errors.New("one or more records failed validation")

type checkCommand struct {
	paths []string
}

func (c *checkCommand) Run() error {
	failed := false

	for _, path := range c.paths {
		if err := c.checkOne(path); err != nil {
			fmt.Printf("%s: %v\n", path, err)
			failed = true
		}
	}

	if failed {
		return errCheckFailed
	}
	return nil
}

func (c *checkCommand) checkOne(path string) error {
	r, err := eventstorage.NewReader(path)
	if err != nil {
		return fmt.Errorf("opening: %w", err)
	}
	defer r.Close()

	count := 0
	for {
		status, _, err := r.GetData(-1, false, nil)
		switch status {
		case eventstorage.StatusOK:
			count++
		case eventstorage.StatusWait:
			fmt.Printf("%s: %d records OK, reached WAIT (file still being written)\n", path, count)
			return nil
		default:
			if err != nil && !errors.Is(err, io.EOF) {
				return fmt.Errorf("record %d: %w", count+1, err)
			}
			fmt.Printf("%s: %d records OK\n", path, count)
			return nil
		}
	}
}
