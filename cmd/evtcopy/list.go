package main

import (
	"fmt"

	"github.com/rodaine/table"

	"github.com/hep-eformat/eformat/eventstorage"
)

type listCommand struct {
	paths []string
}

func (l *listCommand) Run() error {
	for _, path := range l.paths {
		if err := l.listOne(path); err != nil {
			return err
		}
	}
	return nil
}

func (l *listCommand) listOne(path string) error {
	r, err := eventstorage.NewReader(path)
	if err != nil {
		return fmt.Errorf("opening %s: %w", path, err)
	}
	defer r.Close()

	fmt.Printf("%s  run=%d  stream=%s  guid=%s\n", path, r.RunNumber(), r.Stream(), r.GUID())

	tbl := table.New("event", "position", "bytes")
	index := 0
	for {
		pos := r.GetPosition()
		status, data, _ := r.GetData(-1, false, nil)
		if status != eventstorage.StatusOK {
			break
		}
		index++
		tbl.AddRow(index, pos, len(data))
	}
	tbl.Print()

	return nil
}
