package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/urfave/cli/v2"
)

const (
	// ExitCodeSuccess is the success exit code.
	ExitCodeSuccess int = iota

	// ExitCodeFlagParseError is returned for a flag parsing error.
	ExitCodeFlagParseError

	// ExitCodeUnknownError is returned for any other fatal error.
	ExitCodeUnknownError

	// ExitCodeCheckFailed is returned by --checkevents when any record
	// fails validation.
	ExitCodeCheckFailed
)

// ErrFlagParse is a flag parsing error.
var ErrFlagParse = errors.New("parsing flags")

// ErrNoInputFiles is returned when no positional input files are given.
var ErrNoInputFiles = errors.New("no input files given")

// parseEventSelection parses the --event flag's "csv|all" syntax into a nil
// set (meaning "all") or an explicit set of event indices (1-based,
// matching the order records appear in the file).
func parseEventSelection(raw string) (map[int]bool, error) {
	if raw == "" || raw == "all" {
		return nil, nil
	}

	set := make(map[int]bool)
	for _, field := range strings.Split(raw, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, fmt.Errorf("%w: bad event index %q", ErrFlagParse, field)
		}
		set[n] = true
	}

	return set, nil
}

func newEvtcopyApp() *cli.App {
	return &cli.App{
		Name:  filepath.Base(os.Args[0]),
		Usage: "list, validate, and filter/copy event-storage files",
		Description: strings.Join([]string{
			"evtcopy reads one or more event-storage files (Section 6 CLI",
			"surface): it can list their records, validate record checksums,",
			"or copy a filtered subset of records to a new output file.",
		}, "\n"),
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "compress",
				Aliases: []string{"c"},
				Usage:   "compress output records; zstd at its default level, or zlib at `LEVEL` (1-9) with --deflate",
			},
			&cli.BoolFlag{
				Name:    "deflate",
				Aliases: []string{"d"},
				Usage:   "compress output records with zlib/deflate (default level unless --compress LEVEL is given)",
			},
			&cli.StringFlag{
				Name:    "event",
				Aliases: []string{"e"},
				Usage:   "comma-separated 1-based event indices to select, or \"all\"",
				Value:   "all",
			},
			&cli.UintFlag{
				Name:    "run",
				Aliases: []string{"r"},
				Usage:   "only include records from files whose header declares this run number",
			},
			&cli.BoolFlag{
				Name:    "listevents",
				Aliases: []string{"l"},
				Usage:   "list each input file's records as a table and exit",
			},
			&cli.BoolFlag{
				Name:    "checkevents",
				Aliases: []string{"t"},
				Usage:   "validate every record's checksum and exit nonzero on any failure",
			},
			&cli.PathFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "output file path for the copy/filter operation",
			},
		},
		ArgsUsage: "FILE...",
		Action: func(c *cli.Context) error {
			paths := c.Args().Slice()
			if len(paths) == 0 {
				return fmt.Errorf("%w", ErrNoInputFiles)
			}

			selection, err := parseEventSelection(c.String("event"))
			if err != nil {
				return err
			}

			switch {
			case c.Bool("listevents"):
				return (&listCommand{paths: paths}).Run()
			case c.Bool("checkevents"):
				return (&checkCommand{paths: paths}).Run()
			default:
				cmd := &copyCommand{
					paths:       paths,
					out:         c.Path("out"),
					runFilter:   c.Uint("run"),
					hasRun:      c.IsSet("run"),
					selection:   selection,
					compress:    c.Int("compress"),
					hasCompress: c.IsSet("compress"),
					deflate:     c.Bool("deflate"),
				}
				return cmd.Run()
			}
		},
		ExitErrHandler: func(c *cli.Context, err error) {
			if err == nil {
				return
			}
			fmt.Fprintf(c.App.ErrWriter, "%s: %v\n", c.App.Name, err)

			if errors.Is(err, ErrFlagParse) || errors.Is(err, ErrNoInputFiles) {
				cli.OsExiter(ExitCodeFlagParseError)
				return
			}
			if errors.Is(err, errCheckFailed) {
				cli.OsExiter(ExitCodeCheckFailed)
				return
			}
			cli.OsExiter(ExitCodeUnknownError)
		},
	}
}
