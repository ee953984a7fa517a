package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/nxtcoder17/orderedset/pkg/seedfile"
	"github.com/nxtcoder17/orderedset/pkg/set"
	"github.com/urfave/cli/v3"
	"golang.org/x/term"
)

var Version string

var demoValues = []int64{50, 30, 70, 20, 40, 60, 80, 30, 70, 10}

func main() {
	if Version == "" {
		Version = fmt.Sprintf("nightly | %s", time.Now().Format(time.RFC3339))
	}

	ctx, cf := signal.NotifyContext(context.TODO(), syscall.SIGINT, syscall.SIGTERM)
	defer cf()

	if err := newCommand(os.Stdout).Run(ctx, os.Args); err != nil {
		slog.Error("while running cmd, got", "err", err)
		os.Exit(1)
	}
}

func newCommand(w io.Writer) *cli.Command {
	return &cli.Command{
		Name:        "orderedset",
		Version:     Version,
		Description: "Builds an ordered set of integers and prints it in ascending order",
		Writer:      w,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logs",
			},
		},

		EnableShellCompletion: true,

		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level := slog.LevelInfo
			if c.Bool("debug") {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
			return ctx, nil
		},

		Commands: []*cli.Command{
			{
				Name:    "demo",
				Usage:   "inserts a fixed sequence and prints it",
				Suggest: true,
				Action: func(ctx context.Context, c *cli.Command) error {
					return insertAndPrint(w, demoValues)
				},
			},
			{
				Name:    "insert",
				Usage:   "<int>...",
				Suggest: true,
				Action: func(ctx context.Context, c *cli.Command) error {
					values, err := parseValues(c.Args().Slice())
					if err != nil {
						return err
					}
					return insertAndPrint(w, values)
				},
			},
			{
				Name:    "seed",
				Usage:   "builds the set described by " + seedfile.FileName,
				Suggest: true,
				Flags: []cli.Flag{
					newFileFlag(),
					&cli.BoolFlag{
						Name:  "sync",
						Usage: "rewrite the seed file with sorted, deduplicated values",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					sf, err := loadSeedfile(c.String("file"))
					if err != nil {
						return err
					}
					return seedAndPrint(w, sf, c.Bool("sync"))
				},
			},
			{
				Name:    "remove",
				Usage:   "<int>...",
				Suggest: true,
				Flags: []cli.Flag{
					newFileFlag(),
					&cli.BoolFlag{
						Name:  "sync",
						Usage: "write the remaining values back to the seed file",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					values, err := parseValues(c.Args().Slice())
					if err != nil {
						return err
					}

					sf, err := loadSeedfile(c.String("file"))
					if err != nil {
						return err
					}
					return removeAndPrint(w, sf, values, c.Bool("sync"))
				},
			},
		},

		Suggest: true,
	}
}

func newFileFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "file",
		Aliases: []string{"f"},
		Usage:   "path to " + seedfile.FileName + ", defaults to the nearest one up the directory tree",
	}
}

// loadSeedfile loads file, or the nearest seed file up from the working directory when file is empty.
func loadSeedfile(file string) (*seedfile.Seedfile, error) {
	if file != "" {
		return seedfile.LoadFromFile(file)
	}

	dir, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	fp, err := seedfile.Locate(dir)
	if err != nil {
		return nil, err
	}

	return seedfile.LoadFromFile(fp)
}

func seedAndPrint(w io.Writer, sf *seedfile.Seedfile, sync bool) error {
	s, err := sf.Build()
	if err != nil {
		return err
	}
	defer s.Destroy()

	if sync {
		if err := sf.SyncToDisk(sf.Path(), s); err != nil {
			return err
		}
	}

	return printSet(w, s, isTerminal(w))
}

func removeAndPrint(w io.Writer, sf *seedfile.Seedfile, values []int64, sync bool) error {
	s, err := sf.Build()
	if err != nil {
		return err
	}
	defer s.Destroy()

	for _, v := range values {
		if !s.Remove(v) {
			slog.Warn("value not in set", "value", v)
		}
	}

	if sync {
		if err := sf.SyncToDisk(sf.Path(), s); err != nil {
			return err
		}
	}

	return printSet(w, s, isTerminal(w))
}

func parseValues(args []string) ([]int64, error) {
	values := make([]int64, 0, len(args))
	for _, arg := range args {
		v, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid value %q: %w", arg, err)
		}
		values = append(values, v)
	}
	return values, nil
}

func insertAndPrint(w io.Writer, values []int64) error {
	s, err := set.NewIntSet()
	if err != nil {
		return err
	}
	defer s.Destroy()

	for _, v := range values {
		if err := s.Add(v); err != nil {
			return fmt.Errorf("failed to insert %d: %w", v, err)
		}
	}

	return printSet(w, s, isTerminal(w))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printSet writes one value per line, or a single space separated line when inline is set.
func printSet(w io.Writer, s *set.IntSet, inline bool) error {
	if !inline {
		for v := range s.All() {
			if _, err := fmt.Fprintln(w, v); err != nil {
				return err
			}
		}
		return nil
	}

	if s.Len() == 0 {
		return nil
	}
	_, err := fmt.Fprintln(w, strings.Trim(fmt.Sprint(s.ToSortedList()), "[]"))
	return err
}
