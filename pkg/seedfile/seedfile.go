package seedfile

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/nxtcoder17/orderedset/pkg/set"
	"gopkg.in/yaml.v3"
)

const FileName = "orderedset.yml"

type AllocatorKind string

const (
	HeapAllocator     AllocatorKind = "heap"
	FreeListAllocator AllocatorKind = "freelist"
	LimitedAllocator  AllocatorKind = "limited"
)

func (k AllocatorKind) String() string {
	return string(k)
}

type Allocator struct {
	Kind         AllocatorKind `yaml:"kind,omitempty"`
	FreeListSize int           `yaml:"freelistSize,omitempty"`

	// Limit is the number of live allocations, the set itself included. Only used by the limited allocator.
	Limit int `yaml:"limit,omitempty"`
}

type Seedfile struct {
	Values    []int64   `yaml:"values"`
	Allocator Allocator `yaml:"allocator,omitempty"`

	// AUTO FILLED
	path string        `yaml:"-"`
	kind AllocatorKind `yaml:"-"`
}

func (sf *Seedfile) Path() string {
	return sf.path
}

// Kind is the allocator kind in effect, after the environment override and
// the heap default. Allocator.Kind keeps what the file itself says.
func (sf *Seedfile) Kind() AllocatorKind {
	switch {
	case sf.kind != "":
		return sf.kind
	case sf.Allocator.Kind != "":
		return sf.Allocator.Kind
	default:
		return HeapAllocator
	}
}

func LoadFromFile(file string) (*Seedfile, error) {
	b, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file (%s): %w", file, err)
	}

	var sf Seedfile
	if err := yaml.Unmarshal(b, &sf); err != nil {
		return nil, fmt.Errorf("failed to parse seed file (%s): %w", file, err)
	}
	sf.path = file

	if v, ok := os.LookupEnv("ORDEREDSET_ALLOCATOR"); ok && strings.TrimSpace(v) != "" {
		sf.kind = AllocatorKind(strings.ToLower(strings.TrimSpace(v)))
	}

	switch sf.Kind() {
	case HeapAllocator, FreeListAllocator:
	case LimitedAllocator:
		if sf.Allocator.Limit <= 0 {
			return nil, fmt.Errorf("seed file (%s): limited allocator requires a positive allocator.limit", file)
		}
	default:
		return nil, fmt.Errorf("seed file (%s): unknown allocator kind %q", file, sf.Kind())
	}

	slog.Debug("loaded seed file", "file", file, "values", len(sf.Values), "allocator", sf.Kind())
	return &sf, nil
}

// Locate walks up from dir until it finds a seed file.
func Locate(dir string) (string, error) {
	oldDir := ""
	for oldDir != dir {
		fp := filepath.Join(dir, FileName)
		if _, err := os.Stat(fp); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return "", err
			}
			oldDir = dir
			dir = filepath.Dir(dir)
			continue
		}

		return fp, nil
	}

	return "", fmt.Errorf("failed to locate your nearest %s", FileName)
}

func (sf *Seedfile) newAllocator() set.Allocator[int64] {
	switch sf.Kind() {
	case FreeListAllocator:
		size := sf.Allocator.FreeListSize
		if size <= 0 {
			size = 32
		}
		return set.NewFreeList[int64](size)
	case LimitedAllocator:
		return set.NewLimitedAllocator[int64](sf.Allocator.Limit, nil)
	default:
		return set.HeapAllocator[int64]{}
	}
}

// Build creates a set holding every value of the seed file.
func (sf *Seedfile) Build() (*set.IntSet, error) {
	s, err := set.NewIntSet(set.WithAllocator(sf.newAllocator()))
	if err != nil {
		return nil, fmt.Errorf("failed to create set: %w", err)
	}

	for _, v := range sf.Values {
		added, err := s.Insert(v)
		if err != nil {
			s.Destroy()
			return nil, fmt.Errorf("failed to insert %d: %w", v, err)
		}
		if !added {
			slog.Debug("skipped duplicate value", "value", v)
		}
	}

	return s, nil
}

// SyncToDisk writes the seed file back with values taken from s, which are
// therefore sorted and free of duplicates. The allocator section is written
// as it was read, without the environment override.
func (sf *Seedfile) SyncToDisk(file string, s *set.IntSet) error {
	if file == "" {
		return fmt.Errorf("required param `file` not provided")
	}

	sf.Values = s.ToSortedList()

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(sf); err != nil {
		return fmt.Errorf("failed to encode seed file (%s): %w", file, err)
	}
	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to encode seed file (%s): %w", file, err)
	}

	if err := os.WriteFile(file, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("failed to write seed file (%s): %w", file, err)
	}
	return nil
}
