// Package binaries enumerates the binaries whose symbols should be dumped.
//
// Every input mode is a Source. Sources stream records through a callback
// so that any temporary resources (such as unpacked RPMs) live exactly as
// long as the consumer's loop and are released before Each returns.
package binaries

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/files"
	"github.com/rs/zerolog"
)

// Record is one unit of work: a binary and, optionally, the location of its
// separate debug information.
type Record struct {
	Path      string
	DebugPath string // empty when the binary carries its own debug info
}

// Source produces records for one input mode.
type Source interface {
	// Each calls fn once per record, in order. It stops at the first error
	// returned by fn or hit while enumerating and returns it. Resources held
	// by the source are released before Each returns, on every path.
	Each(ctx context.Context, fn func(Record) error) error
}

// FileListSource yields one record per explicitly listed path.
type FileListSource struct {
	Paths []string
}

// Each implements Source.
func (s *FileListSource) Each(ctx context.Context, fn func(Record) error) error {
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(Record{Path: path}); err != nil {
			return err
		}
	}
	return nil
}

// ReaderSource yields one record per line read from R, typically stdin.
// Surrounding whitespace is trimmed and blank lines are skipped.
type ReaderSource struct {
	R io.Reader
}

// Each implements Source.
func (s *ReaderSource) Each(ctx context.Context, fn func(Record) error) error {
	scanner := bufio.NewScanner(s.R)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		path := strings.TrimSpace(scanner.Text())
		if path == "" {
			continue
		}
		if err := fn(Record{Path: path}); err != nil {
			return err
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("failed to read file list: %w", err)
	}
	return nil
}

// DirSource yields every ELF object found below a build directory.
type DirSource struct {
	Walker *files.Walker
}

// NewDirSource creates a DirSource scanning root, skipping exclude globs.
// Unreadable directories below root are logged to logger and skipped.
func NewDirSource(root string, exclude []string, logger zerolog.Logger) (*DirSource, error) {
	w, err := files.NewWalker(root, exclude, logger)
	if err != nil {
		return nil, err
	}
	return &DirSource{Walker: w}, nil
}

// Each implements Source.
func (s *DirSource) Each(ctx context.Context, fn func(Record) error) error {
	return s.Walker.Walk(func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		return fn(Record{Path: path})
	})
}
