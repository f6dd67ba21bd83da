package binaries

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/files"
	"github.com/rs/zerolog"
)

// ErrArchiveNotFound indicates that an input package does not exist.
var ErrArchiveNotFound = errors.New("package file does not exist")

// Unpacker extracts a package archive into a directory.
type Unpacker interface {
	Unpack(ctx context.Context, archive, dir string) error
}

// PackageSource pairs the ELF files of a binary RPM with the debug
// directories of its debuginfo RPM.
//
// Both packages are unpacked into one temporary directory. They overlay
// without collisions because the binary package installs below
// InstallPrefix and the debuginfo package below DebugPrefix. For a binary at
// <InstallPrefix>/<rel>/<name>, the record's DebugPath is the directory
// <DebugPrefix>/<rel>; it is computed, not checked.
type PackageSource struct {
	RPM           string
	DebugInfoRPM  string
	InstallPrefix string // e.g. usr/lib/impala
	DebugPrefix   string // e.g. usr/lib/debug/usr/lib/impala
	Unpacker      Unpacker
	// TempRoot is where the extraction directory is created; empty means
	// the system temp directory.
	TempRoot string
	Logger   zerolog.Logger
}

// Each implements Source. The extraction directory is removed before Each
// returns, including when unpacking fails or fn returns an error.
func (s *PackageSource) Each(ctx context.Context, fn func(Record) error) error {
	rpm, err := archivePath(s.RPM)
	if err != nil {
		return err
	}
	debugInfoRPM, err := archivePath(s.DebugInfoRPM)
	if err != nil {
		return err
	}

	tmpDir, err := os.MkdirTemp(s.TempRoot, "breakpad-rpm-*")
	if err != nil {
		return fmt.Errorf("failed to create extraction directory: %w", err)
	}
	defer func() {
		if err := os.RemoveAll(tmpDir); err != nil {
			s.Logger.Warn().Err(err).Str("dir", tmpDir).Msg("Failed to remove extraction directory")
		}
	}()

	for _, archive := range []string{rpm, debugInfoRPM} {
		s.Logger.Info().Str("package", archive).Msg("Extracting")
		if err := s.Unpacker.Unpack(ctx, archive, tmpDir); err != nil {
			return fmt.Errorf("failed to extract %s: %w", archive, err)
		}
	}

	binaryBase := filepath.Join(tmpDir, s.InstallPrefix)
	debugBase := filepath.Join(tmpDir, s.DebugPrefix)

	if info, err := os.Stat(binaryBase); err != nil || !info.IsDir() {
		s.Logger.Warn().
			Str("package", rpm).
			Str("install_prefix", s.InstallPrefix).
			Msg("Package has no files under install prefix")
		return nil
	}

	walker, err := files.NewWalker(binaryBase, nil, s.Logger)
	if err != nil {
		return err
	}

	return walker.Walk(func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		relDir, err := filepath.Rel(binaryBase, filepath.Dir(path))
		if err != nil {
			return err
		}
		return fn(Record{
			Path:      path,
			DebugPath: filepath.Join(debugBase, relDir),
		})
	})
}

// archivePath checks that a package exists and returns its absolute path;
// the unpacker runs with the extraction directory as working directory.
func archivePath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return "", fmt.Errorf("%w: %s", ErrArchiveNotFound, path)
	}
	return filepath.Abs(path)
}
