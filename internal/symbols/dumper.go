// Package symbols runs Breakpad's dump_syms on single binaries and files the
// output into a <module>/<build_id>/<module>.sym layout.
package symbols

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/binaries"
	"github.com/rs/zerolog"
)

// ErrToolFailed indicates that dump_syms exited with a non-zero status.
var ErrToolFailed = errors.New("dump_syms failed")

// Result describes a symbol file placed in the destination layout.
type Result struct {
	Header Header
	Path   string // location of the .sym file, joined onto the destination root
}

// IsExtractionFailure reports whether err is a per-binary failure (the tool
// rejected the binary or produced unusable output) as opposed to an error
// that should abort the whole run.
func IsExtractionFailure(err error) bool {
	return errors.Is(err, ErrToolFailed) || errors.Is(err, ErrMalformedHeader)
}

// Dumper extracts symbols from one binary at a time.
type Dumper struct {
	tool     string
	destRoot string
	logger   zerolog.Logger
}

// NewDumper creates a dumper that runs tool and files output below destRoot.
func NewDumper(tool, destRoot string, logger zerolog.Logger) *Dumper {
	return &Dumper{
		tool:     tool,
		destRoot: destRoot,
		logger:   logger.With().Str("component", "dumper").Logger(),
	}
}

// Dump runs dump_syms on rec and moves its output into place.
//
// Process:
// 1. Ensure the destination root exists
// 2. Create a temporary .sym file inside it
// 3. Run dump_syms <binary> [<debug path>] with stdout in the temp file
// 4. On non-zero exit, log stderr and fail with ErrToolFailed
// 5. Parse the first output line as the MODULE header
// 6. Rename the temp file to <root>/<module>/<build_id>/<module>.sym
//
// The temporary file never outlives the call unless it was renamed into place.
// No timeout is applied; only ctx cancellation stops a running dump_syms.
func (d *Dumper) Dump(ctx context.Context, rec binaries.Record) (*Result, error) {
	d.logger.Info().Str("binary", rec.Path).Msg("Processing binary file")

	if err := EnsureDir(d.destRoot); err != nil {
		return nil, err
	}

	tmp, err := os.CreateTemp(d.destRoot, "tmp*.sym")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			tmp.Close()
			os.Remove(tmpPath)
		}
	}()

	if err := tmp.Chmod(0644); err != nil {
		return nil, fmt.Errorf("failed to set temp file mode: %w", err)
	}

	if err := d.run(ctx, rec, tmp); err != nil {
		return nil, err
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to write symbols for %s: %w", rec.Path, err)
	}

	header, err := readHeader(tmpPath)
	if err != nil {
		d.logger.Error().Err(err).Str("binary", rec.Path).Msg("Unusable dump_syms output")
		return nil, fmt.Errorf("%s: %w", rec.Path, err)
	}

	outPath := filepath.Join(d.destRoot, header.RelPath())
	if err := EnsureDir(filepath.Dir(outPath)); err != nil {
		return nil, err
	}

	if err := os.Rename(tmpPath, outPath); err != nil {
		return nil, fmt.Errorf("failed to move symbols into place: %w", err)
	}
	committed = true

	d.logger.Debug().
		Str("binary", rec.Path).
		Str("header", header.String()).
		Str("path", outPath).
		Msg("Symbols written")

	return &Result{Header: header, Path: outPath}, nil
}

// run executes dump_syms with stdout redirected to out.
func (d *Dumper) run(ctx context.Context, rec binaries.Record, out io.Writer) error {
	args := []string{rec.Path}
	if rec.DebugPath != "" {
		args = append(args, rec.DebugPath)
	}

	cmd := exec.CommandContext(ctx, d.tool, args...)
	var stderr bytes.Buffer
	cmd.Stdout = out
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("dump_syms interrupted: %w", ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		d.logger.Error().
			Str("binary", rec.Path).
			Int("exit_code", exitErr.ExitCode()).
			Str("stderr", strings.TrimSpace(stderr.String())).
			Msg("Failed to dump symbols")
		return fmt.Errorf("%w: %s: return code %d", ErrToolFailed, rec.Path, exitErr.ExitCode())
	}

	return fmt.Errorf("failed to run %s: %w", d.tool, err)
}

// readHeader reads and parses only the first line of a symbol file.
func readHeader(path string) (Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return Header{}, fmt.Errorf("failed to open symbol output: %w", err)
	}
	defer f.Close()

	line, err := bufio.NewReader(f).ReadString('\n')
	if err != nil && err != io.EOF {
		return Header{}, fmt.Errorf("failed to read symbol output: %w", err)
	}
	return ParseHeader(line)
}
