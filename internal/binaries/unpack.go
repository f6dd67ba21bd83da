package binaries

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// RPMUnpacker extracts an RPM by piping rpm2cpio into cpio, the same as
// `rpm2cpio <rpm> | cpio -id` run inside the target directory. The two
// processes are connected directly; no shell is involved.
type RPMUnpacker struct {
	RPM2CPIO string // rpm2cpio executable
	CPIO     string // cpio executable
}

// NewRPMUnpacker returns an unpacker that uses the tools found on PATH.
func NewRPMUnpacker() *RPMUnpacker {
	return &RPMUnpacker{
		RPM2CPIO: "rpm2cpio",
		CPIO:     "cpio",
	}
}

// Unpack implements Unpacker.
func (u *RPMUnpacker) Unpack(ctx context.Context, archive, dir string) error {
	convert := exec.CommandContext(ctx, u.RPM2CPIO, archive)
	convert.Dir = dir
	extract := exec.CommandContext(ctx, u.CPIO, "-id")
	extract.Dir = dir

	var convertStderr, extractStderr bytes.Buffer
	convert.Stderr = &convertStderr
	extract.Stderr = &extractStderr

	r, w, err := os.Pipe()
	if err != nil {
		return fmt.Errorf("failed to create pipe: %w", err)
	}
	convert.Stdout = w
	extract.Stdin = r

	if err := extract.Start(); err != nil {
		r.Close()
		w.Close()
		return fmt.Errorf("failed to start %s: %w", u.CPIO, err)
	}
	r.Close()

	if err := convert.Start(); err != nil {
		// Closing the write end lets cpio see EOF and exit.
		w.Close()
		extract.Wait()
		return fmt.Errorf("failed to start %s: %w", u.RPM2CPIO, err)
	}
	w.Close()

	convertErr := convert.Wait()
	extractErr := extract.Wait()

	// An early cpio exit kills rpm2cpio with SIGPIPE; report cpio first.
	if extractErr != nil {
		return commandError(u.CPIO, extractErr, &extractStderr)
	}
	if convertErr != nil {
		return commandError(u.RPM2CPIO, convertErr, &convertStderr)
	}
	return nil
}

func commandError(name string, err error, stderr *bytes.Buffer) error {
	if msg := strings.TrimSpace(stderr.String()); msg != "" {
		return fmt.Errorf("%s: %w: %s", name, err, msg)
	}
	return fmt.Errorf("%s: %w", name, err)
}
