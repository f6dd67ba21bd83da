package symbols

import (
	"errors"
	"fmt"
	"os"
)

// ErrNotDirectory indicates that a path to be used as a directory is
// occupied by something else.
var ErrNotDirectory = errors.New("path exists and is not a directory")

// EnsureDir creates path and any missing parents. A directory that already
// exists, including one created concurrently by another process, counts as
// success; any other occupant of the path is an error.
func EnsureDir(path string) error {
	err := os.MkdirAll(path, 0755)
	if err == nil {
		return nil
	}

	info, statErr := os.Stat(path)
	if statErr == nil {
		if info.IsDir() {
			return nil
		}
		return fmt.Errorf("%w: %s", ErrNotDirectory, path)
	}
	return fmt.Errorf("failed to create directory %s: %w", path, err)
}
