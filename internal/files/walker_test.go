package files

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "impalad"), elfHeader)
	writeFile(t, filepath.Join(root, "service", "libservice.so"), elfHeader)
	writeFile(t, filepath.Join(root, "service", "CMakeFiles", "x.o"), elfHeader)
	writeFile(t, filepath.Join(root, "service", "README"), []byte("docs"))
	writeFile(t, filepath.Join(root, "util", "util.o"), elfHeader)
	require.NoError(t, os.Symlink(filepath.Join(root, "impalad"), filepath.Join(root, "impalad-link")))
	return root
}

// collectWalk returns every path the walker yields.
func collectWalk(t *testing.T, w *Walker) []string {
	t.Helper()
	var found []string
	err := w.Walk(func(path string) error {
		found = append(found, path)
		return nil
	})
	require.NoError(t, err)
	return found
}

func TestWalker_FindsELFObjects(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	w, err := NewWalker(root, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "impalad"),
		filepath.Join(root, "service", "CMakeFiles", "x.o"),
		filepath.Join(root, "service", "libservice.so"),
		filepath.Join(root, "util", "util.o"),
	}, collectWalk(t, w))
}

func TestWalker_ExcludePatterns(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	w, err := NewWalker(root, []string{"**/CMakeFiles/**", "**/*.o"}, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "impalad"),
		filepath.Join(root, "service", "libservice.so"),
	}, collectWalk(t, w))
}

func TestWalker_ExcludeRootLevelDirectory(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	w, err := NewWalker(root, []string{"**/util/**"}, zerolog.Nop())
	require.NoError(t, err)

	found := collectWalk(t, w)
	assert.NotContains(t, found, filepath.Join(root, "util", "util.o"))
	assert.Len(t, found, 3)
}

func TestWalker_ExcludeRootLevelFile(t *testing.T) {
	t.Parallel()
	root := newTree(t)

	w, err := NewWalker(root, []string{"**/impalad"}, zerolog.Nop())
	require.NoError(t, err)

	found := collectWalk(t, w)
	assert.NotContains(t, found, filepath.Join(root, "impalad"))
	assert.Len(t, found, 3)
}

func TestWalker_CallbackErrorStopsWalk(t *testing.T) {
	t.Parallel()
	root := newTree(t)
	w, err := NewWalker(root, nil, zerolog.Nop())
	require.NoError(t, err)

	stop := errors.New("stop")
	calls := 0
	err = w.Walk(func(path string) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestWalker_MissingRoot(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "missing")
	w, err := NewWalker(root, nil, zerolog.Nop())
	require.NoError(t, err)

	err = w.Walk(func(string) error { return nil })
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to scan "+root)
}

func TestWalker_SkipsUnreadableDirectory(t *testing.T) {
	t.Parallel()
	if os.Geteuid() == 0 {
		t.Skip("directory permissions are not enforced for root")
	}
	root := newTree(t)
	locked := filepath.Join(root, "service")
	require.NoError(t, os.Chmod(locked, 0))
	t.Cleanup(func() { os.Chmod(locked, 0755) })

	var logs strings.Builder
	w, err := NewWalker(root, nil, zerolog.New(&logs))
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(root, "impalad"),
		filepath.Join(root, "util", "util.o"),
	}, collectWalk(t, w))
	assert.Contains(t, logs.String(), "Skipping unreadable path")
}
