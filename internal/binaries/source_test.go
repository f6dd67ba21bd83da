package binaries

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var elfHeader = []byte{0x7f, 'E', 'L', 'F', 2, 1, 1, 0}

func collect(t *testing.T, s Source) []Record {
	t.Helper()
	var records []Record
	err := s.Each(context.Background(), func(r Record) error {
		records = append(records, r)
		return nil
	})
	require.NoError(t, err)
	return records
}

func TestFileListSource(t *testing.T) {
	t.Parallel()
	s := &FileListSource{Paths: []string{"be/build/debug/service/impalad", "libfesupport.so"}}

	assert.Equal(t, []Record{
		{Path: "be/build/debug/service/impalad"},
		{Path: "libfesupport.so"},
	}, collect(t, s))
}

func TestFileListSource_StopsOnError(t *testing.T) {
	t.Parallel()
	s := &FileListSource{Paths: []string{"a", "b", "c"}}
	stop := errors.New("stop")

	var seen []string
	err := s.Each(context.Background(), func(r Record) error {
		seen = append(seen, r.Path)
		if r.Path == "b" {
			return stop
		}
		return nil
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, []string{"a", "b"}, seen)
}

func TestFileListSource_CancelledContext(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := (&FileListSource{Paths: []string{"a"}}).Each(ctx, func(Record) error {
		t.Fatal("callback must not run")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestReaderSource(t *testing.T) {
	t.Parallel()
	input := "impalad\r\n\n  catalogd  \nlib/libkudu_client.so.0"
	s := &ReaderSource{R: strings.NewReader(input)}

	assert.Equal(t, []Record{
		{Path: "impalad"},
		{Path: "catalogd"},
		{Path: "lib/libkudu_client.so.0"},
	}, collect(t, s))
}

func TestReaderSource_Empty(t *testing.T) {
	t.Parallel()
	assert.Empty(t, collect(t, &ReaderSource{R: strings.NewReader("")}))
}

func TestDirSource(t *testing.T) {
	t.Parallel()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "service"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "service", "impalad"), elfHeader, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "service", "impalad.cc"), []byte("int main() {}"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "libutil.a"), []byte("!<arch>\n"), 0644))

	s, err := NewDirSource(root, nil, zerolog.Nop())
	require.NoError(t, err)

	assert.Equal(t, []Record{{Path: filepath.Join(root, "service", "impalad")}}, collect(t, s))
}

func TestDirSource_MissingRoot(t *testing.T) {
	t.Parallel()
	root := filepath.Join(t.TempDir(), "no-such-build-dir")

	s, err := NewDirSource(root, nil, zerolog.Nop())
	require.NoError(t, err)

	err = s.Each(context.Background(), func(Record) error { return nil })
	assert.ErrorIs(t, err, os.ErrNotExist)
	assert.Contains(t, err.Error(), "failed to scan "+root)
}

func TestNewSource(t *testing.T) {
	t.Parallel()
	logger := zerolog.Nop()

	base := func() *config.Config {
		cfg := config.Default()
		cfg.DestDir = "/tmp/syms"
		return cfg
	}

	t.Run("binary files", func(t *testing.T) {
		cfg := base()
		cfg.BinaryFiles = []string{"impalad"}
		s, err := NewSource(cfg, nil, logger)
		require.NoError(t, err)
		assert.IsType(t, &FileListSource{}, s)
	})

	t.Run("stdin", func(t *testing.T) {
		cfg := base()
		cfg.StdinFiles = true
		s, err := NewSource(cfg, strings.NewReader("impalad\n"), logger)
		require.NoError(t, err)
		assert.Equal(t, []Record{{Path: "impalad"}}, collect(t, s))
	})

	t.Run("build dir", func(t *testing.T) {
		cfg := base()
		cfg.BuildDir = t.TempDir()
		s, err := NewSource(cfg, nil, logger)
		require.NoError(t, err)
		assert.IsType(t, &DirSource{}, s)
	})

	t.Run("rpm", func(t *testing.T) {
		cfg := base()
		cfg.RPM = "impala.rpm"
		cfg.DebugInfoRPM = "impala-debuginfo.rpm"
		s, err := NewSource(cfg, nil, logger)
		require.NoError(t, err)

		ps, ok := s.(*PackageSource)
		require.True(t, ok)
		assert.Equal(t, "usr/lib/impala", ps.InstallPrefix)
		assert.Equal(t, "usr/lib/debug/usr/lib/impala", ps.DebugPrefix)
		assert.IsType(t, &RPMUnpacker{}, ps.Unpacker)
	})

	t.Run("no mode", func(t *testing.T) {
		_, err := NewSource(base(), nil, logger)
		assert.ErrorIs(t, err, config.ErrInputMode)
	})

	t.Run("two modes", func(t *testing.T) {
		cfg := base()
		cfg.StdinFiles = true
		cfg.BuildDir = "build"
		_, err := NewSource(cfg, nil, logger)
		assert.ErrorIs(t, err, config.ErrInputMode)
	})
}
