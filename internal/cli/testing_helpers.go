package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/config"
	"github.com/stretchr/testify/require"
)

// fakeDumpSyms is a dump_syms stand-in. It rejects inputs whose name contains
// "README", names modules after the input file and appends a line to
// $FAKE_DUMP_SYMS_LOG for every invocation.
const fakeDumpSyms = `#!/bin/sh
if [ -n "$FAKE_DUMP_SYMS_LOG" ]; then
  echo "$*" >> "$FAKE_DUMP_SYMS_LOG"
fi
case "$1" in
  *README*) echo "$1: not an ELF file" >&2; exit 1 ;;
esac
name=$(basename "$1")
echo "MODULE Linux x86_64 ID$name $name"
echo "PUBLIC 1000 0 main"
`

// writeFakeDumpSyms installs fakeDumpSyms and points its invocation log at a
// file in the test's temp dir. Returns the tool path and the log path.
func writeFakeDumpSyms(t *testing.T) (string, string) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell script tools are not supported on windows")
	}

	dir := t.TempDir()
	tool := filepath.Join(dir, "dump_syms")
	require.NoError(t, os.WriteFile(tool, []byte(fakeDumpSyms), 0755))

	logPath := filepath.Join(dir, "invocations.log")
	t.Setenv("FAKE_DUMP_SYMS_LOG", logPath)
	return tool, logPath
}

// clearToolchainEnv keeps the developer's environment out of config loading.
func clearToolchainEnv(t *testing.T) {
	t.Helper()
	t.Setenv(config.EnvToolchain, "")
	t.Setenv(config.EnvBreakpadVersion, "")
}

// executeCommand runs a fresh root command with the given stdin and args.
func executeCommand(t *testing.T, stdin string, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	cmd := newRootCmd()
	var outBuf, errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err = cmd.ExecuteContext(context.Background())
	return outBuf.String(), errBuf.String(), err
}
