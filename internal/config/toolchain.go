package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ResolveDumpSyms returns the path of the dump_syms executable.
//
// An explicit DumpSyms setting wins. Otherwise the path is composed as
// <Toolchain>/breakpad-<BreakpadVersion>/bin/dump_syms. Either way the
// result must name an existing file.
func ResolveDumpSyms(cfg *Config) (string, error) {
	if cfg.DumpSyms != "" {
		if !isFile(cfg.DumpSyms) {
			return "", fmt.Errorf("%w: %s", ErrDumpSymsNotFound, cfg.DumpSyms)
		}
		return cfg.DumpSyms, nil
	}

	if strings.TrimSpace(cfg.Toolchain) == "" {
		return "", fmt.Errorf("%w: set IMPALA_TOOLCHAIN or pass --dump_syms", ErrToolchainNotFound)
	}
	if info, err := os.Stat(cfg.Toolchain); err != nil || !info.IsDir() {
		return "", fmt.Errorf("%w: %s", ErrToolchainNotFound, cfg.Toolchain)
	}

	if strings.TrimSpace(cfg.BreakpadVersion) == "" {
		return "", fmt.Errorf("%w: set IMPALA_BREAKPAD_VERSION", ErrMissingBreakpadVersion)
	}

	dumpSyms := ToolchainDumpSymsPath(cfg.Toolchain, cfg.BreakpadVersion)
	if !isFile(dumpSyms) {
		return "", fmt.Errorf("%w: %s", ErrDumpSymsNotFound, dumpSyms)
	}
	return dumpSyms, nil
}

// ToolchainDumpSymsPath composes the dump_syms location inside a toolchain.
func ToolchainDumpSymsPath(toolchain, version string) string {
	return filepath.Join(toolchain, "breakpad-"+version, "bin", "dump_syms")
}

// isFile follows symlinks, unlike files.IsRegularFile: toolchains commonly
// link their binaries.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
