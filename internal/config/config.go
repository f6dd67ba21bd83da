// Package config provides configuration loading for the symbol dumper.
//
// Settings are resolved once at startup into a Config value that is passed
// down explicitly; no other package reads the environment.
//
// Configuration Hierarchy (highest to lowest priority):
//  1. Command line flags
//  2. Environment variables (BREAKPAD_*, plus IMPALA_TOOLCHAIN and
//     IMPALA_BREAKPAD_VERSION for locating dump_syms)
//  3. Config file (--config, YAML)
//  4. Built-in defaults
package config

import "path/filepath"

// DefaultInstallPrefix is where the binary RPM installs its ELF files.
const DefaultInstallPrefix = "usr/lib/impala"

// debugRoot is the prefix under which debuginfo RPMs mirror the install tree.
const debugRoot = "usr/lib/debug"

// Config represents the complete dumper configuration.
type Config struct {
	DestDir  string `yaml:"dest_dir" mapstructure:"dest_dir"`   // root of the symbol layout
	DumpSyms string `yaml:"dump_syms" mapstructure:"dump_syms"` // explicit dump_syms path

	Toolchain       string `yaml:"toolchain" mapstructure:"toolchain"`               // IMPALA_TOOLCHAIN
	BreakpadVersion string `yaml:"breakpad_version" mapstructure:"breakpad_version"` // IMPALA_BREAKPAD_VERSION

	// Input selection; exactly one mode must be set.
	BuildDir     string   `yaml:"build_dir" mapstructure:"build_dir"`
	BinaryFiles  []string `yaml:"binary_files" mapstructure:"binary_files"`
	StdinFiles   bool     `yaml:"stdin_files" mapstructure:"stdin_files"`
	RPM          string   `yaml:"rpm" mapstructure:"rpm"`
	DebugInfoRPM string   `yaml:"debuginfo_rpm" mapstructure:"debuginfo_rpm"`

	InstallPrefix string   `yaml:"install_prefix" mapstructure:"install_prefix"` // RPM install subpath
	Exclude       []string `yaml:"exclude" mapstructure:"exclude"`               // globs skipped in build_dir scans

	Manifest string `yaml:"manifest" mapstructure:"manifest"`   // optional SQLite manifest path
	LogLevel string `yaml:"log_level" mapstructure:"log_level"` // debug, info, warn, error
	Quiet    bool   `yaml:"quiet" mapstructure:"quiet"`         // disable progress output
}

// InputMode identifies how binaries are located.
type InputMode string

const (
	ModeNone        InputMode = ""
	ModeBuildDir    InputMode = "build_dir"
	ModeBinaryFiles InputMode = "binary_files"
	ModeStdin       InputMode = "stdin_files"
	ModeRPM         InputMode = "rpm"
)

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		InstallPrefix: DefaultInstallPrefix,
		LogLevel:      "info",
	}
}

// InputModes returns every input mode selected in the configuration.
// A valid configuration selects exactly one.
func (c *Config) InputModes() []InputMode {
	var modes []InputMode
	if c.BuildDir != "" {
		modes = append(modes, ModeBuildDir)
	}
	if len(c.BinaryFiles) > 0 {
		modes = append(modes, ModeBinaryFiles)
	}
	if c.StdinFiles {
		modes = append(modes, ModeStdin)
	}
	if c.RPM != "" {
		modes = append(modes, ModeRPM)
	}
	return modes
}

// InputMode returns the single selected input mode, or ModeNone when the
// selection is empty or ambiguous.
func (c *Config) InputMode() InputMode {
	modes := c.InputModes()
	if len(modes) != 1 {
		return ModeNone
	}
	return modes[0]
}

// DebugPrefix returns the subpath of the debuginfo RPM that mirrors
// InstallPrefix, e.g. usr/lib/debug/usr/lib/impala.
func (c *Config) DebugPrefix() string {
	return filepath.Join(debugRoot, c.InstallPrefix)
}
