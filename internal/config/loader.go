package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Environment variables used to locate dump_syms inside a toolchain.
const (
	EnvToolchain       = "IMPALA_TOOLCHAIN"
	EnvBreakpadVersion = "IMPALA_BREAKPAD_VERSION"
)

// envPrefix is prepended to every other key, e.g. BREAKPAD_DEST_DIR.
const envPrefix = "BREAKPAD"

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from defaults, config file, environment and flags.
	// Priority: defaults → config file → environment variables → flags
	Load() (*Config, error)
}

// LoaderOptions controls where a Loader looks for settings.
type LoaderOptions struct {
	// ConfigFile is an optional YAML file. Empty means no file.
	ConfigFile string
	// Flags are bound to the matching keys; only flags set on the command
	// line override lower layers.
	Flags *pflag.FlagSet
	// ExtraBinaryFiles are appended to binary_files (positional arguments
	// following -f).
	ExtraBinaryFiles []string
}

type loader struct {
	opts LoaderOptions
}

// NewLoader creates a new configuration loader.
func NewLoader(opts LoaderOptions) Loader {
	return &loader{opts: opts}
}

func (l *loader) Load() (*Config, error) {
	v := viper.New()

	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// The toolchain variables keep their historical names.
	v.BindEnv("toolchain", EnvToolchain)
	v.BindEnv("breakpad_version", EnvBreakpadVersion)

	setDefaults(v)

	if l.opts.ConfigFile != "" {
		v.SetConfigFile(l.opts.ConfigFile)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if l.opts.Flags != nil {
		if err := bindFlags(v, l.opts.Flags); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.BinaryFiles = append(cfg.BinaryFiles, l.opts.ExtraBinaryFiles...)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// bindFlags binds every flag whose name is a config key.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) error {
	for _, key := range keys {
		flag := flags.Lookup(key)
		if flag == nil {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", key, err)
		}
	}
	return nil
}

// keys lists every config key; flags share these names.
var keys = []string{
	"dest_dir",
	"dump_syms",
	"toolchain",
	"breakpad_version",
	"build_dir",
	"binary_files",
	"stdin_files",
	"rpm",
	"debuginfo_rpm",
	"install_prefix",
	"exclude",
	"manifest",
	"log_level",
	"quiet",
}

// setDefaults configures viper with default values. Every key gets one so
// that AutomaticEnv can resolve it during Unmarshal.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("dest_dir", defaults.DestDir)
	v.SetDefault("dump_syms", defaults.DumpSyms)
	v.SetDefault("toolchain", defaults.Toolchain)
	v.SetDefault("breakpad_version", defaults.BreakpadVersion)
	v.SetDefault("build_dir", defaults.BuildDir)
	v.SetDefault("binary_files", []string{})
	v.SetDefault("stdin_files", defaults.StdinFiles)
	v.SetDefault("rpm", defaults.RPM)
	v.SetDefault("debuginfo_rpm", defaults.DebugInfoRPM)
	v.SetDefault("install_prefix", defaults.InstallPrefix)
	v.SetDefault("exclude", []string{})
	v.SetDefault("manifest", defaults.Manifest)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("quiet", defaults.Quiet)
}
