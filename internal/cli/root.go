package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/binaries"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/config"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/logging"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/manifest"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/runner"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/symbols"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// ErrBinariesFailed is returned when at least one binary could not be dumped.
var ErrBinariesFailed = errors.New("symbol extraction failed")

var errUnexpectedArgs = errors.New("positional arguments are only accepted with -f/--binary_files")

// rootCmd represents the base command when called without any subcommands
var rootCmd = newRootCmd()

// Execute runs the root command and exits non-zero on any error.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfgFile string
		cfg     *config.Config
		tool    string
	)

	cmd := &cobra.Command{
		Use:   "dump-breakpad-symbols -d DEST (-b DIR | -f FILE... | -i | -r RPM -s DEBUGINFO_RPM)",
		Short: "Dump Breakpad symbol files for Impala binaries",
		Long: `dump-breakpad-symbols runs Breakpad's dump_syms on Impala binaries and files
the output as <dest_dir>/<module>/<build_id>/<module>.sym, the layout
minidump_stackwalk expects.

Exactly one input source must be given:
  -b DIR            every ELF object below a build directory
  -f FILE...        the listed binaries
  -i                binary paths read from stdin, one per line
  -r RPM -s RPM     the binaries of an RPM, with the separate debug
                    information of its debuginfo RPM

dump_syms is taken from --dump_syms, or from
$IMPALA_TOOLCHAIN/breakpad-$IMPALA_BREAKPAD_VERSION/bin/dump_syms.

Examples:
  # Dump symbols for a debug build
  dump-breakpad-symbols -d /tmp/syms -b be/build/debug

  # Dump two binaries
  dump-breakpad-symbols -d /tmp/syms -f be/build/latest/service/impalad libfesupport.so

  # Dump a package pair
  dump-breakpad-symbols -d /tmp/syms -r impala.rpm -s impala-debuginfo.rpm
`,
		Args:          cobra.ArbitraryArgs,
		SilenceErrors: true,
		PreRunE: func(cmd *cobra.Command, args []string) error {
			loaded, err := loadConfig(cmd.Flags(), cfgFile, args)
			if err != nil {
				return err
			}
			resolved, err := config.ResolveDumpSyms(loaded)
			if err != nil {
				return err
			}
			cfg, tool = loaded, resolved
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Configuration is valid from here on; failures are not usage errors.
			cmd.SilenceUsage = true
			return runDump(cmd, cfg, tool)
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "YAML config file")
	registerFlags(cmd.Flags())
	cmd.AddCommand(newVersionCmd(), newManifestCmd())
	return cmd
}

// registerFlags defines the dump flags. Flag names double as config keys.
func registerFlags(flags *pflag.FlagSet) {
	flags.StringP("dest_dir", "d", "", "Root of the symbol file layout (required)")
	flags.String("dump_syms", "", "Path to dump_syms (default from $IMPALA_TOOLCHAIN)")
	flags.StringP("build_dir", "b", "", "Dump every ELF object below this directory")
	flags.StringArrayP("binary_files", "f", nil, "Binary to dump; further binaries may follow as arguments")
	flags.BoolP("stdin_files", "i", false, "Read binary paths from stdin, one per line")
	flags.StringP("rpm", "r", "", "RPM holding the binaries (requires --debuginfo_rpm)")
	flags.StringP("debuginfo_rpm", "s", "", "Debuginfo RPM matching --rpm")
	flags.String("install_prefix", config.DefaultInstallPrefix, "Install prefix of the binaries inside the RPM")
	flags.StringArrayP("exclude", "x", nil, "Glob of paths to skip in --build_dir mode (repeatable)")
	flags.String("manifest", "", "Record placed symbol files in this SQLite database")
	flags.String("log_level", "info", "Log level (debug, info, warn, error)")
	flags.BoolP("quiet", "q", false, "Disable the progress display")
}

// loadConfig layers defaults, config file, environment and flags. Positional
// arguments continue the -f list.
func loadConfig(flags *pflag.FlagSet, cfgFile string, args []string) (*config.Config, error) {
	if len(args) > 0 && !flags.Changed("binary_files") {
		return nil, fmt.Errorf("%w: %v", errUnexpectedArgs, args)
	}

	return config.NewLoader(config.LoaderOptions{
		ConfigFile:       cfgFile,
		Flags:            flags,
		ExtraBinaryFiles: args,
	}).Load()
}

func runDump(cmd *cobra.Command, cfg *config.Config, tool string) error {
	logCfg := logging.Config{
		Level:  cfg.LogLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	}
	logger := logging.New(logCfg)

	source, err := binaries.NewSource(cfg, cmd.InOrStdin(), logger)
	if err != nil {
		return err
	}

	r := &runner.Runner{
		Source:   source,
		Dumper:   symbols.NewDumper(tool, cfg.DestDir, logger),
		DestRoot: cfg.DestDir,
		Progress: NewCLIProgressReporter(cfg.Quiet, cmd.ErrOrStderr()),
		Logger:   logging.NewWithComponent(logCfg, "runner"),
	}

	if cfg.Manifest != "" {
		store, err := manifest.Open(cfg.Manifest)
		if err != nil {
			return err
		}
		defer store.Close()
		r.Manifest = store
		logger.Debug().Str("manifest", cfg.Manifest).Str("run_id", store.RunID()).Msg("Recording symbol manifest")
	}

	summary, err := r.Run(cmd.Context())
	if err != nil {
		return err
	}
	if !summary.OK() {
		return fmt.Errorf("%w: %d of %d binaries failed", ErrBinariesFailed, summary.Failed, summary.Processed)
	}
	return nil
}
