package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/manifest"
	"github.com/spf13/cobra"
)

// ErrNoSymbols is returned by lookup when the manifest has no matching entry.
var ErrNoSymbols = errors.New("no symbols recorded")

// newManifestCmd creates the command group for reading a symbol manifest
// written with --manifest.
func newManifestCmd() *cobra.Command {
	var manifestPath string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Inspect a symbol manifest",
		Long: `Read the SQLite manifest written by a dump run with --manifest.

Examples:
  # Everything recorded, ordered by module and build id
  dump-breakpad-symbols manifest list --manifest /tmp/syms.db

  # Only impalad
  dump-breakpad-symbols manifest list impalad --manifest /tmp/syms.db

  # Where are the symbols for one build?
  dump-breakpad-symbols manifest lookup impalad 5FBA0A3C25A4B9C40D6D7D0E3B5A51BE0 --manifest /tmp/syms.db
`,
	}
	cmd.PersistentFlags().StringVar(&manifestPath, "manifest", "", "Path of the SQLite manifest (required)")
	_ = cmd.MarkPersistentFlagRequired("manifest")

	listCmd := &cobra.Command{
		Use:   "list [MODULE]",
		Short: "List recorded symbol files",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			module := ""
			if len(args) == 1 {
				module = args[0]
			}
			return runManifestList(cmd, manifestPath, module)
		},
	}

	lookupCmd := &cobra.Command{
		Use:   "lookup MODULE BUILD_ID",
		Short: "Show the symbol file recorded for a module and build id",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmd.SilenceUsage = true
			return runManifestLookup(cmd, manifestPath, args[0], args[1])
		},
	}

	cmd.AddCommand(listCmd, lookupCmd)
	return cmd
}

func runManifestList(cmd *cobra.Command, path, module string) error {
	store, err := manifest.OpenReadOnly(path)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(module)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "MODULE\tBUILD ID\tOS\tARCH\tSYMBOLS")
	for _, e := range entries {
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", e.Module, e.BuildID, e.OS, e.Arch, e.SymPath)
	}
	return w.Flush()
}

func runManifestLookup(cmd *cobra.Command, path, module, buildID string) error {
	store, err := manifest.OpenReadOnly(path)
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := store.Lookup(module, buildID)
	if err != nil {
		return err
	}
	if e == nil {
		return fmt.Errorf("%w for %s/%s", ErrNoSymbols, module, buildID)
	}

	debugPath := e.DebugPath
	if debugPath == "" {
		debugPath = "-"
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Module:\t%s\n", e.Module)
	_, _ = fmt.Fprintf(w, "Build ID:\t%s\n", e.BuildID)
	_, _ = fmt.Fprintf(w, "Platform:\t%s/%s\n", e.OS, e.Arch)
	_, _ = fmt.Fprintf(w, "Symbols:\t%s\n", e.SymPath)
	_, _ = fmt.Fprintf(w, "Binary:\t%s\n", e.Binary)
	_, _ = fmt.Fprintf(w, "Debug info:\t%s\n", debugPath)
	_, _ = fmt.Fprintf(w, "Run:\t%s\n", e.RunID)
	_, _ = fmt.Fprintf(w, "Recorded:\t%s\n", e.CreatedAt.Local().Format(time.RFC3339))
	return w.Flush()
}
