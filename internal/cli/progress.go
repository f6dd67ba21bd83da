package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/runner"
	"github.com/schollz/progressbar/v3"
)

// CLIProgressReporter shows a spinner while binaries are dumped and prints a
// summary line at the end.
type CLIProgressReporter struct {
	quiet     bool
	out       io.Writer
	bar       *progressbar.ProgressBar
	startTime time.Time
}

// NewCLIProgressReporter creates a reporter writing to out. The spinner is
// only drawn when out is a terminal; quiet suppresses all output.
func NewCLIProgressReporter(quiet bool, out io.Writer) *CLIProgressReporter {
	return &CLIProgressReporter{
		quiet:     quiet,
		out:       out,
		startTime: time.Now(),
	}
}

func (c *CLIProgressReporter) OnStart() {
	if c.quiet || !isTerminal(c.out) {
		return
	}

	// Sources enumerate lazily, so the total is unknown: -1 selects a spinner.
	c.bar = progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(c.out),
		progressbar.OptionSetDescription("Dumping symbols"),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionShowCount(),
		progressbar.OptionShowIts(),
		progressbar.OptionSetItsString("bin/s"),
		progressbar.OptionThrottle(65*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)
}

func (c *CLIProgressReporter) OnBinaryProcessed(path string, err error) {
	if c.bar != nil {
		c.bar.Add(1)
	}
}

func (c *CLIProgressReporter) OnComplete(summary runner.Summary) {
	if c.bar != nil {
		c.bar.Finish()
		c.bar = nil
	}
	if c.quiet {
		return
	}

	elapsed := time.Since(c.startTime).Seconds()
	if summary.OK() {
		fmt.Fprintf(c.out, "✓ Dumped symbols for %d binaries in %.1fs\n", summary.Succeeded, elapsed)
		return
	}
	fmt.Fprintf(c.out, "✗ Dumped symbols for %d of %d binaries in %.1fs (%d failed)\n",
		summary.Succeeded, summary.Processed, elapsed, summary.Failed)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
