// Package runner drives a symbol dump: it pulls binaries from a source, runs
// the dumper on each one in turn and folds the outcomes into a Summary.
package runner

import (
	"context"
	"fmt"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/binaries"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/manifest"
	"github.com/mvp-joe/dump-breakpad-symbols/internal/symbols"
	"github.com/rs/zerolog"
)

// Dumper extracts symbols for one binary. *symbols.Dumper implements it.
type Dumper interface {
	Dump(ctx context.Context, rec binaries.Record) (*symbols.Result, error)
}

// Recorder stores placed symbol files. *manifest.Store implements it.
type Recorder interface {
	Record(e manifest.Entry) error
}

// Summary counts the outcomes of a run.
type Summary struct {
	Processed int
	Succeeded int
	Failed    int
}

// OK reports whether every processed binary succeeded. A run that found no
// binaries is OK.
func (s Summary) OK() bool {
	return s.Failed == 0
}

// Runner processes every binary from Source sequentially.
type Runner struct {
	Source   binaries.Source
	Dumper   Dumper
	DestRoot string           // created before the first binary when set
	Manifest Recorder         // optional
	Progress ProgressReporter // optional
	Logger   zerolog.Logger
}

// Run processes all binaries. Per-binary extraction failures are logged and
// counted, and processing continues. Any other error (unusable destination,
// failed package unpack, manifest write, cancellation) stops the run; the
// source cleans up after itself before Run returns.
func (r *Runner) Run(ctx context.Context) (Summary, error) {
	var summary Summary

	progress := r.Progress
	if progress == nil {
		progress = &NoOpProgressReporter{}
	}

	if r.DestRoot != "" {
		if err := symbols.EnsureDir(r.DestRoot); err != nil {
			return summary, err
		}
	}

	progress.OnStart()
	err := r.Source.Each(ctx, func(rec binaries.Record) error {
		summary.Processed++

		res, err := r.Dumper.Dump(ctx, rec)
		if err != nil {
			if !symbols.IsExtractionFailure(err) {
				return err
			}
			summary.Failed++
			r.Logger.Warn().Err(err).Str("binary", rec.Path).Msg("Skipping binary")
			progress.OnBinaryProcessed(rec.Path, err)
			return nil
		}

		summary.Succeeded++
		if r.Manifest != nil {
			if err := r.Manifest.Record(entryFor(rec, res)); err != nil {
				return fmt.Errorf("failed to update manifest: %w", err)
			}
		}
		progress.OnBinaryProcessed(rec.Path, nil)
		return nil
	})
	progress.OnComplete(summary)

	r.Logger.Info().
		Int("processed", summary.Processed).
		Int("succeeded", summary.Succeeded).
		Int("failed", summary.Failed).
		Msg("Symbol dump finished")

	return summary, err
}

func entryFor(rec binaries.Record, res *symbols.Result) manifest.Entry {
	return manifest.Entry{
		Module:    res.Header.Module,
		BuildID:   res.Header.BuildID,
		OS:        res.Header.OS,
		Arch:      res.Header.Arch,
		Binary:    rec.Path,
		DebugPath: rec.DebugPath,
		SymPath:   res.Path,
	}
}
