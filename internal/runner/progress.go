package runner

// ProgressReporter receives progress callbacks during a run. The number of
// binaries is not known up front, since sources enumerate lazily.
type ProgressReporter interface {
	// OnStart is called once before the first binary.
	OnStart()

	// OnBinaryProcessed is called after each binary; err is nil on success
	// and the per-binary failure otherwise.
	OnBinaryProcessed(path string, err error)

	// OnComplete is called once the source is exhausted or the run aborted.
	OnComplete(summary Summary)
}

// NoOpProgressReporter is a progress reporter that does nothing.
// Used when progress reporting is disabled (e.g., --quiet flag).
type NoOpProgressReporter struct{}

func (n *NoOpProgressReporter) OnStart()                                 {}
func (n *NoOpProgressReporter) OnBinaryProcessed(path string, err error) {}
func (n *NoOpProgressReporter) OnComplete(summary Summary)               {}
