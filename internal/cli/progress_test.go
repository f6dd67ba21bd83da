package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/runner"
	"github.com/stretchr/testify/assert"
)

func TestCLIProgressReporter_Summary(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewCLIProgressReporter(false, &out)

	p.OnStart()
	p.OnBinaryProcessed("/build/impalad", nil)
	p.OnBinaryProcessed("/build/README", errors.New("boom"))
	p.OnComplete(runner.Summary{Processed: 2, Succeeded: 1, Failed: 1})

	assert.Nil(t, p.bar, "no spinner on a non-terminal writer")
	assert.Contains(t, out.String(), "Dumped symbols for 1 of 2 binaries")
	assert.Contains(t, out.String(), "(1 failed)")
}

func TestCLIProgressReporter_AllSucceeded(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewCLIProgressReporter(false, &out)
	p.OnStart()
	p.OnComplete(runner.Summary{Processed: 3, Succeeded: 3})

	assert.Contains(t, out.String(), "✓ Dumped symbols for 3 binaries")
}

func TestCLIProgressReporter_Quiet(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	p := NewCLIProgressReporter(true, &out)
	p.OnStart()
	p.OnBinaryProcessed("/build/impalad", nil)
	p.OnComplete(runner.Summary{Processed: 1, Succeeded: 1})

	assert.Empty(t, out.String())
}
