package symbols

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHeader(t *testing.T) {
	t.Parallel()

	h, err := ParseHeader("MODULE Linux x86_64 5FBA0A3C25A4B9C40D6D7D0E3B5A51BE0 impalad\n")
	require.NoError(t, err)

	assert.Equal(t, Header{
		OS:      "Linux",
		Arch:    "x86_64",
		BuildID: "5FBA0A3C25A4B9C40D6D7D0E3B5A51BE0",
		Module:  "impalad",
	}, h)
	assert.Equal(t, filepath.Join("impalad", "5FBA0A3C25A4B9C40D6D7D0E3B5A51BE0", "impalad.sym"), h.RelPath())
	assert.Equal(t, "MODULE Linux x86_64 5FBA0A3C25A4B9C40D6D7D0E3B5A51BE0 impalad", h.String())
}

func TestParseHeader_ToleratesExtraWhitespace(t *testing.T) {
	t.Parallel()

	h, err := ParseHeader("  MODULE\tLinux  arm64 ABC123  libkudu_client.so.0 \r\n")
	require.NoError(t, err)
	assert.Equal(t, "libkudu_client.so.0", h.Module)
	assert.Equal(t, "arm64", h.Arch)
}

func TestParseHeader_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		line string
	}{
		{"empty", ""},
		{"four fields", "MODULE Linux x86_64 impalad"},
		{"six fields", "MODULE Linux x86_64 ABC impalad extra"},
		{"not a module record", "FILE Linux x86_64 ABC impalad"},
		{"dot build id", "MODULE Linux x86_64 .. impalad"},
		{"module with separator", "MODULE Linux x86_64 ABC ../../etc/passwd"},
		{"dot module", "MODULE Linux x86_64 ABC ."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseHeader(tt.line)
			assert.ErrorIs(t, err, ErrMalformedHeader)
		})
	}
}
