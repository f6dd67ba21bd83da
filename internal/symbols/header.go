package symbols

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// headerFields is the number of fields in a dump_syms MODULE line.
const headerFields = 5

// ErrMalformedHeader indicates that dump_syms output did not start with a
// usable MODULE line.
var ErrMalformedHeader = errors.New("malformed symbol file header")

// Header is the first line of a Breakpad symbol file:
//
//	MODULE <os> <arch> <build_id> <module_name>
type Header struct {
	OS      string
	Arch    string
	BuildID string
	Module  string
}

// ParseHeader parses a MODULE line. Module and build id become path
// elements of the destination layout, so they must be single, non-special
// path components.
func ParseHeader(line string) (Header, error) {
	fields := strings.Fields(line)
	if len(fields) != headerFields {
		return Header{}, fmt.Errorf("%w: expected %d fields, got %d: %q", ErrMalformedHeader, headerFields, len(fields), line)
	}
	if fields[0] != "MODULE" {
		return Header{}, fmt.Errorf("%w: expected MODULE record, got %q", ErrMalformedHeader, fields[0])
	}

	h := Header{
		OS:      fields[1],
		Arch:    fields[2],
		BuildID: fields[3],
		Module:  fields[4],
	}
	if !isPathElement(h.BuildID) {
		return Header{}, fmt.Errorf("%w: unusable build id %q", ErrMalformedHeader, h.BuildID)
	}
	if !isPathElement(h.Module) {
		return Header{}, fmt.Errorf("%w: unusable module name %q", ErrMalformedHeader, h.Module)
	}
	return h, nil
}

// String renders the header back into its MODULE line form.
func (h Header) String() string {
	return strings.Join([]string{"MODULE", h.OS, h.Arch, h.BuildID, h.Module}, " ")
}

// RelPath returns the location of the symbol file below a destination root:
// <module>/<build_id>/<module>.sym
func (h Header) RelPath() string {
	return filepath.Join(h.Module, h.BuildID, h.Module+".sym")
}

func isPathElement(s string) bool {
	return s != "" && s != "." && s != ".." && !strings.ContainsAny(s, `/\`)
}
