// Package files classifies filesystem entries and discovers object files
// below a directory tree.
package files

import (
	"bytes"
	"debug/elf"
	"io"
	"os"
)

// identSize is the number of leading bytes needed to recognise an ELF file.
const identSize = elf.EI_CLASS + 1

// IsRegularFile reports whether path exists and is a regular file.
// Symbolic links are never regular files, even when their target is.
func IsRegularFile(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode().IsRegular()
}

// IsELFObject reports whether path is a regular file whose contents start
// with an ELF identification (executables, shared objects, relocatable
// objects and separate debug files all qualify).
func IsELFObject(path string) bool {
	if !IsRegularFile(path) {
		return false
	}

	f, err := os.Open(path)
	if err != nil {
		return false
	}
	defer f.Close()

	ident := make([]byte, identSize)
	if _, err := io.ReadFull(f, ident); err != nil {
		return false
	}
	return hasELFIdent(ident)
}

func hasELFIdent(ident []byte) bool {
	if len(ident) < identSize || !bytes.Equal(ident[:len(elf.ELFMAG)], []byte(elf.ELFMAG)) {
		return false
	}
	switch elf.Class(ident[elf.EI_CLASS]) {
	case elf.ELFCLASS32, elf.ELFCLASS64:
		return true
	}
	return false
}
