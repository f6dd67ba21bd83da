package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

var (
	// ErrMissingDestDir indicates that no destination directory was given
	ErrMissingDestDir = errors.New("missing destination directory")

	// ErrRPMPair indicates that only one of --rpm and --debuginfo_rpm was given
	ErrRPMPair = errors.New("--rpm and --debuginfo_rpm must be given together")

	// ErrInputMode indicates that zero or several input modes were selected
	ErrInputMode = errors.New("exactly one input mode is required (-b/-f/-i/-r,-s)")

	// ErrInvalidInstallPrefix indicates an unusable RPM install prefix
	ErrInvalidInstallPrefix = errors.New("invalid install prefix")

	// ErrToolchainNotFound indicates that the toolchain directory is unset or missing
	ErrToolchainNotFound = errors.New("toolchain directory not found")

	// ErrMissingBreakpadVersion indicates that the breakpad version is unset
	ErrMissingBreakpadVersion = errors.New("breakpad version not set")

	// ErrDumpSymsNotFound indicates that the dump_syms executable does not exist
	ErrDumpSymsNotFound = errors.New("dump_syms executable not found")
)

// Validate checks that the configuration is valid and complete.
// It performs no filesystem access.
func Validate(cfg *Config) error {
	var errs []error

	if strings.TrimSpace(cfg.DestDir) == "" {
		errs = append(errs, fmt.Errorf("%w: --dest_dir is required", ErrMissingDestDir))
	}

	if err := validateInput(cfg); err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

func validateInput(cfg *Config) error {
	var errs []error

	if (cfg.RPM == "") != (cfg.DebugInfoRPM == "") {
		errs = append(errs, ErrRPMPair)
	}

	if modes := cfg.InputModes(); len(modes) != 1 {
		errs = append(errs, fmt.Errorf("%w, got %d", ErrInputMode, len(modes)))
	}

	if cfg.RPM != "" {
		prefix := filepath.Clean(cfg.InstallPrefix)
		if cfg.InstallPrefix == "" || filepath.IsAbs(prefix) || prefix == "." || strings.HasPrefix(prefix, "..") {
			errs = append(errs, fmt.Errorf("%w: must be a relative path inside the package, got '%s'", ErrInvalidInstallPrefix, cfg.InstallPrefix))
		}
	}

	if len(errs) > 0 {
		return joinErrors(errs)
	}

	return nil
}

// joinErrors combines multiple errors into a single error with clear formatting.
// The result still matches every joined error with errors.Is.
func joinErrors(errs []error) error {
	if len(errs) == 0 {
		return nil
	}

	if len(errs) == 1 {
		return errs[0]
	}

	return &validationError{errs: errs}
}

type validationError struct {
	errs []error
}

func (e *validationError) Error() string {
	msgs := make([]string, 0, len(e.errs))
	for _, err := range e.errs {
		msgs = append(msgs, err.Error())
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(msgs, "\n  - "))
}

func (e *validationError) Unwrap() []error {
	return e.errs
}
