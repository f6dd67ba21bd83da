package binaries

import (
	"fmt"
	"io"

	"github.com/mvp-joe/dump-breakpad-symbols/internal/config"
	"github.com/rs/zerolog"
)

// NewSource returns the Source for the input mode selected in cfg. stdin is
// only read in stdin mode.
func NewSource(cfg *config.Config, stdin io.Reader, logger zerolog.Logger) (Source, error) {
	switch mode := cfg.InputMode(); mode {
	case config.ModeBinaryFiles:
		return &FileListSource{Paths: cfg.BinaryFiles}, nil
	case config.ModeStdin:
		return &ReaderSource{R: stdin}, nil
	case config.ModeBuildDir:
		src, err := NewDirSource(cfg.BuildDir, cfg.Exclude, logger.With().Str("component", "walker").Logger())
		if err != nil {
			return nil, err
		}
		return src, nil
	case config.ModeRPM:
		return &PackageSource{
			RPM:           cfg.RPM,
			DebugInfoRPM:  cfg.DebugInfoRPM,
			InstallPrefix: cfg.InstallPrefix,
			DebugPrefix:   cfg.DebugPrefix(),
			Unpacker:      NewRPMUnpacker(),
			Logger:        logger.With().Str("component", "rpm").Logger(),
		}, nil
	default:
		return nil, fmt.Errorf("%w, got %d", config.ErrInputMode, len(cfg.InputModes()))
	}
}
