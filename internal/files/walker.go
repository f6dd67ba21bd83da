package files

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/gobwas/glob"
	"github.com/rs/zerolog"
)

// compiledPattern holds both the pattern string and compiled glob
type compiledPattern struct {
	pattern string
	glob    glob.Glob
	// rootGlob is the pattern without its leading "**/", so that "**/*.o"
	// also matches "foo.o" at the root. Nil for other patterns.
	rootGlob glob.Glob
}

// Walker finds ELF objects below a root directory, skipping paths that
// match any of its exclude patterns.
type Walker struct {
	rootDir         string
	excludePatterns []compiledPattern
	logger          zerolog.Logger
}

// NewWalker creates a walker for rootDir. Exclude patterns are globs matched
// against slash-separated paths relative to rootDir, e.g. "**/CMakeFiles/**".
func NewWalker(rootDir string, excludePatterns []string, logger zerolog.Logger) (*Walker, error) {
	w := &Walker{rootDir: rootDir, logger: logger}

	for _, pattern := range excludePatterns {
		g, err := glob.Compile(pattern, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
		}
		cp := compiledPattern{pattern: pattern, glob: g}

		if stripped, ok := strings.CutPrefix(pattern, "**/"); ok {
			rg, err := glob.Compile(stripped, '/')
			if err != nil {
				return nil, fmt.Errorf("invalid exclude pattern %q: %w", pattern, err)
			}
			cp.rootGlob = rg
		}

		w.excludePatterns = append(w.excludePatterns, cp)
	}

	return w, nil
}

// Walk calls fn with the path of every ELF object below the root, in lexical
// order. Symlinked directories are not followed. An unreadable root is an
// error; unreadable entries below it are logged and skipped. An error
// returned by fn stops the walk and is returned unchanged.
func (w *Walker) Walk(fn func(path string) error) error {
	return filepath.WalkDir(w.rootDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == w.rootDir {
				return fmt.Errorf("failed to scan %s: %w", w.rootDir, err)
			}
			w.logger.Warn().Err(err).Str("path", path).Msg("Skipping unreadable path")
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		relPath, err := filepath.Rel(w.rootDir, path)
		if err != nil {
			return err
		}
		relPath = filepath.ToSlash(relPath)

		if d.IsDir() {
			if relPath != "." && w.shouldExclude(relPath+"/**") {
				return filepath.SkipDir
			}
			return nil
		}

		if w.shouldExclude(relPath) {
			return nil
		}

		if !IsELFObject(path) {
			return nil
		}
		return fn(path)
	})
}

// shouldExclude checks if a relative path matches any exclude pattern.
func (w *Walker) shouldExclude(relPath string) bool {
	atRoot := !strings.Contains(strings.TrimSuffix(relPath, "/**"), "/")

	for _, cp := range w.excludePatterns {
		if cp.glob.Match(relPath) {
			return true
		}
		if atRoot && cp.rootGlob != nil && cp.rootGlob.Match(relPath) {
			return true
		}
	}
	return false
}
