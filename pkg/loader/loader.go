// Package loader turns a directory of single-slice files into decoded slices.
package loader

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"dicomslicesto3d/internal/models"
	perrors "dicomslicesto3d/pkg/errors"
)

// DefaultPattern matches DICOM slice files
const DefaultPattern = "*.dcm"

// Decoder decodes one slice file
type Decoder interface {
	Decode(path string) (*models.Slice, error)
}

// Skipped records a candidate file that could not be decoded
type Skipped struct {
	Filename string
	Err      error
}

// Loader enumerates a directory and decodes every candidate slice file
type Loader struct {
	decoder Decoder
	pattern string
	logger  *slog.Logger
}

// New creates a loader. An empty pattern selects DefaultPattern and a nil
// logger discards diagnostics.
func New(decoder Decoder, pattern string, logger *slog.Logger) *Loader {
	if pattern == "" {
		pattern = DefaultPattern
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Loader{
		decoder: decoder,
		pattern: pattern,
		logger:  logger,
	}
}

// Load decodes all candidate files of dir in name order. Files that fail to
// decode are logged and reported in the second return value; they never abort
// the scan. An error is returned only when the directory cannot be listed.
func (l *Loader) Load(dir string) ([]*models.Slice, []Skipped, error) {
	names, err := ListCandidates(dir, l.pattern)
	if err != nil {
		return nil, nil, err
	}

	var slices []*models.Slice
	var skipped []Skipped
	for _, name := range names {
		slice, err := l.decoder.Decode(filepath.Join(dir, name))
		if err != nil {
			derr := perrors.Wrap(perrors.DecodeError, "decode "+name, err)
			l.logger.Warn("skipping slice", "file", name, "error", err)
			skipped = append(skipped, Skipped{Filename: name, Err: derr})
			continue
		}
		slice.Metadata.Filename = name
		slices = append(slices, slice)
	}

	l.logger.Debug("slice collection loaded", "dir", dir, "decoded", len(slices), "skipped", len(skipped))
	return slices, skipped, nil
}

// ListCandidates returns the names of files in dir, symlinks to files
// included, whose name matches pattern, compared case-insensitively, sorted
// by name.
func ListCandidates(dir, pattern string) ([]string, error) {
	if !doublestar.ValidatePattern(pattern) {
		return nil, fmt.Errorf("invalid slice file pattern %q", pattern)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read slice directory: %w", err)
	}

	lowerPattern := strings.ToLower(pattern)
	var names []string
	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			// Symlinks count when they resolve to a file
			info, err := os.Stat(filepath.Join(dir, entry.Name()))
			if err != nil || info.IsDir() {
				continue
			}
		}
		ok, err := doublestar.Match(lowerPattern, strings.ToLower(entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to match %s: %w", entry.Name(), err)
		}
		if ok {
			names = append(names, entry.Name())
		}
	}

	sort.Strings(names)
	return names, nil
}
