// Package output writes derived images to disk under deterministic names, so
// repeating an operation overwrites its previous result.
package output

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
)

// Writer persists images below a base directory
type Writer struct {
	dir string
}

// NewWriter creates a writer rooted at dir
func NewWriter(dir string) *Writer {
	if dir == "" {
		dir = "."
	}
	return &Writer{dir: dir}
}

// Dir returns the base directory
func (w *Writer) Dir() string {
	return w.dir
}

// Save writes img as PNG under name and returns the full path
func (w *Writer) Save(img image.Image, name string) (string, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(w.dir, name)
	if err := WritePNG(img, path); err != nil {
		return "", err
	}
	return path, nil
}

// WritePNG encodes img as PNG at path, replacing any existing file
func WritePNG(img image.Image, path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := png.Encode(file, img); err != nil {
		file.Close()
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}
	return file.Close()
}

// TranslatedName names the result of translating the set stored under key
func TranslatedName(key string, tx, ty int) string {
	return fmt.Sprintf("translated_%s_X%d_Y%d.png", Sanitize(key), tx, ty)
}

// ProcessedName names the result of the binarize/open/annotate chain
func ProcessedName(key, variant, shape string) string {
	return fmt.Sprintf("processed_%s_%s_%s.png", Sanitize(key), Sanitize(variant), Sanitize(shape))
}

// ComparisonName names the side-by-side montage that accompanies a result
// saved under name
func ComparisonName(name string) string {
	return "comparison_" + name
}

// OrthogonalName names the montage of the three cross-sections of a set
func OrthogonalName(key string) string {
	return fmt.Sprintf("orthogonal_%s.png", Sanitize(key))
}

// Sanitize replaces every character outside [A-Za-z0-9._-] with '_'
func Sanitize(s string) string {
	if s == "" {
		return "_"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '.' || r == '_' || r == '-':
			return r
		}
		return '_'
	}, s)
}
