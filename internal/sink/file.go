// Package sink hands the composed raster to its destination: a PNG file or the terminal.
package sink

import (
	"errors"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fogleman/gg"
)

var ErrUnwritable = errors.New("destination not writable")

// CheckWritable verifies a file can be created at path, without leaving anything behind.
func CheckWritable(path string) error {
	if path == "" {
		return fmt.Errorf("%w: empty path", ErrUnwritable)
	}

	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return fmt.Errorf("%w: %s is a directory", ErrUnwritable, path)
	}

	dir := filepath.Dir(path)

	probe, err := os.CreateTemp(dir, ".sonogram-*")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritable, err)
	}

	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)

	return nil
}

// SavePNG encodes img to path.
func SavePNG(path string, img *image.RGBA) error {
	slog.Debug("sink.SavePNG", "path", path, "size", img.Bounds().Size())

	if err := gg.SavePNG(path, img); err != nil {
		return fmt.Errorf("%w: %w", ErrUnwritable, err)
	}

	return nil
}
