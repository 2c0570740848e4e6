package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/farcloser/sonogram/internal/compose"
	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
	"github.com/farcloser/sonogram/internal/dsp/stft"
	"github.com/farcloser/sonogram/internal/palette"
	"github.com/farcloser/sonogram/version"
)

const (
	fileName   = "config.yaml"
	customName = "custom"
	header     = "# sonogram configuration. Command line flags override these values.\n"
)

var ErrInvalid = errors.New("invalid configuration")

// DefaultPath is config.yaml in the user configuration directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(dir, version.Name(), fileName), nil
}

// Resolve loads path (DefaultPath when empty), writing the defaults there first if it does not exist. A file that
// cannot be read, parsed or validated is reported once on logger at warning level and replaced by the defaults.
// Only invalid overrides are an error.
func Resolve(path string, overrides Overrides, logger *slog.Logger) (Config, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if path == "" {
		var err error
		if path, err = DefaultPath(); err != nil {
			logger.Debug("config.Resolve", "stage", "no configuration directory", "error", err)
		}
	}

	file := Default()
	source := ""

	if path != "" {
		if err := ensure(path); err != nil {
			logger.Debug("config.Resolve", "stage", "write defaults", "path", path, "error", err)
		}

		loaded, err := Load(path)

		switch {
		case errors.Is(err, fs.ErrNotExist):
			logger.Debug("config.Resolve", "stage", "no file", "path", path)
		case err != nil:
			logger.Warn("ignoring configuration file, using built-in defaults", "path", path, "error", err)
		default:
			file = *loaded
			source = path
		}
	}

	overrides.apply(&file)

	cfg, err := build(file)
	if err != nil {
		return Config{}, err
	}

	cfg.Source = source

	return cfg, nil
}

// ensure writes the default file if path does not exist.
func ensure(path string) error {
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	data, err := Marshal(Default())
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

// Marshal renders a configuration file with its header comment.
func Marshal(file File) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(header)

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)

	if err := enc.Encode(file); err != nil {
		return nil, err
	}

	if err := enc.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// Load reads and validates the file at path.
func Load(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	file, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}

	return file, nil
}

// LoadFromReader decodes YAML from r over the defaults, so omitted keys keep their default value.
func LoadFromReader(r io.Reader) (*File, error) {
	file := Default()

	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	if err := dec.Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: decode yaml: %w", ErrInvalid, err)
	}

	if _, err := build(file); err != nil {
		return nil, err
	}

	return &file, nil
}

// build validates file and converts it. All failures are joined.
func build(file File) (Config, error) {
	var errs []error

	d := file.Defaults

	cfg := Config{
		Width:        d.Width,
		Height:       d.Height,
		PaletteName:  d.Palette,
		Rolloff:      d.Rolloff,
		Verbose:      d.Verbose,
		Window:       d.Window,
		FFTSize:      d.FFTSize,
		HopSize:      d.HopSize,
		Range:        palette.Range{MinDb: d.MinDb, MaxDb: d.MaxDb},
		MinFrequency: d.MinFrequency,
		FontPath:     file.FontPath,
	}

	if _, err := compose.NewLayout(d.Width, d.Height); err != nil {
		errs = append(errs, err)
	}

	var err error

	if cfg.Scale, err = freqaxis.ParseScale(d.Scale); err != nil {
		errs = append(errs, err)
	}

	if cfg.Aggregation, err = freqaxis.ParseAggregation(d.Aggregation); err != nil {
		errs = append(errs, err)
	}

	if !slices.Contains(stft.Windows(), d.Window) {
		errs = append(errs, fmt.Errorf("window %q is invalid; valid values: %v", d.Window, stft.Windows()))
	}

	// hop_size 0 is resolved against the image width later.
	opts := stft.Options{FrameSize: d.FFTSize, HopSize: d.HopSize, Window: d.Window}
	if opts.HopSize == 0 {
		opts.HopSize = max(d.FFTSize/4, 1)
	}

	if err := opts.Validate(); err != nil {
		errs = append(errs, err)
	}

	if err := cfg.Range.Validate(); err != nil {
		errs = append(errs, err)
	}

	if d.MinFrequency <= 0 || math.IsNaN(d.MinFrequency) {
		errs = append(errs, fmt.Errorf("min_frequency must be positive, got %v", d.MinFrequency))
	}

	if file.Colors != nil && len(file.Colors.Stops) > 0 {
		cfg.PaletteName = customName
		cfg.Palette, err = customPalette(file.Colors.Stops)
	} else {
		cfg.Palette, err = palette.Named(d.Palette)
	}

	if err != nil {
		errs = append(errs, err)
	}

	if len(errs) > 0 {
		return Config{}, fmt.Errorf("%w: %w", ErrInvalid, errors.Join(errs...))
	}

	return cfg, nil
}

func customPalette(stops []Stop) (*palette.Palette, error) {
	parsed := make([]palette.Stop, 0, len(stops))

	for i, s := range stops {
		c, err := palette.ParseHex(s.Color)
		if err != nil {
			return nil, fmt.Errorf("colors.stops[%d]: %w", i, err)
		}

		parsed = append(parsed, palette.Stop{Position: s.Position, Color: c})
	}

	return palette.New(parsed)
}
