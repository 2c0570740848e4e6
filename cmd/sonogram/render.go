//nolint:wrapcheck
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/farcloser/sonogram"
	"github.com/farcloser/sonogram/internal/config"
	"github.com/farcloser/sonogram/internal/decode"
	"github.com/farcloser/sonogram/internal/glyph"
	"github.com/farcloser/sonogram/internal/observe"
	"github.com/farcloser/sonogram/internal/progress"
	"github.com/farcloser/sonogram/internal/sink"
)

var errInvalidArgCount = errors.New("expected exactly one argument: audio file path")

func renderCommand() *cli.Command {
	return &cli.Command{
		Usage:     "Render the spectrogram of an audio file to the terminal or a PNG",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "width",
				Aliases: []string{"w"},
				Usage:   "Image width in pixels",
				Value:   sonogram.DefaultWidth,
			},
			&cli.IntFlag{
				Name:    "height",
				Aliases: []string{"H"},
				Usage:   "Image height in pixels",
				Value:   sonogram.DefaultHeight,
			},
			&cli.StringFlag{
				Name:  "scale",
				Usage: "Frequency axis: log, linear",
				Value: "log",
			},
			&cli.StringFlag{
				Name:    "palette",
				Aliases: []string{"p"},
				Usage:   "Color palette (see the palettes command)",
				Value:   "audacity",
			},
			&cli.BoolFlag{
				Name:  "rolloff",
				Usage: "Overlay the 85% spectral rolloff curve",
			},
			&cli.StringFlag{
				Name:    "save",
				Aliases: []string{"s"},
				Usage:   "Write a PNG to this path instead of displaying",
			},
			&cli.StringFlag{
				Name:  "window",
				Usage: "STFT window: hann, hamming, blackman, bartlett, flattop, rectangular",
				Value: "hann",
			},
			&cli.IntFlag{
				Name:  "fft-size",
				Usage: "STFT frame size, a power of two",
				Value: 2048,
			},
			&cli.IntFlag{
				Name:  "hop-size",
				Usage: "STFT hop size in samples (0 = auto)",
			},
			&cli.StringFlag{
				Name:  "protocol",
				Usage: "Terminal graphics: auto, kitty, iterm2, blocks",
				Value: "auto",
			},
			&cli.StringFlag{
				Name:  "config",
				Usage: "Configuration file (default: <user config dir>/sonogram/config.yaml)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Report format: console, json, markdown",
				Value:   "console",
			},
			&cli.BoolFlag{
				Name:    "quiet",
				Aliases: []string{"q"},
				Usage:   "Only output the image (fatal errors are still reported)",
			},
			&cli.BoolFlag{
				Name:    "verbose",
				Aliases: []string{"v"},
				Usage:   "Print stage timings",
			},
			&cli.BoolFlag{
				Name:    "debug",
				Aliases: []string{"D"},
				Usage:   "Debug logging, and all raw analysis data in the report",
			},
		},
		Action: renderAction,
	}
}

func renderAction(ctx context.Context, cmd *cli.Command) error {
	if cmd.NArg() != 1 {
		return fmt.Errorf("%w: got %d", errInvalidArgCount, cmd.NArg())
	}

	start := time.Now()
	debug := cmd.Bool("debug")
	quiet := cmd.Bool("quiet")

	if debug {
		logLevel.Set(slog.LevelDebug)
	}

	cfg, err := config.Resolve(cmd.String("config"), overrides(cmd), slog.Default())
	if err != nil {
		return fmt.Errorf("%w: %w", sonogram.ErrConfig, err)
	}

	protocol, err := sink.ParseProtocol(cmd.String("protocol"))
	if err != nil {
		return fmt.Errorf("%w: %w", sonogram.ErrConfig, err)
	}

	savePath := cmd.String("save")
	if savePath != "" {
		if err = sink.CheckWritable(savePath); err != nil {
			return fmt.Errorf("%w: %w", sonogram.ErrOutput, err)
		}
	}

	timings, err := observe.NewTimings(nil)
	if err != nil {
		return err
	}

	filePath := cmd.Args().First()

	prog := progress.New(os.Stderr, !quiet && term.IsTerminal(int(os.Stderr.Fd()))) //nolint:gosec // fd fits an int

	stop := timings.Track(ctx, observe.StageDecode)
	buf, meta, err := sonogram.Load(ctx, filePath, decode.Options{Progress: prog})

	prog.Wait()
	stop()

	if err != nil {
		return err
	}

	glyphs := glyph.New(ctx, cfg.FontPath)

	slog.Debug("render", "stage", "configured", "config", cfg.Source, "palette", cfg.PaletteName,
		"font", glyphs.Source(), "size", fmt.Sprintf("%dx%d", cfg.Width, cfg.Height))

	opts := sonogram.Options{
		Width:        cfg.Width,
		Height:       cfg.Height,
		Scale:        cfg.Scale,
		Aggregation:  cfg.Aggregation,
		MinFrequency: cfg.MinFrequency,
		Palette:      cfg.Palette,
		Range:        cfg.Range,
		Window:       cfg.Window,
		FrameSize:    cfg.FFTSize,
		HopSize:      cfg.HopSize,
		Rolloff:      cfg.Rolloff,
		Glyphs:       glyphs,
		Timings:      timings,
	}

	result, err := sonogram.Render(buf, meta, opts)
	if err != nil {
		return err
	}

	if !quiet {
		if err = outputResult(filePath, result, timings.Durations(), cmd.String("format"), debug); err != nil {
			return err
		}
	}

	stop = timings.Track(ctx, observe.StageOutput)

	if savePath != "" {
		err = sink.SavePNG(savePath, result.Image)
	} else {
		err = sink.Display(os.Stdout, result.Image, sink.DisplayOptions{Protocol: protocol})
	}

	stop()

	if err != nil {
		return fmt.Errorf("%w: %w", sonogram.ErrOutput, err)
	}

	timings.Record(ctx, observe.StageTotal, time.Since(start))

	if cfg.Verbose && !quiet {
		return outputTimings(filePath, timings.Durations(), cmd.String("format"))
	}

	return nil
}

// overrides keeps only the flags the user actually set, so the configuration file wins over flag defaults.
func overrides(cmd *cli.Command) config.Overrides {
	var over config.Overrides

	if cmd.IsSet("width") {
		over.Width = ptr(cmd.Int("width"))
	}

	if cmd.IsSet("height") {
		over.Height = ptr(cmd.Int("height"))
	}

	if cmd.IsSet("scale") {
		over.Scale = ptr(cmd.String("scale"))
	}

	if cmd.IsSet("palette") {
		over.Palette = ptr(cmd.String("palette"))
	}

	if cmd.IsSet("rolloff") {
		over.Rolloff = ptr(cmd.Bool("rolloff"))
	}

	if cmd.IsSet("verbose") {
		over.Verbose = ptr(cmd.Bool("verbose"))
	}

	if cmd.IsSet("window") {
		over.Window = ptr(cmd.String("window"))
	}

	if cmd.IsSet("fft-size") {
		over.FFTSize = ptr(cmd.Int("fft-size"))
	}

	if cmd.IsSet("hop-size") {
		over.HopSize = ptr(cmd.Int("hop-size"))
	}

	return over
}

func ptr[T any](v T) *T {
	return &v
}
