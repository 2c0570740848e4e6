package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/sonogram/version"
)

//nolint:gochecknoglobals // raised to debug by --debug
var logLevel = new(slog.LevelVar)

func main() {
	ctx := context.Background()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	// -v is --verbose.
	cli.VersionFlag = &cli.BoolFlag{
		Name:    "version",
		Aliases: []string{"V"},
		Usage:   "print the version",
	}

	appl := renderCommand()
	appl.Name = version.Name()
	appl.Version = version.Version() + " " + version.Commit()
	appl.Commands = []*cli.Command{
		palettesCommand(),
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
