//nolint:wrapcheck
package main

import (
	"context"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/sonogram/internal/palette"
)

func palettesCommand() *cli.Command {
	return &cli.Command{
		Name:  "palettes",
		Usage: "List the built-in color palettes and their stops",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: console, json, markdown",
				Value:   "console",
			},
		},
		Action: func(_ context.Context, cmd *cli.Command) error {
			meta := make(map[string]any)

			for _, name := range palette.Names() {
				named, err := palette.Named(name)
				if err != nil {
					return err
				}

				stops := make([]any, 0, len(named.Stops()))
				for _, stop := range named.Stops() {
					stops = append(stops, strconv.FormatFloat(stop.Position, 'f', -1, 64)+" "+palette.Hex(stop.Color))
				}

				if name == palette.Default {
					name += " (default)"
				}

				meta[name] = stops
			}

			return printData("palettes", meta, cmd.String("format"))
		},
	}
}
