package sink

import (
	"bufio"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/BourgeoisBear/rasterm"
	"golang.org/x/image/draw"
	"golang.org/x/term"
)

// Protocol is a way of putting pixels on a terminal.
type Protocol int

const (
	Auto Protocol = iota
	Kitty
	ITerm2
	Blocks
)

func (p Protocol) String() string {
	switch p {
	case Auto:
		return "auto"
	case Kitty:
		return "kitty"
	case ITerm2:
		return "iterm2"
	case Blocks:
		return "blocks"
	}

	return "unknown"
}

// ParseProtocol converts a flag value to a Protocol.
func ParseProtocol(s string) (Protocol, error) {
	switch strings.ToLower(s) {
	case "auto", "":
		return Auto, nil
	case "kitty":
		return Kitty, nil
	case "iterm2", "iterm":
		return ITerm2, nil
	case "blocks", "block":
		return Blocks, nil
	}

	return Auto, fmt.Errorf("unknown terminal protocol %q (valid: auto, kitty, iterm2, blocks)", s)
}

const (
	defaultColumns = 100
	defaultRows    = 30
)

type DisplayOptions struct {
	Protocol Protocol
	// Terminal size in cells; zero asks the terminal, then falls back to 100x30.
	Columns int
	Rows    int
}

// Detect picks a graphics protocol from the environment, Blocks when none is recognized.
func Detect() Protocol {
	switch {
	case rasterm.IsKittyCapable():
		return Kitty
	case rasterm.IsItermCapable():
		return ITerm2
	}

	return Blocks
}

// Display writes img to w using the requested or detected protocol.
func Display(w io.Writer, img *image.RGBA, opts DisplayOptions) error {
	cols, rows := opts.Columns, opts.Rows
	if cols <= 0 || rows <= 0 {
		cols, rows = terminalSize()
	}

	protocol := opts.Protocol
	if protocol == Auto {
		protocol = Detect()
		if protocol == Blocks {
			slog.Warn("no terminal graphics protocol detected, falling back to block characters")
		}
	}

	slog.Debug("sink.Display", "protocol", protocol, "columns", cols, "rows", rows)

	out := bufio.NewWriter(w)

	var err error

	switch protocol {
	case Kitty:
		// The terminal scales the image to cols cells wide.
		err = rasterm.KittyWriteImage(out, img, rasterm.KittyImgOpts{DstCols: uint32(cols)}) //nolint:gosec
	case ITerm2:
		err = rasterm.ItermWriteImage(out, img)
	default:
		err = writeBlocks(out, img, cols, rows)
	}

	if err != nil {
		return err
	}

	if protocol != Blocks {
		if _, err = io.WriteString(out, "\n"); err != nil {
			return err
		}
	}

	return out.Flush()
}

func terminalSize() (int, int) {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if cols, rows, err := term.GetSize(fd); err == nil && cols > 0 && rows > 0 {
			return cols, rows
		}
	}

	return defaultColumns, defaultRows
}

// writeBlocks renders two pixels per cell with the upper half block, foreground on top.
func writeBlocks(w io.Writer, img *image.RGBA, cols, rows int) error {
	src := img.Bounds()

	// Cells are about twice as tall as wide, hence two pixel rows per text row.
	width := min(cols, src.Dx())
	height := max(2, src.Dy()*width/max(src.Dx(), 1))
	height = min(height, rows*2)
	height -= height % 2

	if height*src.Dx() < width*src.Dy() {
		width = max(1, src.Dx()*height/src.Dy())
	}

	scaled := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), img, src, draw.Src, nil)

	var line strings.Builder

	for y := 0; y < height; y += 2 {
		line.Reset()

		for x := range width {
			top := scaled.RGBAAt(x, y)
			bottom := scaled.RGBAAt(x, y+1)
			fmt.Fprintf(&line, "\x1b[38;2;%d;%d;%dm\x1b[48;2;%d;%d;%dm▀", top.R, top.G, top.B, bottom.R, bottom.G, bottom.B)
		}

		line.WriteString("\x1b[0m\n")

		if _, err := io.WriteString(w, line.String()); err != nil {
			return err
		}
	}

	return nil
}
