// Package glyph rasterizes composer labels: white text with a one pixel black outline.
package glyph

import (
	"context"
	"image"
	"image/color"
	"log/slog"
	"os"
	"strings"

	"github.com/fogleman/gg"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/farcloser/sonogram/internal/compose"
	"github.com/farcloser/sonogram/internal/integration/fontconfig"
)

const (
	NormalPoints = 14
	SmallPoints  = 11

	// Builtin is reported by Source when no TrueType font could be loaded.
	Builtin = "builtin"
)

var (
	fill    = color.White
	outline = color.Black

	// Common locations when fontconfig is unavailable.
	systemFonts = []string{
		"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/TTF/DejaVuSans.ttf",
		"/usr/share/fonts/dejavu/DejaVuSans.ttf",
		"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
		"/Library/Fonts/Arial.ttf",
		"/System/Library/Fonts/Supplemental/Arial.ttf",
		`C:\Windows\Fonts\arial.ttf`,
	}
)

type Renderer struct {
	normal font.Face
	small  font.Face
	source string
}

// New loads the first usable font among fontPath, the fontconfig default and common system paths, and falls back
// to the builtin bitmap face.
func New(ctx context.Context, fontPath string) *Renderer {
	candidates := make([]string, 0, len(systemFonts)+2)
	if fontPath != "" {
		candidates = append(candidates, fontPath)
	}

	if matched, err := fontconfig.Match(ctx, "sans"); err == nil {
		candidates = append(candidates, matched)
	} else {
		slog.Debug("glyph.New", "stage", "fontconfig", "error", err)
	}

	candidates = append(candidates, systemFonts...)

	for _, path := range candidates {
		if renderer, err := load(path); err == nil {
			slog.Debug("glyph.New", "stage", "loaded", "font", path)

			return renderer
		} else if path == fontPath {
			slog.Warn("configured font unusable, searching system fonts", "font", path, "error", err)
		}
	}

	slog.Debug("glyph.New", "stage", "fallback", "font", Builtin)

	return Fallback()
}

// Fallback renders with the builtin 7x13 bitmap face at every size.
func Fallback() *Renderer {
	return &Renderer{normal: basicfont.Face7x13, small: basicfont.Face7x13, source: Builtin}
}

func load(path string) (*Renderer, error) {
	// Collections (.ttc) are not supported by the truetype parser.
	if strings.HasSuffix(strings.ToLower(path), ".ttc") {
		return nil, os.ErrInvalid
	}

	normal, err := gg.LoadFontFace(path, NormalPoints)
	if err != nil {
		return nil, err
	}

	small, err := gg.LoadFontFace(path, SmallPoints)
	if err != nil {
		return nil, err
	}

	return &Renderer{normal: normal, small: small, source: path}, nil
}

// Source is the font file in use, or Builtin.
func (r *Renderer) Source() string {
	return r.source
}

// Draw writes every label onto img.
func (r *Renderer) Draw(img *image.RGBA, labels []compose.Label) {
	dc := gg.NewContextForRGBA(img)

	for _, label := range labels {
		face := r.normal
		if label.Small {
			face = r.small
		}

		dc.SetFontFace(face)

		// gg anchors vertically on the baseline: 0 puts the text above y, 1 below.
		ay := 1 - label.AnchorY

		dc.SetColor(outline)

		for ox := -1.0; ox <= 1; ox++ {
			for oy := -1.0; oy <= 1; oy++ {
				if ox != 0 || oy != 0 {
					dc.DrawStringAnchored(label.Text, label.X+ox, label.Y+oy, label.AnchorX, ay)
				}
			}
		}

		dc.SetColor(fill)
		dc.DrawStringAnchored(label.Text, label.X, label.Y, label.AnchorX, ay)
	}
}
