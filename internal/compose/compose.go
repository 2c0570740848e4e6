// Package compose assembles the spectrogram raster: colored body, frequency and time axes, dB legend and the
// rolloff overlay. Text is not rasterized here; the composer only returns what to write and where.
package compose

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"runtime"

	"github.com/fogleman/gg"
	"golang.org/x/sync/errgroup"

	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
	"github.com/farcloser/sonogram/internal/palette"
	"github.com/farcloser/sonogram/internal/types"
)

var (
	ErrInvalidInput = errors.New("invalid composer input")

	background   = color.RGBA{A: 0xff}
	tickColor    = color.RGBA{R: 200, G: 200, B: 200, A: 0xff}
	borderColor  = color.RGBA{R: 150, G: 150, B: 150, A: 0xff}
	RolloffColor = color.RGBA{R: 255, G: 200, B: 50, A: 0xff}
)

const (
	tickLength   = 5
	labelGap     = 3
	minLabelStep = 12 // px between frequency labels
)

type Config struct {
	Width   int
	Height  int
	Palette *palette.Palette
	Range   palette.Range
	Workers int
}

// Input carries everything derived from the signal.
type Input struct {
	// Mapped magnitudes; Rows must equal the body height.
	Rows *types.RowMatrix
	// Global maximum linear magnitude of the unmapped spectrogram.
	Reference float64
	Axis      *freqaxis.Mapper
	Duration  float64
	// Nil or empty disables the overlay.
	Rolloff types.RolloffCurve
	Title   string
}

// Label is text to rasterize at (X, Y). AnchorX and AnchorY place the text relative to that point, (0, 0) being
// top-left and (1, 1) bottom-right.
type Label struct {
	Text    string
	X, Y    float64
	AnchorX float64
	AnchorY float64
	Small   bool
}

type Output struct {
	Image  *image.RGBA
	Labels []Label
	Layout Layout
}

type Composer struct {
	cfg    Config
	layout Layout
}

func New(cfg Config) (*Composer, error) {
	if cfg.Palette == nil {
		return nil, fmt.Errorf("%w: no palette", ErrInvalidInput)
	}

	if err := cfg.Range.Validate(); err != nil {
		return nil, err
	}

	if cfg.Workers <= 0 {
		cfg.Workers = runtime.GOMAXPROCS(0)
	}

	layout, err := NewLayout(cfg.Width, cfg.Height)
	if err != nil {
		return nil, err
	}

	return &Composer{cfg: cfg, layout: layout}, nil
}

// Layout returns the image layout; the frequency mapper must be built with Body.Dy() rows.
func (c *Composer) Layout() Layout {
	return c.layout
}

// Compose renders the raster and the label list.
func (c *Composer) Compose(in Input) (*Output, error) {
	body := c.layout.Body

	if in.Rows == nil || in.Axis == nil {
		return nil, fmt.Errorf("%w: missing matrix or axis", ErrInvalidInput)
	}

	if in.Rows.Rows != body.Dy() || in.Axis.Rows() != body.Dy() {
		return nil, fmt.Errorf("%w: %d rows for a body %d pixels high", ErrInvalidInput, in.Rows.Rows, body.Dy())
	}

	if in.Rows.Frames == 0 {
		return nil, fmt.Errorf("%w: no frames", ErrInvalidInput)
	}

	slog.Debug("compose.Compose", "stage", "start", "image", c.layout.Image, "body", body, "frames", in.Rows.Frames)

	img := image.NewRGBA(c.layout.Image)
	dc := gg.NewContextForRGBA(img)
	dc.SetColor(background)
	dc.Clear()

	colors := palette.Mapper{Palette: c.cfg.Palette, Range: c.cfg.Range, Reference: in.Reference}
	if err := c.paintBody(img, in.Rows, colors); err != nil {
		return nil, err
	}

	if len(in.Rolloff) > 0 {
		c.paintRolloff(img, in.Rolloff, in.Rows.Frames, in.Axis)
	}

	labels := c.paintAxes(dc, in)
	labels = append(labels, c.paintLegend(dc, img)...)

	slog.Debug("compose.Compose", "stage", "done", "labels", len(labels))

	return &Output{Image: img, Labels: labels, Layout: c.layout}, nil
}

// paintBody colors every body pixel. Columns are split into contiguous stripes, one per worker; a column takes the
// maximum of the frames it covers, or repeats the nearest frame when there are fewer frames than columns.
func (c *Composer) paintBody(img *image.RGBA, rows *types.RowMatrix, colors palette.Mapper) error {
	body := c.layout.Body
	width := body.Dx()
	chunk := (width + c.cfg.Workers - 1) / c.cfg.Workers

	var group errgroup.Group

	for start := 0; start < width; start += chunk {
		end := min(start+chunk, width)

		group.Go(func() error {
			column := make([]float64, rows.Rows)

			for x := start; x < end; x++ {
				first := x * rows.Frames / width
				last := max((x+1)*rows.Frames/width, first+1)

				copy(column, rows.Frame(first))

				for f := first + 1; f < last; f++ {
					for r, v := range rows.Frame(f) {
						column[r] = max(column[r], v)
					}
				}

				for r, v := range column {
					img.SetRGBA(body.Min.X+x, body.Max.Y-1-r, colors.Color(v))
				}
			}

			return nil
		})
	}

	return group.Wait()
}

// paintRolloff draws a one pixel wide polyline through the rolloff frequency of every frame.
func (c *Composer) paintRolloff(img *image.RGBA, curve types.RolloffCurve, frames int, axis *freqaxis.Mapper) {
	body := c.layout.Body

	point := func(p types.RolloffPoint) image.Point {
		x := body.Min.X + min(p.Frame*body.Dx()/frames, body.Dx()-1)

		return image.Pt(x, body.Max.Y-1-axis.Row(p.Frequency))
	}

	prev := point(curve[0])
	img.SetRGBA(prev.X, prev.Y, RolloffColor)

	for _, p := range curve[1:] {
		next := point(p)
		line(img, prev, next, RolloffColor)
		prev = next
	}
}

// line is Bresenham's algorithm; it sets exactly one pixel per step along the major axis.
func line(img *image.RGBA, from, to image.Point, col color.RGBA) {
	dx := abs(to.X - from.X)
	dy := -abs(to.Y - from.Y)
	sx, sy := sign(to.X-from.X), sign(to.Y-from.Y)
	e := dx + dy

	for x, y := from.X, from.Y; ; {
		img.SetRGBA(x, y, col)

		if x == to.X && y == to.Y {
			return
		}

		e2 := 2 * e
		if e2 >= dy {
			e += dy
			x += sx
		}

		if e2 <= dx {
			e += dx
			y += sy
		}
	}
}

func (c *Composer) paintAxes(dc *gg.Context, in Input) []Label {
	body := c.layout.Body
	left := float64(body.Min.X)
	bottom := float64(body.Max.Y)

	var labels []Label

	dc.SetColor(tickColor)
	dc.SetLineWidth(1)
	dc.SetLineCapButt()

	lastY := bottom + minLabelStep

	for _, tick := range FrequencyTicks(in.Axis) {
		y := bottom - 1 - min(tick.Offset, float64(body.Dy()-1))
		if lastY-y < minLabelStep {
			continue
		}

		lastY = y

		dc.DrawLine(left-tickLength, y+0.5, left, y+0.5)
		dc.Stroke()

		labels = append(labels, Label{Text: tick.Label, X: left - tickLength - labelGap, Y: y, AnchorX: 1, AnchorY: 0.5})
	}

	for _, tick := range TimeTicks(in.Duration, body.Dx()) {
		x := left + min(tick.Offset, float64(body.Dx()-1))

		dc.DrawLine(x+0.5, bottom, x+0.5, bottom+tickLength)
		dc.Stroke()

		labels = append(labels, Label{Text: tick.Label, X: x, Y: bottom + tickLength + labelGap, AnchorX: 0.5})
	}

	scale := "LOG"
	if in.Axis.Scale() == freqaxis.Linear {
		scale = "LINEAR"
	}

	top := float64(body.Min.Y) - labelGap

	labels = append(labels,
		Label{Text: "Hz", X: labelGap, Y: top, AnchorY: 1, Small: true},
		Label{Text: "Time", X: labelGap, Y: bottom + tickLength + labelGap, Small: true},
		Label{Text: scale, X: float64(body.Max.X), Y: top, AnchorX: 1, AnchorY: 1, Small: true},
	)

	if in.Title != "" {
		labels = append(labels, Label{Text: in.Title, X: left + float64(body.Dx())/2, Y: top, AnchorX: 0.5, AnchorY: 1})
	}

	return labels
}

// paintLegend draws the color bar, highest level on top. The border sits outside the bar so its first and last
// rows are the two ends of the gradient.
func (c *Composer) paintLegend(dc *gg.Context, img *image.RGBA) []Label {
	bar := c.layout.Legend
	height := bar.Dy()

	dc.SetColor(borderColor)
	dc.SetLineWidth(1)
	dc.DrawRectangle(float64(bar.Min.X)-0.5, float64(bar.Min.Y)-0.5, float64(bar.Dx())+1, float64(height)+1)
	dc.Stroke()

	for j := range height {
		level := 1 - float64(j)/float64(max(height-1, 1))
		col := c.cfg.Palette.At(level)

		for x := bar.Min.X; x < bar.Max.X; x++ {
			img.SetRGBA(x, bar.Min.Y+j, col)
		}
	}

	rng := c.cfg.Range
	x := float64(bar.Max.X + labelGap + 1)

	return []Label{
		{Text: fmt.Sprintf("%.0fdB", rng.MaxDb), X: x, Y: float64(bar.Min.Y), AnchorY: 0.5, Small: true},
		{Text: fmt.Sprintf("%.0f", (rng.MaxDb+rng.MinDb)/2), X: x, Y: float64(bar.Min.Y + height/2), AnchorY: 0.5, Small: true},
		{Text: fmt.Sprintf("%.0f", rng.MinDb), X: x, Y: float64(bar.Max.Y - 1), AnchorY: 0.5, Small: true},
	}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}

	return v
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}

	return 0
}
