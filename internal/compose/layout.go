package compose

import (
	"errors"
	"fmt"
	"image"
)

const (
	marginLeft   = 56
	marginTop    = 24
	marginBottom = 28
	legendWidth  = 70

	barPad    = 10
	barWidth  = 15
	barInset  = 8
	minBodyPx = 16
)

var ErrTooSmall = errors.New("image too small")

// Layout places the body and the legend bar inside the image. All rectangles are half-open.
type Layout struct {
	Image  image.Rectangle
	Body   image.Rectangle
	Legend image.Rectangle
}

// MinWidth and MinHeight are the smallest image dimensions NewLayout accepts.
const (
	MinWidth  = marginLeft + legendWidth + minBodyPx
	MinHeight = marginTop + marginBottom + 2*barInset + minBodyPx
)

// NewLayout computes the layout of a width x height image.
func NewLayout(width, height int) (Layout, error) {
	// image.Rect canonicalizes swapped corners, so the raw dimensions are checked first.
	if width < MinWidth || height < MinHeight {
		return Layout{}, fmt.Errorf("%w: %dx%d leaves no room for the spectrogram (minimum %dx%d)",
			ErrTooSmall, width, height, MinWidth, MinHeight)
	}

	body := image.Rect(marginLeft, marginTop, width-legendWidth, height-marginBottom)
	barX := body.Max.X + barPad

	return Layout{
		Image:  image.Rect(0, 0, width, height),
		Body:   body,
		Legend: image.Rect(barX, body.Min.Y+barInset, barX+barWidth, body.Max.Y-barInset),
	}, nil
}
