package compose_test

import (
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/farcloser/sonogram/internal/compose"
	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
	"github.com/farcloser/sonogram/internal/palette"
	"github.com/farcloser/sonogram/internal/types"
)

type fixture struct {
	composer *compose.Composer
	palette  *palette.Palette
	axis     *freqaxis.Mapper
}

func newFixture(t *testing.T, width, height int, scale freqaxis.Scale) fixture {
	t.Helper()

	pal, err := palette.Named(palette.Default)
	if err != nil {
		t.Fatal(err)
	}

	composer, err := compose.New(compose.Config{Width: width, Height: height, Palette: pal, Range: palette.DefaultRange})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	axis, err := freqaxis.New(freqaxis.Config{
		Scale:      scale,
		Rows:       composer.Layout().Body.Dy(),
		SampleRate: 44100,
		FrameSize:  2048,
	})
	if err != nil {
		t.Fatalf("freqaxis.New: %v", err)
	}

	return fixture{composer: composer, palette: pal, axis: axis}
}

func TestComposeExactSizeAndLegend(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, 2048, 1024, freqaxis.Linear)

	rows := types.NewRowMatrix(300, fx.axis.Rows())
	for i := range rows.Data {
		rows.Data[i] = float64(i%97) / 96
	}

	out, err := fx.composer.Compose(compose.Input{Rows: rows, Reference: 1, Axis: fx.axis, Duration: 3.5})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	if got := out.Image.Bounds(); got != image.Rect(0, 0, 2048, 1024) {
		t.Fatalf("bounds = %v, want 2048x1024", got)
	}

	bar := out.Layout.Legend
	if got, want := out.Image.RGBAAt(bar.Min.X, bar.Min.Y), fx.palette.At(1); got != want {
		t.Errorf("legend top = %v, want %v", got, want)
	}

	if got, want := out.Image.RGBAAt(bar.Min.X, bar.Max.Y-1), fx.palette.At(0); got != want {
		t.Errorf("legend bottom = %v, want %v", got, want)
	}

	texts := make([]string, 0, len(out.Labels))
	for _, l := range out.Labels {
		texts = append(texts, l.Text)
	}

	for _, want := range []string{"LINEAR", "Hz", "Time", "0dB", "-50", "-100", "5k", "0:00"} {
		if !slices.Contains(texts, want) {
			t.Errorf("labels %v lack %q", texts, want)
		}
	}
}

func TestComposeSilenceIsFloorColor(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, 400, 300, freqaxis.Log)

	rows := types.NewRowMatrix(83, fx.axis.Rows())

	out, err := fx.composer.Compose(compose.Input{Rows: rows, Reference: 0, Axis: fx.axis, Duration: 1})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	floor := fx.palette.At(0)
	body := out.Layout.Body

	for y := body.Min.Y; y < body.Max.Y; y++ {
		for x := body.Min.X; x < body.Max.X; x++ {
			if got := out.Image.RGBAAt(x, y); got != floor {
				t.Fatalf("pixel (%d, %d) = %v, want %v", x, y, got, floor)
			}
		}
	}
}

func TestComposeRolloffOverlay(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, 400, 300, freqaxis.Log)

	frames := 50
	rows := types.NewRowMatrix(frames, fx.axis.Rows())

	curve := make(types.RolloffCurve, frames)
	for i := range curve {
		curve[i] = types.RolloffPoint{Frame: i, Frequency: 1000}
	}

	out, err := fx.composer.Compose(compose.Input{Rows: rows, Axis: fx.axis, Duration: 1, Rolloff: curve})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}

	body := out.Layout.Body
	y := body.Max.Y - 1 - fx.axis.Row(1000)

	for x := body.Min.X; x < body.Min.X+body.Dx()*(frames-1)/frames; x++ {
		if got := out.Image.RGBAAt(x, y); got != compose.RolloffColor {
			t.Fatalf("pixel (%d, %d) = %v, want rolloff color", x, y, got)
		}

		if got := out.Image.RGBAAt(x, y-1); got == compose.RolloffColor {
			t.Fatalf("overlay thicker than one pixel at x=%d", x)
		}
	}
}

func TestComposeRejectsMismatchedRows(t *testing.T) {
	t.Parallel()

	fx := newFixture(t, 400, 300, freqaxis.Log)

	_, err := fx.composer.Compose(compose.Input{Rows: types.NewRowMatrix(10, 7), Axis: fx.axis})
	if !errors.Is(err, compose.ErrInvalidInput) {
		t.Errorf("error = %v, want ErrInvalidInput", err)
	}
}

func TestNewLayoutTooSmall(t *testing.T) {
	t.Parallel()

	for _, size := range []image.Point{
		{100, 40},
		{100, 1024},
		{60, 1024},
		{2048, 30},
		{compose.MinWidth - 1, 1024},
		{2048, compose.MinHeight - 1},
	} {
		if _, err := compose.NewLayout(size.X, size.Y); !errors.Is(err, compose.ErrTooSmall) {
			t.Errorf("%dx%d: error = %v, want ErrTooSmall", size.X, size.Y, err)
		}
	}

	for _, size := range []image.Point{{compose.MinWidth, compose.MinHeight}, {2048, 1024}} {
		layout, err := compose.NewLayout(size.X, size.Y)
		if err != nil {
			t.Fatalf("%dx%d: %v", size.X, size.Y, err)
		}

		if !layout.Body.In(layout.Image) || !layout.Legend.In(layout.Image) || layout.Legend.Overlaps(layout.Body) {
			t.Errorf("%dx%d: bad layout %+v", size.X, size.Y, layout)
		}
	}
}

func TestFrequencyTicks(t *testing.T) {
	t.Parallel()

	linear := newFixture(t, 400, 300, freqaxis.Linear).axis

	var got []string
	for _, tick := range compose.FrequencyTicks(linear) {
		got = append(got, tick.Label)
	}

	if want := []string{"0", "5k", "10k", "15k", "20k"}; !slices.Equal(got, want) {
		t.Errorf("linear ticks = %v, want %v", got, want)
	}

	ticks := compose.FrequencyTicks(newFixture(t, 400, 300, freqaxis.Log).axis)
	if len(ticks) != 9 || ticks[0].Label != "50" || ticks[8].Label != "20k" {
		t.Errorf("log ticks = %v", ticks)
	}

	for i := 1; i < len(ticks); i++ {
		if ticks[i].Offset <= ticks[i-1].Offset {
			t.Errorf("tick %s not above %s", ticks[i].Label, ticks[i-1].Label)
		}
	}
}

func TestTimeTicks(t *testing.T) {
	t.Parallel()

	ticks := compose.TimeTicks(60, 1920)
	if len(ticks) != 7 || ticks[1].Label != "0:10" || ticks[6].Label != "1:00" {
		t.Errorf("ticks = %v", ticks)
	}

	if compose.TimeTicks(0, 100) != nil {
		t.Error("ticks for empty duration")
	}

	if got := compose.FormatTime(754.9); got != "12:34" {
		t.Errorf("FormatTime = %s", got)
	}
}
