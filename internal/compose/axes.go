package compose

import (
	"fmt"
	"math"

	"github.com/farcloser/sonogram/internal/dsp/freqaxis"
)

const (
	maxTicks       = 10
	minTickSpacing = 60 // px between time labels
)

var (
	logTicks      = []float64{50, 100, 200, 500, 1000, 2000, 5000, 10000, 20000}
	linearSteps   = []float64{1000, 2000, 5000, 10000, 20000, 50000}
	timeStepsSecs = []float64{1, 2, 5, 10, 15, 30, 60, 120, 300, 600, 900, 1800, 3600}
)

// Tick is a labelled position along an axis; Offset is in pixels from the axis origin.
type Tick struct {
	Value  float64
	Offset float64
	Label  string
}

// FrequencyTicks returns the ticks of the vertical axis, bottom to top. Offset is the row position.
func FrequencyTicks(axis *freqaxis.Mapper) []Tick {
	var values []float64

	nyquist := axis.Nyquist()

	if axis.Scale() == freqaxis.Linear {
		step := linearSteps[len(linearSteps)-1]

		for _, s := range linearSteps {
			if nyquist/s <= maxTicks {
				step = s

				break
			}
		}

		for f := 0.0; f <= nyquist; f += step {
			values = append(values, f)
		}
	} else {
		for _, f := range logTicks {
			if f >= axis.MinFrequency() && f <= nyquist {
				values = append(values, f)
			}
		}
	}

	ticks := make([]Tick, 0, len(values))
	for _, f := range values {
		ticks = append(ticks, Tick{Value: f, Offset: axis.Position(f), Label: FormatFrequency(f)})
	}

	return ticks
}

// TimeTicks returns the ticks of the horizontal axis for a body of the given width.
func TimeTicks(duration float64, width int) []Tick {
	if duration <= 0 || width <= 0 {
		return nil
	}

	limit := float64(min(maxTicks, max(1, width/minTickSpacing)))

	step := timeStepsSecs[len(timeStepsSecs)-1]
	for _, s := range timeStepsSecs {
		if duration/s <= limit {
			step = s

			break
		}
	}

	var ticks []Tick
	for t := 0.0; t <= duration; t += step {
		ticks = append(ticks, Tick{Value: t, Offset: t / duration * float64(width), Label: FormatTime(t)})
	}

	return ticks
}

// FormatFrequency renders 500 as "500" and 5000 as "5k".
func FormatFrequency(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%gk", hz/1000)
	}

	return fmt.Sprintf("%.0f", hz)
}

// FormatTime renders seconds as m:ss.
func FormatTime(secs float64) string {
	whole := int(math.Floor(secs))

	return fmt.Sprintf("%d:%02d", whole/60, whole%60)
}
