// Package transcode looks for the brick-wall lowpass lossy encoders and resamplers leave in the averaged spectrum.
package transcode

import (
	"log/slog"
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/farcloser/sonogram/internal/types"
)

const (
	floorDb = -120

	// Minimum level drop across a candidate cutoff, and steepness in dB/octave, to call it a brick wall.
	transcodeDrop      = 15
	transcodeSharpness = 30
	upsampleDrop       = 20
	upsampleSharpness  = 40

	// Cutoffs this close to an upsampling wall belong to the resampler, not an encoder.
	upsampleGuardHz = 2000
)

var transcodeCutoffs = []struct {
	freq  float64
	codec string
}{
	{15500, "AAC 128"},
	{16000, "MP3 128"},
	{17500, "MP3 160"},
	{18000, "MP3 192 / AAC 192"},
	{19000, "MP3 256 / AAC 256"},
	{20000, "MP3 320"},
	{20500, "Opus 128"},
}

var upsampleNyquists = []struct {
	rate    int
	nyquist float64
}{
	{44100, 22050},
	{48000, 24000},
	{88200, 44100},
	{96000, 48000},
}

// Analyze averages the spectrogram over time and inspects it. medianRolloff is carried into the result.
func Analyze(spec *types.Spectrogram, medianRolloff float64) *types.TranscodeResult {
	result := &types.TranscodeResult{
		ClaimedRate:   spec.SampleRate,
		MedianRolloff: medianRolloff,
		Frames:        spec.Frames,
	}

	if spec.Frames == 0 {
		return result
	}

	average := make([]float64, spec.Bins)
	for i := range spec.Frames {
		floats.Add(average, spec.Frame(i))
	}

	floats.Scale(1/float64(spec.Frames), average)

	binHz := spec.BinHz()
	nyquist := spec.Nyquist()
	magDb := toDb(average)

	if spec.SampleRate > 44100 {
		detectUpsampling(result, magDb, binHz, nyquist)
	}

	detectTranscode(result, magDb, binHz, nyquist)

	result.SpectralCentroid = centroid(average, binHz)

	slog.Debug("transcode.Analyze", "transcode", result.IsTranscode, "codec", result.LikelyCodec,
		"upsampled", result.IsUpsampled, "centroid", result.SpectralCentroid)

	return result
}

func toDb(magnitude []float64) []float64 {
	db := make([]float64, len(magnitude))

	for i, m := range magnitude {
		if m > 0 {
			db[i] = 20 * math.Log10(m)
		} else {
			db[i] = floorDb
		}
	}

	return db
}

func bandAverage(magDb []float64, startHz, endHz, binHz float64) float64 {
	startBin := max(int(startHz/binHz), 0)
	endBin := min(int(endHz/binHz), len(magDb)-1)

	if startBin > endBin {
		return floorDb
	}

	return floats.Sum(magDb[startBin:endBin+1]) / float64(endBin-startBin+1)
}

// brickWall compares the 1 kHz bands on each side of checkFreq, 500 Hz away from it.
func brickWall(magDb []float64, checkFreq, binHz float64) (drop, sharpness float64) {
	below := bandAverage(magDb, checkFreq-1500, checkFreq-500, binHz)
	above := bandAverage(magDb, checkFreq+500, checkFreq+1500, binHz)

	drop = below - above

	if drop > 10 {
		sharpness = drop / math.Log2((checkFreq+1000)/(checkFreq-1000))
	}

	return drop, sharpness
}

func detectUpsampling(result *types.TranscodeResult, magDb []float64, binHz, nyquist float64) {
	var (
		bestSharpness float64
		bestCutoff    float64
		bestRate      int
	)

	for _, sr := range upsampleNyquists {
		if sr.nyquist >= nyquist {
			continue
		}

		drop, sharpness := brickWall(magDb, sr.nyquist, binHz)
		if drop > upsampleDrop && sharpness > bestSharpness {
			bestSharpness = sharpness
			bestCutoff = sr.nyquist
			bestRate = sr.rate
		}
	}

	if bestSharpness > upsampleSharpness {
		result.IsUpsampled = true
		result.EffectiveRate = bestRate
		result.UpsampleCutoff = bestCutoff
		result.UpsampleSharpness = bestSharpness
	}
}

func detectTranscode(result *types.TranscodeResult, magDb []float64, binHz, nyquist float64) {
	var (
		bestSharpness float64
		bestCutoff    float64
		bestCodec     string
	)

	for _, tc := range transcodeCutoffs {
		// The band above the cutoff must exist.
		if tc.freq+1500 >= nyquist {
			continue
		}

		if result.IsUpsampled && math.Abs(tc.freq-result.UpsampleCutoff) < upsampleGuardHz {
			continue
		}

		drop, sharpness := brickWall(magDb, tc.freq, binHz)
		if drop > transcodeDrop && sharpness > bestSharpness {
			bestSharpness = sharpness
			bestCutoff = tc.freq
			bestCodec = tc.codec
		}
	}

	if bestSharpness > transcodeSharpness {
		result.IsTranscode = true
		result.TranscodeCutoff = bestCutoff
		result.TranscodeSharpness = bestSharpness
		result.LikelyCodec = bestCodec
	}
}

func centroid(magnitude []float64, binHz float64) float64 {
	var weighted float64

	for i, mag := range magnitude {
		weighted += float64(i) * binHz * mag
	}

	total := floats.Sum(magnitude)
	if total == 0 {
		return 0
	}

	return weighted / total
}
