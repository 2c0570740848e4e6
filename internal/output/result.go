// Package output provides shared report serialization for sonogram's console, JSON and markdown output.
package output

import (
	"time"

	"github.com/farcloser/sonogram"
	"github.com/farcloser/sonogram/internal/observe"
	"github.com/farcloser/sonogram/internal/types"
)

// ResultToMap converts a render result into the canonical map structure used for JSON serialization.
func ResultToMap(result *sonogram.Result, timings []observe.StageDuration) map[string]any {
	meta := map[string]any{
		"summary": map[string]any{
			"issue_count":    result.IssueCount,
			"worst_severity": result.WorstSeverity.String(),
		},
	}

	issues := make([]any, 0, len(result.Issues))
	for _, issue := range result.Issues {
		issues = append(issues, map[string]any{
			"check":      issue.Check.String(),
			"detected":   issue.Detected,
			"severity":   issue.Severity.String(),
			"summary":    issue.Summary,
			"confidence": issue.Confidence,
		})
	}

	meta["issues"] = issues

	if r := result.Metadata; r != nil {
		meta["file"] = MetadataToMap(r)
	}

	if r := result.Transcode; r != nil {
		meta["spectral"] = TranscodeToMap(r)
	}

	if r := result.Spectrogram; r != nil {
		bounds := result.Layout.Image

		meta["spectrogram"] = map[string]any{
			"width":        bounds.Dx(),
			"height":       bounds.Dy(),
			"rows":         result.Layout.Body.Dy(),
			"columns":      result.Layout.Body.Dx(),
			"frames":       r.Frames,
			"bins":         r.Bins,
			"frame_size":   r.FrameSize,
			"hop_size":     r.HopSize,
			"reference":    result.Reference,
			"bin_width_hz": r.BinHz(),
		}
	}

	if len(timings) > 0 {
		meta["timings"] = TimingsToMap(timings)
	}

	return meta
}

// MetadataToMap converts the source description to a map.
func MetadataToMap(meta *types.AudioMetadata) map[string]any {
	out := map[string]any{
		"path":         meta.Path,
		"codec":        meta.Codec,
		"sample_rate":  meta.SampleRate,
		"channels":     meta.Channels,
		"duration_sec": meta.Duration,
		"frames":       meta.Frames,
	}

	if meta.ChannelLayout != "" {
		out["channel_layout"] = meta.ChannelLayout
	}

	if meta.BitsPerSample > 0 {
		out["bits_per_sample"] = meta.BitsPerSample
	}

	if meta.BitRate > 0 {
		out["bit_rate"] = meta.BitRate
	}

	if r := meta.BitDepth; r != nil {
		out["bit_depth"] = map[string]any{
			"claimed":   int(r.Claimed),   //nolint:gosec // audio format values are small constants
			"effective": int(r.Effective), //nolint:gosec // audio format values are small constants
			"is_padded": r.IsPadded,
			"samples":   r.Samples,
		}
	}

	return out
}

// TranscodeToMap converts the brick-wall analysis to a map.
func TranscodeToMap(result *types.TranscodeResult) map[string]any {
	meta := map[string]any{
		"claimed_rate":      result.ClaimedRate,
		"is_upsampled":      result.IsUpsampled,
		"is_transcode":      result.IsTranscode,
		"spectral_centroid": result.SpectralCentroid,
		"median_rolloff":    result.MedianRolloff,
		"frames":            result.Frames,
	}

	if result.IsUpsampled {
		meta["effective_rate"] = result.EffectiveRate
		meta["upsample_cutoff"] = result.UpsampleCutoff
		meta["upsample_sharpness"] = result.UpsampleSharpness
	}

	if result.IsTranscode {
		meta["transcode_cutoff"] = result.TranscodeCutoff
		meta["transcode_sharpness"] = result.TranscodeSharpness
		meta["likely_codec"] = result.LikelyCodec
	}

	return meta
}

// TimingsToMap converts stage durations to a map of milliseconds. Repeated stages are summed.
func TimingsToMap(timings []observe.StageDuration) map[string]any {
	totals := make(map[observe.Stage]time.Duration, len(timings))
	for _, t := range timings {
		totals[t.Stage] += t.Duration
	}

	out := make(map[string]any, len(totals))
	for stage, d := range totals {
		out[string(stage)+"_ms"] = float64(d.Microseconds()) / 1000
	}

	return out
}
