//nolint:wrapcheck
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/farcloser/primordium/format"

	"github.com/farcloser/sonogram"
	"github.com/farcloser/sonogram/internal/observe"
	"github.com/farcloser/sonogram/internal/output"
	"github.com/farcloser/sonogram/internal/types"
)

func outputResult(
	filePath string,
	result *sonogram.Result,
	timings []observe.StageDuration,
	formatName string,
	debug bool,
) error {
	var meta map[string]any
	if debug {
		meta = output.ResultToMap(result, timings)
	} else {
		meta = buildFriendlyOutput(result)
	}

	return printData(filePath, meta, formatName)
}

func outputTimings(filePath string, timings []observe.StageDuration, formatName string) error {
	return printData(filePath, map[string]any{"timings": output.TimingsToMap(timings)}, formatName)
}

func printData(object string, meta map[string]any, formatName string) error {
	formatter, err := format.GetFormatter(formatName)
	if err != nil {
		return err
	}

	return formatter.PrintAll([]*format.Data{{Object: object, Meta: meta}}, os.Stdout)
}

// buildFriendlyOutput summarizes the source file and the authenticity verdict.
func buildFriendlyOutput(result *sonogram.Result) map[string]any {
	meta := map[string]any{
		"summary": fmt.Sprintf("%d issues found (worst: %s)", result.IssueCount, result.WorstSeverity),
	}

	if props := buildProperties(result.Metadata); len(props) > 0 {
		meta["file"] = props
	}

	issues := make([]any, 0, len(result.Issues))
	for _, issue := range result.Issues {
		marker := "  "
		if issue.Detected {
			marker = "!!"
		}

		issues = append(issues, fmt.Sprintf("%s [%s] %s: %s (%.0f%% confidence)",
			marker, issue.Severity, issue.Check, issue.Summary, issue.Confidence*100))
	}

	if len(issues) > 0 {
		meta["issues"] = issues
	}

	if r := result.Transcode; r != nil {
		meta["spectrum"] = map[string]any{
			"median_rolloff":    fmt.Sprintf("%.0f Hz", r.MedianRolloff),
			"spectral_centroid": fmt.Sprintf("%.0f Hz", r.SpectralCentroid),
		}
	}

	return meta
}

func buildProperties(meta *types.AudioMetadata) map[string]any {
	if meta == nil {
		return nil
	}

	props := map[string]any{
		"name":        filepath.Base(meta.Path),
		"codec":       meta.Codec,
		"duration":    formatDuration(meta.Duration),
		"sample_rate": fmt.Sprintf("%d Hz", meta.SampleRate),
		"channels":    channelsLabel(meta),
	}

	if r := meta.BitDepth; r != nil && r.Claimed != r.Effective {
		props["bit_depth"] = fmt.Sprintf("%d-bit (effective: %d-bit)", r.Claimed, r.Effective)
	} else if meta.BitsPerSample > 0 {
		props["bit_depth"] = fmt.Sprintf("%d-bit", meta.BitsPerSample)
	}

	if meta.BitRate > 0 {
		props["bit_rate"] = fmt.Sprintf("%d kb/s", meta.BitRate/1000)
	}

	return props
}

func channelsLabel(meta *types.AudioMetadata) string {
	if meta.ChannelLayout == "" {
		return fmt.Sprint(meta.Channels)
	}

	return fmt.Sprintf("%d (%s)", meta.Channels, meta.ChannelLayout)
}

// formatDuration renders seconds as m:ss.mmm, or h:mm:ss.mmm past an hour.
func formatDuration(seconds float64) string {
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3_600_000
	m := millis / 60_000 % 60
	s := millis / 1000 % 60
	ms := millis % 1000

	var b strings.Builder
	if h > 0 {
		fmt.Fprintf(&b, "%d:%02d:", h, m)
	} else {
		fmt.Fprintf(&b, "%d:", m)
	}

	fmt.Fprintf(&b, "%02d.%03d", s, ms)

	return b.String()
}
