package sonogram

import (
	"fmt"

	"github.com/farcloser/sonogram/internal/types"
)

// Check is an authenticity check run on every render.
type Check int

const (
	CheckFakeBitDepth Check = 1 << iota
	CheckFakeSampleRate
	CheckLossyTranscode
)

func (c Check) String() string {
	switch c {
	case CheckFakeBitDepth:
		return "fake-bit-depth"
	case CheckFakeSampleRate:
		return "fake-sample-rate"
	case CheckLossyTranscode:
		return "lossy-transcode"
	}

	return "unknown"
}

// Severity indicates how bad a detected issue is.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
)

func (s Severity) String() string {
	switch s {
	case SeverityNone:
		return "no issue"
	case SeverityMild:
		return "mild"
	case SeverityModerate:
		return "moderate"
	case SeveritySevere:
		return "severe"
	}

	return "unknown"
}

// Issue represents a detected problem.
type Issue struct {
	Check      Check
	Detected   bool
	Severity   Severity
	Summary    string  // human-readable summary
	Confidence float64 // 0.0-1.0
}

const (
	transcodeSharpnessDb = 30
	upsampleSharpnessDb  = 40
)

// judge fills the verdict from the transcode analysis and, for integer sources, the bit depth analysis.
func judge(result *Result) {
	if meta := result.Metadata; meta != nil && meta.BitDepth != nil {
		result.Issues = append(result.Issues, bitDepthIssue(meta.BitDepth))
	}

	if spectral := result.Transcode; spectral != nil {
		result.Issues = append(result.Issues, sampleRateIssue(spectral), transcodeIssue(spectral))
	}

	for _, issue := range result.Issues {
		if issue.Detected {
			result.IssueCount++
		}

		if issue.Severity > result.WorstSeverity {
			result.WorstSeverity = issue.Severity
		}
	}
}

func bitDepthIssue(depth *types.BitDepthAuthenticity) Issue {
	if depth.IsPadded {
		return Issue{
			Check:      CheckFakeBitDepth,
			Detected:   true,
			Severity:   SeveritySevere,
			Summary:    fmt.Sprintf("Fake %d-bit: actually %d-bit (zero-padded)", depth.Claimed, depth.Effective),
			Confidence: 1.0,
		}
	}

	return Issue{
		Check:      CheckFakeBitDepth,
		Summary:    fmt.Sprintf("Genuine %d-bit", depth.Claimed),
		Confidence: 1.0,
	}
}

func sampleRateIssue(spectral *types.TranscodeResult) Issue {
	issue := Issue{
		Check:      CheckFakeSampleRate,
		Detected:   spectral.IsUpsampled,
		Confidence: boolToConfidence(spectral.UpsampleSharpness > upsampleSharpnessDb),
	}

	if issue.Detected {
		issue.Severity = SeveritySevere
		issue.Summary = fmt.Sprintf("Fake %d Hz: upsampled from %d Hz", spectral.ClaimedRate, spectral.EffectiveRate)

		return issue
	}

	issue.Summary = fmt.Sprintf("Genuine %d Hz", spectral.ClaimedRate)

	// Base rates have no standard lower rate to be upsampled from.
	if spectral.ClaimedRate <= 48000 {
		issue.Confidence = 1.0
	}

	return issue
}

func transcodeIssue(spectral *types.TranscodeResult) Issue {
	issue := Issue{
		Check:      CheckLossyTranscode,
		Detected:   spectral.IsTranscode,
		Summary:    "No lossy transcode detected",
		Confidence: boolToConfidence(spectral.TranscodeSharpness > transcodeSharpnessDb),
	}

	if issue.Detected {
		issue.Severity = SeveritySevere
		issue.Summary = fmt.Sprintf("Lossy transcode detected: likely %s (cutoff %.0f Hz)",
			spectral.LikelyCodec, spectral.TranscodeCutoff)
	}

	return issue
}

func boolToConfidence(b bool) float64 {
	if b {
		return 0.95
	}

	return 0.5
}
