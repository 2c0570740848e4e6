package output_test

import (
	"testing"
	"time"

	"github.com/farcloser/sonogram"
	"github.com/farcloser/sonogram/internal/observe"
	"github.com/farcloser/sonogram/internal/output"
	"github.com/farcloser/sonogram/internal/types"
)

func TestMetadataToMapOmitsUnknowns(t *testing.T) {
	t.Parallel()

	meta := output.MetadataToMap(&types.AudioMetadata{Path: "a.mp3", Codec: "mp3", SampleRate: 44100, Channels: 2})

	for _, key := range []string{"bits_per_sample", "bit_rate", "bit_depth", "channel_layout"} {
		if _, ok := meta[key]; ok {
			t.Errorf("%s present for a lossy source", key)
		}
	}

	if meta["codec"] != "mp3" {
		t.Errorf("codec = %v", meta["codec"])
	}
}

func TestTranscodeToMap(t *testing.T) {
	t.Parallel()

	meta := output.TranscodeToMap(&types.TranscodeResult{
		ClaimedRate:     44100,
		IsTranscode:     true,
		TranscodeCutoff: 16000,
		LikelyCodec:     "MP3 128",
	})

	if meta["likely_codec"] != "MP3 128" || meta["transcode_cutoff"] != 16000.0 {
		t.Errorf("map = %v", meta)
	}

	if _, ok := meta["effective_rate"]; ok {
		t.Error("effective_rate present without upsampling")
	}
}

func TestTimingsToMapSumsStages(t *testing.T) {
	t.Parallel()

	meta := output.TimingsToMap([]observe.StageDuration{
		{Stage: observe.StageSTFT, Duration: 1500 * time.Microsecond},
		{Stage: observe.StageSTFT, Duration: 500 * time.Microsecond},
		{Stage: observe.StageTotal, Duration: time.Second},
	})

	if meta["stft_ms"] != 2.0 || meta["total_ms"] != 1000.0 {
		t.Errorf("map = %v", meta)
	}
}

func TestResultToMapSummary(t *testing.T) {
	t.Parallel()

	result := &sonogram.Result{
		Issues:        []sonogram.Issue{{Check: sonogram.CheckLossyTranscode, Detected: true, Severity: sonogram.SeveritySevere}},
		IssueCount:    1,
		WorstSeverity: sonogram.SeveritySevere,
	}

	meta := output.ResultToMap(result, nil)

	summary, ok := meta["summary"].(map[string]any)
	if !ok || summary["worst_severity"] != "severe" || summary["issue_count"] != 1 {
		t.Errorf("summary = %v", meta["summary"])
	}

	if _, ok := meta["timings"]; ok {
		t.Error("timings present without measurements")
	}
}
