// Package observe records how long each pipeline stage takes, through an OpenTelemetry histogram and an in-process
// copy used for the verbose timing report.
package observe

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	meterName  = "github.com/farcloser/sonogram"
	metricName = "sonogram.stage.duration"
)

type Stage string

const (
	StageDecode  Stage = "decode"
	StageSTFT    Stage = "stft"
	StageMap     Stage = "map"
	StageRolloff Stage = "rolloff"
	StageAudit   Stage = "audit"
	StageCompose Stage = "compose"
	StageOutput  Stage = "output"
	StageTotal   Stage = "total"
)

// stageBuckets are in seconds.
var stageBuckets = []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30}

type StageDuration struct {
	Stage    Stage
	Duration time.Duration
}

// Timings is safe for concurrent use. A nil *Timings records nothing.
type Timings struct {
	histogram metric.Float64Histogram

	mu       sync.Mutex
	recorded []StageDuration
}

// NewTimings registers the histogram on mp, or on the global provider when mp is nil.
func NewTimings(mp metric.MeterProvider) (*Timings, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}

	histogram, err := mp.Meter(meterName).Float64Histogram(metricName,
		metric.WithDescription("Duration of a spectrogram pipeline stage."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(stageBuckets...),
	)
	if err != nil {
		return nil, err
	}

	return &Timings{histogram: histogram}, nil
}

// Record adds one measurement.
func (t *Timings) Record(ctx context.Context, stage Stage, d time.Duration) {
	if t == nil {
		return
	}

	t.histogram.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String("stage", string(stage))))

	t.mu.Lock()
	defer t.mu.Unlock()

	t.recorded = append(t.recorded, StageDuration{Stage: stage, Duration: d})
}

// Track starts a measurement; calling the returned function records it.
func (t *Timings) Track(ctx context.Context, stage Stage) func() {
	start := time.Now()

	return func() {
		t.Record(ctx, stage, time.Since(start))
	}
}

// Durations returns the measurements in the order they were recorded.
func (t *Timings) Durations() []StageDuration {
	if t == nil {
		return nil
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	return append([]StageDuration(nil), t.recorded...)
}
