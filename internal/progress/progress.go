// Package progress draws decode progress bars on stderr. A nil *Progress or *Bar is valid and draws nothing.
package progress

import (
	"io"

	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

const barWidth = 64

type Progress struct {
	container *mpb.Progress
}

// New returns nil when disabled.
func New(w io.Writer, enabled bool) *Progress {
	if !enabled {
		return nil
	}

	return &Progress{container: mpb.New(mpb.WithOutput(w), mpb.WithWidth(barWidth))}
}

// Bar tracks a count of sample frames; total may be 0 when unknown.
type Bar struct {
	bar *mpb.Bar
}

// Frames adds a bar counting decoded sample frames.
func (p *Progress) Frames(name string, total int64) *Bar {
	if p == nil {
		return nil
	}

	return &Bar{bar: p.container.AddBar(total,
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(name+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
			decor.EwmaETA(decor.ET_STYLE_GO, 60),
		),
	)}
}

// Bytes adds a bar counting bytes read through Reader.
func (p *Progress) Bytes(name string, total int64) *Bar {
	if p == nil {
		return nil
	}

	return &Bar{bar: p.container.AddBar(total,
		mpb.BarRemoveOnComplete(),
		mpb.PrependDecorators(
			decor.Name(name+": "),
			decor.CountersKibiByte("% .1f / % .1f"),
		),
		mpb.AppendDecorators(decor.Percentage()),
	)}
}

func (b *Bar) Add(n int) {
	if b == nil {
		return
	}

	b.bar.IncrBy(n)
}

// Reader counts what is read from r.
func (b *Bar) Reader(r io.Reader) io.Reader {
	if b == nil {
		return r
	}

	return b.bar.ProxyReader(r)
}

// Done completes the bar at its current count.
func (b *Bar) Done() {
	if b == nil {
		return
	}

	b.bar.SetTotal(-1, true)
}

// Abort removes the bar after a failure.
func (b *Bar) Abort() {
	if b == nil {
		return
	}

	b.bar.Abort(true)
}

// Wait blocks until every bar is rendered complete.
func (p *Progress) Wait() {
	if p == nil {
		return
	}

	p.container.Wait()
}
