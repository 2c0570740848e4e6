package progress_test

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/farcloser/sonogram/internal/progress"
)

func TestDisabledIsNoop(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	prog := progress.New(&buf, false)
	if prog != nil {
		t.Fatal("disabled progress is not nil")
	}

	bar := prog.Frames("decode", 100)
	bar.Add(10)
	bar.Done()

	r := bar.Reader(strings.NewReader("abc"))
	if data, _ := io.ReadAll(r); string(data) != "abc" {
		t.Errorf("reader returned %q", data)
	}

	prog.Wait()

	if buf.Len() != 0 {
		t.Errorf("disabled progress wrote %q", buf.String())
	}
}

func TestEnabledCompletes(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	prog := progress.New(&buf, true)

	bar := prog.Bytes("extract", 0)
	if data, _ := io.ReadAll(bar.Reader(strings.NewReader(strings.Repeat("x", 4096)))); len(data) != 4096 {
		t.Errorf("read %d bytes", len(data))
	}

	bar.Done()

	frames := prog.Frames("decode", 10)
	frames.Add(10)
	frames.Done()

	prog.Wait()
}
