package ffmpeg

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"strconv"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/integration/binary"
	"github.com/farcloser/sonogram/internal/types"
)

// Extract decodes the audioIndex-th audio stream of filePath to interleaved little-endian PCM written to output,
// keeping the source rate and channel count.
func Extract(
	ctx context.Context,
	filePath string,
	output io.Writer,
	audioIndex int,
	format types.PCMFormat,
) error {
	slog.Debug("ffmpeg.Extract", "file path", filePath, "audio index", audioIndex, "stage", "start")

	ffmpegPath, err := binary.Require(name)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	spec, codec := sampleFormat(format.BitDepth)

	//nolint:gosec // filePath is intentionally user-provided input
	cmd := exec.CommandContext(ctx, ffmpegPath,
		"-i", filePath,
		"-map", "0:a:"+strconv.Itoa(audioIndex),
		"-f", spec,
		"-acodec", codec,
		"-v", "quiet",
		"-",
	)

	cmd.Stdout = output

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			slog.Debug("ffmpeg.Extract", "file path", filePath, "stage", "timeout")

			return fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		slog.Debug("ffmpeg.Extract", "file path", filePath, "stage", "error")

		return fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	slog.Debug("ffmpeg.Extract", "file path", filePath, "stage", "done")

	return nil
}
