// Package fontconfig asks fc-match for the default system font.
package fontconfig

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/integration/binary"
)

const (
	name    = "fc-match"
	timeout = 5 * time.Second
)

// Match returns the file of the font best matching pattern ("sans" when empty).
func Match(ctx context.Context, pattern string) (string, error) {
	if pattern == "" {
		pattern = "sans"
	}

	slog.Debug("fontconfig.Match", "pattern", pattern)

	fcPath, err := binary.Require(name)
	if err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	//nolint:gosec // fixed arguments
	cmd := exec.CommandContext(ctx, fcPath, "--format=%{file}", pattern)

	var stderr bytes.Buffer

	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return "", fmt.Errorf("%w: after %v", fault.ErrTimeout, timeout)
		}

		return "", fmt.Errorf("%w: %s: %w", fault.ErrCommandFailure, stderr.String(), err)
	}

	path := strings.TrimSpace(string(output))
	if path == "" {
		return "", fmt.Errorf("%w: %s returned no font", fault.ErrCommandFailure, name)
	}

	return path, nil
}
