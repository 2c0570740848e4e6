package tests_test

import (
	"fmt"
	"image/png"
	"os"
	"strings"

	"github.com/containerd/nerdctl/mod/tigron/test"
	"github.com/containerd/nerdctl/mod/tigron/tig"
)

// expectIssue returns a comparator verifying that the given check was detected with the given severity.
// It needs the --debug report, where every issue is a block of check, detected and severity lines.
func expectIssue(check, severity string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if issueBlockContains(stdout, check, "detected: true") &&
			issueBlockContains(stdout, check, fmt.Sprintf("severity: %s", severity)) {
			return
		}

		testing.Log(
			fmt.Sprintf("expected issue %q with severity %q not found in output:\n%s", check, severity, stdout),
		)
		testing.Fail()
	}
}

// expectNoIssue returns a comparator verifying that the given check ran and was not detected.
func expectNoIssue(check string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, fmt.Sprintf("check: %s", check)) {
			testing.Log(fmt.Sprintf("check %q missing from output:\n%s", check, stdout))
			testing.Fail()

			return
		}

		if issueBlockContains(stdout, check, "detected: true") {
			testing.Log(fmt.Sprintf("expected no issue for %q but it was detected in output:\n%s", check, stdout))
			testing.Fail()
		}
	}
}

// issueBlockContains checks whether the issue block of check contains target.
// Blocks are delimited by the check line of the next issue.
func issueBlockContains(stdout, check, target string) bool {
	lines := strings.Split(stdout, "\n")
	checkLine := fmt.Sprintf("check: %s", check)

	for i, line := range lines {
		if !strings.Contains(line, checkLine) {
			continue
		}

		lo, hi := i, i+1
		for lo > 0 && i-lo < 5 && !strings.Contains(lines[lo-1], "check: ") {
			lo--
		}

		for hi < len(lines) && hi-i < 5 && !strings.Contains(lines[hi], "check: ") {
			hi++
		}

		for _, near := range lines[lo:hi] {
			if strings.Contains(near, target) {
				return true
			}
		}
	}

	return false
}

// expectContains returns a comparator verifying the output contains a substring.
func expectContains(substr string) test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if !strings.Contains(stdout, substr) {
			testing.Log(fmt.Sprintf("expected substring %q not found in output:\n%s", substr, stdout))
			testing.Fail()
		}
	}
}

// expectEmpty returns a comparator verifying nothing was written.
func expectEmpty() test.Comparator {
	return func(stdout string, testing tig.T) {
		testing.Helper()

		if stdout != "" {
			testing.Log(fmt.Sprintf("expected no output, got:\n%s", stdout))
			testing.Fail()
		}
	}
}

// expectPNG returns a comparator verifying that path holds a width x height PNG.
func expectPNG(path string, width, height int) test.Comparator {
	return func(_ string, testing tig.T) {
		testing.Helper()

		file, err := os.Open(path)
		if err != nil {
			testing.Log(fmt.Sprintf("expected a PNG at %s: %v", path, err))
			testing.Fail()

			return
		}
		defer file.Close()

		cfg, err := png.DecodeConfig(file)
		if err != nil {
			testing.Log(fmt.Sprintf("%s is not a PNG: %v", path, err))
			testing.Fail()

			return
		}

		if cfg.Width != width || cfg.Height != height {
			testing.Log(fmt.Sprintf("%s is %dx%d, want %dx%d", path, cfg.Width, cfg.Height, width, height))
			testing.Fail()
		}
	}
}
