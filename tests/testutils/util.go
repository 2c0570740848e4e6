// Package testutils provides test infrastructure for sonogram integration tests.
package testutils

import (
	"path/filepath"
	"runtime"

	"github.com/containerd/nerdctl/mod/tigron/test"

	"github.com/farcloser/agar/pkg/agar"
)

// Setup creates a test case configured to run the sonogram binary.
func Setup() *test.Case {
	_, thisFile, _, _ := runtime.Caller(0) //nolint:dogsled // runtime.Caller returns 4 values, only file is needed
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(thisFile)))
	binaryPath := filepath.Join(projectRoot, "bin", "sonogram")

	return agar.Setup(binaryPath)
}

// Render returns the arguments rendering file with an isolated configuration file under dir.
func Render(dir, file string, args ...string) []string {
	return append(append([]string{"--config", filepath.Join(dir, "config.yaml")}, args...), file)
}
