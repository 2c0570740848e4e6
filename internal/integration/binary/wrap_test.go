package binary_test

import (
	"errors"
	"testing"

	"github.com/farcloser/primordium/fault"

	"github.com/farcloser/sonogram/internal/integration/binary"
)

func TestRequireMissing(t *testing.T) {
	t.Parallel()

	_, err := binary.Require("sonogram-definitely-not-installed")
	if !errors.Is(err, fault.ErrMissingRequirements) {
		t.Errorf("error = %v, want ErrMissingRequirements", err)
	}

	if _, found := binary.Available("sonogram-definitely-not-installed"); found {
		t.Error("Available reported a missing binary")
	}
}
