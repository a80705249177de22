package usecase

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain verifies that the batch and rotation workers do not leak goroutines.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
