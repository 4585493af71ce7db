// Package testutil provides testing utilities for vgreq.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/coral-mesh/vgreq/pkg/valgrind"
)

// NewTestContext creates a test context with a 30-second timeout.
func NewTestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// SkipUnlessValgrind skips tests that only mean something under Valgrind.
func SkipUnlessValgrind(t *testing.T) {
	t.Helper()
	if valgrind.RunningOnValgrind() == 0 {
		t.Skip("not running under valgrind")
	}
}

// SkipUnderValgrind skips tests that assume the native no-op behavior.
func SkipUnderValgrind(t *testing.T) {
	t.Helper()
	if valgrind.RunningOnValgrind() != 0 {
		t.Skip("running under valgrind")
	}
}
