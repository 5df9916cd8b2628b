package search

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain ensures searches and cancellation leave no goroutines behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("internal/poll.runtime_pollWait"),
	)
}
