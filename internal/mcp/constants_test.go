package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestLoggerNames pins the notification logger names clients filter on
func TestLoggerNames(t *testing.T) {
	assert.Equal(t, "search-progress", LoggerProgress)
	assert.Equal(t, "search-early-results", LoggerEarlyResults)
}

// TestToolNames pins the tool names clients call
func TestToolNames(t *testing.T) {
	assert.ElementsMatch(t, []string{"start_search", "cancel_search", "info"},
		[]string{ToolStartSearch, ToolCancelSearch, ToolInfo})
}
