package search

// Observer event names. Front ends that forward events over a named channel
// (MCP logging, JSON lines) use these so consumers can tell them apart.
const (
	EventProgress     = "search-progress"
	EventEarlyResults = "search-early-results"
)

// Termination reasons recorded in debug logs
const (
	reasonExhausted = "exhausted"
	reasonTimeout   = "timeout"
	reasonCap       = "result-cap"
	reasonCancelled = "cancelled"
	reasonContext   = "context-done"
)
