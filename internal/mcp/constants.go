package mcp

import "github.com/standardbeagle/dirsearch/internal/search"

// Tool names
const (
	ToolStartSearch  = "start_search"
	ToolCancelSearch = "cancel_search"
	ToolInfo         = "info"
)

// Logger names used for logging notifications, the engine's event names
const (
	LoggerProgress     = search.EventProgress
	LoggerEarlyResults = search.EventEarlyResults
)

const (
	// ServerName is reported in the MCP implementation info
	ServerName = "dirsearch-mcp-server"

	// ProtocolVersion is the MCP revision the tools are written against
	ProtocolVersion = "2025-06-18"
)
