// Package mcp exposes the search engine as an MCP server over stdio with the
// tools start_search, cancel_search and info.
package mcp

import (
	"context"
	"fmt"
	"os"
	"runtime"
	rtdebug "runtime/debug"
	"time"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/dirsearch/internal/config"
	"github.com/standardbeagle/dirsearch/internal/debug"
	"github.com/standardbeagle/dirsearch/internal/search"
	"github.com/standardbeagle/dirsearch/internal/version"
)

// Server wires the search engine to an MCP server
type Server struct {
	server           *mcp.Server
	engine           *search.Engine
	cfg              *config.Config
	diagnosticLogger *DiagnosticLogger
}

// NewServer creates an MCP server. A nil engine gets one built from cfg; a nil
// cfg falls back to defaults rooted at the working directory. Diagnostics go
// to a file so stdio stays clean for the protocol.
func NewServer(engine *search.Engine, cfg *config.Config) (*Server, error) {
	return NewServerWithLogger(engine, cfg, NewDiagnosticLogger(true))
}

// NewServerWithLogger is NewServer with an explicit diagnostic logger
func NewServerWithLogger(engine *search.Engine, cfg *config.Config, logger *DiagnosticLogger) (*Server, error) {
	if cfg == nil {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("cannot determine project root: %w", err)
		}
		cfg = config.Default(cwd)
	}
	if engine == nil {
		engine = search.NewEngine(search.OptionsFromConfig(cfg))
	}
	if logger == nil {
		logger = NoOpLogger
	}

	s := &Server{
		engine:           engine,
		cfg:              cfg,
		diagnosticLogger: logger,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    ServerName,
		Version: version.Version,
	}, nil)
	s.registerTools()

	logger.Printf("MCP server initialized for project root %s", s.determineProjectRoot())
	return s, nil
}

// MCPServer returns the underlying SDK server, e.g. to connect custom transports
func (s *Server) MCPServer() *mcp.Server {
	return s.server
}

// Engine returns the search engine behind the tools
func (s *Server) Engine() *search.Engine {
	return s.engine
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        ToolInfo,
		Description: "Get help and examples for the dirsearch tools. Use {} for an overview, {\"tool\": \"start_search\"} for specifics, or {\"tool\": \"version\"} for server version info.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"tool": {
					Type:        "string",
					Description: "Tool name to get information about (start_search, cancel_search, version)",
				},
			},
		},
	}, s.handleInfo)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolStartSearch,
		Description: "Search file contents under a directory, depth first, skipping binary and oversized files. Returns at most 20 matching files per directory and stops once the global result cap or the timeout is reached (curtailed=true). Progress is reported when the request carries a progress token; partial results arrive as 'search-early-results' log messages.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"query": {
					Type:        "string",
					Description: "Text or regular expression (RE2 syntax) to search for",
				},
				"path": {
					Type:        "string",
					Description: "Directory to search. Defaults to the project root.",
				},
				"is_regex": {
					Type:        "boolean",
					Description: "Treat query as a regular expression instead of literal text",
				},
				"is_case_sensitive": {
					Type:        "boolean",
					Description: "Match case exactly (default false)",
				},
				"is_whole_word": {
					Type:        "boolean",
					Description: "Only match at word boundaries",
				},
				"timeout_secs": {
					Type:        "integer",
					Description: fmt.Sprintf("Wall-clock limit in seconds (default %d, clamped to [%d, %d])", s.cfg.Search.DefaultTimeoutSec, config.DefaultMinTimeoutSec, s.cfg.Search.MaxTimeoutSec),
				},
				"exclude": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Extra glob patterns (doublestar syntax, relative to path) to skip, e.g. [\"**/node_modules/**\"]",
				},
				"include": {
					Type:        "array",
					Items:       &jsonschema.Schema{Type: "string"},
					Description: "Only scan files matching one of these glob patterns (doublestar syntax, relative to path), e.g. [\"**/*.go\"]",
				},
				"relative": {
					Type:        "boolean",
					Description: "Report paths relative to the searched directory",
				},
			},
			Required: []string{"query"},
		},
	}, s.handleStartSearch)

	s.server.AddTool(&mcp.Tool{
		Name:        ToolCancelSearch,
		Description: "Cancel the running search. The search returns the results merged so far with cancelled=true. Returns cancelled=false when nothing was running.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"session_id": {
					Type:        "string",
					Description: "Only cancel if this session (from a start_search response or early-results message) is still the running one",
				},
			},
		},
	}, s.handleCancelSearch)
}

// determineProjectRoot is the configured root, falling back to the working directory
func (s *Server) determineProjectRoot() string {
	if s.cfg != nil && s.cfg.Project.Root != "" {
		return s.cfg.Project.Root
	}

	cwd, err := os.Getwd()
	if err == nil && cwd != "" {
		return cwd
	}

	s.diagnosticLogger.Printf("Warning: cannot determine project root, using current directory")
	return "."
}

// recoverFromPanic provides panic recovery middleware for tool handlers
func (s *Server) recoverFromPanic(operation string, handler func() (*mcp.CallToolResult, error)) (result *mcp.CallToolResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			stack := rtdebug.Stack()
			s.diagnosticLogger.Printf("PANIC RECOVERED in %s: %v", operation, r)
			s.diagnosticLogger.Printf("Stack trace: %s", stack)
			debug.CatastrophicError("panic in %s: %v\n%s\n", operation, r, stack)

			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			s.diagnosticLogger.Printf("Memory stats - Alloc: %d KB, Sys: %d KB, NumGC: %d",
				m.Alloc/1024, m.Sys/1024, m.NumGC)

			result, err = createSmartErrorResponse(operation, fmt.Errorf("internal error: %v", r), map[string]interface{}{
				"timestamp": time.Now().Format(time.RFC3339),
			})
		}
	}()

	result, err = handler()
	if err != nil {
		s.diagnosticLogger.Printf("Error in %s: %v", operation, err)
		return createErrorResponse(operation, err)
	}
	return result, nil
}

// Start serves MCP over stdio until ctx is done or the client disconnects
func (s *Server) Start(ctx context.Context) error {
	s.diagnosticLogger.Printf("Starting MCP server with stdio transport")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

// Shutdown cancels any running search and closes the diagnostic log
func (s *Server) Shutdown(ctx context.Context) error {
	s.diagnosticLogger.Printf("Shutting down MCP server...")

	if s.engine.CancelSearch() {
		s.diagnosticLogger.Printf("Cancelled running search")
	}

	s.diagnosticLogger.Printf("MCP server shutdown complete")
	return s.diagnosticLogger.Close()
}
