package mcp

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/dirsearch/internal/search"
	"github.com/standardbeagle/dirsearch/internal/types"
	"github.com/standardbeagle/dirsearch/internal/version"
	"github.com/standardbeagle/dirsearch/pkg/pathutil"
)

var errQueryRequired = errors.New("query is required")

// StartSearchResult is the start_search payload: the search response plus
// the session it ran under and the directory searched
type StartSearchResult struct {
	SessionID string `json:"session_id"`
	Root      string `json:"root"`
	types.SearchResponse
}

// CancelSearchResult is the cancel_search payload
type CancelSearchResult struct {
	Cancelled bool   `json:"cancelled"`
	SessionID string `json:"session_id,omitempty"`
}

// handleStartSearch runs one search session to completion. The call blocks
// until the search ends; cancel_search from another request ends it early.
func (s *Server) handleStartSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolStartSearch, func() (*mcp.CallToolResult, error) {
		var params StartSearchParams
		if err := decodeArguments(req.Params.Arguments, &params); err != nil {
			return createSmartErrorResponse(ToolStartSearch, fmt.Errorf("invalid parameters: %w", err), nil)
		}
		if params.Query == "" {
			return createErrorResponse(ToolStartSearch, errQueryRequired)
		}

		root, err := s.resolveSearchRoot(params.Path)
		if err != nil {
			return createSmartErrorResponse(ToolStartSearch, err, map[string]interface{}{"path": params.Path})
		}

		timeout := s.cfg.Search.ClampTimeout(time.Duration(params.TimeoutSecs) * time.Second)
		n := newNotifier(ctx, req, s.diagnosticLogger)

		resp, err := s.engine.StartSearch(ctx, search.SearchRequest{
			Root: root,
			Query: types.SearchQuery{
				Pattern:         params.Query,
				IsRegex:         params.IsRegex,
				IsCaseSensitive: params.IsCaseSensitive,
				IsWholeWord:     params.IsWholeWord,
			},
			Timeout: timeout,
			Exclude: params.Exclude,
			Include: params.Include,
		}, n)
		if err != nil {
			return createSmartErrorResponse(ToolStartSearch, err, map[string]interface{}{
				"query":    params.Query,
				"is_regex": params.IsRegex,
			})
		}

		s.diagnosticLogger.Printf("start_search %s: %q in %s -> %d results (cancelled=%v curtailed=%v, %d progress, %d early)",
			n.sessionID, params.Query, root, len(resp.Results), resp.Cancelled, resp.Curtailed, n.progress, n.early)

		if params.Relative {
			resp.Results = pathutil.ToRelativeResults(resp.Results, root)
		}

		return createResponseWithWarnings(StartSearchResult{
			SessionID:      n.sessionID,
			Root:           root,
			SearchResponse: *resp,
		}, warningStrings(params.Warnings))
	})
}

// resolveSearchRoot maps the optional path argument onto an absolute,
// normalized directory. Relative paths are taken from the project root.
func (s *Server) resolveSearchRoot(path string) (string, error) {
	projectRoot := s.determineProjectRoot()
	switch {
	case path == "":
		path = projectRoot
	case !filepath.IsAbs(path):
		path = filepath.Join(projectRoot, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", path, err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("search path %s: %w", abs, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("search path %s is not a directory", abs)
	}
	return pathutil.Normalize(abs), nil
}

func (s *Server) handleCancelSearch(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.recoverFromPanic(ToolCancelSearch, func() (*mcp.CallToolResult, error) {
		var params CancelSearchParams
		if err := decodeArguments(req.Params.Arguments, &params); err != nil {
			return createSmartErrorResponse(ToolCancelSearch, fmt.Errorf("invalid parameters: %w", err), nil)
		}

		result := CancelSearchResult{SessionID: params.SessionID}
		if params.SessionID != "" {
			result.Cancelled = s.engine.CancelSession(params.SessionID)
		} else {
			result.SessionID = s.engine.ActiveSession()
			result.Cancelled = s.engine.CancelSearch()
			if !result.Cancelled {
				result.SessionID = ""
			}
		}

		s.diagnosticLogger.Printf("cancel_search %q -> %v", result.SessionID, result.Cancelled)
		return createResponseWithWarnings(result, warningStrings(params.Warnings))
	})
}

// handleInfo provides basic help and usage information for tools
func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params InfoParams
	if err := decodeArguments(req.Params.Arguments, &params); err != nil {
		return createSmartErrorResponse(ToolInfo, fmt.Errorf("invalid parameters: %w", err), map[string]interface{}{
			"help": `Use: {"tool": "start_search"} or {"tool": "cancel_search"} or {"tool": "version"}`,
		})
	}

	warnings := warningStrings(params.Warnings)
	switch tool := strings.ToLower(strings.TrimSpace(params.Tool)); tool {
	case "":
		return createResponseWithWarnings(map[string]interface{}{
			"server": ServerName,
			"tools": map[string]string{
				ToolStartSearch:  "Search file contents under a directory; returns matching lines with byte ranges",
				ToolCancelSearch: "Cancel the running search; it returns its partial results",
				ToolInfo:         "This help. {\"tool\": \"<name>\"} for details, {\"tool\": \"version\"} for build info",
			},
			"project_root": s.determineProjectRoot(),
		}, warnings)

	case "version":
		return createResponseWithWarnings(map[string]interface{}{
			"server_name":    ServerName,
			"server_version": version.FullInfo(),
			"build_id":       version.BuildID(),
			"mcp_version":    ProtocolVersion,
			"go_version":     runtime.Version(),
			"platform":       runtime.GOOS + "/" + runtime.GOARCH,
		}, warnings)

	case ToolStartSearch:
		sc := s.cfg.Search
		return createResponseWithWarnings(map[string]interface{}{
			"name":        ToolStartSearch,
			"description": "Depth-first content search. Priority directories (" + strings.Join(sc.PriorityDirs, ", ") + ") are visited first; files with a null byte or above the size limit are skipped.",
			"parameters": map[string]string{
				"query":             "REQUIRED: text or RE2 regular expression",
				"path":              "Directory to search (default: project root; relative paths resolve against it)",
				"is_regex":          "Treat query as a regular expression",
				"is_case_sensitive": "Match case exactly (default: false)",
				"is_whole_word":     "Match only at ASCII word boundaries",
				"timeout_secs":      fmt.Sprintf("Time limit (default %d, max %d)", sc.DefaultTimeoutSec, sc.MaxTimeoutSec),
				"exclude":           "Extra doublestar globs to skip",
				"include":           "Only scan files matching one of these doublestar globs",
				"relative":          "Report paths relative to the searched directory",
			},
			"limits": map[string]interface{}{
				"max_files_per_dir":   sc.MaxFilesPerDir,
				"max_results_per_dir": sc.MaxResultsPerDir,
				"max_total_results":   sc.MaxTotalResults,
				"max_file_size":       sc.MaxFileSize,
			},
			"notifications": map[string]string{
				"progress":         "Sent when the request has a progress token: files and directories searched so far",
				LoggerProgress:     "Debug log messages with the same snapshot when the request has no progress token",
				LoggerEarlyResults: "Log messages carrying the full result set accumulated so far",
			},
			"example": map[string]string{
				"literal":    `{"query": "TODO"}`,
				"regex":      `{"query": "func\\s+New\\w+", "is_regex": true, "is_case_sensitive": true}`,
				"whole_word": `{"query": "id", "is_whole_word": true, "path": "src"}`,
			},
		}, warnings)

	case ToolCancelSearch:
		return createResponseWithWarnings(map[string]interface{}{
			"name":        ToolCancelSearch,
			"description": "Cancels the search owning the cancel slot. Results not yet merged are discarded; the search reports cancelled=true.",
			"parameters": map[string]string{
				"session_id": "Optional: only cancel if this session is still running",
			},
		}, warnings)

	default:
		return createSmartErrorResponse(ToolInfo, fmt.Errorf("unknown tool %q", tool), map[string]interface{}{
			"available": []string{ToolStartSearch, ToolCancelSearch, ToolInfo, "version"},
		})
	}
}
