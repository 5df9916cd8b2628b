package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	dserrors "github.com/standardbeagle/dirsearch/internal/errors"
)

// createJSONResponse creates a standardized JSON response for MCP tools
func createJSONResponse(data interface{}) (*mcp.CallToolResult, error) {
	content, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response data: %v", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: string(content)},
		},
	}, nil
}

// createErrorResponse creates a standardized error response for MCP tools
func createErrorResponse(operation string, err error) (*mcp.CallToolResult, error) {
	return createSmartErrorResponse(operation, err, nil)
}

// createSmartErrorResponse creates an error response with context-aware suggestions.
// Tool errors are reported inside the result with IsError set so the model can
// see them and self-correct; they are never protocol-level errors.
func createSmartErrorResponse(operation string, err error, context map[string]interface{}) (*mcp.CallToolResult, error) {
	errorData := map[string]interface{}{
		"success":   false,
		"error":     err.Error(),
		"operation": operation,
	}

	if suggestions := generateErrorSuggestions(operation, err); len(suggestions) > 0 {
		errorData["suggestions"] = suggestions
	}

	if help := getOperationHelp(operation); help != "" {
		errorData["help"] = help
	}

	if len(context) > 0 {
		errorData["context"] = context
	}

	response, marshalErr := createJSONResponse(errorData)
	if marshalErr != nil {
		return nil, marshalErr
	}
	response.IsError = true
	return response, nil
}

// generateErrorSuggestions generates context-aware suggestions for common errors
func generateErrorSuggestions(operation string, err error) []string {
	var suggestions []string
	msg := err.Error()

	switch operation {
	case ToolStartSearch:
		var cfgErr *dserrors.ConfigError
		switch {
		case errors.As(err, &cfgErr) && cfgErr.Field == "pattern":
			suggestions = append(suggestions,
				"Check the regular expression syntax (RE2): unbalanced parentheses and brackets are the usual cause",
				"Set is_regex=false to search for the text literally")
		case strings.Contains(msg, "query is required"):
			suggestions = append(suggestions, "Provide a non-empty query, e.g. {\"query\": \"TODO\"}")
		case strings.Contains(msg, "not a directory"), strings.Contains(msg, "no such file"):
			suggestions = append(suggestions, "Pass an existing directory as path, or omit it to search the project root")
		}
	case ToolCancelSearch:
		if strings.Contains(msg, "session") {
			suggestions = append(suggestions, "Omit session_id to cancel whichever search is running")
		}
	}

	return suggestions
}

// getOperationHelp returns a one-line usage hint per tool
func getOperationHelp(operation string) string {
	switch operation {
	case ToolStartSearch:
		return `{"query": "needle", "path": "/optional/dir", "is_regex": false, "is_case_sensitive": false, "is_whole_word": false, "timeout_secs": 45}`
	case ToolCancelSearch:
		return `{} or {"session_id": "<id from start_search>"}`
	case ToolInfo:
		return `{} or {"tool": "start_search"}`
	default:
		return ""
	}
}
