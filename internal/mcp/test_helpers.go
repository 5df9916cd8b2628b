package mcp

// In-process tool calls for tests: CallTool invokes a handler directly,
// bypassing the stdio transport.
//
//	server, _ := mcp.NewServerWithLogger(engine, cfg, mcp.NoOpLogger)
//	resultJSON, err := server.CallTool("start_search", map[string]interface{}{
//	    "query": "TODO",
//	})

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// CallTool is a test helper method to simulate MCP tool calls. Error results
// come back as Go errors carrying the message and suggestions.
func (s *Server) CallTool(toolName string, params map[string]interface{}) (string, error) {
	return s.CallToolContext(context.Background(), toolName, params)
}

// CallToolContext is CallTool with a caller supplied context
func (s *Server) CallToolContext(ctx context.Context, toolName string, params map[string]interface{}) (string, error) {
	paramsJSON, err := json.Marshal(params)
	if err != nil {
		return "", fmt.Errorf("failed to marshal params: %w", err)
	}

	req := &mcp.CallToolRequest{
		Params: &mcp.CallToolParamsRaw{
			Name:      toolName,
			Arguments: paramsJSON,
		},
	}

	var result *mcp.CallToolResult
	switch toolName {
	case ToolStartSearch:
		result, err = s.handleStartSearch(ctx, req)
	case ToolCancelSearch:
		result, err = s.handleCancelSearch(ctx, req)
	case ToolInfo:
		result, err = s.handleInfo(ctx, req)
	default:
		return "", fmt.Errorf("unknown tool: %s", toolName)
	}
	if err != nil {
		return "", err
	}

	if result == nil || len(result.Content) == 0 {
		return "", nil
	}
	textContent, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		return "", nil
	}

	if result.IsError {
		var response map[string]interface{}
		if json.Unmarshal([]byte(textContent.Text), &response) == nil {
			errorDetails := fmt.Sprintf("MCP error: %v", response["error"])
			if suggestions, ok := response["suggestions"].([]interface{}); ok && len(suggestions) > 0 {
				errorDetails += fmt.Sprintf("\nSuggestions: %v", suggestions)
			}
			return "", fmt.Errorf("%s", errorDetails)
		}
		return "", fmt.Errorf("MCP error: %s", textContent.Text)
	}
	return textContent.Text, nil
}
