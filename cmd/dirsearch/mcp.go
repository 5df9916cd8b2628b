package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/dirsearch/internal/debug"
	"github.com/standardbeagle/dirsearch/internal/mcp"
)

// mcpCommand serves the search tools over stdio until the client disconnects
// or the process is interrupted
func mcpCommand(c *cli.Context) error {
	// stdout belongs to the protocol
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	server, err := mcp.NewServer(nil, cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}

	ctx, cancel := interruptContext(c.Context)
	defer cancel()

	runErr := server.Start(ctx)

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		debug.LogMCP("shutdown: %v\n", err)
	}

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return fmt.Errorf("MCP server error: %w", runErr)
	}
	return nil
}
