package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/dirsearch/internal/types"
)

// notifier forwards engine events for one start_search call to the calling
// client. Progress goes out as progress notifications when the request
// carries a progress token, otherwise as debug logs under "search-progress".
// Early results go out as logging notifications under "search-early-results".
// Without a session everything is dropped.
type notifier struct {
	ctx     context.Context
	session *mcp.ServerSession
	token   any
	log     *DiagnosticLogger

	sessionID string
	progress  int
	early     int
}

func newNotifier(ctx context.Context, req *mcp.CallToolRequest, log *DiagnosticLogger) *notifier {
	n := &notifier{ctx: ctx, log: log}
	if req != nil {
		n.session = req.Session
		if req.Params != nil {
			n.token = req.Params.GetProgressToken()
		}
	}
	return n
}

func (n *notifier) OnSessionStart(id string) {
	n.sessionID = id
}

func (n *notifier) OnProgress(p types.SearchProgress) {
	n.progress++
	if n.session == nil {
		return
	}

	// Without a progress token the snapshot goes out as a debug log message
	if n.token == nil {
		err := n.session.Log(n.ctx, &mcp.LoggingMessageParams{
			Level:  "debug",
			Logger: LoggerProgress,
			Data: map[string]interface{}{
				"session_id": n.sessionID,
				"progress":   p,
			},
		})
		if err != nil {
			n.log.Errorf("progress log failed: %v", err)
		}
		return
	}

	err := n.session.NotifyProgress(n.ctx, &mcp.ProgressNotificationParams{
		ProgressToken: n.token,
		Progress:      float64(p.DirectoriesSearched),
		Message: fmt.Sprintf("%d files in %d directories, %d matches, %dms",
			p.FilesSearched, p.DirectoriesSearched, p.TotalMatches, p.ProcessingTimeMs),
	})
	if err != nil {
		n.log.Errorf("progress notification failed: %v", err)
	}
}

func (n *notifier) OnEarlyResults(r types.SearchResponse) {
	n.early++
	if n.session == nil {
		return
	}

	err := n.session.Log(n.ctx, &mcp.LoggingMessageParams{
		Level:  "info",
		Logger: LoggerEarlyResults,
		Data: map[string]interface{}{
			"session_id": n.sessionID,
			"response":   r,
		},
	})
	if err != nil {
		n.log.Errorf("early results notification failed: %v", err)
	}
}
