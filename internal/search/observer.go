package search

import "github.com/standardbeagle/dirsearch/internal/types"

// Observer receives streaming events from a running search. Calls are made
// synchronously from the traversal loop, so implementations should return
// quickly.
type Observer interface {
	OnProgress(types.SearchProgress)
	// OnEarlyResults receives the full accumulated result set so far. The
	// Cancelled and Curtailed flags are always false.
	OnEarlyResults(types.SearchResponse)
}

// SessionObserver is implemented by observers that want the ID of the session
// they are attached to, e.g. to offer targeted cancellation. OnSessionStart is
// called once before the traversal begins.
type SessionObserver interface {
	OnSessionStart(id string)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	Progress     func(types.SearchProgress)
	EarlyResults func(types.SearchResponse)
}

func (o ObserverFuncs) OnProgress(p types.SearchProgress) {
	if o.Progress != nil {
		o.Progress(p)
	}
}

func (o ObserverFuncs) OnEarlyResults(r types.SearchResponse) {
	if o.EarlyResults != nil {
		o.EarlyResults(r)
	}
}

// NopObserver discards all events
type NopObserver struct{}

func (NopObserver) OnProgress(types.SearchProgress)     {}
func (NopObserver) OnEarlyResults(types.SearchResponse) {}
