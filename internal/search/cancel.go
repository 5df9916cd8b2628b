package search

import (
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/standardbeagle/dirsearch/internal/debug"
)

// Session is the cancellation handle of one running search
type Session struct {
	ID   string
	done chan struct{}
	once sync.Once
}

func newSession() *Session {
	return &Session{ID: uuid.NewString(), done: make(chan struct{})}
}

func (s *Session) signal() {
	s.once.Do(func() { close(s.done) })
}

// Cancelled polls the session without blocking
func (s *Session) Cancelled() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed when the session is cancelled
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// CancelSlot holds at most one pending session. Installing a session replaces
// the previous occupant, which can then no longer be cancelled through the
// slot: only one search per slot is controllable at a time.
type CancelSlot struct {
	mu      sync.Mutex
	current *Session
}

// Install creates a new session and makes it the slot's occupant
func (c *CancelSlot) Install() *Session {
	s := newSession()

	c.mu.Lock()
	prev := c.current
	c.current = s
	c.mu.Unlock()

	if prev != nil {
		log.Printf("search %s took over cancellation control from search %s", s.ID, prev.ID)
	}
	debug.LogSearch("installed cancel session %s\n", s.ID)
	return s
}

// Take removes the occupant and signals it. Returns false if the slot was empty.
func (c *CancelSlot) Take() bool {
	c.mu.Lock()
	s := c.current
	c.current = nil
	c.mu.Unlock()

	if s == nil {
		return false
	}
	s.signal()
	debug.LogSearch("cancelled search session %s\n", s.ID)
	return true
}

// TakeSession cancels only if id still owns the slot
func (c *CancelSlot) TakeSession(id string) bool {
	c.mu.Lock()
	s := c.current
	if s == nil || s.ID != id {
		c.mu.Unlock()
		return false
	}
	c.current = nil
	c.mu.Unlock()

	s.signal()
	debug.LogSearch("cancelled search session %s\n", s.ID)
	return true
}

// release clears the slot if s still occupies it. A search that finishes
// normally calls this so a later CancelSearch is a no-op.
func (c *CancelSlot) release(s *Session) {
	c.mu.Lock()
	if c.current == s {
		c.current = nil
	}
	c.mu.Unlock()
}

// CurrentID returns the occupant's session ID, or "" when idle
func (c *CancelSlot) CurrentID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return ""
	}
	return c.current.ID
}
