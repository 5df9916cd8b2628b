package search

import (
	"path/filepath"

	"github.com/cespare/xxhash/v2"
)

// workList is the traversal schedule: a deque of pending directories whose
// front is the pop end. Pushing to the front therefore schedules a directory
// next (LIFO); pushing to the back schedules it last.
type workList struct {
	buf  []string
	head int // index of the front element
	size int
}

func newWorkList() *workList {
	return &workList{buf: make([]string, 16)}
}

func (w *workList) Len() int { return w.size }

func (w *workList) grow() {
	if w.size < len(w.buf) {
		return
	}
	next := make([]string, len(w.buf)*2)
	for i := 0; i < w.size; i++ {
		next[i] = w.buf[(w.head+i)%len(w.buf)]
	}
	w.buf = next
	w.head = 0
}

// PushFront schedules dir to be popped next
func (w *workList) PushFront(dir string) {
	w.grow()
	w.head = (w.head - 1 + len(w.buf)) % len(w.buf)
	w.buf[w.head] = dir
	w.size++
}

// PushBack schedules dir after everything already queued
func (w *workList) PushBack(dir string) {
	w.grow()
	w.buf[(w.head+w.size)%len(w.buf)] = dir
	w.size++
}

// PopFront removes and returns the next directory to visit
func (w *workList) PopFront() (string, bool) {
	if w.size == 0 {
		return "", false
	}
	dir := w.buf[w.head]
	w.buf[w.head] = ""
	w.head = (w.head + 1) % len(w.buf)
	w.size--
	return dir, true
}

// visitedSet records directories already listed, keyed by the xxhash of the
// cleaned path.
type visitedSet map[uint64]struct{}

// Insert marks dir visited and reports whether it was new
func (v visitedSet) Insert(dir string) bool {
	key := xxhash.Sum64String(filepath.Clean(dir))
	if _, ok := v[key]; ok {
		return false
	}
	v[key] = struct{}{}
	return true
}
