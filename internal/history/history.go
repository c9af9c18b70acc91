// Package history keeps bounded undo/redo stacks of plan snapshots.
package history

import (
	"sync"

	"github.com/kirinyoku/seatplan/internal/snapshot"
)

// DefaultLimit is the number of undo steps retained.
const DefaultLimit = 100

// History stores deep copies, so callers may keep mutating the values they
// pass in and the ones they get back.
type History struct {
	mu     sync.Mutex
	limit  int
	past   []*snapshot.Snapshot
	future []*snapshot.Snapshot
}

func New(limit int) *History {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &History{limit: limit}
}

// Push records s as the newest undo step and discards the redo stack.
// The oldest step is dropped once the limit is exceeded.
func (h *History) Push(s *snapshot.Snapshot) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.past = append(h.past, s.Clone())
	if len(h.past) > h.limit {
		h.past = h.past[len(h.past)-h.limit:]
	}
	h.future = nil
}

// Undo returns the previous state and stores current for Redo.
// With nothing to undo it returns current unchanged and ok=false.
func (h *History) Undo(current *snapshot.Snapshot) (prev *snapshot.Snapshot, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.past) == 0 {
		return current, false
	}
	h.future = append(h.future, current.Clone())
	prev = h.past[len(h.past)-1]
	h.past = h.past[:len(h.past)-1]
	return prev.Clone(), true
}

// Redo is the mirror of Undo.
func (h *History) Redo(current *snapshot.Snapshot) (next *snapshot.Snapshot, ok bool) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.future) == 0 {
		return current, false
	}
	h.past = append(h.past, current.Clone())
	next = h.future[len(h.future)-1]
	h.future = h.future[:len(h.future)-1]
	return next.Clone(), true
}

func (h *History) CanUndo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past) > 0
}

func (h *History) CanRedo() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.future) > 0
}

// Len returns the sizes of the undo and redo stacks.
func (h *History) Len() (past, future int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.past), len(h.future)
}

func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.past = nil
	h.future = nil
}
