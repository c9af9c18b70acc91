package planner

import (
	"fmt"

	"github.com/kirinyoku/seatplan/internal/geometry"
	"github.com/kirinyoku/seatplan/internal/snapshot"
)

// dragSession is the Dragging state of the Idle -> Dragging -> Idle drag
// machine.
type dragSession struct {
	tableIDs []string
	origin   geometry.Point
	initial  []geometry.Point // table centres at begin, by tableIDs index
	before   *snapshot.Snapshot
	last     Validation
}

// BeginDrag starts moving the given tables with the pointer at origin.
func (e *Engine) BeginDrag(tableIDs []string, origin geometry.Point) error {
	if e.drag != nil {
		return ErrAlreadyDragging
	}
	if len(tableIDs) == 0 {
		return fmt.Errorf("%w: no tables to drag", ErrTableNotFound)
	}

	d := &dragSession{origin: origin, last: valid()}
	seen := make(map[string]bool, len(tableIDs))
	for _, id := range tableIDs {
		if seen[id] {
			continue
		}
		seen[id] = true
		t := e.table(id)
		if t == nil {
			return fmt.Errorf("%w: %s", ErrTableNotFound, id)
		}
		d.tableIDs = append(d.tableIDs, id)
		d.initial = append(d.initial, geometry.Point{X: t.X, Y: t.Y})
	}
	d.before = e.Snapshot()
	e.drag = d
	return nil
}

// Dragging reports whether a drag is in progress.
func (e *Engine) Dragging() bool { return e.drag != nil }

// UpdateDrag moves the dragged tables and their chairs by the pointer
// delta snapped to SnapStep. Groups and seats are not recomputed. The
// returned validation describes the new positions; invalid positions are
// still applied so they can be shown.
func (e *Engine) UpdateDrag(pointer geometry.Point) (Validation, error) {
	d := e.drag
	if d == nil {
		return Validation{}, ErrNotDragging
	}

	dx := geometry.Snap(pointer.X-d.origin.X, SnapStep)
	dy := geometry.Snap(pointer.Y-d.origin.Y, SnapStep)

	candidates := make([]Candidate, len(d.tableIDs))
	for i, id := range d.tableIDs {
		candidates[i] = Candidate{TableID: id, X: d.initial[i].X + dx, Y: d.initial[i].Y + dy}
	}
	v := e.ValidateCandidatePositions(candidates, d.tableIDs)

	for _, c := range candidates {
		if t := e.table(c.TableID); t != nil {
			t.MoveTo(c.X, c.Y)
		}
	}
	d.last = v
	return v, nil
}

// CommitDrag ends the drag. Valid positions are kept, tables regrouped and
// reseated, and the pre-drag snapshot is returned for the caller's history.
// An invalid drop, or one whose snapping breaks the layout, restores the
// pre-drag plan and returns a PlacementError. A drag that moved nothing
// returns a nil snapshot.
func (e *Engine) CommitDrag() (*snapshot.Snapshot, error) {
	d := e.drag
	if d == nil {
		return nil, ErrNotDragging
	}
	e.drag = nil

	moved := false
	candidates := make([]Candidate, 0, len(d.tableIDs))
	for i, id := range d.tableIDs {
		t := e.table(id)
		if t == nil {
			continue
		}
		if t.X != d.initial[i].X || t.Y != d.initial[i].Y {
			moved = true
		}
		candidates = append(candidates, Candidate{TableID: id, X: t.X, Y: t.Y})
	}
	if !moved {
		return nil, nil
	}

	if v := e.ValidateCandidatePositions(candidates, d.tableIDs); !v.Valid {
		e.restore(d.before)
		return nil, v.Err()
	}

	e.recompute(nil)
	if v := e.ValidateLayout(); !v.Valid {
		e.restore(d.before)
		return nil, v.Err()
	}
	return d.before, nil
}

// CancelDrag abandons the drag and puts the tables back.
func (e *Engine) CancelDrag() error {
	d := e.drag
	if d == nil {
		return ErrNotDragging
	}
	e.restore(d.before)
	return nil
}

func (e *Engine) restore(s *snapshot.Snapshot) {
	// Load only fails on a nil snapshot.
	_ = e.Load(s)
}
