package planner

import (
	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
)

// Reason names the first check a candidate position failed.
type Reason string

const (
	ReasonNone           Reason = ""
	ReasonHallBounds     Reason = "hall-bounds"
	ReasonPillarHit      Reason = "pillar-hit"
	ReasonTableCollision Reason = "table-collision"
	ReasonChairBounds    Reason = "chair-bounds"
	ReasonChairPillar    Reason = "chair-pillar"
	ReasonChairTable     Reason = "chair-table"
	ReasonUnknownTable   Reason = "unknown-table"
)

// Snapped neighbours touch exactly; rounding must not turn that into a collision.
const overlapTolerance = 1e-6

// Candidate is a proposed centre for an existing table.
type Candidate struct {
	TableID string
	X       float64
	Y       float64
}

type Validation struct {
	Valid   bool
	Reason  Reason
	TableID string
}

func valid() Validation { return Validation{Valid: true} }

func invalid(tableID string, r Reason) Validation {
	return Validation{Reason: r, TableID: tableID}
}

// Err converts a failed validation into a PlacementError.
func (v Validation) Err() error {
	if v.Valid {
		return nil
	}
	return PlacementError{TableID: v.TableID, Reason: v.Reason}
}

// ValidateCandidatePositions checks each candidate with its table's current
// rotation: the table must stay inside the hall, clear of pillars and of
// tables outside the moving set, and so must every chair of that table once
// shifted by the same delta. Unknown table ids are skipped. The first
// failure is returned.
func (e *Engine) ValidateCandidatePositions(candidates []Candidate, movingIDs []string) Validation {
	moving := make(map[string]bool, len(movingIDs)+len(candidates))
	for _, id := range movingIDs {
		moving[id] = true
	}

	for _, c := range candidates {
		t := e.table(c.TableID)
		if t == nil {
			continue
		}
		moving[t.ID] = true

		rect := geometry.TableRect(c.X, c.Y, t.Rotation)
		if !e.hall.ContainsRect(rect) {
			return invalid(t.ID, ReasonHallBounds)
		}
		if e.hall.HitsPillar(rect) {
			return invalid(t.ID, ReasonPillarHit)
		}
		if e.hitsTable(rect, moving) {
			return invalid(t.ID, ReasonTableCollision)
		}

		dx, dy := c.X-t.X, c.Y-t.Y
		for _, ch := range t.Chairs {
			cr := geometry.ChairRect(ch.X+dx, ch.Y+dy)
			if !e.hall.ContainsRect(cr) {
				return invalid(t.ID, ReasonChairBounds)
			}
			if e.hall.HitsPillar(cr) {
				return invalid(t.ID, ReasonChairPillar)
			}
			if e.hitsTable(cr, moving) {
				return invalid(t.ID, ReasonChairTable)
			}
		}
	}
	return valid()
}

// ValidatePlacement checks a single table at (x, y) ignoring the given tables.
func (e *Engine) ValidatePlacement(tableID string, x, y float64, ignoreIDs ...string) Validation {
	if e.table(tableID) == nil {
		return invalid(tableID, ReasonUnknownTable)
	}
	return e.ValidateCandidatePositions([]Candidate{{TableID: tableID, X: x, Y: y}}, ignoreIDs)
}

// ValidateLayout checks the committed layout as a whole: every table inside
// the hall, clear of pillars and of every other table.
func (e *Engine) ValidateLayout() Validation {
	tables := e.state.Tables
	for i, t := range tables {
		r := t.Rect()
		if !e.hall.ContainsRect(r) {
			return invalid(t.ID, ReasonHallBounds)
		}
		if e.hall.HitsPillar(r) {
			return invalid(t.ID, ReasonPillarHit)
		}
		for _, o := range tables[i+1:] {
			if r.Overlaps(o.Rect(), overlapTolerance) {
				return invalid(t.ID, ReasonTableCollision)
			}
		}
	}
	return valid()
}

func (e *Engine) hitsTable(r geometry.Rect, ignore map[string]bool) bool {
	for _, t := range e.state.Tables {
		if ignore[t.ID] {
			continue
		}
		if r.Overlaps(t.Rect(), overlapTolerance) {
			return true
		}
	}
	return false
}

// fits reports whether a new table rect at (x, y) could be placed among placed.
func (e *Engine) fits(x, y, rotation float64, placed []*domain.Table) bool {
	r := geometry.TableRect(x, y, rotation)
	if !e.hall.ContainsRect(r) || e.hall.HitsPillar(r) {
		return false
	}
	for _, t := range placed {
		if r.Overlaps(t.Rect(), overlapTolerance) {
			return false
		}
	}
	return true
}
