package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
	"github.com/kirinyoku/seatplan/internal/hall"
)

// Free-spot scan region and fallback used once the blueprint runs out.
const (
	scanMinX, scanMaxX = 11.5, 23.0
	scanMinY, scanMaxY = 1.5, 9.5
	scanStep           = 0.5
	maxPlacementTries  = 200
)

var scanFallback = geometry.Point{X: 12, Y: 2}

// TableUpdate carries the editable table properties. Nil fields are left
// unchanged.
type TableUpdate struct {
	Description   *string
	Rotation      *float64
	IsHead        *bool
	HeadSeatCount *int
}

// CreateDefaultLayout replaces every table with count tables taken from the
// hall blueprint, then from a grid scan of the free region. Guests are kept
// but unseated. count is clamped to [MinTables, MaxTables].
func (e *Engine) CreateDefaultLayout(count int, mode domain.Mode) {
	count = clampInt(count, MinTables, MaxTables)
	e.drag = nil
	e.state.Settings.Mode = domain.ParseMode(string(mode))
	e.state.Tables = e.defaultTables(count)
	for _, g := range e.state.Guests {
		g.ClearAssignment()
	}
	e.recompute(map[string][]string{})
}

func (e *Engine) defaultTables(count int) []*domain.Table {
	mode := e.state.Settings.Mode
	var tables []*domain.Table
	for _, entry := range e.hall.Blueprint {
		if len(tables) >= count {
			break
		}
		if !e.fits(entry.X, entry.Y, entry.Rotation, tables) {
			continue
		}
		n := len(tables) + 1
		tables = append(tables, tableFromEntry(fmt.Sprintf("t%d", n), n, entry, mode))
	}

	for tries := 0; len(tables) < count && tries < maxPlacementTries; tries++ {
		p, ok := e.findFreeSpot(tables)
		if !ok {
			break
		}
		n := len(tables) + 1
		tables = append(tables, domain.NewTable(fmt.Sprintf("t%d", n), n, p.X, p.Y))
	}
	return tables
}

func tableFromEntry(id string, number int, entry hall.BlueprintEntry, mode domain.Mode) *domain.Table {
	t := domain.NewTable(id, number, entry.X, entry.Y)
	t.SetRotation(entry.Rotation)
	t.IsHead = entry.IsHead
	seats := entry.HeadSeatCount
	if seats == 0 {
		seats = mode.DefaultHeadSeatCount()
	}
	t.HeadSeatCount = domain.ClampHeadSeatCount(float64(seats), mode)
	return t
}

// findFreeSpot scans the free region row by row for an unrotated table slot.
func (e *Engine) findFreeSpot(placed []*domain.Table) (geometry.Point, bool) {
	cols, rows := scanSteps(scanMinX, scanMaxX), scanSteps(scanMinY, scanMaxY)
	for i := 0; i <= cols; i++ {
		x := scanMinX + float64(i)*scanStep
		for j := 0; j <= rows; j++ {
			y := scanMinY + float64(j)*scanStep
			if e.fits(x, y, 0, placed) {
				return geometry.Point{X: x, Y: y}, true
			}
		}
	}
	if e.fits(scanFallback.X, scanFallback.Y, 0, placed) {
		return scanFallback, true
	}
	return geometry.Point{}, false
}

func scanSteps(lo, hi float64) int {
	return int(math.Round((hi - lo) / scanStep))
}

// AddTable places one more table at the next free blueprint slot, or at the
// first free spot of the grid scan, and returns it.
func (e *Engine) AddTable() (domain.Table, error) {
	if len(e.state.Tables) >= MaxTables {
		return domain.Table{}, ErrTableLimit
	}
	trial := e.trial()
	t, err := trial.addTable()
	if err != nil {
		return domain.Table{}, err
	}
	trial.recompute(nil)
	if err := e.commit(trial); err != nil {
		return domain.Table{}, err
	}
	return *e.table(t.ID).Clone(), nil
}

// addTable appends a table without recomputing. Blueprint slots are tried
// starting at the one matching the current table count, wrapping around. A
// head slot yields a plain table when the plan already has a head table.
func (e *Engine) addTable() (*domain.Table, error) {
	tables := e.state.Tables
	id := e.freeTableID(tables, len(tables)+1)
	number := len(tables) + 1

	hasHead := false
	for _, t := range tables {
		if t.IsHead {
			hasHead = true
			break
		}
	}

	bp := e.hall.Blueprint
	for k := range bp {
		entry := bp[(len(tables)+k)%len(bp)]
		if !e.fits(entry.X, entry.Y, entry.Rotation, tables) {
			continue
		}
		if hasHead {
			entry.IsHead = false
			entry.HeadSeatCount = 0
		}
		t := tableFromEntry(id, number, entry, e.state.Settings.Mode)
		e.state.Tables = append(tables, t)
		return t, nil
	}

	p, ok := e.findFreeSpot(tables)
	if !ok {
		return nil, ErrNoFreeSpot
	}
	t := domain.NewTable(id, number, p.X, p.Y)
	e.state.Tables = append(tables, t)
	return t, nil
}

// SetTableCount grows or shrinks the plan to n tables, n clamped to
// [MinTables, MaxTables]. Shrinking removes guest-free tables first; when
// that is not enough and confirm is false a ConfirmationRequiredError names
// the tables and guests that would go. The plan is unchanged on error.
func (e *Engine) SetTableCount(n int, confirm bool) error {
	desired := clampInt(n, MinTables, MaxTables)
	current := len(e.state.Tables)

	switch {
	case desired == current:
		return nil
	case desired > current:
		trial := e.trial()
		for i := current; i < desired; i++ {
			if _, err := trial.addTable(); err != nil {
				return err
			}
		}
		trial.recompute(nil)
		return e.commit(trial)
	default:
		return e.removeTables(current-desired, confirm)
	}
}

func (e *Engine) removeTables(count int, confirm bool) error {
	var empty, occupied []*domain.Table
	for _, t := range e.state.Tables {
		if t.GuestCount() == 0 {
			empty = append(empty, t)
		} else {
			occupied = append(occupied, t)
		}
	}

	remove := empty
	if len(remove) > count {
		remove = remove[:count]
	}
	if missing := count - len(remove); missing > 0 {
		sort.SliceStable(occupied, func(i, j int) bool {
			return occupied[i].GuestCount() < occupied[j].GuestCount()
		})
		extra := occupied[:missing]
		if !confirm {
			return confirmation("remove tables", extra)
		}
		remove = append(remove, extra...)
	}

	return e.deleteTables(remove)
}

// DeleteTable removes one table. The plan keeps at least MinTables tables;
// a table holding guests needs confirmation.
func (e *Engine) DeleteTable(id string, confirm bool) error {
	t := e.table(id)
	if t == nil {
		return fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	if len(e.state.Tables) <= MinTables {
		return ErrTableLimit
	}
	if t.GuestCount() > 0 && !confirm {
		return confirmation("delete table", []*domain.Table{t})
	}
	return e.deleteTables([]*domain.Table{t})
}

func (e *Engine) deleteTables(remove []*domain.Table) error {
	gone := make(map[string]bool, len(remove))
	for _, t := range remove {
		gone[t.ID] = true
	}

	trial := e.trial()
	kept := trial.state.Tables[:0]
	for _, t := range trial.state.Tables {
		if !gone[t.ID] {
			kept = append(kept, t)
			continue
		}
		for _, c := range t.Chairs {
			if g := trial.guest(c.GuestID); g != nil {
				g.ClearAssignment()
			}
		}
	}
	trial.state.Tables = kept
	trial.renumber()
	trial.recompute(nil)
	return e.commit(trial)
}

func confirmation(action string, tables []*domain.Table) ConfirmationRequiredError {
	ce := ConfirmationRequiredError{Action: action}
	for _, t := range tables {
		ce.TableIDs = append(ce.TableIDs, t.ID)
		for _, c := range t.Chairs {
			if c.Occupied() {
				ce.GuestIDs = append(ce.GuestIDs, c.GuestID)
			}
		}
	}
	return ce
}

// SetMode switches seat density. Head seat counts are re-clamped and every
// group is reseated; guests on seats that disappear are unseated.
func (e *Engine) SetMode(mode domain.Mode) {
	mode = domain.ParseMode(string(mode))
	if mode == e.state.Settings.Mode {
		return
	}
	e.state.Settings.Mode = mode
	for _, t := range e.state.Tables {
		if t.IsHead {
			t.HeadSeatCount = domain.ClampHeadSeatCount(float64(t.HeadSeatCount), mode)
		}
	}
	removed := e.recomputeChairs(e.currentAssignments())
	e.reconcile(removed)
}

// UpdateTable applies u to a table. A rotation must fit at the table's
// current position. When the change would unseat guests and confirm is
// false a ConfirmationRequiredError lists them and nothing changes.
func (e *Engine) UpdateTable(id string, u TableUpdate, confirm bool) (domain.Table, error) {
	if e.table(id) == nil {
		return domain.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}

	trial := e.trial()
	t := trial.table(id)
	if u.Description != nil {
		t.SetDescription(*u.Description)
	}
	if u.Rotation != nil {
		t.SetRotation(*u.Rotation)
		if v := trial.validateStatic(t); !v.Valid {
			return domain.Table{}, v.Err()
		}
	}
	if u.IsHead != nil {
		t.SetHead(*u.IsHead)
	}
	if u.HeadSeatCount != nil {
		t.SetHeadSeatCount(*u.HeadSeatCount)
	}
	trial.recompute(nil)
	if err := e.breaksLayout(trial); err != nil {
		return domain.Table{}, err
	}

	if lost := e.lostGuests(trial); len(lost) > 0 && !confirm {
		return domain.Table{}, ConfirmationRequiredError{
			Action:   "update table",
			TableIDs: []string{id},
			GuestIDs: lost,
		}
	}

	e.state = trial.state
	return *e.table(id).Clone(), nil
}

// validateStatic checks a table rect where it stands against the hall,
// pillars and every other table.
func (e *Engine) validateStatic(t *domain.Table) Validation {
	r := t.Rect()
	if !e.hall.ContainsRect(r) {
		return invalid(t.ID, ReasonHallBounds)
	}
	if e.hall.HitsPillar(r) {
		return invalid(t.ID, ReasonPillarHit)
	}
	if e.hitsTable(r, map[string]bool{t.ID: true}) {
		return invalid(t.ID, ReasonTableCollision)
	}
	return valid()
}

// breaksLayout reports the PlacementError of a trial that turns e's valid
// layout into an invalid one. Regrouping snaps tables, so any structural
// change can move a table onto a pillar or a neighbour.
func (e *Engine) breaksLayout(trial *Engine) error {
	if v := trial.ValidateLayout(); !v.Valid && e.ValidateLayout().Valid {
		return v.Err()
	}
	return nil
}

// commit adopts trial's state unless it breaks the layout.
func (e *Engine) commit(trial *Engine) error {
	if err := e.breaksLayout(trial); err != nil {
		return err
	}
	e.state = trial.state
	return nil
}

// trial returns an engine sharing e's hall and id source over a copy of
// its state.
func (e *Engine) trial() *Engine {
	cp := *e
	cp.state = e.state.clone()
	cp.drag = nil
	return &cp
}

// lostGuests lists guests seated in e but not in other, in guest order.
func (e *Engine) lostGuests(other *Engine) []string {
	var out []string
	for _, g := range e.state.Guests {
		if !g.Assigned() {
			continue
		}
		if og := other.guest(g.ID); og != nil && !og.Assigned() {
			out = append(out, g.ID)
		}
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
