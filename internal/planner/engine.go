// Package planner implements the floor-plan layout engine: placement
// validation, table grouping, seat generation, guest assignment and the
// default layout. An Engine owns one plan and is not safe for concurrent use;
// callers that share it must serialise access.
package planner

import (
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
	"github.com/kirinyoku/seatplan/internal/hall"
	"github.com/kirinyoku/seatplan/internal/snapshot"
)

// Layout constants in meters.
const (
	ChairOffset        = 0.4  // chair centre distance beyond the table edge
	ChairEdgeClearance = 0.35 // free space at both ends of a seated side
	SnapStep           = 0.25
	ConnectThreshold   = 0.2
	AlignmentTolerance = 0.3

	DefaultTableCount = 13
	MinTables         = 4
	MaxTables         = 16
)

// State is the plan aggregate owned by an Engine.
type State struct {
	Tables   []*domain.Table
	Guests   []*domain.Guest
	Settings domain.Settings
}

func (s *State) clone() *State {
	cp := &State{
		Tables:   make([]*domain.Table, len(s.Tables)),
		Guests:   make([]*domain.Guest, len(s.Guests)),
		Settings: s.Settings,
	}
	for i, t := range s.Tables {
		cp.Tables[i] = t.Clone()
	}
	for i, g := range s.Guests {
		cp.Guests[i] = g.Clone()
	}
	return cp
}

type Engine struct {
	hall       *hall.Hall
	state      *State
	newGuestID func() string
	drag       *dragSession
}

type Option func(*Engine)

// WithIDGenerator replaces the guest id source.
func WithIDGenerator(fn func() string) Option {
	return func(e *Engine) {
		if fn != nil {
			e.newGuestID = fn
		}
	}
}

// New returns an engine with an empty plan in less mode. A nil hall selects
// hall.Default.
func New(h *hall.Hall, opts ...Option) *Engine {
	if h == nil {
		h = hall.Default()
	}
	e := &Engine{
		hall:       h,
		state:      &State{Settings: domain.Settings{Mode: domain.ModeLess}},
		newGuestID: newGuestID,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// newGuestID returns a time-ordered random id.
func newGuestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return "g" + uuid.NewString()
	}
	return "g" + id.String()
}

func (e *Engine) Hall() *hall.Hall { return e.hall }

func (e *Engine) Mode() domain.Mode { return e.state.Settings.Mode }

// Tables returns copies of the tables in plan order.
func (e *Engine) Tables() []domain.Table {
	out := make([]domain.Table, len(e.state.Tables))
	for i, t := range e.state.Tables {
		out[i] = *t.Clone()
	}
	return out
}

// Guests returns copies of all guests.
func (e *Engine) Guests() []domain.Guest {
	out := make([]domain.Guest, len(e.state.Guests))
	for i, g := range e.state.Guests {
		out[i] = *g
	}
	return out
}

func (e *Engine) Table(id string) (domain.Table, error) {
	t := e.table(id)
	if t == nil {
		return domain.Table{}, fmt.Errorf("%w: %s", ErrTableNotFound, id)
	}
	return *t.Clone(), nil
}

func (e *Engine) Guest(id string) (domain.Guest, error) {
	g := e.guest(id)
	if g == nil {
		return domain.Guest{}, fmt.Errorf("%w: %s", ErrGuestNotFound, id)
	}
	return *g, nil
}

// FindChair returns the chair with the given id and the id of its table.
func (e *Engine) FindChair(chairID string) (domain.Chair, string, error) {
	t, c := e.chair(chairID)
	if c == nil {
		return domain.Chair{}, "", fmt.Errorf("%w: %s", ErrChairNotFound, chairID)
	}
	return *c, t.ID, nil
}

func (e *Engine) table(id string) *domain.Table {
	for _, t := range e.state.Tables {
		if t.ID == id {
			return t
		}
	}
	return nil
}

func (e *Engine) chair(id string) (*domain.Table, *domain.Chair) {
	for _, t := range e.state.Tables {
		for i := range t.Chairs {
			if t.Chairs[i].ID == id {
				return t, &t.Chairs[i]
			}
		}
	}
	return nil, nil
}

func (e *Engine) guest(id string) *domain.Guest {
	for _, g := range e.state.Guests {
		if g.ID == id {
			return g
		}
	}
	return nil
}

// Snapshot serialises the current plan.
func (e *Engine) Snapshot() *snapshot.Snapshot {
	st := e.state
	s := &snapshot.Snapshot{
		Version: snapshot.CurrentVersion,
		Tables:  make([]snapshot.Table, 0, len(st.Tables)),
		Guests:  make([]snapshot.Guest, 0, len(st.Guests)),
		Settings: snapshot.Settings{
			Mode:       string(st.Settings.Mode),
			TableCount: len(st.Tables),
		},
	}
	for _, t := range st.Tables {
		out := snapshot.Table{
			ID:            t.ID,
			Number:        t.Number,
			X:             t.X,
			Y:             t.Y,
			Rotation:      t.Rotation,
			Description:   t.Description,
			IsHead:        t.IsHead,
			HeadSeatCount: t.HeadSeatCount,
			GroupID:       t.GroupID,
			Chairs:        make([]snapshot.Chair, 0, len(t.Chairs)),
		}
		for _, c := range t.Chairs {
			out.Chairs = append(out.Chairs, snapshot.Chair{
				ID:      c.ID,
				X:       c.X,
				Y:       c.Y,
				Side:    string(c.Side),
				GuestID: c.GuestID,
			})
		}
		s.Tables = append(s.Tables, out)
	}
	for _, g := range st.Guests {
		s.Guests = append(s.Guests, snapshot.Guest{ID: g.ID, Name: g.Name, AssignedTo: g.AssignedTo})
	}
	return s
}

// Load replaces the plan with s. Groups and chairs are rebuilt; chair
// assignments in s carry over by chair index within each table, and any
// guest left without a backing chair is unseated.
func (e *Engine) Load(s *snapshot.Snapshot) error {
	if s == nil {
		return ErrNilSnapshot
	}
	e.drag = nil

	mode := domain.ParseMode(s.Settings.Mode)
	st := &State{Settings: domain.Settings{Mode: mode}}
	prev := make(map[string][]string, len(s.Tables))
	seenTables := make(map[string]bool, len(s.Tables))

	for i, in := range s.Tables {
		id := in.ID
		if id == "" || seenTables[id] {
			id = e.freeTableID(st.Tables, i+1)
		}
		seenTables[id] = true

		seats := float64(in.HeadSeatCount)
		if in.HeadSeatCount == 0 {
			seats = float64(mode.DefaultHeadSeatCount())
		}
		t := &domain.Table{
			ID:            id,
			Number:        in.Number,
			X:             in.X,
			Y:             in.Y,
			Rotation:      geometry.NormalizeRotation(in.Rotation),
			Description:   in.Description,
			IsHead:        in.IsHead,
			HeadSeatCount: domain.ClampHeadSeatCount(seats, mode),
			GroupID:       id,
		}
		assigned := make([]string, len(in.Chairs))
		for j, c := range in.Chairs {
			assigned[j] = c.GuestID
		}
		prev[id] = assigned
		st.Tables = append(st.Tables, t)
	}

	seenGuests := make(map[string]bool, len(s.Guests))
	for _, in := range s.Guests {
		if in.ID == "" || seenGuests[in.ID] {
			continue
		}
		seenGuests[in.ID] = true
		st.Guests = append(st.Guests, &domain.Guest{ID: in.ID, Name: in.Name, AssignedTo: in.AssignedTo})
	}

	e.state = st
	e.renumber()
	e.recompute(prev)
	return nil
}

// renumber orders tables by their current number and assigns 1..N.
// Tables without a number keep their relative order at the end.
func (e *Engine) renumber() {
	tables := e.state.Tables
	sort.SliceStable(tables, func(i, j int) bool {
		a, b := tables[i].Number, tables[j].Number
		if a <= 0 {
			return false
		}
		if b <= 0 {
			return true
		}
		return a < b
	})
	for i, t := range tables {
		t.Number = i + 1
	}
	e.state.Settings.TableCount = len(tables)
}

// freeTableID returns the first "t<n>" id, n >= from, not used by tables.
func (e *Engine) freeTableID(tables []*domain.Table, from int) string {
	used := make(map[string]bool, len(tables))
	for _, t := range tables {
		used[t.ID] = true
	}
	if from < 1 {
		from = 1
	}
	for n := from; ; n++ {
		id := fmt.Sprintf("t%d", n)
		if !used[id] {
			return id
		}
	}
}

// recompute regroups tables, regenerates every chair and reconciles guests.
// prev maps table ids to the guest ids of their chairs by index; nil means
// the current chairs.
func (e *Engine) recompute(prev map[string][]string) {
	if prev == nil {
		prev = e.currentAssignments()
	}
	e.recomputeGroups()
	removed := e.recomputeChairs(prev)
	e.reconcile(removed)
	e.state.Settings.TableCount = len(e.state.Tables)
}

func (e *Engine) currentAssignments() map[string][]string {
	out := make(map[string][]string, len(e.state.Tables))
	for _, t := range e.state.Tables {
		ids := make([]string, len(t.Chairs))
		for i, c := range t.Chairs {
			ids[i] = c.GuestID
		}
		out[t.ID] = ids
	}
	return out
}
