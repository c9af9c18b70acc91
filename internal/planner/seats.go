package planner

import (
	"fmt"
	"math"
	"sort"

	"github.com/kirinyoku/seatplan/internal/domain"
	"github.com/kirinyoku/seatplan/internal/geometry"
)

const claimEpsilon = 1e-6

type seat struct {
	side  domain.Side
	order int
	x, y  float64
	axial float64
}

// recomputeChairs regenerates the chairs of every table and carries guest
// ids over from prev by chair index. Guests whose chair index no longer
// exists are returned as removed.
func (e *Engine) recomputeChairs(prev map[string][]string) map[string]bool {
	for _, members := range e.groups() {
		var run []*domain.Table
		for _, t := range members {
			if t.IsHead {
				e.layoutHeadTable(t)
				continue
			}
			run = append(run, t)
		}
		if len(run) > 0 {
			e.layoutRun(run)
		}
	}

	removed := make(map[string]bool)
	for _, t := range e.state.Tables {
		old := prev[t.ID]
		for i := range t.Chairs {
			if i < len(old) {
				t.Chairs[i].GuestID = old[i]
			}
		}
		for i := len(t.Chairs); i < len(old); i++ {
			if old[i] != "" {
				removed[old[i]] = true
			}
		}
	}
	return removed
}

// layoutRun seats a connected group of non-head tables as one continuous
// run. Both long sides get basePerSide seats per table position plus one
// per junction, evenly spread between the clearance-inset ends of the run.
// Each seat goes to the table whose span contains it; where tables stand
// side by side the seat goes to the one on the outer edge.
func (e *Engine) layoutRun(run []*domain.Table) {
	orientation := run[0].Orientation()
	sort.SliceStable(run, func(i, j int) bool {
		ai, ci := axes(run[i])
		aj, cj := axes(run[j])
		if *ai != *aj {
			return *ai < *aj
		}
		return *ci < *cj
	})

	start, end := math.Inf(1), math.Inf(-1)
	crossMin, crossMax := math.Inf(1), math.Inf(-1)
	for _, t := range run {
		lo, hi, clo, chi := spans(t)
		start, end = math.Min(start, lo), math.Max(end, hi)
		crossMin, crossMax = math.Min(crossMin, clo), math.Max(crossMax, chi)
	}

	slots := int(math.Round((end - start) / geometry.TableLength))
	if slots < 1 {
		slots = 1
	}
	perSide := e.state.Settings.Mode.BasePerSide()*slots + (slots - 1)
	usable := math.Max(0, end-start-2*ChairEdgeClearance)
	step := 0.0
	if perSide > 1 {
		step = usable / float64(perSide-1)
	}

	// Horizontal runs list the top side first, vertical runs the left side.
	type sideSpec struct {
		side  domain.Side
		cross float64
		outer func(clo, chi float64) float64
		wins  func(candidate, best float64) bool
	}
	upper := func(_, chi float64) float64 { return chi }
	lower := func(clo, _ float64) float64 { return clo }
	greater := func(c, b float64) bool { return c > b }
	smaller := func(c, b float64) bool { return c < b }

	var sides []sideSpec
	if orientation == domain.Horizontal {
		sides = []sideSpec{
			{domain.SideTop, crossMax + ChairOffset, upper, greater},
			{domain.SideBottom, crossMin - ChairOffset, lower, smaller},
		}
	} else {
		sides = []sideSpec{
			{domain.SideLeft, crossMin - ChairOffset, lower, smaller},
			{domain.SideRight, crossMax + ChairOffset, upper, greater},
		}
	}

	claimed := make(map[*domain.Table][]seat, len(run))
	for si, sd := range sides {
		for i := 0; i < perSide; i++ {
			p := start + ChairEdgeClearance + float64(i)*step
			s := seat{side: sd.side, order: si*perSide + i, axial: p}
			if orientation == domain.Horizontal {
				s.x, s.y = p, sd.cross
			} else {
				s.x, s.y = sd.cross, p
			}

			var owner *domain.Table
			best := 0.0
			for _, t := range run {
				lo, hi, clo, chi := spans(t)
				if p < lo-claimEpsilon || p > hi+claimEpsilon {
					continue
				}
				edge := sd.outer(clo, chi)
				if owner == nil || sd.wins(edge, best) {
					owner, best = t, edge
				}
			}
			if owner == nil {
				owner = nearestAlong(run, p)
			}
			claimed[owner] = append(claimed[owner], s)
		}
	}

	for _, t := range run {
		seats := claimed[t]
		sort.SliceStable(seats, func(i, j int) bool { return seats[i].order < seats[j].order })
		t.Chairs = make([]domain.Chair, len(seats))
		for i, s := range seats {
			t.Chairs[i] = domain.Chair{
				ID:   chairID(t.ID, i),
				X:    s.x,
				Y:    s.y,
				Side: s.side,
			}
		}
	}
}

// layoutHeadTable seats a head table along one side only, facing the side
// with more free space to the hall boundary.
func (e *Engine) layoutHeadTable(t *domain.Table) {
	n := domain.ClampHeadSeatCount(float64(t.HeadSeatCount), e.state.Settings.Mode)
	t.HeadSeatCount = n

	lo, hi, _, _ := spans(t)
	start, end := lo+ChairEdgeClearance, hi-ChairEdgeClearance
	span := math.Max(0, end-start)
	center := start + span/2

	// gap is the clear space between neighbouring chairs.
	var positions []float64
	switch n {
	case 2:
		gap := math.Min(span/3, 0.7)
		half := (geometry.ChairSize + gap) / 2
		positions = []float64{center - half, center + half}
	case 3:
		gap := math.Min(span/6, 0.3)
		d := geometry.ChairSize + gap
		positions = []float64{center - d, center, center + d}
	default:
		step := 0.0
		if n > 1 {
			step = span / float64(n-1)
		}
		for i := 0; i < n; i++ {
			positions = append(positions, start+float64(i)*step)
		}
	}
	for i := range positions {
		positions[i] = geometry.Clamp(positions[i], start, end)
	}
	sort.Float64s(positions)

	side := e.headSide(t)
	hx, hy := t.HalfDimensions()
	t.Chairs = make([]domain.Chair, len(positions))
	for i, p := range positions {
		c := domain.Chair{ID: chairID(t.ID, i), Side: side}
		switch side {
		case domain.SideTop:
			c.X, c.Y = p, t.Y+hy+ChairOffset
		case domain.SideBottom:
			c.X, c.Y = p, t.Y-hy-ChairOffset
		case domain.SideRight:
			c.X, c.Y = t.X+hx+ChairOffset, p
		default:
			c.X, c.Y = t.X-hx-ChairOffset, p
		}
		t.Chairs[i] = c
	}
}

// headSide picks the long side with more room to the hall boundary.
// Ties go to top for horizontal tables and right for vertical ones.
func (e *Engine) headSide(t *domain.Table) domain.Side {
	r := t.Rect()
	if t.Orientation() == domain.Horizontal {
		if e.hall.Height-r.MaxY >= r.MinY {
			return domain.SideTop
		}
		return domain.SideBottom
	}
	if e.hall.Width-r.MaxX >= r.MinX {
		return domain.SideRight
	}
	return domain.SideLeft
}

// spans returns a table's extent along and across its long axis.
func spans(t *domain.Table) (lo, hi, crossLo, crossHi float64) {
	r := t.Rect()
	if t.Orientation() == domain.Vertical {
		return r.MinY, r.MaxY, r.MinX, r.MaxX
	}
	return r.MinX, r.MaxX, r.MinY, r.MaxY
}

func nearestAlong(run []*domain.Table, p float64) *domain.Table {
	var best *domain.Table
	bestDist := math.Inf(1)
	for _, t := range run {
		lo, hi, _, _ := spans(t)
		d := math.Min(math.Abs(p-lo), math.Abs(p-hi))
		if d < bestDist {
			best, bestDist = t, d
		}
	}
	return best
}

func chairID(tableID string, index int) string {
	return fmt.Sprintf("%s_c%d", tableID, index+1)
}

// reconcile restores the guest/chair bijection after chairs were rebuilt.
// Guests listed in removed lost their seat; any other guest whose chair no
// longer points back at them is unseated too, and chairs pointing at
// unknown or differently seated guests are emptied.
func (e *Engine) reconcile(removed map[string]bool) {
	chairs := make(map[string]*domain.Chair)
	for _, t := range e.state.Tables {
		for i := range t.Chairs {
			chairs[t.Chairs[i].ID] = &t.Chairs[i]
		}
	}

	guests := make(map[string]*domain.Guest, len(e.state.Guests))
	for _, g := range e.state.Guests {
		guests[g.ID] = g
		if removed[g.ID] {
			g.ClearAssignment()
			continue
		}
		if !g.Assigned() {
			continue
		}
		if c, ok := chairs[g.AssignedTo]; !ok || c.GuestID != g.ID {
			g.ClearAssignment()
		}
	}

	for _, c := range chairs {
		if !c.Occupied() {
			continue
		}
		if g, ok := guests[c.GuestID]; !ok || g.AssignedTo != c.ID {
			c.ClearGuest()
		}
	}
}
